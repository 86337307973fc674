package geomodel

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"emperror.dev/errors"
	"gopkg.in/yaml.v2"
)

type FieldType string

const (
	FieldString  = FieldType("string")
	FieldInteger = FieldType("integer")
	FieldReal    = FieldType("real")
	FieldBoolean = FieldType("boolean")
	FieldCode    = FieldType("code")
	FieldID      = FieldType("id")
)

// BooleanTokens is the accepted token set for boolean columns:
// "true"/"false" (canonical pair) plus "nd" for values that were not
// determined in the field. Matching is case-insensitive.
var BooleanTokens = []string{"true", "false", "nd"}

type FileCategory string

const (
	CategoryMesh       = FileCategory("mesh")
	CategoryCsv        = FileCategory("csv")
	CategoryDescriptor = FileCategory("descriptor")
)

type ManifestEntry struct {
	Name     string       `yaml:"name"`
	Required bool         `yaml:"required"`
	Category FileCategory `yaml:"category"`
}

type ColumnSpec struct {
	Name string    `yaml:"name"`
	Type FieldType `yaml:"type"`
	// MaxLen caps the character length of string columns (0 = unbounded).
	MaxLen int `yaml:"maxlen,omitempty"`
	// Domain names the code lookup table for code columns.
	Domain string `yaml:"domain,omitempty"`
	// Prefix is the entity-ID prefix (FLT, SRF, UNT) for id columns.
	Prefix string `yaml:"prefix,omitempty"`
	// Tokens restricts a string column to a fixed token set (e.g. uom
	// columns holding "deg" or "mm"). Matching is case-insensitive.
	Tokens []string `yaml:"tokens,omitempty"`
	// Tolerated placeholders pass with a warning, Forbidden ones fail.
	Tolerated []string `yaml:"tolerated,omitempty"`
	Forbidden []string `yaml:"forbidden,omitempty"`
}

type TableSchema struct {
	Name     string       `yaml:"name"`
	Group    string       `yaml:"group"`
	IDColumn string       `yaml:"idcolumn"`
	Columns  []ColumnSpec `yaml:"columns"`
}

func (ts *TableSchema) Column(name string) *ColumnSpec {
	for i := range ts.Columns {
		if ts.Columns[i].Name == name {
			return &ts.Columns[i]
		}
	}
	return nil
}

// MeshSpec correlates one GOCAD file with its entity-ID prefix and
// attribute table. A mesh without a prefix (the terrain model) carries
// no entity IDs.
type MeshSpec struct {
	Name   string `yaml:"name"`
	Prefix string `yaml:"prefix,omitempty"`
	Table  string `yaml:"table,omitempty"`
}

type SpecialKeyword struct {
	Values []string `yaml:"values,omitempty"`
	Kind   string   `yaml:"kind"`
}

// MeshVocabulary is the recognized keyword set of the GOCAD dialect,
// split by file section the way the format is structured.
type MeshVocabulary struct {
	Header       []string                  `yaml:"header"`
	Coordinate   []string                  `yaml:"coordinate"`
	Connectivity []string                  `yaml:"connectivity"`
	Special      map[string]SpecialKeyword `yaml:"special"`
}

type DescriptorField struct {
	Name string `yaml:"name"`
	// Kind is one of string, object, datetime, null.
	Kind string `yaml:"kind"`
}

type DescriptorSchema struct {
	Fields []DescriptorField `yaml:"fields"`
}

type BundleSchema struct {
	Manifest   []ManifestEntry  `yaml:"manifest"`
	Tables     []*TableSchema   `yaml:"tables"`
	Meshes     []*MeshSpec      `yaml:"meshes"`
	Vocabulary MeshVocabulary   `yaml:"vocabulary"`
	Descriptor DescriptorSchema `yaml:"descriptor"`

	Domains DomainTable `yaml:"-"`
}

func (bs *BundleSchema) Table(name string) *TableSchema {
	for _, ts := range bs.Tables {
		if ts.Name == name {
			return ts
		}
	}
	return nil
}

// TableGroups maps each group name to its member tables in schema order.
func (bs *BundleSchema) TableGroups() map[string][]*TableSchema {
	groups := map[string][]*TableSchema{}
	for _, ts := range bs.Tables {
		if ts.Group == "" {
			continue
		}
		groups[ts.Group] = append(groups[ts.Group], ts)
	}
	return groups
}

func LoadBundleSchema(data []byte) (*BundleSchema, error) {
	var schema = &BundleSchema{}
	if err := yaml.Unmarshal(data, schema); err != nil {
		return nil, errors.Wrap(err, "cannot unmarshal bundle schema")
	}
	if len(schema.Manifest) == 0 {
		return nil, errors.New("bundle schema without manifest entries")
	}
	for _, ts := range schema.Tables {
		if ts.IDColumn != "" && ts.Column(ts.IDColumn) == nil {
			return nil, errors.Errorf("table %s: ID column '%s' not among columns", ts.Name, ts.IDColumn)
		}
	}
	return schema, nil
}

// entityIDPattern matches IDs of the form PFX_0001_001.
func entityIDPattern(prefix string) *regexp.Regexp {
	return regexp.MustCompile(fmt.Sprintf(`^%s_\d{4}_\d{3}$`, regexp.QuoteMeta(prefix)))
}

// DomainTable holds the valid code sets, one per domain, normalized
// via normalizeCode.
type DomainTable map[string]map[string]struct{}

func (dt DomainTable) Contains(domain, value string) (bool, error) {
	codes, ok := dt[strings.ToLower(strings.TrimSpace(domain))]
	if !ok {
		return false, errors.Errorf("domain '%s' not found in code table", domain)
	}
	_, ok = codes[normalizeCode(value)]
	return ok, nil
}

// normalizeCode folds case, trims space and canonicalizes integral
// numbers ("12.0" and "12" are the same color code).
func normalizeCode(value string) string {
	v := strings.ToLower(strings.TrimSpace(value))
	if f, err := strconv.ParseFloat(v, 64); err == nil && f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return v
}

// LoadDomainTable reads the code_domain table: one column per domain,
// each column holding the valid codes of that domain.
func LoadDomainTable(data []byte) (DomainTable, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	header, err := reader.Read()
	if err != nil {
		return nil, errors.Wrap(err, "cannot read domain table header")
	}
	domains := DomainTable{}
	for i := range header {
		header[i] = strings.ToLower(strings.TrimSpace(header[i]))
		domains[header[i]] = map[string]struct{}{}
	}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "cannot read domain table record")
		}
		for i, value := range record {
			if i >= len(header) || strings.TrimSpace(value) == "" {
				continue
			}
			domains[header[i]][normalizeCode(value)] = struct{}{}
		}
	}
	return domains, nil
}
