package geomodel

import (
	"testing"

	"github.com/geomodel-archive/gochk3d/data/domains"
	"github.com/geomodel-archive/gochk3d/data/schemas"
)

func TestEmbeddedBundleSchema(t *testing.T) {
	schema, err := LoadBundleSchema(schemas.BundleYAML)
	if err != nil {
		t.Fatalf("cannot load embedded schema: %v", err)
	}
	if len(schema.Tables) != 7 {
		t.Errorf("expected 7 attribute tables, got %d", len(schema.Tables))
	}
	if len(schema.Meshes) != 4 {
		t.Errorf("expected 4 mesh files, got %d", len(schema.Meshes))
	}
	if len(schema.Manifest) != 12 {
		t.Errorf("expected 12 manifest entries, got %d", len(schema.Manifest))
	}
	groups := schema.TableGroups()
	for group, want := range map[string]int{"fault": 3, "horizon": 2, "unit": 2} {
		if len(groups[group]) != want {
			t.Errorf("group %s has %d tables, expected %d", group, len(groups[group]), want)
		}
	}
	for _, mesh := range schema.Meshes {
		if mesh.Table != "" && schema.Table(mesh.Table) == nil {
			t.Errorf("mesh %s references unknown table %s", mesh.Name, mesh.Table)
		}
	}
	for _, table := range schema.Tables {
		if table.Column(table.IDColumn) == nil {
			t.Errorf("table %s has no ID column", table.Name)
		}
	}
	if len(schema.Descriptor.Fields) != 10 {
		t.Errorf("expected 10 descriptor fields, got %d", len(schema.Descriptor.Fields))
	}
}

func TestEmbeddedDomainTable(t *testing.T) {
	table, err := LoadDomainTable(domains.CodeDomainCSV)
	if err != nil {
		t.Fatalf("cannot load embedded domain table: %v", err)
	}
	ok, err := table.Contains("type_fault", "normal")
	if err != nil || !ok {
		t.Errorf("type_fault/normal: ok=%v err=%v", ok, err)
	}
	// color codes canonicalize integral numbers
	ok, err = table.Contains("color_fault", "2.0")
	if err != nil || !ok {
		t.Errorf("color_fault/2.0: ok=%v err=%v", ok, err)
	}
	if _, err := table.Contains("no_such_domain", "x"); err == nil {
		t.Error("unknown domain must error")
	}
}

func TestEntityIDPattern(t *testing.T) {
	var idTests = []struct {
		id    string
		valid bool
	}{
		{"FLT_0001_001", true},
		{"FLT_9999_123", true},
		{"FLT_001_001", false},
		{"FLT_0001_01", false},
		{"SRF_0001_001", false},
		{"flt_0001_001", false},
		{"FLT_0001_001 ", false},
	}
	pattern := entityIDPattern("FLT")
	for _, tt := range idTests {
		if pattern.MatchString(tt.id) != tt.valid {
			t.Errorf("%q: expected valid=%v", tt.id, tt.valid)
		}
	}
}

func TestNormalizeCode(t *testing.T) {
	var normTests = []struct {
		in, out string
	}{
		{"12", "12"},
		{"12.0", "12"},
		{" Normal ", "normal"},
		{"12.5", "12.5"},
	}
	for _, tt := range normTests {
		if got := normalizeCode(tt.in); got != tt.out {
			t.Errorf("normalizeCode(%q) = %q, expected %q", tt.in, got, tt.out)
		}
	}
}

func TestLoadBundleSchemaRejectsBadIDColumn(t *testing.T) {
	raw := []byte(`
manifest:
  - {name: a.csv, required: true, category: csv}
tables:
  - name: a.csv
    idcolumn: id
    columns:
      - {name: other, type: string}
`)
	if _, err := LoadBundleSchema(raw); err == nil {
		t.Error("schema with dangling ID column must not load")
	}
}
