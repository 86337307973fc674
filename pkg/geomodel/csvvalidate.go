package geomodel

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"emperror.dev/errors"
)

// ValidateCsv runs the full check pipeline over one attribute table:
// encoding, line terminators, separator, header, field counts, typed
// fields, domain codes and ID uniqueness. Checks are exhaustive, one
// pass reports every defect. The returned table is nil when the file
// could not be parsed at all (undecodable or wrong separator), in
// which case downstream field checks are skipped.
func ValidateCsv(v *Validator, schema *TableSchema, domains DomainTable, raw []byte) (*CsvTable, error) {
	if !utf8.Valid(raw) {
		return nil, v.AddError(E002, "", "byte sequence invalid for UTF-8")
	}

	if line, kind := findCarriageReturn(raw); kind != "" {
		if err := v.AddError(E003, fmt.Sprintf("line %d", line), "found %s", kind); err != nil {
			return nil, err
		}
		// terminator defects do not prevent parsing, strip and go on
		raw = bytes.ReplaceAll(raw, []byte("\r\n"), []byte("\n"))
		raw = bytes.ReplaceAll(raw, []byte("\r"), []byte("\n"))
	}

	if sep := sniffSeparator(raw); sep != "" {
		return nil, v.AddError(E004, "", "found '%s' instead of ','", sep)
	}

	reader := csv.NewReader(bytes.NewReader(raw))
	reader.FieldsPerRecord = -1
	var records [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			locus := ""
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				locus = fmt.Sprintf("line %d", parseErr.Line)
			}
			if err := v.AddError(E014, locus, "%v", err); err != nil {
				return nil, err
			}
			return nil, nil
		}
		records = append(records, record)
	}
	if len(records) == 0 {
		return nil, v.AddError(E005, "", "file is empty")
	}

	header := records[0]
	colIndex, err := validateHeader(v, schema, header)
	if err != nil {
		return nil, err
	}
	if colIndex == nil {
		return nil, nil
	}

	table := &CsvTable{Name: v.File(), Columns: header}
	idRows := map[string]int{}

	for i, record := range records[1:] {
		line := i + 2 // header is line 1
		locus := fmt.Sprintf("line %d", line)
		if len(record) != len(schema.Columns) {
			if err := v.AddError(E006, locus, "%d fields, expected %d", len(record), len(schema.Columns)); err != nil {
				return nil, err
			}
			continue
		}

		row := Row{}
		for pos, name := range header {
			col := schema.Column(name)
			if col == nil {
				continue
			}
			value, issues := ParseField(col, record[pos])
			for _, issue := range issues {
				fieldLocus := fmt.Sprintf("%s, field '%s'", locus, name)
				if issue.Code == W007 {
					if err := v.AddWarning(issue.Code, fieldLocus, "%s", issue.Message); err != nil {
						return nil, err
					}
					continue
				}
				if err := v.AddError(issue.Code, fieldLocus, "%s", issue.Message); err != nil {
					return nil, err
				}
			}
			if col.Type == FieldCode && !value.Empty {
				if err := checkDomainCode(v, col, domains, record[pos], locus); err != nil {
					return nil, err
				}
			}
			row[name] = value
		}
		table.Rows = append(table.Rows, row)

		if schema.IDColumn != "" {
			if pos, ok := findColumn(header, schema.IDColumn); ok {
				id := strings.TrimSpace(record[pos])
				if first, dup := idRows[id]; dup {
					if err := v.AddError(E008, fmt.Sprintf("field '%s'", schema.IDColumn),
						"value '%s' appears on lines %d and %d", id, first, line); err != nil {
						return nil, err
					}
				} else {
					idRows[id] = line
				}
			}
		}
	}
	return table, nil
}

func checkDomainCode(v *Validator, col *ColumnSpec, domains DomainTable, raw, locus string) error {
	ok, err := domains.Contains(col.Domain, raw)
	if err != nil {
		return v.AddError(E009, fmt.Sprintf("%s, field '%s'", locus, col.Name), "%v", err)
	}
	if !ok {
		return v.AddError(E009, fmt.Sprintf("%s, field '%s'", locus, col.Name),
			"value '%s' not in domain '%s'", raw, col.Domain)
	}
	return nil
}

// validateHeader matches the first record against the declared column
// list and returns the name -> position mapping, or nil when the header
// is unusable.
func validateHeader(v *Validator, schema *TableSchema, header []string) (map[string]int, error) {
	colIndex := map[string]int{}
	for pos, name := range header {
		colIndex[name] = pos
	}
	var missing, extra []string
	for _, col := range schema.Columns {
		if _, ok := colIndex[col.Name]; !ok {
			missing = append(missing, col.Name)
		}
	}
	for _, name := range header {
		if schema.Column(name) == nil {
			extra = append(extra, name)
		}
	}
	if len(missing) > 0 {
		if err := v.AddError(E005, "header", "missing columns: %s", strings.Join(missing, ", ")); err != nil {
			return nil, err
		}
	}
	if len(extra) > 0 {
		if err := v.AddError(E005, "header", "unexpected columns: %s", strings.Join(extra, ", ")); err != nil {
			return nil, err
		}
	}
	if len(missing) == len(schema.Columns) {
		// nothing matches, every later check would cascade
		return nil, nil
	}
	return colIndex, nil
}

func findColumn(header []string, name string) (int, bool) {
	for pos, h := range header {
		if h == name {
			return pos, true
		}
	}
	return 0, false
}

// findCarriageReturn locates the first CR byte and classifies the
// terminator style, returning the 1-based line it sits on.
func findCarriageReturn(raw []byte) (int, string) {
	idx := bytes.IndexByte(raw, '\r')
	if idx < 0 {
		return 0, ""
	}
	line := bytes.Count(raw[:idx], []byte("\n")) + 1
	if idx+1 < len(raw) && raw[idx+1] == '\n' {
		return line, "CRLF"
	}
	return line, "bare CR"
}

// sniffSeparator inspects the first lines for the field separator and
// names the wrong one when no comma is in sight.
func sniffSeparator(raw []byte) string {
	lines := bytes.SplitN(raw, []byte("\n"), 4)
	var probe []byte
	for i := 0; i < len(lines) && i < 3; i++ {
		probe = append(probe, lines[i]...)
	}
	if bytes.ContainsRune(probe, ',') {
		return ""
	}
	if bytes.ContainsRune(probe, ';') {
		return ";"
	}
	if bytes.ContainsRune(probe, '\t') {
		return "\\t"
	}
	return ""
}
