package geomodel

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/exp/slices"
)

// Value is the typed result of parsing one CSV field.
type Value struct {
	Kind  FieldType
	Empty bool
	Str   string
	Int   int64
	Real  float64
	Bool  bool
}

// FieldIssue is the tagged failure of a field parse. It carries the
// finding code so the caller can emit it without interpreting the
// failure again.
type FieldIssue struct {
	Code    FindingCode
	Message string
}

func issuef(code FindingCode, format string, a ...any) *FieldIssue {
	return &FieldIssue{Code: code, Message: fmt.Sprintf(format, a...)}
}

// ParseField parses raw against the column's declared type. It returns
// the typed value and any issues found; a type failure never aborts the
// surrounding table validation.
func ParseField(col *ColumnSpec, raw string) (Value, []*FieldIssue) {
	var issues []*FieldIssue
	trimmed := strings.TrimSpace(raw)
	value := Value{Kind: col.Type, Str: raw}

	if trimmed == "" && col.Type != FieldID {
		value.Empty = true
		return value, nil
	}

	switch col.Type {
	case FieldString:
		if col.MaxLen > 0 && len([]rune(raw)) > col.MaxLen {
			issues = append(issues, issuef(E011, "value '%s' longer than %d characters", raw, col.MaxLen))
		}
		if len(col.Tokens) > 0 && !containsFold(col.Tokens, trimmed) {
			issues = append(issues, issuef(E007, "value '%s' not in accepted set %s", raw, tokenList(col.Tokens)))
		}
	case FieldInteger:
		// integral floats pass, "5.0" and "5" denote the same value
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil || f != float64(int64(f)) {
			issues = append(issues, issuef(E007, "value '%s' is not an integer", raw))
		} else {
			value.Int = int64(f)
		}
	case FieldReal:
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			issues = append(issues, issuef(E007, "value '%s' is not a number", raw))
		} else {
			value.Real = f
		}
	case FieldBoolean:
		if !containsFold(BooleanTokens, trimmed) {
			issues = append(issues, issuef(E007, "value '%s' not in accepted set %s", raw, tokenList(BooleanTokens)))
		} else {
			value.Bool = strings.EqualFold(trimmed, "true")
		}
	case FieldCode:
		// the domain lookup happens in the table validator where the
		// domain table is at hand
	case FieldID:
		if containsFold(col.Forbidden, trimmed) {
			issues = append(issues, issuef(E012, "value '%s' not allowed here", raw))
			break
		}
		if containsFold(col.Tolerated, trimmed) {
			issues = append(issues, issuef(W007, "value '%s' stands in for a missing reference", raw))
			break
		}
		if !entityIDPattern(col.Prefix).MatchString(trimmed) {
			issues = append(issues, issuef(E010, "value '%s' does not match %s_XXXX_XXX", raw, col.Prefix))
		}
	}
	return value, issues
}

func containsFold(tokens []string, value string) bool {
	return slices.ContainsFunc(tokens, func(t string) bool {
		return strings.EqualFold(t, value)
	})
}

func tokenList(tokens []string) string {
	quoted := make([]string, len(tokens))
	for i, t := range tokens {
		quoted[i] = "'" + t + "'"
	}
	return "{" + strings.Join(quoted, ", ") + "}"
}

// Row maps column names to their typed values.
type Row map[string]Value

// CsvTable is the parsed, typed representation of one attribute table.
type CsvTable struct {
	Name    string
	Columns []string
	Rows    []Row
}

// IDSet returns the distinct values of the table's designated ID
// column, placeholders excluded.
func (t *CsvTable) IDSet(schema *TableSchema) map[string]struct{} {
	ids := map[string]struct{}{}
	if schema.IDColumn == "" {
		return ids
	}
	col := schema.Column(schema.IDColumn)
	for _, row := range t.Rows {
		v, ok := row[schema.IDColumn]
		if !ok {
			continue
		}
		trimmed := strings.TrimSpace(v.Str)
		if col != nil && (containsFold(col.Tolerated, trimmed) || containsFold(col.Forbidden, trimmed)) {
			continue
		}
		if trimmed != "" {
			ids[trimmed] = struct{}{}
		}
	}
	return ids
}
