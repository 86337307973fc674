package geomodel

import (
	"context"
	"fmt"
	"strings"

	"emperror.dev/errors"
	"golang.org/x/exp/slices"
)

type Severity string

const (
	SeverityError   = Severity("ERROR")
	SeverityWarning = Severity("WARNING")
)

type FindingCode string

const (
	// manifest
	E001 = FindingCode("E001") // required file missing
	// csv
	E002 = FindingCode("E002") // invalid encoding
	E003 = FindingCode("E003") // line terminator not LF
	E004 = FindingCode("E004") // wrong field separator
	E005 = FindingCode("E005") // header mismatch
	E006 = FindingCode("E006") // row field count mismatch
	E007 = FindingCode("E007") // field type mismatch
	E008 = FindingCode("E008") // duplicate ID value
	E009 = FindingCode("E009") // unknown domain code
	E010 = FindingCode("E010") // entity ID format invalid
	E011 = FindingCode("E011") // text field too long
	E012 = FindingCode("E012") // placeholder not allowed in column
	// gocad
	E013 = FindingCode("E013") // unknown keyword
	E014 = FindingCode("E014") // malformed record
	E015 = FindingCode("E015") // dangling vertex reference
	E016 = FindingCode("E016") // degenerate primitive
	E017 = FindingCode("E017") // object without vertices or primitives
	// descriptor
	E018 = FindingCode("E018") // malformed JSON
	E019 = FindingCode("E019") // required field missing
	E020 = FindingCode("E020") // field type or format invalid
	// cross reference
	E021 = FindingCode("E021") // ID in mesh, absent from table
	E022 = FindingCode("E022") // ID in table, absent from mesh
	E023 = FindingCode("E023") // ID sets differ within table group

	W001 = FindingCode("W001") // unexpected file in bundle
	W002 = FindingCode("W002") // similar but not matching filename
	W003 = FindingCode("W003") // isolated vertex
	W004 = FindingCode("W004") // fewer than four distinct elevations
	W005 = FindingCode("W005") // unrecognized descriptor field
	W006 = FindingCode("W006") // cross-reference skipped
	W007 = FindingCode("W007") // placeholder value tolerated
)

// Finding is one validation result. Code and Description come from the
// registry, File/Locus/Detail are filled at emission time.
type Finding struct {
	Code        FindingCode
	Severity    Severity
	Description string
	File        string
	Locus       string
	Detail      string
}

var findingRegistry = map[FindingCode]*Finding{
	E001: {Code: E001, Severity: SeverityError, Description: "required file missing from bundle"},
	E002: {Code: E002, Severity: SeverityError, Description: "invalid encoding, file must be UTF-8"},
	E003: {Code: E003, Severity: SeverityError, Description: "line terminators must be LF only"},
	E004: {Code: E004, Severity: SeverityError, Description: "field separator must be comma"},
	E005: {Code: E005, Severity: SeverityError, Description: "header does not match declared columns"},
	E006: {Code: E006, Severity: SeverityError, Description: "row field count differs from declared columns"},
	E007: {Code: E007, Severity: SeverityError, Description: "field value does not match declared type"},
	E008: {Code: E008, Severity: SeverityError, Description: "duplicate value in ID column"},
	E009: {Code: E009, Severity: SeverityError, Description: "value not found in domain code table"},
	E010: {Code: E010, Severity: SeverityError, Description: "entity ID does not match required format"},
	E011: {Code: E011, Severity: SeverityError, Description: "text field exceeds maximum length"},
	E012: {Code: E012, Severity: SeverityError, Description: "placeholder value not allowed in this column"},
	E013: {Code: E013, Severity: SeverityError, Description: "unknown keyword"},
	E014: {Code: E014, Severity: SeverityError, Description: "malformed record"},
	E015: {Code: E015, Severity: SeverityError, Description: "primitive references undeclared vertex"},
	E016: {Code: E016, Severity: SeverityError, Description: "primitive with repeated vertices"},
	E017: {Code: E017, Severity: SeverityError, Description: "object declares no vertices or no primitives"},
	E018: {Code: E018, Severity: SeverityError, Description: "malformed JSON"},
	E019: {Code: E019, Severity: SeverityError, Description: "required descriptor field missing"},
	E020: {Code: E020, Severity: SeverityError, Description: "descriptor field has wrong type or format"},
	E021: {Code: E021, Severity: SeverityError, Description: "ID present in mesh but absent from attribute table"},
	E022: {Code: E022, Severity: SeverityError, Description: "ID present in attribute table but absent from mesh"},
	E023: {Code: E023, Severity: SeverityError, Description: "ID sets differ between tables of the same group"},

	W001: {Code: W001, Severity: SeverityWarning, Description: "unexpected file in bundle"},
	W002: {Code: W002, Severity: SeverityWarning, Description: "similar but not matching filename"},
	W003: {Code: W003, Severity: SeverityWarning, Description: "vertex referenced by no primitive"},
	W004: {Code: W004, Severity: SeverityWarning, Description: "fewer than four distinct elevation values"},
	W005: {Code: W005, Severity: SeverityWarning, Description: "unrecognized descriptor field"},
	W006: {Code: W006, Severity: SeverityWarning, Description: "cross-reference skipped due to prior errors"},
	W007: {Code: W007, Severity: SeverityWarning, Description: "placeholder value tolerated"},
}

func GetFinding(code FindingCode) *Finding {
	f, ok := findingRegistry[code]
	if !ok {
		return &Finding{
			Code:        code,
			Severity:    SeverityError,
			Description: fmt.Sprintf("unknown finding %s", code),
		}
	}
	return f
}

func (f *Finding) At(file, locus string) *Finding {
	return &Finding{
		Code:        f.Code,
		Severity:    f.Severity,
		Description: f.Description,
		File:        file,
		Locus:       locus,
		Detail:      f.Detail,
	}
}

func (f *Finding) AppendDetail(format string, a ...any) *Finding {
	return &Finding{
		Code:        f.Code,
		Severity:    f.Severity,
		Description: f.Description,
		File:        f.File,
		Locus:       f.Locus,
		Detail:      strings.TrimSpace(f.Detail + " " + fmt.Sprintf(format, a...)),
	}
}

func (f *Finding) Error() string {
	locus := ""
	if f.Locus != "" {
		locus = " @ " + f.Locus
	}
	return fmt.Sprintf("%s #%s - %s (%s%s) [%s]", f.Severity, f.Code, f.Description, f.File, locus, f.Detail)
}

// ValidationStatus collects findings in emission order.
type ValidationStatus struct {
	Findings []*Finding
}

func (status *ValidationStatus) Compact() {
	status.Findings = slices.CompactFunc(status.Findings, func(f1, f2 *Finding) bool {
		return f1.Code == f2.Code && f1.File == f2.File && f1.Locus == f2.Locus && f1.Detail == f2.Detail
	})
}

func (status *ValidationStatus) Errors() []*Finding {
	var errs []*Finding
	for _, f := range status.Findings {
		if f.Severity == SeverityError {
			errs = append(errs, f)
		}
	}
	return errs
}

func (status *ValidationStatus) Warnings() []*Finding {
	var warns []*Finding
	for _, f := range status.Findings {
		if f.Severity == SeverityWarning {
			warns = append(warns, f)
		}
	}
	return warns
}

type validationStatusKey struct{}

func NewContextValidation(parent context.Context) context.Context {
	return context.WithValue(parent, validationStatusKey{}, &ValidationStatus{
		Findings: []*Finding{},
	})
}

func GetValidationStatus(ctx context.Context) (*ValidationStatus, error) {
	statusAny := ctx.Value(validationStatusKey{})
	if statusAny == nil {
		return nil, errors.New("no validation status in context")
	}
	status, ok := statusAny.(*ValidationStatus)
	if !ok {
		return nil, errors.New("validation status not of type *ValidationStatus")
	}
	return status, nil
}

func addFindings(ctx context.Context, fs ...*Finding) error {
	status, err := GetValidationStatus(ctx)
	if err != nil {
		return errors.Wrap(err, "cannot add finding")
	}
	status.Findings = append(status.Findings, fs...)
	return nil
}
