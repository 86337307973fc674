package geomodel

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
)

func testValidator(t *testing.T, file string) (context.Context, *Validator) {
	t.Helper()
	ctx := NewContextValidation(context.Background())
	return ctx, NewValidator(ctx, file, zerolog.Nop())
}

func testFindings(t *testing.T, ctx context.Context) []*Finding {
	t.Helper()
	status, err := GetValidationStatus(ctx)
	if err != nil {
		t.Fatalf("cannot get validation status: %v", err)
	}
	return status.Findings
}

func findingCodes(findings []*Finding) []FindingCode {
	codes := make([]FindingCode, 0, len(findings))
	for _, f := range findings {
		codes = append(codes, f.Code)
	}
	return codes
}

func countCode(findings []*Finding, code FindingCode) int {
	n := 0
	for _, f := range findings {
		if f.Code == code {
			n++
		}
	}
	return n
}

func firstOfCode(findings []*Finding, code FindingCode) *Finding {
	for _, f := range findings {
		if f.Code == code {
			return f
		}
	}
	return nil
}
