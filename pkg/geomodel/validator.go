package geomodel

import (
	"context"
	"runtime"

	"emperror.dev/errors"
	"github.com/rs/zerolog"
)

type Validation interface {
	AddError(code FindingCode, locus string, format string, a ...any) error
	AddWarning(code FindingCode, locus string, format string, a ...any) error
}

// Validator emits findings for one file into the validation status
// carried by its context.
type Validator struct {
	ctx    context.Context
	file   string
	logger zerolog.Logger
}

func NewValidator(ctx context.Context, file string, logger zerolog.Logger) *Validator {
	return &Validator{
		ctx:    ctx,
		file:   file,
		logger: logger,
	}
}

func (v *Validator) File() string { return v.file }

func (v *Validator) add(code FindingCode, locus string, format string, a ...any) error {
	finding := GetFinding(code).At(v.file, locus).AppendDetail(format, a...)
	_, file, line, _ := runtime.Caller(2)
	v.logger.Debug().Msgf("[%s:%v] %s", file, line, finding.Error())
	return errors.WithStack(addFindings(v.ctx, finding))
}

func (v *Validator) AddError(code FindingCode, locus string, format string, a ...any) error {
	return v.add(code, locus, format, a...)
}

func (v *Validator) AddWarning(code FindingCode, locus string, format string, a ...any) error {
	return v.add(code, locus, format, a...)
}

var _ Validation = (*Validator)(nil)
