package geomodel

import (
	"context"
	"io/fs"
	"time"

	"emperror.dev/errors"
	"github.com/rs/zerolog"
	"golang.org/x/exp/slices"
)

// ValidateBundle runs the full pipeline over one model folder:
// manifest, attribute tables, meshes, descriptor, cross-references.
// I/O failures (unreadable folder or file) abort the run before any
// report is produced; everything else becomes a finding.
func ValidateBundle(ctx context.Context, fsys fs.FS, folder string, schema *BundleSchema, logger zerolog.Logger) (*Report, error) {
	report := NewReport(folder)
	ctx = NewContextValidation(ctx)

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, errors.Wrapf(err, "cannot list folder '%s'", folder)
	}
	var available []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		available = append(available, entry.Name())
		info, err := entry.Info()
		if err != nil {
			return nil, errors.Wrapf(err, "cannot stat '%s'", entry.Name())
		}
		report.Files = append(report.Files, FileSummary{Name: entry.Name(), Size: info.Size()})
	}

	logger.Info().Msgf("validating bundle '%s' (%d files)", folder, len(available))

	if err := CheckManifest(ctx, schema.Manifest, available, logger); err != nil {
		return nil, errors.Wrap(err, "manifest check failed")
	}

	tables := map[string]*CsvTable{}
	for _, tableSchema := range schema.Tables {
		if !slices.Contains(available, tableSchema.Name) {
			continue
		}
		raw, err := fs.ReadFile(fsys, tableSchema.Name)
		if err != nil {
			return nil, errors.Wrapf(err, "cannot read '%s'", tableSchema.Name)
		}
		v := NewValidator(ctx, tableSchema.Name, logger)
		table, err := ValidateCsv(v, tableSchema, schema.Domains, raw)
		if err != nil {
			return nil, errors.Wrapf(err, "csv check of '%s' failed", tableSchema.Name)
		}
		if table != nil {
			tables[tableSchema.Name] = table
		}
	}

	meshes := map[string]*MeshModel{}
	for _, meshSpec := range schema.Meshes {
		if !slices.Contains(available, meshSpec.Name) {
			continue
		}
		raw, err := fs.ReadFile(fsys, meshSpec.Name)
		if err != nil {
			return nil, errors.Wrapf(err, "cannot read '%s'", meshSpec.Name)
		}
		v := NewValidator(ctx, meshSpec.Name, logger)
		mesh, err := ParseMesh(v, &schema.Vocabulary, raw)
		if err != nil {
			return nil, errors.Wrapf(err, "mesh check of '%s' failed", meshSpec.Name)
		}
		if mesh == nil {
			continue
		}
		if err := ValidateMesh(v, meshSpec, mesh); err != nil {
			return nil, errors.Wrapf(err, "mesh check of '%s' failed", meshSpec.Name)
		}
		meshes[meshSpec.Name] = mesh
	}

	for _, entry := range schema.Manifest {
		if entry.Category != CategoryDescriptor || !slices.Contains(available, entry.Name) {
			continue
		}
		raw, err := fs.ReadFile(fsys, entry.Name)
		if err != nil {
			return nil, errors.Wrapf(err, "cannot read '%s'", entry.Name)
		}
		v := NewValidator(ctx, entry.Name, logger)
		if _, err := ValidateDescriptor(v, &schema.Descriptor, raw); err != nil {
			return nil, errors.Wrapf(err, "descriptor check of '%s' failed", entry.Name)
		}
	}

	if err := CrossReference(ctx, schema, tables, meshes, logger); err != nil {
		return nil, errors.Wrap(err, "cross-reference check failed")
	}

	status, err := GetValidationStatus(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "cannot get validation status")
	}
	report.AddStatus(status)
	report.Duration = time.Since(report.Started)

	logger.Info().Msgf("verdict %s: %d errors, %d warnings",
		report.Verdict(), report.ErrorCount(), report.WarningCount())
	return report, nil
}
