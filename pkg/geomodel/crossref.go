package geomodel

import (
	"context"
	"strings"

	"emperror.dev/errors"
	"github.com/rs/zerolog"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// CrossReference checks identifier consistency between file families:
// every mesh file against its correlated attribute table, and the
// tables of each group against the group's leading table. It only
// borrows the parses produced upstream; a pair with a failed side is
// skipped with a warning instead of cascading.
func CrossReference(ctx context.Context, schema *BundleSchema, tables map[string]*CsvTable, meshes map[string]*MeshModel, logger zerolog.Logger) error {
	for _, spec := range schema.Meshes {
		if spec.Table == "" {
			continue
		}
		v := NewValidator(ctx, spec.Name, logger)
		mesh := meshes[spec.Name]
		table := tables[spec.Table]
		tableSchema := schema.Table(spec.Table)
		if mesh == nil || table == nil || tableSchema == nil {
			if err := v.AddWarning(W006, "", "cannot compare against '%s'", spec.Table); err != nil {
				return errors.Wrapf(err, "cannot add finding for %s", spec.Name)
			}
			continue
		}
		meshIDs := mesh.IDSet()
		tableIDs := table.IDSet(tableSchema)

		if only := sortedDifference(meshIDs, tableIDs); len(only) > 0 {
			if err := v.AddError(E021, "", "%d IDs missing from '%s': %s",
				len(only), spec.Table, strings.Join(only, ", ")); err != nil {
				return errors.Wrapf(err, "cannot add finding for %s", spec.Name)
			}
		}
		if only := sortedDifference(tableIDs, meshIDs); len(only) > 0 {
			if err := v.AddError(E022, "", "%d IDs from '%s' have no surface here: %s",
				len(only), spec.Table, strings.Join(only, ", ")); err != nil {
				return errors.Wrapf(err, "cannot add finding for %s", spec.Name)
			}
		}
	}

	for _, group := range sortedGroupNames(schema) {
		members := schema.TableGroups()[group]
		if len(members) < 2 {
			continue
		}
		reference := members[0]
		referenceTable := tables[reference.Name]
		for _, member := range members[1:] {
			v := NewValidator(ctx, member.Name, logger)
			memberTable := tables[member.Name]
			if referenceTable == nil || memberTable == nil {
				if err := v.AddWarning(W006, "", "cannot compare against '%s'", reference.Name); err != nil {
					return errors.Wrapf(err, "cannot add finding for %s", member.Name)
				}
				continue
			}
			referenceIDs := referenceTable.IDSet(reference)
			memberIDs := memberTable.IDSet(member)
			diff := append(sortedDifference(referenceIDs, memberIDs), sortedDifference(memberIDs, referenceIDs)...)
			if len(diff) > 0 {
				slices.Sort(diff)
				if err := v.AddError(E023, "", "%s group, against '%s': %s",
					group, reference.Name, strings.Join(diff, ", ")); err != nil {
					return errors.Wrapf(err, "cannot add finding for %s", member.Name)
				}
			}
		}
	}
	return nil
}

// sortedDifference returns the members of a absent from b, ordered.
func sortedDifference(a, b map[string]struct{}) []string {
	var only []string
	for id := range a {
		if _, ok := b[id]; !ok {
			only = append(only, id)
		}
	}
	slices.Sort(only)
	return only
}

func sortedGroupNames(schema *BundleSchema) []string {
	names := maps.Keys(schema.TableGroups())
	slices.Sort(names)
	return names
}
