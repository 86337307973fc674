package geomodel

import (
	"context"
	"strings"

	"emperror.dev/errors"
	"github.com/agnivade/levenshtein"
	"github.com/rs/zerolog"
	"golang.org/x/exp/slices"
)

// maxSimilarSuggestions caps the "did you mean" hints per missing file.
const maxSimilarSuggestions = 3

// similarName reports whether candidate is close enough to expected to
// be worth a hint: case-insensitive Levenshtein distance of at most a
// fifth of the expected name's length (and at least 1).
func similarName(expected, candidate string) bool {
	if strings.EqualFold(expected, candidate) {
		return true
	}
	tolerance := len(expected) / 5
	if tolerance < 1 {
		tolerance = 1
	}
	dist := levenshtein.ComputeDistance(strings.ToLower(expected), strings.ToLower(candidate))
	return dist <= tolerance
}

// CheckManifest verifies the available file list against the fixed
// manifest: every required entry present exactly once, near-miss names
// hinted, files outside the manifest reported as unexpected.
func CheckManifest(ctx context.Context, entries []ManifestEntry, available []string, logger zerolog.Logger) error {
	expected := map[string]ManifestEntry{}
	for _, entry := range entries {
		expected[entry.Name] = entry
	}

	for _, entry := range entries {
		v := NewValidator(ctx, entry.Name, logger)
		if slices.Contains(available, entry.Name) {
			// a second, case-variant copy of the same logical table is
			// not an exact duplicate on disk but still ambiguous
			for _, name := range available {
				if name != entry.Name && strings.EqualFold(name, entry.Name) {
					if err := v.AddWarning(W002, "", "'%s' differs only in case", name); err != nil {
						return errors.Wrapf(err, "cannot add finding for %s", entry.Name)
					}
				}
			}
			continue
		}
		if !entry.Required {
			continue
		}
		if err := v.AddError(E001, "", "'%s' not found", entry.Name); err != nil {
			return errors.Wrapf(err, "cannot add finding for %s", entry.Name)
		}
		var hints []string
		for _, name := range available {
			if _, ok := expected[name]; ok {
				continue
			}
			if similarName(entry.Name, name) {
				hints = append(hints, name)
			}
			if len(hints) >= maxSimilarSuggestions {
				break
			}
		}
		for _, hint := range hints {
			if err := v.AddWarning(W002, "", "found '%s'", hint); err != nil {
				return errors.Wrapf(err, "cannot add finding for %s", entry.Name)
			}
		}
	}

	for _, name := range available {
		if _, ok := expected[name]; ok {
			continue
		}
		v := NewValidator(ctx, name, logger)
		if err := v.AddWarning(W001, "", "file is not part of the bundle"); err != nil {
			return errors.Wrapf(err, "cannot add finding for %s", name)
		}
	}
	return nil
}
