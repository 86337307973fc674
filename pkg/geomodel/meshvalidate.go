package geomodel

import (
	"fmt"
	"strings"
)

// minDistinctElevations is the relief sanity threshold: a surface with
// fewer distinct z values is most likely degenerate or misprojected.
const minDistinctElevations = 4

// ValidateMesh performs the post-parse checks on a mesh model:
// connectivity of every object and, when the file family carries
// entity IDs, their format and uniqueness.
func ValidateMesh(v *Validator, spec *MeshSpec, model *MeshModel) error {
	for _, obj := range model.Objects {
		if err := validateMeshObject(v, obj); err != nil {
			return err
		}
	}
	if spec.Prefix == "" {
		return nil
	}
	pattern := entityIDPattern(spec.Prefix)
	for id, line := range model.EntityIDs {
		if !pattern.MatchString(id) {
			if err := v.AddError(E010, fmt.Sprintf("line %d", line),
				"object name '%s' does not match %s_XXXX_XXX", id, spec.Prefix); err != nil {
				return err
			}
			delete(model.EntityIDs, id)
		}
	}
	return nil
}

func validateMeshObject(v *Validator, obj *MeshObject) error {
	name := obj.Name
	if name == "" {
		name = fmt.Sprintf("object at line %d", obj.Line)
	}

	if len(obj.Vertices) == 0 || (len(obj.Triangles) == 0 && len(obj.Tetrahedra) == 0) {
		return v.AddError(E017, fmt.Sprintf("line %d", obj.Line),
			"'%s' has %d vertices, %d triangles, %d tetrahedra",
			name, len(obj.Vertices), len(obj.Triangles), len(obj.Tetrahedra))
	}

	referenced := map[int64]struct{}{}

	for _, tri := range obj.Triangles {
		locus := fmt.Sprintf("line %d", tri.Line)
		for _, id := range tri.V {
			if !obj.HasVertex(id) {
				if err := v.AddError(E015, locus,
					"triangle %d references vertex %d, %d vertices declared",
					tri.Index, id, len(obj.Vertices)); err != nil {
					return err
				}
				continue
			}
			referenced[id] = struct{}{}
		}
		if tri.V[0] == tri.V[1] || tri.V[0] == tri.V[2] || tri.V[1] == tri.V[2] {
			if err := v.AddError(E016, locus, "triangle %d repeats vertices (%d, %d, %d)",
				tri.Index, tri.V[0], tri.V[1], tri.V[2]); err != nil {
				return err
			}
		}
	}

	for _, tetra := range obj.Tetrahedra {
		locus := fmt.Sprintf("line %d", tetra.Line)
		for _, id := range tetra.V {
			if !obj.HasVertex(id) {
				if err := v.AddError(E015, locus,
					"tetrahedron %d references vertex %d, %d vertices declared",
					tetra.Index, id, len(obj.Vertices)); err != nil {
					return err
				}
				continue
			}
			referenced[id] = struct{}{}
		}
		if repeatsVertex(tetra.V[:]) {
			if err := v.AddError(E016, locus, "tetrahedron %d repeats vertices (%d, %d, %d, %d)",
				tetra.Index, tetra.V[0], tetra.V[1], tetra.V[2], tetra.V[3]); err != nil {
				return err
			}
		}
	}

	// disconnected components may be legitimate in multi-part surfaces,
	// so isolated vertices only warn
	var isolated []string
	for _, vertex := range obj.Vertices {
		if _, ok := referenced[vertex.ID]; !ok {
			isolated = append(isolated, fmt.Sprintf("%d", vertex.ID))
		}
	}
	if len(isolated) > 0 {
		sample := isolated
		if len(sample) > 5 {
			sample = sample[:5]
		}
		if err := v.AddWarning(W003, fmt.Sprintf("object '%s'", name),
			"%d vertices referenced by no primitive (e.g. %s)",
			len(isolated), strings.Join(sample, ", ")); err != nil {
			return err
		}
	}

	elevations := map[float64]struct{}{}
	for _, vertex := range obj.Vertices {
		elevations[vertex.Z] = struct{}{}
	}
	if len(elevations) < minDistinctElevations {
		if err := v.AddWarning(W004, fmt.Sprintf("object '%s'", name),
			"only %d distinct z values", len(elevations)); err != nil {
			return err
		}
	}
	return nil
}

func repeatsVertex(ids []int64) bool {
	seen := map[int64]struct{}{}
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			return true
		}
		seen[id] = struct{}{}
	}
	return false
}
