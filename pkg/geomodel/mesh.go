package geomodel

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/exp/slices"
)

type Vertex struct {
	ID      int64
	X, Y, Z float64
	Line    int
	Props   []float64
}

type Triangle struct {
	Index int
	Line  int
	V     [3]int64
}

type Tetrahedron struct {
	Index int
	Line  int
	V     [4]int64
}

// MeshObject is one GOCAD object (one surface or solid) inside a file.
type MeshObject struct {
	Name       string
	Line       int
	Vertices   []Vertex
	Triangles  []Triangle
	Tetrahedra []Tetrahedron
	Properties []string

	vertexLines map[int64]int
}

func (o *MeshObject) HasVertex(id int64) bool {
	_, ok := o.vertexLines[id]
	return ok
}

// MeshModel is the parsed representation of one GOCAD file.
type MeshModel struct {
	Name    string
	Objects []*MeshObject
	// EntityIDs maps each well-formed object ID found in name: records
	// to the line it was declared on.
	EntityIDs map[string]int
}

// IDSet returns the entity IDs declared in the file.
func (m *MeshModel) IDSet() map[string]struct{} {
	ids := map[string]struct{}{}
	for id := range m.EntityIDs {
		ids[id] = struct{}{}
	}
	return ids
}

const (
	sectionHeader       = "header"
	sectionCoordinates  = "coordinates"
	sectionConnectivity = "connectivity"
)

// ParseMesh scans a GOCAD file line by line, enforcing the keyword
// vocabulary and record grammar, and builds the mesh model. Grammar
// defects are emitted as findings; parsing continues so one pass lists
// every defect.
func ParseMesh(v *Validator, vocab *MeshVocabulary, raw []byte) (*MeshModel, error) {
	if !utf8.Valid(raw) {
		return nil, v.AddError(E002, "", "byte sequence invalid for UTF-8")
	}

	model := &MeshModel{Name: v.File(), EntityIDs: map[string]int{}}
	var current *MeshObject
	section := ""
	reported := map[string]struct{}{}

	for lineNo, line := range strings.Split(string(raw), "\n") {
		lineNo++ // 1-based
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "}") ||
			strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, "//") {
			continue
		}
		if trimmed == "END" || strings.HasPrefix(trimmed, "END_") {
			section = ""
			continue
		}

		if special, ok := matchSpecial(vocab, trimmed); ok {
			if err := checkSpecial(v, special, trimmed, lineNo); err != nil {
				return nil, err
			}
			continue
		}

		fields := strings.Fields(trimmed)
		keyword := fields[0]

		switch {
		case keyword == "GOCAD":
			current = &MeshObject{Line: lineNo, vertexLines: map[int64]int{}}
			model.Objects = append(model.Objects, current)
			section = sectionHeader
			continue
		case strings.HasPrefix(trimmed, "name:"):
			name := strings.TrimSpace(strings.TrimPrefix(trimmed, "name:"))
			if current != nil && current.Name == "" {
				current.Name = name
				current.Line = lineNo
			}
			if _, dup := model.EntityIDs[name]; dup {
				if err := v.AddError(E008, fmt.Sprintf("line %d", lineNo), "object name '%s' already used", name); err != nil {
					return nil, err
				}
			} else {
				model.EntityIDs[name] = lineNo
			}
			continue
		}

		inCoordinate := matchKeyword(vocab.Coordinate, trimmed)
		inConnectivity := matchKeyword(vocab.Connectivity, trimmed)
		if inCoordinate {
			section = sectionCoordinates
		} else if inConnectivity {
			section = sectionConnectivity
		}

		switch keyword {
		case "VRTX", "PVRTX":
			if err := parseVertex(v, current, fields, lineNo); err != nil {
				return nil, err
			}
			continue
		case "TRGL":
			if err := parseTriangle(v, current, fields, lineNo); err != nil {
				return nil, err
			}
			continue
		case "TETRA":
			if err := parseTetrahedron(v, current, fields, lineNo); err != nil {
				return nil, err
			}
			continue
		case "PROPERTIES":
			if current != nil {
				current.Properties = append(current.Properties, fields[1:]...)
			}
			continue
		case "TFACE", "TSOLID":
			continue
		}

		if inCoordinate || inConnectivity {
			continue
		}
		if matchKeyword(vocab.Header, trimmed) && (section == sectionHeader || section == "") {
			continue
		}

		if _, seen := reported[keyword]; seen {
			continue
		}
		reported[keyword] = struct{}{}
		locus := fmt.Sprintf("line %d", lineNo)
		if section != "" {
			if err := v.AddError(E013, locus, "'%s' not valid in %s section", keyword, section); err != nil {
				return nil, err
			}
		} else {
			if err := v.AddError(E013, locus, "'%s'", keyword); err != nil {
				return nil, err
			}
		}
	}
	return model, nil
}

func matchKeyword(vocab []string, line string) bool {
	return slices.ContainsFunc(vocab, func(kw string) bool {
		return strings.HasPrefix(line, kw)
	})
}

func matchSpecial(vocab *MeshVocabulary, line string) (*SpecialKeyword, bool) {
	for prefix, special := range vocab.Special {
		if strings.HasPrefix(line, prefix) {
			s := special
			return &s, true
		}
	}
	// every other starred header attribute is carried through
	// unvalidated, as the dialect allows
	if strings.HasPrefix(line, "*") {
		return nil, true
	}
	return nil, false
}

func checkSpecial(v *Validator, special *SpecialKeyword, line string, lineNo int) error {
	if special == nil {
		return nil
	}
	_, value, found := strings.Cut(line, ":")
	value = strings.TrimSpace(value)
	locus := fmt.Sprintf("line %d", lineNo)
	switch special.Kind {
	case "boolean":
		if !found || !containsFold(special.Values, value) {
			return v.AddError(E014, locus, "value '%s' not in accepted set %s", value, tokenList(special.Values))
		}
	case "color":
		if !found || !validColor(value) {
			return v.AddError(E014, locus, "value '%s' is not an RGB color", value)
		}
	}
	return nil
}

// validColor accepts "#rrggbb" or 3-4 color components in [0,1].
func validColor(value string) bool {
	if strings.HasPrefix(value, "#") {
		return len(value) == 7
	}
	parts := strings.Fields(value)
	if len(parts) != 3 && len(parts) != 4 {
		return false
	}
	for _, p := range parts {
		f, err := strconv.ParseFloat(p, 64)
		if err != nil || f < 0 || f > 1 {
			return false
		}
	}
	return true
}

func parseVertex(v *Validator, obj *MeshObject, fields []string, lineNo int) error {
	locus := fmt.Sprintf("line %d", lineNo)
	if obj == nil {
		return v.AddError(E014, locus, "%s outside of an object", fields[0])
	}
	if len(fields) < 5 {
		return v.AddError(E014, locus, "%s needs id and 3 coordinates, got %d arguments", fields[0], len(fields)-1)
	}
	id, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return v.AddError(E014, locus, "%s id '%s' is not an integer", fields[0], fields[1])
	}
	vertex := Vertex{ID: id, Line: lineNo}
	coords := [3]*float64{&vertex.X, &vertex.Y, &vertex.Z}
	for i := 0; i < 3; i++ {
		f, err := strconv.ParseFloat(fields[2+i], 64)
		if err != nil {
			return v.AddError(E014, locus, "%s coordinate '%s' is not a number", fields[0], fields[2+i])
		}
		*coords[i] = f
	}
	// property values attached to the vertex must be numeric
	for _, p := range fields[5:] {
		f, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return v.AddError(E014, locus, "%s property value '%s' is not a number", fields[0], p)
		}
		vertex.Props = append(vertex.Props, f)
	}
	obj.Vertices = append(obj.Vertices, vertex)
	obj.vertexLines[id] = lineNo
	return nil
}

func parseTriangle(v *Validator, obj *MeshObject, fields []string, lineNo int) error {
	locus := fmt.Sprintf("line %d", lineNo)
	if obj == nil {
		return v.AddError(E014, locus, "TRGL outside of an object")
	}
	if len(fields) != 4 {
		return v.AddError(E014, locus, "TRGL needs 3 vertex indices, got %d arguments", len(fields)-1)
	}
	tri := Triangle{Index: len(obj.Triangles), Line: lineNo}
	for i := 0; i < 3; i++ {
		id, err := strconv.ParseInt(fields[1+i], 10, 64)
		if err != nil {
			return v.AddError(E014, locus, "TRGL index '%s' is not an integer", fields[1+i])
		}
		tri.V[i] = id
	}
	obj.Triangles = append(obj.Triangles, tri)
	return nil
}

func parseTetrahedron(v *Validator, obj *MeshObject, fields []string, lineNo int) error {
	locus := fmt.Sprintf("line %d", lineNo)
	if obj == nil {
		return v.AddError(E014, locus, "TETRA outside of an object")
	}
	if len(fields) != 5 {
		return v.AddError(E014, locus, "TETRA needs 4 vertex indices, got %d arguments", len(fields)-1)
	}
	tetra := Tetrahedron{Index: len(obj.Tetrahedra), Line: lineNo}
	for i := 0; i < 4; i++ {
		id, err := strconv.ParseInt(fields[1+i], 10, 64)
		if err != nil {
			return v.AddError(E014, locus, "TETRA index '%s' is not an integer", fields[1+i])
		}
		tetra.V[i] = id
	}
	obj.Tetrahedra = append(obj.Tetrahedra, tetra)
	return nil
}
