package geomodel

import (
	"strings"
	"testing"

	"github.com/geomodel-archive/gochk3d/data/schemas"
)

func testVocabulary() *MeshVocabulary {
	return &MeshVocabulary{
		Header: []string{"GOCAD", "TSurf", "HEADER", "NAME", "AXIS_NAME", "AXIS_UNIT",
			"ZPOSITIVE", "GOCAD_ORIGINAL_COORDINATE_SYSTEM", "END_ORIGINAL_COORDINATE_SYSTEM",
			"PROPERTIES", "PROP_LEGAL_RANGES", "NO_DATA_VALUES", "PROPERTY_CLASSES",
			"PROPERTY_KINDS", "PROPERTY_SUBCLASSES", "ESIZES", "UNITS"},
		Coordinate:   []string{"TFACE", "TSOLID", "VRTX", "PVRTX"},
		Connectivity: []string{"TRGL", "TETRA"},
		Special: map[string]SpecialKeyword{
			"*visible":     {Kind: "boolean", Values: []string{"true", "false", "1", "0", "on", "off"}},
			"*solid*color": {Kind: "color"},
		},
	}
}

const validSurface = `GOCAD TSurf 1
HEADER {
name: FLT_0001_001
*visible: true
*solid*color: 0.5 0.5 0.5 1
}
GOCAD_ORIGINAL_COORDINATE_SYSTEM
AXIS_NAME "X" "Y" "Z"
ZPOSITIVE Elevation
END_ORIGINAL_COORDINATE_SYSTEM
TFACE
VRTX 1 0.0 0.0 0.0
VRTX 2 1.0 0.0 10.0
VRTX 3 0.0 1.0 20.0
VRTX 4 1.0 1.0 30.0
TRGL 1 2 3
TRGL 2 4 3
END
`

func runMesh(t *testing.T, raw string) (*MeshModel, []*Finding) {
	t.Helper()
	ctx, v := testValidator(t, "faults.ts")
	model, err := ParseMesh(v, testVocabulary(), []byte(raw))
	if err != nil {
		t.Fatalf("mesh parse failed: %v", err)
	}
	if model != nil {
		spec := &MeshSpec{Name: "faults.ts", Prefix: "FLT", Table: "main_fault_attributes.csv"}
		if err := ValidateMesh(v, spec, model); err != nil {
			t.Fatalf("mesh check failed: %v", err)
		}
	}
	return model, testFindings(t, ctx)
}

func TestMeshValid(t *testing.T) {
	model, findings := runMesh(t, validSurface)
	if len(findings) != 0 {
		t.Errorf("expected no findings, got %v", findingCodes(findings))
	}
	if len(model.Objects) != 1 {
		t.Fatalf("expected 1 object, got %d", len(model.Objects))
	}
	obj := model.Objects[0]
	if len(obj.Vertices) != 4 || len(obj.Triangles) != 2 {
		t.Errorf("parsed %d vertices, %d triangles", len(obj.Vertices), len(obj.Triangles))
	}
	if _, ok := model.EntityIDs["FLT_0001_001"]; !ok {
		t.Errorf("entity ID not collected: %v", model.EntityIDs)
	}
}

// propertySurface carries a per-vertex property block, the richest
// header the dialect allows.
const propertySurface = `GOCAD TSurf 1
HEADER {
name: FLT_0001_001
*visible: true
*solid*color: 0.5 0.5 0.5 1
}
GOCAD_ORIGINAL_COORDINATE_SYSTEM
NAME Default
AXIS_NAME "X" "Y" "Z"
AXIS_UNIT "m" "m" "m"
ZPOSITIVE Elevation
END_ORIGINAL_COORDINATE_SYSTEM
PROPERTIES depth
PROP_LEGAL_RANGES **none** **none**
NO_DATA_VALUES -99999
PROPERTY_CLASSES depth
PROPERTY_KINDS Depth
PROPERTY_SUBCLASSES QUANTITY Float
ESIZES 1
UNITS m
TFACE
PVRTX 1 0.0 0.0 0.0 12.5
PVRTX 2 1.0 0.0 10.0 13.0
PVRTX 3 0.0 1.0 20.0 14.5
PVRTX 4 1.0 1.0 30.0 15.0
TRGL 1 2 3
TRGL 2 4 3
END
`

func TestMeshPropertyBlockEmbeddedVocabulary(t *testing.T) {
	schema, err := LoadBundleSchema(schemas.BundleYAML)
	if err != nil {
		t.Fatalf("cannot load embedded schema: %v", err)
	}
	ctx, v := testValidator(t, "faults.ts")
	model, err := ParseMesh(v, &schema.Vocabulary, []byte(propertySurface))
	if err != nil {
		t.Fatalf("mesh parse failed: %v", err)
	}
	if findings := testFindings(t, ctx); len(findings) != 0 {
		t.Errorf("expected no findings, got %v", findingCodes(findings))
	}
	obj := model.Objects[0]
	if len(obj.Properties) != 1 || obj.Properties[0] != "depth" {
		t.Errorf("property names not collected: %v", obj.Properties)
	}
	if len(obj.Vertices) != 4 || len(obj.Vertices[0].Props) != 1 {
		t.Errorf("per-vertex property values not parsed: %+v", obj.Vertices)
	}
}

func TestMeshUnknownKeyword(t *testing.T) {
	raw := strings.Replace(validSurface, "TRGL 1 2 3", "FROBNICATE 1 2 3\nFROBNICATE 4 5 6\nTRGL 1 2 3", 1)
	_, findings := runMesh(t, raw)
	if countCode(findings, E013) != 1 {
		t.Errorf("expected the unknown keyword reported once, got %v", findingCodes(findings))
	}
	f := firstOfCode(findings, E013)
	if f == nil {
		t.Fatal("no unknown keyword finding")
	}
	if !strings.Contains(f.Detail, "FROBNICATE") {
		t.Errorf("unknown keyword not named: %s", f.Detail)
	}
	if f.Locus == "" {
		t.Error("unknown keyword without line locus")
	}
}

func TestMeshMalformedVertex(t *testing.T) {
	raw := strings.Replace(validSurface, "VRTX 2 1.0 0.0 10.0", "VRTX 2 1.0 north 10.0", 1)
	_, findings := runMesh(t, raw)
	f := firstOfCode(findings, E014)
	if f == nil {
		t.Fatalf("expected a malformed record error, got %v", findingCodes(findings))
	}
	if !strings.Contains(f.Detail, "north") {
		t.Errorf("offending token not named: %s", f.Detail)
	}
}

func TestMeshDanglingReference(t *testing.T) {
	raw := strings.Replace(validSurface, "TRGL 2 4 3", "TRGL 2 999 3", 1)
	_, findings := runMesh(t, raw)
	f := firstOfCode(findings, E015)
	if f == nil {
		t.Fatalf("expected a dangling reference error, got %v", findingCodes(findings))
	}
	if !strings.Contains(f.Detail, "vertex 999") {
		t.Errorf("missing vertex not named: %s", f.Detail)
	}
	// vertex 4 is now isolated
	if countCode(findings, W003) != 1 {
		t.Errorf("expected an isolated vertex warning, got %v", findingCodes(findings))
	}
}

func TestMeshDegenerateTriangle(t *testing.T) {
	raw := strings.Replace(validSurface, "TRGL 2 4 3", "TRGL 2 2 4", 1)
	_, findings := runMesh(t, raw)
	if countCode(findings, E016) != 1 {
		t.Errorf("expected a degenerate primitive error, got %v", findingCodes(findings))
	}
}

func TestMeshFlatRelief(t *testing.T) {
	raw := validSurface
	for _, z := range []string{"10.0", "20.0", "30.0"} {
		raw = strings.Replace(raw, z, "0.0", 1)
	}
	_, findings := runMesh(t, raw)
	f := firstOfCode(findings, W004)
	if f == nil {
		t.Fatalf("expected a relief warning, got %v", findingCodes(findings))
	}
	if !strings.Contains(f.Detail, "1 distinct z") {
		t.Errorf("distinct elevation count not reported: %s", f.Detail)
	}
}

func TestMeshEmptyObject(t *testing.T) {
	raw := "GOCAD TSurf 1\nHEADER {\nname: FLT_0001_001\n}\nEND\n"
	_, findings := runMesh(t, raw)
	if countCode(findings, E017) != 1 {
		t.Errorf("expected an empty object error, got %v", findingCodes(findings))
	}
}

func TestMeshEntityIDFormat(t *testing.T) {
	raw := strings.Replace(validSurface, "name: FLT_0001_001", "name: FLT_1", 1)
	model, findings := runMesh(t, raw)
	if countCode(findings, E010) != 1 {
		t.Errorf("expected an ID format error, got %v", findingCodes(findings))
	}
	if len(model.IDSet()) != 0 {
		t.Errorf("malformed ID must not enter the ID set: %v", model.IDSet())
	}
}

func TestMeshDuplicateObjectName(t *testing.T) {
	raw := validSurface + validSurface
	_, findings := runMesh(t, raw)
	if countCode(findings, E008) != 1 {
		t.Errorf("expected a duplicate name error, got %v", findingCodes(findings))
	}
}

func TestMeshSpecialValues(t *testing.T) {
	raw := strings.Replace(validSurface, "*visible: true", "*visible: sometimes", 1)
	_, findings := runMesh(t, raw)
	f := firstOfCode(findings, E014)
	if f == nil {
		t.Fatalf("expected a malformed record error, got %v", findingCodes(findings))
	}
	if !strings.Contains(f.Detail, "sometimes") {
		t.Errorf("offending value not named: %s", f.Detail)
	}

	raw = strings.Replace(validSurface, "*solid*color: 0.5 0.5 0.5 1", "*solid*color: 2 3 4", 1)
	_, findings = runMesh(t, raw)
	if countCode(findings, E014) != 1 {
		t.Errorf("expected an RGB range error, got %v", findingCodes(findings))
	}
}

func TestMeshInvalidEncoding(t *testing.T) {
	model, findings := runMesh(t, "GOCAD TSurf 1\n\xff\xfe\nEND\n")
	if model != nil {
		t.Error("undecodable file must not produce a model")
	}
	if len(findings) != 1 || findings[0].Code != E002 {
		t.Errorf("expected a single encoding error, got %v", findingCodes(findings))
	}
}
