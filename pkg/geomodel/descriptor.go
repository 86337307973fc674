package geomodel

import (
	"bytes"
	"encoding/json"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"emperror.dev/errors"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"golang.org/x/exp/slices"
)

// Descriptor is the parsed JSON metadata object of the bundle.
type Descriptor map[string]any

// compileDescriptorSchema turns the configured required-field table
// into a JSON schema document. The descriptor has a fixed, shallow
// shape, so a flat properties/required schema is all that is needed.
func compileDescriptorSchema(schema *DescriptorSchema) (*jsonschema.Schema, error) {
	properties := map[string]any{}
	required := []string{}
	for _, field := range schema.Fields {
		var prop map[string]any
		switch field.Kind {
		case "string":
			prop = map[string]any{"type": "string"}
		case "object":
			prop = map[string]any{"type": "object"}
		case "datetime":
			prop = map[string]any{"type": "string", "format": "date-time"}
		case "null":
			prop = map[string]any{"type": "null"}
		default:
			return nil, errors.Errorf("descriptor field '%s' has unknown kind '%s'", field.Name, field.Kind)
		}
		properties[field.Name] = prop
		required = append(required, field.Name)
	}
	document := map[string]any{
		"type":       "object",
		"properties": properties,
		"required":   required,
	}
	data, err := json.Marshal(document)
	if err != nil {
		return nil, errors.Wrap(err, "cannot marshal descriptor schema")
	}
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true
	if err := compiler.AddResource("descriptor.schema.json", bytes.NewReader(data)); err != nil {
		return nil, errors.Wrap(err, "cannot add descriptor schema resource")
	}
	compiled, err := compiler.Compile("descriptor.schema.json")
	if err != nil {
		return nil, errors.Wrap(err, "cannot compile descriptor schema")
	}
	return compiled, nil
}

var quotedNamePattern = regexp.MustCompile(`'([^']+)'`)

// ValidateDescriptor parses the JSON metadata file and walks the
// required-field schema. A parse failure ends the check, unknown keys
// only warn.
func ValidateDescriptor(v *Validator, schema *DescriptorSchema, raw []byte) (Descriptor, error) {
	if !utf8.Valid(raw) {
		return nil, v.AddError(E002, "", "byte sequence invalid for UTF-8")
	}

	var document any
	if err := json.Unmarshal(raw, &document); err != nil {
		return nil, v.AddError(E018, "", "%v", err)
	}
	object, ok := document.(map[string]any)
	if !ok {
		return nil, v.AddError(E018, "", "top level is not a JSON object")
	}

	compiled, err := compileDescriptorSchema(schema)
	if err != nil {
		return nil, errors.Wrap(err, "descriptor schema unusable")
	}

	if err := compiled.Validate(document); err != nil {
		var validationErr *jsonschema.ValidationError
		if !errors.As(err, &validationErr) {
			return nil, errors.Wrap(err, "cannot validate descriptor")
		}
		if err := emitSchemaFindings(v, validationErr); err != nil {
			return nil, err
		}
	}

	known := make([]string, 0, len(schema.Fields))
	for _, field := range schema.Fields {
		known = append(known, field.Name)
	}
	for key := range object {
		if !slices.Contains(known, key) {
			if err := v.AddWarning(W005, keyPath("/"+key), "field is not part of the descriptor schema"); err != nil {
				return nil, err
			}
		}
	}
	return Descriptor(object), nil
}

// emitSchemaFindings maps schema violations to findings: required ->
// missing field, type/format -> wrong type. Only leaf causes carry the
// actual defect.
func emitSchemaFindings(v *Validator, validationErr *jsonschema.ValidationError) error {
	if len(validationErr.Causes) == 0 {
		keyword := validationErr.KeywordLocation
		switch {
		case strings.HasSuffix(keyword, "/required"):
			for _, match := range quotedNamePattern.FindAllStringSubmatch(validationErr.Message, -1) {
				if err := v.AddError(E019, keyPath(validationErr.InstanceLocation+"/"+match[1]),
					"field is required"); err != nil {
					return err
				}
			}
		case strings.HasSuffix(keyword, "/type"), strings.HasSuffix(keyword, "/format"):
			if err := v.AddError(E020, keyPath(validationErr.InstanceLocation),
				"%s", validationErr.Message); err != nil {
				return err
			}
		default:
			if err := v.AddError(E020, keyPath(validationErr.InstanceLocation),
				"%s", validationErr.Message); err != nil {
				return err
			}
		}
		return nil
	}
	for _, cause := range validationErr.Causes {
		if err := emitSchemaFindings(v, cause); err != nil {
			return err
		}
	}
	return nil
}

// keyPath renders a JSON pointer as a dotted key path for the report.
// Pointer tokens come back percent-encoded from the schema library, so
// they are unescaped before the ~1 and ~0 sequences are resolved.
func keyPath(pointer string) string {
	trimmed := strings.TrimPrefix(pointer, "/")
	if trimmed == "" {
		return "$"
	}
	tokens := strings.Split(trimmed, "/")
	for i, token := range tokens {
		if unescaped, err := url.PathUnescape(token); err == nil {
			token = unescaped
		}
		token = strings.ReplaceAll(token, "~1", "/")
		tokens[i] = strings.ReplaceAll(token, "~0", "~")
	}
	return strings.Join(tokens, ".")
}
