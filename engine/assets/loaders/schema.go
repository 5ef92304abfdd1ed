package loaders

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/spaghettifunk/dolas/engine/core"
)

const entitySchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["mesh", "material"],
  "properties": {
    "name": {"type": "string"},
    "mesh": {"type": "string", "minLength": 1},
    "material": {"type": "string", "minLength": 1}
  }
}`

const materialSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "properties": {
    "vertex_shader": {"type": "string"},
    "pixel_shader": {"type": "string"},
    "texture": {
      "type": "object",
      "propertyNames": {"enum": ["albedo_map", "normal_map", "roughness_map", "metallic_map"]},
      "additionalProperties": {"type": "string", "minLength": 1}
    },
    "parameter": {
      "type": "object",
      "additionalProperties": {"type": "number"}
    },
    "shading": {"enum": ["deferred", "forward"]}
  }
}`

const meshSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["vertex_count", "vertex_list"],
  "properties": {
    "vertex_count": {"type": "integer", "minimum": 0},
    "vertex_list": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["position"],
        "properties": {
          "position": {"type": "array", "items": {"type": "number"}, "minItems": 3},
          "uv": {"type": "array", "items": {"type": "number"}, "minItems": 2},
          "normal": {"type": "array", "items": {"type": "number"}, "minItems": 3}
        }
      }
    },
    "index_count": {"type": "integer", "minimum": 0},
    "index_list": {"type": "array", "items": {"type": "integer", "minimum": 0}}
  }
}`

// descriptorSchema validates JSON descriptors before they are decoded.
type descriptorSchema struct {
	name   string
	schema *jsonschema.Schema
}

func compileSchema(name, text string) (*descriptorSchema, error) {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(text))
	if err != nil {
		return nil, fmt.Errorf("parse %s schema: %w", name, err)
	}
	url := name + ".schema.json"
	c := jsonschema.NewCompiler()
	if err := c.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("add %s schema: %w", name, err)
	}
	sch, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile %s schema: %w", name, err)
	}
	return &descriptorSchema{name: name, schema: sch}, nil
}

func mustCompileSchema(name, text string) *descriptorSchema {
	s, err := compileSchema(name, text)
	if err != nil {
		panic(err)
	}
	return s
}

// Validate checks data against the schema. Malformed JSON and schema
// violations both wrap core.ErrInvalidDescriptor.
func (s *descriptorSchema) Validate(file string, data []byte) error {
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: %s: %w", core.ErrInvalidDescriptor, file, err)
	}
	if err := s.schema.Validate(inst); err != nil {
		return fmt.Errorf("%w: %s does not match the %s schema: %w", core.ErrInvalidDescriptor, file, s.name, err)
	}
	return nil
}

var (
	entityDescriptorSchema   = mustCompileSchema("entity", entitySchema)
	materialDescriptorSchema = mustCompileSchema("material", materialSchema)
	meshDescriptorSchema     = mustCompileSchema("mesh", meshSchema)
)
