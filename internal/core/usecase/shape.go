package usecase

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	santhosh "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/atvirokodosprendimai/bookwerx/internal/core/domain"
)

// ShapeValidator checks a field-set against the exact set of fields a
// resource kind accepts. It never looks at values.
type ShapeValidator struct {
	cache sync.Map // key: domain.Kind → *santhosh.Schema
}

func NewShapeValidator() *ShapeValidator {
	return &ShapeValidator{}
}

// Validate returns *domain.SchemaError when a required field is missing, an
// unknown field is present, or a field was submitted more than once.
func (v *ShapeValidator) Validate(spec domain.ResourceSpec, fields domain.FieldSet) error {
	if repeated := fields.Repeated(); len(repeated) > 0 {
		violations := make([]string, 0, len(repeated))
		for _, name := range repeated {
			violations = append(violations, fmt.Sprintf("field '%s' submitted more than once", name))
		}
		return &domain.SchemaError{Kind: spec.Kind, Violations: violations}
	}

	sch, err := v.schemaFor(spec)
	if err != nil {
		return err
	}

	instance := make(map[string]any, fields.Len())
	for _, name := range fields.Names() {
		instance[name] = fields.Value(name)
	}

	if err := sch.Validate(instance); err != nil {
		var ve *santhosh.ValidationError
		if errors.As(err, &ve) {
			return &domain.SchemaError{Kind: spec.Kind, Violations: collectValidationErrors(ve)}
		}
		return &domain.SchemaError{Kind: spec.Kind, Violations: []string{err.Error()}}
	}
	return nil
}

func (v *ShapeValidator) schemaFor(spec domain.ResourceSpec) (*santhosh.Schema, error) {
	if cached, ok := v.cache.Load(spec.Kind); ok {
		return cached.(*santhosh.Schema), nil
	}
	doc, err := shapeDocument(spec)
	if err != nil {
		return nil, err
	}
	compiled, err := compileSchema(doc)
	if err != nil {
		return nil, fmt.Errorf("compile %s shape: %w", spec.Kind, err)
	}
	v.cache.Store(spec.Kind, compiled)
	return compiled, nil
}

// shapeDocument renders the field contract as a JSON Schema object with no
// additional properties allowed.
func shapeDocument(spec domain.ResourceSpec) (json.RawMessage, error) {
	properties := make(map[string]any, len(spec.Fields))
	for _, f := range spec.Fields {
		properties[f.Name] = map[string]any{"type": "string"}
	}
	doc := map[string]any{
		"type":                 "object",
		"properties":           properties,
		"additionalProperties": false,
	}
	if required := spec.Required(); len(required) > 0 {
		doc["required"] = required
	}
	return json.Marshal(doc)
}

func compileSchema(schemaJSON json.RawMessage) (*santhosh.Schema, error) {
	compiler := santhosh.NewCompiler()
	compiler.Draft = santhosh.Draft7
	if err := compiler.AddResource("shape.json", bytes.NewReader(schemaJSON)); err != nil {
		return nil, err
	}
	return compiler.Compile("shape.json")
}

func collectValidationErrors(ve *santhosh.ValidationError) []string {
	var msgs []string
	for _, cause := range ve.Causes {
		msgs = append(msgs, collectValidationErrors(cause)...)
	}
	if len(ve.Causes) == 0 {
		if ve.Message != "" {
			msgs = append(msgs, ve.Message)
		} else {
			msgs = append(msgs, ve.Error())
		}
	}
	return msgs
}
