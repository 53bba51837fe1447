package model

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/swaggest/jsonschema-go"
)

// Property is a single attribute of a resource: its wire name and Go type.
type Property struct {
	Name      string
	Type      reflect.Type
	OmitEmpty bool
}

// AttributeSchema reflects a JSON schema for an attributes object holding the
// given properties. Pointer, slice and map properties are nullable; interface
// properties accept anything.
func AttributeSchema(props []Property) (jsonschema.Schema, error) {
	var reflector jsonschema.Reflector

	var objType jsonschema.Type
	objType.WithSimpleTypes(jsonschema.Object)

	var sch jsonschema.Schema
	sch.WithType(objType)

	for _, p := range props {
		if p.Type == nil || p.Type.Kind() == reflect.Interface {
			var anything jsonschema.Schema
			sch.WithPropertiesItem(p.Name, anything.ToSchemaOrBool())
			continue
		}

		prop, err := reflector.Reflect(reflect.New(p.Type).Elem().Interface(), jsonschema.InlineRefs)
		if err != nil {
			return jsonschema.Schema{}, fmt.Errorf("reflect attribute %s: %w", p.Name, err)
		}

		if isNullable(p.Type) && prop.Type != nil && prop.Type.SimpleTypes != nil {
			prop.Type = &jsonschema.Type{
				SliceOfSimpleTypeValues: []jsonschema.SimpleType{*prop.Type.SimpleTypes, jsonschema.Null},
			}
		}

		sch.WithPropertiesItem(p.Name, prop.ToSchemaOrBool())
	}

	return sch, nil
}

// MarshalSchema is AttributeSchema rendered as JSON.
func MarshalSchema(props []Property) ([]byte, error) {
	sch, err := AttributeSchema(props)
	if err != nil {
		return nil, err
	}

	return json.Marshal(sch)
}

func isNullable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Ptr, reflect.Slice, reflect.Map:
		return true
	default:
		return false
	}
}

// WithoutRequired drops the top-level required list of schema. Partial
// updates send a subset of the attributes.
func WithoutRequired(schema []byte) ([]byte, error) {
	var sch jsonschema.Schema
	if err := json.Unmarshal(schema, &sch); err != nil {
		return nil, fmt.Errorf("json.Unmarshal: %w", err)
	}
	sch.Required = nil

	return json.Marshal(sch)
}
