package jsonapi

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/swaggest/jsonschema-go"
	"github.com/tailbits/jsonapi/jsonmerge"
	"github.com/tailbits/jsonapi/model"
	schemasync "github.com/tailbits/jsonapi/model/sync"
)

const definitionsPrefix = "#/definitions/"

// AttributeSchema returns the JSON schema of t's attributes object. It is
// reflected from the attribute fields of the Go type under this client's wire
// keys, and a declared schema is merged over it. References of the form
// "#/definitions/Toy" resolve to the attribute schema of the registered type
// named Toy.
func (c *Client) AttributeSchema(t *Type) ([]byte, error) {
	schema, err := c.rawAttributeSchema(t)
	if err != nil {
		return nil, err
	}

	if len(t.Schema) == 0 {
		return schema, nil
	}

	return c.dereferenceSchema(schema)
}

// CheckSchema reports the first mismatch between the declared schema of t
// and the attribute fields of its Go type. Types without a declared schema
// are always in sync.
func (c *Client) CheckSchema(t *Type) error {
	if len(t.Schema) == 0 || t.goType == nil {
		return nil
	}

	schema, err := c.dereferenceSchema(t.Schema)
	if err != nil {
		return err
	}

	v, err := schemasync.New(t.Name, c.attributeProperties(t), schema)
	if err != nil {
		return err
	}

	return v.IsSynced()
}

func (c *Client) rawAttributeSchema(t *Type) ([]byte, error) {
	reflected, err := model.MarshalSchema(c.attributeProperties(t))
	if err != nil {
		return nil, fmt.Errorf("reflect attributes of %s: %w", t.Name, err)
	}

	if len(t.Schema) == 0 {
		return reflected, nil
	}

	merged, err := jsonmerge.New().MergeSchemas(reflected, t.Schema)
	if err != nil {
		return nil, fmt.Errorf("merge declared schema of %s: %w", t.Name, err)
	}

	return merged, nil
}

func (c *Client) attributeProperties(t *Type) []model.Property {
	if t.goType == nil || t.goType.Kind() != reflect.Struct {
		return nil
	}

	info := typeInfo(t.goType)
	props := make([]model.Property, 0, len(info.fields))
	for _, f := range info.fields {
		if c.isRelationshipField(f) {
			continue
		}
		props = append(props, model.Property{Name: c.wireKey(f.name), Type: f.typ, OmitEmpty: f.omitEmpty})
	}

	return props
}

// dereferenceSchema copies the attribute schemas of the registered types
// schema refers to into its definitions.
func (c *Client) dereferenceSchema(schema []byte) ([]byte, error) {
	var sch jsonschema.Schema
	if err := json.Unmarshal(schema, &sch); err != nil {
		return nil, fmt.Errorf("json.Unmarshal: schema[%s] %w", string(schema), err)
	}

	var pending []string
	collect := func(s *jsonschema.Schema) {
		model.WalkRefs(s, func(ref *string) {
			if id, ok := strings.CutPrefix(*ref, definitionsPrefix); ok {
				pending = append(pending, id)
			}
		})
	}
	collect(&sch)

	for len(pending) > 0 {
		id := pending[0]
		pending = pending[1:]

		if _, ok := sch.Definitions[id]; ok {
			continue
		}

		t, ok := c.registry.resolve(id, id)
		if !ok {
			return nil, fmt.Errorf("type %s not found", id)
		}

		raw, err := c.rawAttributeSchema(t)
		if err != nil {
			return nil, err
		}

		var def jsonschema.Schema
		if err := json.Unmarshal(raw, &def); err != nil {
			return nil, fmt.Errorf("attribute schema of %s: %w", id, err)
		}
		collect(&def)

		nested := def.Definitions
		def.Definitions = nil
		sch.WithDefinitionsItem(id, def.ToSchemaOrBool())

		for name, n := range nested {
			if _, ok := sch.Definitions[name]; !ok {
				sch.WithDefinitionsItem(name, n)
			}
		}
	}

	return json.Marshal(sch)
}
