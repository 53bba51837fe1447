package openapi

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/swaggest/jsonschema-go"
	"github.com/tailbits/jsonapi/model"
)

var _ jsonschema.Exposer = (*Model)(nil)

// Model is a named JSON schema handed to the reflector as a request or
// response structure.
type Model struct {
	jsonschema.Struct
	schema []byte
}

func NewModel(name string, schema []byte) Model {
	return Model{
		Struct: jsonschema.Struct{
			DefName: name,
		},
		schema: schema,
	}
}

func (m Model) Name() string {
	return m.DefName
}

func (m Model) JSONSchema() (jsonschema.Schema, error) {
	if m.schema == nil {
		return jsonschema.Schema{}, nil
	}

	var sch jsonschema.Schema
	if err := json.Unmarshal(m.schema, &sch); err != nil {
		return jsonschema.Schema{}, fmt.Errorf("error unmarshalling schema for %s: %w", m.Name(), err)
	}

	model.WalkRefs(&sch, func(ref *string) {
		refID := strings.ReplaceAll(*ref, "#/definitions/", "#/components/schemas/")
		refID = strings.TrimPrefix(refID, "#/components/schemas/")

		*ref = "#/components/schemas/" + refID
	})

	return sch, nil
}
