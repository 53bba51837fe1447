package openapi

import (
	"fmt"

	"github.com/swaggest/jsonschema-go"
	"github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi31"
	"github.com/tailbits/jsonapi"
)

// operation is the reflector's context for one record, with access to the
// underlying openapi31 operation for parameters.
type operation struct {
	openapi.OperationContext
	op *openapi31.Operation
	g  *Generator
}

func newOperation(oc openapi.OperationContext, g *Generator) *operation {
	o := &operation{OperationContext: oc, g: g}
	if exp, ok := oc.(openapi31.OperationExposer); ok {
		o.op = exp.Operation()
	}

	return o
}

// describe copies the record onto the operation and hands it to the reflector.
func (o *operation) describe(record Record) error {
	content := openapi.WithContentType(jsonapi.MediaType)

	if record.Input != nil {
		if err := o.g.addModel(*record.Input); err != nil {
			return fmt.Errorf("failed to add definition for %s: %w", record.Input.Name(), err)
		}
		o.AddReqStructure(*record.Input, content)
	}

	switch {
	case record.Output != nil:
		if err := o.g.addModel(*record.Output); err != nil {
			return fmt.Errorf("failed to add definition for %s: %w", record.Output.Name(), err)
		}
		o.AddRespStructure(*record.Output, content, openapi.WithHTTPStatus(record.SuccessStatus))
	default:
		o.AddRespStructure(nil, openapi.WithHTTPStatus(record.SuccessStatus))
	}

	if o.op != nil {
		o.op.WithParameters(parameters(record)...)
		o.op.WithID(record.ID)
		o.op.WithTags(record.Tags...)
	}

	for _, tag := range record.Tags {
		o.g.allTags[tag] = true
	}
	if record.Summary != "" {
		o.SetSummary(record.Summary)
	}
	if record.Description != "" {
		o.SetDescription(record.Description)
	}

	return o.g.AddOperation(o.OperationContext)
}

// parameters lists the path parameters of the record, all required, followed
// by its optional query parameters.
func parameters(record Record) []openapi31.ParameterOrReference {
	_, _, names, _ := openapi.SanitizeMethodPath(record.Method, record.Path)

	params := make([]openapi31.ParameterOrReference, 0, len(names)+len(record.QueryParams))
	for _, name := range names {
		params = append(params, parameter(openapi31.ParameterInPath, name, "string", "", true))
	}
	for _, q := range record.QueryParams {
		params = append(params, parameter(openapi31.ParameterInQuery, q.Name, q.Type, q.Description, false))
	}

	return params
}

var simpleTypes = map[string]jsonschema.SimpleType{
	"string":  jsonschema.String,
	"integer": jsonschema.Integer,
	"boolean": jsonschema.Boolean,
	"number":  jsonschema.Number,
}

func parameter(in openapi31.ParameterIn, name, typ, desc string, required bool) openapi31.ParameterOrReference {
	var schema jsonschema.Schema
	if st, ok := simpleTypes[typ]; ok {
		schema.WithType(st.Type())
	}

	m, err := schema.ToSchemaOrBool().ToSimpleMap()
	if err != nil {
		return openapi31.ParameterOrReference{}
	}

	p := &openapi31.Parameter{Name: name, In: in, Required: &required, Schema: m}
	if desc != "" {
		p.WithDescription(desc)
	}

	return openapi31.ParameterOrReference{Parameter: p}
}
