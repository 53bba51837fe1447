package model

import (
	"github.com/swaggest/jsonschema-go"
)

// WalkRefs calls f with every $ref of schema and of its definitions. Since
// refs are pointers, f may rewrite them in place.
func WalkRefs(schema *jsonschema.Schema, f func(*string)) {
	if schema == nil {
		return
	}

	stack := []*jsonschema.Schema{schema}
	for _, def := range schema.Definitions {
		if def.TypeObject != nil {
			stack = append(stack, def.TypeObject)
		}
	}

	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if s.Ref != nil {
			f(s.Ref)
		}
		stack = append(stack, subschemas(s)...)
	}
}

// subschemas lists the schemas nested in s, definitions excluded.
func subschemas(s *jsonschema.Schema) []*jsonschema.Schema {
	var out []*jsonschema.Schema
	add := func(sb *jsonschema.SchemaOrBool) {
		if sb != nil && sb.TypeObject != nil {
			out = append(out, sb.TypeObject)
		}
	}

	add(s.AdditionalItems)
	add(s.AdditionalProperties)
	add(s.Contains)
	add(s.Not)

	if s.Items != nil {
		add(s.Items.SchemaOrBool)
		for i := range s.Items.SchemaArray {
			add(&s.Items.SchemaArray[i])
		}
	}

	for _, p := range s.Properties {
		add(&p)
	}
	for _, list := range [][]jsonschema.SchemaOrBool{s.AllOf, s.AnyOf, s.OneOf} {
		for i := range list {
			add(&list[i])
		}
	}

	return out
}
