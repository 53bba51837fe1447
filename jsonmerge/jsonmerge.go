// Package jsonmerge merges object schemas into one: properties, required
// fields and definitions are combined.
package jsonmerge

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

type object = orderedmap.OrderedMap[string, any]

// sorted converts decoded JSON into ordered maps with sorted keys so that the
// merged output is deterministic.
func sorted(v any) any {
	switch v := v.(type) {
	case map[string]any:
		om := orderedmap.New[string, any]()
		for _, k := range slices.Sorted(maps.Keys(v)) {
			om.Set(k, sorted(v[k]))
		}
		return om
	case []any:
		for i, val := range v {
			v[i] = sorted(val)
		}
	}
	return v
}

type Merger interface {
	MergeSchemas(schemas ...[]byte) ([]byte, error)
}

type Options struct {
	SchemasMergeStrategy SchemaMergeStrategy
}

type SchemaMergeStrategy int

const (
	OverwriteDuplicates SchemaMergeStrategy = iota
	ErrorOnDuplicates
	KeepExisting
)

func New() Merger {
	return NewWithOptions(Options{
		SchemasMergeStrategy: OverwriteDuplicates,
	})
}

func NewWithOptions(opts Options) Merger {
	return &merger{opts: opts}
}

type merger struct {
	opts Options
}

// MergeSchemas merges object schemas left to right. Other top-level keywords
// of the inputs are dropped.
func (m *merger) MergeSchemas(schemas ...[]byte) ([]byte, error) {
	if len(schemas) == 0 {
		return []byte("{}"), nil
	}

	properties := orderedmap.New[string, any]()
	definitions := orderedmap.New[string, any]()
	required := make([]string, 0)

	for _, schema := range schemas {
		var current map[string]any
		if err := json.Unmarshal(schema, &current); err != nil {
			return nil, fmt.Errorf("failed to unmarshal schema: %w", err)
		}

		if err := m.mergeKeyed("property", properties, current["properties"]); err != nil {
			return nil, err
		}

		if err := m.mergeKeyed("definition", definitions, current["definitions"]); err != nil {
			return nil, err
		}

		required = mergeRequired(required, current["required"])
	}

	result := orderedmap.New[string, any]()
	result.Set("type", "object")
	result.Set("properties", sortedKeys(properties))
	if len(required) > 0 {
		result.Set("required", required)
	}
	if definitions.Len() > 0 {
		result.Set("definitions", sortedKeys(definitions))
	}

	return json.MarshalIndent(result, "", "  ")
}

func (m *merger) mergeKeyed(kind string, into *object, from any) error {
	props, ok := from.(map[string]any)
	if !ok {
		return nil
	}

	for k, v := range props {
		if _, exists := into.Get(k); exists {
			switch m.opts.SchemasMergeStrategy {
			case ErrorOnDuplicates:
				return fmt.Errorf("duplicate %s found: %s", kind, k)
			case KeepExisting:
				continue
			}
		}
		into.Set(k, sorted(v))
	}

	return nil
}

func mergeRequired(required []string, from any) []string {
	req, ok := from.([]any)
	if !ok {
		return required
	}

	for _, r := range req {
		if str, ok := r.(string); ok && !slices.Contains(required, str) {
			required = append(required, str)
		}
	}
	slices.Sort(required)

	return required
}

func sortedKeys(om *object) *object {
	out := orderedmap.New[string, any]()
	keys := make([]string, 0, om.Len())
	for pair := om.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	slices.Sort(keys)
	for _, k := range keys {
		v, _ := om.Get(k)
		out.Set(k, v)
	}

	return out
}
