package jsonmerge_test

import (
	"encoding/json"
	"testing"

	"github.com/tailbits/jsonapi/jsonmerge"
	"gotest.tools/v3/assert"
)

var (
	reflected = []byte(`{
		"type": "object",
		"properties": {"age": {"type": "integer"}, "name": {"type": "string"}}
	}`)
	declared = []byte(`{
		"type": "object",
		"required": ["name"],
		"properties": {"name": {"type": "string", "minLength": 1}, "toy": {"$ref": "#/definitions/Toy"}},
		"definitions": {"Toy": {"type": "object"}}
	}`)
)

func decode(t *testing.T, b []byte) map[string]any {
	t.Helper()

	var v map[string]any
	assert.NilError(t, json.Unmarshal(b, &v))

	return v
}

func TestMergeSchemas(t *testing.T) {
	merged, err := jsonmerge.New().MergeSchemas(reflected, declared)
	assert.NilError(t, err)

	assert.DeepEqual(t, decode(t, merged), map[string]any{
		"type":     "object",
		"required": []any{"name"},
		"properties": map[string]any{
			"age":  map[string]any{"type": "integer"},
			"name": map[string]any{"type": "string", "minLength": float64(1)},
			"toy":  map[string]any{"$ref": "#/definitions/Toy"},
		},
		"definitions": map[string]any{"Toy": map[string]any{"type": "object"}},
	})
}

func TestMergeSchemasIsDeterministic(t *testing.T) {
	first, err := jsonmerge.New().MergeSchemas(reflected, declared)
	assert.NilError(t, err)

	for range 10 {
		again, err := jsonmerge.New().MergeSchemas(reflected, declared)
		assert.NilError(t, err)
		assert.Equal(t, string(again), string(first))
	}
}

func TestMergeStrategies(t *testing.T) {
	t.Run("keep existing", func(t *testing.T) {
		merged, err := jsonmerge.NewWithOptions(jsonmerge.Options{SchemasMergeStrategy: jsonmerge.KeepExisting}).MergeSchemas(reflected, declared)
		assert.NilError(t, err)

		props := decode(t, merged)["properties"].(map[string]any)
		assert.DeepEqual(t, props["name"], map[string]any{"type": "string"})
	})

	t.Run("error on duplicates", func(t *testing.T) {
		_, err := jsonmerge.NewWithOptions(jsonmerge.Options{SchemasMergeStrategy: jsonmerge.ErrorOnDuplicates}).MergeSchemas(reflected, declared)
		assert.ErrorContains(t, err, "duplicate property found: name")
	})

	t.Run("nothing to merge", func(t *testing.T) {
		merged, err := jsonmerge.New().MergeSchemas()
		assert.NilError(t, err)
		assert.Equal(t, string(merged), "{}")
	})

	t.Run("invalid schema", func(t *testing.T) {
		_, err := jsonmerge.New().MergeSchemas([]byte(`{`))
		assert.ErrorContains(t, err, "failed to unmarshal schema")
	})
}
