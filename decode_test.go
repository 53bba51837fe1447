package jsonapi_test

import (
	"context"
	"errors"
	"testing"

	"github.com/tailbits/jsonapi"
	"github.com/tailbits/jsonapi/model"
	"gotest.tools/v3/assert"
)

type decodeTest[T any] struct {
	Name        string
	Body        string
	Whitelist   []string
	Expected    T
	ExpectError bool
}

func runDecode[T any](t *testing.T, c *jsonapi.Client, tests []decodeTest[T]) {
	t.Helper()

	for _, tt := range tests {
		t.Run(tt.Name, func(t *testing.T) {
			result, err := jsonapi.Decode[T](c, []byte(tt.Body), tt.Whitelist)
			if tt.ExpectError {
				assert.Assert(t, err != nil, "expected an error, got %+v", result)
				return
			}

			assert.NilError(t, err)
			assert.DeepEqual(t, result, tt.Expected)
		})
	}
}

func TestDecode(t *testing.T) {
	c, _ := newClient()

	runDecode(t, c, []decodeTest[*Cat]{
		{
			Name:     "registered type",
			Body:     `{"data": {"type": "cats", "id": "3", "attributes": {"age": 4, "color": "tabby"}}}`,
			Expected: &Cat{ID: 3, Age: 4, Color: "tabby"},
		},
		{
			Name:      "whitelist",
			Body:      `{"data": {"type": "cats", "id": "3", "attributes": {"age": 4, "color": "tabby"}}}`,
			Whitelist: []string{"color"},
			Expected:  &Cat{ID: 3, Color: "tabby"},
		},
		{
			Name:     "unresolved wire type takes the struct of T",
			Body:     `{"data": {"type": "felines", "id": "3", "attributes": {"age": 4}}}`,
			Expected: &Cat{ID: 3, Age: 4},
		},
		{
			Name:        "no data",
			Body:        `{"data": null}`,
			ExpectError: true,
		},
		{
			Name:        "malformed body",
			Body:        `{"data": `,
			ExpectError: true,
		},
	})

	runDecode(t, c, []decodeTest[Toy]{
		{
			Name:     "value type",
			Body:     `{"data": {"type": "toys", "id": "t1", "attributes": {"label": "rope"}}}`,
			Expected: Toy{ID: "t1", Label: "rope"},
		},
	})

	runDecode(t, c, []decodeTest[*jsonapi.Object]{
		{
			Name: "untyped object",
			Body: `{"data": {"type": "horses", "id": "1", "attributes": {"coat_color": "bay"}}}`,
			Expected: &jsonapi.Object{
				Type:       "horses",
				ID:         "1",
				Attributes: map[string]any{"coatColor": "bay"},
			},
		},
	})

	t.Run("no data is ErrNoData", func(t *testing.T) {
		_, err := jsonapi.Decode[*Dog](c, []byte(`{"data": null}`), nil)
		assert.Assert(t, errors.Is(err, jsonapi.ErrNoData))
	})

	t.Run("registered type that does not fit T", func(t *testing.T) {
		toy, err := jsonapi.Decode[*Toy](c, []byte(`{"data": {"type": "dogs", "id": "1"}}`), nil)
		assert.NilError(t, err)
		assert.Equal(t, toy.ID, "1")
	})
}

func TestDecodeValidation(t *testing.T) {
	c := jsonapi.New(baseURL, &recorder{}, jsonapi.WithValidation(true))
	jsonapi.Define[Toy](c, jsonapi.WithSchema([]byte(`{
		"type": "object",
		"required": ["label"],
		"properties": {"label": {"type": "string", "minLength": 1}}
	}`)))

	_, err := jsonapi.Decode[*Toy](c, []byte(`{"data": {"type": "toys", "id": "t1", "attributes": {"label": ""}}}`), nil)
	assert.Assert(t, model.IsValidationError(err), "got %v", err)

	toy, err := jsonapi.Decode[*Toy](c, []byte(`{"data": {"type": "toys", "id": "t1", "attributes": {"label": "rope"}}}`), nil)
	assert.NilError(t, err)
	assert.Equal(t, toy.Label, "rope")
}

func TestDecodeAll(t *testing.T) {
	c, _ := newClient()

	dogs, col, err := jsonapi.DecodeAll[*Dog](c, []byte(`{
		"data": [
			{"type": "dogs", "id": "1", "attributes": {"age": 2}},
			{"type": "dogs", "id": "2", "attributes": {"age": 5}}
		],
		"links": {"next": "http://anyapi.com/dogs/?page=2"}
	}`), nil)
	assert.NilError(t, err)

	assert.Equal(t, len(dogs), 2)
	assert.Equal(t, dogs[1].Age, 5)
	assert.Equal(t, col.Len(), 2)
	assert.Assert(t, col.Next != nil)
	assert.Equal(t, col.Next.URL, "http://anyapi.com/dogs/?page=2")
	assert.Assert(t, col.Prev == nil)
}

func TestGetAndList(t *testing.T) {
	c, rec := newClient()
	ctx := context.Background()

	rec.body = []byte(`{"data": {"type": "dogs", "id": "7", "attributes": {"age": 3}}}`)
	dog, err := jsonapi.Get[*Dog](ctx, c, jsonapi.Params{ID: "7"})
	assert.NilError(t, err)
	assert.Equal(t, dog.ID, 7)
	assert.Equal(t, rec.last(t).URL, "http://anyapi.com/dogs/7/")

	rec.body = []byte(`{"data": [{"type": "cats", "id": "1", "attributes": {"age": 1}}]}`)
	cats, _, err := jsonapi.List[*Cat](ctx, c, jsonapi.Params{})
	assert.NilError(t, err)
	assert.Equal(t, len(cats), 1)
	assert.Equal(t, rec.last(t).URL, "http://anyapi.com/cats/")
}
