package model_test

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/tailbits/jsonapi/model"
	"gotest.tools/v3/assert"
)

func TestErrorsAreSorted(t *testing.T) {
	e := model.ValidationError{Errors: []model.FieldError{
		{Message: "bbb"},
		{Message: "aaa"},
	}}
	want := model.ValidationError{Errors: []model.FieldError{
		{Message: "aaa"},
		{Message: "bbb"},
	}}

	model.SortErrors(&e)

	assert.DeepEqual(t, messages(e), messages(want))
}

func TestNew(t *testing.T) {
	type dog struct{ Age int }

	d := model.New[*dog]()
	assert.Assert(t, d != nil)
	assert.Equal(t, d.Age, 0)

	v := model.NewOf(reflect.TypeOf(&dog{}))
	_, ok := v.(*dog)
	assert.Assert(t, ok)
}

func TestValidate(t *testing.T) {
	props := []model.Property{
		{Name: "age", Type: reflect.TypeOf(0)},
		{Name: "name", Type: reflect.TypeOf("")},
		{Name: "nickname", Type: reflect.TypeOf((*string)(nil))},
		{Name: "born_at", Type: reflect.TypeOf(time.Time{})},
		{Name: "extra", Type: reflect.TypeOf((*any)(nil)).Elem()},
	}

	schema, err := model.MarshalSchema(props)
	assert.NilError(t, err)

	t.Run("valid attributes", func(t *testing.T) {
		err := model.Validate(schema, []byte(`{"age": 2, "name": "rex", "nickname": null, "extra": [1]}`))
		assert.NilError(t, err)
	})

	t.Run("wrong type", func(t *testing.T) {
		err := model.Validate(schema, []byte(`{"age": "two"}`))
		assert.Assert(t, model.IsValidationError(err))

		var ve model.ValidationError
		assert.Assert(t, errors.As(err, &ve))
		assert.Equal(t, len(ve.Errors), 1)
		assert.Equal(t, ve.Errors[0].Field(), "age")
	})

	t.Run("empty body", func(t *testing.T) {
		err := model.Validate(schema, nil)
		assert.Assert(t, errors.Is(err, model.ErrBodyEmpty))
	})
}

func TestValidationMessages(t *testing.T) {
	schema := []byte(`{
		"type": "object",
		"required": ["name"],
		"properties": {
			"age": {"type": "integer", "minimum": 0},
			"collar": {"type": "object", "properties": {"color": {"enum": ["red", "blue"]}}}
		}
	}`)

	err := model.Validate(schema, []byte(`{"age": -1, "collar": {"color": "green"}}`))

	var ve model.ValidationError
	assert.Assert(t, errors.As(err, &ve), "got %v", err)
	assert.DeepEqual(t, ve.Fields(), []string{"age", "collar.color", "name"})
	assert.Equal(t, messages(ve)[2], "Attribute 'name' is missing")
	assert.ErrorContains(t, err, "invalid attributes: Attribute 'age'")
}

func TestWithoutRequired(t *testing.T) {
	schema := []byte(`{"type": "object", "required": ["name"], "properties": {"name": {"type": "string"}}}`)
	assert.Assert(t, model.IsValidationError(model.Validate(schema, []byte(`{}`))))

	relaxed, err := model.WithoutRequired(schema)
	assert.NilError(t, err)
	assert.NilError(t, model.Validate(relaxed, []byte(`{}`)))
	assert.Assert(t, model.IsValidationError(model.Validate(relaxed, []byte(`{"name": 1}`))))
}

func messages(e model.ValidationError) []string {
	out := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		out = append(out, fe.Message)
	}
	return out
}
