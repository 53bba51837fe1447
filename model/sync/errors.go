package sync

import (
	"fmt"
	"reflect"
)

// ValidationError locates a nested error.
type ValidationError struct {
	Breadcrumbs string
	Err         error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Breadcrumbs, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// SchemaTypeError is returned when the Go type cannot hold the schema type.
type SchemaTypeError struct {
	Expected    string
	Got         reflect.Kind
	Breadcrumbs string
}

func (e *SchemaTypeError) Error() string {
	return fmt.Sprintf("%s: got %s when schema expects %s", e.Breadcrumbs, e.Got, e.Expected)
}

// NullableFieldError is returned for pointer and map fields the schema does
// not allow to be null.
type NullableFieldError struct {
	Message     string
	Breadcrumbs string
}

func (e *NullableFieldError) Error() string {
	return e.Message
}

// MissingPropertyError is returned for a field the schema does not declare.
type MissingPropertyError struct {
	Property string
}

func (e *MissingPropertyError) Error() string {
	return fmt.Sprintf("schema is missing property %s", e.Property)
}

// AdditionalPropertyError is returned for a schema property no field holds.
type AdditionalPropertyError struct {
	Property    string
	Breadcrumbs string
}

func (e *AdditionalPropertyError) Error() string {
	return fmt.Sprintf("%s: schema has an additional property %s", e.Breadcrumbs, e.Property)
}
