// Package model contains the capability interfaces domain resources can
// implement, and the schema tooling used to validate their attributes.
package model

import (
	"fmt"
	"reflect"
)

// New returns a ready to use T. If T is a pointer type, the pointer is
// allocated rather than left nil.
func New[T any]() T {
	var t T
	rt := reflect.TypeOf(t)
	if rt != nil && rt.Kind() == reflect.Ptr {
		newT := reflect.New(rt.Elem()).Interface()
		if result, ok := newT.(T); ok {
			t = result
		} else {
			// This should never happen due to Go's type system,
			// but we handle it to satisfy the linter
			panic(fmt.Sprintf("Unexpected type assertion failure in New[T]: expected %T, got %T\n", t, newT))
		}
	}

	return t
}

// NewOf allocates a zero value of the struct type rt and returns a pointer to it.
func NewOf(rt reflect.Type) any {
	for rt.Kind() == reflect.Ptr {
		rt = rt.Elem()
	}

	return reflect.New(rt).Interface()
}
