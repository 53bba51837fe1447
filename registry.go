package jsonapi

import (
	"errors"
	"reflect"

	"github.com/tailbits/jsonapi/model"
)

// Type describes a domain type the client knows about.
type Type struct {
	// Name is the bare type name ("Dog") wire type names are derived from.
	Name string
	// WireType, when set, is used verbatim as the wire type name.
	WireType string
	// Path builds a custom request path from the extra parameters of a request.
	Path func(params map[string]string) string
	// Schema is the JSON schema of the attributes object. When empty, one is
	// reflected from the Go type.
	Schema []byte

	goType reflect.Type
}

type TypeOption func(*Type)

func WithTypeName(name string) TypeOption {
	return func(t *Type) {
		t.Name = name
	}
}

func WithWireType(wire string) TypeOption {
	return func(t *Type) {
		t.WireType = wire
	}
}

func WithPath(fn func(params map[string]string) string) TypeOption {
	return func(t *Type) {
		t.Path = fn
	}
}

func WithSchema(schema []byte) TypeOption {
	return func(t *Type) {
		t.Schema = schema
	}
}

// TypeOf builds the descriptor of T without registering it. Capabilities
// declared by T through the model interfaces are picked up first, then opts
// are applied. It panics when a field of T carries an unknown jsonapi tag.
func TypeOf[T any](opts ...TypeOption) *Type {
	rt := indirectType(reflect.TypeOf(model.New[*T]()))

	t := &Type{
		Name:   rt.Name(),
		goType: rt,
	}

	if rt.Kind() == reflect.Struct {
		if bad := typeInfo(rt).bad; len(bad) > 0 {
			panic(errors.Join(bad...))
		}
	}

	zero := model.NewOf(rt)
	if n, ok := zero.(model.WithName); ok {
		t.Name = n.Name()
	}
	if w, ok := zero.(model.WithWireType); ok {
		t.WireType = w.WireType()
	}
	if p, ok := zero.(model.WithPath); ok {
		t.Path = p.Path
	}
	if s, ok := zero.(model.WithSchema); ok {
		t.Schema = s.Schema()
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// Define registers T with the client and returns its descriptor.
func Define[T any](c *Client, opts ...TypeOption) *Type {
	t := TypeOf[T](opts...)
	c.Register(t)

	return t
}

// GoType returns the struct type t stands for.
func (t *Type) GoType() reflect.Type {
	return t.goType
}

// New allocates a zero value of the type and returns a pointer to it.
func (t *Type) New() any {
	if t.goType == nil {
		return nil
	}
	return model.NewOf(t.goType)
}

// Registry is the ordered list of known types. Lookups scan it in order and
// the first match wins.
type Registry []*Type

func (r Registry) lookup(rt reflect.Type) (*Type, bool) {
	rt = indirectType(rt)
	if rt == nil {
		return nil, false
	}
	for _, t := range r {
		if t.goType == rt {
			return t, true
		}
	}
	return nil, false
}

func (r Registry) resolve(name string, wire string) (*Type, bool) {
	for _, t := range r {
		if t.Name == name || (t.WireType != "" && t.WireType == wire) {
			return t, true
		}
	}
	return nil, false
}

func (r Registry) contains(t *Type) bool {
	for _, known := range r {
		if known == t {
			return true
		}
	}
	return false
}

// Types returns the registered types in registration order.
func (r Registry) Types() []*Type {
	out := make([]*Type, len(r))
	copy(out, r)

	return out
}
