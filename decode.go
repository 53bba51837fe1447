package jsonapi

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/tailbits/jsonapi/model"
)

// Decode decodes the primary resource of a response body into a T, usually
// a pointer to a registered type. A resource whose wire type does not resolve
// to T is decoded into T's own struct type. When validation is enabled the
// incoming attributes are first checked against the schema of T's registered
// type.
func Decode[T any](c *Client, body []byte, whitelist []string) (ent T, err error) {
	doc, err := DecodeDocument(body)
	if err != nil {
		return ent, err
	}
	if doc.Data.One == nil {
		return ent, ErrNoData
	}

	want := reflect.TypeFor[T]()
	if err := c.validateIncoming(want, doc.Data.One); err != nil {
		return ent, err
	}

	v, err := c.deserialize(doc.Data.One, doc.Included, whitelist, want)
	if err != nil {
		return ent, err
	}

	return as[T](v)
}

// DecodeAll decodes a collection body into a slice of T. The returned
// Collection holds the same values and the pagination links.
func DecodeAll[T any](c *Client, body []byte, whitelist []string) ([]T, *Collection, error) {
	doc, err := DecodeDocument(body)
	if err != nil {
		return nil, nil, err
	}

	resources := doc.Data.Many
	if !doc.Data.IsMany && doc.Data.One != nil {
		resources = []*ResourceObject{doc.Data.One}
	}

	want := reflect.TypeFor[T]()
	col := &Collection{Data: make([]any, 0, len(resources))}
	out := make([]T, 0, len(resources))

	for _, ro := range resources {
		if err := c.validateIncoming(want, ro); err != nil {
			return nil, nil, err
		}

		v, err := c.deserialize(ro, doc.Included, whitelist, want)
		if err != nil {
			return nil, nil, err
		}

		ent, err := as[T](v)
		if err != nil {
			return nil, nil, err
		}
		out = append(out, ent)
		col.Data = append(col.Data, v)
	}

	for _, name := range paginationLinks {
		if url, ok := doc.Links[name]; ok {
			col.setPage(name, c.newLink(url))
		}
	}

	return out, col, nil
}

// Get is Find decoding into T. Without a resource or a type override the
// registered type of T is requested.
func Get[T any](ctx context.Context, c *Client, p Params) (T, error) {
	var zero T

	body, err := c.execute(ctx, c.BuildFind(c.withModelOf(reflect.TypeFor[T](), p)))
	if err != nil {
		return zero, err
	}

	return Decode[T](c, body, p.Attributes)
}

// List is FindAll decoding into a slice of T.
func List[T any](ctx context.Context, c *Client, p Params) ([]T, *Collection, error) {
	body, err := c.execute(ctx, c.BuildFindAll(c.withModelOf(reflect.TypeFor[T](), p)))
	if err != nil {
		return nil, nil, err
	}

	return DecodeAll[T](c, body, p.Attributes)
}

func (c *Client) withModelOf(rt reflect.Type, p Params) Params {
	if p.Resource != nil || p.Type != "" || p.Model != nil {
		return p
	}
	if t, ok := c.registry.lookup(rt); ok {
		p.Model = t
	}
	return p
}

// as converts a decoded value to T. Values are decoded as pointers, so a
// non-pointer T receives a copy.
func as[T any](v any) (T, error) {
	if ent, ok := v.(T); ok {
		return ent, nil
	}

	var zero T
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr && !rv.IsNil() && rv.Type().Elem() == reflect.TypeFor[T]() {
		return rv.Elem().Interface().(T), nil
	}

	return zero, fmt.Errorf("type assertion failed for resource of type %T", v)
}

func (c *Client) validateIncoming(want reflect.Type, ro *ResourceObject) error {
	if !c.validate {
		return nil
	}

	t, ok := c.registry.lookup(want)
	if !ok {
		return nil
	}

	schema, err := c.AttributeSchema(t)
	if err != nil {
		return fmt.Errorf("dereferenceSchema type[%s]: %w", t.Name, err)
	}

	attrs := ro.Attributes
	if attrs == nil {
		attrs = map[string]any{}
	}
	body, err := json.Marshal(attrs)
	if err != nil {
		return fmt.Errorf("marshal attributes of %s: %w", t.Name, err)
	}

	if err := model.Validate(schema, body); err != nil {
		return fmt.Errorf("model.Validate: %w", err)
	}

	return nil
}
