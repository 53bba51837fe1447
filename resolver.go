package jsonapi

import (
	"reflect"
	"strings"

	"github.com/jinzhu/inflection"
	"github.com/tailbits/jsonapi/internal/casing"
)

// InferTypeName returns the wire type name of resource. A non-empty override
// is returned unchanged. Untyped objects carry their own type.
func (c *Client) InferTypeName(resource any, override string) string {
	if override != "" {
		return override
	}
	if obj, ok := resource.(*Object); ok && obj != nil {
		return obj.Type
	}

	if resource == nil {
		return c.wireTypeName("")
	}

	rt := indirectType(reflect.TypeOf(resource))
	if t, ok := c.registry.lookup(rt); ok {
		return c.TypeName(t)
	}

	return c.wireTypeName(rt.Name())
}

// TypeName returns the wire type name of a registered type.
func (c *Client) TypeName(t *Type) string {
	if t.WireType != "" {
		return t.WireType
	}
	return c.wireTypeName(t.Name)
}

func (c *Client) wireTypeName(name string) string {
	if c.usePlural && name != "" {
		name = inflection.Plural(name)
	}
	if c.useSnakeCase {
		return casing.ToSnakeCase(name)
	}
	return strings.ToLower(name)
}

// wireKey is the attribute or relationship key of a field on the wire.
func (c *Client) wireKey(name string) string {
	if c.useSnakeCase {
		return casing.ToSnakeCase(name)
	}
	return name
}

// ResolveType maps a wire type name back to a registered type: "dog_houses"
// matches a type named DogHouse, or one whose WireType is "dog_houses".
func (c *Client) ResolveType(wire string) (*Type, bool) {
	name := casing.UpperFirst(inflection.Singular(casing.ToCamelCase(wire)))

	return c.registry.resolve(name, wire)
}

// resolvePath picks the collection path of a request. A string override is
// the path. Otherwise a custom path of the resource's type wins, then the
// inferred type name when there is no model override, then the model's custom
// path, then the model's type name.
func (c *Client) resolvePath(resource any, override string, m *Type, extra map[string]string) string {
	if override != "" {
		return override
	}

	if resource != nil {
		if t, ok := c.registry.lookup(reflect.TypeOf(resource)); ok && t.Path != nil {
			return t.Path(extra)
		}
	}

	if m == nil {
		return c.InferTypeName(resource, "")
	}

	if m.Path != nil {
		return m.Path(extra)
	}

	if c.registry.contains(m) {
		return c.TypeName(m)
	}

	return ""
}
