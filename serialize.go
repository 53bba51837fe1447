package jsonapi

import (
	"reflect"
)

// Serialize converts resource into a document. The wire type comes from
// override when non-empty, else it is inferred. A non-empty whitelist limits
// the serialized fields to the listed names, in Go or wire spelling. A nil resource yields a
// document holding only the type.
func (c *Client) Serialize(resource any, override string, whitelist []string) *Document {
	return c.serialize(resource, override, whitelist, make(map[uintptr]bool))
}

// serialize tracks the pointers on the current path in seen so that cyclic
// graphs end in a bare {type, id} reference.
func (c *Client) serialize(resource any, override string, whitelist []string, seen map[uintptr]bool) *Document {
	ro := &ResourceObject{Type: c.InferTypeName(resource, override)}
	doc := &Document{Data: PrimaryData{One: ro}}

	if resource == nil {
		return doc
	}

	switch r := resource.(type) {
	case *Object:
		if r != nil {
			c.serializeObject(ro, r, whitelist)
		}
		return doc
	case map[string]any:
		c.serializeMap(ro, r, whitelist)
		return doc
	}

	rv := reflect.ValueOf(resource)
	if rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return doc
		}
		if seen[rv.Pointer()] {
			if rv.Elem().Kind() == reflect.Struct {
				if info := typeInfo(rv.Elem().Type()); info.id != nil {
					ro.ID = idString(rv.Elem().FieldByIndex(info.id.index))
				}
			}
			return doc
		}
		seen[rv.Pointer()] = true
		defer delete(seen, rv.Pointer())
	}

	rv = reflect.Indirect(rv)
	if rv.Kind() != reflect.Struct {
		return doc
	}

	info := typeInfo(rv.Type())
	if info.id != nil {
		ro.ID = idString(rv.FieldByIndex(info.id.index))
	}
	ro.Attributes = make(map[string]any)

	for _, f := range info.fields {
		if !whitelisted(whitelist, f.name) {
			continue
		}

		fv := rv.FieldByIndex(f.index)
		if f.omitEmpty && fv.IsZero() {
			continue
		}

		key := c.wireKey(f.name)
		if !c.isRelationship(f, fv) {
			ro.Attributes[key] = fv.Interface()
			continue
		}

		rel := c.serializeRelationship(f, fv, seen)
		if rel == nil {
			continue
		}
		if ro.Relationships == nil {
			ro.Relationships = make(map[string]*Document)
		}
		ro.Relationships[key] = rel
	}

	return doc
}

// isRelationship reports whether a field serializes as a relationship: it is
// declared as one, or it holds a value of a registered type.
func (c *Client) isRelationship(f field, fv reflect.Value) bool {
	if f.kind == relationshipField {
		return true
	}

	t := f.target()
	if fv.Kind() == reflect.Interface {
		if fv.IsNil() {
			return false
		}
		t = fv.Elem().Type()
	}
	_, ok := c.registry.lookup(t)

	return ok
}

func (c *Client) serializeRelationship(f field, fv reflect.Value, seen map[uintptr]bool) *Document {
	if !f.many() {
		if isNil(fv) {
			return nil
		}
		return c.serialize(fv.Interface(), "", nil, seen)
	}

	if fv.Kind() == reflect.Slice && fv.IsNil() {
		return nil
	}

	rel := &Document{Data: PrimaryData{IsMany: true, Many: make([]*ResourceObject, 0, fv.Len())}}
	for i := 0; i < fv.Len(); i++ {
		elem := fv.Index(i)
		if isNil(elem) {
			continue
		}
		rel.Data.Many = append(rel.Data.Many, c.serialize(elem.Interface(), "", nil, seen).Data.One)
	}

	return rel
}

func (c *Client) serializeObject(ro *ResourceObject, obj *Object, whitelist []string) {
	ro.ID = obj.ID
	ro.Attributes = make(map[string]any, len(obj.Attributes))
	for name, value := range obj.Attributes {
		if !whitelisted(whitelist, name) {
			continue
		}
		ro.Attributes[c.wireKey(name)] = value
	}
}

func (c *Client) serializeMap(ro *ResourceObject, m map[string]any, whitelist []string) {
	ro.Attributes = make(map[string]any, len(m))
	for name, value := range m {
		if name == "id" {
			ro.ID = idString(reflect.ValueOf(value))
			continue
		}
		if !whitelisted(whitelist, name) {
			continue
		}
		ro.Attributes[c.wireKey(name)] = value
	}
}

func isNil(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice:
		return v.IsNil()
	default:
		return !v.IsValid()
	}
}
