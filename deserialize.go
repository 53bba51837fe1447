package jsonapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"

	"github.com/tailbits/jsonapi/internal/casing"
	"github.com/tailbits/jsonapi/model"
)

// ErrNoData is returned when a document carries no primary data.
var ErrNoData = errors.New("document has no data")

// Deserialize converts the primary resource of doc into a domain value: a
// pointer to the registered type its wire type resolves to, or an *Object
// when it resolves to nothing. A non-empty whitelist limits the decoded
// attributes to the listed names, in wire or Go spelling.
func (c *Client) Deserialize(doc *Document, whitelist []string) (any, error) {
	if doc == nil || doc.Data.One == nil {
		return nil, ErrNoData
	}

	return c.deserialize(doc.Data.One, doc.Included, whitelist, nil)
}

// DeserializeCollection converts a collection document, or a single resource
// document, and binds its pagination links.
func (c *Client) DeserializeCollection(doc *Document, whitelist []string) (*Collection, error) {
	if doc == nil {
		return nil, ErrNoData
	}

	col := &Collection{}

	resources := doc.Data.Many
	if !doc.Data.IsMany && doc.Data.One != nil {
		resources = []*ResourceObject{doc.Data.One}
	}

	col.Data = make([]any, 0, len(resources))
	for _, ro := range resources {
		v, err := c.deserialize(ro, doc.Included, whitelist, nil)
		if err != nil {
			return nil, err
		}
		col.Data = append(col.Data, v)
	}

	for _, name := range paginationLinks {
		if url, ok := doc.Links[name]; ok {
			col.setPage(name, c.newLink(url))
		}
	}

	return col, nil
}

// deserialize decodes ro into a new value. want is the Go type the value is
// headed for, nil when the caller takes anything.
func (c *Client) deserialize(ro *ResourceObject, included []*ResourceObject, whitelist []string, want reflect.Type) (any, error) {
	obj := c.instantiate(ro.Type, want)

	if untyped, ok := obj.(*Object); ok {
		c.populateObject(untyped, ro, whitelist)
		return untyped, nil
	}

	rv := reflect.ValueOf(obj).Elem()
	info := typeInfo(rv.Type())

	if info.id != nil {
		if err := setID(rv.FieldByIndex(info.id.index), ro.ID); err != nil {
			return nil, fmt.Errorf("deserialize %s: %w", ro.Type, err)
		}
	}

	for key, value := range ro.Attributes {
		if !whitelisted(whitelist, key) {
			continue
		}

		f, ok := c.fieldFor(info, key)
		if !ok || c.isRelationshipField(f) {
			continue
		}

		if err := assignAttribute(rv.FieldByIndex(f.index), value); err != nil {
			return nil, fmt.Errorf("deserialize %s attribute %s: %w", ro.Type, key, err)
		}
	}

	c.attachLinks(obj, ro.Links)

	for key, rel := range ro.Relationships {
		f, ok := c.fieldFor(info, key)
		if !ok || rel == nil || !c.isRelationshipField(f) {
			continue
		}

		if err := c.assignRelationship(rv.FieldByIndex(f.index), f, rel, included); err != nil {
			return nil, fmt.Errorf("deserialize %s relationship %s: %w", ro.Type, key, err)
		}
	}

	return obj, nil
}

// instantiate allocates the value a resource of the given wire type decodes
// into: the resolved registered type when it fits want, else want itself when
// it is a struct type, else an untyped Object.
func (c *Client) instantiate(wire string, want reflect.Type) any {
	if t, ok := c.ResolveType(wire); ok && t.goType != nil {
		v := t.New()
		if want == nil || fits(reflect.TypeOf(v), want) {
			return v
		}
	}

	if st := indirectType(want); st != nil && st.Kind() == reflect.Struct {
		return model.NewOf(st)
	}

	c.logger.Debug("falling back to an untyped object", "type", wire)

	return &Object{Type: wire}
}

func (c *Client) populateObject(obj *Object, ro *ResourceObject, whitelist []string) {
	obj.Type = ro.Type
	obj.ID = ro.ID
	for key, value := range ro.Attributes {
		if !whitelisted(whitelist, key) {
			continue
		}
		if obj.Attributes == nil {
			obj.Attributes = make(map[string]any)
		}
		obj.Attributes[casing.ToCamelCase(key)] = value
	}
	c.attachLinks(obj, ro.Links)
}

// attachLinks hands every non-pagination link to values embedding Linked,
// binding the self link for Refresh.
func (c *Client) attachLinks(obj any, links Links) {
	if len(links) == 0 {
		return
	}

	l, ok := obj.(linker)
	if !ok {
		return
	}

	var self *Link
	if url, ok := links[LinkSelf]; ok {
		self = c.newLink(url)
	}
	l.setLinks(links.without(paginationLinks...), self)
}

// fieldFor finds the field a wire key maps to: by its camel-cased form first,
// then by the wire key of each field.
func (c *Client) fieldFor(info *structInfo, key string) (field, bool) {
	if f, ok := info.lookup(casing.ToCamelCase(key)); ok {
		return f, true
	}
	for _, f := range info.fields {
		if c.wireKey(f.name) == key {
			return f, true
		}
	}
	return field{}, false
}

// isRelationshipField reports whether a field is a slot for related
// resources: declared as a relationship or typed as a registered type.
func (c *Client) isRelationshipField(f field) bool {
	if f.kind == relationshipField {
		return true
	}
	_, ok := c.registry.lookup(f.target())

	return ok
}

func (c *Client) assignRelationship(fv reflect.Value, f field, rel *Document, included []*ResourceObject) error {
	if !f.many() {
		if rel.Data.IsMany || rel.Data.One == nil {
			return nil
		}

		v, err := c.deserializeReference(rel.Data.One, included, f.target())
		if err != nil {
			return err
		}
		assign(fv, v)

		return nil
	}

	refs := rel.Data.Many
	if !rel.Data.IsMany && rel.Data.One != nil {
		refs = []*ResourceObject{rel.Data.One}
	}

	slice := reflect.MakeSlice(reflect.SliceOf(f.target()), 0, len(refs))
	for _, ref := range refs {
		v, err := c.deserializeReference(ref, included, f.target())
		if err != nil {
			return err
		}

		elem := reflect.New(f.target()).Elem()
		if assign(elem, v) {
			slice = reflect.Append(slice, elem)
		}
	}

	if fv.Kind() == reflect.Slice {
		fv.Set(slice)
	}

	return nil
}

// deserializeReference decodes a resource linkage, pulling its attributes from
// the matching included resource. Relationships of included resources are
// not expanded.
func (c *Client) deserializeReference(ref *ResourceObject, included []*ResourceObject, want reflect.Type) (any, error) {
	resolved := *ref
	for _, inc := range included {
		if inc != nil && inc.Type == ref.Type && inc.ID == ref.ID {
			resolved.Attributes = inc.Attributes
			break
		}
	}

	return c.deserialize(&resolved, nil, nil, want)
}

func assignAttribute(fv reflect.Value, value any) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}

	fresh := reflect.New(fv.Type())
	if err := json.Unmarshal(b, fresh.Interface()); err != nil {
		return err
	}
	fv.Set(fresh.Elem())

	return nil
}

// assign stores v, a pointer, into dst: as is when the types fit, or
// dereferenced when dst holds the struct by value.
func assign(dst reflect.Value, v any) bool {
	src := reflect.ValueOf(v)
	switch {
	case src.Type().AssignableTo(dst.Type()):
		dst.Set(src)
	case src.Kind() == reflect.Ptr && src.Elem().Type().AssignableTo(dst.Type()):
		dst.Set(src.Elem())
	default:
		return false
	}
	return true
}

func fits(t reflect.Type, want reflect.Type) bool {
	return t.AssignableTo(want) || (t.Kind() == reflect.Ptr && t.Elem() == want)
}
