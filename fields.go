package jsonapi

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/tailbits/jsonapi/internal/casing"
)

// Struct tags:
//
//	ID     string `jsonapi:"id"`
//	Age    int    `jsonapi:"attr,age"`
//	Toy    string `jsonapi:"attr,favoriteToy,omitempty"`
//	Friend *Dog   `jsonapi:"rel,friend"`
//	Toys   []*Toy `jsonapi:"rel,toys"`
//	Cache  string `jsonapi:"-"`
//
// Untagged exported fields are attributes named after the camel-cased field
// name; an untagged field called ID is the resource id. Embedded fields are
// skipped.
const tagName = "jsonapi"

type fieldKind int

const (
	attributeField fieldKind = iota
	relationshipField
)

type field struct {
	index     []int
	name      string
	kind      fieldKind
	omitEmpty bool
	typ       reflect.Type
}

// many reports whether the field holds a to-many relationship.
func (f field) many() bool {
	return f.typ.Kind() == reflect.Slice || f.typ.Kind() == reflect.Array
}

// target is the type a single related resource is decoded into.
func (f field) target() reflect.Type {
	if f.many() {
		return f.typ.Elem()
	}
	return f.typ
}

type structInfo struct {
	id     *field
	fields []field
	byName map[string]int
	// bad lists the fields skipped for carrying an unknown tag.
	bad []error
}

func (s *structInfo) lookup(name string) (field, bool) {
	i, ok := s.byName[name]
	if !ok {
		return field{}, false
	}
	return s.fields[i], true
}

var structInfoCache sync.Map // map[reflect.Type]*structInfo

func typeInfo(t reflect.Type) *structInfo {
	if cached, ok := structInfoCache.Load(t); ok {
		return cached.(*structInfo)
	}

	info := parseStruct(t)
	actual, _ := structInfoCache.LoadOrStore(t, info)

	return actual.(*structInfo)
}

func parseStruct(t reflect.Type) *structInfo {
	info := &structInfo{byName: make(map[string]int)}

	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if sf.Anonymous || !sf.IsExported() {
			continue
		}

		tag := sf.Tag.Get(tagName)
		if tag == "-" {
			continue
		}

		parts := strings.Split(tag, ",")
		f := field{index: sf.Index, typ: sf.Type}

		switch {
		case parts[0] == "id", parts[0] == "" && sf.Name == "ID":
			idField := f
			info.id = &idField
			continue
		case parts[0] == "rel":
			f.kind = relationshipField
		case parts[0] == "attr", parts[0] == "":
			f.kind = attributeField
		default:
			info.bad = append(info.bad, fmt.Errorf("jsonapi: unknown tag %q on %s.%s", tag, t.Name(), sf.Name))
			continue
		}

		if len(parts) > 1 && parts[1] != "" {
			f.name = parts[1]
		} else {
			f.name = casing.ToCamelCase(sf.Name)
		}
		for _, opt := range parts[min(2, len(parts)):] {
			if opt == "omitempty" {
				f.omitEmpty = true
			}
		}

		info.byName[f.name] = len(info.fields)
		info.fields = append(info.fields, f)
	}

	return info
}

func indirectType(t reflect.Type) reflect.Type {
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t
}

// idString renders an id field as the string the wire carries. Zero ids
// render as "".
func idString(v reflect.Value) string {
	if !v.IsValid() {
		return ""
	}
	for v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return ""
		}
		v = v.Elem()
	}
	if v.IsZero() {
		return ""
	}

	switch v.Kind() {
	case reflect.String:
		return v.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(v.Uint(), 10)
	default:
		return fmt.Sprint(v.Interface())
	}
}

// setID stores a wire id into an id field of string or integer kind.
func setID(v reflect.Value, id string) error {
	if id == "" {
		return nil
	}
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			v.Set(reflect.New(v.Type().Elem()))
		}
		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.String:
		v.SetString(id)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(id, 10, v.Type().Bits())
		if err != nil {
			return fmt.Errorf("id %q: %w", id, err)
		}
		v.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(id, 10, v.Type().Bits())
		if err != nil {
			return fmt.Errorf("id %q: %w", id, err)
		}
		v.SetUint(n)
	default:
		return fmt.Errorf("id field of kind %s is not supported", v.Kind())
	}

	return nil
}

// whitelisted reports whether an attribute passes the whitelist. Names are
// compared in camelCase, so "favoriteToy" and "favorite_toy" are the same
// entry whichever side they come from. An empty whitelist allows everything.
func whitelisted(whitelist []string, name string) bool {
	if len(whitelist) == 0 {
		return true
	}

	name = casing.ToCamelCase(name)
	for _, w := range whitelist {
		if casing.ToCamelCase(w) == name {
			return true
		}
	}

	return false
}
