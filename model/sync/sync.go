// Package sync vets the declared attribute schema of a resource type against
// the Go fields the attributes decode into.
package sync

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/swaggest/jsonschema-go"
	"github.com/tailbits/jsonapi/model"
)

// ShouldSkip is implemented by values whose shape the schema declares freely.
type ShouldSkip interface {
	SkipSchemaValidation() bool
}

type Validator struct {
	Sch   *jsonschema.Schema
	Props []model.Property
	Name  string
}

// New parses schema, an attributes object schema whose references are
// resolved against its own definitions.
func New(name string, props []model.Property, schema []byte) (*Validator, error) {
	parsed := jsonschema.Schema{} // nolint:golint,exhaustruct
	if err := parsed.UnmarshalJSON(schema); err != nil {
		return nil, fmt.Errorf("parse schema of %s: %w", name, err)
	}

	return &Validator{
		Sch:   &parsed,
		Props: props,
		Name:  name,
	}, nil
}

// IsSynced reports the first mismatch between the schema and the attribute
// properties: a property missing from either side, or a type the Go field
// cannot hold.
func (v *Validator) IsSynced() error {
	sch, _, err := v.ensureDereference(v.Sch)
	if err != nil {
		return fmt.Errorf("%s: %w", v.Name, err)
	}

	known := make(map[string]bool, len(v.Props))
	for _, p := range v.Props {
		known[p.Name] = true

		breadcrumbs := v.Name + "." + p.Name

		propSch, ok := sch.Properties[p.Name]
		if !ok {
			return &ValidationError{Breadcrumbs: breadcrumbs, Err: &MissingPropertyError{Property: p.Name}}
		}
		if propSch.TypeObject == nil || p.Type == nil {
			continue
		}

		if err := v.traverse(propSch.TypeObject, reflect.New(p.Type).Elem(), p.OmitEmpty, breadcrumbs); err != nil {
			return err
		}
	}

	for k := range sch.Properties {
		if !known[k] {
			return &AdditionalPropertyError{Property: k, Breadcrumbs: v.Name}
		}
	}

	return nil
}

var (
	rawMessageType = reflect.TypeFor[json.RawMessage]()
	timeType       = reflect.TypeFor[time.Time]()
	skipperType    = reflect.TypeFor[ShouldSkip]()
)

func isBytes(val reflect.Value) bool {
	k := val.Kind()
	return (k == reflect.Slice || k == reflect.Array) && val.Type().Elem().Kind() == reflect.Uint8
}

func isInteger(k reflect.Kind) bool {
	return k >= reflect.Int && k <= reflect.Uint64
}

func isNumber(k reflect.Kind) bool {
	return isInteger(k) || k == reflect.Float32 || k == reflect.Float64
}

// schemaType returns the single non-null type of sch; ["null", T] is the only
// supported type list.
func schemaType(sch *jsonschema.Schema) (string, bool, error) {
	switch {
	case sch.Type == nil:
		return "", false, fmt.Errorf("schema is missing a type")
	case sch.Type.SimpleTypes != nil:
		return string(*sch.Type.SimpleTypes), false, nil
	}

	var (
		found    []string
		nullable bool
	)
	for _, t := range sch.Type.SliceOfSimpleTypeValues {
		if t == jsonschema.Null {
			nullable = true
			continue
		}
		found = append(found, string(t))
	}

	if len(found) != 1 {
		return "", false, fmt.Errorf("exactly one non-null type is supported, got %v", found)
	}

	return found[0], nullable, nil
}

func (v *Validator) ensureDereference(sch *jsonschema.Schema) (*jsonschema.Schema, bool, error) {
	if sch.Ref != nil {
		defPrefix := "#/definitions/"
		if !strings.HasPrefix(*sch.Ref, defPrefix) {
			return nil, false, fmt.Errorf("references must be prefixed with %s", defPrefix)
		}
		key := strings.TrimPrefix(*sch.Ref, defPrefix)
		ref, ok := v.Sch.Definitions[key]
		if !ok || ref.TypeObject == nil {
			return nil, false, fmt.Errorf("could not find reference %s", *sch.Ref)
		}
		return v.ensureDereference(ref.TypeObject)
	}

	nullable := false
	inner := sch

	// allow oneOf{[null, ref]}
	for _, s := range sch.OneOf {
		if s.TypeObject == nil {
			continue
		}
		if s.TypeObject.Type != nil && s.TypeObject.Type.SimpleTypes != nil && *s.TypeObject.Type.SimpleTypes == jsonschema.Null {
			nullable = true
		} else if s.TypeObject.Ref != nil {
			resolved, nullableRef, err := v.ensureDereference(s.TypeObject)
			if err != nil {
				return nil, false, err
			}
			inner = resolved
			nullable = nullable || nullableRef
		}
	}

	return inner, nullable, nil
}

// skipped reports whether the value opts out of the check through ShouldSkip.
func skipped(val reflect.Value) bool {
	if !val.IsValid() {
		return false
	}

	receiver := val
	if !val.Type().Implements(skipperType) {
		if !val.CanAddr() || !val.Addr().Type().Implements(skipperType) {
			return false
		}
		receiver = val.Addr()
	}
	if receiver.Kind() == reflect.Pointer && receiver.IsNil() {
		receiver = reflect.New(receiver.Type().Elem())
	}

	return receiver.Interface().(ShouldSkip).SkipSchemaValidation()
}

func (v *Validator) traverse(sch *jsonschema.Schema, val reflect.Value, omitEmpty bool, breadcrumbs string) error {
	if skipped(val) {
		return nil
	}

	if sch == nil {
		return nil
	}

	sch, nullableRefType, err := v.ensureDereference(sch)
	if err != nil {
		return fmt.Errorf("%s: %w", breadcrumbs, err)
	}

	if val.Kind() == reflect.Interface || val.Type() == rawMessageType {
		// the schema declares the structure
		return nil
	}

	t, nullableSimpleType, err := schemaType(sch)
	if err != nil {
		return fmt.Errorf("%s: %w", breadcrumbs, err)
	}

	nullable := nullableRefType || nullableSimpleType

	if val.Kind() == reflect.Pointer {
		if !nullable && !omitEmpty {
			return &NullableFieldError{Message: fmt.Sprintf("%s: must be nullable", breadcrumbs), Breadcrumbs: breadcrumbs}
		}
		val = reflect.New(val.Type().Elem()).Elem()
	}

	if val.Kind() == reflect.Map && !nullable && !omitEmpty {
		return &NullableFieldError{Message: fmt.Sprintf("%s: must be nullable", breadcrumbs), Breadcrumbs: breadcrumbs}
	}

	switch t {
	case "boolean":
		if val.Kind() != reflect.Bool {
			return &SchemaTypeError{Expected: "boolean", Got: val.Kind(), Breadcrumbs: breadcrumbs}
		}
	case "integer":
		if !isInteger(val.Kind()) {
			return &SchemaTypeError{Expected: "integer", Got: val.Kind(), Breadcrumbs: breadcrumbs}
		}
	case "number":
		if !isNumber(val.Kind()) {
			return &SchemaTypeError{Expected: "number", Got: val.Kind(), Breadcrumbs: breadcrumbs}
		}
	case "string":
		if val.Kind() != reflect.String && !isBytes(val) && val.Type() != timeType {
			return &SchemaTypeError{Expected: "string", Got: val.Kind(), Breadcrumbs: breadcrumbs}
		}
	case "object":
		return v.checkObject(sch, val, breadcrumbs)
	case "array":
		if val.Kind() != reflect.Slice && val.Kind() != reflect.Array {
			return &SchemaTypeError{Expected: "array or slice", Got: val.Kind(), Breadcrumbs: breadcrumbs}
		}
		elementVal := reflect.New(val.Type().Elem()).Elem()

		if sch.Items != nil && sch.Items.SchemaOrBool != nil {
			if err := v.traverse(sch.Items.SchemaOrBool.TypeObject, elementVal, false, breadcrumbs+".0"); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("%s: unknown type %s", breadcrumbs, t)
	}

	return nil
}

// checkObject matches nested structs by their json tags and maps by their
// value type.
func (v *Validator) checkObject(sch *jsonschema.Schema, val reflect.Value, breadcrumbs string) error {
	switch val.Kind() {
	case reflect.Struct:
		if val.Type() == timeType {
			return &SchemaTypeError{Expected: "map or struct", Got: val.Kind(), Breadcrumbs: breadcrumbs}
		}

		seen := make(map[string]bool, val.NumField())
		for i := 0; i < val.NumField(); i++ {
			fieldType := val.Type().Field(i)
			name, opts := parseTag(fieldType.Tag.Get("json"))
			if name == "-" || !fieldType.IsExported() {
				continue
			}
			if name == "" {
				name = fieldType.Name
			}
			seen[name] = true

			schOrBool, ok := sch.Properties[name]
			if !ok {
				return &ValidationError{Breadcrumbs: breadcrumbs, Err: &MissingPropertyError{Property: name}}
			}

			if err := v.traverse(schOrBool.TypeObject, val.Field(i), opts.Contains("omitempty"), breadcrumbs+"."+name); err != nil {
				return err
			}
		}

		for k := range sch.Properties {
			if !seen[k] {
				return &AdditionalPropertyError{Property: k, Breadcrumbs: breadcrumbs}
			}
		}
	case reflect.Map:
		if sch.AdditionalProperties != nil && sch.AdditionalProperties.TypeBoolean != nil && !*sch.AdditionalProperties.TypeBoolean {
			return fmt.Errorf("%s: schema strictly enumerates all valid keys (e.g. %s); the appropriate data type for unmarshalling would be a struct, not a map", breadcrumbs, getMapKeys(sch.Properties))
		}
		mapValue := reflect.New(val.Type().Elem()).Elem()

		if sch.AdditionalProperties != nil && sch.AdditionalProperties.TypeObject != nil {
			if err := v.traverse(sch.AdditionalProperties.TypeObject, mapValue, false, breadcrumbs+"[key]"); err != nil {
				return err
			}
		}

		for k, s := range sch.Properties {
			if err := v.traverse(s.TypeObject, mapValue, false, breadcrumbs+"."+k); err != nil {
				return err
			}
		}
	default:
		return &SchemaTypeError{Expected: "map or struct", Got: val.Kind(), Breadcrumbs: breadcrumbs}
	}

	return nil
}

type tagOptions string

func (o tagOptions) Contains(name string) bool {
	for _, opt := range strings.Split(string(o), ",") {
		if opt == name {
			return true
		}
	}
	return false
}

func parseTag(tag string) (string, tagOptions) {
	name, opts, _ := strings.Cut(tag, ",")
	return name, tagOptions(opts)
}

func getMapKeys[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

