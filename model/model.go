package model

// WithName is an interface for overriding the bare type name of a resource.
// The bare name ("Dog") is what wire type names are derived from, and what
// incoming wire types are resolved back to.
type WithName interface {
	Name() string
}

// WithWireType is an interface for declaring the exact wire type name of a
// resource, bypassing pluralization and case conversion.
type WithWireType interface {
	WireType() string
}

// WithPath is an interface for resources that live under a custom path, such
// as a nested collection. The params are the caller supplied extra parameters
// of the request, e.g. the id of the parent resource.
type WithPath interface {
	Path(params map[string]string) string
}

// WithSchema is an interface for declaring the JSON schema that the
// attributes object of a resource must satisfy.
type WithSchema interface {
	Schema() []byte
}
