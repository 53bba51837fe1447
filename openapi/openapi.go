// Package openapi describes the endpoints a jsonapi.Client talks to as an
// OpenAPI 3.1 document: a collection and an item path per registered type.
package openapi

import (
	"github.com/tailbits/jsonapi"
)

type openapiConfig struct {
	skipLint    bool
	title       string
	version     string
	pathParams  []string
	filterFn    func(Record) bool
	tagsFn      func(*jsonapi.Type) []string
	allTags     []string
	transformFn func(*Record)
}

type Option func(*openapiConfig)

// SkipLint disables the vacuum lint run over the generated document.
func SkipLint(skip bool) Option {
	return func(c *openapiConfig) {
		c.skipLint = skip
	}
}

func Info(title, version string) Option {
	return func(c *openapiConfig) {
		c.title = title
		c.version = version
	}
}

// PathParams names the parameters custom paths are built from. Each one is
// rendered as a {name} path template.
func PathParams(names ...string) Option {
	return func(c *openapiConfig) {
		c.pathParams = append(c.pathParams, names...)
	}
}

func Filter(fn func(Record) bool) Option {
	return func(c *openapiConfig) {
		c.filterFn = fn
	}
}

func Tags(fn func(*jsonapi.Type) []string, all []string) Option {
	return func(c *openapiConfig) {
		c.tagsFn = fn
		c.allTags = all
	}
}

func Transform(fn func(*Record)) Option {
	return func(c *openapiConfig) {
		c.transformFn = fn
	}
}

// New generates the OpenAPI document of every type registered with c.
func New(c *jsonapi.Client, opts ...Option) ([]byte, error) {
	gen, err := NewGenerator(c, newConfig(opts...))
	if err != nil {
		return nil, err
	}

	return gen.ToSchema()
}

// Operations returns the operations New would document, without rendering
// them.
func Operations(c *jsonapi.Client, opts ...Option) (Records, error) {
	gen, err := NewGenerator(c, newConfig(opts...))
	if err != nil {
		return nil, err
	}

	return gen.records, nil
}

func newConfig(opts ...Option) openapiConfig {
	config := openapiConfig{
		title:       "JSON:API",
		version:     "1.0.0",
		filterFn:    func(r Record) bool { return true },
		tagsFn:      func(*jsonapi.Type) []string { return []string{} },
		allTags:     []string{},
		transformFn: func(r *Record) {},
	}

	for _, opt := range opts {
		opt(&config)
	}

	return config
}

func NewGenerator(c *jsonapi.Client, config openapiConfig) (*Generator, error) {
	gen := newGenerator(c, config)

	for _, t := range c.Registry().Types() {
		records, err := toRecords(c, t, config)
		if err != nil {
			return nil, err
		}

		for _, record := range records {
			config.transformFn(&record)
			if config.filterFn(record) {
				gen.records = append(gen.records, record)
			}
		}
	}

	return gen, nil
}
