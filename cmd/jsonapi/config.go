package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/tailbits/jsonapi"
	"gopkg.in/yaml.v3"
)

// Config is the YAML file the CLI reads its client settings from:
//
//	base_url: https://api.example.com
//	headers:
//	  Authorization: Bearer token
//	types:
//	  - name: Owner
//	    path: dogs/{dog_id}/owner
//	    schema: owner.schema.json
type Config struct {
	BaseURL   string            `yaml:"base_url"`
	Plural    *bool             `yaml:"plural"`
	SnakeCase *bool             `yaml:"snake_case"`
	Validate  bool              `yaml:"validate"`
	Headers   map[string]string `yaml:"headers"`
	Types     []TypeConfig      `yaml:"types"`

	dir string
}

// TypeConfig declares a resource type. Declared types have no Go type, so
// their resources decode into untyped objects.
type TypeConfig struct {
	Name     string `yaml:"name"`
	WireType string `yaml:"wire_type"`
	// Path is a request path template; {name} segments are filled from the
	// --extra flag.
	Path string `yaml:"path"`
	// Schema is a JSON schema file of the attributes object, relative to the
	// config file.
	Schema string `yaml:"schema"`
}

func LoadConfig(path string) (*Config, error) {
	cfg := &Config{}
	if path == "" {
		return cfg, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.dir = filepath.Dir(path)

	for i, t := range cfg.Types {
		if t.Name == "" {
			return nil, fmt.Errorf("config %s: type %d has no name", path, i)
		}
	}

	return cfg, nil
}

// Client builds the client the config describes.
func (cfg *Config) Client(transport jsonapi.Transport, logger *slog.Logger) (*jsonapi.Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("no base URL: set base_url or --base-url")
	}

	opts := []jsonapi.Option{
		jsonapi.WithLogger(logger),
		jsonapi.WithValidation(cfg.Validate),
	}
	if cfg.Plural != nil {
		opts = append(opts, jsonapi.WithPlural(*cfg.Plural))
	}
	if cfg.SnakeCase != nil {
		opts = append(opts, jsonapi.WithSnakeCase(*cfg.SnakeCase))
	}
	for k, v := range cfg.Headers {
		opts = append(opts, jsonapi.WithHeader(k, v))
	}

	c := jsonapi.New(cfg.BaseURL, transport, opts...)

	for _, tc := range cfg.Types {
		t, err := tc.toType(cfg.dir)
		if err != nil {
			return nil, err
		}
		c.Register(t)
	}

	return c, nil
}

func (tc TypeConfig) toType(dir string) (*jsonapi.Type, error) {
	t := &jsonapi.Type{
		Name:     tc.Name,
		WireType: tc.WireType,
	}

	if tc.Path != "" {
		t.Path = pathTemplate(tc.Path)
	}

	if tc.Schema != "" {
		file := tc.Schema
		if !filepath.IsAbs(file) {
			file = filepath.Join(dir, file)
		}
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("schema of %s: %w", tc.Name, err)
		}
		t.Schema = b
	}

	return t, nil
}

var templateParam = regexp.MustCompile(`\{([^{}]+)\}`)

// pathTemplate renders "dogs/{dog_id}/owner" with the request's extra
// parameters. Missing parameters render empty.
func pathTemplate(tmpl string) func(map[string]string) string {
	return func(params map[string]string) string {
		return templateParam.ReplaceAllStringFunc(tmpl, func(m string) string {
			return params[strings.Trim(m, "{}")]
		})
	}
}

// keyValues parses repeated key=value flags.
func keyValues(pairs []string, sep string) ([][2]string, error) {
	out := make([][2]string, 0, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, sep)
		if !ok || strings.TrimSpace(k) == "" {
			return nil, fmt.Errorf("invalid pair %q: expected key%svalue", p, sep)
		}
		out = append(out, [2]string{strings.TrimSpace(k), strings.TrimSpace(v)})
	}
	return out, nil
}
