// Package jsonapi maps Go domain values to and from JSON:API documents and
// builds the requests needed to talk to a JSON:API server.
package jsonapi

import (
	"io"
	"log/slog"
	"maps"
	"strings"
)

// MediaType is the JSON:API content type sent by default.
const MediaType = "application/vnd.api+json"

// Client holds the configuration shared by every request: the base URL, the
// naming conventions, the registry of known types, the default headers and
// the transport. Configure it once at startup; reading it from concurrent
// requests is safe, mutating it while requests are in flight is not.
type Client struct {
	baseURL      string
	usePlural    bool
	useSnakeCase bool
	validate     bool
	registry     Registry
	headers      map[string]string
	transport    Transport
	logger       *slog.Logger
}

type Option func(*Client)

// WithPlural toggles pluralization of inferred type names. Enabled by default.
func WithPlural(plural bool) Option {
	return func(c *Client) {
		c.usePlural = plural
	}
}

// WithSnakeCase toggles snake_case for inferred type names and wire keys.
// Enabled by default; when disabled type names are lower-cased and keys pass
// through unchanged.
func WithSnakeCase(snake bool) Option {
	return func(c *Client) {
		c.useSnakeCase = snake
	}
}

func WithHeader(key, value string) Option {
	return func(c *Client) {
		c.headers[key] = value
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithValidation makes Create and Update validate the outgoing attributes
// against the schema of the resource's registered type.
func WithValidation(validate bool) Option {
	return func(c *Client) {
		c.validate = validate
	}
}

// New returns a client for the API rooted at baseURL, issuing requests
// through transport.
func New(baseURL string, transport Transport, opts ...Option) *Client {
	c := &Client{
		baseURL:      strings.TrimRight(baseURL, "/") + "/",
		usePlural:    true,
		useSnakeCase: true,
		headers:      map[string]string{"Content-Type": MediaType},
		transport:    transport,
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Register appends a type descriptor to the registry. Duplicates are not
// rejected; earlier registrations win lookups.
func (c *Client) Register(t *Type) {
	c.registry = append(c.registry, t)
}

func (c *Client) Registry() Registry {
	return c.registry
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// SetHeader sets a default header sent with every subsequent request.
func (c *Client) SetHeader(key, value string) {
	c.headers[key] = value
}

// Headers returns a copy of the default headers.
func (c *Client) Headers() map[string]string {
	return maps.Clone(c.headers)
}
