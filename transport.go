package jsonapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Transport executes a request and returns the response body. Errors are
// returned to the caller of the operation unchanged.
type Transport interface {
	Do(ctx context.Context, req *Request) ([]byte, error)
}

// TransportFunc adapts a function to the Transport interface.
type TransportFunc func(ctx context.Context, req *Request) ([]byte, error)

func (f TransportFunc) Do(ctx context.Context, req *Request) ([]byte, error) {
	return f(ctx, req)
}

// ==========================================================================
// HTTPTransport is a concrete implementation of the Transport interface over net/http.

var _ Transport = (*HTTPTransport)(nil)

type HTTPTransport struct {
	*http.Client
}

func NewHTTPTransport() *HTTPTransport {
	return &HTTPTransport{
		Client: http.DefaultClient,
	}
}

// ResponseError is returned by HTTPTransport for non-2xx responses.
type ResponseError struct {
	StatusCode int
	Body       []byte
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

func (t *HTTPTransport) Do(ctx context.Context, req *Request) ([]byte, error) {
	var body io.Reader
	if req.Data != nil {
		b, err := json.Marshal(req.Data)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request data: %w", err)
		}
		body = bytes.NewReader(b)
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	hreq, err := http.NewRequestWithContext(ctx, method, req.URL, body)
	if err != nil {
		return nil, fmt.Errorf("http.NewRequest: %w", err)
	}
	for key, value := range req.Headers {
		hreq.Header.Set(key, value)
	}
	if hreq.Header.Get("Accept") == "" {
		hreq.Header.Set("Accept", MediaType)
	}

	resp, err := t.Client.Do(hreq)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, req.URL, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("unable to read the body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &ResponseError{StatusCode: resp.StatusCode, Body: respBody}
	}

	return respBody, nil
}
