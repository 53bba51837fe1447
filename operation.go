package jsonapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"reflect"

	"github.com/tailbits/jsonapi/model"
)

// Find fetches a single resource and decodes it.
func (c *Client) Find(ctx context.Context, p Params) (any, error) {
	body, err := c.execute(ctx, c.BuildFind(p))
	if err != nil {
		return nil, err
	}

	return c.decodeOne(body, p.Attributes)
}

// FindAll fetches a collection and decodes it, binding its pagination links.
func (c *Client) FindAll(ctx context.Context, p Params) (*Collection, error) {
	body, err := c.execute(ctx, c.BuildFindAll(p))
	if err != nil {
		return nil, err
	}

	doc, err := DecodeDocument(body)
	if err != nil {
		return nil, err
	}

	return c.DeserializeCollection(doc, p.Attributes)
}

// Update sends the resource with PATCH and decodes the response.
func (c *Client) Update(ctx context.Context, p Params) (any, error) {
	return c.write(ctx, p, c.BuildUpdate(p))
}

// Create sends the resource with POST and decodes the response.
func (c *Client) Create(ctx context.Context, p Params) (any, error) {
	return c.write(ctx, p, c.BuildCreate(p))
}

func (c *Client) write(ctx context.Context, p Params, req *Request) (any, error) {
	if err := c.validateAttributes(p, req); err != nil {
		return nil, err
	}

	body, err := c.execute(ctx, req)
	if err != nil {
		return nil, err
	}

	return c.decodeOne(body, p.Attributes)
}

// Delete sends a DELETE and returns the raw response body.
func (c *Client) Delete(ctx context.Context, p Params) ([]byte, error) {
	return c.execute(ctx, c.BuildDelete(p))
}

// CustomAction sends a custom action and returns the raw response body.
func (c *Client) CustomAction(ctx context.Context, p Params) ([]byte, error) {
	return c.execute(ctx, c.BuildCustomAction(p))
}

// CustomRequest hands req to the transport as is. Use it for endpoints that
// do not speak JSON:API.
func (c *Client) CustomRequest(ctx context.Context, req *Request) ([]byte, error) {
	return c.execute(ctx, req)
}

// execute forwards transport errors unchanged.
func (c *Client) execute(ctx context.Context, req *Request) ([]byte, error) {
	c.logger.DebugContext(ctx, "jsonapi request", "method", req.Method, "url", req.URL)

	return c.transport.Do(ctx, req)
}

func (c *Client) decodeOne(body []byte, whitelist []string) (any, error) {
	doc, err := DecodeDocument(body)
	if err != nil {
		return nil, err
	}

	return c.Deserialize(doc, whitelist)
}

// validateAttributes checks the outgoing attributes against the schema of the
// resource's registered type when validation is enabled.
func (c *Client) validateAttributes(p Params, req *Request) error {
	if !c.validate {
		return nil
	}

	t := p.Model
	if p.Resource != nil {
		if rt, ok := c.registry.lookup(reflect.TypeOf(p.Resource)); ok {
			t = rt
		}
	}
	doc, ok := req.Data.(*Document)
	if t == nil || !ok || doc.Data.One == nil {
		return nil
	}

	schema, err := c.AttributeSchema(t)
	if err != nil {
		return fmt.Errorf("attribute schema of %s: %w", t.Name, err)
	}

	if req.Method == http.MethodPatch && len(p.Attributes) > 0 {
		if schema, err = model.WithoutRequired(schema); err != nil {
			return fmt.Errorf("attribute schema of %s: %w", t.Name, err)
		}
	}

	body, err := json.Marshal(doc.Data.One.Attributes)
	if err != nil {
		return fmt.Errorf("marshal attributes of %s: %w", t.Name, err)
	}

	if err := model.Validate(schema, body); err != nil {
		return fmt.Errorf("validate %s: %w", t.Name, err)
	}

	return nil
}
