package jsonapi

import (
	"net/http"
)

// Request describes a single call to the server. Data is the JSON body: a
// *Document, a []*Document for custom actions on many resources, or nil.
type Request struct {
	URL     string            `json:"url"`
	Method  string            `json:"method"`
	Headers map[string]string `json:"headers"`
	Data    any               `json:"data"`
	Meta    map[string]any    `json:"meta,omitempty"`
}

// Params are the inputs of an operation. Each operation reads the fields
// relevant to it.
type Params struct {
	// Resource is the domain value to send, or whose type and id drive the request.
	Resource any
	// Resources are sent as an array of documents by custom actions.
	Resources []any
	// Type overrides both the wire type and the path.
	Type string
	// Model is a registered type to request when there is no resource at hand.
	Model *Type
	// ID overrides the resource id in the URL.
	ID string
	// Attributes is the sparse fieldset and the attribute whitelist.
	Attributes   []string
	Sort         []Sort
	Filter       *Filter
	CustomParams *Values
	// Action is appended to the path of a custom action.
	Action string
	// Method of a custom action, POST by default.
	Method string
	Meta   map[string]any
	// Extra is handed to custom path builders.
	Extra map[string]string
}

// typeOverride is the wire type forced on the serialized document: the
// string override, else the model's name when there is no resource to infer
// it from.
func (c *Client) typeOverride(p Params) string {
	if p.Type != "" {
		return p.Type
	}
	if p.Resource == nil && p.Model != nil {
		return c.TypeName(p.Model)
	}
	return ""
}

// buildRequest assembles the final descriptor. GET requests use the document
// only to compose the URL and carry no body.
func (c *Client) buildRequest(method string, data any, meta map[string]any, up urlParams) *Request {
	var dataType, dataID string
	if doc, ok := data.(*Document); ok && doc.Data.One != nil {
		dataType = doc.Data.One.Type
		dataID = doc.Data.One.ID
	}

	req := &Request{
		URL:     c.buildURL(dataType, dataID, up),
		Method:  method,
		Headers: c.Headers(),
		Data:    data,
		Meta:    meta,
	}
	if req.Meta == nil {
		req.Meta = map[string]any{}
	}

	if method == http.MethodGet {
		req.Data = nil
	}

	return req
}

// BuildFind builds the GET of a single resource by id.
func (c *Client) BuildFind(p Params) *Request {
	data := c.Serialize(p.Resource, c.typeOverride(p), nil)
	if p.ID != "" {
		data.Data.One.ID = p.ID
	}

	up := urlParams{
		attributes:   p.Attributes,
		customParams: p.CustomParams,
		path:         c.resolvePath(p.Resource, p.Type, p.Model, p.Extra),
	}

	return c.buildRequest(http.MethodGet, data, p.Meta, up)
}

// BuildFindAll builds the GET of a collection.
func (c *Client) BuildFindAll(p Params) *Request {
	data := c.Serialize(nil, c.typeOverride(p), nil)

	up := urlParams{
		attributes:   p.Attributes,
		sort:         p.Sort,
		filter:       p.Filter,
		customParams: p.CustomParams,
		path:         c.resolvePath(nil, p.Type, p.Model, p.Extra),
	}

	return c.buildRequest(http.MethodGet, data, p.Meta, up)
}

// BuildUpdate builds the PATCH of a resource.
func (c *Client) BuildUpdate(p Params) *Request {
	return c.buildWrite(http.MethodPatch, p)
}

// BuildCreate builds the POST of a resource.
func (c *Client) BuildCreate(p Params) *Request {
	return c.buildWrite(http.MethodPost, p)
}

func (c *Client) buildWrite(method string, p Params) *Request {
	data := c.Serialize(p.Resource, c.typeOverride(p), p.Attributes)

	up := urlParams{
		attributes: p.Attributes,
		path:       c.resolvePath(p.Resource, p.Type, p.Model, p.Extra),
		resourceID: p.ID,
	}

	return c.buildRequest(method, data, p.Meta, up)
}

// BuildDelete builds the DELETE of a resource.
func (c *Client) BuildDelete(p Params) *Request {
	data := c.Serialize(p.Resource, c.typeOverride(p), nil)
	if p.ID != "" && p.Resource == nil {
		data.Data.One.ID = p.ID
	}

	up := urlParams{
		path:       c.resolvePath(p.Resource, p.Type, p.Model, p.Extra),
		resourceID: p.ID,
	}

	return c.buildRequest(http.MethodDelete, data, p.Meta, up)
}

// BuildCustomAction builds a request to base/path/[id/]action/. With
// Resources set, each resource is serialized on its own and the body is the
// array of documents.
func (c *Client) BuildCustomAction(p Params) *Request {
	method := p.Method
	if method == "" {
		method = http.MethodPost
	}

	var data any
	pathResource := p.Resource

	if len(p.Resources) > 0 {
		docs := make([]*Document, 0, len(p.Resources))
		for _, res := range p.Resources {
			docs = append(docs, c.Serialize(res, c.typeOverride(Params{Type: p.Type, Resource: res}), nil))
		}
		data = docs
		pathResource = p.Resources[0]
	} else {
		data = c.Serialize(p.Resource, c.typeOverride(p), nil)
	}

	up := urlParams{
		filter:     p.Filter,
		path:       c.resolvePath(pathResource, p.Type, p.Model, p.Extra),
		action:     p.Action,
		resourceID: p.ID,
	}

	return c.buildRequest(method, data, p.Meta, up)
}
