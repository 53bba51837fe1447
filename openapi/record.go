package openapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/tailbits/jsonapi"
	"github.com/tailbits/jsonapi/internal/casing"
)

// Record is a single operation of the generated document.
type Record struct {
	Type          *jsonapi.Type
	Input         *Model
	Output        *Model
	ID            string
	Method        string
	Path          string
	Description   string
	Summary       string
	SuccessStatus int
	Tags          []string
	QueryParams   []QueryParam
}

// QueryParam is an optional query string parameter of an operation.
type QueryParam struct {
	Name        string
	Type        string
	Description string
}

// toRecords builds the five operations of a type: list and create on the
// collection path, fetch, update and delete on the item path.
func toRecords(c *jsonapi.Client, t *jsonapi.Type, config openapiConfig) ([]Record, error) {
	wire := c.TypeName(t)
	collection := "/" + strings.Trim(typePath(c, t, config.pathParams), "/") + "/"
	item := collection + "{id}/"

	attributes, err := c.AttributeSchema(t)
	if err != nil {
		return nil, fmt.Errorf("attribute schema of %s: %w", t.Name, err)
	}

	document, err := documentModel(t.Name, wire, attributes)
	if err != nil {
		return nil, err
	}
	list, err := collectionModel(t.Name, wire, attributes)
	if err != nil {
		return nil, err
	}

	tags := append(config.tagsFn(t), casing.SnakeToTitleCase(wire))

	return []Record{
		{
			Type:          t,
			Output:        &list,
			ID:            "list_" + wire,
			Method:        http.MethodGet,
			Path:          collection,
			Summary:       "List " + wire,
			SuccessStatus: http.StatusOK,
			Tags:          tags,
			QueryParams:   collectionParams(wire),
		},
		{
			Type:          t,
			Input:         &document,
			Output:        &document,
			ID:            "create_" + wire,
			Method:        http.MethodPost,
			Path:          collection,
			Summary:       "Create a resource of type " + wire,
			SuccessStatus: http.StatusCreated,
			Tags:          tags,
		},
		{
			Type:          t,
			Output:        &document,
			ID:            "fetch_" + wire,
			Method:        http.MethodGet,
			Path:          item,
			Summary:       "Fetch a resource of type " + wire,
			SuccessStatus: http.StatusOK,
			Tags:          tags,
			QueryParams:   []QueryParam{fieldsParam(wire)},
		},
		{
			Type:          t,
			Input:         &document,
			Output:        &document,
			ID:            "update_" + wire,
			Method:        http.MethodPatch,
			Path:          item,
			Summary:       "Update a resource of type " + wire,
			SuccessStatus: http.StatusOK,
			Tags:          tags,
		},
		{
			Type:          t,
			ID:            "delete_" + wire,
			Method:        http.MethodDelete,
			Path:          item,
			Summary:       "Delete a resource of type " + wire,
			SuccessStatus: http.StatusNoContent,
			Tags:          tags,
		},
	}, nil
}

// typePath renders the path of t, substituting {name} templates for the
// parameters of custom paths.
func typePath(c *jsonapi.Client, t *jsonapi.Type, params []string) string {
	if t.Path == nil {
		return c.TypeName(t)
	}

	templates := make(map[string]string, len(params))
	for _, p := range params {
		templates[p] = "{" + p + "}"
	}

	return t.Path(templates)
}

func fieldsParam(wire string) QueryParam {
	return QueryParam{Name: "fields[" + wire + "]", Type: "string", Description: "Comma separated attributes to return."}
}

func collectionParams(wire string) []QueryParam {
	return []QueryParam{
		fieldsParam(wire),
		{Name: "sort", Type: "string", Description: "Comma separated attributes, prefixed with - for descending order."},
		{Name: "filter", Type: "string", Description: "Filter expression."},
	}
}

/* -------------------------------------------------------------------------- */

func documentModel(name, wire string, attributes []byte) (Model, error) {
	schema := map[string]any{
		"type":     "object",
		"required": []string{"data"},
		"properties": map[string]any{
			"data": ref(name + "Resource"),
		},
	}

	return withResource(name+"Document", name, wire, schema, attributes)
}

func collectionModel(name, wire string, attributes []byte) (Model, error) {
	links := map[string]any{"type": "string"}
	schema := map[string]any{
		"type":     "object",
		"required": []string{"data"},
		"properties": map[string]any{
			"data": map[string]any{
				"type":  "array",
				"items": ref(name + "Resource"),
			},
			"links": map[string]any{
				"type": "object",
				"properties": map[string]any{
					jsonapi.LinkFirst: links,
					jsonapi.LinkLast:  links,
					jsonapi.LinkPrev:  links,
					jsonapi.LinkNext:  links,
				},
			},
		},
	}

	return withResource(name+"Collection", name, wire, schema, attributes)
}

// withResource attaches the resource object and attributes definitions the
// document schema refers to.
func withResource(defName, name, wire string, schema map[string]any, attributes []byte) (Model, error) {
	resource := map[string]any{
		"type":     "object",
		"required": []string{"type"},
		"properties": map[string]any{
			"type":          map[string]any{"type": "string", "const": wire},
			"id":            map[string]any{"type": "string"},
			"attributes":    ref(name + "Attributes"),
			"relationships": map[string]any{"type": "object"},
			"links":         map[string]any{"type": "object"},
		},
	}

	var attrs any
	if err := json.Unmarshal(attributes, &attrs); err != nil {
		return Model{}, fmt.Errorf("invalid attribute schema of %s: %w", name, err)
	}

	schema["definitions"] = map[string]any{
		name + "Resource":   resource,
		name + "Attributes": attrs,
	}

	b, err := json.Marshal(schema)
	if err != nil {
		return Model{}, fmt.Errorf("marshal %s: %w", defName, err)
	}

	return NewModel(defName, b), nil
}

func ref(defName string) map[string]any {
	return map[string]any{"$ref": "#/definitions/" + defName}
}
