package jsonapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Pagination link names found at the top level of a collection document.
const (
	LinkFirst = "first"
	LinkLast  = "last"
	LinkPrev  = "prev"
	LinkNext  = "next"
	LinkSelf  = "self"
)

var paginationLinks = []string{LinkFirst, LinkLast, LinkPrev, LinkNext}

// Document is a JSON:API top-level document. Serialized relationships share
// the same shape.
type Document struct {
	Data     PrimaryData       `json:"data"`
	Included []*ResourceObject `json:"included,omitempty"`
	Links    Links             `json:"links,omitempty"`
}

// PrimaryData is the "data" member of a document: a single resource object,
// an array of them, or null.
type PrimaryData struct {
	One    *ResourceObject
	Many   []*ResourceObject
	IsMany bool
}

func (p PrimaryData) MarshalJSON() ([]byte, error) {
	if p.IsMany {
		if p.Many == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(p.Many)
	}
	if p.One == nil {
		return []byte("null"), nil
	}

	return json.Marshal(p.One)
}

func (p *PrimaryData) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*p = PrimaryData{}

	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		return nil
	case data[0] == '[':
		p.IsMany = true
		return json.Unmarshal(data, &p.Many)
	default:
		p.One = new(ResourceObject)
		return json.Unmarshal(data, p.One)
	}
}

// ResourceObject is a single resource on the wire.
type ResourceObject struct {
	Type          string               `json:"type"`
	ID            string               `json:"id,omitempty"`
	Attributes    map[string]any       `json:"attributes,omitempty"`
	Relationships map[string]*Document `json:"relationships,omitempty"`
	Links         Links                `json:"links,omitempty"`
}

// MarshalJSON keeps an empty, non-nil attributes object on the wire: only a
// document without a resource omits it.
func (r ResourceObject) MarshalJSON() ([]byte, error) {
	type alias ResourceObject
	out := struct {
		alias
		Attributes *map[string]any `json:"attributes,omitempty"`
	}{alias: alias(r)}

	if r.Attributes != nil {
		out.Attributes = &r.Attributes
	}

	return json.Marshal(out)
}

// UnmarshalJSON accepts numeric ids as well as strings.
func (r *ResourceObject) UnmarshalJSON(data []byte) error {
	type alias ResourceObject
	in := struct {
		*alias
		ID json.RawMessage `json:"id,omitempty"`
	}{alias: (*alias)(r)}

	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	id, err := rawID(in.ID)
	if err != nil {
		return fmt.Errorf("resource %s: %w", r.Type, err)
	}
	r.ID = id

	return nil
}

func rawID(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}

	if raw[0] == '"' {
		return strconv.Unquote(string(raw))
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("invalid id %s: %w", raw, err)
	}

	return n.String(), nil
}

// Links maps link names to URLs. Link objects ({"href": ...}) are flattened
// to their href when decoding.
type Links map[string]string

func (l *Links) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	links := make(Links, len(raw))
	for name, value := range raw {
		var href string
		if err := json.Unmarshal(value, &href); err == nil {
			if href != "" {
				links[name] = href
			}
			continue
		}

		var obj struct {
			Href string `json:"href"`
		}
		if err := json.Unmarshal(value, &obj); err != nil {
			return fmt.Errorf("link %s: %w", name, err)
		}
		if obj.Href != "" {
			links[name] = obj.Href
		}
	}
	*l = links

	return nil
}

// without returns a copy of l minus the named links.
func (l Links) without(names ...string) Links {
	out := make(Links, len(l))
	for k, v := range l {
		out[k] = v
	}
	for _, name := range names {
		delete(out, name)
	}

	return out
}

// DecodeDocument parses a response body into a Document.
func DecodeDocument(body []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("unable to unmarshal the document: %w", err)
	}

	return &doc, nil
}
