package jsonapi

import (
	"context"
	"errors"
	"net/http"
)

// ErrNoLink is returned when following a link the document did not carry.
var ErrNoLink = errors.New("link not present")

// Link is a URL captured from a document, bound to the client that decoded
// it. Fetch issues a GET to the URL through the client's transport.
type Link struct {
	URL    string
	client *Client
}

func (c *Client) newLink(url string) *Link {
	return &Link{URL: url, client: c}
}

// Fetch returns the raw response body of a GET to the link's URL.
func (l *Link) Fetch(ctx context.Context) ([]byte, error) {
	if l == nil || l.client == nil {
		return nil, ErrNoLink
	}

	return l.client.CustomRequest(ctx, &Request{
		URL:     l.URL,
		Method:  http.MethodGet,
		Headers: l.client.Headers(),
	})
}

// Linked is embedded in domain types that want the links of the resource
// they were decoded from. Self, when present, backs Refresh.
type Linked struct {
	Links Links `json:"links,omitempty"`
	Self  *Link `json:"-"`
}

// Refresh re-fetches the resource from its self link.
func (l *Linked) Refresh(ctx context.Context) ([]byte, error) {
	return l.Self.Fetch(ctx)
}

func (l *Linked) setLinks(links Links, self *Link) {
	l.Links = links
	l.Self = self
}

type linker interface {
	setLinks(links Links, self *Link)
}

// Object is the untyped fallback for resources whose wire type does not
// resolve to a registered type. Attribute names are camel-cased.
type Object struct {
	Linked
	Type       string         `json:"type"`
	ID         string         `json:"id,omitempty"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// Collection is the result of decoding a collection document. The pagination
// links are nil when the document did not carry them.
type Collection struct {
	Data  []any
	First *Link
	Last  *Link
	Prev  *Link
	Next  *Link
}

func (col *Collection) setPage(name string, link *Link) {
	switch name {
	case LinkFirst:
		col.First = link
	case LinkLast:
		col.Last = link
	case LinkPrev:
		col.Prev = link
	case LinkNext:
		col.Next = link
	}
}

// Len returns the number of decoded resources.
func (col *Collection) Len() int {
	return len(col.Data)
}
