package jsonapi_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/tailbits/jsonapi"
	"gotest.tools/v3/assert"
)

const baseURL = "http://anyapi.com"

type Dog struct {
	jsonapi.Linked
	ID  int
	Age int
}

type Cat struct {
	jsonapi.Linked
	ID     int
	Age    int
	Color  string `jsonapi:"attr,color,omitempty"`
	Friend *Dog
}

type Owner struct {
	ID   string
	Name string
}

func (Owner) Path(params map[string]string) string {
	return "dogs/" + params["dog_id"] + "/owner"
}

type Toy struct {
	ID    string `jsonapi:"id"`
	Label string `jsonapi:"attr,label"`
}

type Kennel struct {
	ID          string `jsonapi:"id"`
	FavoriteToy string
	Toys        []*Toy `jsonapi:"rel,toys"`
	Keeper      *Owner `jsonapi:"rel,keeper"`
	Notes       string `jsonapi:"-"`
}

// recorder is a transport that records requests and replies with a canned body.
type recorder struct {
	requests []*jsonapi.Request
	body     []byte
	err      error
}

func (r *recorder) Do(_ context.Context, req *jsonapi.Request) ([]byte, error) {
	r.requests = append(r.requests, req)
	return r.body, r.err
}

func (r *recorder) last(t *testing.T) *jsonapi.Request {
	t.Helper()
	assert.Assert(t, len(r.requests) > 0, "no request was sent")
	return r.requests[len(r.requests)-1]
}

func newClient(opts ...jsonapi.Option) (*jsonapi.Client, *recorder) {
	rec := &recorder{}
	c := jsonapi.New(baseURL, rec, opts...)
	jsonapi.Define[Dog](c)
	jsonapi.Define[Cat](c)

	return c, rec
}

// assertJSON compares the JSON encoding of got with want, ignoring key order
// and whitespace.
func assertJSON(t *testing.T, got any, want string) {
	t.Helper()

	b, err := json.Marshal(got)
	assert.NilError(t, err)

	var gotV, wantV any
	assert.NilError(t, json.Unmarshal(b, &gotV))
	assert.NilError(t, json.Unmarshal([]byte(want), &wantV), "invalid expectation")

	assert.DeepEqual(t, gotV, wantV)
}

func mustDecode(t *testing.T, body string) *jsonapi.Document {
	t.Helper()

	doc, err := jsonapi.DecodeDocument([]byte(body))
	assert.NilError(t, err)

	return doc
}
