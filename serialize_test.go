package jsonapi_test

import (
	"testing"

	"github.com/tailbits/jsonapi"
	"gotest.tools/v3/assert"
)

type Node struct {
	ID   string
	Next *Node `jsonapi:"rel,next"`
}

func TestSerialize(t *testing.T) {
	c, _ := newClient()

	t.Run("attributes exclude the id", func(t *testing.T) {
		doc := c.Serialize(&Dog{ID: 1, Age: 2}, "", nil)
		assertJSON(t, doc, `{"data": {"type": "dogs", "id": "1", "attributes": {"age": 2}}}`)
	})

	t.Run("zero id is omitted", func(t *testing.T) {
		doc := c.Serialize(&Dog{Age: 2}, "", nil)
		assertJSON(t, doc, `{"data": {"type": "dogs", "attributes": {"age": 2}}}`)
	})

	t.Run("whitelist", func(t *testing.T) {
		doc := c.Serialize(&Cat{ID: 1, Age: 2, Color: "black"}, "", []string{"color"})
		assertJSON(t, doc, `{"data": {"type": "cats", "id": "1", "attributes": {"color": "black"}}}`)
	})

	t.Run("registered value becomes a relationship", func(t *testing.T) {
		doc := c.Serialize(&Cat{ID: 1, Age: 2, Friend: &Dog{ID: 1, Age: 2}}, "", nil)
		assertJSON(t, doc, `{"data": {
			"type": "cats", "id": "1", "attributes": {"age": 2},
			"relationships": {"friend": {"data": {"type": "dogs", "id": "1", "attributes": {"age": 2}}}}
		}}`)
	})

	t.Run("nil resource keeps the type", func(t *testing.T) {
		doc := c.Serialize(nil, "dog", nil)
		assertJSON(t, doc, `{"data": {"type": "dog"}}`)
	})

	t.Run("override", func(t *testing.T) {
		doc := c.Serialize(&Dog{ID: 3}, "canines", nil)
		assert.Equal(t, doc.Data.One.Type, "canines")
		assert.Equal(t, doc.Data.One.ID, "3")
	})

	t.Run("untyped object", func(t *testing.T) {
		obj := &jsonapi.Object{Type: "horse", ID: "3", Attributes: map[string]any{"coatColor": "bay"}}
		doc := c.Serialize(obj, "", nil)
		assertJSON(t, doc, `{"data": {"type": "horse", "id": "3", "attributes": {"coat_color": "bay"}}}`)
	})

	t.Run("map", func(t *testing.T) {
		doc := c.Serialize(map[string]any{"id": 5, "name": "Rex"}, "dogs", nil)
		assertJSON(t, doc, `{"data": {"type": "dogs", "id": "5", "attributes": {"name": "Rex"}}}`)
	})
}

func TestSerializeKeys(t *testing.T) {
	kennel := &Kennel{
		ID:          "k1",
		FavoriteToy: "ball",
		Toys:        []*Toy{{ID: "t1", Label: "rope"}, nil, {ID: "t2", Label: "bone"}},
		Notes:       "not sent",
	}

	t.Run("snake case", func(t *testing.T) {
		c, _ := newClient()

		doc := c.Serialize(kennel, "", nil)
		assertJSON(t, doc, `{"data": {
			"type": "kennels", "id": "k1", "attributes": {"favorite_toy": "ball"},
			"relationships": {"toys": {"data": [
				{"type": "toys", "id": "t1", "attributes": {"label": "rope"}},
				{"type": "toys", "id": "t2", "attributes": {"label": "bone"}}
			]}}
		}}`)
	})

	t.Run("pass through", func(t *testing.T) {
		c, _ := newClient(jsonapi.WithSnakeCase(false))

		doc := c.Serialize(kennel, "", []string{"favoriteToy"})
		assertJSON(t, doc, `{"data": {"type": "kennels", "id": "k1", "attributes": {"favoriteToy": "ball"}}}`)
	})
}

func TestSerializeCycle(t *testing.T) {
	c, _ := newClient()

	a := &Node{ID: "a"}
	b := &Node{ID: "b", Next: a}
	a.Next = b

	doc := c.Serialize(a, "", nil)
	assertJSON(t, doc, `{"data": {
		"type": "nodes", "id": "a", "attributes": {},
		"relationships": {"next": {"data": {
			"type": "nodes", "id": "b", "attributes": {},
			"relationships": {"next": {"data": {"type": "nodes", "id": "a"}}}
		}}}
	}}`)
}
