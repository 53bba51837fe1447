package jsonapi_test

import (
	"context"
	"testing"

	"github.com/tailbits/jsonapi"
	"gotest.tools/v3/assert"
)

func TestDeserialize(t *testing.T) {
	c, _ := newClient()

	t.Run("registered type", func(t *testing.T) {
		doc := mustDecode(t, `{"data": {"type": "dogs", "id": "1", "attributes": {"age": 2}}}`)

		v, err := c.Deserialize(doc, nil)
		assert.NilError(t, err)

		dog, ok := v.(*Dog)
		assert.Assert(t, ok, "got %T", v)
		assert.Equal(t, dog.ID, 1)
		assert.Equal(t, dog.Age, 2)
	})

	t.Run("numeric id", func(t *testing.T) {
		doc := mustDecode(t, `{"data": {"type": "dogs", "id": 7, "attributes": {}}}`)

		v, err := c.Deserialize(doc, nil)
		assert.NilError(t, err)
		assert.Equal(t, v.(*Dog).ID, 7)
	})

	t.Run("round trip", func(t *testing.T) {
		cat := &Cat{ID: 4, Age: 3, Color: "black"}

		v, err := c.Deserialize(c.Serialize(cat, "", nil), nil)
		assert.NilError(t, err)

		got := v.(*Cat)
		assert.Equal(t, got.ID, 4)
		assert.Equal(t, got.Age, 3)
		assert.Equal(t, got.Color, "black")
		assert.Assert(t, got.Friend == nil)
	})

	t.Run("unknown type", func(t *testing.T) {
		doc := mustDecode(t, `{"data": {"type": "horse", "id": "9", "attributes": {"coat_color": "bay", "age": 4}}}`)

		v, err := c.Deserialize(doc, nil)
		assert.NilError(t, err)

		obj, ok := v.(*jsonapi.Object)
		assert.Assert(t, ok, "got %T", v)
		assert.Equal(t, obj.Type, "horse")
		assert.Equal(t, obj.ID, "9")
		assert.DeepEqual(t, obj.Attributes, map[string]any{"coatColor": "bay", "age": float64(4)})
	})

	t.Run("whitelist", func(t *testing.T) {
		doc := mustDecode(t, `{"data": {"type": "cats", "id": "1", "attributes": {"age": 2, "color": "white"}}}`)

		v, err := c.Deserialize(doc, []string{"color"})
		assert.NilError(t, err)

		cat := v.(*Cat)
		assert.Equal(t, cat.Age, 0)
		assert.Equal(t, cat.Color, "white")
	})

	t.Run("no data", func(t *testing.T) {
		_, err := c.Deserialize(mustDecode(t, `{"data": null}`), nil)
		assert.ErrorIs(t, err, jsonapi.ErrNoData)
	})

	t.Run("attribute of the wrong type", func(t *testing.T) {
		doc := mustDecode(t, `{"data": {"type": "dogs", "id": "1", "attributes": {"age": "old"}}}`)

		_, err := c.Deserialize(doc, nil)
		assert.ErrorContains(t, err, "attribute age")
	})
}

func TestDeserializeRelationships(t *testing.T) {
	c, _ := newClient()

	t.Run("included resource", func(t *testing.T) {
		doc := mustDecode(t, `{
			"data": {
				"type": "cats", "id": "1", "attributes": {"age": 2},
				"relationships": {"friend": {"data": {"type": "dogs", "id": "5"}}}
			},
			"included": [{"type": "dogs", "id": "5", "attributes": {"age": 9}}]
		}`)

		v, err := c.Deserialize(doc, nil)
		assert.NilError(t, err)

		cat := v.(*Cat)
		assert.Assert(t, cat.Friend != nil)
		assert.Equal(t, cat.Friend.ID, 5)
		assert.Equal(t, cat.Friend.Age, 9)
	})

	t.Run("reference without included resource", func(t *testing.T) {
		doc := mustDecode(t, `{"data": {
			"type": "cats", "id": "1",
			"relationships": {"friend": {"data": {"type": "dogs", "id": "5"}}}
		}}`)

		v, err := c.Deserialize(doc, nil)
		assert.NilError(t, err)
		assert.Equal(t, v.(*Cat).Friend.ID, 5)
		assert.Equal(t, v.(*Cat).Friend.Age, 0)
	})

	t.Run("to-many into an unregistered type", func(t *testing.T) {
		doc := mustDecode(t, `{
			"data": {
				"type": "kennels", "id": "k1", "attributes": {"favorite_toy": "ball"},
				"relationships": {
					"toys": {"data": [{"type": "toys", "id": "t1"}, {"type": "toys", "id": "t2"}]},
					"keeper": {"data": {"type": "owners", "id": "o1"}}
				}
			},
			"included": [
				{"type": "toys", "id": "t2", "attributes": {"label": "bone"}},
				{"type": "owners", "id": "o1", "attributes": {"name": "Ann"}}
			]
		}`)

		v, err := c.Deserialize(doc, nil)
		assert.NilError(t, err)

		obj, ok := v.(*jsonapi.Object)
		assert.Assert(t, ok, "kennels are not registered, got %T", v)
		assert.Equal(t, obj.Attributes["favoriteToy"], "ball")

		jsonapi.Define[Kennel](c)
		v, err = c.Deserialize(doc, nil)
		assert.NilError(t, err)

		kennel := v.(*Kennel)
		assert.Equal(t, kennel.FavoriteToy, "ball")
		assert.Equal(t, len(kennel.Toys), 2)
		assert.Equal(t, kennel.Toys[0].ID, "t1")
		assert.Equal(t, kennel.Toys[0].Label, "")
		assert.Equal(t, kennel.Toys[1].Label, "bone")
		assert.Equal(t, kennel.Keeper.ID, "o1")
		assert.Equal(t, kennel.Keeper.Name, "Ann")
	})
}

func TestDeserializeLinks(t *testing.T) {
	c, rec := newClient()
	rec.body = []byte(`{"data": {"type": "dogs", "id": "1", "attributes": {"age": 3}}}`)

	doc := mustDecode(t, `{"data": {
		"type": "dogs", "id": "1", "attributes": {"age": 2},
		"links": {"self": "http://anyapi.com/dogs/1", "related": {"href": "http://anyapi.com/dogs/1/owner"}}
	}}`)

	v, err := c.Deserialize(doc, nil)
	assert.NilError(t, err)

	dog := v.(*Dog)
	assert.DeepEqual(t, dog.Links, jsonapi.Links{
		"self":    "http://anyapi.com/dogs/1",
		"related": "http://anyapi.com/dogs/1/owner",
	})

	body, err := dog.Refresh(context.Background())
	assert.NilError(t, err)
	assert.DeepEqual(t, body, rec.body)

	req := rec.last(t)
	assert.Equal(t, req.URL, "http://anyapi.com/dogs/1")
	assert.Equal(t, req.Method, "GET")
	assert.Equal(t, req.Headers["Content-Type"], jsonapi.MediaType)

	t.Run("without a self link", func(t *testing.T) {
		var dog Dog
		_, err := dog.Refresh(context.Background())
		assert.ErrorIs(t, err, jsonapi.ErrNoLink)
	})
}

func TestDeserializeCollection(t *testing.T) {
	c, rec := newClient()

	doc := mustDecode(t, `{
		"data": [
			{"type": "dogs", "id": "1", "attributes": {"age": 2}},
			{"type": "cats", "id": "2", "attributes": {"age": 5}}
		],
		"links": {"next": "http://anyapi.com/dogs?page=2", "first": "http://anyapi.com/dogs?page=1"}
	}`)

	col, err := c.DeserializeCollection(doc, nil)
	assert.NilError(t, err)
	assert.Equal(t, col.Len(), 2)
	assert.Equal(t, col.Data[0].(*Dog).Age, 2)
	assert.Equal(t, col.Data[1].(*Cat).Age, 5)

	assert.Assert(t, col.Prev == nil)
	assert.Assert(t, col.Last == nil)
	assert.Equal(t, col.First.URL, "http://anyapi.com/dogs?page=1")

	_, err = col.Next.Fetch(context.Background())
	assert.NilError(t, err)
	assert.Equal(t, rec.last(t).URL, "http://anyapi.com/dogs?page=2")

	_, err = col.Prev.Fetch(context.Background())
	assert.ErrorIs(t, err, jsonapi.ErrNoLink)

	t.Run("single resource", func(t *testing.T) {
		col, err := c.DeserializeCollection(mustDecode(t, `{"data": {"type": "dogs", "id": "1"}}`), nil)
		assert.NilError(t, err)
		assert.Equal(t, col.Len(), 1)
	})

	t.Run("empty", func(t *testing.T) {
		col, err := c.DeserializeCollection(mustDecode(t, `{"data": []}`), nil)
		assert.NilError(t, err)
		assert.Equal(t, col.Len(), 0)
	})
}
