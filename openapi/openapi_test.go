package openapi_test

import (
	"encoding/json"
	"testing"

	"github.com/tailbits/jsonapi"
	"github.com/tailbits/jsonapi/openapi"
	"gotest.tools/v3/assert"
)

type Dog struct {
	ID   string
	Age  int
	Name string
}

type DogHouse struct {
	ID    string
	Owner *Dog
	Size  int
}

type Owner struct {
	ID   string
	Name string
}

func (Owner) Path(params map[string]string) string {
	return "dogs/" + params["dog_id"] + "/owner"
}

type document struct {
	Paths map[string]map[string]struct {
		OperationID string   `json:"operationId"`
		Tags        []string `json:"tags"`
		Parameters  []struct {
			Name string `json:"name"`
			In   string `json:"in"`
		} `json:"parameters"`
	} `json:"paths"`
	Components struct {
		Schemas map[string]json.RawMessage `json:"schemas"`
	} `json:"components"`
	Servers []struct {
		URL string `json:"url"`
	} `json:"servers"`
	Tags []struct {
		Name string `json:"name"`
	} `json:"tags"`
}

func generate(t *testing.T, c *jsonapi.Client) document {
	t.Helper()

	b, err := openapi.New(c, openapi.SkipLint(true), openapi.PathParams("dog_id"))
	assert.NilError(t, err)

	var doc document
	assert.NilError(t, json.Unmarshal(b, &doc))

	return doc
}

func TestNew(t *testing.T) {
	c := jsonapi.New("http://anyapi.com", nil)
	jsonapi.Define[Dog](c)
	jsonapi.Define[DogHouse](c)
	jsonapi.Define[Owner](c)

	doc := generate(t, c)

	assert.Equal(t, doc.Servers[0].URL, "http://anyapi.com/")

	t.Run("collection and item paths", func(t *testing.T) {
		dogs, ok := doc.Paths["/dogs/"]
		assert.Assert(t, ok, "paths: %v", doc.Paths)
		assert.Equal(t, dogs["get"].OperationID, "list_dogs")
		assert.Equal(t, dogs["post"].OperationID, "create_dogs")

		dog, ok := doc.Paths["/dogs/{id}/"]
		assert.Assert(t, ok, "paths: %v", doc.Paths)
		assert.Equal(t, dog["get"].OperationID, "fetch_dogs")
		assert.Equal(t, dog["patch"].OperationID, "update_dogs")
		assert.Equal(t, dog["delete"].OperationID, "delete_dogs")
		assert.DeepEqual(t, dog["get"].Tags, []string{"Dogs"})
	})

	t.Run("custom path parameters", func(t *testing.T) {
		owner, ok := doc.Paths["/dogs/{dog_id}/owner/{id}/"]
		assert.Assert(t, ok, "paths: %v", doc.Paths)

		var names []string
		for _, p := range owner["get"].Parameters {
			if p.In == "path" {
				names = append(names, p.Name)
			}
		}
		assert.DeepEqual(t, names, []string{"dog_id", "id"})
	})

	t.Run("attribute schemas", func(t *testing.T) {
		var attrs struct {
			Properties map[string]json.RawMessage `json:"properties"`
		}
		assert.NilError(t, json.Unmarshal(doc.Components.Schemas["DogHouseAttributes"], &attrs))

		_, ok := attrs.Properties["size"]
		assert.Assert(t, ok)
		_, ok = attrs.Properties["owner"]
		assert.Assert(t, !ok, "relationships are not attributes")

		for _, name := range []string{"DogDocument", "DogCollection", "DogResource", "DogAttributes"} {
			_, ok := doc.Components.Schemas[name]
			assert.Assert(t, ok, "missing %s", name)
		}
	})

	t.Run("tags", func(t *testing.T) {
		var names []string
		for _, tag := range doc.Tags {
			names = append(names, tag.Name)
		}
		assert.DeepEqual(t, names, []string{"Dog Houses", "Dogs", "Owners"})
	})
}

func TestFilter(t *testing.T) {
	c := jsonapi.New("http://anyapi.com", nil)
	jsonapi.Define[Dog](c)

	b, err := openapi.New(c, openapi.SkipLint(true), openapi.Filter(func(r openapi.Record) bool {
		return r.Method != "DELETE"
	}))
	assert.NilError(t, err)

	var doc document
	assert.NilError(t, json.Unmarshal(b, &doc))

	_, ok := doc.Paths["/dogs/{id}/"]["delete"]
	assert.Assert(t, !ok)
	_, ok = doc.Paths["/dogs/{id}/"]["get"]
	assert.Assert(t, ok)
}

func TestConflictingDefinitions(t *testing.T) {
	t.Run("same name with another schema", func(t *testing.T) {
		c := jsonapi.New("http://anyapi.com", nil)
		jsonapi.Define[Dog](c)
		jsonapi.Define[Owner](c, jsonapi.WithTypeName("Dog"), jsonapi.WithWireType("pets"))

		_, err := openapi.New(c, openapi.SkipLint(true), openapi.PathParams("dog_id"))
		assert.ErrorContains(t, err, "different definition")
	})

	t.Run("names differing by case", func(t *testing.T) {
		c := jsonapi.New("http://anyapi.com", nil)
		jsonapi.Define[Dog](c)
		jsonapi.Define[Owner](c, jsonapi.WithTypeName("DOG"), jsonapi.WithWireType("pets"))

		_, err := openapi.New(c, openapi.SkipLint(true), openapi.PathParams("dog_id"))
		assert.ErrorContains(t, err, "conflicting definitions")
	})
}

func TestOperations(t *testing.T) {
	c := jsonapi.New("http://anyapi.com", nil)
	dogs := jsonapi.Define[Dog](c)
	jsonapi.Define[DogHouse](c)

	records, err := openapi.Operations(c, openapi.Tags(func(t *jsonapi.Type) []string {
		if t == dogs {
			return []string{"pets"}
		}
		return nil
	}, []string{"pets"}))
	assert.NilError(t, err)
	assert.Equal(t, len(records), 10)

	assert.Equal(t, len(records.Tagged("Dogs")), 5)
	assert.Equal(t, len(records.Tagged("pets", "Dogs")), 5)
	assert.Equal(t, len(records.Tagged("pets", "Dog Houses")), 0)

	r, ok := records.Find("GET", "/dog_houses/{id}/")
	assert.Assert(t, ok)
	assert.Equal(t, r.ID, "fetch_dog_houses")
	assert.Equal(t, r.Type.Name, "DogHouse")

	_, ok = records.Find("PUT", "/dogs/{id}/")
	assert.Assert(t, !ok)

	endpoints := records.Endpoints(func(s string) string { return s })
	assert.Equal(t, len(endpoints), 10)
	assert.Equal(t, endpoints[0], "DELETE /dog_houses/{id}/")
}
