package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/tailbits/jsonapi"
	"github.com/tailbits/jsonapi/model/sync"
)

// Toy Model
type Toy struct {
	ID    string
	Label string
	Price float64
}

func (*Toy) Schema() []byte {
	return []byte(`{
		"type": "object",
		"properties": {
			"label": {
				"type": "string"
			},
			"price": {
				"type": "number",
				"minimum": 0
			}
		},
		"required": ["label"]
	}`)
}

// Kennel Model
type Kennel struct {
	ID       string
	Size     int
	Favorite map[string]any `jsonapi:"attr,favorite,omitempty"`
}

// Schema refers to the Toy type; its attribute schema is filled in when the
// kennel schema is resolved.
func (*Kennel) Schema() []byte {
	return []byte(`{
		"type": "object",
		"properties": {
			"size": {
				"type": "integer"
			},
			"favorite": {
				"$ref": "#/definitions/Toy"
			}
		},
		"required": ["size"]
	}`)
}

// Stale Model, its schema has not caught up with a renamed field
type Stale struct {
	ID    string
	Title string
}

func (*Stale) Schema() []byte {
	return []byte(`{
		"type": "object",
		"properties": {
			"name": {
				"type": "string"
			}
		}
	}`)
}

func main() {
	c := jsonapi.New("http://localhost:9090", jsonapi.NewHTTPTransport())
	jsonapi.Define[Toy](c)
	kennels := jsonapi.Define[Kennel](c)
	stale := jsonapi.Define[Stale](c)

	schema, err := c.AttributeSchema(kennels)
	if err != nil {
		panic(fmt.Errorf("failed to resolve the kennel schema: %w", err))
	}
	fmt.Println(string(schema))

	if err := c.CheckSchema(kennels); err != nil {
		panic(fmt.Errorf("kennel schema out of sync: %w", err))
	}

	err = c.CheckSchema(stale)

	var missing *sync.MissingPropertyError
	if !errors.As(err, &missing) {
		fmt.Fprintln(os.Stderr, "expected the stale schema to miss a property, got", err)
		os.Exit(1)
	}
	fmt.Println("stale schema:", err)
}
