package openapi

import (
	"fmt"
	"sort"

	"github.com/swaggest/jsonschema-go"
	"github.com/swaggest/openapi-go/openapi31"
	"github.com/tailbits/jsonapi"
)

var serverDescription = "JSON:API base URL"

// ToSchema renders the collected records as JSON, linting the result unless
// linting was skipped.
func (g *Generator) ToSchema() ([]byte, error) {
	if err := g.ingest(g.records); err != nil {
		return nil, fmt.Errorf("failed to ingest records: %w", err)
	}

	collectedTags := []string{}
	for tag := range g.allTags {
		collectedTags = append(collectedTags, tag)
	}
	for _, inferredTag := range g.config.allTags {
		if _, ok := g.allTags[inferredTag]; !ok {
			collectedTags = append(collectedTags, inferredTag)
		}
	}

	sort.Strings(collectedTags)
	g.collectTags(collectedTags)
	if err := g.collectDefinitions(); err != nil {
		return nil, fmt.Errorf("failed to collect definitions: %w", err)
	}

	if g.config.skipLint {
		return g.marshalJSON()
	}

	if err := g.lint(); err != nil {
		return nil, fmt.Errorf("failed to validate the generated spec: %w", err)
	}

	return g.marshalJSON()
}

func newGenerator(c *jsonapi.Client, config openapiConfig) *Generator {
	reflector := openapi31.NewReflector()
	reflector.Spec = &openapi31.Spec{Openapi: "3.1.0"}
	reflector.Spec.Info.
		WithTitle(config.title).
		WithVersion(config.version)
	reflector.Spec.WithServers(openapi31.Server{
		URL:         c.BaseURL(),
		Description: &serverDescription,
	})

	reflector.Reflector.DefaultOptions = append(reflector.Reflector.DefaultOptions, jsonschema.DefinitionsPrefix("#/components/schemas/"))

	return &Generator{
		Reflector: reflector,
		config:    config,
		allDefs:   make(definitionsMap),
		allTags:   make(map[string]bool),
	}
}
