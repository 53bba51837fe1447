package openapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/daveshanley/vacuum/model"
	"github.com/daveshanley/vacuum/motor"
	"github.com/daveshanley/vacuum/rulesets"
	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/swaggest/jsonschema-go"
	"github.com/swaggest/openapi-go/openapi31"
)

type definitionsMap map[string]jsonschema.Schema

// Generator collects records and the schema definitions they use into an
// OpenAPI 3.1 document.
type Generator struct {
	*openapi31.Reflector
	config  openapiConfig
	records Records
	allDefs definitionsMap
	allTags map[string]bool
}

func (g *Generator) ingest(records []Record) error {
	for _, record := range records {
		ctx, err := g.newOperationContext(record.Method, record.Path)
		if err != nil {
			return fmt.Errorf("failed to create operation context: %w", err)
		}

		if err := ctx.describe(record); err != nil {
			return fmt.Errorf("failed to add operation %s: %w", record.ID, err)
		}
	}

	return nil
}

// lint applies vacuum's recommended rule set and fails on violations of the
// schemas category.
func (g *Generator) lint() error {
	specBytes, err := g.marshalJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	defaultRS := rulesets.BuildDefaultRuleSets()
	recommendedRS := defaultRS.GenerateOpenAPIRecommendedRuleSet()

	lintingResults := motor.ApplyRulesToRuleSet(
		&motor.RuleSetExecution{
			RuleSet: recommendedRS,
			Spec:    specBytes,
		})

	resultSet := model.NewRuleResultSet(lintingResults.Results)
	resultSet.SortResultsByLineNumber()

	schemasResults := resultSet.GetRuleResultsForCategory("schemas")

	errors := make([]error, 0)
	for _, ruleResult := range schemasResults.RuleResults {
		for _, violation := range ruleResult.Results {
			errors = append(errors, fmt.Errorf(" - [%d:%d] %s", violation.StartNode.Line, violation.StartNode.Column, violation.Message))
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("validation failed: %v", errors)
	}

	return nil
}

func (g *Generator) marshalJSON() ([]byte, error) {
	return g.Reflector.Spec.MarshalJSON()
}

// collectDefinitions commits every definition gathered from the records to
// the components of the document.
func (g *Generator) collectDefinitions() error {
	seen := make(map[string]string) // normalized key -> original key
	for defName := range g.allDefs {
		normalized := strings.ToLower(defName)
		if orig, exists := seen[normalized]; exists {
			return fmt.Errorf("conflicting definitions: %q and %q", orig, defName)
		}
		seen[normalized] = defName
	}

	if g.Reflector.Spec.Components == nil {
		g.Reflector.Spec.Components = &openapi31.Components{}
	}

	for defName, def := range g.allDefs {
		def.Definitions = nil
		sm, err := def.ToSchemaOrBool().ToSimpleMap()
		if err != nil {
			return fmt.Errorf("definition %s: %w", defName, err)
		}
		g.Reflector.Spec.Components.WithSchemasItem(defName, sm)
	}

	return nil
}

// collectTags lists the tags at the top level of the document.
func (g *Generator) collectTags(tags []string) {
	g.Spec.Tags = make([]openapi31.Tag, len(tags))
	for i, tag := range tags {
		g.Spec.Tags[i] = openapi31.Tag{Name: tag}
	}
}

func (g *Generator) addModel(m Model) error {
	schema, err := m.JSONSchema()
	if err != nil {
		return fmt.Errorf("failed to get JSON schema: %w", err)
	}

	if err := g.addDefinition(m.Name(), schema); err != nil {
		return fmt.Errorf("failed to add definition: %w", err)
	}

	return nil
}

// addDefinition records a named schema and its nested definitions. A name
// seen before must come with an identical schema.
func (g *Generator) addDefinition(name string, schema jsonschema.Schema) error {
	if name == "" {
		return fmt.Errorf("definition name cannot be empty")
	}

	if existingDef, ok := g.allDefs[name]; ok {
		if diff, identical := compareSchemas(existingDef, schema); !identical {
			return fmt.Errorf("definition with name [%s] already exists but with a different definition:\n%s", name, diff)
		}
	}
	g.allDefs[name] = schema

	for nestedName, def := range schema.Definitions {
		if def.TypeObject != nil {
			if err := g.addDefinition(nestedName, *def.TypeObject); err != nil {
				return err
			}
		}
	}

	return nil
}

func (g *Generator) newOperationContext(method, path string) (*operation, error) {
	oc, err := g.Reflector.NewOperationContext(method, path)
	if err != nil {
		return nil, fmt.Errorf("failed to create operation context: %w", err)
	}

	return newOperation(oc, g), nil
}

/* -------------------------------------------------------------------------- */

func diffText(existingDef jsonschema.Schema, newDef jsonschema.Schema) string {
	dmp := diffmatchpatch.New()

	existing, _ := existingDef.MarshalJSON()
	updated, _ := newDef.MarshalJSON()

	diffs := dmp.DiffMain(string(pretty(existing)), string(pretty(updated)), false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	return dmp.DiffPrettyText(diffs)
}

func pretty(schema []byte) []byte {
	var prettyJSON bytes.Buffer
	if err := json.Indent(&prettyJSON, schema, "", "  "); err != nil {
		return schema
	}
	return prettyJSON.Bytes()
}

// compareSchemas ignores examples. The diff is empty when both are identical.
func compareSchemas(a jsonschema.Schema, b jsonschema.Schema) (string, bool) {
	a.Examples = nil
	b.Examples = nil

	aa, _ := a.MarshalJSON()
	bb, _ := b.MarshalJSON()

	if string(aa) == string(bb) {
		return "", true
	}
	return diffText(a, b), false
}
