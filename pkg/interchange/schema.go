package interchange

import (
	"context"
	_ "embed"
	"fmt"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed schema/document.yaml
var documentSchema []byte

const documentSchemaName = "PromptDocument"

var (
	schemaOnce sync.Once
	schemaRef  *openapi3.SchemaRef
	schemaErr  error
)

// DocumentSchema returns the embedded OpenAPI schema of a bare prompt
// document.
func DocumentSchema() (*openapi3.Schema, error) {
	schemaOnce.Do(func() {
		loader := &openapi3.Loader{Context: context.Background()}
		spec, err := loader.LoadFromData(documentSchema)
		if err != nil {
			schemaErr = fmt.Errorf("interchange: load document schema: %w", err)
			return
		}
		if err := spec.Validate(loader.Context, openapi3.DisableExamplesValidation()); err != nil {
			schemaErr = fmt.Errorf("interchange: validate document schema: %w", err)
			return
		}
		ref, ok := spec.Components.Schemas[documentSchemaName]
		if !ok || ref == nil || ref.Value == nil {
			schemaErr = fmt.Errorf("interchange: schema %s not declared", documentSchemaName)
			return
		}
		schemaRef = ref
	})
	if schemaErr != nil {
		return nil, schemaErr
	}
	return schemaRef.Value, nil
}

// ValidateDocument checks a decoded bare document. Only task and a style
// identifier are required; unknown members are allowed.
func ValidateDocument(raw map[string]any) error {
	task, hasTask := raw["task"].(string)
	styleValue, hasStyle := raw["style"].(map[string]any)
	if !hasTask || task == "" || !hasStyle {
		return invalid(ErrMissingFields)
	}
	if textOf(styleValue["main_style"]) == "" && textOf(styleValue["key"]) == "" {
		return invalid(ErrMissingStyle)
	}

	schema, err := DocumentSchema()
	if err != nil {
		return err
	}
	if err := schema.VisitJSON(raw, openapi3.MultiErrors()); err != nil {
		return &ValidationError{Err: ErrUnsupported, Detail: err.Error()}
	}
	return nil
}
