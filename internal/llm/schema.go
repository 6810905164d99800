package llm

import (
	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go/v3"

	"github.com/mfenderov/sitegen/pkg/models"
)

// Schema describes a structured output the provider should return.
type Schema struct {
	Name        string
	Description string
	Value       any
}

func generateSchema[T any]() any {
	r := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	return r.Reflect(v)
}

// PlanSchema constrains the planning call to a models.Plan object.
var PlanSchema = &Schema{
	Name:        "site_plan",
	Description: "Outline of a generated web page",
	Value:       generateSchema[models.Plan](),
}

// OpenAIResponseFormat returns the structured outputs response format.
func (s *Schema) OpenAIResponseFormat() openai.ChatCompletionNewParamsResponseFormatUnion {
	p := openai.ResponseFormatJSONSchemaJSONSchemaParam{
		Name:        s.Name,
		Description: openai.String(s.Description),
		Schema:      s.Value,
		Strict:      openai.Bool(true),
	}
	return openai.ChatCompletionNewParamsResponseFormatUnion{
		OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{JSONSchema: p},
	}
}
