package executor

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"

	"drivethru-dialogue/internal/models"
)

// ValidationIssue is one structured schema violation. Validation never
// reports a single opaque message; callers get the full list.
type ValidationIssue struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"offending_value,omitempty"`
}

func (v ValidationIssue) String() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

// descriptorSchema is the contract every descriptor must satisfy before it
// reaches an order-mutation collaborator. Unknown fields are rejected.
var descriptorSchema = mustCompileSchema(map[string]interface{}{
	"type":                 "object",
	"required":             []string{"intent", "confidence", "slots"},
	"additionalProperties": false,
	"properties": map[string]interface{}{
		"intent": map[string]interface{}{
			"type": "string",
			"enum": intentEnum(),
		},
		"confidence": map[string]interface{}{
			"type":    "number",
			"minimum": 0,
			"maximum": 1,
		},
		"slots": map[string]interface{}{
			"type": "object",
		},
		"notes": map[string]interface{}{
			"type": "string",
		},
		"user_input": map[string]interface{}{
			"type": "string",
		},
	},
})

func intentEnum() []string {
	intents := models.AllIntentTypes()
	values := make([]string, len(intents))
	for i, it := range intents {
		values[i] = string(it)
	}
	return values
}

func mustCompileSchema(schemaMap map[string]interface{}) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(schemaMap))
	if err != nil {
		panic(fmt.Sprintf("descriptor schema does not compile: %v", err))
	}
	return schema
}

// ValidateDescriptor checks one descriptor against the schema. A nil return
// means the descriptor may be executed.
func ValidateDescriptor(d models.CommandDescriptor) []ValidationIssue {
	return validateDocument(gojsonschema.NewGoLoader(d))
}

// ValidateRaw checks an untyped descriptor payload, e.g. one decoded from an
// external extraction response. Unexpected fields are reported per field.
func ValidateRaw(payload map[string]interface{}) []ValidationIssue {
	return validateDocument(gojsonschema.NewGoLoader(payload))
}

func validateDocument(loader gojsonschema.JSONLoader) []ValidationIssue {
	result, err := descriptorSchema.Validate(loader)
	if err != nil {
		return []ValidationIssue{{Field: "(document)", Message: err.Error()}}
	}
	if result.Valid() {
		return nil
	}

	issues := make([]ValidationIssue, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		issues = append(issues, ValidationIssue{
			Field:   desc.Field(),
			Message: desc.Description(),
			Value:   desc.Value(),
		})
	}
	return issues
}
