package llm

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// BuildFactsJSONSchema returns a JSON-Schema (draft 2020-12 subset) as a
// generic map. We use it locally to validate the model's structured output
// before trusting it.
func BuildFactsJSONSchema() map[string]any {
	pageGuess := map[string]any{"type": []string{"integer", "null"}}

	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"amount_due_cents":  map[string]any{"type": []string{"integer", "null"}},
			"due_date_iso":      map[string]any{"type": []string{"string", "null"}, "pattern": `^\d{4}-\d{2}-\d{2}$`},
			"counterparty_name": map[string]any{"type": []string{"string", "null"}},
			"late_fee_rule": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"is_present":   map[string]any{"type": "boolean"},
					"source_quote": map[string]any{"type": "string"},
					"page_guess":   pageGuess,
				},
				"required": []string{"is_present"},
			},
			"citations": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"field":        map[string]any{"type": "string"},
						"source_quote": map[string]any{"type": "string"},
						"page_guess":   pageGuess,
					},
					"required": []string{"field"},
				},
			},
		},
		"required": []string{"amount_due_cents", "due_date_iso", "counterparty_name", "late_fee_rule"},
	}
}

// ValidateJSONAgainstSchema validates "data" against "schemaMap".
func ValidateJSONAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}
