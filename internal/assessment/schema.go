package assessment

// SchemaName identifies the assessment schema for structured LLM output and
// for the compiled-schema cache.
const SchemaName = "assessment"

// SchemaDefinition returns the JSON Schema for an assessment payload. A new
// map is returned on every call so callers may embed it safely.
//
// The schema covers structure only. Membership of "answer" in "options" is
// checked separately by Decode.
func SchemaDefinition() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"questions": map[string]any{
				"type":     "array",
				"minItems": 1,
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"question": map[string]any{
							"type":        "string",
							"description": "The question text",
						},
						"options": map[string]any{
							"type":        "array",
							"minItems":    2,
							"uniqueItems": true,
							"items":       map[string]any{"type": "string"},
							"description": "The answer choices",
						},
						"answer": map[string]any{
							"type":        "string",
							"description": "The exact text of the correct option",
						},
					},
					"required": []any{"question", "options", "answer"},
				},
			},
		},
		"required": []any{"questions"},
	}
}
