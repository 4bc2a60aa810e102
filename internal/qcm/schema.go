package qcm

import "github.com/abhisek/examforge/internal/llm"

// ExamSchema is the response envelope requested from the model. Items are
// only required to be objects; Normalize decides what survives, so one bad
// question never sinks the batch.
var ExamSchema = &llm.Schema{
	Name:        "qcm-exam",
	Description: "A batch of multiple-choice exam questions drawn from a lesson",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"questions": map[string]any{
				"type":        "array",
				"description": "Questions with question, choices (4 strings), correctIndex (index, index array or null) and explanation",
				"items": map[string]any{
					"type": "object",
				},
			},
		},
		"required": []any{"questions"},
	},
}
