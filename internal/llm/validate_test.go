package llm

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strictQuestionSchema() *Schema {
	return &Schema{
		Name: "test-question",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"question": map[string]any{"type": "string"},
				"choices": map[string]any{
					"type":     "array",
					"items":    map[string]any{"type": "string"},
					"minItems": 4,
					"maxItems": 4,
				},
				"correctIndex": map[string]any{"type": "integer", "minimum": 0, "maximum": 3},
			},
			"required": []any{"question", "choices"},
		},
	}
}

func TestValidateResponse_Accepts(t *testing.T) {
	for name, raw := range map[string]string{
		"full":             `{"question":"Quelle est la capitale du Maroc ?","choices":["Rabat","Fès","Casablanca","Tanger"],"correctIndex":0}`,
		"without optional": `{"question":"2 + 2 ?","choices":["3","4","5","22"]}`,
	} {
		t.Run(name, func(t *testing.T) {
			out, err := validateResponse(strictQuestionSchema(), json.RawMessage(raw))
			require.NoError(t, err)
			assert.JSONEq(t, raw, string(out))
		})
	}
}

func TestValidateResponse_Rejects(t *testing.T) {
	for name, raw := range map[string]string{
		"missing choices":    `{"question":"Sans choix ?"}`,
		"index as text":      `{"question":"Q","choices":["a","b","c","d"],"correctIndex":"zero"}`,
		"two choices":        `{"question":"Q","choices":["a","b"]}`,
		"index out of range": `{"question":"Q","choices":["a","b","c","d"],"correctIndex":4}`,
		"malformed":          `{not json}`,
		"empty":              ``,
		"prose":              `Voici les questions demandées.`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := validateResponse(strictQuestionSchema(), json.RawMessage(raw))
			var invalid *ErrInvalidResponse
			require.ErrorAs(t, err, &invalid)
			assert.Equal(t, raw, string(invalid.Content))
		})
	}
}

func TestValidateResponse_LooseEnvelope(t *testing.T) {
	s := envelopeSchema()

	_, err := validateResponse(s, json.RawMessage(`{"questions":[{"question":"ok"},{"choices":[]},{}]}`))
	assert.NoError(t, err, "items only need to be objects")

	_, err = validateResponse(s, json.RawMessage(`{"questions":["not an object"]}`))
	assert.Error(t, err)
	_, err = validateResponse(s, json.RawMessage(`{"items":[]}`))
	assert.Error(t, err)
}

func TestValidateResponse_StripsFence(t *testing.T) {
	out, err := validateResponse(envelopeSchema(), json.RawMessage("```json\n{\"questions\":[]}\n```\n"))
	require.NoError(t, err)
	assert.Equal(t, `{"questions":[]}`, string(out))
}

func TestTrimCodeFence(t *testing.T) {
	tests := []struct{ in, want string }{
		{`{"a":1}`, `{"a":1}`},
		{"  {\"a\":1}\n", `{"a":1}`},
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n{\"a\":1}\n```", `{"a":1}`},
		{"```json {\"a\":1}```", `{"a":1}`},
		{"```json\n{\"a\":1}", `{"a":1}`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, string(TrimCodeFence([]byte(tt.in))), "input %q", tt.in)
	}
}
