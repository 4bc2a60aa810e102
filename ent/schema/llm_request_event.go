package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// LLMRequestEvent is one attempt at generating a question batch, kept for
// cost reports and for replaying prompts that produced bad exams.
type LLMRequestEvent struct {
	ent.Schema
}

func (LLMRequestEvent) Mixin() []ent.Mixin {
	return []ent.Mixin{TimestampMixin{}}
}

func (LLMRequestEvent) Fields() []ent.Field {
	return []ent.Field{
		// anthropic, openai, gemini, openrouter or mock
		field.String("provider"),
		// as reported by the vendor, e.g. gpt-4o-mini-2024-07-18
		field.String("model"),
		field.String("purpose"),

		field.Int("input_tokens").Default(0).NonNegative(),
		field.Int("output_tokens").Default(0).NonNegative(),
		field.Int64("latency_ms").Default(0),

		field.Bool("success"),
		field.String("error_message").Default(""),
		// Prompt transcript and model output, rejected output included.
		field.Text("request_body").Default(""),
		field.Text("response_body").Default(""),
	}
}

func (LLMRequestEvent) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("purpose", "timestamp"),
		index.Fields("model"),
	}
}
