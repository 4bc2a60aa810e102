package qcm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/abhisek/examforge/internal/llm"
)

// PurposeGenerate tags LLM calls made by the generator.
const PurposeGenerate = "qcm-gen"

// LLMGenerator implements Generator using the LLM provider.
type LLMGenerator struct {
	provider llm.Provider
	config   Config
}

// New creates a new LLMGenerator with the given provider and config.
func New(provider llm.Provider, cfg Config) *LLMGenerator {
	return &LLMGenerator{provider: provider, config: cfg}
}

// examOutput is the raw LLM response before validation.
type examOutput struct {
	Questions []RawItem `json:"questions"`
}

// Generate produces an exam set for the given lesson text.
func (g *LLMGenerator) Generate(ctx context.Context, input GenerateInput) (ExamSet, error) {
	if err := input.Validate(g.config.MinTextChars); err != nil {
		return ExamSet{}, err
	}
	ctx = llm.WithPurpose(ctx, PurposeGenerate)

	req := llm.Request{
		System: systemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildUserMessage(input, g.config)},
		},
		MaxTokens:   g.config.MaxTokens,
		Temperature: g.config.Temperature,
	}
	if g.config.UseSchema {
		req.Schema = ExamSchema
	}

	resp, err := g.provider.Generate(ctx, req)
	if err != nil {
		return ExamSet{}, fmt.Errorf("LLM generation failed: %w", err)
	}

	raws, err := parseExamOutput(resp.Content)
	if err != nil {
		return ExamSet{}, &llm.ErrInvalidResponse{Content: resp.Content, Err: err}
	}

	return Assemble(raws, g.config.Target, NewSeededShuffler(g.config.Seed))
}

// parseExamOutput decodes the questions list. Content may be a JSON object,
// a JSON string holding one, and either may be wrapped in a code fence.
// A missing or non-array questions field yields no items.
func parseExamOutput(content json.RawMessage) ([]RawItem, error) {
	body := bytes.TrimSpace(content)
	if len(body) > 0 && body[0] == '"' {
		var text string
		if err := json.Unmarshal(body, &text); err != nil {
			return nil, fmt.Errorf("decode text response: %w", err)
		}
		body = []byte(text)
	}
	body = llm.TrimCodeFence(body)

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("parse questions payload: %w", err)
	}

	var out examOutput
	if raw, ok := envelope["questions"]; ok {
		if err := json.Unmarshal(raw, &out.Questions); err != nil {
			return nil, nil
		}
	}
	return out.Questions, nil
}
