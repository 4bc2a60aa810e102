// Package llm talks to the language models that write exam questions.
//
// Every vendor SDK is hidden behind Provider. Decorators add the per-attempt
// deadline, optional backoff retries and request logging; see Wrap.
package llm

import (
	"context"
	"encoding/json"
)

// Provider generates one completion per call.
type Provider interface {
	// Generate sends req and returns the model output. When req.Schema is
	// set the returned Content has already been validated against it.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID is the model requests are sent to.
	ModelID() string
}

// Request is a single prompt.
type Request struct {
	System   string
	Messages []Message

	// Schema, when set, asks for JSON output and turns on validation.
	Schema *Schema

	MaxTokens int

	// Temperature is passed through when positive; zero leaves the vendor
	// default in place.
	Temperature float64
}

type Message struct {
	Role    Role
	Content string
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema is a JSON Schema document plus the name vendors file it under.
// Name doubles as the key of the compiled-schema cache, so two different
// definitions must never share one.
type Schema struct {
	Name        string
	Description string
	Definition  map[string]any

	// Strict requests constrained decoding where the vendor offers it.
	// Strict definitions must close every object and require every field.
	Strict bool
}

// Normalized stop reasons.
const (
	StopEnd       = "end"
	StopMaxTokens = "max_tokens"
)

type Response struct {
	// Content is the model output. For schema-bound requests it is the JSON
	// document with any surrounding code fence removed.
	Content json.RawMessage
	Usage   Usage

	// Model is what the vendor reports having served, which can be more
	// specific than ModelID.
	Model      string
	StopReason string
}

type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
