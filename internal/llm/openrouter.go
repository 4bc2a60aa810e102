package llm

import (
	"errors"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

const (
	defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"
	openRouterTitle          = "ExamForge"
)

// NewOpenRouterProvider returns a Client for OpenRouter's OpenAI-compatible
// API. Model IDs are "vendor/model" and are never aliased.
func NewOpenRouterProvider(cfg OpenRouterConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openrouter: API key is required")
	}
	conf := openai.DefaultConfig(cfg.APIKey)
	conf.BaseURL = defaultOpenRouterBaseURL
	if cfg.BaseURL != "" {
		conf.BaseURL = cfg.BaseURL
	}
	conf.HTTPClient = &http.Client{Transport: &attribution{
		base:    http.DefaultTransport,
		referer: cfg.Referer,
	}}
	return newOpenAICompatible("openrouter", cfg.Model, conf), nil
}

// attribution sets the headers OpenRouter uses to credit calling apps.
type attribution struct {
	base    http.RoundTripper
	referer string
}

func (a *attribution) RoundTrip(r *http.Request) (*http.Response, error) {
	r = r.Clone(r.Context())
	r.Header.Set("X-Title", openRouterTitle)
	if a.referer != "" {
		r.Header.Set("HTTP-Referer", a.referer)
	}
	return a.base.RoundTrip(r)
}
