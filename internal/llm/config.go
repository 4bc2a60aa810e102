package llm

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config selects and configures the question-writing model.
type Config struct {
	// Provider is one of "openai", "anthropic", "gemini", "openrouter" or
	// "mock".
	Provider string

	Anthropic  AnthropicConfig
	OpenAI     OpenAIConfig
	Gemini     GeminiConfig
	OpenRouter OpenRouterConfig

	// Timeout bounds one attempt; an expired attempt is retried once.
	// Zero turns the deadline off.
	Timeout time.Duration

	// RetryTransient turns on backoff retries of rate limits, outages and
	// invalid output, following Retry.
	RetryTransient bool
	Retry          RetryConfig
}

type AnthropicConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string // any OpenAI-compatible endpoint
}

type GeminiConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

type OpenRouterConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	// Referer is sent as HTTP-Referer for app attribution.
	Referer string
}

type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

func DefaultConfig() Config {
	return Config{
		Provider:   "openai",
		Anthropic:  AnthropicConfig{Model: "claude-haiku"},
		OpenAI:     OpenAIConfig{Model: "gpt-4o-mini"},
		Gemini:     GeminiConfig{Model: "gemini-flash"},
		OpenRouter: OpenRouterConfig{Model: "openai/gpt-4o-mini"},
		Timeout:    90 * time.Second,
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2,
		},
	}
}

const envPrefix = "EXAMFORGE_"

// ConfigFromEnv overlays EXAMFORGE_* variables on DefaultConfig. Values that
// fail to parse are ignored.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	strs := map[string]*string{
		"LLM_PROVIDER":        &cfg.Provider,
		"ANTHROPIC_API_KEY":   &cfg.Anthropic.APIKey,
		"ANTHROPIC_MODEL":     &cfg.Anthropic.Model,
		"ANTHROPIC_BASE_URL":  &cfg.Anthropic.BaseURL,
		"OPENAI_API_KEY":      &cfg.OpenAI.APIKey,
		"OPENAI_MODEL":        &cfg.OpenAI.Model,
		"OPENAI_BASE_URL":     &cfg.OpenAI.BaseURL,
		"GEMINI_API_KEY":      &cfg.Gemini.APIKey,
		"GEMINI_MODEL":        &cfg.Gemini.Model,
		"GEMINI_BASE_URL":     &cfg.Gemini.BaseURL,
		"OPENROUTER_API_KEY":  &cfg.OpenRouter.APIKey,
		"OPENROUTER_MODEL":    &cfg.OpenRouter.Model,
		"OPENROUTER_BASE_URL": &cfg.OpenRouter.BaseURL,
		"OPENROUTER_REFERER":  &cfg.OpenRouter.Referer,
	}
	for key, dst := range strs {
		if v := os.Getenv(envPrefix + key); v != "" {
			*dst = v
		}
	}

	if d, err := time.ParseDuration(os.Getenv(envPrefix + "LLM_TIMEOUT")); err == nil {
		cfg.Timeout = d
	}
	if b, err := strconv.ParseBool(os.Getenv(envPrefix + "LLM_RETRY_TRANSIENT")); err == nil {
		cfg.RetryTransient = b
	}
	if n, err := strconv.Atoi(os.Getenv(envPrefix + "LLM_RETRY_ATTEMPTS")); err == nil && n > 0 {
		cfg.Retry.MaxAttempts = n
	}
	return cfg
}

// discoveryOrder lists the vendors' own key variables, first match wins.
var discoveryOrder = []struct {
	env      string
	provider string
	key      func(*Config) *string
}{
	{"OPENAI_API_KEY", "openai", func(c *Config) *string { return &c.OpenAI.APIKey }},
	{"GEMINI_API_KEY", "gemini", func(c *Config) *string { return &c.Gemini.APIKey }},
	{"ANTHROPIC_API_KEY", "anthropic", func(c *Config) *string { return &c.Anthropic.APIKey }},
	{"OPENROUTER_API_KEY", "openrouter", func(c *Config) *string { return &c.OpenRouter.APIKey }},
}

// DiscoverConfig falls back to the vendors' unprefixed key variables when
// no provider was configured explicitly.
func DiscoverConfig() (Config, bool) {
	cfg := ConfigFromEnv()
	for _, d := range discoveryOrder {
		if k := os.Getenv(d.env); k != "" {
			cfg.Provider = d.provider
			*d.key(&cfg) = k
			return cfg, true
		}
	}
	return Config{}, false
}

// Validate checks the selected provider has an API key.
func (c Config) Validate() error {
	var key string
	switch c.Provider {
	case "mock":
		return nil
	case "anthropic":
		key = c.Anthropic.APIKey
	case "openai":
		key = c.OpenAI.APIKey
	case "gemini":
		key = c.Gemini.APIKey
	case "openrouter":
		key = c.OpenRouter.APIKey
	default:
		return fmt.Errorf("unknown LLM provider %q", c.Provider)
	}
	if key == "" {
		return fmt.Errorf("the %s provider needs an API key: set %s%s_API_KEY", c.Provider, envPrefix, strings.ToUpper(c.Provider))
	}
	return nil
}
