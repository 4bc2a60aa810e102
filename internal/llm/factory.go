package llm

import (
	"context"
	"fmt"

	"github.com/abhisek/examforge/internal/logger"
	"github.com/abhisek/examforge/internal/store"
)

// NewProvider builds the configured vendor client and wraps it; see Wrap.
// events may be nil.
func NewProvider(ctx context.Context, cfg Config, events store.EventRepo, log *logger.Logger) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var (
		base Provider
		err  error
	)
	switch cfg.Provider {
	case "mock":
		base = NewMockProvider()
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case "openai":
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case "openrouter":
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	}
	if err != nil {
		return nil, fmt.Errorf("LLM provider %s: %w", cfg.Provider, err)
	}
	return Wrap(base, cfg, events, log), nil
}

// Wrap layers the decorators around base. From the caller inwards:
// retry (when RetryTransient is set), per-attempt timeout, logging.
// Logging sits innermost so every attempt is recorded.
func Wrap(base Provider, cfg Config, events store.EventRepo, log *logger.Logger) Provider {
	p := WithTimeout(WithLogging(base, cfg.Provider, events, log), cfg.Timeout)
	if cfg.RetryTransient {
		p = WithRetry(p, cfg.Retry)
	}
	return p
}
