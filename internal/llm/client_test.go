package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const batchJSON = `{"questions":[{"question":"Quel organite produit l'ATP ?","choices":["Mitochondrie","Noyau","Ribosome","Lysosome"],"correctIndex":0}]}`

func envelopeSchema() *Schema {
	return &Schema{
		Name:        "test-envelope",
		Description: "questions drawn from a lesson",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"questions": map[string]any{"type": "array", "items": map[string]any{"type": "object"}},
			},
			"required": []any{"questions"},
		},
	}
}

func lessonRequest(schema *Schema) Request {
	return Request{
		System:    "أنت أستاذ جامعي صارم في إعداد الامتحانات.",
		Messages:  []Message{{Role: RoleUser, Content: "Leçon: la respiration cellulaire."}},
		Schema:    schema,
		MaxTokens: 512,
	}
}

func serve(t *testing.T, status int, header http.Header, body any) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		for k, v := range header {
			w.Header()[k] = v
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}

func anthropicMessage(text, stop string) map[string]any {
	return map[string]any{
		"id":          "msg_1",
		"type":        "message",
		"role":        "assistant",
		"model":       "claude-haiku-4-5-20251001",
		"content":     []map[string]any{{"type": "text", "text": text}},
		"stop_reason": stop,
		"usage":       map[string]any{"input_tokens": 50, "output_tokens": 30},
	}
}

func newAnthropic(t *testing.T, url string) *Client {
	t.Helper()
	c, err := NewAnthropicProvider(AnthropicConfig{APIKey: "test", Model: "claude-haiku", BaseURL: url})
	require.NoError(t, err)
	return c
}

func TestAnthropic_Generate(t *testing.T) {
	url := serve(t, http.StatusOK, nil, anthropicMessage(batchJSON, "end_turn"))
	c := newAnthropic(t, url)

	resp, err := c.Generate(context.Background(), lessonRequest(nil))
	require.NoError(t, err)
	assert.JSONEq(t, batchJSON, string(resp.Content))
	assert.Equal(t, StopEnd, resp.StopReason)
	assert.Equal(t, Usage{InputTokens: 50, OutputTokens: 30, TotalTokens: 80}, resp.Usage)
	assert.Equal(t, "claude-haiku-4-5-20251001", resp.Model)
	assert.Equal(t, "anthropic", c.Vendor())
}

func TestAnthropic_FencedOutputIsUnwrapped(t *testing.T) {
	url := serve(t, http.StatusOK, nil, anthropicMessage("```json\n"+batchJSON+"\n```", "end_turn"))

	resp, err := newAnthropic(t, url).Generate(context.Background(), lessonRequest(envelopeSchema()))
	require.NoError(t, err)
	assert.JSONEq(t, batchJSON, string(resp.Content))
}

func TestAnthropic_TruncatedBatch(t *testing.T) {
	url := serve(t, http.StatusOK, nil, anthropicMessage(`{"questions":[{"question":"Quel`, "max_tokens"))

	_, err := newAnthropic(t, url).Generate(context.Background(), lessonRequest(envelopeSchema()))
	var truncated *ErrMaxTokensExceeded
	require.ErrorAs(t, err, &truncated)
	assert.Contains(t, string(truncated.Content), "Quel")
}

func TestAnthropic_RateLimitCarriesRetryAfter(t *testing.T) {
	url := serve(t, http.StatusTooManyRequests, http.Header{"Retry-After": {"7"}}, map[string]any{
		"type":  "error",
		"error": map[string]any{"type": "rate_limit_error", "message": "slow down"},
	})

	_, err := newAnthropic(t, url).Generate(context.Background(), lessonRequest(nil))
	var rl *ErrRateLimit
	require.ErrorAs(t, err, &rl)
	assert.Equal(t, "7s", rl.RetryAfter.String())
}

func TestAnthropic_ServerError(t *testing.T) {
	url := serve(t, http.StatusInternalServerError, nil, map[string]any{
		"type":  "error",
		"error": map[string]any{"type": "api_error", "message": "boom"},
	})

	_, err := newAnthropic(t, url).Generate(context.Background(), lessonRequest(nil))
	var down *ErrProviderUnavailable
	require.ErrorAs(t, err, &down)
	assert.Equal(t, http.StatusInternalServerError, down.Status)
}

func TestAnthropic_Aliases(t *testing.T) {
	for alias, want := range map[string]string{
		"claude-haiku":              "claude-haiku-4-5-20251001",
		"claude-sonnet":             "claude-sonnet-4-5-20250929",
		"claude-opus-4-1-20250805":  "claude-opus-4-1-20250805",
		"claude-3-5-haiku-20241022": "claude-3-5-haiku-20241022",
	} {
		c, err := NewAnthropicProvider(AnthropicConfig{APIKey: "k", Model: alias})
		require.NoError(t, err)
		assert.Equal(t, want, c.ModelID(), alias)
	}

	_, err := NewAnthropicProvider(AnthropicConfig{Model: "claude-haiku"})
	assert.Error(t, err)
}

func openaiCompletion(content, finish string) map[string]any {
	return map[string]any{
		"id":    "chatcmpl-1",
		"model": "gpt-4o-mini-2024-07-18",
		"choices": []map[string]any{{
			"index":         0,
			"message":       map[string]any{"role": "assistant", "content": content},
			"finish_reason": finish,
		}},
		"usage": map[string]any{"prompt_tokens": 40, "completion_tokens": 25, "total_tokens": 65},
	}
}

func newOpenAI(t *testing.T, url string) *Client {
	t.Helper()
	c, err := NewOpenAIProvider(OpenAIConfig{APIKey: "test", Model: "gpt-4o-mini", BaseURL: url + "/v1"})
	require.NoError(t, err)
	return c
}

func TestOpenAI_Generate(t *testing.T) {
	url := serve(t, http.StatusOK, nil, openaiCompletion(batchJSON, "stop"))

	resp, err := newOpenAI(t, url).Generate(context.Background(), lessonRequest(envelopeSchema()))
	require.NoError(t, err)
	assert.JSONEq(t, batchJSON, string(resp.Content))
	assert.Equal(t, Usage{InputTokens: 40, OutputTokens: 25, TotalTokens: 65}, resp.Usage)
	assert.Equal(t, "gpt-4o-mini-2024-07-18", resp.Model)
}

func TestOpenAI_SendsSchemaAndSystemPrompt(t *testing.T) {
	var got struct {
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
		ResponseFormat struct {
			Type       string `json:"type"`
			JSONSchema struct {
				Name        string `json:"name"`
				Description string `json:"description"`
				Strict      bool   `json:"strict"`
			} `json:"json_schema"`
		} `json:"response_format"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(openaiCompletion(batchJSON, "stop"))
	}))
	t.Cleanup(srv.Close)

	_, err := newOpenAI(t, srv.URL).Generate(context.Background(), lessonRequest(envelopeSchema()))
	require.NoError(t, err)

	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "user", got.Messages[1].Role)
	assert.Equal(t, "json_schema", got.ResponseFormat.Type)
	assert.Equal(t, "test-envelope", got.ResponseFormat.JSONSchema.Name)
	assert.Equal(t, "questions drawn from a lesson", got.ResponseFormat.JSONSchema.Description)
	assert.False(t, got.ResponseFormat.JSONSchema.Strict)
}

func TestOpenAI_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   any
		check  func(t *testing.T, err error)
	}{
		{
			name:   "rate limit",
			status: http.StatusTooManyRequests,
			body:   map[string]any{"error": map[string]any{"message": "slow down", "type": "tokens", "code": "rate_limit_exceeded"}},
			check: func(t *testing.T, err error) {
				var rl *ErrRateLimit
				assert.ErrorAs(t, err, &rl)
			},
		},
		{
			name:   "server error",
			status: http.StatusBadGateway,
			body:   map[string]any{"error": map[string]any{"message": "bad gateway", "type": "server_error"}},
			check: func(t *testing.T, err error) {
				var down *ErrProviderUnavailable
				require.ErrorAs(t, err, &down)
				assert.Equal(t, http.StatusBadGateway, down.Status)
			},
		},
		{
			name:   "schema mismatch",
			status: http.StatusOK,
			body:   openaiCompletion(`{"items":[]}`, "stop"),
			check: func(t *testing.T, err error) {
				var invalid *ErrInvalidResponse
				require.ErrorAs(t, err, &invalid)
				assert.Equal(t, `{"items":[]}`, string(invalid.Content))
			},
		},
		{
			name:   "not json",
			status: http.StatusOK,
			body:   openaiCompletion("Voici vos questions :", "stop"),
			check: func(t *testing.T, err error) {
				var invalid *ErrInvalidResponse
				assert.ErrorAs(t, err, &invalid)
			},
		},
		{
			name:   "truncated",
			status: http.StatusOK,
			body:   openaiCompletion(`{"questions":[`, "length"),
			check: func(t *testing.T, err error) {
				var truncated *ErrMaxTokensExceeded
				assert.ErrorAs(t, err, &truncated)
			},
		},
		{
			name:   "no choices",
			status: http.StatusOK,
			body:   map[string]any{"id": "x", "model": "gpt-4o-mini", "choices": []any{}},
			check: func(t *testing.T, err error) {
				var invalid *ErrInvalidResponse
				assert.ErrorAs(t, err, &invalid)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			url := serve(t, tt.status, nil, tt.body)
			_, err := newOpenAI(t, url).Generate(context.Background(), lessonRequest(envelopeSchema()))
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestOpenAI_CanceledContextIsNotAnOutage(t *testing.T) {
	url := serve(t, http.StatusOK, nil, openaiCompletion(batchJSON, "stop"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newOpenAI(t, url).Generate(ctx, lessonRequest(nil))
	assert.True(t, errors.Is(err, context.Canceled), "got %v", err)
	var down *ErrProviderUnavailable
	assert.False(t, errors.As(err, &down))
}

func TestOpenRouter_AttributionHeaders(t *testing.T) {
	var title, referer, model string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		title = r.Header.Get("X-Title")
		referer = r.Header.Get("HTTP-Referer")
		var body struct {
			Model string `json:"model"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		model = body.Model
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(openaiCompletion(batchJSON, "stop"))
	}))
	t.Cleanup(srv.Close)

	c, err := NewOpenRouterProvider(OpenRouterConfig{
		APIKey:  "sk-or-test",
		Model:   "google/gemini-2.5-flash",
		BaseURL: srv.URL + "/api/v1",
		Referer: "https://examforge.example",
	})
	require.NoError(t, err)
	assert.Equal(t, "openrouter", c.Vendor())

	_, err = c.Generate(context.Background(), lessonRequest(nil))
	require.NoError(t, err)
	assert.Equal(t, "ExamForge", title)
	assert.Equal(t, "https://examforge.example", referer)
	assert.Equal(t, "google/gemini-2.5-flash", model)
}

func TestOpenRouter_RequiresKey(t *testing.T) {
	_, err := NewOpenRouterProvider(OpenRouterConfig{Model: "openai/gpt-4o-mini"})
	assert.Error(t, err)
}
