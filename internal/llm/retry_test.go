package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetry() RetryConfig {
	return RetryConfig{MaxAttempts: 3, InitialWait: time.Millisecond, MaxWait: 5 * time.Millisecond, Multiplier: 2}
}

var okBatch = MockResponse{Content: json.RawMessage(`{"questions":[]}`)}

func down() MockResponse {
	return MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("connection reset")}}
}

func TestRetry(t *testing.T) {
	tests := []struct {
		name      string
		script    []MockResponse
		wantCalls int
		wantErr   any
	}{
		{"first attempt succeeds", []MockResponse{okBatch}, 1, nil},
		{"outage then success", []MockResponse{down(), okBatch}, 2, nil},
		{"outage every time", []MockResponse{down(), down(), down(), okBatch}, 3, &ErrProviderUnavailable{}},
		{
			"rate limit honours retry-after",
			[]MockResponse{{Err: &ErrRateLimit{RetryAfter: time.Millisecond, Err: errors.New("429")}}, okBatch},
			2, nil,
		},
		{
			"invalid output retried once",
			[]MockResponse{
				{Err: &ErrInvalidResponse{Err: errors.New("not json")}},
				{Err: &ErrInvalidResponse{Err: errors.New("not json")}},
				okBatch,
			},
			2, &ErrInvalidResponse{},
		},
		{
			"invalid output then outage still retries the outage",
			[]MockResponse{{Err: &ErrInvalidResponse{Err: errors.New("not json")}}, down(), okBatch},
			3, nil,
		},
		{"truncation is final", []MockResponse{{Err: &ErrMaxTokensExceeded{}}, okBatch}, 1, &ErrMaxTokensExceeded{}},
		{"timeout is final", []MockResponse{{Err: &ErrTimeout{Attempts: 2, Timeout: time.Second}}, okBatch}, 1, &ErrTimeout{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := NewMockProvider(tt.script...)
			resp, err := WithRetry(mock, fastRetry()).Generate(context.Background(), Request{})

			assert.Equal(t, tt.wantCalls, mock.CallCount())
			switch want := tt.wantErr.(type) {
			case nil:
				require.NoError(t, err)
				assert.JSONEq(t, `{"questions":[]}`, string(resp.Content))
			case *ErrProviderUnavailable:
				assert.ErrorAs(t, err, &want)
			case *ErrInvalidResponse:
				assert.ErrorAs(t, err, &want)
			case *ErrMaxTokensExceeded:
				assert.ErrorAs(t, err, &want)
			case *ErrTimeout:
				assert.ErrorAs(t, err, &want)
			}
		})
	}
}

func TestRetry_StopsWhenCallerGivesUp(t *testing.T) {
	mock := NewMockProvider(down(), okBatch)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := WithRetry(mock, fastRetry()).Generate(ctx, Request{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, mock.CallCount())
}

func TestRetry_DelayIsCapped(t *testing.T) {
	r := &RetryProvider{cfg: RetryConfig{InitialWait: 100 * time.Millisecond, MaxWait: 300 * time.Millisecond, Multiplier: 2}}
	for n := range 6 {
		d := r.delay(n, errors.New("x"))
		assert.LessOrEqual(t, d, 360*time.Millisecond, "retry %d", n)
		assert.GreaterOrEqual(t, d, 80*time.Millisecond, "retry %d", n)
	}
	assert.Equal(t, 2*time.Second, r.delay(0, &ErrRateLimit{RetryAfter: 2 * time.Second}))
}

func TestRetry_ZeroAttemptsStillCallsOnce(t *testing.T) {
	mock := NewMockProvider(okBatch)
	_, err := WithRetry(mock, RetryConfig{}).Generate(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, 1, mock.CallCount())
	assert.Equal(t, "mock", WithRetry(mock, RetryConfig{}).ModelID())
}
