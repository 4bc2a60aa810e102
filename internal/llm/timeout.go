package llm

import (
	"context"
	"errors"
	"time"
)

// TimeoutProvider is a decorator that bounds each attempt with a deadline
// and retries an expired attempt once.
type TimeoutProvider struct {
	inner       Provider
	timeout     time.Duration
	maxAttempts int
}

// WithTimeout wraps a Provider with a per-attempt deadline. An attempt that
// exceeds it is retried once; a second expiry yields *ErrTimeout.
func WithTimeout(p Provider, timeout time.Duration) Provider {
	if timeout <= 0 {
		return p
	}
	return &TimeoutProvider{inner: p, timeout: timeout, maxAttempts: 2}
}

func (t *TimeoutProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	for attempt := 1; ; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, t.timeout)
		resp, err := t.inner.Generate(attemptCtx, req)
		expired := attemptCtx.Err() == context.DeadlineExceeded
		cancel()

		if err == nil {
			return resp, nil
		}
		// The caller's own deadline or cancellation is final.
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if !expired && !errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		if attempt >= t.maxAttempts {
			return nil, &ErrTimeout{Attempts: attempt, Timeout: t.timeout}
		}
	}
}

func (t *TimeoutProvider) ModelID() string {
	return t.inner.ModelID()
}
