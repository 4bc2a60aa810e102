package llm

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"
)

// RetryProvider retries transient failures with capped exponential backoff.
// Installed only when transient retries are switched on; expired attempts
// belong to TimeoutProvider.
type RetryProvider struct {
	inner Provider
	cfg   RetryConfig
}

func WithRetry(p Provider, cfg RetryConfig) Provider {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &RetryProvider{inner: p, cfg: cfg}
}

func (r *RetryProvider) ModelID() string { return r.inner.ModelID() }

func (r *RetryProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	var (
		err           error
		retriedOutput bool
	)
	for attempt := range r.cfg.MaxAttempts {
		if attempt > 0 {
			timer := time.NewTimer(r.delay(attempt-1, err))
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, ctx.Err()
			case <-timer.C:
			}
		}

		var resp *Response
		resp, err = r.inner.Generate(ctx, req)
		if err == nil {
			return resp, nil
		}

		var invalid *ErrInvalidResponse
		switch {
		case !transient(err):
			return nil, err
		case errors.As(err, &invalid):
			// Bad output is worth exactly one more try.
			if retriedOutput {
				return nil, err
			}
			retriedOutput = true
		}
	}
	return nil, err
}

// transient reports whether another attempt could succeed.
func transient(err error) bool {
	var (
		maxTok  *ErrMaxTokensExceeded
		timeout *ErrTimeout
	)
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return false
	case errors.As(err, &maxTok), errors.As(err, &timeout):
		return false
	}
	return true
}

// delay is the wait before retry n (0-based): the vendor's Retry-After when
// given, otherwise InitialWait*Multiplier^n capped at MaxWait, ±20% jitter.
func (r *RetryProvider) delay(n int, err error) time.Duration {
	var rl *ErrRateLimit
	if errors.As(err, &rl) && rl.RetryAfter > 0 {
		return rl.RetryAfter
	}

	d := float64(r.cfg.InitialWait)
	for range n {
		d *= r.cfg.Multiplier
		if d >= float64(r.cfg.MaxWait) {
			d = float64(r.cfg.MaxWait)
			break
		}
	}
	d *= 0.8 + 0.4*rand.Float64()
	return time.Duration(d)
}
