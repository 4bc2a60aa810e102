package pdftext

import (
	"context"
	"errors"
	"io"
	"time"
)

// TimeoutExtractor bounds each attempt with a deadline and retries an
// expired attempt once.
type TimeoutExtractor struct {
	inner       Extractor
	timeout     time.Duration
	maxAttempts int
}

// WithTimeout wraps e with a per-attempt deadline. A second expiry yields
// *ErrTimeout.
func WithTimeout(e Extractor, timeout time.Duration) Extractor {
	if timeout <= 0 {
		return e
	}
	return &TimeoutExtractor{inner: e, timeout: timeout, maxAttempts: 2}
}

func (t *TimeoutExtractor) Name() string { return t.inner.Name() }

func (t *TimeoutExtractor) Extract(ctx context.Context, data []byte) (*Result, error) {
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		attemptCtx, cancel := context.WithTimeout(ctx, t.timeout)
		res, err := t.attempt(attemptCtx, data)
		expired := attemptCtx.Err() == context.DeadlineExceeded
		cancel()

		if err == nil {
			return res, nil
		}
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

// attempt returns when ctx ends even if the backend ignores it. The
// abandoned call finishes in the background and its result is dropped.
func (t *TimeoutExtractor) attempt(ctx context.Context, data []byte) (*Result, error) {
	type outcome struct {
		res *Result
		err error
	}
	ch := make(chan outcome, 1)
	go func() {
		res, err := t.inner.Extract(ctx, data)
		ch <- outcome{res, err}
	}()
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case o := <-ch:
		return o.res, o.err
	}
}

// Close releases the wrapped extractor when it holds resources.
func (t *TimeoutExtractor) Close() error {
	if c, ok := t.inner.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
