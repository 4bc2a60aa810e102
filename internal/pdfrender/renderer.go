// Package pdfrender prints HTML documents to PDF.
package pdfrender

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
)

var (
	// ErrDisabled is returned when no print backend is configured.
	ErrDisabled = errors.New("PDF generation is disabled")
	// ErrUnavailable means the print backend could not run.
	ErrUnavailable = errors.New("PDF print backend unavailable")
)

// Renderer prints one self-contained HTML document to PDF bytes.
type Renderer interface {
	Render(ctx context.Context, html string) ([]byte, error)
}

// Disabled is the Renderer used when printing is turned off.
type Disabled struct{}

func (Disabled) Render(context.Context, string) ([]byte, error) { return nil, ErrDisabled }

// RenderAll prints every document concurrently, preserving order. The first
// failure cancels the rest.
func RenderAll(ctx context.Context, r Renderer, htmls ...string) ([][]byte, error) {
	out := make([][]byte, len(htmls))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, html := range htmls {
		g.Go(func() error {
			pdf, err := r.Render(gctx, html)
			if err != nil {
				return fmt.Errorf("print document %d: %w", i+1, err)
			}
			out[i] = pdf
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Config selects the print backend.
type Config struct {
	// Values: "chromium", "remote", "disabled"
	Backend   string
	Chromium  string // binary; Default: first of chromium, chromium-browser, google-chrome
	RemoteURL string
	Timeout   time.Duration
}

// New builds the configured Renderer.
func New(cfg Config) (Renderer, error) {
	switch cfg.Backend {
	case "", "disabled":
		return Disabled{}, nil
	case "chromium":
		return NewChromium(cfg.Chromium, cfg.Timeout), nil
	case "remote":
		if cfg.RemoteURL == "" {
			return nil, fmt.Errorf("remote PDF printing requires a service URL")
		}
		return NewRemote(cfg.RemoteURL, nil), nil
	default:
		return nil, fmt.Errorf("unknown PDF print backend: %q", cfg.Backend)
	}
}
