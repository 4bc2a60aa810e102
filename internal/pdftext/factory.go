package pdftext

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// Config selects and tunes the extraction backend.
type Config struct {
	// Values: "auto", "native", "poppler", "documentai", "remote"
	Backend    string
	Timeout    time.Duration // per attempt; 0 disables
	PdfToText  string
	PdfInfo    string
	RemoteURL  string
	DocumentAI DocumentAIConfig
}

// New builds the configured Extractor wrapped with the timeout policy.
// "auto" reads the text layer natively and falls back to poppler when it
// is installed.
func New(ctx context.Context, cfg Config) (Extractor, error) {
	var e Extractor
	switch cfg.Backend {
	case "", "auto":
		chain := Chain{NewNativeExtractor()}
		if p := NewPopplerExtractor(cfg.PdfToText, cfg.PdfInfo); p.Available() {
			chain = append(chain, p)
		}
		e = chain
	case "native":
		e = NewNativeExtractor()
	case "poppler":
		e = NewPopplerExtractor(cfg.PdfToText, cfg.PdfInfo)
	case "documentai":
		d, err := NewDocumentAIExtractor(ctx, cfg.DocumentAI)
		if err != nil {
			return nil, err
		}
		e = d
	case "remote":
		if cfg.RemoteURL == "" {
			return nil, fmt.Errorf("remote PDF extraction requires a service URL")
		}
		e = NewRemoteExtractor(cfg.RemoteURL, &http.Client{})
	default:
		return nil, fmt.Errorf("unknown PDF extraction backend: %q", cfg.Backend)
	}
	return WithTimeout(e, cfg.Timeout), nil
}
