package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/abhisek/examforge/internal/config"
	"github.com/abhisek/examforge/internal/credits"
	"github.com/abhisek/examforge/internal/llm"
	"github.com/abhisek/examforge/internal/logger"
	"github.com/abhisek/examforge/internal/pdfrender"
	"github.com/abhisek/examforge/internal/pdftext"
	"github.com/abhisek/examforge/internal/pipeline"
	"github.com/abhisek/examforge/internal/qcm"
	"github.com/abhisek/examforge/internal/storage"
	"github.com/abhisek/examforge/internal/store"
)

// appRuntime holds the dependencies built from configuration.
type appRuntime struct {
	cfg      config.Config
	log      *logger.Logger
	store    *store.Store
	ledger   credits.Ledger
	catalog  *credits.Catalog
	provider llm.Provider
	pipeline *pipeline.Pipeline

	closers []io.Closer
}

// Close releases everything in reverse order of construction.
func (r *appRuntime) Close() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i].Close(); err != nil {
			r.log.Warn("close failed", "error", err)
		}
	}
	r.log.Sync()
}

type buildOptions struct {
	// gated attaches the credit ledger to the pipeline.
	gated bool
	// noLLM skips the provider and extraction backends, for commands that
	// only touch the store or the ledger.
	noLLM bool
}

func newLogger(cfg config.Config) (*logger.Logger, error) {
	return logger.New(string(cfg.Mode), logger.Options{Level: cfg.LogLevel, HashSalt: cfg.LogHashSalt})
}

func buildRuntime(cmd *cobra.Command, opts buildOptions) (*appRuntime, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}
	r := &appRuntime{cfg: cfg, log: log}

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	r.store = st
	r.closers = append(r.closers, st)

	ledger, err := credits.New(ctx, cfg.Credits, st.CreditRepo())
	if err != nil {
		r.Close()
		return nil, fmt.Errorf("credit ledger: %w", err)
	}
	r.ledger = ledger
	if c, ok := ledger.(io.Closer); ok {
		r.closers = append(r.closers, c)
	}

	r.catalog, err = credits.NewCatalog(cfg.Packs)
	if err != nil {
		r.Close()
		return nil, err
	}

	if opts.noLLM {
		return r, nil
	}

	provider, err := llm.NewProvider(ctx, cfg.LLM, st.EventRepo(), log)
	if err != nil {
		r.Close()
		return nil, err
	}
	r.provider = provider

	extractor, err := pdftext.New(ctx, cfg.PDFText)
	if err != nil {
		r.Close()
		return nil, fmt.Errorf("PDF extraction: %w", err)
	}
	if c, ok := extractor.(io.Closer); ok {
		r.closers = append(r.closers, c)
	}

	blobs, err := storage.NewFSStore(cfg.BlobDir)
	if err != nil {
		r.Close()
		return nil, fmt.Errorf("blob store: %w", err)
	}

	r.pipeline = &pipeline.Pipeline{
		Extractor:      extractor,
		Generator:      qcm.New(provider, cfg.QCM),
		Blobs:          blobs,
		Log:            log,
		MaxUploadBytes: cfg.MaxUploadBytes,
	}
	if cfg.Print.Backend != "" && cfg.Print.Backend != "disabled" {
		printer, err := pdfrender.New(cfg.Print)
		if err != nil {
			r.Close()
			return nil, err
		}
		r.pipeline.Renderer = printer
	}
	if opts.gated {
		r.pipeline.Ledger = ledger
	}

	log.Info("runtime ready",
		"llm_provider", cfg.LLM.Provider,
		"extractor", extractor.Name(),
		"print_backend", cfg.Print.Backend,
		"credits_backend", cfg.Credits.Backend,
		"gated", opts.gated,
	)
	return r, nil
}
