// Package server exposes the exam pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/aws/aws-lambda-go/events"
	chiadapter "github.com/awslabs/aws-lambda-go-api-proxy/chi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/abhisek/examforge/internal/credits"
	"github.com/abhisek/examforge/internal/logger"
	"github.com/abhisek/examforge/internal/pipeline"
)

// Config controls the HTTP surface.
type Config struct {
	CORSOrigins    []string
	MaxUploadBytes int64
	// RequestTimeout bounds a whole request, generation included.
	RequestTimeout time.Duration
}

// Server routes API requests to the pipeline.
type Server struct {
	pipeline *pipeline.Pipeline
	ledger   credits.Ledger
	catalog  *credits.Catalog
	log      *logger.Logger
	cfg      Config

	// Ready reports whether dependencies can serve traffic. Nil is always ready.
	Ready func(ctx context.Context) error
}

// New creates a Server. ledger and catalog may be nil when credits are off.
func New(p *pipeline.Pipeline, ledger credits.Ledger, catalog *credits.Catalog, log *logger.Logger, cfg Config) *Server {
	if log == nil {
		log = logger.Nop()
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = pipeline.DefaultMaxUploadBytes
	}
	return &Server{pipeline: p, ledger: ledger, catalog: catalog, log: log, cfg: cfg}
}

// Router builds the chi router with middleware and every route mounted.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, accessLog(s.log), middleware.Recoverer)
	if s.cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(s.cfg.RequestTimeout))
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		ExposedHeaders: []string{"Content-Disposition", "Content-Length"},
		MaxAge:         300,
	}))

	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)

	r.Route("/api", func(r chi.Router) {
		r.Post("/extract-text", s.extractText)
		r.Post("/generate-qcm", s.generateQCM)
		r.Post("/generate-pdf", s.generatePDF)
		r.Get("/download/{examID}/{type}", s.download)
		r.Post("/exams", s.createExam)

		r.Get("/credits/{email}", s.creditBalance)
		r.Get("/packs", s.listPacks)
		r.Get("/checkout/{pack}", s.checkout)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, s.log, errRouteNotFound)
	})
	return r
}

// Serve listens on addr until ctx is cancelled, then drains in-flight
// requests.
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	s.log.Info("http server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// LambdaHandler adapts the router to API Gateway proxy events.
func (s *Server) LambdaHandler() func(context.Context, events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	return chiadapter.New(s.Router()).ProxyWithContext
}
