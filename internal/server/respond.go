package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/abhisek/examforge/internal/apierr"
	"github.com/abhisek/examforge/internal/logger"
)

var errRouteNotFound = apierr.NotFound(apierr.CodeNotFound, "route not found")

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeOK merges fields into a {"status":"OK"} body.
func writeOK(w http.ResponseWriter, fields map[string]any) {
	body := map[string]any{"status": "OK"}
	for k, v := range fields {
		body[k] = v
	}
	writeJSON(w, http.StatusOK, body)
}

func writeError(w http.ResponseWriter, r *http.Request, log *logger.Logger, err error) {
	e := apierr.From(err)
	kv := []any{
		"method", r.Method,
		"path", r.URL.Path,
		"kind", e.Kind,
		"code", e.Code,
		"request_id", middleware.GetReqID(r.Context()),
		"error", err,
	}
	if e.Kind == apierr.KindInternal {
		log.Error("request failed", kv...)
	} else {
		log.Warn("request failed", kv...)
	}
	writeJSON(w, e.Status, e.Envelope())
}

// decodeJSON reads a JSON body of at most limit bytes into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, limit int64, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apierr.Input(apierr.CodeInputInvalid, "request body too large")
		}
		if errors.Is(err, io.EOF) {
			return apierr.Input(apierr.CodeInputInvalid, "request body is empty")
		}
		return apierr.Input(apierr.CodeInputInvalid, fmt.Sprintf("invalid JSON body: %v", err))
	}
	return nil
}

// readUpload returns the multipart "file" field. The form is parsed with
// room for the other fields on top of maxBytes.
func readUpload(w http.ResponseWriter, r *http.Request, maxBytes int64) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes+1<<20)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, apierr.Input(apierr.CodeInputInvalid, fmt.Sprintf("file exceeds %d MB", maxBytes>>20))
		}
		return nil, apierr.Input(apierr.CodeInputInvalid, "expected a multipart form")
	}

	f, _, err := r.FormFile("file")
	if err != nil {
		return nil, apierr.Input(apierr.CodeInputInvalid, "file is required")
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	return data, nil
}

func accessLog(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			log.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}
