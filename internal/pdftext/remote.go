package pdftext

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

// RemoteExtractor posts the PDF to an extraction service that answers
// {"pages":n,"textLength":n,"text":"..."} or {"error":"PARSE_FAILED"}.
type RemoteExtractor struct {
	URL    string
	Client *http.Client
}

func NewRemoteExtractor(url string, client *http.Client) *RemoteExtractor {
	if client == nil {
		client = &http.Client{Timeout: 2 * time.Minute}
	}
	return &RemoteExtractor{URL: url, Client: client}
}

func (*RemoteExtractor) Name() string { return "remote" }

type remoteResponse struct {
	Pages      int    `json:"pages"`
	TextLength int    `json:"textLength"`
	Text       string `json:"text"`
	Error      string `json:"error"`
}

func (r *RemoteExtractor) Extract(ctx context.Context, data []byte) (*Result, error) {
	if !IsPDF(data) {
		return nil, ErrNotPDF
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "lesson.pdf")
	if err != nil {
		return nil, fmt.Errorf("build multipart body: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("build multipart body: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("build multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.URL, &body)
	if err != nil {
		return nil, fmt.Errorf("build extraction request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	resp, err := r.Client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrUnavailable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var out remoteResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}
	if out.Error != "" {
		return nil, fmt.Errorf("%w: %s", ErrEmptyOrUnreadable, out.Error)
	}
	return newResult(out.Text, out.Pages)
}
