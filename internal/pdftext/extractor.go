// Package pdftext turns lesson PDFs into plain text.
package pdftext

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrEmptyOrUnreadable means the document parsed to no usable text:
	// scanned pages, encrypted files or corrupt input.
	ErrEmptyOrUnreadable = errors.New("PDF is empty or unreadable")
	// ErrUnavailable means the extraction backend could not be reached or
	// is not installed.
	ErrUnavailable = errors.New("PDF extraction backend unavailable")
	// ErrNotPDF is returned for payloads without a PDF header.
	ErrNotPDF = errors.New("file is not a PDF")
)

// ErrTimeout indicates every extraction attempt ran past its deadline.
type ErrTimeout struct {
	Attempts int
	Timeout  time.Duration
}

func (e *ErrTimeout) Error() string {
	return fmt.Sprintf("PDF extraction timed out after %d attempt(s) of %s", e.Attempts, e.Timeout)
}

// Result is the raw text of a document. Text is not cleaned.
type Result struct {
	Text      string
	PageCount int
}

// Extractor extracts the text layer of a PDF.
type Extractor interface {
	Extract(ctx context.Context, pdf []byte) (*Result, error)
	Name() string
}

var pdfMagic = []byte("%PDF-")

// IsPDF reports whether data starts with a PDF header. Leading whitespace
// and a UTF-8 BOM are tolerated, as some generators emit them.
func IsPDF(data []byte) bool {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	data = bytes.TrimLeft(data, " \t\r\n")
	return bytes.HasPrefix(data, pdfMagic)
}

func newResult(text string, pages int) (*Result, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyOrUnreadable
	}
	return &Result{Text: text, PageCount: pages}, nil
}
