package pdftext

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// PopplerExtractor shells out to pdftotext and pdfinfo from poppler-utils.
type PopplerExtractor struct {
	PdfToText string
	PdfInfo   string
}

func NewPopplerExtractor(pdftotext, pdfinfo string) *PopplerExtractor {
	if pdftotext == "" {
		pdftotext = "pdftotext"
	}
	if pdfinfo == "" {
		pdfinfo = "pdfinfo"
	}
	return &PopplerExtractor{PdfToText: pdftotext, PdfInfo: pdfinfo}
}

func (*PopplerExtractor) Name() string { return "poppler" }

// Available reports whether pdftotext can be found.
func (p *PopplerExtractor) Available() bool {
	_, err := exec.LookPath(p.PdfToText)
	return err == nil
}

func (p *PopplerExtractor) Extract(ctx context.Context, data []byte) (*Result, error) {
	if !IsPDF(data) {
		return nil, ErrNotPDF
	}
	if _, err := exec.LookPath(p.PdfToText); err != nil {
		return nil, fmt.Errorf("%w: pdftotext not found in PATH: %v", ErrUnavailable, err)
	}

	tmpDir, err := os.MkdirTemp("", "examforge_pdftext_*")
	if err != nil {
		return nil, fmt.Errorf("temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	inPath := filepath.Join(tmpDir, "lesson.pdf")
	outPath := filepath.Join(tmpDir, "out.txt")
	if err := os.WriteFile(inPath, data, 0o600); err != nil {
		return nil, fmt.Errorf("write temp pdf: %w", err)
	}

	cmd := exec.CommandContext(ctx, p.PdfToText, "-enc", "UTF-8", "-q", inPath, outPath)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, fmt.Errorf("%w: pdftotext exit %d: %s", ErrEmptyOrUnreadable, exitErr.ExitCode(), strings.TrimSpace(stderr.String()))
		}
		return nil, fmt.Errorf("%w: pdftotext: %v", ErrUnavailable, err)
	}

	text, err := os.ReadFile(outPath)
	if err != nil {
		return nil, fmt.Errorf("read pdftotext output: %w", err)
	}

	// Page count is informative only.
	pages, _ := p.pageCount(ctx, inPath)
	return newResult(string(text), pages)
}

func (p *PopplerExtractor) pageCount(ctx context.Context, path string) (int, error) {
	if _, err := exec.LookPath(p.PdfInfo); err != nil {
		return 0, err
	}
	out, err := exec.CommandContext(ctx, p.PdfInfo, path).Output()
	if err != nil {
		return 0, fmt.Errorf("pdfinfo: %w", err)
	}
	return parsePdfInfoPages(string(out))
}

func parsePdfInfoPages(out string) (int, error) {
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "Pages:") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		n, err := strconv.Atoi(fields[len(fields)-1])
		if err != nil || n <= 0 {
			continue
		}
		return n, nil
	}
	return 0, errors.New("pdfinfo output missing Pages field")
}
