package pdfrender

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

var chromiumCandidates = []string{"chromium", "chromium-browser", "google-chrome", "google-chrome-stable"}

// Chromium prints through a headless Chromium process, one per document.
type Chromium struct {
	bin     string
	timeout time.Duration
}

func NewChromium(bin string, timeout time.Duration) *Chromium {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Chromium{bin: bin, timeout: timeout}
}

func (c *Chromium) resolve() (string, error) {
	if c.bin != "" {
		return exec.LookPath(c.bin)
	}
	for _, name := range chromiumCandidates {
		if p, err := exec.LookPath(name); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("none of %s found in PATH", strings.Join(chromiumCandidates, ", "))
}

func (c *Chromium) Render(ctx context.Context, html string) ([]byte, error) {
	bin, err := c.resolve()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	tmpDir, err := os.MkdirTemp("", "examforge_print_*")
	if err != nil {
		return nil, fmt.Errorf("temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	in := filepath.Join(tmpDir, "doc.html")
	out := filepath.Join(tmpDir, "doc.pdf")
	if err := os.WriteFile(in, []byte(html), 0o600); err != nil {
		return nil, fmt.Errorf("write html: %w", err)
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cmd := exec.CommandContext(callCtx, bin, chromiumArgs(tmpDir, in, out)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctxErr := callCtx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("chromium print: %w", ctxErr)
		}
		return nil, fmt.Errorf("%w: chromium: %v; stderr=%s", ErrUnavailable, err, lastLine(stderr.String()))
	}

	pdf, err := os.ReadFile(out)
	if err != nil {
		return nil, fmt.Errorf("%w: chromium produced no PDF: %v", ErrUnavailable, err)
	}
	return pdf, nil
}

func chromiumArgs(profileDir, in, out string) []string {
	return []string{
		"--headless",
		"--no-sandbox",
		"--disable-setuid-sandbox",
		"--disable-gpu",
		"--disable-dev-shm-usage",
		"--no-pdf-header-footer",
		"--user-data-dir=" + filepath.Join(profileDir, "profile"),
		"--print-to-pdf=" + out,
		"file://" + in,
	}
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}
