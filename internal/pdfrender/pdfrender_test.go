package pdfrender

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoRenderer struct {
	calls atomic.Int32
	fail  string
}

func (e *echoRenderer) Render(ctx context.Context, html string) ([]byte, error) {
	e.calls.Add(1)
	if e.fail != "" && strings.Contains(html, e.fail) {
		return nil, errors.New("print failed")
	}
	return []byte("%PDF-" + html), nil
}

func TestRenderAll(t *testing.T) {
	r := &echoRenderer{}
	out, err := RenderAll(context.Background(), r, "exam", "correction")
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "%PDF-exam", string(out[0]))
	assert.Equal(t, "%PDF-correction", string(out[1]))
	assert.EqualValues(t, 2, r.calls.Load())
}

func TestRenderAll_Failure(t *testing.T) {
	r := &echoRenderer{fail: "correction"}
	_, err := RenderAll(context.Background(), r, "exam", "correction")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "document 2")
}

func TestDisabled(t *testing.T) {
	_, err := RenderAll(context.Background(), Disabled{}, "exam")
	assert.ErrorIs(t, err, ErrDisabled)
}

func TestRemote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			HTML   string `json:"html"`
			Format string `json:"format"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Format != "A4" {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		if body.HTML == "crash" {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		if body.HTML == "junk" {
			w.Write([]byte("<html>not a pdf</html>"))
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Write([]byte("%PDF-1.7 " + body.HTML))
	}))
	defer srv.Close()

	r := NewRemote(srv.URL, srv.Client())
	ctx := context.Background()

	pdf, err := r.Render(ctx, "<h1>exam</h1>")
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7 <h1>exam</h1>", string(pdf))

	_, err = r.Render(ctx, "crash")
	assert.ErrorIs(t, err, ErrUnavailable)

	_, err = r.Render(ctx, "junk")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestChromium_MissingBinary(t *testing.T) {
	c := NewChromium("examforge-no-such-chromium", time.Second)
	_, err := c.Render(context.Background(), "<p>x</p>")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestChromiumArgs(t *testing.T) {
	args := chromiumArgs("/tmp/p", "/tmp/p/doc.html", "/tmp/p/doc.pdf")
	assert.Contains(t, args, "--headless")
	assert.Contains(t, args, "--print-to-pdf=/tmp/p/doc.pdf")
	assert.Equal(t, "file:///tmp/p/doc.html", args[len(args)-1])
}

func TestNew(t *testing.T) {
	r, err := New(Config{})
	require.NoError(t, err)
	assert.IsType(t, Disabled{}, r)

	r, err = New(Config{Backend: "chromium"})
	require.NoError(t, err)
	assert.IsType(t, &Chromium{}, r)

	_, err = New(Config{Backend: "remote"})
	assert.Error(t, err)

	_, err = New(Config{Backend: "wkhtmltopdf"})
	assert.Error(t, err)
}
