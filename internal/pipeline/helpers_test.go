package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/abhisek/examforge/internal/pdftext"
)

// samplePDF only needs a PDF header; fakeExtractor ignores the body.
var samplePDF = []byte("%PDF-1.4\n1 0 obj << >> endobj\n%%EOF\n")

type fakeExtractor struct {
	text  string
	pages int
	err   error
	calls atomic.Int32
}

func (f *fakeExtractor) Extract(_ context.Context, _ []byte) (*pdftext.Result, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return &pdftext.Result{Text: f.text, PageCount: f.pages}, nil
}

func (f *fakeExtractor) Name() string { return "fake" }

type fakeRenderer struct {
	err   error
	calls atomic.Int32
}

func (f *fakeRenderer) Render(_ context.Context, html string) ([]byte, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return []byte(fmt.Sprintf("%%PDF-1.7\n%% %d bytes of html\n", len(html))), nil
}

// lessonText returns n distinct lines long enough to survive cleaning,
// with a page number between each pair.
func lessonText(n int) string {
	var b strings.Builder
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&b, "Paragraphe %d : la cellule végétale produit son énergie par la photosynthèse.\n", i)
		if i%2 == 0 {
			fmt.Fprintf(&b, "%d\n", i/2)
		}
	}
	return b.String()
}

type rawQuestion struct {
	Question     string   `json:"question"`
	Choices      []string `json:"choices"`
	CorrectIndex int      `json:"correctIndex"`
	Explanation  string   `json:"explanation"`
}

// batchJSON is a model response holding n valid, distinct questions.
func batchJSON(n int) json.RawMessage {
	items := make([]rawQuestion, n)
	for i := range items {
		items[i] = rawQuestion{
			Question: fmt.Sprintf("Question %d : quel organite réalise la photosynthèse ?", i+1),
			Choices: []string{
				fmt.Sprintf("Chloroplaste %d", i+1),
				fmt.Sprintf("Mitochondrie %d", i+1),
				fmt.Sprintf("Noyau %d", i+1),
				fmt.Sprintf("Ribosome %d", i+1),
			},
			CorrectIndex: i % 4,
			Explanation:  "Le chloroplaste contient la chlorophylle.",
		}
	}
	body, err := json.Marshal(map[string]any{"questions": items})
	if err != nil {
		panic(err)
	}
	return body
}
