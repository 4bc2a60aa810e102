// Package render builds the exam and correction HTML documents.
package render

import (
	"context"
	"strings"

	"github.com/a-h/templ"

	"github.com/abhisek/examforge/internal/qcm"
)

// Documents is the rendered pair for one exam set.
type Documents struct {
	ExamHTML       string `json:"examHtml"`
	CorrectionHTML string `json:"correctionHtml"`
}

// Exam renders the student-facing sheet: numbered questions and lettered
// choices, no answers.
func Exam(questions []qcm.Question) (string, error) {
	return renderString(Page(examTitle, List(questions, ExamQuestion)))
}

// Correction renders the answer key.
func Correction(questions []qcm.Question) (string, error) {
	return renderString(Page(correctionTitle, List(questions, CorrectionQuestion)))
}

// Render produces both documents.
func Render(questions []qcm.Question) (Documents, error) {
	exam, err := Exam(questions)
	if err != nil {
		return Documents{}, err
	}
	correction, err := Correction(questions)
	if err != nil {
		return Documents{}, err
	}
	return Documents{ExamHTML: exam, CorrectionHTML: correction}, nil
}

func renderString(c templ.Component) (string, error) {
	var b strings.Builder
	if err := c.Render(context.Background(), &b); err != nil {
		return "", err
	}
	return b.String(), nil
}
