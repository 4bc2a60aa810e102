package render

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"github.com/abhisek/examforge/internal/qcm"
)

const (
	examTitle       = "امتحان QCM"
	correctionTitle = "تصحيح امتحان QCM"
)

const baseStyle = `@page { size: A4; margin: 18mm 16mm; }
body { font-family: "Times New Roman", serif; margin: 40px 50px; line-height: 1.7; color: #000; }
h1 { text-align: center; margin-bottom: 40px; }
.question { margin-bottom: 24px; page-break-inside: avoid; }
.question-title { font-weight: bold; margin-bottom: 10px; }
.choice { margin-right: 20px; margin-bottom: 4px; }
.answer { margin-right: 24px; color: #1f5c3a; font-weight: bold; }
.explanation { margin-right: 24px; color: #333; font-style: italic; }`

// Page wraps body in the RTL Arabic document shell.
func Page(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w,
			"<!DOCTYPE html>\n<html lang=\"ar\" dir=\"rtl\">\n<head>\n<meta charset=\"utf-8\">\n<title>%s</title>\n<style>\n%s\n</style>\n</head>\n<body>\n<h1>%s</h1>\n",
			templ.EscapeString(title), baseStyle, templ.EscapeString(title)); err != nil {
			return err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, "</body>\n</html>\n")
		return err
	})
}

// ExamQuestion renders one numbered question with its lettered choices.
func ExamQuestion(n int, q qcm.Question) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, "<div class=\"question\">\n<div class=\"question-title\">%d. %s</div>\n",
			n, templ.EscapeString(q.Question)); err != nil {
			return err
		}
		for i, c := range q.Choices {
			if _, err := fmt.Fprintf(w, "<div class=\"choice\">%s. %s</div>\n",
				qcm.Letter(i), templ.EscapeString(c)); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, "</div>\n")
		return err
	})
}

// CorrectionQuestion renders one numbered question with its answer letters
// and explanation.
func CorrectionQuestion(n int, q qcm.Question) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, "<div class=\"question\">\n<div class=\"question-title\">%d. %s</div>\n<div class=\"answer\">✔ %s</div>\n",
			n, templ.EscapeString(q.Question), templ.EscapeString(q.Correct.String())); err != nil {
			return err
		}
		if q.Explanation != "" && q.Explanation != qcm.ExplanationPlaceholder {
			if _, err := fmt.Fprintf(w, "<div class=\"explanation\">%s</div>\n",
				templ.EscapeString(q.Explanation)); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, "</div>\n")
		return err
	})
}

// List renders item for every question, numbering from 1.
func List(questions []qcm.Question, item func(int, qcm.Question) templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		for i, q := range questions {
			if err := item(i+1, q).Render(ctx, w); err != nil {
				return err
			}
		}
		return nil
	})
}
