package qcm

import (
	"strings"
	"unicode"
)

// Key is the comparison key of a question text: lower-cased, stripped of
// everything but letters, digits and whitespace, whitespace collapsed.
func Key(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Dedupe keeps the first question for each Key, preserving order. Questions
// whose key is empty are dropped.
func Dedupe(items []Question) []Question {
	seen := make(map[string]struct{}, len(items))
	out := make([]Question, 0, len(items))
	for _, q := range items {
		k := Key(q.Question)
		if k == "" {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, q)
	}
	return out
}
