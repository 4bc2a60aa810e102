// Package textclean normalizes raw text extracted from lesson PDFs before it
// is embedded in a question-generation prompt.
package textclean

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// MaxChars is the hard cap on cleaned text length, in characters.
const MaxChars = 12000

// MinLineChars is the trimmed length a line must exceed to survive cleaning.
// Shorter lines are headers, footers, and layout noise.
const MinLineChars = 25

var (
	horizontalSpace = regexp.MustCompile(`[ \t]+`)
	pageNumberLine  = regexp.MustCompile(`(?m)^\s*\d+\s*$`)
	blankLineRun    = regexp.MustCompile(`\n{3,}`)
)

// Clean normalizes whitespace, drops page numbers, short lines and repeated
// lines, and caps the result at MaxChars characters.
func Clean(raw string) string {
	if raw == "" {
		return ""
	}

	text := strings.ReplaceAll(raw, "\r", "")
	text = horizontalSpace.ReplaceAllString(text, " ")
	text = pageNumberLine.ReplaceAllString(text, "")

	seen := make(map[string]struct{})
	var kept []string
	for _, line := range strings.Split(text, "\n") {
		key := strings.TrimSpace(line)
		if !longEnough(key) {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, line)
	}

	text = strings.Join(kept, "\n")
	text = blankLineRun.ReplaceAllString(text, "\n\n")
	text = strings.TrimSpace(text)

	if utf8.RuneCountInString(text) > MaxChars {
		text = truncate(text, MaxChars)
	}
	return text
}

// truncate cuts text to max runes. A final line that the cut turned into
// noise or into a repeat of an earlier line is dropped.
func truncate(text string, max int) string {
	runes := []rune(text)
	text = string(runes[:max])

	cut := strings.LastIndexByte(text, '\n')
	if cut < 0 {
		if !longEnough(strings.TrimSpace(text)) {
			return ""
		}
		return strings.TrimSpace(text)
	}

	head, tail := text[:cut], strings.TrimSpace(text[cut+1:])
	if !longEnough(tail) || repeats(head, tail) {
		text = head
	}
	return strings.TrimSpace(text)
}

func repeats(head, line string) bool {
	for _, prev := range strings.Split(head, "\n") {
		if strings.TrimSpace(prev) == line {
			return true
		}
	}
	return false
}

func longEnough(trimmed string) bool {
	return utf8.RuneCountInString(trimmed) > MinLineChars
}
