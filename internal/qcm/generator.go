package qcm

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Generator produces an exam set from cleaned lesson text.
type Generator interface {
	// Generate asks the model for a batch of questions and returns the
	// validated, deduplicated and shuffled set, or an error when too few
	// questions survive.
	Generate(ctx context.Context, input GenerateInput) (ExamSet, error)
}

// Difficulty is the requested exam level.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// ParseDifficulty accepts easy, medium or hard. An empty string means medium.
func ParseDifficulty(s string) (Difficulty, error) {
	switch d := Difficulty(strings.ToLower(strings.TrimSpace(s))); d {
	case "":
		return DifficultyMedium, nil
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return d, nil
	default:
		return "", &InputError{Field: "difficulty", Message: fmt.Sprintf("unknown difficulty %q", s)}
	}
}

// Label is the difficulty as written in the prompt.
func (d Difficulty) Label() string {
	switch d {
	case DifficultyEasy:
		return "سهل"
	case DifficultyHard:
		return "صعب"
	default:
		return "متوسط"
	}
}

// AnswerOptions selects which answer shapes the model may produce.
type AnswerOptions struct {
	SingleAnswer    bool `json:"singleAnswer"`
	MultipleAnswers bool `json:"multipleAnswers"`
	AllowNoCorrect  bool `json:"allowNoCorrect"`
}

// ParseAnswerMode maps a form value to AnswerOptions: "single", "multiple"
// or "mixed". An empty mode means single.
func ParseAnswerMode(mode string, allowNoCorrect bool) (AnswerOptions, error) {
	opts := AnswerOptions{AllowNoCorrect: allowNoCorrect}
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", "single":
		opts.SingleAnswer = true
	case "multiple":
		opts.MultipleAnswers = true
	case "mixed":
		opts.SingleAnswer = true
		opts.MultipleAnswers = true
	default:
		return AnswerOptions{}, &InputError{Field: "mode", Message: fmt.Sprintf("unknown answer mode %q", mode)}
	}
	return opts, nil
}

// GenerateInput is the lesson text and exam settings for one generation.
type GenerateInput struct {
	Text       string
	Difficulty Difficulty
	Options    AnswerOptions
}

// InputError reports a generation request that cannot be served as given.
type InputError struct {
	Field   string
	Message string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Validate checks the input against the generator limits.
func (in GenerateInput) Validate(minChars int) error {
	if n := utf8.RuneCountInString(strings.TrimSpace(in.Text)); n < minChars {
		return &InputError{
			Field:   "cleanedText",
			Message: fmt.Sprintf("lesson text too short (%d characters, need %d)", n, minChars),
		}
	}
	if !in.Options.SingleAnswer && !in.Options.MultipleAnswers {
		return &InputError{Field: "options", Message: "enable single or multiple answers"}
	}
	switch in.Difficulty {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
	default:
		return &InputError{Field: "difficulty", Message: fmt.Sprintf("unknown difficulty %q", in.Difficulty)}
	}
	return nil
}

// truncateRunes cuts s to at most max characters.
func truncateRunes(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}
