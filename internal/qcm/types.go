// Package qcm turns loosely-typed model output into validated multiple-choice
// exam questions: normalization, deduplication, answer shuffling and batch
// assembly.
package qcm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// NumChoices is the fixed number of options every question carries.
const NumChoices = 4

// ExplanationPlaceholder is used when the model omits an explanation. It is
// also the correction sheet's marker for a question without a correct answer.
const ExplanationPlaceholder = "—"

// Question is a validated multiple-choice question.
type Question struct {
	Question    string             `json:"question"`
	Choices     [NumChoices]string `json:"choices"`
	Correct     Answer             `json:"correctIndex"`
	Explanation string             `json:"explanation"`
}

// AnswerKind tags the shape of an Answer.
type AnswerKind int

const (
	// AnswerNone means no choice is correct.
	AnswerNone AnswerKind = iota
	// AnswerSingle means exactly one choice is correct.
	AnswerSingle
	// AnswerMultiple means a non-empty set of choices is correct.
	AnswerMultiple
)

// Answer designates the correct choice positions of a question. On the wire
// it is a bare index, an array of indices, or null.
type Answer struct {
	kind    AnswerKind
	indices []int
}

// NoAnswer returns the "no correct answer" designation.
func NoAnswer() Answer {
	return Answer{kind: AnswerNone}
}

// SingleAnswer designates one position. Out-of-range positions collapse to
// NoAnswer.
func SingleAnswer(i int) Answer {
	if !validIndex(i) {
		return NoAnswer()
	}
	return Answer{kind: AnswerSingle, indices: []int{i}}
}

// MultipleAnswer designates a set of positions. Out-of-range entries are
// dropped, duplicates removed and the set sorted; an empty result collapses
// to NoAnswer.
func MultipleAnswer(positions ...int) Answer {
	set := make([]int, 0, len(positions))
	for _, p := range positions {
		if validIndex(p) && !slices.Contains(set, p) {
			set = append(set, p)
		}
	}
	if len(set) == 0 {
		return NoAnswer()
	}
	slices.Sort(set)
	return Answer{kind: AnswerMultiple, indices: set}
}

// Kind reports the answer shape.
func (a Answer) Kind() AnswerKind { return a.kind }

// Indices returns a copy of the correct positions, ascending for sets.
func (a Answer) Indices() []int { return slices.Clone(a.indices) }

// IsNone reports whether no choice is correct.
func (a Answer) IsNone() bool { return a.kind == AnswerNone }

// Letters returns the choice labels of the correct positions ("A".."D").
func (a Answer) Letters() []string {
	out := make([]string, len(a.indices))
	for i, idx := range a.indices {
		out[i] = Letter(idx)
	}
	return out
}

// String renders the answer the way the correction sheet prints it.
func (a Answer) String() string {
	if a.IsNone() {
		return ExplanationPlaceholder
	}
	return strings.Join(a.Letters(), ", ")
}

// MarshalJSON encodes the answer as an index, an index array or null.
func (a Answer) MarshalJSON() ([]byte, error) {
	switch a.kind {
	case AnswerSingle:
		return json.Marshal(a.indices[0])
	case AnswerMultiple:
		return json.Marshal(a.indices)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts any JSON value and resolves it with the same rules
// the normalizer applies to model output.
func (a *Answer) UnmarshalJSON(data []byte) error {
	var v any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return fmt.Errorf("decode correctIndex: %w", err)
	}
	*a = resolveAnswer(v)
	return nil
}

// Letter maps a choice position to its label: 0 → "A", 3 → "D".
func Letter(i int) string {
	return string(rune('A' + i))
}

func validIndex(i int) bool {
	return i >= 0 && i < NumChoices
}
