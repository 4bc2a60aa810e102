package qcm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// RawItem is one untyped question as it came from the model. Any field may
// be missing or of the wrong JSON type.
type RawItem struct {
	Question     any `json:"question"`
	Choices      any `json:"choices"`
	CorrectIndex any `json:"correctIndex"`
	Explanation  any `json:"explanation"`

	notObject bool
}

// UnmarshalJSON decodes an item leniently. A value that is not a JSON object
// decodes without error into an item Normalize will reject.
func (r *RawItem) UnmarshalJSON(data []byte) error {
	var fields map[string]any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&fields); err != nil || fields == nil {
		*r = RawItem{notObject: true}
		return nil
	}
	*r = RawItem{
		Question:     fields["question"],
		Choices:      fields["choices"],
		CorrectIndex: fields["correctIndex"],
		Explanation:  fields["explanation"],
	}
	return nil
}

// RejectReason names why a raw item was discarded.
type RejectReason string

const (
	RejectNotObject     RejectReason = "not_object"
	RejectEmptyQuestion RejectReason = "empty_question"
	RejectChoiceCount   RejectReason = "choice_count"
	RejectEmptyChoice   RejectReason = "empty_choice"
	RejectDuplicate     RejectReason = "duplicate"
)

// Rejection describes a raw item that could not become a Question.
type Rejection struct {
	Reason RejectReason
	Detail string
}

func (r *Rejection) Error() string {
	if r.Detail == "" {
		return fmt.Sprintf("question rejected: %s", r.Reason)
	}
	return fmt.Sprintf("question rejected: %s: %s", r.Reason, r.Detail)
}

// Normalize coerces a raw item into a Question, or explains why it cannot.
func Normalize(raw RawItem) (Question, *Rejection) {
	if raw.notObject {
		return Question{}, &Rejection{Reason: RejectNotObject}
	}

	text := toText(raw.Question)
	if text == "" {
		return Question{}, &Rejection{Reason: RejectEmptyQuestion}
	}

	list, _ := raw.Choices.([]any)
	if len(list) > NumChoices {
		list = list[:NumChoices]
	}
	if len(list) != NumChoices {
		return Question{}, &Rejection{
			Reason: RejectChoiceCount,
			Detail: fmt.Sprintf("got %d choices", len(list)),
		}
	}

	var choices [NumChoices]string
	for i, c := range list {
		choices[i] = toText(c)
		if choices[i] == "" {
			return Question{}, &Rejection{
				Reason: RejectEmptyChoice,
				Detail: fmt.Sprintf("choice %s is empty", Letter(i)),
			}
		}
	}

	explanation := toText(raw.Explanation)
	if explanation == "" {
		explanation = ExplanationPlaceholder
	}

	return Question{
		Question:    text,
		Choices:     choices,
		Correct:     resolveAnswer(raw.CorrectIndex),
		Explanation: explanation,
	}, nil
}

// resolveAnswer maps the loosely typed correctIndex field to an Answer.
func resolveAnswer(v any) Answer {
	switch x := v.(type) {
	case []any:
		positions := lo.FilterMap(x, func(item any, _ int) (int, bool) {
			return toIndex(item, true)
		})
		if len(positions) == 0 {
			return NoAnswer()
		}
		return MultipleAnswer(lo.Uniq(positions)...)
	default:
		if i, ok := toIndex(x, false); ok {
			return SingleAnswer(i)
		}
		return NoAnswer()
	}
}

// toIndex reports v as a choice position. Numeric strings are accepted only
// inside index arrays.
func toIndex(v any, allowString bool) (int, bool) {
	var f float64
	switch x := v.(type) {
	case json.Number:
		n, err := x.Float64()
		if err != nil {
			return 0, false
		}
		f = n
	case float64:
		f = x
	case int:
		f = float64(x)
	case string:
		if !allowString {
			return 0, false
		}
		n, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
		f = n
	default:
		return 0, false
	}
	if f != math.Trunc(f) || f < 0 || f >= NumChoices {
		return 0, false
	}
	return int(f), true
}

// toText stringifies scalars and trims them. Null, false, objects and arrays
// become "".
func toText(v any) string {
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x)
	case json.Number:
		return x.String()
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case bool:
		return strconv.FormatBool(x)
	}
	return ""
}
