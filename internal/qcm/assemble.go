package qcm

import "fmt"

// Default batch sizes.
const (
	DefaultTarget          = 20
	DefaultPromptQuestions = 30
)

// ExamSet is the ordered, shuffled question list of one exam.
type ExamSet struct {
	Questions []Question `json:"questions"`

	// Stats about the batch the set was drawn from.
	Received   int                  `json:"-"`
	Rejected   map[RejectReason]int `json:"-"`
	Duplicates int                  `json:"-"`
}

// ShortBatchError reports a batch with fewer valid questions than required.
type ShortBatchError struct {
	Target   int
	Produced int
}

func (e *ShortBatchError) Error() string {
	return fmt.Sprintf("only %d valid questions produced, %d required", e.Produced, e.Target)
}

// Assemble normalizes and dedupes raws, rejects the batch when fewer than
// target survive, caps it at target and shuffles every kept question.
func Assemble(raws []RawItem, target int, s *Shuffler) (ExamSet, error) {
	set := ExamSet{Received: len(raws), Rejected: map[RejectReason]int{}}

	valid := make([]Question, 0, len(raws))
	for _, raw := range raws {
		q, rej := Normalize(raw)
		if rej != nil {
			set.Rejected[rej.Reason]++
			continue
		}
		valid = append(valid, q)
	}

	unique := Dedupe(valid)
	set.Duplicates = len(valid) - len(unique)
	if set.Duplicates > 0 {
		set.Rejected[RejectDuplicate] = set.Duplicates
	}

	if len(unique) < target {
		return set, &ShortBatchError{Target: target, Produced: len(unique)}
	}

	unique = unique[:target]
	for i := range unique {
		unique[i] = s.Shuffle(unique[i])
	}
	set.Questions = unique
	return set, nil
}
