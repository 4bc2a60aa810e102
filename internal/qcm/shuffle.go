package qcm

import (
	"fmt"
	"math/rand/v2"
)

// Permutation reorders choices: perm[newPos] is the old position of the
// choice that lands at newPos.
type Permutation [NumChoices]int

// Shuffler randomizes choice order. It is not safe for concurrent use; give
// each request its own.
type Shuffler struct {
	rng *rand.Rand
}

// NewShuffler returns a Shuffler drawing from src.
func NewShuffler(src rand.Source) *Shuffler {
	return &Shuffler{rng: rand.New(src)}
}

// NewSeededShuffler returns a deterministic Shuffler. A zero seed draws a
// random one.
func NewSeededShuffler(seed uint64) *Shuffler {
	if seed == 0 {
		return NewShuffler(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return NewShuffler(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Permutation draws a uniform permutation with Fisher-Yates.
func (s *Shuffler) Permutation() Permutation {
	p := Permutation{0, 1, 2, 3}
	for i := NumChoices - 1; i > 0; i-- {
		j := s.rng.IntN(i + 1)
		p[i], p[j] = p[j], p[i]
	}
	return p
}

// Shuffle reorders q's choices and remaps its answer.
func (s *Shuffler) Shuffle(q Question) Question {
	return ApplyPermutation(q, s.Permutation())
}

// ApplyPermutation reorders q's choices by perm, carrying the correct answer
// along with its choice text.
func ApplyPermutation(q Question, perm Permutation) Question {
	var oldToNew [NumChoices]int
	for i := range oldToNew {
		oldToNew[i] = -1
	}
	out := q
	for newPos, old := range perm {
		out.Choices[newPos] = q.Choices[old]
		oldToNew[old] = newPos
	}

	remap := func(old int) int {
		if !validIndex(old) {
			return -1
		}
		return oldToNew[old]
	}

	switch q.Correct.Kind() {
	case AnswerSingle:
		out.Correct = SingleAnswer(remap(q.Correct.indices[0]))
	case AnswerMultiple:
		mapped := make([]int, 0, len(q.Correct.indices))
		for _, old := range q.Correct.indices {
			mapped = append(mapped, remap(old))
		}
		out.Correct = MultipleAnswer(mapped...)
	default:
		out.Correct = NoAnswer()
	}
	return out
}

// PermutationFromDestinations converts a destination list, where dest[old]
// is the new position of the old choice, into a Permutation.
func PermutationFromDestinations(dest [NumChoices]int) (Permutation, error) {
	var p Permutation
	var used [NumChoices]bool
	for old, newPos := range dest {
		if !validIndex(newPos) || used[newPos] {
			return Permutation{}, fmt.Errorf("invalid destination list %v", dest)
		}
		used[newPos] = true
		p[newPos] = old
	}
	return p, nil
}
