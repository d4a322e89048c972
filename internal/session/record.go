package session

import (
	"github.com/abhisek/laesemaskine/internal/diagnosis"
	"github.com/abhisek/laesemaskine/internal/normalize"
)

// Record is an evaluated attempt. Correct is the strict correctness flag and
// is independent of Diagnosis.Correct; the two can disagree on words with
// interior punctuation or digits.
type Record struct {
	Attempt
	Correct     bool
	Diagnosis   diagnosis.Result
	Similarity  float64
	SoundsAlike bool
}

// ErrorType returns the diagnosed error type, stored with the attempt
// whatever the strict flag says.
func (r Record) ErrorType() diagnosis.ErrorType {
	return r.Diagnosis.ErrorType
}

// Evaluate computes the strict flag, the diagnosis and the similarity hints
// for one attempt.
func Evaluate(a Attempt) Record {
	return Record{
		Attempt:     a,
		Correct:     normalize.IsCorrectStrict(a.Expected, a.Recognized),
		Diagnosis:   diagnosis.Diagnose(a.Expected, a.Recognized),
		Similarity:  diagnosis.Similarity(a.Expected, a.Recognized),
		SoundsAlike: diagnosis.SoundsAlike(a.Expected, a.Recognized),
	}
}

// EvaluateAll evaluates attempts in order.
func EvaluateAll(attempts []Attempt) []Record {
	out := make([]Record, len(attempts))
	for i, a := range attempts {
		out[i] = Evaluate(a)
	}
	return out
}
