// Package mastery folds a finished session into per-user, per-level mastery
// scores (1–10) and computes the session score (0–100).
package mastery

import (
	"math"
	"strconv"

	"github.com/abhisek/laesemaskine/internal/session"
)

const (
	MinScore = 1
	MaxScore = 10

	// AccuracyWeight and SpeedWeight blend accuracy and speed into
	// proficiency, per level and per session.
	AccuracyWeight = 0.7
	SpeedWeight    = 0.3

	// OldWeight and NewWeight smooth a stored score towards a new candidate.
	OldWeight = 0.7
	NewWeight = 0.3

	// NeutralSpeed is used when no speed sample exists.
	NeutralSpeed = 0.5
)

// round rounds half to even, so 2.5 becomes 2 and 3.5 becomes 4.
func round(x float64) int {
	return int(math.RoundToEven(x))
}

func clampScore(n int) int {
	return max(MinScore, min(MaxScore, n))
}

// toScore maps a 0.0–1.0 value onto the 1–10 scale.
func toScore(v float64) int {
	return clampScore(round(v * 10))
}

// BaselineScore is the unsmoothed score for the session's estimated level:
// accuracy on the 1–10 scale. ok is false for an empty session.
func BaselineScore(t session.Totals) (score int, ok bool) {
	if t.TotalWords <= 0 {
		return 0, false
	}
	return toScore(t.Accuracy()), true
}

// Proficiency blends accuracy and speed.
func Proficiency(accuracy, speed float64) float64 {
	return AccuracyWeight*accuracy + SpeedWeight*speed
}

// CandidateScore is the score a level would get from this session alone.
func CandidateScore(st session.LevelStat) int {
	sp, ok := st.Speed()
	if !ok {
		sp = NeutralSpeed
	}
	return toScore(Proficiency(st.Accuracy(), sp))
}

// Smooth moves a stored score towards a new candidate.
func Smooth(old, candidate int) int {
	return clampScore(round(OldWeight*float64(old) + NewWeight*float64(candidate)))
}

// SessionSpeed is the mean of the per-level mean speeds over levels that
// have speed samples, or NeutralSpeed if none do.
func SessionSpeed(stats map[int]*session.LevelStat) float64 {
	var sum float64
	var n int
	for _, l := range session.SortedLevels(stats) {
		if sp, ok := stats[l].Speed(); ok {
			sum += sp
			n++
		}
	}
	if n == 0 {
		return NeutralSpeed
	}
	return sum / float64(n)
}

// SessionScore is the session proficiency on a 0–100 scale, rounded to one
// decimal. Rounding works on the exact binary value, so 9.35 (stored as
// 9.3499...) becomes 9.3.
func SessionScore(accuracy, speed float64) float64 {
	pct := Proficiency(accuracy, speed) * 100
	v, _ := strconv.ParseFloat(strconv.FormatFloat(pct, 'f', 1, 64), 64)
	return v
}
