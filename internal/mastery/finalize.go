package mastery

import (
	"context"
	"errors"
	"fmt"

	"github.com/abhisek/laesemaskine/internal/session"
)

// ErrMissingUser is returned when Finalize is called without a user id.
var ErrMissingUser = errors.New("mastery: missing user id")

// Status tells whether the per-level refinement completed.
type Status string

const (
	// StatusOK means both passes ran and every score field is set.
	StatusOK Status = "ok"
	// StatusPartial means the per-level pass failed. The baseline score, if
	// one was written, stays written; the session score fields are nil.
	StatusPartial Status = "partial"
)

// Metrics are the session-level numbers reported to the caller.
// Accuracy, Speed and Score are nil when the outcome is partial.
type Metrics struct {
	TotalWords   int      `json:"total_words"`
	CorrectTotal int      `json:"correct_total"`
	Accuracy     *float64 `json:"accuracy"`
	Speed        *float64 `json:"speed"`
	Score        *float64 `json:"session_score"`
}

// Outcome is the result of finalizing a session.
type Outcome struct {
	Status  Status
	Reason  error // why the per-level pass stopped; nil when Status is StatusOK
	Metrics Metrics

	// Baseline is the score written for the estimated level, or nil when
	// no estimated level was given or the session was empty.
	Baseline *int

	// Levels holds the final score written for each level by the per-level
	// pass, including levels written before a failure.
	Levels map[int]int
}

// Input describes the session being finalized.
type Input struct {
	UserID         string
	Records        []session.Record
	EstimatedLevel *int

	// Totals are the running totals kept by the caller. When nil or empty
	// they are recomputed from Records.
	Totals *session.Totals
}

// Updater applies a finished session to stored mastery.
type Updater struct {
	store Store
	words session.WordLookup
}

// NewUpdater creates an Updater that reads word levels from words and
// reads and writes scores through store.
func NewUpdater(store Store, words session.WordLookup) *Updater {
	return &Updater{store: store, words: words}
}

// Finalize runs the baseline pass, the per-level pass and the session score.
// An error is returned only for an invalid call or when the baseline write
// fails; per-level failures are reported as a partial Outcome.
func (u *Updater) Finalize(ctx context.Context, in Input) (*Outcome, error) {
	if in.UserID == "" {
		return nil, ErrMissingUser
	}

	totals := session.Tally(in.Records)
	if in.Totals != nil && in.Totals.TotalWords > 0 {
		totals = *in.Totals
	}

	out := &Outcome{
		Status: StatusOK,
		Metrics: Metrics{
			TotalWords:   totals.TotalWords,
			CorrectTotal: totals.CorrectTotal,
		},
		Levels: make(map[int]int),
	}

	// Baseline: overwrite the estimated level's score, no smoothing.
	if in.EstimatedLevel != nil {
		if score, ok := BaselineScore(totals); ok {
			if err := u.store.UpsertMastery(ctx, in.UserID, *in.EstimatedLevel, score); err != nil {
				return nil, fmt.Errorf("write baseline mastery: %w", err)
			}
			out.Baseline = &score
		}
	}

	if err := u.refine(ctx, in, totals, out); err != nil {
		out.Status = StatusPartial
		out.Reason = err
		out.Metrics.Accuracy = nil
		out.Metrics.Speed = nil
		out.Metrics.Score = nil
	}
	return out, nil
}

// refine is the per-level pass. It fills the session metrics and writes one
// smoothed score per level; the metrics are only meaningful when it returns
// nil.
func (u *Updater) refine(ctx context.Context, in Input, totals session.Totals, out *Outcome) error {
	if u.words == nil {
		return errors.New("no word lookup configured")
	}
	stats, err := session.GroupByLevel(in.Records, u.words, in.EstimatedLevel)
	if err != nil {
		return fmt.Errorf("group by level: %w", err)
	}

	acc := totals.Accuracy()
	speed := SessionSpeed(stats)
	score := SessionScore(acc, speed)
	out.Metrics.Accuracy = &acc
	out.Metrics.Speed = &speed
	out.Metrics.Score = &score

	for _, level := range session.SortedLevels(stats) {
		st := stats[level]
		if st.Total <= 0 {
			continue
		}
		final := CandidateScore(*st)
		old, ok, err := u.store.MasteryScore(ctx, in.UserID, level)
		if err != nil {
			return fmt.Errorf("read mastery for level %d: %w", level, err)
		}
		if ok {
			final = Smooth(old, final)
		}
		if err := u.store.UpsertMastery(ctx, in.UserID, level, final); err != nil {
			return fmt.Errorf("write mastery for level %d: %w", level, err)
		}
		out.Levels[level] = final
	}
	return nil
}
