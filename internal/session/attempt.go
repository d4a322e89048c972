// Package session turns the raw attempts of a reading session into
// per-attempt records and aggregates them into totals and per-level
// statistics. Nothing here holds state between calls: totals are always
// derived from the full list of records.
package session

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Attempt is one spoken word as delivered by the speech front end.
// Optional timing and level fields are nil when absent or malformed.
type Attempt struct {
	WordID         int
	Expected       string
	Recognized     string
	ResponseTimeMs *int
	VisibleMs      *int
	StartMs        *int
	EndMs          *int
	WordLevel      *int
}

// ParseOptionalInt reads an optional integer field from loosely typed
// input. Integer strings and whole or fractional numbers (truncated) are
// accepted; anything else, including booleans, is treated as absent.
func ParseOptionalInt(v any) *int {
	var n int
	switch x := v.(type) {
	case nil:
		return nil
	case int:
		n = x
	case int64:
		n = int(x)
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil
		}
		n = int(x)
	case json.Number:
		if i, err := x.Int64(); err == nil {
			n = int(i)
		} else if f, err := x.Float64(); err == nil {
			return ParseOptionalInt(f)
		} else {
			return nil
		}
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(x))
		if err != nil {
			return nil
		}
		n = i
	default:
		return nil
	}
	return &n
}

// FeedbackMode controls when the student sees diagnoses.
type FeedbackMode string

const (
	FeedbackPerWord   FeedbackMode = "per_word"
	FeedbackAfterTest FeedbackMode = "after_test"
)

// Valid reports whether m is a known mode.
func (m FeedbackMode) Valid() bool {
	return m == FeedbackPerWord || m == FeedbackAfterTest
}

// ParseFeedbackMode returns the mode named by s, or FeedbackPerWord when s
// is not a known mode.
func ParseFeedbackMode(s string) FeedbackMode {
	m := FeedbackMode(strings.ToLower(strings.TrimSpace(s)))
	if !m.Valid() {
		return FeedbackPerWord
	}
	return m
}
