package session

import (
	"fmt"
	"sort"

	"github.com/abhisek/laesemaskine/internal/catalog"
)

// Totals are the session-wide counts.
type Totals struct {
	TotalWords   int `json:"total_words"`
	CorrectTotal int `json:"correct_total"`
}

// Accuracy returns CorrectTotal/TotalWords, or 0 for an empty session.
func (t Totals) Accuracy() float64 {
	if t.TotalWords == 0 {
		return 0
	}
	return float64(t.CorrectTotal) / float64(t.TotalWords)
}

// Tally counts records and strict-correct records.
func Tally(records []Record) Totals {
	var t Totals
	for _, r := range records {
		t.TotalWords++
		if r.Correct {
			t.CorrectTotal++
		}
	}
	return t
}

// LevelStat accumulates the attempts attributed to one skill level.
type LevelStat struct {
	Total      int
	Correct    int
	SpeedSum   float64
	SpeedCount int
}

// Accuracy returns Correct/Total, or 0 when empty.
func (s LevelStat) Accuracy() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Correct) / float64(s.Total)
}

// Speed returns the mean normalized speed and whether any speed sample was
// recorded.
func (s LevelStat) Speed() (float64, bool) {
	if s.SpeedCount == 0 {
		return 0, false
	}
	return s.SpeedSum / float64(s.SpeedCount), true
}

// WordLookup resolves word metadata. *catalog.Catalog implements it.
type WordLookup interface {
	WordMetadata(wordID int) (catalog.Metadata, error)
}

// SpeedNorm maps a response time to 0.0–1.0: 1 for an instant answer, 0 once
// the word has been visible for the whole response.
func SpeedNorm(responseTimeMs, visibleMs int) float64 {
	v := 1 - float64(responseTimeMs)/float64(visibleMs)
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

// GroupByLevel attributes each record to its word's catalog level and builds
// one LevelStat per level. Words without a level fall back to
// estimatedLevel, or 1 when that is absent. Speed is sampled only from
// strict-correct records that carry both a response time and a non-zero
// visible time.
func GroupByLevel(records []Record, words WordLookup, estimatedLevel *int) (map[int]*LevelStat, error) {
	fallback := 1
	if estimatedLevel != nil && *estimatedLevel != 0 {
		fallback = *estimatedLevel
	}

	stats := make(map[int]*LevelStat)
	for _, r := range records {
		md, err := words.WordMetadata(r.WordID)
		if err != nil {
			return nil, fmt.Errorf("word %d metadata: %w", r.WordID, err)
		}
		level := fallback
		if md.Level != nil && *md.Level != 0 {
			level = *md.Level
		}

		st := stats[level]
		if st == nil {
			st = &LevelStat{}
			stats[level] = st
		}
		st.Total++
		if !r.Correct {
			continue
		}
		st.Correct++
		if r.ResponseTimeMs != nil && r.VisibleMs != nil && *r.VisibleMs != 0 {
			st.SpeedSum += SpeedNorm(*r.ResponseTimeMs, *r.VisibleMs)
			st.SpeedCount++
		}
	}
	return stats, nil
}

// SortedLevels returns the levels of stats in ascending order.
func SortedLevels(stats map[int]*LevelStat) []int {
	levels := make([]int, 0, len(stats))
	for l := range stats {
		levels = append(levels, l)
	}
	sort.Ints(levels)
	return levels
}
