// Package report summarizes where a student struggles, grouped by word
// metadata from the catalog.
package report

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"github.com/abhisek/laesemaskine/internal/catalog"
	"github.com/abhisek/laesemaskine/internal/diagnosis"
	"github.com/abhisek/laesemaskine/internal/session"
)

// Unknown is the bucket key for words without a value in a dimension.
const Unknown = "Ukendt"

// MaxBuckets caps the buckets reported per dimension.
const MaxBuckets = 20

// DrilldownWindow is how many of the newest records Drilldown scans.
const DrilldownWindow = 300

// Dimension is a word metadata field attempts can be grouped by.
type Dimension string

const (
	DimensionCategory     Dimension = "interessekategori"
	DimensionPattern      Dimension = "stavemoenster"
	DimensionDyslexiaType Dimension = "ordblind_type"
)

// Dimensions lists every grouping dimension in report order.
var Dimensions = []Dimension{DimensionCategory, DimensionPattern, DimensionDyslexiaType}

// ErrUnknownDimension is returned for a dimension not in Dimensions.
var ErrUnknownDimension = errors.New("unknown dimension")

// ParseDimension validates a dimension name.
func ParseDimension(s string) (Dimension, error) {
	d := Dimension(s)
	if !slices.Contains(Dimensions, d) {
		return "", fmt.Errorf("%w: %q", ErrUnknownDimension, s)
	}
	return d, nil
}

// key returns the bucket key of md in dimension d.
func (d Dimension) key(md catalog.Metadata) string {
	var v string
	switch d {
	case DimensionCategory:
		v = md.Category
	case DimensionPattern:
		v = md.Pattern
	case DimensionDyslexiaType:
		v = md.DyslexiaType
	}
	if v == "" {
		return Unknown
	}
	return v
}

// Bucket counts attempts sharing one key.
type Bucket struct {
	Key       string  `json:"key"`
	Total     int     `json:"total"`
	Wrong     int     `json:"wrong"`
	WrongRate float64 `json:"wrong_rate"`
}

// ErrorCount is how often an error type was diagnosed.
type ErrorCount struct {
	ErrorType diagnosis.ErrorType `json:"error_type"`
	Count     int                 `json:"count"`
}

// Difficulty is the per-student difficulty breakdown.
type Difficulty struct {
	Attempts       int          `json:"attempts"`
	ByCategory     []Bucket     `json:"by_interessekategori"`
	ByPattern      []Bucket     `json:"by_stavemoenster"`
	ByDyslexiaType []Bucket     `json:"by_ordblind_type"`
	ErrorTypes     []ErrorCount `json:"error_types"`
}

// Build groups records by each dimension and counts diagnosed error types.
// Wrong means the stored strict flag is false.
func Build(records []session.Record, words session.WordLookup) (*Difficulty, error) {
	groups := make(map[Dimension]map[string]*Bucket, len(Dimensions))
	for _, d := range Dimensions {
		groups[d] = make(map[string]*Bucket)
	}
	errCounts := make(map[diagnosis.ErrorType]int)

	for _, r := range records {
		md, err := words.WordMetadata(r.WordID)
		if err != nil {
			return nil, fmt.Errorf("word %d metadata: %w", r.WordID, err)
		}
		for _, d := range Dimensions {
			k := d.key(md)
			b := groups[d][k]
			if b == nil {
				b = &Bucket{Key: k}
				groups[d][k] = b
			}
			b.Total++
			if !r.Correct {
				b.Wrong++
			}
		}
		if et := r.ErrorType(); et != "" {
			errCounts[et]++
		}
	}

	out := &Difficulty{
		Attempts:       len(records),
		ByCategory:     rank(groups[DimensionCategory]),
		ByPattern:      rank(groups[DimensionPattern]),
		ByDyslexiaType: rank(groups[DimensionDyslexiaType]),
	}
	for _, et := range diagnosis.ErrorTypes {
		if n := errCounts[et]; n > 0 {
			out.ErrorTypes = append(out.ErrorTypes, ErrorCount{ErrorType: et, Count: n})
		}
	}
	return out, nil
}

// rank orders buckets hardest first: wrong rate, then wrong count, then
// total, all descending, with the key as the final tie-break.
func rank(m map[string]*Bucket) []Bucket {
	out := make([]Bucket, 0, len(m))
	for _, b := range m {
		if b.Total > 0 {
			b.WrongRate = float64(b.Wrong) / float64(b.Total)
		}
		out = append(out, *b)
	}
	slices.SortFunc(out, func(a, b Bucket) int {
		return cmp.Or(
			cmp.Compare(b.WrongRate, a.WrongRate),
			cmp.Compare(b.Wrong, a.Wrong),
			cmp.Compare(b.Total, a.Total),
			cmp.Compare(a.Key, b.Key),
		)
	})
	if len(out) > MaxBuckets {
		out = out[:MaxBuckets]
	}
	return out
}

// Drilldown returns the records whose word falls in bucket key of dimension
// d, newest first. Only the newest DrilldownWindow records are scanned.
// records must be in the order they were stored.
func Drilldown(records []session.Record, words session.WordLookup, d Dimension, key string) ([]session.Record, error) {
	if !slices.Contains(Dimensions, d) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDimension, d)
	}
	oldest := max(0, len(records)-DrilldownWindow)
	var out []session.Record
	for i := len(records) - 1; i >= oldest; i-- {
		r := records[i]
		md, err := words.WordMetadata(r.WordID)
		if err != nil {
			return nil, fmt.Errorf("word %d metadata: %w", r.WordID, err)
		}
		if d.key(md) == key {
			out = append(out, r)
		}
	}
	return out, nil
}
