package session

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/abhisek/laesemaskine/internal/catalog"
	"github.com/abhisek/laesemaskine/internal/diagnosis"
)

const epsilon = 0.0001

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < epsilon
}

func intp(n int) *int { return &n }

// lookupFunc adapts a function to WordLookup.
type lookupFunc func(id int) (catalog.Metadata, error)

func (f lookupFunc) WordMetadata(id int) (catalog.Metadata, error) { return f(id) }

func levels(m map[int]int) WordLookup {
	return lookupFunc(func(id int) (catalog.Metadata, error) {
		if l, ok := m[id]; ok {
			return catalog.Metadata{Level: intp(l)}, nil
		}
		return catalog.Metadata{}, nil
	})
}

func TestParseOptionalInt(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want *int
	}{
		{"nil", nil, nil},
		{"int", 1200, intp(1200)},
		{"float truncates", 1200.9, intp(1200)},
		{"int string", " 850 ", intp(850)},
		{"fraction string", "850.5", nil},
		{"garbage", "fast", nil},
		{"empty", "", nil},
		{"bool", true, nil},
		{"json int", json.Number("42"), intp(42)},
		{"json float", json.Number("42.7"), intp(42)},
		{"nan", math.NaN(), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseOptionalInt(tt.in)
			switch {
			case tt.want == nil && got != nil:
				t.Errorf("ParseOptionalInt(%v) = %d, want nil", tt.in, *got)
			case tt.want != nil && got == nil:
				t.Errorf("ParseOptionalInt(%v) = nil, want %d", tt.in, *tt.want)
			case tt.want != nil && *got != *tt.want:
				t.Errorf("ParseOptionalInt(%v) = %d, want %d", tt.in, *got, *tt.want)
			}
		})
	}
}

func TestEvaluate(t *testing.T) {
	r := Evaluate(Attempt{WordID: 1, Expected: "hunde", Recognized: "hund"})
	if r.Correct {
		t.Error("Correct = true, want false")
	}
	if r.ErrorType() != diagnosis.ErrorMissingEnding {
		t.Errorf("ErrorType = %q, want %q", r.ErrorType(), diagnosis.ErrorMissingEnding)
	}
	if r.Similarity <= 0 || r.Similarity >= 1 {
		t.Errorf("Similarity = %f, want between 0 and 1", r.Similarity)
	}

	r = Evaluate(Attempt{Expected: "Hund", Recognized: "hund."})
	if !r.Correct || !r.Diagnosis.Correct {
		t.Errorf("Correct = %v / %v, want true / true", r.Correct, r.Diagnosis.Correct)
	}
}

// The strict flag accepts "hun-d" for "hund"; the classifier does not and
// still reports an error type. Both are kept as computed.
func TestEvaluate_StrictFlagIndependentOfDiagnosis(t *testing.T) {
	r := Evaluate(Attempt{Expected: "hun-d", Recognized: "hund"})
	if !r.Correct {
		t.Error("strict Correct = false, want true")
	}
	if r.Diagnosis.Correct {
		t.Error("Diagnosis.Correct = true, want false")
	}
	if r.ErrorType() == "" {
		t.Error("ErrorType should be set even though the strict flag is true")
	}
}

func TestEvaluate_EmptyExpected(t *testing.T) {
	r := Evaluate(Attempt{Expected: "", Recognized: ""})
	if r.Correct {
		t.Error("empty expected word must never be correct")
	}
	if !r.Diagnosis.IsNeutral() {
		t.Errorf("Diagnosis = %+v, want neutral", r.Diagnosis)
	}
}

func TestTally(t *testing.T) {
	records := EvaluateAll([]Attempt{
		{Expected: "hund", Recognized: "hund"},
		{Expected: "kat", Recognized: "kat"},
		{Expected: "bil", Recognized: "bal"},
	})
	got := Tally(records)
	if got.TotalWords != 3 || got.CorrectTotal != 2 {
		t.Errorf("Tally = %+v, want 3/2", got)
	}
	if !almostEqual(got.Accuracy(), 2.0/3.0) {
		t.Errorf("Accuracy = %f", got.Accuracy())
	}
	if (Totals{}).Accuracy() != 0 {
		t.Error("empty Accuracy should be 0")
	}
}

func TestSpeedNorm(t *testing.T) {
	tests := []struct {
		rt, visible int
		want        float64
	}{
		{0, 2000, 1},
		{500, 2000, 0.75},
		{2000, 2000, 0},
		{5000, 2000, 0},
		{-1000, 2000, 1},
	}
	for _, tt := range tests {
		if got := SpeedNorm(tt.rt, tt.visible); !almostEqual(got, tt.want) {
			t.Errorf("SpeedNorm(%d, %d) = %f, want %f", tt.rt, tt.visible, got, tt.want)
		}
	}
}

func TestGroupByLevel(t *testing.T) {
	records := []Record{
		{Attempt: Attempt{WordID: 1, ResponseTimeMs: intp(500), VisibleMs: intp(2000)}, Correct: true},
		{Attempt: Attempt{WordID: 2, ResponseTimeMs: intp(1000), VisibleMs: intp(2000)}, Correct: true},
		{Attempt: Attempt{WordID: 2, ResponseTimeMs: intp(100), VisibleMs: intp(2000)}, Correct: false},
		{Attempt: Attempt{WordID: 3, ResponseTimeMs: intp(100)}, Correct: true},
		{Attempt: Attempt{WordID: 99}, Correct: true},
	}
	stats, err := GroupByLevel(records, levels(map[int]int{1: 2, 2: 2, 3: 5}), intp(4))
	if err != nil {
		t.Fatalf("GroupByLevel: %v", err)
	}

	if got := SortedLevels(stats); len(got) != 3 || got[0] != 2 || got[1] != 4 || got[2] != 5 {
		t.Fatalf("levels = %v, want [2 4 5]", got)
	}

	l2 := stats[2]
	if l2.Total != 3 || l2.Correct != 2 {
		t.Errorf("level 2 = %+v, want total 3 correct 2", l2)
	}
	if l2.SpeedCount != 2 || !almostEqual(l2.SpeedSum, 0.75+0.5) {
		t.Errorf("level 2 speed = %f/%d, want 1.25/2", l2.SpeedSum, l2.SpeedCount)
	}

	// Missing visible time: counted, no speed sample.
	l5 := stats[5]
	if l5.Total != 1 || l5.Correct != 1 || l5.SpeedCount != 0 {
		t.Errorf("level 5 = %+v", l5)
	}
	if _, ok := l5.Speed(); ok {
		t.Error("level 5 should have no speed")
	}

	// Unknown word falls back to the estimated level.
	if stats[4] == nil || stats[4].Total != 1 {
		t.Errorf("level 4 = %+v, want one fallback attempt", stats[4])
	}
}

func TestGroupByLevel_FallbackLevelOne(t *testing.T) {
	records := []Record{{Attempt: Attempt{WordID: 7}}}
	for _, est := range []*int{nil, intp(0)} {
		stats, err := GroupByLevel(records, levels(nil), est)
		if err != nil {
			t.Fatalf("GroupByLevel: %v", err)
		}
		if stats[1] == nil || stats[1].Total != 1 {
			t.Errorf("estimated %v: stats = %v, want level 1", est, stats)
		}
	}
}

func TestGroupByLevel_ZeroVisibleTimeSkipsSpeed(t *testing.T) {
	records := []Record{{Attempt: Attempt{WordID: 1, ResponseTimeMs: intp(10), VisibleMs: intp(0)}, Correct: true}}
	stats, err := GroupByLevel(records, levels(map[int]int{1: 1}), nil)
	if err != nil {
		t.Fatalf("GroupByLevel: %v", err)
	}
	if stats[1].SpeedCount != 0 {
		t.Errorf("SpeedCount = %d, want 0", stats[1].SpeedCount)
	}
}

func TestGroupByLevel_LookupError(t *testing.T) {
	boom := errors.New("catalog unavailable")
	failing := lookupFunc(func(int) (catalog.Metadata, error) { return catalog.Metadata{}, boom })
	_, err := GroupByLevel([]Record{{Attempt: Attempt{WordID: 1}}}, failing, nil)
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want wrapped %v", err, boom)
	}
}

func TestGroupByLevel_WithCatalog(t *testing.T) {
	c := catalog.New(&catalog.Payload{Words: []catalog.Word{
		{ID: 1, Ord: "hund", Level: intp(3)},
		{ID: 2, Ord: "kat"},
	}})
	records := EvaluateAll([]Attempt{
		{WordID: 1, Expected: "hund", Recognized: "hund"},
		{WordID: 2, Expected: "kat", Recognized: "kot"},
	})
	stats, err := GroupByLevel(records, c, intp(2))
	if err != nil {
		t.Fatalf("GroupByLevel: %v", err)
	}
	if stats[3].Correct != 1 || stats[2].Total != 1 || stats[2].Correct != 0 {
		t.Errorf("stats = %+v / %+v", stats[3], stats[2])
	}
}

func TestParseFeedbackMode(t *testing.T) {
	tests := []struct {
		in   string
		want FeedbackMode
	}{
		{"per_word", FeedbackPerWord},
		{"after_test", FeedbackAfterTest},
		{" AFTER_TEST ", FeedbackAfterTest},
		{"", FeedbackPerWord},
		{"whenever", FeedbackPerWord},
	}
	for _, tt := range tests {
		if got := ParseFeedbackMode(tt.in); got != tt.want {
			t.Errorf("ParseFeedbackMode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
