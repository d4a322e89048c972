// Package catalog holds the word catalog: the words a student can be asked
// to read, with their skill level and the descriptive tags used for
// reporting. A Catalog is built once and shared read-only.
package catalog

import (
	"encoding/json"
	"strings"
)

// Text is a descriptive catalog field. Spreadsheet exports store these as
// strings, numbers or null; all of them are read as text.
type Text string

// UnmarshalJSON accepts a JSON string, number, boolean or null.
func (t *Text) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	switch {
	case raw == "null":
		*t = ""
	case strings.HasPrefix(raw, `"`):
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = Text(s)
	default:
		*t = Text(raw)
	}
	return nil
}

// MarshalJSON encodes the empty Text as null.
func (t Text) MarshalJSON() ([]byte, error) {
	if t == "" {
		return []byte("null"), nil
	}
	return json.Marshal(string(t))
}

// Word is one catalog entry. JSON names follow the words.json export.
type Word struct {
	ID           int            `json:"id"`
	Ord          string         `json:"ord"`
	Level        *int           `json:"niveau"`
	Phase        Text           `json:"fase"`
	Letters      Text           `json:"bogstaver"`
	Syllables    Text           `json:"stavelser"`
	Regularity   Text           `json:"lydrethed"`
	Pattern      Text           `json:"stavemoenster"`
	Morphology   Text           `json:"morfologi"`
	WordClass    Text           `json:"ordklasse"`
	Category     Text           `json:"interessekategori"`
	DyslexiaRisk Text           `json:"ordblind_risiko"`
	DyslexiaType Text           `json:"ordblind_type"`
	Frequency    Text           `json:"hyppighed"`
	Comment      Text           `json:"kommentar"`
	Raw          map[string]any `json:"raw,omitempty"`
}

// Metadata is the part of a word that scoring and reporting need.
type Metadata struct {
	Level        *int
	Category     string
	Pattern      string
	DyslexiaType string
}

// Metadata returns the scoring and reporting view of w.
func (w Word) Metadata() Metadata {
	return Metadata{
		Level:        w.Level,
		Category:     string(w.Category),
		Pattern:      string(w.Pattern),
		DyslexiaType: string(w.DyslexiaType),
	}
}

// Payload is the on-disk words.json document.
type Payload struct {
	Version   string `json:"version"`
	Generated string `json:"generated"`
	Sheet     string `json:"sheet"`
	Count     int    `json:"count"`
	Words     []Word `json:"words"`
}
