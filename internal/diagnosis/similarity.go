package diagnosis

import (
	"github.com/antzucaro/matchr"

	"github.com/abhisek/laesemaskine/internal/normalize"
)

// Similarity returns the Jaro-Winkler similarity (0.0–1.0) of the
// edge-normalized words, or 0 if either is empty. It is recorded for
// reporting and never consulted by the rules.
func Similarity(expected, recognized string) float64 {
	exp := normalize.Edge(expected)
	rec := normalize.Edge(recognized)
	if exp == "" || rec == "" {
		return 0
	}
	return matchr.JaroWinkler(exp, rec, false)
}

// SoundsAlike reports whether the Double Metaphone codes of the two
// edge-normalized words overlap.
func SoundsAlike(expected, recognized string) bool {
	exp := normalize.Edge(expected)
	rec := normalize.Edge(recognized)
	if exp == "" || rec == "" {
		return false
	}
	ep, es := matchr.DoubleMetaphone(exp)
	rp, rs := matchr.DoubleMetaphone(rec)
	for _, a := range []string{ep, es} {
		if a == "" {
			continue
		}
		if a == rp || a == rs {
			return true
		}
	}
	return false
}
