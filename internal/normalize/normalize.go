// Package normalize holds the two text normalizations applied to spoken
// words. Edge only trims non-letters at the ends of a word and feeds the
// diagnosis rules. Strict drops every non-alphanumeric rune and decides the
// correctness flag stored with an attempt. The two are kept apart on purpose:
// they disagree on words with interior punctuation or digits.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// danishLetters are the letters accepted beyond a-z.
const danishLetters = "æøå"

// IsWordLetter reports whether r is one of the 29 letters of the Danish
// alphabet (lower case).
func IsWordLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || strings.ContainsRune(danishLetters, r)
}

// lower applies full Unicode case mapping. cases.Caser is stateful, so a
// fresh one is built per call.
func lower(s string) string {
	return cases.Lower(language.Und).String(s)
}

// Edge lower-cases s and trims the maximal runs of non-letters at both ends.
// Interior characters are kept verbatim.
func Edge(s string) string {
	if s == "" {
		return ""
	}
	s = lower(strings.TrimSpace(s))
	return strings.TrimFunc(s, func(r rune) bool { return !IsWordLetter(r) })
}

// Strict lower-cases s and keeps only letters and digits, anywhere in the
// string.
func Strict(s string) string {
	s = lower(strings.TrimSpace(s))
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// IsCorrectStrict reports whether recognized matches expected after strict
// normalization. An expected word that normalizes to nothing never matches.
func IsCorrectStrict(expected, recognized string) bool {
	exp := Strict(expected)
	return exp != "" && exp == Strict(recognized)
}
