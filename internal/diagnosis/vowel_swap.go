package diagnosis

import (
	"strings"
	"unicode/utf8"
)

// Vowels are the Danish vowels removed when comparing consonant skeletons.
const Vowels = "aeiouyæøå"

// ConsonantPattern returns s with every vowel removed.
func ConsonantPattern(s string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(Vowels, r) {
			return -1
		}
		return r
	}, s)
}

// VowelSwapRule fires when both words have the same length and the same
// consonants in the same order, so only vowels differ.
type VowelSwapRule struct{}

func (VowelSwapRule) Name() string { return "vowel-swap" }

func (VowelSwapRule) Apply(exp, rec string) (Result, bool) {
	if utf8.RuneCountInString(exp) != utf8.RuneCountInString(rec) {
		return Result{}, false
	}
	if ConsonantPattern(exp) != ConsonantPattern(rec) {
		return Result{}, false
	}
	return wrong(ErrorVowelSwap, feedbackVowelSwap.Detail), true
}
