package diagnosis

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Endings are the inflectional suffixes checked by the ending rules. The
// order is the priority order, not strictly longest first.
var Endings = []string{"ende", "ene", "ede", "er", "et", "en", "e", "r"}

// MissingEndingRule fires when the recognized word is the expected word with
// an ending dropped, or with only the last letter of a multi-letter ending
// dropped.
type MissingEndingRule struct {
	Endings []string
}

func (r *MissingEndingRule) Name() string { return "missing-ending" }

func (r *MissingEndingRule) Apply(exp, rec string) (Result, bool) {
	for _, end := range r.Endings {
		if !strings.HasSuffix(exp, end) {
			continue
		}
		stem := strings.TrimSuffix(exp, end)
		if rec == stem {
			return wrong(ErrorMissingEnding, fmt.Sprintf("Du mangler endelsen -%s.", end)), true
		}
		if utf8.RuneCountInString(end) > 1 && rec == stem+dropLastRune(end) {
			return wrong(ErrorMissingEnding, fmt.Sprintf("Endelsen -%s er ikke helt tydelig.", end)), true
		}
	}
	return Result{}, false
}

// ExtraEndingRule fires when the recognized word is the expected word plus
// one of the endings.
type ExtraEndingRule struct {
	Endings []string
}

func (r *ExtraEndingRule) Name() string { return "extra-ending" }

func (r *ExtraEndingRule) Apply(exp, rec string) (Result, bool) {
	for _, end := range r.Endings {
		if strings.HasSuffix(rec, end) && exp == strings.TrimSuffix(rec, end) {
			return wrong(ErrorExtraEnding, fmt.Sprintf("Der kom en ekstra endelse -%s.", end)), true
		}
	}
	return Result{}, false
}

func dropLastRune(s string) string {
	_, size := utf8.DecodeLastRuneInString(s)
	return s[:len(s)-size]
}

func dropFirstRune(s string) string {
	_, size := utf8.DecodeRuneInString(s)
	return s[size:]
}
