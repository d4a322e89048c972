package diagnosis

import "github.com/abhisek/laesemaskine/internal/normalize"

// Rule is one step of the diagnosis chain. Apply receives edge-normalized,
// non-empty words and returns ok=false when the rule does not fire.
type Rule interface {
	Name() string
	Apply(exp, rec string) (Result, bool)
}

// DefaultRules returns the rules in priority order. The first rule that
// fires decides the diagnosis; FallbackRule always fires.
func DefaultRules() []Rule {
	return []Rule{
		ExactMatchRule{},
		&MissingEndingRule{Endings: Endings},
		&ExtraEndingRule{Endings: Endings},
		NearMatchRule{},
		VowelSwapRule{},
		&ClusterRule{Clusters: Clusters},
		FallbackRule{},
	}
}

var defaultRules = DefaultRules()

// RunRules executes rules in order on already normalized words.
// Returns the first hit and the name of the rule that produced it, or the
// zero Result and "" if no rule fires.
func RunRules(rules []Rule, exp, rec string) (Result, string) {
	for _, r := range rules {
		if res, ok := r.Apply(exp, rec); ok {
			return res, r.Name()
		}
	}
	return Result{}, ""
}

// Classify edge-normalizes both words and runs rules on them. Empty input on
// either side yields the neutral result and rule name "".
func Classify(rules []Rule, expected, recognized string) (Result, string) {
	exp := normalize.Edge(expected)
	rec := normalize.Edge(recognized)
	if exp == "" || rec == "" {
		return Result{}, ""
	}
	return RunRules(rules, exp, rec)
}

// Diagnose classifies recognized against expected with the default rules.
// It is a pure function of its arguments.
func Diagnose(expected, recognized string) Result {
	res, _ := Classify(defaultRules, expected, recognized)
	return res
}

// ExactMatchRule fires when both words are identical.
type ExactMatchRule struct{}

func (ExactMatchRule) Name() string { return "exact-match" }

func (ExactMatchRule) Apply(exp, rec string) (Result, bool) {
	if exp != rec {
		return Result{}, false
	}
	return Result{
		Correct:       true,
		MessageShort:  feedbackCorrect.Short,
		MessageDetail: feedbackCorrect.Detail,
	}, true
}

// FallbackRule always fires with ErrorOther.
type FallbackRule struct{}

func (FallbackRule) Name() string { return "other" }

func (FallbackRule) Apply(_, _ string) (Result, bool) {
	return wrong(ErrorOther, feedbackOther.Detail), true
}
