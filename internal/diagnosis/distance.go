package diagnosis

// BoundedDistance approximates the edit distance between a and b. It is
// exact for 0 and 1 and returns 2 for anything further apart; callers only
// compare the result against 1. Strings are compared rune by rune.
func BoundedDistance(a, b string) int {
	if a == b {
		return 0
	}
	ra, rb := []rune(a), []rune(b)
	if abs(len(ra)-len(rb)) > 1 {
		return 2
	}

	i, j, edits := 0, 0, 0
	for i < len(ra) && j < len(rb) {
		if ra[i] == rb[j] {
			i++
			j++
			continue
		}
		edits++
		if edits > 1 {
			return edits
		}
		// Skip one rune of the longer string (deletion), or one of each
		// when lengths match (substitution).
		switch {
		case len(ra) > len(rb):
			i++
		case len(rb) > len(ra):
			j++
		default:
			i++
			j++
		}
	}
	if i < len(ra) || j < len(rb) {
		edits++
	}
	return edits
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// NearMatchRule fires when the words are at most one edit apart.
type NearMatchRule struct{}

func (NearMatchRule) Name() string { return "near-match" }

func (NearMatchRule) Apply(exp, rec string) (Result, bool) {
	if BoundedDistance(exp, rec) > 1 {
		return Result{}, false
	}
	return wrong(ErrorNearMatch, feedbackNearMatch.Detail), true
}
