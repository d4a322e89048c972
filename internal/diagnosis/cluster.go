package diagnosis

import (
	"fmt"
	"strings"
)

// Clusters are the Danish initial consonant clusters, longest first.
var Clusters = []string{
	"str", "skr", "spr", "spl", "skl",
	"sk", "sp", "st", "tr", "dr", "br", "bl", "kl", "kr", "gr", "gl", "pl", "pr",
}

// ClusterRule fires when the expected word opens with a cluster and the
// recognized word opens with that cluster minus its first letter. Only the
// prefix is compared.
type ClusterRule struct {
	Clusters []string
}

func (r *ClusterRule) Name() string { return "cluster-issue" }

func (r *ClusterRule) Apply(exp, rec string) (Result, bool) {
	for _, cl := range r.Clusters {
		if strings.HasPrefix(exp, cl) && strings.HasPrefix(rec, dropFirstRune(cl)) {
			return wrong(ErrorClusterIssue, fmt.Sprintf("Konsonantklyngen '%s-' kan være svær her.", cl)), true
		}
	}
	return Result{}, false
}
