/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package neardle

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// Ratio returns the gestalt similarity of a and b in [0,1]: twice the
// number of characters in matching blocks over the total length. The
// block search is order dependent on ties, so both orders are tried and
// the larger score wins.
func Ratio(a, b string) float64 {
	ra, rb := characters(a), characters(b)

	if len(ra)+len(rb) == 0 {
		return 1.0
	}
	if len(ra) == 0 || len(rb) == 0 {
		return 0.0
	}

	return max(ratio(ra, rb), ratio(rb, ra))
}

// ratio compares character sequences without the junk heuristic, which
// would otherwise ignore frequent characters in long titles.
func ratio(a, b []string) float64 {
	return difflib.NewMatcherWithJunk(a, b, false, nil).Ratio()
}

func characters(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}

// IsContained reports whether every normalized token of guess is a
// substring of at least one normalized token of reference. An empty guess
// always matches.
func IsContained(reference, guess string) bool {
	refTokens := strings.Fields(Normalize(reference))

	for _, g := range strings.Fields(Normalize(guess)) {
		found := false
		for _, r := range refTokens {
			if strings.Contains(r, g) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	return true
}
