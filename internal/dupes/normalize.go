package dupes

import (
	"strings"

	"connscan/internal/model"
)

// Signature folds a function body into its structure-only form: identifiers,
// literals and formatting are gone, only the ordered statement-kind sequence
// remains.
func Signature(fn *model.FunctionNode) string {
	if len(fn.Body) == 0 {
		return ""
	}
	kinds := make([]string, len(fn.Body))
	for i, kind := range fn.Body {
		kinds[i] = string(kind)
	}
	return strings.Join(kinds, ",")
}

// tokens splits a signature back into its statement-kind sequence.
func tokens(signature string) []string {
	if signature == "" {
		return nil
	}
	return strings.Split(signature, ",")
}

// lcsRatio is the longest-common-subsequence similarity of two token
// sequences, normalized to [0,1].
func lcsRatio(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
			} else if prev[j] >= curr[j-1] {
				curr[j] = prev[j]
			} else {
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}

	lcs := prev[len(b)]
	return 2 * float64(lcs) / float64(len(a)+len(b))
}
