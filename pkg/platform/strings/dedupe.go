// Package strings holds small helpers for comma-separated inputs from query
// strings and environment variables.
package strings

import (
	"slices"
	"strings"
)

// SplitList splits every value on commas, trims each part, drops empty parts
// and duplicates. Order of first appearance is preserved.
func SplitList(values ...string) []string {
	var out []string
	for _, v := range values {
		for part := range strings.SplitSeq(v, ",") {
			p := strings.TrimSpace(part)
			if p != "" && !slices.Contains(out, p) {
				out = append(out, p)
			}
		}
	}
	return out
}

// SplitListLower is SplitList with case folded before deduplication.
func SplitListLower(values ...string) []string {
	lowered := make([]string, len(values))
	for i, v := range values {
		lowered[i] = strings.ToLower(v)
	}
	return SplitList(lowered...)
}
