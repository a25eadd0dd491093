// Package tags keeps the deduplicated tag vocabulary accumulated across
// items. Tags only accumulate; there is no removal.
package tags

import "strings"

// Register returns current plus any trimmed, non-empty values from incoming
// that are not already present. Matching is exact and case-sensitive;
// existing entries keep their order.
func Register(current []string, incoming []string) []string {
	out := append([]string(nil), current...)
	seen := make(map[string]struct{}, len(out))
	for _, t := range out {
		seen[t] = struct{}{}
	}
	for _, t := range incoming {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
