// Package matcher implements the name filters accepted by the CLI listings.
package matcher

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Match reports whether candidate satisfies pattern. "*" matches everything,
// an empty pattern nothing, patterns with glob metacharacters use glob rules
// and anything else is a prefix.
func Match(pattern, candidate string) bool {
	switch pattern {
	case "*":
		return true
	case "":
		return false
	}
	if strings.ContainsAny(pattern, "*?[") {
		ok, _ := doublestar.Match(pattern, candidate)
		return ok
	}
	return strings.HasPrefix(candidate, pattern)
}

// Filter keeps the candidates matching any of patterns; no patterns keeps all.
func Filter(candidates []string, patterns ...string) []string {
	if len(patterns) == 0 {
		return candidates
	}
	var ret []string
	for _, candidate := range candidates {
		for _, pattern := range patterns {
			if Match(pattern, candidate) {
				ret = append(ret, candidate)
				break
			}
		}
	}
	return ret
}
