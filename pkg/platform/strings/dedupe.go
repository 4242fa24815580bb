// Package strings provides string list helpers for configuration parsing.
package strings

import (
	"strings"
)

// DedupeAndTrim trims each element and drops empty and repeated values.
// Order of first occurrence is preserved.
//
// Example:
//
//	DedupeAndTrim([]string{"  core.* ", "eventstream", "core.*", ""})
//	// Returns: []string{"core.*", "eventstream"}
func DedupeAndTrim(values []string) []string {
	if len(values) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))

	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; !ok {
			seen[trimmed] = struct{}{}
			result = append(result, trimmed)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}

// SplitList splits a comma separated value and applies DedupeAndTrim.
func SplitList(v string) []string {
	return DedupeAndTrim(strings.Split(v, ","))
}
