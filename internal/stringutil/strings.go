// Package stringutil provides common string manipulation utilities.
package stringutil

import (
	"strings"
	"unicode/utf8"
)

// ContainsAny reports whether s contains any of the substrings.
// Matching is plain substring containment; callers lowercase both sides.
func ContainsAny(s string, substrs ...string) bool {
	for _, sub := range substrs {
		if sub != "" && strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// CollapseSpace trims s and replaces every run of whitespace with one space.
// Scraped HTML text is full of newlines and indentation.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Truncate shortens s to at most maxRunes runes, appending "..." when cut.
func Truncate(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxRunes {
		return s
	}
	runes := []rune(s)
	if maxRunes <= 3 {
		return string(runes[:maxRunes])
	}
	return string(runes[:maxRunes-3]) + "..."
}
