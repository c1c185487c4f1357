// Package utils provides shared utilities for text, numbers, and logging.
package utils

import "strings"

// Truncate returns s truncated to maxLen characters, with "..." appended if truncated.
// Characters are runes, so Arabic text is never cut inside a letter. Truncation
// backs up to the last space when one is close. If maxLen is 0 or negative, returns s
// unchanged.
func Truncate(s string, maxLen int) string {
	runes := []rune(s)
	if maxLen <= 0 || len(runes) <= maxLen {
		return s
	}
	cut := string(runes[:maxLen])
	if i := strings.LastIndexByte(cut, ' '); i > 0 && len([]rune(cut[i:])) <= 10 {
		cut = cut[:i]
	}
	return strings.TrimSpace(cut) + "..."
}
