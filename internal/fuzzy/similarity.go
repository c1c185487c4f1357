// Package fuzzy provides typo-tolerant string similarity and term suggestions.
package fuzzy

import (
	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Match is the best candidate found by BestMatch.
type Match struct {
	Term  string
	Index int
	Score float64
}

// Similarity returns a score in [0, 1] for how alike a and b are. It averages the
// normalized Levenshtein similarity with an LCS-based ratio, which is less sensitive
// to length differences. Two empty strings are identical; empty vs non-empty is 0.
// Similarity is symmetric.
func Similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	runesA := []rune(a)
	runesB := []rune(b)
	if len(runesA) == 0 || len(runesB) == 0 {
		return 0.0
	}
	maxLen := max(len(runesA), len(runesB))
	levScore := 1.0 - float64(fuzzy.LevenshteinDistance(a, b))/float64(maxLen)
	return (levScore + Ratio(runesA, runesB)) / 2
}

// Ratio returns 2*LCS(a, b) / (len(a)+len(b)), where LCS is the longest common
// subsequence length.
func Ratio(a, b []rune) float64 {
	total := len(a) + len(b)
	if total == 0 {
		return 1.0
	}
	return 2 * float64(lcsLength(a, b)) / float64(total)
}

// lcsLength computes the longest common subsequence length with two rolling rows.
func lcsLength(a, b []rune) int {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		curr[0] = 0
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
			} else {
				curr[j] = max(prev[j], curr[j-1])
			}
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

// BestMatch returns the candidate with the highest similarity to term, provided it
// reaches threshold. Ties keep the earliest candidate.
func BestMatch(term string, candidates []string, threshold float64) (Match, bool) {
	best := Match{Index: -1}
	for i, c := range candidates {
		score := Similarity(term, c)
		if score < threshold || (best.Index >= 0 && score <= best.Score) {
			continue
		}
		best = Match{Term: c, Index: i, Score: score}
	}
	if best.Index < 0 {
		return Match{}, false
	}
	return best, true
}
