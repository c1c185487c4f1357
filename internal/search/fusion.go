package search

import "github.com/hyperjump/souq/internal/models"

// Merge concatenates candidate lists in order, keeping the first occurrence of each
// catalog id. At most limit candidates are returned; limit <= 0 means no cap.
func Merge(limit int, lists ...[]*models.Candidate) []*models.Candidate {
	total := 0
	for _, l := range lists {
		total += len(l)
	}
	if limit > 0 && total > limit {
		total = limit
	}
	seen := make(map[string]bool, total)
	merged := make([]*models.Candidate, 0, total)
	for _, l := range lists {
		for _, c := range l {
			if c == nil || c.ID == "" || seen[c.ID] {
				continue
			}
			seen[c.ID] = true
			merged = append(merged, c)
			if limit > 0 && len(merged) >= limit {
				return merged
			}
		}
	}
	return merged
}

// TopNScored returns the first n results.
func TopNScored(results []models.ScoredCandidate, n int) []models.ScoredCandidate {
	if n <= 0 || n >= len(results) {
		return results
	}
	return results[:n]
}
