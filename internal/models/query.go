package models

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// MinQueryLength is the shortest trimmed query the engine accepts, in characters.
const MinQueryLength = 2

// SearchQuery is one customer search request.
type SearchQuery struct {
	Query    string `json:"query"`
	Limit    int    `json:"limit,omitempty"`
	Language string `json:"language,omitempty"` // "ar" or "en"; guessed from the query when empty
}

// Validate trims the query, checks its length and normalizes limit into [1, maxLimit].
// It returns an error wrapping ErrInvalidInput for queries that are too short.
func (q *SearchQuery) Validate(defaultLimit, maxLimit int) error {
	q.Query = strings.TrimSpace(q.Query)
	if utf8.RuneCountInString(q.Query) < MinQueryLength {
		return fmt.Errorf("%w: query must be at least %d characters", ErrInvalidInput, MinQueryLength)
	}
	if defaultLimit <= 0 {
		defaultLimit = 5
	}
	if maxLimit <= 0 {
		maxLimit = 50
	}
	if q.Limit <= 0 {
		q.Limit = defaultLimit
	}
	if q.Limit > maxLimit {
		q.Limit = maxLimit
	}
	q.Language = strings.ToLower(strings.TrimSpace(q.Language))
	if q.Language != "" && q.Language != "ar" && q.Language != "en" {
		return fmt.Errorf("%w: unsupported language %q", ErrInvalidInput, q.Language)
	}
	return nil
}
