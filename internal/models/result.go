package models

import "github.com/hyperjump/souq/internal/intent"

// StrategyReport records what one retrieval strategy contributed to a search.
type StrategyReport struct {
	Name       string `json:"name"`
	Terms      string `json:"terms,omitempty"`
	Candidates int    `json:"candidates"`
	Error      string `json:"error,omitempty"`
}

// SearchResponse is the response for a search request.
type SearchResponse struct {
	RequestID string              `json:"request_id"`
	Query     string              `json:"query"`
	Language  string              `json:"language"`
	Intent    intent.SearchIntent `json:"intent"`
	// Results are the included candidates, best first, at most the requested limit.
	Results []*ScoredCandidate `json:"results"`
	// Total is the number of candidates that passed filtering before the limit was applied.
	Total int `json:"total"`
	// Pooled is the number of unique candidates the strategies retrieved.
	Pooled      int              `json:"pooled"`
	Strategies  []StrategyReport `json:"strategies,omitempty"`
	Suggestions []string         `json:"suggestions,omitempty"`
	QueryTime   int64            `json:"query_time_ms"`
}
