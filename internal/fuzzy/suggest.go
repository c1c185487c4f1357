package fuzzy

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Suggestion is a vocabulary term proposed for a query token.
type Suggestion struct {
	Term  string  // The suggested term
	Score float64 // Similarity to the original token
}

// Suggester proposes vocabulary terms close to unmatched query tokens.
type Suggester struct {
	vocabulary     []string
	minScore       float64
	maxSuggestions int
}

// SuggesterOption is a functional option for configuring Suggester.
type SuggesterOption func(*Suggester)

// WithMinScore sets the minimum similarity a vocabulary term needs to be suggested.
func WithMinScore(s float64) SuggesterOption {
	return func(sg *Suggester) {
		if s > 0 && s <= 1 {
			sg.minScore = s
		}
	}
}

// WithMaxSuggestions sets the maximum number of suggestions returned per token.
func WithMaxSuggestions(n int) SuggesterOption {
	return func(sg *Suggester) {
		if n > 0 {
			sg.maxSuggestions = n
		}
	}
}

// NewSuggester creates a Suggester over vocabulary. Duplicate terms are dropped.
func NewSuggester(vocabulary []string, opts ...SuggesterOption) *Suggester {
	seen := make(map[string]struct{}, len(vocabulary))
	vocab := make([]string, 0, len(vocabulary))
	for _, v := range vocabulary {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		vocab = append(vocab, v)
	}
	s := &Suggester{
		vocabulary:     vocab,
		minScore:       0.5,
		maxSuggestions: 3,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Suggest returns vocabulary terms similar to token, best first. A token that is a
// partial spelling of a term ("فست" for "فستان") is also suggested.
func (s *Suggester) Suggest(token string) []Suggestion {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil
	}
	tokenLen := len([]rune(token))
	suggestions := make([]Suggestion, 0)
	for _, term := range s.vocabulary {
		if term == token {
			continue
		}
		score := Similarity(token, term)
		if tokenLen >= 2 && fuzzy.MatchNormalizedFold(token, term) {
			partial := 0.6 + 0.4*float64(tokenLen)/float64(len([]rune(term)))
			score = max(score, partial)
		}
		if score < s.minScore {
			continue
		}
		suggestions = append(suggestions, Suggestion{Term: term, Score: score})
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].Score > suggestions[j].Score
	})
	if len(suggestions) > s.maxSuggestions {
		suggestions = suggestions[:s.maxSuggestions]
	}
	return suggestions
}

// SuggestTerms flattens suggestions for several tokens into unique terms, keeping
// at most limit entries.
func (s *Suggester) SuggestTerms(tokens []string, limit int) []string {
	seen := make(map[string]bool)
	out := make([]string, 0, limit)
	for _, tok := range tokens {
		for _, sg := range s.Suggest(tok) {
			if seen[sg.Term] {
				continue
			}
			seen[sg.Term] = true
			out = append(out, sg.Term)
			if limit > 0 && len(out) >= limit {
				return out
			}
		}
	}
	return out
}
