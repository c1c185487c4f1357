package search

import (
	"github.com/hyperjump/souq/internal/fuzzy"
	"github.com/hyperjump/souq/internal/intent"
	"github.com/hyperjump/souq/internal/textnorm"
)

// Suggestions proposes alternate search terms for a query that found nothing.
type Suggestions struct {
	byLang map[string]*fuzzy.Suggester
	max    int
}

// NewSuggestions builds suggesters over the Arabic and English keyword vocabulary.
func NewSuggestions(max int) *Suggestions {
	if max <= 0 {
		max = 5
	}
	return &Suggestions{
		byLang: map[string]*fuzzy.Suggester{
			"ar": fuzzy.NewSuggester(intent.Vocabulary("ar"), fuzzy.WithMaxSuggestions(2)),
			"en": fuzzy.NewSuggester(intent.Vocabulary("en"), fuzzy.WithMaxSuggestions(2)),
		},
		max: max,
	}
}

// For returns up to max vocabulary terms close to the keywords no facet explained,
// each looked up in the vocabulary of its own script, topped up with popular
// categories in lang so that the list is never empty. No query keyword is suggested
// back.
func (s *Suggestions) For(in intent.SearchIntent, lang string) []string {
	if lang != "ar" {
		lang = "en"
	}
	seen := make(map[string]bool, len(in.Keywords))
	for _, k := range in.Keywords {
		seen[k] = true
	}

	out := make([]string, 0, s.max)
	add := func(terms []string) {
		for _, t := range terms {
			if len(out) >= s.max {
				return
			}
			if seen[t] {
				continue
			}
			seen[t] = true
			out = append(out, t)
		}
	}
	for _, k := range in.Unmatched {
		sg := s.byLang["en"]
		if textnorm.IsArabic(k) {
			sg = s.byLang["ar"]
		}
		add(sg.SuggestTerms([]string{k}, 0))
	}
	add(intent.PopularTerms(lang))
	return out
}
