package ranking

import (
	"strings"
	"unicode/utf8"

	"github.com/kljensen/snowball"

	"github.com/hyperjump/souq/internal/fuzzy"
	"github.com/hyperjump/souq/internal/models"
	"github.com/hyperjump/souq/internal/textnorm"
)

// minFuzzyRunes is the shortest product token compared by similarity; shorter tokens
// only match exactly.
const minFuzzyRunes = 4

// productText is the normalized, tokenized text of one candidate.
type productText struct {
	tokens   []string
	variants [][]string
}

func newProductText(c *models.Candidate) *productText {
	parts := []string{c.Name, c.Description, c.Category, c.Material}
	norm := textnorm.Normalize(strings.Join(parts, " "), textnorm.LangArabic)
	tokens := textnorm.Tokens(norm)
	pt := &productText{tokens: tokens, variants: make([][]string, len(tokens))}
	for i, tok := range tokens {
		if textnorm.IsArabic(tok) {
			pt.variants[i] = textnorm.TokenVariants(tok)
			continue
		}
		pt.variants[i] = []string{tok}
		if st := stem(tok); st != tok {
			pt.variants[i] = append(pt.variants[i], st)
		}
	}
	return pt
}

// stem reduces an English word to its snowball stem so that "dresses" meets "dress".
func stem(word string) string {
	st, err := snowball.Stem(word, "english", true)
	if err != nil || st == "" {
		return word
	}
	return st
}

// contains reports whether the words of phrase appear as consecutive tokens.
func (pt *productText) contains(phrase string) bool {
	words := strings.Fields(phrase)
	if len(words) == 0 {
		return false
	}
	for start := 0; start+len(words) <= len(pt.tokens); start++ {
		ok := true
		for k, w := range words {
			if !pt.hasVariant(start+k, w) {
				ok = false
				break
			}
		}
		if ok {
			return true
		}
	}
	return false
}

func (pt *productText) hasVariant(i int, word string) bool {
	alt := word
	if !textnorm.IsArabic(word) {
		alt = stem(word)
	}
	for _, v := range pt.variants[i] {
		if v == word || v == alt {
			return true
		}
	}
	return false
}

// hits counts the distinct phrases found exactly, plus product tokens that match a
// single-word phrase by similarity at or above threshold. Each token contributes at
// most one fuzzy hit and tokens already explained by an exact phrase contribute none.
func (pt *productText) hits(phrases []string, threshold float64) int {
	n := 0
	exact := make(map[string]bool)
	for _, p := range phrases {
		if pt.contains(p) {
			n++
			for _, w := range strings.Fields(p) {
				exact[w] = true
			}
		}
	}
	if threshold <= 0 {
		return n
	}

	var single []string
	for _, p := range phrases {
		if !strings.Contains(p, " ") {
			single = append(single, p)
		}
	}
	for i, tok := range pt.tokens {
		if utf8.RuneCountInString(tok) < minFuzzyRunes || explained(pt.variants[i], exact) {
			continue
		}
		for _, v := range pt.variants[i] {
			if fuzzyHit(v, single, threshold) {
				n++
				break
			}
		}
	}
	return n
}

func explained(variants []string, exact map[string]bool) bool {
	for _, v := range variants {
		if exact[v] {
			return true
		}
	}
	return false
}

// fuzzyHit compares word against keywords sharing its first letter, which keeps
// unrelated words of similar shape apart.
func fuzzyHit(word string, keywords []string, threshold float64) bool {
	first, _ := utf8.DecodeRuneInString(word)
	var pool []string
	for _, k := range keywords {
		r, _ := utf8.DecodeRuneInString(k)
		if r == first && utf8.RuneCountInString(k) >= minFuzzyRunes {
			pool = append(pool, k)
		}
	}
	_, ok := fuzzy.BestMatch(word, pool, threshold)
	return ok
}
