package intent

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/kljensen/snowball"

	"github.com/hyperjump/souq/internal/fuzzy"
	"github.com/hyperjump/souq/internal/textnorm"
)

// Fuzzy thresholds per detector.
const (
	OccasionThreshold = 0.6
	SeasonThreshold   = 0.6
	QualityThreshold  = 0.6
	OutfitThreshold   = 0.7

	// minFuzzyRunes is the shortest token that is compared fuzzily. Shorter words
	// match too many unrelated keywords.
	minFuzzyRunes = 4
)

// Extractor builds SearchIntents. It holds only read-only tables and is safe for
// concurrent use.
type Extractor struct {
	bands     []PriceBand
	itemIndex map[string]string // surface form -> item key
	stemIndex map[string]string // English stem -> item key
	colorIdx  map[string]string // surface form -> color name
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithPriceBands replaces the default price bands. Invalid band sets are ignored.
func WithPriceBands(bands []PriceBand) Option {
	return func(e *Extractor) {
		if ValidateBands(bands) {
			e.bands = append([]PriceBand(nil), bands...)
		}
	}
}

// NewExtractor creates an Extractor.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{
		bands:     DefaultPriceBands,
		itemIndex: make(map[string]string),
		stemIndex: make(map[string]string),
		colorIdx:  make(map[string]string),
	}
	for _, item := range itemKeywords {
		for _, v := range item.variants {
			e.itemIndex[v] = item.key
			if !isArabicTerm(v) {
				e.stemIndex[stemEnglish(v)] = item.key
			}
		}
	}
	for _, c := range colorKeywords {
		for _, v := range c.variants {
			e.colorIdx[v] = c.name
		}
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Bands returns the price bands in use.
func (e *Extractor) Bands() []PriceBand {
	return e.bands
}

// Analyze reads a SearchIntent out of raw. It never fails: text without any recognizable
// structure yields an intent whose facets are all defaulted.
func (e *Extractor) Analyze(raw, lang string) SearchIntent {
	lang = ResolveLanguage(raw, lang)
	in := defaultIntent(raw, lang)

	normLang := lang
	if textnorm.IsArabic(raw) {
		normLang = textnorm.LangArabic
	}
	normalized := textnorm.Normalize(raw, normLang)
	in.NormalizedQuery = normalized
	if normalized == "" {
		return in
	}
	q := newQueryTokens(textnorm.Tokens(normalized))

	// Exact matches first for every detector, so a token explained by one facet is
	// never fuzzily reused by another.
	e.detectItems(q, &in)
	e.detectColors(q, &in)
	in.WantsCompleteOutfit = q.countHits(outfitKeywords, true) > 0
	e.detectPrice(q, normalized, &in)

	occasionGroups := make([][]string, len(occasionKeywords))
	for i, o := range occasionKeywords {
		occasionGroups[i] = o.phrases
	}
	seasonGroups := make([][]string, len(seasonKeywords))
	for i, s := range seasonKeywords {
		seasonGroups[i] = s.phrases
	}
	qualityGroups := make([][]string, len(qualityKeywords))
	for i, qk := range qualityKeywords {
		qualityGroups[i] = qk.phrases
	}

	occasion, occasionOK := q.mostHits(occasionGroups)
	season, seasonOK := q.mostHits(seasonGroups)
	quality, qualityOK := q.firstHit(qualityGroups)

	if !occasionOK {
		occasion, occasionOK = q.fuzzyBest(occasionGroups, OccasionThreshold)
	}
	if !seasonOK {
		season, seasonOK = q.fuzzyBest(seasonGroups, SeasonThreshold)
	}
	if !qualityOK {
		quality, qualityOK = q.fuzzyBest(qualityGroups, QualityThreshold)
	}
	if !in.WantsCompleteOutfit {
		_, in.WantsCompleteOutfit = q.fuzzyBest([][]string{outfitKeywords}, OutfitThreshold)
	}

	if occasionOK {
		in.Occasion = occasionKeywords[occasion].occasion
	}
	if seasonOK {
		in.Season = seasonKeywords[season].season
	}
	if qualityOK {
		in.Quality = qualityKeywords[quality].quality
	}

	in.CleanedQuery = q.cleaned()
	in.Keywords, in.Unmatched = q.keywords()
	return in
}

func (e *Extractor) detectItems(q *queryTokens, in *SearchIntent) {
	for i := range q.tokens {
		for _, v := range q.variants[i] {
			key, ok := e.itemIndex[v]
			if !ok && !isArabicTerm(v) {
				key, ok = e.stemIndex[stemEnglish(v)]
			}
			if !ok {
				continue
			}
			q.claim(i, v)
			if !in.HasItemType(key) {
				in.ItemTypes = append(in.ItemTypes, key)
			}
			in.ItemTerms = append(in.ItemTerms, v)
			break
		}
	}
}

func (e *Extractor) detectColors(q *queryTokens, in *SearchIntent) {
	seen := make(map[string]bool)
	for i := range q.tokens {
		if q.claimed[i] {
			continue
		}
		for _, v := range q.variants[i] {
			name, ok := e.colorIdx[v]
			if !ok {
				continue
			}
			q.claim(i, v)
			if !seen[name] {
				seen[name] = true
				in.Colors = append(in.Colors, name)
			}
			break
		}
	}
}

func (e *Extractor) detectPrice(q *queryTokens, normalized string, in *SearchIntent) {
	if minP, maxP, ok := explicitPrice(normalized); ok {
		in.PriceMin, in.PriceMax, in.PriceExplicit = minP, maxP, true
		in.PriceRange = rangeForBounds(e.bands, minP, maxP)
		for i, tok := range q.tokens {
			if isNumeric(tok) || isPriceNoise(tok) {
				q.priceClaimed[i] = true
				q.claimed[i] = true
			}
		}
	}
	for _, entry := range priceKeywords {
		hit := false
		for _, phrase := range entry.phrases {
			for _, start := range q.find(strings.Fields(phrase)) {
				hit = true
				for k := start; k < start+len(strings.Fields(phrase)); k++ {
					q.priceClaimed[k] = true
					q.claimed[k] = true
				}
			}
			if hit {
				break
			}
		}
		if !hit {
			continue
		}
		// An explicit number is more precise than a qualitative word.
		if !in.PriceExplicit {
			in.PriceRange = entry.price
			if b, ok := BandFor(e.bands, entry.price); ok {
				in.PriceMin, in.PriceMax = b.Min, b.Max
			}
		}
		break
	}
}

// ResolveLanguage returns lang when it is supported, otherwise guesses from the script of text.
func ResolveLanguage(text, lang string) string {
	switch lang {
	case textnorm.LangArabic, textnorm.LangEnglish:
		return lang
	}
	if textnorm.IsArabic(text) {
		return textnorm.LangArabic
	}
	return textnorm.LangEnglish
}

// queryTokens tracks which normalized tokens have been explained by some detector.
type queryTokens struct {
	tokens       []string
	variants     [][]string
	claimed      []bool
	priceClaimed []bool
	matched      []string
}

func newQueryTokens(tokens []string) *queryTokens {
	q := &queryTokens{
		tokens:       tokens,
		variants:     make([][]string, len(tokens)),
		claimed:      make([]bool, len(tokens)),
		priceClaimed: make([]bool, len(tokens)),
		matched:      make([]string, len(tokens)),
	}
	for i, tok := range tokens {
		q.variants[i] = textnorm.TokenVariants(tok)
	}
	return q
}

func (q *queryTokens) claim(i int, variant string) {
	q.claimed[i] = true
	if q.matched[i] == "" {
		q.matched[i] = variant
	}
}

func (q *queryTokens) hasVariant(i int, want string) (string, bool) {
	for _, v := range q.variants[i] {
		if v == want {
			return v, true
		}
	}
	return "", false
}

// find returns the start index of every occurrence of phrase in the token stream.
func (q *queryTokens) find(phrase []string) []int {
	if len(phrase) == 0 {
		return nil
	}
	var starts []int
	for i := 0; i+len(phrase) <= len(q.tokens); i++ {
		ok := true
		for k, p := range phrase {
			if _, hit := q.hasVariant(i+k, p); !hit {
				ok = false
				break
			}
		}
		if ok {
			starts = append(starts, i)
		}
	}
	return starts
}

// countHits counts occurrences of any of phrases. With claim set, matched tokens are
// marked as explained.
func (q *queryTokens) countHits(phrases []string, claim bool) int {
	hits := 0
	for _, phrase := range phrases {
		words := strings.Fields(phrase)
		for _, start := range q.find(words) {
			hits++
			if !claim {
				continue
			}
			for k := range words {
				v, _ := q.hasVariant(start+k, words[k])
				q.claim(start+k, v)
			}
		}
	}
	return hits
}

// mostHits returns the group with the most exact hits. Ties go to the earlier group.
func (q *queryTokens) mostHits(groups [][]string) (int, bool) {
	best, bestHits := -1, 0
	for i, g := range groups {
		if hits := q.countHits(g, true); hits > bestHits {
			best, bestHits = i, hits
		}
	}
	return best, best >= 0
}

// firstHit returns the first group with any exact hit.
func (q *queryTokens) firstHit(groups [][]string) (int, bool) {
	for i, g := range groups {
		if q.countHits(g, true) > 0 {
			return i, true
		}
	}
	return -1, false
}

// fuzzyBest compares windows of unexplained tokens with every keyword of matching width
// and returns the group of the best match at or above threshold.
func (q *queryTokens) fuzzyBest(groups [][]string, threshold float64) (int, bool) {
	byWidth := make(map[int][]string)
	owners := make(map[int][]int)
	maxWidth := 0
	for gi, g := range groups {
		for _, phrase := range g {
			if utf8.RuneCountInString(phrase) < minFuzzyRunes {
				continue
			}
			w := len(strings.Fields(phrase))
			byWidth[w] = append(byWidth[w], phrase)
			owners[w] = append(owners[w], gi)
			maxWidth = max(maxWidth, w)
		}
	}

	bestGroup, bestScore, bestStart, bestWidth := -1, 0.0, 0, 0
	for w := 1; w <= maxWidth; w++ {
		terms := byWidth[w]
		if len(terms) == 0 {
			continue
		}
		for i := 0; i+w <= len(q.tokens); i++ {
			for _, cand := range q.windowCandidates(i, w) {
				m, ok := fuzzy.BestMatch(cand, terms, threshold)
				if !ok || !sameFirstRune(cand, m.Term) {
					continue
				}
				if bestGroup < 0 || m.Score > bestScore || (m.Score == bestScore && owners[w][m.Index] < bestGroup) {
					bestGroup, bestScore, bestStart, bestWidth = owners[w][m.Index], m.Score, i, w
				}
			}
		}
	}
	if bestGroup < 0 {
		return -1, false
	}
	for k := bestStart; k < bestStart+bestWidth; k++ {
		q.claim(k, q.tokens[k])
	}
	return bestGroup, true
}

// windowCandidates returns the strings that fuzzy matching may compare for the w tokens
// starting at i. Windows touching an explained token or a stop word produce nothing.
func (q *queryTokens) windowCandidates(i, w int) []string {
	for k := i; k < i+w; k++ {
		if q.claimed[k] || IsStopWord(q.tokens[k]) || isNumeric(q.tokens[k]) {
			return nil
		}
	}
	if w == 1 {
		var out []string
		for _, v := range q.variants[i] {
			if utf8.RuneCountInString(v) >= minFuzzyRunes {
				out = append(out, v)
			}
		}
		return out
	}
	joined := strings.Join(q.tokens[i:i+w], " ")
	if utf8.RuneCountInString(joined) < minFuzzyRunes {
		return nil
	}
	return []string{joined}
}

func (q *queryTokens) cleaned() string {
	kept := make([]string, 0, len(q.tokens))
	for _, tok := range q.tokens {
		if !IsStopWord(tok) {
			kept = append(kept, tok)
		}
	}
	return strings.Join(kept, " ")
}

// keywords returns the search-worthy tokens: no stop words, numbers, or price phrasing.
// Tokens explained by a keyword table are reported in their table form ("للفرح" -> "فرح").
// unmatched is the subset no detector explained.
func (q *queryTokens) keywords() (out, unmatched []string) {
	seen := make(map[string]bool)
	out = make([]string, 0, len(q.tokens))
	for i, tok := range q.tokens {
		if q.priceClaimed[i] || IsStopWord(tok) || isNumeric(tok) || isPriceNoise(tok) {
			continue
		}
		if utf8.RuneCountInString(tok) < 2 {
			continue
		}
		kw := tok
		if q.matched[i] != "" {
			kw = q.matched[i]
		}
		if seen[kw] {
			continue
		}
		seen[kw] = true
		out = append(out, kw)
		if !q.claimed[i] {
			unmatched = append(unmatched, kw)
		}
	}
	return out, unmatched
}

func sameFirstRune(a, b string) bool {
	ra, _ := utf8.DecodeRuneInString(a)
	rb, _ := utf8.DecodeRuneInString(b)
	return ra == rb
}

// isNumeric reports whether tok is a number or a numeric range such as "200-500".
func isNumeric(tok string) bool {
	if _, err := strconv.ParseFloat(tok, 64); err == nil {
		return true
	}
	digits := 0
	for _, r := range tok {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '.', r == '-':
		default:
			return false
		}
	}
	return digits > 0
}

func isPriceNoise(tok string) bool {
	_, ok := priceNoise[tok]
	return ok
}

func isArabicTerm(s string) bool {
	return textnorm.IsArabic(s)
}

func stemEnglish(word string) string {
	stemmed, err := snowball.Stem(word, "english", true)
	if err != nil || stemmed == "" {
		return word
	}
	return stemmed
}
