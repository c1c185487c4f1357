package search

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/hyperjump/souq/internal/catalog"
	"github.com/hyperjump/souq/internal/intent"
	"github.com/hyperjump/souq/internal/models"
	"github.com/hyperjump/souq/internal/textnorm"
)

// Strategy names, in the order their candidates enter the pool.
const (
	StrategyPopular  = "popular"
	StrategyKeywords = "keywords"
	StrategyPriority = "priority"
	StrategyCleaned  = "cleaned"
)

// priorityTerms is how many top-priority words the priority strategy searches for.
const priorityTerms = 2

// Catalog is the part of the catalog API the orchestrator uses.
type Catalog interface {
	Filter(ctx context.Context, params catalog.FilterParams, lang string) (*catalog.Page, error)
	Popular(ctx context.Context, lang string) ([]*models.Candidate, error)
}

// Collection is the merged output of all strategies.
type Collection struct {
	Candidates []*models.Candidate
	Reports    []models.StrategyReport
}

type strategyResult struct {
	candidates []*models.Candidate
	terms      []string
	err        error
	skipped    bool
}

// Orchestrator runs the retrieval strategies against the catalog and pools their
// candidates.
type Orchestrator struct {
	catalog       Catalog
	maxCandidates int
	logger        *zap.Logger
}

// NewOrchestrator creates an Orchestrator. maxCandidates caps the pool; zero or less
// means no cap.
func NewOrchestrator(c Catalog, maxCandidates int, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{catalog: c, maxCandidates: maxCandidates, logger: logger}
}

// Collect runs every strategy concurrently and merges their candidates in strategy
// order, first occurrence of an id winning. A failing strategy contributes nothing.
// An empty pool yields ErrNoCandidates, unless every strategy that ran failed with a
// retry-later condition, which is then returned as is.
func (o *Orchestrator) Collect(ctx context.Context, in *intent.SearchIntent, lang string) (*Collection, error) {
	strategies := []struct {
		name string
		run  func(context.Context, *intent.SearchIntent, string, *filterCalls) strategyResult
	}{
		{StrategyPopular, o.popular},
		{StrategyKeywords, o.keywordCombos},
		{StrategyPriority, o.priority},
		{StrategyCleaned, o.cleaned},
	}

	calls := newFilterCalls(o.catalog)
	results := make([]strategyResult, len(strategies))
	var wg sync.WaitGroup
	for i, s := range strategies {
		wg.Add(1)
		go func(i int, run func(context.Context, *intent.SearchIntent, string, *filterCalls) strategyResult) {
			defer wg.Done()
			results[i] = run(ctx, in, lang, calls)
		}(i, s.run)
	}
	wg.Wait()

	lists := make([][]*models.Candidate, len(results))
	coll := &Collection{Reports: make([]models.StrategyReport, 0, len(results))}
	var ran, retryLater int
	var firstRetryErr error
	for i, r := range results {
		report := models.StrategyReport{
			Name:       strategies[i].name,
			Terms:      strings.Join(r.terms, " | "),
			Candidates: len(r.candidates),
		}
		if !r.skipped {
			ran++
		}
		if r.err != nil {
			report.Error = r.err.Error()
			o.logger.Warn("search strategy failed",
				zap.String("strategy", strategies[i].name),
				zap.Strings("terms", r.terms),
				zap.Error(r.err))
			if models.IsRetryLater(r.err) {
				retryLater++
				if firstRetryErr == nil {
					firstRetryErr = r.err
				}
			}
		}
		lists[i] = r.candidates
		coll.Reports = append(coll.Reports, report)
	}

	coll.Candidates = Merge(o.maxCandidates, lists...)
	o.logger.Debug("strategies collected",
		zap.Int("strategies", ran),
		zap.Int("catalog_calls", calls.count()),
		zap.Int("pooled", len(coll.Candidates)))

	if len(coll.Candidates) == 0 {
		if ran > 0 && retryLater == ran {
			return coll, firstRetryErr
		}
		return coll, fmt.Errorf("%w: every strategy came back empty", models.ErrNoCandidates)
	}
	return coll, nil
}

// popular filters the popular catalog page locally by the query keywords. Without
// keywords the whole page is kept and left to the scorer.
func (o *Orchestrator) popular(ctx context.Context, in *intent.SearchIntent, lang string, _ *filterCalls) strategyResult {
	products, err := o.catalog.Popular(ctx, lang)
	if err != nil {
		return strategyResult{err: err}
	}
	terms := in.Keywords
	if len(terms) == 0 {
		return strategyResult{candidates: products}
	}
	kept := make([]*models.Candidate, 0, len(products))
	for _, p := range products {
		if mentionsAny(p, terms) {
			kept = append(kept, p)
		}
	}
	return strategyResult{candidates: kept, terms: terms}
}

// keywordCombos searches for the full keyword set, the first two keywords and the
// single most important keyword.
func (o *Orchestrator) keywordCombos(ctx context.Context, in *intent.SearchIntent, lang string, calls *filterCalls) strategyResult {
	if len(in.Keywords) == 0 {
		return strategyResult{skipped: true}
	}
	combos := []string{strings.Join(in.Keywords, " ")}
	if len(in.Keywords) > 2 {
		combos = append(combos, strings.Join(in.Keywords[:2], " "))
	}
	if ranked := importantTerms(in); len(ranked) > 0 && len(in.Keywords) > 1 {
		combos = append(combos, ranked[0])
	}
	return searchAll(ctx, calls, in, lang, unique(combos))
}

// priority searches for the highest-priority words one at a time: item words before
// occasion and season words before the rest.
func (o *Orchestrator) priority(ctx context.Context, in *intent.SearchIntent, lang string, calls *filterCalls) strategyResult {
	ranked := importantTerms(in)
	if len(ranked) == 0 {
		return strategyResult{skipped: true}
	}
	if len(ranked) > priorityTerms {
		ranked = ranked[:priorityTerms]
	}
	return searchAll(ctx, calls, in, lang, ranked)
}

// cleaned searches for the query with stop words removed.
func (o *Orchestrator) cleaned(ctx context.Context, in *intent.SearchIntent, lang string, calls *filterCalls) strategyResult {
	if strings.TrimSpace(in.CleanedQuery) == "" {
		return strategyResult{skipped: true}
	}
	return searchAll(ctx, calls, in, lang, []string{in.CleanedQuery})
}

// searchAll runs one filter call per term and concatenates the results. The strategy
// fails only when every call failed.
func searchAll(ctx context.Context, calls *filterCalls, in *intent.SearchIntent, lang string, terms []string) strategyResult {
	res := strategyResult{terms: terms}
	var errs []error
	for _, term := range terms {
		params := filterParams(in, term)
		page, err := calls.filter(ctx, params, lang)
		if err != nil {
			errs = append(errs, err)
			if ctx.Err() != nil {
				break
			}
			continue
		}
		res.candidates = append(res.candidates, page.Products...)
	}
	if len(errs) > 0 && len(errs) == len(terms) {
		res.err = errors.Join(errs...)
		if len(errs) == 1 {
			res.err = errs[0]
		}
	}
	return res
}

// filterParams narrows a catalog search by the requested colors, and by price only
// where the scorer would reject the product anyway: above the upper tolerance, or far
// below an open-ended band.
func filterParams(in *intent.SearchIntent, term string) catalog.FilterParams {
	p := catalog.FilterParams{Search: term, Page: 1}
	for _, c := range in.Colors {
		p.Colors = append(p.Colors, intent.ColorLabel(c, in.Language))
	}
	if !in.HasPrice() {
		return p
	}
	if in.PriceMax > 0 {
		p.MaxPrice = in.PriceMax * 1.2
	} else if in.PriceMin > 0 {
		p.MinPrice = in.PriceMin * 0.8
	}
	return p
}

// importantTerms orders the query words by retrieval value: words naming an item
// type, then occasion and season words, then everything else. Order within a group
// follows the query.
func importantTerms(in *intent.SearchIntent) []string {
	items := make(map[string]bool, len(in.ItemTerms))
	for _, t := range in.ItemTerms {
		items[t] = true
	}
	facet := make(map[string]bool)
	for _, p := range intent.OccasionKeywords(in.Occasion) {
		facet[p] = true
	}
	for _, p := range intent.SeasonKeywords(in.Season) {
		facet[p] = true
	}

	rank := func(word string) int {
		if items[word] {
			return 0
		}
		for _, v := range textnorm.TokenVariants(word) {
			if facet[v] {
				return 1
			}
		}
		return 2
	}

	terms := append([]string(nil), in.ItemTerms...)
	for _, k := range in.Keywords {
		if !items[k] {
			terms = append(terms, k)
		}
	}
	terms = unique(terms)
	sort.SliceStable(terms, func(i, j int) bool { return rank(terms[i]) < rank(terms[j]) })
	return terms
}

// mentionsAny reports whether the product name, description or category contains
// one of the terms.
func mentionsAny(p *models.Candidate, terms []string) bool {
	text := textnorm.Normalize(p.Text()+" "+p.Category, textnorm.LangArabic)
	for _, t := range terms {
		if t != "" && strings.Contains(text, t) {
			return true
		}
	}
	return false
}

func unique(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := in[:0:0]
	for _, s := range in {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
