// Package search runs the product search pipeline: intent extraction, multi-strategy
// retrieval, scoring and rendering.
package search

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hyperjump/souq/internal/config"
	"github.com/hyperjump/souq/internal/format"
	"github.com/hyperjump/souq/internal/intent"
	"github.com/hyperjump/souq/internal/models"
	"github.com/hyperjump/souq/internal/ranking"
)

// Engine answers customer queries against the catalog.
type Engine struct {
	extractor    *intent.Extractor
	orchestrator *Orchestrator
	scorer       *ranking.Scorer
	formatter    *format.Formatter
	suggestions  *Suggestions
	config       *config.SearchConfig
	logger       *zap.Logger
	productURL   func(id string) string
	now          func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithProductURL sets how product links in rendered cards are built.
func WithProductURL(fn func(id string) string) Option {
	return func(e *Engine) {
		e.productURL = fn
	}
}

// WithClock replaces time.Now for query timing.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// NewEngine creates a search engine over catalog. A nil scorer uses default weights.
func NewEngine(catalog Catalog, scorer *ranking.Scorer, cfg *config.SearchConfig, opts ...Option) *Engine {
	if cfg == nil {
		cfg = &config.SearchConfig{}
	}
	e := &Engine{
		scorer: scorer,
		config: cfg,
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.scorer == nil {
		e.scorer = ranking.NewScorer(nil, e.logger)
	}
	e.extractor = intent.NewExtractor(intent.WithPriceBands(cfg.PriceBands))
	e.orchestrator = NewOrchestrator(catalog, cfg.MaxCandidates, e.logger)
	e.suggestions = NewSuggestions(cfg.MaxSuggestions)
	e.formatter = format.New(
		format.WithProductURL(e.productURL),
		format.WithSuggestions(e.suggestions.For),
	)
	return e
}

// Scorer returns the scorer, whose configuration may be swapped at runtime.
func (e *Engine) Scorer() *ranking.Scorer {
	return e.scorer
}

// Analyze extracts the intent of a raw query without searching.
func (e *Engine) Analyze(raw, lang string) intent.SearchIntent {
	return e.extractor.Analyze(raw, intent.ResolveLanguage(raw, lang))
}

// Search runs the pipeline for one query. When nothing is found the error is a
// *models.NoCandidatesError and the response is still returned, carrying the intent
// and suggestions. Rate-limit and circuit-open conditions are returned as errors for
// the caller to retry later.
func (e *Engine) Search(ctx context.Context, query *models.SearchQuery) (*models.SearchResponse, error) {
	start := e.now()
	if err := ProcessQuery(query, e.config); err != nil {
		return nil, err
	}
	if e.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.config.Timeout)
		defer cancel()
	}

	in := e.extractor.Analyze(query.Query, query.Language)
	if utf8.RuneCountInString(in.CleanedQuery) < models.MinQueryLength {
		return nil, fmt.Errorf("%w: query %q has nothing to search for after cleaning", models.ErrInvalidInput, query.Query)
	}
	resp := &models.SearchResponse{
		RequestID: uuid.NewString(),
		Query:     query.Query,
		Language:  query.Language,
		Intent:    in,
		Results:   []*models.ScoredCandidate{},
	}
	logger := e.logger.With(zap.String("request_id", resp.RequestID))

	coll, err := e.orchestrator.Collect(ctx, &in, query.Language)
	if coll != nil {
		resp.Strategies = coll.Reports
		resp.Pooled = len(coll.Candidates)
	}
	if err != nil {
		resp.QueryTime = e.now().Sub(start).Milliseconds()
		if errors.Is(err, models.ErrNoCandidates) {
			return resp, e.noCandidates(resp, logger)
		}
		logger.Warn("search failed", zap.Error(err))
		return resp, err
	}

	scored := e.scorer.ScoreAndFilter(coll.Candidates, &in)
	resp.Total = len(scored)
	for i := range TopNScored(scored, query.Limit) {
		resp.Results = append(resp.Results, &scored[i])
	}
	resp.QueryTime = e.now().Sub(start).Milliseconds()

	if resp.Total == 0 {
		return resp, e.noCandidates(resp, logger)
	}
	logger.Info("search completed",
		zap.String("language", resp.Language),
		zap.Int("pooled", resp.Pooled),
		zap.Int("total", resp.Total),
		zap.Int64("query_time_ms", resp.QueryTime))
	return resp, nil
}

func (e *Engine) noCandidates(resp *models.SearchResponse, logger *zap.Logger) error {
	resp.Suggestions = e.suggestions.For(resp.Intent, resp.Language)
	logger.Info("no candidates",
		zap.String("language", resp.Language),
		zap.Int("pooled", resp.Pooled),
		zap.Strings("suggestions", resp.Suggestions))
	return &models.NoCandidatesError{Query: resp.Query, Suggestions: resp.Suggestions}
}

// Render turns a response into text blocks: the summary first, then one card per
// result. A response without results renders as the nothing-found message.
func (e *Engine) Render(resp *models.SearchResponse) []string {
	if len(resp.Results) == 0 {
		suggestions := resp.Suggestions
		if len(suggestions) == 0 {
			suggestions = e.suggestions.For(resp.Intent, resp.Language)
		}
		return []string{e.formatter.NoResults(resp.Intent, suggestions, resp.Language)}
	}
	blocks := make([]string, 0, len(resp.Results)+1)
	blocks = append(blocks, e.formatter.Summarize(resp.Intent, len(resp.Results), resp.Language))
	return append(blocks, e.formatter.Format(resp.Results, resp.Language)...)
}

// SearchAndFormat is the text entry point for messaging integrations. Nothing found
// is not an error: the single block is the localized nothing-found message. Invalid
// input and retry-later conditions are returned as errors.
func (e *Engine) SearchAndFormat(ctx context.Context, query string, limit int, lang string) ([]string, error) {
	resp, err := e.Search(ctx, &models.SearchQuery{Query: query, Limit: limit, Language: lang})
	if err != nil && !errors.Is(err, models.ErrNoCandidates) {
		return nil, err
	}
	return e.Render(resp), nil
}
