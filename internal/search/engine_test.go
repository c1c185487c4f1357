package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperjump/souq/internal/cache"
	"github.com/hyperjump/souq/internal/catalog"
	"github.com/hyperjump/souq/internal/config"
	"github.com/hyperjump/souq/internal/httpclient"
	"github.com/hyperjump/souq/internal/models"
)

// fakeCatalog answers every filter call with the same products.
type fakeCatalog struct {
	mu         sync.Mutex
	popular    []*models.Candidate
	products   []*models.Candidate
	popularErr error
	filterErr  error
	calls      []catalog.FilterParams
}

func (f *fakeCatalog) Filter(_ context.Context, params catalog.FilterParams, _ string) (*catalog.Page, error) {
	f.mu.Lock()
	f.calls = append(f.calls, params)
	f.mu.Unlock()
	if f.filterErr != nil {
		return nil, f.filterErr
	}
	return &catalog.Page{Products: f.products}, nil
}

func (f *fakeCatalog) Popular(context.Context, string) ([]*models.Candidate, error) {
	if f.popularErr != nil {
		return nil, f.popularErr
	}
	return f.popular, nil
}

func (f *fakeCatalog) searched() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.calls))
	for _, c := range f.calls {
		out = append(out, c.Search)
	}
	return out
}

func testSearchConfig() *config.SearchConfig {
	return &config.SearchConfig{
		DefaultLimit:   5,
		MaxLimit:       50,
		MaxCandidates:  200,
		MaxSuggestions: 5,
		Timeout:        5 * time.Second,
	}
}

var (
	weddingSet = &models.Candidate{
		ID: "p1", Name: "طقم سواريه صيفي للفرح", Description: "طقم كامل من الكتان",
		Price: 300, Rating: 4.0, ReviewCount: 10, StockQuantity: 4,
	}
	winterSuit = &models.Candidate{ID: "p2", Name: "بدله شتوي", Price: 2000, Rating: 4.8}
)

func TestEngine_Search(t *testing.T) {
	fc := &fakeCatalog{
		popular:  []*models.Candidate{weddingSet, winterSuit},
		products: []*models.Candidate{winterSuit, weddingSet},
	}
	engine := NewEngine(fc, nil, testSearchConfig())

	resp, err := engine.Search(context.Background(), &models.SearchQuery{Query: "عايز طقم كامل للفرح صيفي ومش غالي"})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.RequestID)
	assert.Equal(t, "ar", resp.Language)
	assert.True(t, resp.Intent.WantsCompleteOutfit)
	assert.EqualValues(t, "wedding", resp.Intent.Occasion)
	assert.EqualValues(t, "summer", resp.Intent.Season)
	assert.EqualValues(t, "low", resp.Intent.PriceRange)

	assert.Equal(t, 2, resp.Pooled)
	assert.Equal(t, 1, resp.Total)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "p1", resp.Results[0].Candidate.ID)
	assert.Equal(t, 1, resp.Results[0].Rank)

	require.Len(t, resp.Strategies, 4)
	names := make([]string, 0, 4)
	for _, s := range resp.Strategies {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{StrategyPopular, StrategyKeywords, StrategyPriority, StrategyCleaned}, names)
	for _, c := range fc.calls {
		assert.InDelta(t, 420, c.MaxPrice, 1e-9, "low band should be pre-filtered at its upper tolerance")
	}
}

func TestEngine_SearchLimit(t *testing.T) {
	var products []*models.Candidate
	for i := 0; i < 8; i++ {
		products = append(products, &models.Candidate{
			ID: fmt.Sprintf("d%d", i), Name: "فستان سواريه للفرح", Price: 500,
		})
	}
	engine := NewEngine(&fakeCatalog{products: products}, nil, testSearchConfig())

	resp, err := engine.Search(context.Background(), &models.SearchQuery{Query: "فستان للفرح", Limit: 3})
	require.NoError(t, err)
	assert.Equal(t, 8, resp.Total)
	require.Len(t, resp.Results, 3)
	for i, r := range resp.Results {
		assert.Equal(t, i+1, r.Rank)
	}
}

func TestEngine_NoCandidates(t *testing.T) {
	// Every strategy comes back empty.
	engine := NewEngine(&fakeCatalog{}, nil, testSearchConfig())

	resp, err := engine.Search(context.Background(), &models.SearchQuery{Query: "xyzzy plugh"})
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrNoCandidates)
	assert.False(t, models.IsRetryLater(err))

	var nc *models.NoCandidatesError
	require.True(t, errors.As(err, &nc))
	assert.NotEmpty(t, nc.Suggestions)
	assert.Equal(t, "xyzzy plugh", nc.Query)

	require.NotNil(t, resp)
	assert.Equal(t, nc.Suggestions, resp.Suggestions)
	assert.Empty(t, resp.Results)
	assert.Len(t, resp.Strategies, 4)
}

func TestEngine_EverythingFilteredOut(t *testing.T) {
	engine := NewEngine(&fakeCatalog{products: []*models.Candidate{winterSuit}}, nil, testSearchConfig())

	resp, err := engine.Search(context.Background(), &models.SearchQuery{Query: "طقم رخيص للفرح"})
	assert.ErrorIs(t, err, models.ErrNoCandidates)
	require.NotNil(t, resp)
	assert.Equal(t, 1, resp.Pooled)
	assert.Zero(t, resp.Total)
	assert.NotEmpty(t, resp.Suggestions)
}

func TestEngine_RetryLater(t *testing.T) {
	limited := fmt.Errorf("filter: %w", models.ErrRateLimitExceeded)
	engine := NewEngine(&fakeCatalog{popularErr: limited, filterErr: limited}, nil, testSearchConfig())

	_, err := engine.Search(context.Background(), &models.SearchQuery{Query: "فستان احمر"})
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrRateLimitExceeded)
	assert.True(t, models.IsRetryLater(err))

	_, err = engine.SearchAndFormat(context.Background(), "فستان احمر", 5, "")
	assert.ErrorIs(t, err, models.ErrRateLimitExceeded)
}

func TestEngine_InvalidInput(t *testing.T) {
	fc := &fakeCatalog{popular: []*models.Candidate{weddingSet}, products: []*models.Candidate{weddingSet}}
	engine := NewEngine(fc, nil, testSearchConfig())

	for _, q := range []string{" ف ", "!!!", "؟؟؟", "في", "the", "the of"} {
		resp, err := engine.Search(context.Background(), &models.SearchQuery{Query: q})
		assert.ErrorIs(t, err, models.ErrInvalidInput, "query %q", q)
		assert.Nil(t, resp, "query %q", q)
	}
	assert.Empty(t, fc.searched(), "nothing should reach the catalog")

	_, err := engine.SearchAndFormat(context.Background(), "dress", 5, "fr")
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestEngine_SearchAndFormat(t *testing.T) {
	fc := &fakeCatalog{products: []*models.Candidate{weddingSet}}
	engine := NewEngine(fc, nil, testSearchConfig(),
		WithProductURL(func(id string) string { return "https://shop.example.com/products/" + id }))

	blocks, err := engine.SearchAndFormat(context.Background(), "عايز طقم كامل للفرح صيفي ومش غالي", 5, "")
	require.NoError(t, err)
	require.Len(t, blocks, 2)
	assert.True(t, strings.HasPrefix(blocks[0], "لقيتلك منتج واحد"), blocks[0])
	assert.True(t, strings.HasPrefix(blocks[1], "1. طقم سواريه صيفي للفرح"), blocks[1])
	assert.Contains(t, blocks[1], "https://shop.example.com/products/p1")
}

func TestEngine_SearchAndFormatNothingFound(t *testing.T) {
	engine := NewEngine(&fakeCatalog{}, nil, testSearchConfig())

	blocks, err := engine.SearchAndFormat(context.Background(), "something unheard of", 5, "en")
	require.NoError(t, err)
	require.Len(t, blocks, 1)
	assert.True(t, strings.HasPrefix(blocks[0], "Sorry, no products matched"), blocks[0])
	assert.Contains(t, blocks[0], "Try searching for:")
}

func TestEngine_EndToEnd(t *testing.T) {
	products := []map[string]any{
		{"id": 1, "name": "فستان سواريه للفرح", "price": "500", "rating": 4.5, "stock_quantity": 2},
		{"id": 2, "name": "قميص رجالي", "price": 200, "rating": 4.1},
	}
	var hits int
	var mu sync.Mutex
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		hits++
		mu.Unlock()
		assert.Equal(t, catalog.FilterPath, r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{"products": products}})
	}))
	t.Cleanup(ts.Close)

	hc, err := httpclient.New(ts.URL,
		httpclient.WithCache(cache.NewMemoryCache(100), cache.DefaultTTLs()),
		httpclient.WithRetryPolicy(httpclient.RetryPolicy{MaxRetries: 0, BaseDelay: time.Millisecond, BackoffFactor: 2}),
	)
	require.NoError(t, err)
	cat := catalog.NewClient(hc, catalog.Config{StorefrontURL: "https://shop.example.com"}, nil)
	engine := NewEngine(cat, nil, testSearchConfig(), WithProductURL(cat.ProductURL))

	resp, err := engine.Search(context.Background(), &models.SearchQuery{Query: "فستان سواريه للفرح"})
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "1", resp.Results[0].Candidate.ID)
	assert.Equal(t, 2, resp.Pooled)

	mu.Lock()
	first := hits
	mu.Unlock()
	assert.Positive(t, first)

	// The same query again is served from the cache.
	_, err = engine.Search(context.Background(), &models.SearchQuery{Query: "فستان سواريه للفرح"})
	require.NoError(t, err)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, first, hits)
}

func TestEngine_Analyze(t *testing.T) {
	engine := NewEngine(&fakeCatalog{}, nil, testSearchConfig())
	in := engine.Analyze("cheap summer dresses", "")
	assert.Equal(t, "en", in.Language)
	assert.EqualValues(t, "low", in.PriceRange)
	assert.NotNil(t, engine.Scorer())
}
