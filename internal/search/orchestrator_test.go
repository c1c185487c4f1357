package search

import (
	"context"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/hyperjump/souq/internal/catalog"
	"github.com/hyperjump/souq/internal/intent"
	"github.com/hyperjump/souq/internal/models"
)

// termCatalog answers filter calls per search term.
type termCatalog struct {
	popular    []*models.Candidate
	popularErr error
	byTerm     map[string][]*models.Candidate
	errByTerm  map[string]error
}

func (c *termCatalog) Filter(_ context.Context, p catalog.FilterParams, _ string) (*catalog.Page, error) {
	if err := c.errByTerm[p.Search]; err != nil {
		return nil, err
	}
	return &catalog.Page{Products: c.byTerm[p.Search]}, nil
}

func (c *termCatalog) Popular(context.Context, string) ([]*models.Candidate, error) {
	return c.popular, c.popularErr
}

func analyze(q string) *intent.SearchIntent {
	in := intent.NewExtractor().Analyze(q, "")
	return &in
}

func TestCollect_MergesInStrategyOrder(t *testing.T) {
	in := analyze("فستان سواريه للفرح")
	cleaned := in.CleanedQuery
	full := strings.Join(in.Keywords, " ")

	popularDress := &models.Candidate{ID: "pop", Name: "فستان سهره"}
	shared := &models.Candidate{ID: "shared", Name: "فستان"}
	byTerm := map[string][]*models.Candidate{
		"فستان": {cand("p1"), {ID: "shared", Name: "later copy"}},
	}
	byTerm[cleaned] = []*models.Candidate{cand("c1")}
	byTerm[full] = []*models.Candidate{shared, cand("k1")}
	c := &termCatalog{
		popular: []*models.Candidate{popularDress, {ID: "skip", Name: "شنطه"}},
		byTerm:  byTerm,
	}
	o := NewOrchestrator(c, 0, nil)
	coll, err := o.Collect(context.Background(), in, "ar")
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}

	got := ids(coll.Candidates)
	if len(got) < 3 || got[0] != "pop" || got[1] != "shared" || got[2] != "k1" {
		t.Errorf("pool = %v, want popular first then keyword results", got)
	}
	for _, c := range coll.Candidates {
		if c.ID == "skip" {
			t.Error("popular products not mentioning any keyword should be dropped")
		}
		if c.ID == "shared" && c.Name != "فستان" {
			t.Error("first occurrence of an id should win")
		}
	}
	if len(coll.Reports) != 4 {
		t.Fatalf("Reports = %d, want 4", len(coll.Reports))
	}
	if coll.Reports[0].Name != StrategyPopular || coll.Reports[0].Candidates != 1 {
		t.Errorf("popular report = %+v", coll.Reports[0])
	}
}

func TestCollect_PartialFailure(t *testing.T) {
	in := analyze("قميص كتان")
	c := &termCatalog{
		popularErr: &models.UpstreamError{Endpoint: catalog.FilterPath, StatusCode: 502},
		byTerm:     map[string][]*models.Candidate{in.CleanedQuery: {cand("a")}},
	}
	coll, err := NewOrchestrator(c, 0, nil).Collect(context.Background(), in, "ar")
	if err != nil {
		t.Fatalf("one working strategy should be enough, got %v", err)
	}
	if len(coll.Candidates) != 1 {
		t.Errorf("pool = %v", ids(coll.Candidates))
	}
	if coll.Reports[0].Error == "" {
		t.Error("the failed strategy should be reported")
	}
}

func TestCollect_EmptyPool(t *testing.T) {
	in := analyze("قميص كتان")
	limited := fmt.Errorf("call: %w", models.ErrRateLimitExceeded)

	tests := []struct {
		name    string
		catalog *termCatalog
		want    error
	}{
		{"all empty", &termCatalog{}, models.ErrNoCandidates},
		{
			"all rate limited",
			&termCatalog{popularErr: limited, errByTerm: map[string]error{
				"قميص كتان": limited, "قميص": limited, "كتان": limited,
			}},
			models.ErrRateLimitExceeded,
		},
		{
			"mixed failures",
			&termCatalog{popularErr: limited},
			models.ErrNoCandidates,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			coll, err := NewOrchestrator(tt.catalog, 0, nil).Collect(context.Background(), in, "ar")
			if !errors.Is(err, tt.want) {
				t.Fatalf("Collect() error = %v, want %v", err, tt.want)
			}
			if coll == nil || len(coll.Reports) != 4 {
				t.Error("reports should be returned even when the pool is empty")
			}
		})
	}
}

func TestCollect_SkipsStrategiesWithoutTerms(t *testing.T) {
	in := analyze("!!!")
	open := fmt.Errorf("popular: %w", models.ErrCircuitOpen)

	_, err := NewOrchestrator(&termCatalog{popularErr: open}, 0, nil).Collect(context.Background(), in, "ar")
	if !errors.Is(err, models.ErrCircuitOpen) {
		t.Errorf("only the popular strategy ran, its error should be returned, got %v", err)
	}

	coll, err := NewOrchestrator(&termCatalog{popular: []*models.Candidate{cand("x")}}, 0, nil).
		Collect(context.Background(), in, "ar")
	if err != nil || len(coll.Candidates) != 1 {
		t.Errorf("without keywords the popular page is kept whole, got %v, %v", coll, err)
	}
}

func TestCollect_MaxCandidates(t *testing.T) {
	var popular []*models.Candidate
	for i := 0; i < 10; i++ {
		popular = append(popular, cand(fmt.Sprintf("p%d", i)))
	}
	coll, err := NewOrchestrator(&termCatalog{popular: popular}, 4, nil).
		Collect(context.Background(), analyze("!!"), "en")
	if err != nil {
		t.Fatal(err)
	}
	if len(coll.Candidates) != 4 {
		t.Errorf("pool = %d, want 4", len(coll.Candidates))
	}
}

func TestImportantTerms(t *testing.T) {
	in := analyze("عايز حاجه صيفي فستان للفرح احمر")
	terms := importantTerms(in)
	if len(terms) < 2 {
		t.Fatalf("importantTerms = %v", terms)
	}
	if terms[0] != "فستان" {
		t.Errorf("item words should come first, got %v", terms)
	}
	last := terms[len(terms)-1]
	if last == "فستان" || last == "فرح" || last == "صيفي" {
		t.Errorf("facet words should rank before the rest, got %v", terms)
	}
}

func TestFilterParams(t *testing.T) {
	if p := filterParams(analyze("فستان"), "فستان"); p.MinPrice != 0 || p.MaxPrice != 0 || p.Page != 1 {
		t.Errorf("no price constraint: %+v", p)
	}
	if p := filterParams(analyze("فستان رخيص"), "فستان"); math.Abs(p.MaxPrice-420) > 1e-9 || p.MinPrice != 0 {
		t.Errorf("low band: %+v", p)
	}
	if p := filterParams(analyze("dress over 2000"), "dress"); math.Abs(p.MinPrice-1600) > 1e-9 || p.MaxPrice != 0 {
		t.Errorf("open band: %+v", p)
	}
	if p := filterParams(analyze("فستان احمر"), "فستان"); !reflect.DeepEqual(p.Colors, []string{"احمر"}) {
		t.Errorf("arabic colors: %+v", p)
	}
	if p := filterParams(analyze("black navy dress"), "dress"); !reflect.DeepEqual(p.Colors, []string{"black", "navy"}) {
		t.Errorf("english colors: %+v", p)
	}
	if p := filterParams(analyze("فستان"), "فستان"); len(p.Colors) != 0 {
		t.Errorf("no colors requested: %+v", p)
	}
}

func TestCollect_SharesIdenticalCalls(t *testing.T) {
	in := analyze("فستان احمر")
	fc := &fakeCatalog{products: []*models.Candidate{cand("p1")}}
	coll, err := NewOrchestrator(fc, 0, nil).Collect(context.Background(), in, "ar")
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}

	counts := make(map[string]int)
	for _, term := range fc.searched() {
		counts[term]++
	}
	for term, n := range counts {
		if n != 1 {
			t.Errorf("%q searched %d times, want once", term, n)
		}
	}
	for _, want := range []string{"فستان احمر", "فستان"} {
		if counts[want] == 0 {
			t.Errorf("%q was never searched; got %v", want, counts)
		}
	}

	// Strategies sharing a call still report its candidates.
	for _, r := range coll.Reports {
		if r.Name != StrategyPopular && r.Candidates == 0 {
			t.Errorf("strategy %s reported no candidates", r.Name)
		}
	}
}

func TestFilterCalls_SharesErrors(t *testing.T) {
	limited := fmt.Errorf("filter: %w", models.ErrRateLimitExceeded)
	fc := &fakeCatalog{filterErr: limited}
	calls := newFilterCalls(fc)
	params := catalog.FilterParams{Search: "فستان", Page: 1}

	for i := 0; i < 3; i++ {
		if _, err := calls.filter(context.Background(), params, "ar"); !errors.Is(err, models.ErrRateLimitExceeded) {
			t.Fatalf("call %d: err = %v, want rate limit", i, err)
		}
	}
	if n := len(fc.searched()); n != 1 {
		t.Errorf("catalog saw %d calls, want 1", n)
	}
	if _, err := calls.filter(context.Background(), params, "en"); err == nil {
		t.Error("a different language is a different request")
	}
	if n := calls.count(); n != 2 {
		t.Errorf("count() = %d, want 2", n)
	}
}
