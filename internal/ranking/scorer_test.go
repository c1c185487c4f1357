package ranking

import (
	"math"
	"sync"
	"testing"

	"github.com/hyperjump/souq/internal/intent"
	"github.com/hyperjump/souq/internal/models"
)

func lowBand() *intent.SearchIntent {
	return &intent.SearchIntent{PriceRange: intent.PriceLow, PriceMin: 150, PriceMax: 350}
}

func product(id, name string, price float64) *models.Candidate {
	return &models.Candidate{ID: id, Name: name, Price: price}
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestScoreAndFilter_PriceMismatchIsExcluded(t *testing.T) {
	s := NewScorer(nil, nil)

	sc := s.Score(product("1", "قميص", 800), lowBand())
	if !sc.CriticalMismatch {
		t.Error("expected critical mismatch for a price of 800 against the low band")
	}

	got := s.ScoreAndFilter([]*models.Candidate{product("1", "قميص", 800)}, lowBand())
	if len(got) != 0 {
		t.Errorf("expected the candidate to be excluded, got %+v", got)
	}
}

func TestScore_PriceMonotonicity(t *testing.T) {
	s := NewScorer(nil, nil)
	in := lowBand()

	inside := s.Score(product("1", "قميص", 250), in)
	far := s.Score(product("2", "قميص", 3*in.PriceMax), in)

	if inside.Score <= far.Score {
		t.Errorf("inside score %v should exceed far score %v", inside.Score, far.Score)
	}
	if !far.CriticalMismatch || inside.CriticalMismatch {
		t.Errorf("critical flags: inside=%v far=%v", inside.CriticalMismatch, far.CriticalMismatch)
	}
}

func TestScore_PriceRules(t *testing.T) {
	cfg := DefaultScoringConfig()
	tests := []struct {
		name     string
		in       *intent.SearchIntent
		price    float64
		want     float64
		critical bool
	}{
		{"inside band", lowBand(), 200, cfg.PriceInBand, false},
		{"upper bound inclusive", lowBand(), 350, cfg.PriceInBand, false},
		{"just below band", lowBand(), 130, cfg.PriceNearBelow, false},
		{"well below band", lowBand(), 60, cfg.PriceBelowMax, false},
		{"just above band", lowBand(), 400, cfg.PriceNearAbove, false},
		{"far above band", lowBand(), 500, cfg.PriceMismatch, true},
		{"unbounded inside", &intent.SearchIntent{PriceRange: intent.PriceVeryHigh, PriceMin: 1500}, 9000, cfg.PriceInBand, false},
		{"unbounded just below", &intent.SearchIntent{PriceRange: intent.PriceVeryHigh, PriceMin: 1500}, 1300, cfg.PriceNearBelow, false},
		{"unbounded far below", &intent.SearchIntent{PriceRange: intent.PriceVeryHigh, PriceMin: 1500}, 300, cfg.PriceMismatch, true},
		{"unknown price", lowBand(), 0, 0, false},
	}
	s := NewScorer(nil, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := s.Score(product("1", "item", tt.price), tt.in)
			if got := sc.Breakdown[FacetPrice]; !approx(got, tt.want) {
				t.Errorf("price delta = %v, want %v", got, tt.want)
			}
			if sc.CriticalMismatch != tt.critical {
				t.Errorf("CriticalMismatch = %v, want %v", sc.CriticalMismatch, tt.critical)
			}
		})
	}
}

func TestScore_Occasion(t *testing.T) {
	s := NewScorer(nil, nil)
	in := &intent.SearchIntent{Occasion: intent.OccasionWedding}

	sc := s.Score(product("1", "فستان سواريه للفرح", 500), in)
	if sc.CriticalMismatch {
		t.Fatal("wedding dress should not be a mismatch")
	}
	if got := sc.Breakdown[FacetOccasion]; !approx(got, 3.0) {
		t.Errorf("occasion delta = %v, want 3.0 for two hits", got)
	}

	sc = s.Score(product("2", "فستان زفافي", 500), in)
	if got := sc.Breakdown[FacetOccasion]; !approx(got, 1.5) {
		t.Errorf("fuzzy occasion delta = %v, want 1.5", got)
	}

	sc = s.Score(product("3", "Bridal gown for weddings", 500), in)
	if got := sc.Breakdown[FacetOccasion]; got <= 0 {
		t.Errorf("english occasion delta = %v, want positive", got)
	}

	sc = s.Score(product("4", "قميص قطن", 500), in)
	if !sc.CriticalMismatch || !approx(sc.Breakdown[FacetOccasion], -1.5) {
		t.Errorf("unrelated product: critical=%v delta=%v", sc.CriticalMismatch, sc.Breakdown[FacetOccasion])
	}
}

func TestScore_SeasonMissIsNotCritical(t *testing.T) {
	s := NewScorer(nil, nil)
	in := lowBand()
	in.Season = intent.SeasonSummer

	got := s.ScoreAndFilter([]*models.Candidate{product("1", "قميص قطن", 200)}, in)
	if len(got) != 1 {
		t.Fatalf("expected the candidate to be kept, got %d", len(got))
	}
	if want := 1.0 + 2.0 - 0.8; !approx(got[0].Score, want) {
		t.Errorf("Score = %v, want %v", got[0].Score, want)
	}
}

func TestScore_Quality(t *testing.T) {
	tests := []struct {
		name       string
		quality    intent.Quality
		rating     float64
		bestSeller bool
		want       float64
		critical   bool
	}{
		{"excellent best seller", intent.QualityExcellent, 4.6, true, 2.0, false},
		{"excellent without flag", intent.QualityExcellent, 4.6, false, 1.0, false},
		{"excellent mid", intent.QualityExcellent, 3.9, false, 0.3, false},
		{"excellent miss", intent.QualityExcellent, 3.0, true, -1.5, true},
		{"very good top", intent.QualityVeryGood, 4.3, false, 2.0, false},
		{"good soft miss", intent.QualityGood, 2.0, false, -0.5, false},
		{"acceptable top", intent.QualityAcceptable, 3.1, false, 2.0, false},
	}
	s := NewScorer(nil, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := product("1", "item", 100)
			c.Rating, c.IsBestSeller = tt.rating, tt.bestSeller
			sc := s.Score(c, &intent.SearchIntent{Quality: tt.quality})
			if got := sc.Breakdown[FacetQuality]; !approx(got, tt.want) {
				t.Errorf("quality delta = %v, want %v", got, tt.want)
			}
			if sc.CriticalMismatch != tt.critical {
				t.Errorf("CriticalMismatch = %v, want %v", sc.CriticalMismatch, tt.critical)
			}
		})
	}
}

func TestScoreAndFilter_MatchRatio(t *testing.T) {
	s := NewScorer(nil, nil)

	// Price matched, quality soft miss: 1 of 2 strong facets is enough.
	in := lowBand()
	in.Quality = intent.QualityGood
	c := product("1", "item", 200)
	c.Rating = 2.0
	if got := s.ScoreAndFilter([]*models.Candidate{c}, in); len(got) != 1 {
		t.Errorf("half of the strong facets matched: kept %d, want 1", len(got))
	}

	// Quality alone, soft miss: 0 of 1.
	in = &intent.SearchIntent{Quality: intent.QualityGood}
	if got := s.ScoreAndFilter([]*models.Candidate{c}, in); len(got) != 0 {
		t.Errorf("no strong facet matched: kept %d, want 0", len(got))
	}
}

func TestScore_Outfit(t *testing.T) {
	s := NewScorer(nil, nil)
	in := &intent.SearchIntent{WantsCompleteOutfit: true}

	if got := s.Score(product("1", "طقم فستان وشنطه", 500), in).Breakdown[FacetOutfit]; !approx(got, 1.5) {
		t.Errorf("set delta = %v, want 1.5", got)
	}
	sc := s.Score(product("2", "فستان", 500), in)
	if got := sc.Breakdown[FacetOutfit]; !approx(got, -1.2) || sc.CriticalMismatch {
		t.Errorf("single piece delta = %v critical = %v", got, sc.CriticalMismatch)
	}
}

func TestScoreAndFilter_ExtractedIntent(t *testing.T) {
	in := intent.NewExtractor().Analyze("عايز طقم كامل للفرح صيفي ومش غالي", "ar")
	s := NewScorer(nil, nil)

	candidates := []*models.Candidate{
		product("cheap-shirt", "قميص رجالي", 200),
		product("set", "طقم سواريه صيفي للفرح", 300),
		product("pricey-set", "طقم فرح فاخر", 1200),
	}
	got := s.ScoreAndFilter(candidates, &in)
	if len(got) != 1 {
		t.Fatalf("kept %d candidates, want 1: %+v", len(got), got)
	}
	top := got[0]
	if top.Candidate.ID != "set" || top.Rank != 1 {
		t.Errorf("top = %s rank %d", top.Candidate.ID, top.Rank)
	}
	// base 1 + price 2 + occasion (فرح, سواريه) 3 + season 1 + outfit 1.5
	if !approx(top.Score, 8.5) {
		t.Errorf("Score = %v, want 8.5 (breakdown %v)", top.Score, top.Breakdown)
	}
}

func TestScoreAndFilter_StableOrder(t *testing.T) {
	s := NewScorer(nil, nil)
	in := lowBand()
	candidates := []*models.Candidate{
		product("a", "قميص", 200),
		product("b", "قميص", 300),
		product("c", "قميص", 130),
		product("d", "قميص", 250),
	}
	got := s.ScoreAndFilter(candidates, in)
	var ids []string
	for _, g := range got {
		ids = append(ids, g.Candidate.ID)
	}
	want := []string{"a", "b", "d", "c"}
	if len(ids) != len(want) {
		t.Fatalf("ids = %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("ids = %v, want %v", ids, want)
		}
	}
}

func TestScoreAndFilter_NoFacets(t *testing.T) {
	s := NewScorer(nil, nil)
	got := s.ScoreAndFilter([]*models.Candidate{product("1", "x", 10), nil}, &intent.SearchIntent{})
	if len(got) != 1 || !approx(got[0].Score, 1.0) {
		t.Errorf("got %+v, want one candidate at the base score", got)
	}
}

func TestScorer_SetConfig(t *testing.T) {
	s := NewScorer(&ScoringConfig{PriceInBand: 5}, nil)
	cfg := s.Config()
	if cfg.PriceInBand != 5 || cfg.OccasionHit != 1.5 {
		t.Errorf("config = %+v, want custom price and default occasion", cfg)
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				s.SetConfig(&ScoringConfig{PriceInBand: float64(i + 1)})
				return
			}
			s.ScoreAndFilter([]*models.Candidate{product("1", "x", 200)}, lowBand())
		}(i)
	}
	wg.Wait()

	s.SetConfig(nil)
	if got := s.Config().PriceInBand; got != 2.0 {
		t.Errorf("PriceInBand after reset = %v, want 2.0", got)
	}
}
