package ranking

import (
	"github.com/hyperjump/souq/internal/intent"
	"github.com/hyperjump/souq/internal/models"
)

// Facet names used as keys of ScoredCandidate.Breakdown.
const (
	FacetBase     = "base"
	FacetPrice    = "price"
	FacetOccasion = "occasion"
	FacetSeason   = "season"
	FacetQuality  = "quality"
	FacetOutfit   = "outfit"
	FacetItems    = "items"
)

// facetResult is the outcome of one facet for one candidate.
type facetResult struct {
	name     string
	delta    float64
	hits     float64
	matched  bool
	critical bool
	strong   bool
}

// scorePrice compares the candidate price with [min, max] of the intent. max == 0 means
// no upper bound; then a price far below min is a mismatch.
func scorePrice(cfg *ScoringConfig, c *models.Candidate, in *intent.SearchIntent) (facetResult, bool) {
	if !in.HasPrice() {
		return facetResult{}, false
	}
	r := facetResult{name: FacetPrice, strong: true}
	p, lo, hi := c.Price, in.PriceMin, in.PriceMax
	if p <= 0 {
		// Unknown price: counted as active but neither rewarded nor penalized.
		return r, true
	}

	switch {
	case p >= lo && (hi == 0 || p <= hi):
		r.delta = cfg.PriceInBand
	case p < lo && p >= lo*cfg.PriceLowerTolerance:
		r.delta = cfg.PriceNearBelow
	case p < lo && hi > 0:
		r.delta = cfg.PriceBelowMax
	case hi > 0 && p > hi && p <= hi*cfg.PriceUpperTolerance:
		r.delta = cfg.PriceNearAbove
	default:
		r.delta = cfg.PriceMismatch
		r.critical = true
	}
	r.matched = r.delta > 0
	if r.matched {
		r.hits = 1
	}
	return r, true
}

func scoreOccasion(cfg *ScoringConfig, pt *productText, in *intent.SearchIntent) (facetResult, bool) {
	if !in.HasOccasion() {
		return facetResult{}, false
	}
	r := facetResult{name: FacetOccasion, strong: true}
	hits := pt.hits(intent.OccasionKeywords(in.Occasion), cfg.FuzzyThreshold)
	if hits == 0 {
		r.delta = cfg.OccasionMiss
		r.critical = true
		return r, true
	}
	r.hits = float64(hits)
	r.delta = cfg.OccasionHit * r.hits
	r.matched = true
	return r, true
}

func scoreSeason(cfg *ScoringConfig, pt *productText, in *intent.SearchIntent) (facetResult, bool) {
	if !in.HasSeason() {
		return facetResult{}, false
	}
	r := facetResult{name: FacetSeason}
	hits := pt.hits(intent.SeasonKeywords(in.Season), cfg.FuzzyThreshold)
	if hits == 0 {
		r.delta = cfg.SeasonMiss
		return r, true
	}
	r.hits = float64(hits)
	r.delta = cfg.SeasonHit * r.hits
	r.matched = true
	return r, true
}

// scoreQuality rates the candidate against the preference tier. Only the excellent
// tier can disqualify; the top bonus of that tier also requires the best-seller flag.
func scoreQuality(cfg *ScoringConfig, c *models.Candidate, in *intent.SearchIntent) (facetResult, bool) {
	if !in.HasQuality() {
		return facetResult{}, false
	}
	r := facetResult{name: FacetQuality, strong: true}

	var tiers [3]float64
	switch in.Quality {
	case intent.QualityExcellent:
		tiers = cfg.ExcellentRatings
	case intent.QualityVeryGood:
		tiers = cfg.VeryGoodRatings
	case intent.QualityGood:
		tiers = cfg.GoodRatings
	default:
		tiers = cfg.AcceptableRatings
	}
	excellent := in.Quality == intent.QualityExcellent

	switch {
	case c.Rating >= tiers[0] && (!excellent || c.IsBestSeller):
		r.delta = cfg.QualityTop
	case c.Rating >= tiers[1]:
		r.delta = cfg.QualityHigh
	case c.Rating >= tiers[2]:
		r.delta = cfg.QualityMid
	case excellent:
		r.delta = cfg.QualityMiss
		r.critical = true
	default:
		r.delta = cfg.QualitySoftMiss
	}
	r.matched = r.delta > 0
	if r.matched {
		r.hits = 1
	}
	return r, true
}

func scoreOutfit(cfg *ScoringConfig, pt *productText, in *intent.SearchIntent) (facetResult, bool) {
	if !in.WantsCompleteOutfit {
		return facetResult{}, false
	}
	r := facetResult{name: FacetOutfit}
	hits := pt.hits(intent.OutfitKeywords(), 0)
	if hits == 0 {
		r.delta = cfg.OutfitMiss
		return r, true
	}
	r.hits = float64(hits)
	r.delta = cfg.OutfitHit * r.hits
	r.matched = true
	return r, true
}

// scoreItems rewards each requested item type named in the product text. A product
// that names none of them is not penalized: the catalog search already targeted them.
func scoreItems(cfg *ScoringConfig, pt *productText, in *intent.SearchIntent) (facetResult, bool) {
	if len(in.ItemTypes) == 0 {
		return facetResult{}, false
	}
	r := facetResult{name: FacetItems}
	for _, key := range in.ItemTypes {
		if pt.hits(intent.ItemVariants(key), 0) > 0 {
			r.hits++
		}
	}
	r.delta = cfg.ItemTypeHit * r.hits
	r.matched = r.hits > 0
	return r, true
}
