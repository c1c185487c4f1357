package ranking

import "gopkg.in/yaml.v3"

// ScoringConfig holds every weight and threshold the scorer uses. Fields decoded
// from YAML keep their value even when it is zero; ApplyDefaults only fills fields
// the file left out.
type ScoringConfig struct {
	// set holds the YAML keys present in the decoded document.
	set map[string]bool

	// Every candidate starts here before facet deltas are added.
	BaseScore float64 `yaml:"base_score"` // default: 1.0

	// Price facet
	PriceInBand         float64 `yaml:"price_in_band"`         // default: 2.0
	PriceNearBelow      float64 `yaml:"price_near_below"`      // default: 1.0
	PriceBelowMax       float64 `yaml:"price_below_max"`       // default: 1.5
	PriceNearAbove      float64 `yaml:"price_near_above"`      // default: 0.5
	PriceMismatch       float64 `yaml:"price_mismatch"`        // default: -2.0
	PriceLowerTolerance float64 `yaml:"price_lower_tolerance"` // default: 0.8
	PriceUpperTolerance float64 `yaml:"price_upper_tolerance"` // default: 1.2

	// Occasion facet, per hit
	OccasionHit  float64 `yaml:"occasion_hit"`  // default: 1.5
	OccasionMiss float64 `yaml:"occasion_miss"` // default: -1.5

	// Season facet, per hit
	SeasonHit  float64 `yaml:"season_hit"`  // default: 1.0
	SeasonMiss float64 `yaml:"season_miss"` // default: -0.8

	// Quality facet
	QualityTop      float64 `yaml:"quality_top"`       // default: 2.0
	QualityHigh     float64 `yaml:"quality_high"`      // default: 1.0
	QualityMid      float64 `yaml:"quality_mid"`       // default: 0.3
	QualityMiss     float64 `yaml:"quality_miss"`      // default: -1.5 (excellent only, critical)
	QualitySoftMiss float64 `yaml:"quality_soft_miss"` // default: -0.5

	// Rating thresholds (top, high, mid) per preference tier
	ExcellentRatings  [3]float64 `yaml:"excellent_ratings"`  // default: 4.5, 4.2, 3.8
	VeryGoodRatings   [3]float64 `yaml:"very_good_ratings"`  // default: 4.2, 3.8, 3.5
	GoodRatings       [3]float64 `yaml:"good_ratings"`       // default: 3.8, 3.5, 3.0
	AcceptableRatings [3]float64 `yaml:"acceptable_ratings"` // default: 3.0, 2.5, 2.0

	// Outfit facet, per hit
	OutfitHit  float64 `yaml:"outfit_hit"`  // default: 1.5
	OutfitMiss float64 `yaml:"outfit_miss"` // default: -1.2

	// Item type bonus per requested type found in the product text
	ItemTypeHit float64 `yaml:"item_type_hit"` // default: 0.5

	// Fuzzy match threshold for occasion and season hits in product text
	FuzzyThreshold float64 `yaml:"fuzzy_threshold"` // default: 0.6

	// Inclusion
	MinMatchRatio  float64 `yaml:"min_match_ratio"`  // default: 0.5
	MinScoreStrong float64 `yaml:"min_score_strong"` // default: 1.5 (price, occasion or quality active)
	MinScore       float64 `yaml:"min_score"`        // default: 1.0
}

// DefaultScoringConfig returns the default scoring configuration.
func DefaultScoringConfig() *ScoringConfig {
	return &ScoringConfig{
		BaseScore: 1.0,

		PriceInBand:         2.0,
		PriceNearBelow:      1.0,
		PriceBelowMax:       1.5,
		PriceNearAbove:      0.5,
		PriceMismatch:       -2.0,
		PriceLowerTolerance: 0.8,
		PriceUpperTolerance: 1.2,

		OccasionHit:  1.5,
		OccasionMiss: -1.5,

		SeasonHit:  1.0,
		SeasonMiss: -0.8,

		QualityTop:      2.0,
		QualityHigh:     1.0,
		QualityMid:      0.3,
		QualityMiss:     -1.5,
		QualitySoftMiss: -0.5,

		ExcellentRatings:  [3]float64{4.5, 4.2, 3.8},
		VeryGoodRatings:   [3]float64{4.2, 3.8, 3.5},
		GoodRatings:       [3]float64{3.8, 3.5, 3.0},
		AcceptableRatings: [3]float64{3.0, 2.5, 2.0},

		OutfitHit:  1.5,
		OutfitMiss: -1.2,

		ItemTypeHit: 0.5,

		FuzzyThreshold: 0.6,

		MinMatchRatio:  0.5,
		MinScoreStrong: 1.5,
		MinScore:       1.0,
	}
}

// UnmarshalYAML decodes the scoring section and records which keys it named.
func (c *ScoringConfig) UnmarshalYAML(value *yaml.Node) error {
	type plain ScoringConfig
	var decoded plain
	if err := value.Decode(&decoded); err != nil {
		return err
	}
	*c = ScoringConfig(decoded)
	c.set = make(map[string]bool)
	if value.Kind == yaml.MappingNode {
		for i := 0; i+1 < len(value.Content); i += 2 {
			c.set[value.Content[i].Value] = true
		}
	}
	return nil
}

// ApplyDefaults fills in zero values with defaults, except for fields the decoded
// YAML set explicitly.
func (c *ScoringConfig) ApplyDefaults() {
	d := DefaultScoringConfig()

	floats := []struct {
		key string
		v   *float64
		def float64
	}{
		{"base_score", &c.BaseScore, d.BaseScore},
		{"price_in_band", &c.PriceInBand, d.PriceInBand},
		{"price_near_below", &c.PriceNearBelow, d.PriceNearBelow},
		{"price_below_max", &c.PriceBelowMax, d.PriceBelowMax},
		{"price_near_above", &c.PriceNearAbove, d.PriceNearAbove},
		{"price_mismatch", &c.PriceMismatch, d.PriceMismatch},
		{"price_lower_tolerance", &c.PriceLowerTolerance, d.PriceLowerTolerance},
		{"price_upper_tolerance", &c.PriceUpperTolerance, d.PriceUpperTolerance},
		{"occasion_hit", &c.OccasionHit, d.OccasionHit},
		{"occasion_miss", &c.OccasionMiss, d.OccasionMiss},
		{"season_hit", &c.SeasonHit, d.SeasonHit},
		{"season_miss", &c.SeasonMiss, d.SeasonMiss},
		{"quality_top", &c.QualityTop, d.QualityTop},
		{"quality_high", &c.QualityHigh, d.QualityHigh},
		{"quality_mid", &c.QualityMid, d.QualityMid},
		{"quality_miss", &c.QualityMiss, d.QualityMiss},
		{"quality_soft_miss", &c.QualitySoftMiss, d.QualitySoftMiss},
		{"outfit_hit", &c.OutfitHit, d.OutfitHit},
		{"outfit_miss", &c.OutfitMiss, d.OutfitMiss},
		{"item_type_hit", &c.ItemTypeHit, d.ItemTypeHit},
		{"fuzzy_threshold", &c.FuzzyThreshold, d.FuzzyThreshold},
		{"min_match_ratio", &c.MinMatchRatio, d.MinMatchRatio},
		{"min_score_strong", &c.MinScoreStrong, d.MinScoreStrong},
		{"min_score", &c.MinScore, d.MinScore},
	}
	for _, f := range floats {
		if *f.v == 0 && !c.set[f.key] {
			*f.v = f.def
		}
	}

	tiers := []struct {
		key string
		v   *[3]float64
		def [3]float64
	}{
		{"excellent_ratings", &c.ExcellentRatings, d.ExcellentRatings},
		{"very_good_ratings", &c.VeryGoodRatings, d.VeryGoodRatings},
		{"good_ratings", &c.GoodRatings, d.GoodRatings},
		{"acceptable_ratings", &c.AcceptableRatings, d.AcceptableRatings},
	}
	for _, t := range tiers {
		if *t.v == ([3]float64{}) && !c.set[t.key] {
			*t.v = t.def
		}
	}
}
