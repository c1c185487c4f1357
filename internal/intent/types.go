// Package intent turns a free-text shopping query into a structured SearchIntent.
package intent

// PriceRange is a qualitative price band.
type PriceRange string

const (
	PriceNone     PriceRange = "none"
	PriceVeryLow  PriceRange = "very_low"
	PriceLow      PriceRange = "low"
	PriceMedium   PriceRange = "medium"
	PriceHigh     PriceRange = "high"
	PriceVeryHigh PriceRange = "very_high"
)

// Occasion is what the customer is shopping for.
type Occasion string

const (
	OccasionNone    Occasion = "none"
	OccasionWedding Occasion = "wedding"
	OccasionWork    Occasion = "work"
	OccasionParty   Occasion = "party"
	OccasionSports  Occasion = "sports"
	OccasionFormal  Occasion = "formal"
	OccasionCasual  Occasion = "casual"
	OccasionBeach   Occasion = "beach"
	OccasionHome    Occasion = "home"
	OccasionSchool  Occasion = "school"
)

// Season is the season a product is wanted for.
type Season string

const (
	SeasonAll    Season = "all_season"
	SeasonSummer Season = "summer"
	SeasonWinter Season = "winter"
	SeasonSpring Season = "spring"
	SeasonAutumn Season = "autumn"
)

// Quality is the customer's stated quality preference.
type Quality string

const (
	QualityNone       Quality = "none"
	QualityExcellent  Quality = "excellent"
	QualityVeryGood   Quality = "very_good"
	QualityGood       Quality = "good"
	QualityAcceptable Quality = "acceptable"
)

// SearchIntent is the structured reading of one query. It is built once by
// Extractor.Analyze and treated as read-only afterwards.
type SearchIntent struct {
	RawQuery        string `json:"raw_query"`
	NormalizedQuery string `json:"normalized_query"`
	// CleanedQuery is the normalized query with stop words removed.
	CleanedQuery string `json:"cleaned_query"`
	Language     string `json:"language"`

	PriceRange PriceRange `json:"price_range"`
	// PriceMin and PriceMax bound the acceptable price. PriceMax == 0 means unbounded.
	// They come from an explicit numeric range when PriceExplicit is set, otherwise
	// from the band of PriceRange.
	PriceMin      float64 `json:"price_min,omitempty"`
	PriceMax      float64 `json:"price_max,omitempty"`
	PriceExplicit bool    `json:"price_explicit,omitempty"`

	Occasion            Occasion `json:"occasion"`
	Season              Season   `json:"season"`
	Quality             Quality  `json:"quality_preference"`
	WantsCompleteOutfit bool     `json:"wants_complete_outfit"`

	// ItemTypes are the detected category keys ("dress", "shoes"), in query order.
	ItemTypes []string `json:"item_types"`
	// ItemTerms are the query tokens that named an item type, in query order.
	ItemTerms []string `json:"item_terms,omitempty"`
	// Colors are canonical color names mentioned in the query.
	Colors []string `json:"colors,omitempty"`
	// Keywords are the query tokens worth sending to the catalog search.
	Keywords []string `json:"keywords"`
	// Unmatched are the keywords no keyword table explained.
	Unmatched []string `json:"unmatched_keywords,omitempty"`
}

// HasPrice reports whether a price constraint was detected.
func (i SearchIntent) HasPrice() bool { return i.PriceRange != PriceNone && i.PriceRange != "" }

// HasOccasion reports whether an occasion was detected.
func (i SearchIntent) HasOccasion() bool { return i.Occasion != OccasionNone && i.Occasion != "" }

// HasSeason reports whether a specific season was detected.
func (i SearchIntent) HasSeason() bool { return i.Season != SeasonAll && i.Season != "" }

// HasQuality reports whether a quality preference was detected.
func (i SearchIntent) HasQuality() bool { return i.Quality != QualityNone && i.Quality != "" }

// HasItemType reports whether key is among the detected item types.
func (i SearchIntent) HasItemType(key string) bool {
	for _, t := range i.ItemTypes {
		if t == key {
			return true
		}
	}
	return false
}

// IsEmpty reports whether no facet at all was detected.
func (i SearchIntent) IsEmpty() bool {
	return !i.HasPrice() && !i.HasOccasion() && !i.HasSeason() && !i.HasQuality() &&
		!i.WantsCompleteOutfit && len(i.ItemTypes) == 0
}

func defaultIntent(raw, lang string) SearchIntent {
	return SearchIntent{
		RawQuery:   raw,
		Language:   lang,
		PriceRange: PriceNone,
		Occasion:   OccasionNone,
		Season:     SeasonAll,
		Quality:    QualityNone,
		ItemTypes:  []string{},
		Keywords:   []string{},
	}
}
