package intent

import (
	"regexp"
	"strconv"
)

// PriceBand is the inclusive-exclusive interval [Min, Max) of one price range, in EGP.
// Max == 0 means the band has no upper bound.
type PriceBand struct {
	Range PriceRange `yaml:"range" json:"range"`
	Min   float64    `yaml:"min" json:"min"`
	Max   float64    `yaml:"max" json:"max"`
}

// Contains reports whether price falls in the band.
func (b PriceBand) Contains(price float64) bool {
	if price < b.Min {
		return false
	}
	return b.Max == 0 || price < b.Max
}

// DefaultPriceBands are monotonically increasing and non-overlapping.
var DefaultPriceBands = []PriceBand{
	{Range: PriceVeryLow, Min: 0, Max: 150},
	{Range: PriceLow, Min: 150, Max: 350},
	{Range: PriceMedium, Min: 350, Max: 700},
	{Range: PriceHigh, Min: 700, Max: 1500},
	{Range: PriceVeryHigh, Min: 1500, Max: 0},
}

// ValidateBands checks that bands increase monotonically without overlap and that only
// the last band is unbounded.
func ValidateBands(bands []PriceBand) bool {
	if len(bands) == 0 {
		return false
	}
	for i, b := range bands {
		last := i == len(bands)-1
		if b.Max == 0 && !last {
			return false
		}
		if b.Max != 0 && b.Max <= b.Min {
			return false
		}
		if i > 0 && b.Min != bands[i-1].Max {
			return false
		}
	}
	return true
}

// BandFor returns the band of range r.
func BandFor(bands []PriceBand, r PriceRange) (PriceBand, bool) {
	for _, b := range bands {
		if b.Range == r {
			return b, true
		}
	}
	return PriceBand{}, false
}

// BandContaining returns the band price falls in.
func BandContaining(bands []PriceBand, price float64) (PriceBand, bool) {
	for _, b := range bands {
		if b.Contains(price) {
			return b, true
		}
	}
	return PriceBand{}, false
}

const num = `(\d+(?:\.\d+)?)`

var (
	rangePrefixed = regexp.MustCompile(`(?:^|\s)(?:من|بين|between|from)\s+` + num + `\s*(?:-|\s(?:to|and|الي|لحد|ل|و)\s)\s*` + num)
	rangeDashed   = regexp.MustCompile(num + `\s*-\s*` + num + `\s*(?:جنيه|ج|egp|le|pounds?)(?:\s|$)`)
	maxPrice      = regexp.MustCompile(`(?:^|\s)(?:تحت|اقل من|مش اكتر من|مش اكثر من|لحد|maximum|max|under|below|less than|up to|within)\s+` + num)
	minPrice      = regexp.MustCompile(`(?:^|\s)(?:فوق|اكتر من|اكثر من|minimum|min|over|above|more than|starting from)\s+` + num)
	aroundPrice   = regexp.MustCompile(`(?:^|\s)(?:حوالي|في حدود|تقريبا|around|about|approximately)\s+` + num)
	currencyPrice = regexp.MustCompile(`(?:^|\s)` + num + `\s*(?:جنيه|ج|egp|le|pounds?)(?:\s|$)`)
)

// explicitPrice extracts a numeric price constraint from normalized text. max == 0
// means no upper bound.
func explicitPrice(text string) (minP, maxP float64, ok bool) {
	if m := rangePrefixed.FindStringSubmatch(text); m != nil {
		return orderedPair(m[1], m[2])
	}
	if m := rangeDashed.FindStringSubmatch(text); m != nil {
		return orderedPair(m[1], m[2])
	}
	if m := maxPrice.FindStringSubmatch(text); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil && v > 0 {
			return 0, v, true
		}
	}
	if m := minPrice.FindStringSubmatch(text); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil && v > 0 {
			return v, 0, true
		}
	}
	for _, re := range []*regexp.Regexp{aroundPrice, currencyPrice} {
		if m := re.FindStringSubmatch(text); m != nil {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil && v > 0 {
				return v * 0.8, v * 1.2, true
			}
		}
	}
	return 0, 0, false
}

func orderedPair(a, b string) (float64, float64, bool) {
	x, err1 := strconv.ParseFloat(a, 64)
	y, err2 := strconv.ParseFloat(b, 64)
	if err1 != nil || err2 != nil || (x == 0 && y == 0) {
		return 0, 0, false
	}
	if x > y {
		x, y = y, x
	}
	return x, y, true
}

// rangeForBounds picks the band of an explicit constraint: the band holding the midpoint
// of [min, max], or the band holding min when there is no upper bound.
func rangeForBounds(bands []PriceBand, minP, maxP float64) PriceRange {
	ref := minP
	if maxP > 0 {
		ref = (minP + maxP) / 2
	}
	if b, ok := BandContaining(bands, ref); ok {
		return b.Range
	}
	return PriceNone
}
