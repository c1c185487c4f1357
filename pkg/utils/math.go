package utils

import (
	"math"
	"strconv"
	"strings"
)

// Round rounds v to the given number of decimal places.
func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// FormatAmount renders a price with thousands separators and at most two decimals,
// dropping them when the amount is whole: 1250 -> "1,250", 99.5 -> "99.50".
func FormatAmount(v float64) string {
	v = Round(v, 2)
	neg := v < 0
	if neg {
		v = -v
	}
	whole := math.Floor(v)
	frac := Round(v-whole, 2)
	if frac >= 1 {
		whole++
		frac = 0
	}

	digits := strconv.FormatFloat(whole, 'f', 0, 64)
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}
	if frac > 0 {
		b.WriteString(strconv.FormatFloat(frac, 'f', 2, 64)[1:])
	}
	return b.String()
}
