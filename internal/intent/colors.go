package intent

import "github.com/hyperjump/souq/internal/textnorm"

type colorEntry struct {
	name     string
	variants []string
}

// colorKeywords maps canonical color names to their surface forms. Colors are kept on
// the intent for the catalog filter and so that they are never mistaken for a typo of
// an occasion or season keyword.
var colorKeywords = []colorEntry{
	{"black", []string{"اسود", "سودا", "سوداء", "black"}},
	{"white", []string{"ابيض", "بيضا", "بيضاء", "white"}},
	{"red", []string{"احمر", "حمرا", "حمراء", "red"}},
	{"blue", []string{"ازرق", "زرقا", "زرقاء", "لبني", "blue"}},
	{"navy", []string{"كحلي", "navy"}},
	{"green", []string{"اخضر", "خضرا", "زيتي", "green", "olive"}},
	{"yellow", []string{"اصفر", "صفرا", "yellow"}},
	{"pink", []string{"بينك", "وردي", "بمبي", "pink"}},
	{"beige", []string{"بيج", "beige", "cream"}},
	{"brown", []string{"بني", "بنيه", "جملي", "brown", "camel"}},
	{"grey", []string{"رمادي", "رصاصي", "grey", "gray"}},
	{"purple", []string{"بنفسجي", "موف", "purple", "lilac"}},
	{"orange", []string{"برتقالي", "اورنج", "orange"}},
	{"gold", []string{"دهبي", "ذهبي", "gold", "golden"}},
	{"silver", []string{"فضي", "silver"}},
}

// ColorLabel returns the catalog spelling of a canonical color name in lang: the
// first Arabic form for "ar", the canonical name otherwise. Unknown names are
// returned unchanged.
func ColorLabel(name, lang string) string {
	if lang != "ar" {
		return name
	}
	for _, c := range colorKeywords {
		if c.name != name {
			continue
		}
		for _, v := range c.variants {
			if textnorm.IsArabic(v) {
				return v
			}
		}
	}
	return name
}

// priceNoise words frame a numeric price and are not useful as search keywords.
var priceNoise = map[string]struct{}{
	"تحت": {}, "فوق": {}, "اقل": {}, "اكتر": {}, "اكثر": {}, "حوالي": {}, "حدود": {}, "تقريبا": {},
	"لحد": {}, "بين": {}, "سعر": {}, "بسعر": {}, "السعر": {}, "جنيه": {}, "ج": {},
	"under": {}, "below": {}, "over": {}, "above": {}, "around": {}, "about": {}, "approximately": {},
	"less": {}, "more": {}, "than": {}, "between": {}, "from": {}, "max": {}, "maximum": {}, "min": {},
	"minimum": {}, "up": {}, "within": {}, "starting": {}, "price": {}, "egp": {}, "le": {},
	"pound": {}, "pounds": {},
}
