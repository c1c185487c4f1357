package format

import (
	"fmt"
	"strings"

	"github.com/hyperjump/souq/internal/intent"
	"github.com/hyperjump/souq/pkg/utils"
)

const maxQueryEcho = 60

// Summarize writes one sentence describing what was found for the intent. A count of
// zero yields the no-results message with suggestions.
func (f *Formatter) Summarize(in intent.SearchIntent, count int, lang string) string {
	lang = language(lang)
	if count <= 0 {
		return f.NoResults(in, f.suggest(in, lang), lang)
	}

	var head string
	if lang == "ar" {
		switch count {
		case 1:
			head = "لقيتلك منتج واحد"
		case 2:
			head = "لقيتلك منتجين"
		default:
			head = fmt.Sprintf("لقيتلك %d منتجات", count)
		}
	} else {
		noun := "products"
		if count == 1 {
			noun = "product"
		}
		head = fmt.Sprintf("Found %d %s", count, noun)
	}

	parts := facetPhrases(in, lang)
	if len(parts) == 0 {
		if lang == "ar" {
			return head + " ممكن يعجبوك."
		}
		return head + " you might like."
	}
	return head + " " + strings.Join(parts, listSeparator(lang)) + "."
}

// NoResults writes the localized nothing-found message, listing suggestions when
// there are any.
func (f *Formatter) NoResults(in intent.SearchIntent, suggestions []string, lang string) string {
	lang = language(lang)
	query := utils.Truncate(strings.TrimSpace(in.RawQuery), maxQueryEcho)

	var b strings.Builder
	if lang == "ar" {
		if query != "" {
			fmt.Fprintf(&b, "للاسف مالقيتش منتجات مناسبه لـ \"%s\".", query)
		} else {
			b.WriteString("للاسف مالقيتش منتجات مناسبه.")
		}
		if len(suggestions) > 0 {
			fmt.Fprintf(&b, "\nجرب تدور على: %s", strings.Join(suggestions, listSeparator(lang)))
		}
		return b.String()
	}

	if query != "" {
		fmt.Fprintf(&b, "Sorry, no products matched \"%s\".", query)
	} else {
		b.WriteString("Sorry, no matching products were found.")
	}
	if len(suggestions) > 0 {
		fmt.Fprintf(&b, "\nTry searching for: %s", strings.Join(suggestions, listSeparator(lang)))
	}
	return b.String()
}

// facetPhrases lists the detected facets in a fixed order: occasion, season, price,
// quality, outfit.
func facetPhrases(in intent.SearchIntent, lang string) []string {
	var parts []string
	if l, ok := occasionLabels[in.Occasion]; ok {
		parts = append(parts, l.in(lang))
	}
	if l, ok := seasonLabels[in.Season]; ok {
		parts = append(parts, l.in(lang))
	}
	if in.PriceExplicit {
		parts = append(parts, priceBounds(in, lang))
	} else if l, ok := priceLabels[in.PriceRange]; ok {
		parts = append(parts, l.in(lang))
	}
	if l, ok := qualityLabels[in.Quality]; ok {
		parts = append(parts, l.in(lang))
	}
	if in.WantsCompleteOutfit {
		parts = append(parts, lblOutfit.in(lang))
	}
	return parts
}

func priceBounds(in intent.SearchIntent, lang string) string {
	lo, hi := utils.FormatAmount(in.PriceMin), utils.FormatAmount(in.PriceMax)
	currency := lblCurrency.in(lang)
	switch {
	case in.PriceMin > 0 && in.PriceMax > 0:
		if lang == "ar" {
			return fmt.Sprintf("بسعر من %s لـ %s %s", lo, hi, currency)
		}
		return fmt.Sprintf("priced %s to %s %s", lo, hi, currency)
	case in.PriceMax > 0:
		if lang == "ar" {
			return fmt.Sprintf("بسعر تحت %s %s", hi, currency)
		}
		return fmt.Sprintf("under %s %s", hi, currency)
	default:
		if lang == "ar" {
			return fmt.Sprintf("بسعر فوق %s %s", lo, currency)
		}
		return fmt.Sprintf("over %s %s", lo, currency)
	}
}
