// Package format renders scored candidates as message cards and writes the one-line
// summary of a search in Arabic or English.
package format

import (
	"fmt"
	"strings"

	"github.com/hyperjump/souq/internal/intent"
	"github.com/hyperjump/souq/internal/models"
	"github.com/hyperjump/souq/pkg/utils"
)

const defaultDescriptionLength = 120

// Formatter renders search output. The zero value is not usable; call New.
type Formatter struct {
	productURL     func(id string) string
	suggest        func(in intent.SearchIntent, lang string) []string
	descriptionLen int
}

// Option configures a Formatter.
type Option func(*Formatter)

// WithProductURL sets how the catalog link of a product is built.
func WithProductURL(fn func(id string) string) Option {
	return func(f *Formatter) {
		if fn != nil {
			f.productURL = fn
		}
	}
}

// WithSuggestions sets the source of alternate search terms for empty results.
func WithSuggestions(fn func(in intent.SearchIntent, lang string) []string) Option {
	return func(f *Formatter) {
		if fn != nil {
			f.suggest = fn
		}
	}
}

// WithDescriptionLength sets how many characters of the description a card shows.
// Zero or less hides the description.
func WithDescriptionLength(n int) Option {
	return func(f *Formatter) {
		f.descriptionLen = n
	}
}

// New creates a Formatter.
func New(opts ...Option) *Formatter {
	f := &Formatter{
		productURL:     func(string) string { return "" },
		suggest:        func(_ intent.SearchIntent, lang string) []string { return intent.PopularTerms(lang) },
		descriptionLen: defaultDescriptionLength,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Format renders one card per result, in order.
func (f *Formatter) Format(results []*models.ScoredCandidate, lang string) []string {
	lang = language(lang)
	cards := make([]string, 0, len(results))
	for i, r := range results {
		if r == nil || r.Candidate == nil {
			continue
		}
		rank := r.Rank
		if rank <= 0 {
			rank = i + 1
		}
		cards = append(cards, f.Card(rank, r.Candidate, lang))
	}
	return cards
}

// Card renders a single product.
func (f *Formatter) Card(rank int, c *models.Candidate, lang string) string {
	lang = language(lang)
	sep := listSeparator(lang)
	currency := lblCurrency.in(lang)

	var b strings.Builder
	fmt.Fprintf(&b, "%d. %s\n", rank, strings.TrimSpace(c.Name))

	fmt.Fprintf(&b, "💰 %s: %s %s", lblPrice.in(lang), utils.FormatAmount(c.Price), currency)
	if c.HasDiscount() {
		fmt.Fprintf(&b, " (%s %s %s%s %s%% %s)",
			lblInsteadOf.in(lang), utils.FormatAmount(c.OriginalPrice), currency, sep,
			utils.FormatAmount(c.DiscountPercent), lblDiscount.in(lang))
	}
	b.WriteByte('\n')

	if c.StoreName != "" {
		fmt.Fprintf(&b, "🏪 %s: %s\n", lblStore.in(lang), c.StoreName)
	}
	if c.Rating > 0 {
		fmt.Fprintf(&b, "⭐ %s: %.1f/5", lblRating.in(lang), utils.Round(c.Rating, 1))
		if c.ReviewCount > 0 {
			fmt.Fprintf(&b, " (%d %s)", c.ReviewCount, lblReviews.in(lang))
		}
		b.WriteByte('\n')
	}
	if c.InStock() {
		fmt.Fprintf(&b, "📦 %s (%d %s)\n", lblInStock.in(lang), c.StockQuantity, lblPieces.in(lang))
	} else {
		fmt.Fprintf(&b, "📦 %s\n", lblOutOfStock.in(lang))
	}

	var badges []string
	if c.IsBestSeller {
		badges = append(badges, lblBestSeller.in(lang))
	}
	if c.IsNewArrival {
		badges = append(badges, lblNewArrival.in(lang))
	}
	if c.IsFreeDelivery {
		badges = append(badges, lblFreeDelivery.in(lang))
	}
	if len(badges) > 0 {
		fmt.Fprintf(&b, "🏷️ %s\n", strings.Join(badges, " | "))
	}
	if len(c.Colors) > 0 {
		fmt.Fprintf(&b, "🎨 %s: %s\n", lblColors.in(lang), strings.Join(c.Colors, sep))
	}
	if len(c.Sizes) > 0 {
		fmt.Fprintf(&b, "📏 %s: %s\n", lblSizes.in(lang), strings.Join(c.Sizes, sep))
	}
	if f.descriptionLen > 0 && c.Description != "" {
		desc := strings.Join(strings.Fields(c.Description), " ")
		fmt.Fprintf(&b, "📝 %s\n", utils.Truncate(desc, f.descriptionLen))
	}
	if link := f.productURL(c.ID); link != "" {
		fmt.Fprintf(&b, "🔗 %s: %s\n", lblLink.in(lang), link)
	}
	return strings.TrimRight(b.String(), "\n")
}

func language(lang string) string {
	if lang == "ar" {
		return "ar"
	}
	return "en"
}

func listSeparator(lang string) string {
	if lang == "ar" {
		return "، "
	}
	return ", "
}
