package format

import "github.com/hyperjump/souq/internal/intent"

type label struct{ ar, en string }

func (l label) in(lang string) string {
	if lang == "ar" {
		return l.ar
	}
	return l.en
}

// Facet phrases are written to slot into the summary sentence as they are.

var occasionLabels = map[intent.Occasion]label{
	intent.OccasionWedding: {"للفرح", "for a wedding"},
	intent.OccasionWork:    {"للشغل", "for work"},
	intent.OccasionParty:   {"للسهرات والحفلات", "for a party"},
	intent.OccasionSports:  {"للرياضه", "for sports"},
	intent.OccasionFormal:  {"للمناسبات الرسميه", "for a formal occasion"},
	intent.OccasionCasual:  {"للخروج", "for casual days"},
	intent.OccasionBeach:   {"للبحر والمصيف", "for the beach"},
	intent.OccasionHome:    {"للبيت", "for home"},
	intent.OccasionSchool:  {"للمدرسه والجامعه", "for school"},
}

var seasonLabels = map[intent.Season]label{
	intent.SeasonSummer: {"للصيف", "for summer"},
	intent.SeasonWinter: {"للشتا", "for winter"},
	intent.SeasonSpring: {"للربيع", "for spring"},
	intent.SeasonAutumn: {"للخريف", "for autumn"},
}

var priceLabels = map[intent.PriceRange]label{
	intent.PriceVeryLow:  {"بسعر رخيص جدا", "at a very low price"},
	intent.PriceLow:      {"بسعر اقتصادي", "at a budget price"},
	intent.PriceMedium:   {"بسعر متوسط", "at a mid-range price"},
	intent.PriceHigh:     {"بسعر عالي", "at a premium price"},
	intent.PriceVeryHigh: {"من الفئه الفاخره", "in the luxury range"},
}

var qualityLabels = map[intent.Quality]label{
	intent.QualityExcellent:  {"بجوده ممتازه", "with excellent quality"},
	intent.QualityVeryGood:   {"بجوده عاليه", "with very good quality"},
	intent.QualityGood:       {"بجوده كويسه", "with good quality"},
	intent.QualityAcceptable: {"بجوده مقبوله", "with acceptable quality"},
}

var lblOutfit = label{"تعملي منها طقم كامل", "to put together a complete outfit"}

var (
	lblPrice        = label{"السعر", "Price"}
	lblCurrency     = label{"جنيه", "EGP"}
	lblInsteadOf    = label{"بدل", "was"}
	lblDiscount     = label{"خصم", "off"}
	lblStore        = label{"المتجر", "Store"}
	lblRating       = label{"التقييم", "Rating"}
	lblReviews      = label{"تقييم", "reviews"}
	lblInStock      = label{"متوفر", "In stock"}
	lblPieces       = label{"قطعه", "left"}
	lblOutOfStock   = label{"غير متوفر حاليا", "Out of stock"}
	lblBestSeller   = label{"الاكثر مبيعا", "Best seller"}
	lblNewArrival   = label{"وصل حديثا", "New arrival"}
	lblFreeDelivery = label{"توصيل مجاني", "Free delivery"}
	lblColors       = label{"الالوان", "Colors"}
	lblSizes        = label{"المقاسات", "Sizes"}
	lblLink         = label{"الرابط", "Link"}
)
