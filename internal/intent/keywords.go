package intent

import "strings"

// Keyword tables map a facet value to its surface forms. Every entry is written in
// normalized form (textnorm.Normalize output): folded Arabic letters, lower case,
// dialect spellings already rewritten.

type occasionEntry struct {
	occasion Occasion
	phrases  []string
}

var occasionKeywords = []occasionEntry{
	{OccasionWedding, []string{"فرح", "افراح", "زفاف", "عرس", "خطوبه", "كتب كتاب", "سواريه", "عروسه", "wedding", "bridal", "engagement", "bride"}},
	{OccasionWork, []string{"شغل", "مكتب", "عمل", "انترفيو", "مقابله شغل", "work", "office", "business", "interview"}},
	{OccasionParty, []string{"حفله", "حفلات", "سهره", "بارتي", "عيد ميلاد", "party", "evening", "birthday", "night out"}},
	{OccasionSports, []string{"رياضه", "رياضي", "رياضيه", "جيم", "تمرين", "جري", "sport", "sports", "gym", "running", "training", "workout"}},
	{OccasionFormal, []string{"رسمي", "رسميه", "مناسبه", "مناسبات", "formal", "ceremony", "classic"}},
	{OccasionCasual, []string{"كاجوال", "يومي", "خروج", "خروجه", "casual", "daily", "everyday"}},
	{OccasionBeach, []string{"بحر", "شاطي", "مصيف", "ساحل", "beach", "sea", "pool", "vacation"}},
	{OccasionHome, []string{"بيت", "منزل", "منزلي", "نوم", "home", "sleepwear", "lounge", "loungewear"}},
	{OccasionSchool, []string{"مدرسه", "مدارس", "جامعه", "كليه", "school", "university", "college", "uniform"}},
}

type seasonEntry struct {
	season  Season
	phrases []string
}

var seasonKeywords = []seasonEntry{
	{SeasonSummer, []string{"صيف", "صيفي", "صيفيه", "خفيف", "خفيفه", "كتان", "summer", "linen", "summery"}},
	{SeasonWinter, []string{"شتاء", "شتا", "شتوي", "شتويه", "برد", "تقيل", "تقيله", "صوف", "winter", "wool", "warm", "cold"}},
	{SeasonSpring, []string{"ربيع", "ربيعي", "ربيعيه", "spring"}},
	{SeasonAutumn, []string{"خريف", "خريفي", "خريفيه", "autumn", "fall"}},
}

type qualityEntry struct {
	quality Quality
	phrases []string
}

// qualityKeywords is ordered so that "كويس جدا" is tried before "كويس".
var qualityKeywords = []qualityEntry{
	{QualityExcellent, []string{"ممتاز", "ممتازه", "عالي الجوده", "جوده عاليه", "افضل جوده", "اصلي", "اورجينال", "excellent", "best quality", "high quality", "top quality", "premium quality", "original"}},
	{QualityVeryGood, []string{"كويس جدا", "كويسه جدا", "جيد جدا", "very good", "great quality"}},
	{QualityGood, []string{"كويس", "كويسه", "جيد", "جيده", "حلو", "حلوه", "good", "nice", "decent"}},
	{QualityAcceptable, []string{"مقبول", "مقبوله", "اي حاجه", "acceptable", "okay", "any quality"}},
}

// outfitKeywords signal that the customer wants a complete set rather than one piece.
var outfitKeywords = []string{
	"طقم", "اطقم", "طقم كامل", "لوك كامل", "سيت", "كومبو", "متكامل",
	"set", "outfit", "combo", "complete look", "full look", "matching set", "ensemble",
}

type priceEntry struct {
	price   PriceRange
	phrases []string
}

// priceKeywords is checked in order; the first phrase found wins. Negated and
// intensified forms come before the bare words they contain.
var priceKeywords = []priceEntry{
	{PriceVeryLow, []string{"رخيص جدا", "رخيصه جدا", "ارخص", "ارخص حاجه", "very cheap", "cheapest", "lowest price"}},
	{PriceLow, []string{"مش غالي", "مش غاليه", "مش مكلف", "رخيص", "رخيصه", "اقتصادي", "اقتصاديه", "علي قد الايد", "cheap", "budget", "affordable", "inexpensive", "not expensive", "low price"}},
	{PriceVeryHigh, []string{"غالي جدا", "غاليه جدا", "فاخر جدا", "very expensive", "luxury", "high end", "high-end"}},
	{PriceHigh, []string{"غالي", "غاليه", "فاخر", "فاخره", "expensive", "pricey", "high price"}},
	{PriceMedium, []string{"متوسط", "متوسطه", "معقول", "معقوله", "mid range", "mid-range", "moderate", "reasonable", "average price"}},
}

type itemEntry struct {
	key      string
	variants []string
}

// itemKeywords lists clothing and accessory types. Clothing types outrank generic
// words when the orchestrator prioritizes search terms.
var itemKeywords = []itemEntry{
	{"dress", []string{"فستان", "فساتين", "dress", "gown"}},
	{"shirt", []string{"قميص", "قمصان", "تيشرت", "تيشرتات", "بلوزه", "بلوزات", "shirt", "t-shirt", "tshirt", "blouse"}},
	{"pants", []string{"بنطلون", "بناطيل", "جينز", "شورت", "pants", "trousers", "jeans", "shorts"}},
	{"skirt", []string{"جيبه", "جيب", "skirt"}},
	{"shoes", []string{"حذاء", "احذيه", "صندل", "شبشب", "بوت", "shoes", "sneakers", "sandals", "boots", "heels"}},
	{"bag", []string{"شنطه", "حقيبه", "bag", "handbag", "backpack"}},
	{"jacket", []string{"جاكت", "بالطو", "معطف", "كوت", "jacket", "coat", "blazer"}},
	{"abaya", []string{"عبايه", "عبايات", "اسدال", "abaya"}},
	{"suit", []string{"بدله", "بدل", "suit", "tuxedo"}},
	{"hijab", []string{"طرحه", "حجاب", "شال", "hijab", "scarf", "shawl"}},
	{"accessories", []string{"اكسسوارات", "ساعه", "نظاره", "حزام", "accessories", "watch", "sunglasses", "belt"}},
	{"sportswear", []string{"ترينج", "ترنج", "tracksuit", "sportswear", "leggings"}},
	{"pajamas", []string{"بيجامه", "بيجامات", "pajamas", "pyjamas", "nightgown"}},
}

// stopWords carry no product meaning and are removed from the cleaned query.
var stopWords = map[string]struct{}{
	// Arabic
	"عايز": {}, "محتاج": {}, "انا": {}, "انت": {}, "ممكن": {}, "لو": {}, "سمحت": {}, "من": {},
	"في": {}, "علي": {}, "عن": {}, "الي": {}, "مع": {}, "ده": {}, "دي": {}, "دا": {}, "اللي": {},
	"عشان": {}, "علشان": {}, "حاجه": {}, "حاجات": {}, "عندك": {}, "عندكم": {}, "فيه": {},
	"ايه": {}, "كده": {}, "بس": {}, "و": {}, "او": {}, "يا": {}, "ليا": {}, "لي": {}, "مش": {},
	"اريد": {}, "اشتري": {}, "ابحث": {}, "شوف": {}, "شوفلي": {}, "هات": {}, "جدا": {}, "بكام": {},
	"ومش": {}, "وعايز": {}, "نفسي": {}, "حد": {},
	// English
	"i": {}, "im": {}, "want": {}, "need": {}, "looking": {}, "for": {}, "a": {}, "an": {},
	"the": {}, "some": {}, "me": {}, "show": {}, "please": {}, "to": {}, "of": {}, "with": {},
	"and": {}, "or": {}, "in": {}, "on": {}, "my": {}, "is": {}, "are": {}, "find": {}, "get": {},
	"buy": {}, "something": {}, "very": {}, "not": {}, "can": {}, "you": {}, "do": {}, "have": {},
}

// IsStopWord reports whether tok is a stop word.
func IsStopWord(tok string) bool {
	_, ok := stopWords[tok]
	return ok
}

// OccasionKeywords returns the surface forms for occasion o.
func OccasionKeywords(o Occasion) []string {
	for _, e := range occasionKeywords {
		if e.occasion == o {
			return e.phrases
		}
	}
	return nil
}

// SeasonKeywords returns the surface forms for season s.
func SeasonKeywords(s Season) []string {
	for _, e := range seasonKeywords {
		if e.season == s {
			return e.phrases
		}
	}
	return nil
}

// OutfitKeywords returns the complete-outfit surface forms.
func OutfitKeywords() []string {
	return outfitKeywords
}

// ItemVariants returns the surface forms for item type key.
func ItemVariants(key string) []string {
	for _, e := range itemKeywords {
		if e.key == key {
			return e.variants
		}
	}
	return nil
}

// Vocabulary returns the single-word item and occasion terms for lang, used to suggest
// alternate searches. Arabic terms are returned for "ar", Latin ones otherwise.
func Vocabulary(lang string) []string {
	var out []string
	add := func(terms []string) {
		for _, t := range terms {
			if strings.Contains(t, " ") {
				continue
			}
			if isArabicTerm(t) == (lang == "ar") {
				out = append(out, t)
			}
		}
	}
	for _, e := range itemKeywords {
		add(e.variants)
	}
	for _, e := range occasionKeywords {
		add(e.phrases)
	}
	return out
}

// PopularTerms are fallback suggestions when nothing closer is found.
func PopularTerms(lang string) []string {
	if lang == "ar" {
		return []string{"فساتين", "قمصان", "احذيه", "شنطه", "عبايات"}
	}
	return []string{"dresses", "shirts", "shoes", "bags", "jackets"}
}
