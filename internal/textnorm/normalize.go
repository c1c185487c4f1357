// Package textnorm canonicalizes customer query text and catalog text before matching.
package textnorm

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// LangArabic and LangEnglish are the language codes the engine understands.
const (
	LangArabic  = "ar"
	LangEnglish = "en"
)

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

var thousandsSep = regexp.MustCompile(`(\d),(\d{3})`)

// Normalize strips diacritics and combining marks, case-folds, folds Arabic letter
// variants and digits, drops punctuation and, for Arabic, rewrites Egyptian dialect
// spellings to their canonical form. The result is whitespace-collapsed.
// Normalize(Normalize(x)) == Normalize(x) for all x.
func Normalize(text, lang string) string {
	if text == "" {
		return ""
	}
	out, _, err := transform.String(stripMarks, text)
	if err != nil {
		out = text
	}
	out = strings.ToLower(out)
	out = strings.Map(foldRune, out)
	for thousandsSep.MatchString(out) {
		out = thousandsSep.ReplaceAllString(out, "$1$2")
	}
	out = dropPunctuation(out)

	tokens := strings.Fields(out)
	kept := tokens[:0]
	for _, tok := range tokens {
		if strings.Trim(tok, ".-") == "" {
			continue
		}
		kept = append(kept, tok)
	}
	if lang == LangArabic {
		kept = correctDialect(kept)
	}
	return strings.Join(kept, " ")
}

// foldRune maps letter and digit variants to one canonical rune. Returning -1 drops the rune.
func foldRune(r rune) rune {
	switch {
	case r == 'ة':
		return 'ه'
	case r == 'ى', r == 'ی':
		return 'ي'
	case r == 'ٱ', r == 'أ', r == 'إ', r == 'آ':
		return 'ا'
	case r == 'ک':
		return 'ك'
	case r == 'ـ':
		return -1
	case r >= '٠' && r <= '٩':
		return '0' + (r - '٠')
	case r >= '۰' && r <= '۹':
		return '0' + (r - '۰')
	}
	return r
}

// dropPunctuation replaces punctuation and symbols with spaces. A '.' survives only
// between two digits (decimal prices); '-' survives inside words ("t-shirt", "200-500").
func dropPunctuation(s string) string {
	rs := []rune(s)
	var b strings.Builder
	b.Grow(len(s))
	for i, r := range rs {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), unicode.IsSpace(r):
			b.WriteRune(r)
		case r == '.' && i > 0 && i < len(rs)-1 && unicode.IsDigit(rs[i-1]) && unicode.IsDigit(rs[i+1]):
			b.WriteRune(r)
		case r == '-' && i > 0 && i < len(rs)-1 && isWordRune(rs[i-1]) && isWordRune(rs[i+1]):
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return b.String()
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// Tokens splits normalized text into whitespace-separated tokens.
func Tokens(text string) []string {
	return strings.Fields(text)
}

// arabicPrefixes are attached particles stripped when matching tokens against keyword
// tables, longest first.
var arabicPrefixes = []string{"وال", "بال", "فال", "كال", "ولل", "لل", "ال", "و", "ب", "ل", "ف"}

// TokenVariants returns tok followed by the forms obtained by removing one attached
// Arabic particle ("للفرح" -> "فرح"). Stems shorter than two runes are not produced.
func TokenVariants(tok string) []string {
	variants := []string{tok}
	seen := map[string]bool{tok: true}
	for _, p := range arabicPrefixes {
		if !strings.HasPrefix(tok, p) {
			continue
		}
		stem := strings.TrimPrefix(tok, p)
		if len([]rune(stem)) < 2 || seen[stem] {
			continue
		}
		seen[stem] = true
		variants = append(variants, stem)
	}
	return variants
}

// IsArabic reports whether s contains at least one Arabic letter.
func IsArabic(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Arabic, r) && unicode.IsLetter(r) {
			return true
		}
	}
	return false
}
