package textnorm

import "strings"

// dialectRule rewrites one regional token to its canonical spelling. Sources are written
// in folded form; no target token may itself be a source.
type dialectRule struct {
	from string
	to   string
}

// dialectRules is applied in order, whole tokens only.
var dialectRules = []dialectRule{
	{"عاوز", "عايز"},
	{"عاوزه", "عايز"},
	{"عايزه", "عايز"},
	{"بدي", "عايز"},
	{"ابغي", "عايز"},
	{"محتاجه", "محتاج"},
	{"جزمه", "حذاء"},
	{"جزم", "احذيه"},
	{"شوز", "حذاء"},
	{"كوتشي", "حذاء رياضي"},
	{"كوتشيات", "احذيه رياضيه"},
	{"تيشيرت", "تيشرت"},
	{"تيشيرتات", "تيشرتات"},
	{"جاكيت", "جاكت"},
	{"هدوم", "ملابس"},
	{"لبس", "ملابس"},
	{"شنط", "شنطه"},
	{"اوي", "جدا"},
	{"خالص", "جدا"},
	{"فستانات", "فساتين"},
	{"بنطلونات", "بناطيل"},
}

var dialectIndex = func() map[string]string {
	m := make(map[string]string, len(dialectRules))
	for _, r := range dialectRules {
		if _, dup := m[r.from]; !dup {
			m[r.from] = r.to
		}
	}
	return m
}()

func correctDialect(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if to, ok := dialectIndex[tok]; ok {
			out = append(out, strings.Fields(to)...)
			continue
		}
		out = append(out, tok)
	}
	return out
}
