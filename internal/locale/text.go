package locale

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

var digitMapper = runes.Map(func(r rune) rune {
	switch {
	case r >= '۰' && r <= '۹': // extended Arabic-Indic (Persian)
		return '0' + (r - '۰')
	case r >= '٠' && r <= '٩': // Arabic-Indic
		return '0' + (r - '٠')
	}
	return r
})

// NormalizeDigits rewrites Persian and Arabic-Indic digits as ASCII digits
func NormalizeDigits(s string) string {
	out, _, err := transform.String(digitMapper, s)
	if err != nil {
		return s
	}
	return out
}

// FoldName case-folds a month or weekday name for comparison. Persian script
// has no case and passes through unchanged.
func FoldName(s string) string {
	return cases.Fold().String(s)
}

// LookupMonth resolves a month name against every catalog. short selects
// the abbreviated tables. It returns the 1-based month, or 0 when unknown.
func LookupMonth(name string, short bool) int {
	folded := FoldName(name)
	for _, names := range Catalogs() {
		table := names.Months
		if short {
			table = names.ShortMonths
		}
		for i, candidate := range table {
			if FoldName(candidate) == folded {
				return i + 1
			}
		}
	}
	return 0
}

// LookupWeekday resolves a weekday name against every catalog and returns
// the Jalali weekday index (Saturday = 0), or -1 when unknown
func LookupWeekday(name string, short bool) int {
	folded := FoldName(name)
	for _, names := range Catalogs() {
		table := names.Weekdays
		if short {
			table = names.ShortWeekdays
		}
		for i, candidate := range table {
			if FoldName(candidate) == folded {
				return i
			}
		}
	}
	return -1
}

// LookupMeridiem reports whether label is a PM label (true) or AM label
// (false) in any catalog; ok is false when the label is unknown
func LookupMeridiem(label string) (pm bool, ok bool) {
	folded := FoldName(label)
	for _, names := range Catalogs() {
		switch folded {
		case FoldName(names.AM):
			return false, true
		case FoldName(names.PM):
			return true, true
		}
	}
	return false, false
}

var acceptMatcher = language.NewMatcher([]language.Tag{
	language.AmericanEnglish,
	language.Persian,
})

// MatchAcceptLanguage maps an HTTP Accept-Language header onto one of the
// shipped locales. It returns None when the header is empty or matches neither.
func MatchAcceptLanguage(header string) Tag {
	if header == "" {
		return None
	}
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return None
	}
	_, index, confidence := acceptMatcher.Match(tags...)
	if confidence == language.No {
		return None
	}
	if index == 1 {
		return Persian
	}
	return English
}
