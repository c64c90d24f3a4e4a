// Package locale provides the two shipped name catalogs (English
// transliteration and Persian script) and the default-locale collaborator:
// context scoping for pure call sites, a keyed store for the outermost
// boundary, and a probe of the host's locale environment.
package locale

import (
	"strings"

	"golang.org/x/text/language"
)

// Tag is an opaque locale identifier such as "fa_IR" or "en_US"
type Tag string

const (
	// None means no locale was attached; resolution falls through to defaults
	None Tag = ""

	English Tag = "en_US"
	Persian Tag = "fa_IR"

	// windowsPersian is what Windows reports for the Persian locale
	windowsPersian = "Persian_Iran"
)

// Names holds the locale-dependent strings used by %a %A %b %B and %p
type Names struct {
	Tag           Tag
	Months        [12]string
	ShortMonths   [12]string
	Weekdays      [7]string
	ShortWeekdays [7]string
	AM            string
	PM            string
}

var englishNames = Names{
	Tag: English,
	Months: [12]string{
		"Farvardin", "Ordibehesht", "Khordad", "Tir", "Mordad", "Shahrivar",
		"Mehr", "Aban", "Azar", "Dey", "Bahman", "Esfand",
	},
	ShortMonths: [12]string{
		"Far", "Ord", "Kho", "Tir", "Mor", "Sha",
		"Meh", "Aba", "Aza", "Dey", "Bah", "Esf",
	},
	Weekdays: [7]string{
		"Saturday", "Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday",
	},
	ShortWeekdays: [7]string{"Sat", "Sun", "Mon", "Tue", "Wed", "Thu", "Fri"},
	AM:            "AM",
	PM:            "PM",
}

var persianMonths = [12]string{
	"فروردین", "اردیبهشت", "خرداد", "تیر", "مرداد", "شهریور",
	"مهر", "آبان", "آذر", "دی", "بهمن", "اسفند",
}

// compound weekday names are joined with ZERO WIDTH NON-JOINER (U+200C)
var persianWeekdays = [7]string{
	"شنبه", "یک\u200cشنبه", "دوشنبه", "سه\u200cشنبه", "چهارشنبه", "پنج\u200cشنبه", "جمعه",
}

var persianNames = Names{
	Tag:           Persian,
	Months:        persianMonths,
	ShortMonths:   persianMonths,
	Weekdays:      persianWeekdays,
	ShortWeekdays: persianWeekdays,
	AM:            "قبل از ظهر",
	PM:            "بعد از ظهر",
}

// NamesFor returns the Persian catalog for Persian tags and the English
// catalog for everything else, including None and unknown locales
func NamesFor(t Tag) *Names {
	if t.IsPersian() {
		return &persianNames
	}
	return &englishNames
}

// Catalogs returns every shipped catalog, used by the parser to resolve names
// regardless of the active locale
func Catalogs() []*Names {
	return []*Names{&englishNames, &persianNames}
}

// IsPersian reports whether the tag's base language is Persian
func (t Tag) IsPersian() bool {
	if t == None {
		return false
	}
	if strings.EqualFold(string(t), windowsPersian) {
		return true
	}
	tag, err := language.Parse(stripEncoding(string(t)))
	if err != nil {
		return strings.HasPrefix(strings.ToLower(string(t)), "fa")
	}
	base, _ := tag.Base()
	return base.String() == "fa"
}

// String returns the raw tag
func (t Tag) String() string {
	return string(t)
}

// Parse validates a locale name and canonicalizes the two shipped locales.
// Other well-formed tags are returned unchanged and render with English names.
func Parse(s string) (Tag, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return None, nil
	}
	if strings.EqualFold(s, windowsPersian) {
		return Persian, nil
	}
	tag, err := language.Parse(stripEncoding(s))
	if err != nil {
		return None, err
	}
	base, _ := tag.Base()
	switch base.String() {
	case "fa":
		return Persian, nil
	case "en":
		return English, nil
	}
	return Tag(s), nil
}

// stripEncoding drops POSIX suffixes such as ".UTF-8" and "@euro"
func stripEncoding(s string) string {
	if i := strings.IndexAny(s, ".@"); i >= 0 {
		s = s[:i]
	}
	return s
}
