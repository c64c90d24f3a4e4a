// Package dateutil translates the user-friendly date patterns found in
// configuration files (YYYY/MM/DD and friends) into directive patterns, and
// accepts the handful of date layouts people tend to type by hand.
package dateutil

import (
	"strings"
	"time"

	"github.com/nowwaveradio/jdatetime/internal/errorutil"
	"github.com/nowwaveradio/jdatetime/internal/formatter"
	"github.com/nowwaveradio/jdatetime/internal/jdate"
	"github.com/nowwaveradio/jdatetime/internal/parser"
)

// flexiblePatterns is reported as the pattern when no layout matched
const flexiblePatterns = "multiple common formats"

// Order matters - longer tokens first so YYYY never becomes two YY
var userPatternReplacer = strings.NewReplacer(
	"%", "%%",
	"YYYY", "%Y",
	"YY", "%y",
	"MMMM", "%B",
	"MMM", "%b",
	"MM", "%m",
	"M", "%-m",
	"DD", "%d",
	"D", "%-d",
)

// ToDirectivePattern converts a user-friendly pattern to a directive pattern.
//
// Example conversions:
//   - "YYYY" -> "%Y"
//   - "MM" -> "%m"
//   - "D MMMM YYYY" -> "%-d %B %Y"
//   - "YYYYMMDD" -> "%Y%m%d"
func ToDirectivePattern(userPattern string) string {
	return userPatternReplacer.Replace(userPattern)
}

// FormatWithPattern renders d with a user-friendly pattern
func FormatWithPattern(d jdate.Date, userPattern string) string {
	return formatter.FormatDate(d, ToDirectivePattern(userPattern))
}

// ParseFlexibleDate tries the common Jalali layouts in turn. Persian and
// Arabic-Indic digits are accepted.
func ParseFlexibleDate(dateStr string) (jdate.Date, error) {
	// Year-first layouts come first; a 4-digit year never matches %d
	patterns := []string{
		"%Y/%m/%d",
		"%Y-%m-%d",
		"%Y.%m.%d",
		"%Y%m%d",
		"%d/%m/%Y",
		"%d-%m-%Y",
		"%d %B %Y",
		"%d %b %Y",
	}

	for _, pattern := range patterns {
		if d, err := parser.ParseDate(dateStr, pattern); err == nil {
			return d, nil
		}
	}
	return jdate.Date{}, errorutil.NewParseError(dateStr, flexiblePatterns, errorutil.ErrNoMatch)
}

// ParseFlexibleGregorian accepts the Gregorian layouts used as conversion
// input. The result is midnight UTC.
func ParseFlexibleGregorian(dateStr string) (time.Time, error) {
	layouts := []string{
		"2006-01-02",
		"2006/01/02",
		"1/2/2006",
		"01/02/2006",
		"1-2-2006",
		"01-02-2006",
		"2006.01.02",
		"20060102",
		"2 January 2006",
		"Jan 2, 2006",
	}

	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, dateStr); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, &time.ParseError{
		Layout: flexiblePatterns,
		Value:  dateStr,
	}
}
