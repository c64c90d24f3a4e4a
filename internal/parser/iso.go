package parser

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/nowwaveradio/jdatetime/internal/errorutil"
	"github.com/nowwaveradio/jdatetime/internal/jdate"
	"github.com/nowwaveradio/jdatetime/internal/locale"
)

// isoPattern names the format in ISO parse errors
const isoPattern = "ISO 8601"

// ParseISO decodes YYYY-MM-DD or YYYYMMDD, optionally followed by any
// single separator character and HH[:MM[:SS[.ffffff]]] (or the compact
// HHMM[SS[.ffffff]]) with an optional Z or ±HH[:MM] suffix.
func (p *Parser) ParseISO(text string) (jdate.DateTime, error) {
	s := locale.NormalizeDigits(text)

	year, month, day, rest, ok := scanISODate(s)
	if !ok {
		return jdate.DateTime{}, errorutil.NewParseError(text, isoPattern, errorutil.ErrNoMatch)
	}

	var hour, minute, second, micro int
	var zone jdate.Zone
	if rest != "" {
		_, size := utf8.DecodeRuneInString(rest)
		clock := rest[size:]
		var err error
		hour, minute, second, micro, zone, err = scanISOTime(clock)
		if err != nil {
			return jdate.DateTime{}, errorutil.NewParseError(text, isoPattern, err)
		}
	}

	dt, err := jdate.NewDateTime(year, month, day, hour, minute, second, micro,
		jdate.WithZone(zone), jdate.WithLocale(p.locale))
	if err != nil {
		return jdate.DateTime{}, errorutil.NewParseError(text, isoPattern, err)
	}
	return dt, nil
}

// ParseISODate decodes YYYY-MM-DD or YYYYMMDD with nothing after it
func (p *Parser) ParseISODate(text string) (jdate.Date, error) {
	year, month, day, rest, ok := scanISODate(locale.NormalizeDigits(text))
	if !ok || rest != "" {
		return jdate.Date{}, errorutil.NewParseError(text, isoPattern, errorutil.ErrNoMatch)
	}
	d, err := jdate.NewDate(year, month, day, jdate.WithLocale(p.locale))
	if err != nil {
		return jdate.Date{}, errorutil.NewParseError(text, isoPattern, err)
	}
	return d, nil
}

func scanISODate(s string) (year, month, day int, rest string, ok bool) {
	switch {
	case len(s) >= 10 && s[4] == '-' && s[7] == '-' && digits(s[0:4]) && digits(s[5:7]) && digits(s[8:10]):
		return atoi(s[0:4]), atoi(s[5:7]), atoi(s[8:10]), s[10:], true
	case len(s) >= 8 && digits(s[0:8]) && (len(s) == 8 || !isDigit(s[8])):
		return atoi(s[0:4]), atoi(s[4:6]), atoi(s[6:8]), s[8:], true
	}
	return 0, 0, 0, "", false
}

func scanISOTime(s string) (hour, minute, second, micro int, zone jdate.Zone, err error) {
	clock, offset := s, ""
	if i := strings.IndexAny(s, "Z+-"); i >= 0 {
		clock, offset = s[:i], s[i:]
	}

	frac := ""
	if i := strings.IndexAny(clock, ".,"); i >= 0 {
		clock, frac = clock[:i], clock[i+1:]
		if frac == "" || len(frac) > 6 || !digits(frac) {
			return 0, 0, 0, 0, nil, errorutil.ErrNoMatch
		}
		micro = atoi(frac + strings.Repeat("0", 6-len(frac)))
	}

	var parts []string
	if strings.Contains(clock, ":") {
		parts = strings.Split(clock, ":")
	} else {
		for len(clock) >= 2 {
			parts = append(parts, clock[:2])
			clock = clock[2:]
		}
		if clock != "" {
			return 0, 0, 0, 0, nil, errorutil.ErrNoMatch
		}
	}
	if len(parts) == 0 || len(parts) > 3 || (frac != "" && len(parts) != 3) {
		return 0, 0, 0, 0, nil, errorutil.ErrNoMatch
	}
	values := [3]int{}
	for i, part := range parts {
		if len(part) != 2 || !digits(part) {
			return 0, 0, 0, 0, nil, errorutil.ErrNoMatch
		}
		values[i] = atoi(part)
	}

	if offset != "" {
		zone, err = isoZone(offset)
		if err != nil {
			return 0, 0, 0, 0, nil, err
		}
	}
	return values[0], values[1], values[2], micro, zone, nil
}

// isoZone accepts Z, ±HH, ±HHMM, ±HH:MM and the longer %z forms
func isoZone(raw string) (jdate.Zone, error) {
	if raw == "Z" {
		return jdate.UTC, nil
	}
	if len(raw) == 3 {
		raw += "00"
	}
	d, err := ParseOffset(raw)
	if err != nil {
		return nil, err
	}
	if d == 0 {
		return jdate.UTC, nil
	}
	z, err := jdate.NewFixedZone(d, "")
	if err != nil {
		return nil, fmt.Errorf("%w: %q", errorutil.ErrMalformedOffset, raw)
	}
	return z, nil
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// ParseISO decodes an ISO 8601 date-time with the package default parser
func ParseISO(text string) (jdate.DateTime, error) {
	return std.ParseISO(text)
}

// ParseISODate decodes an ISO 8601 date with the package default parser
func ParseISODate(text string) (jdate.Date, error) {
	return std.ParseISODate(text)
}
