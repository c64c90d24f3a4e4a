// Package parser decodes text into Jalali values with strftime-style
// directive patterns (the inverse of package formatter) and with the ISO
// 8601 subset produced by the jdate ISOFormat methods.
package parser

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/nowwaveradio/jdatetime/internal/constants"
	"github.com/nowwaveradio/jdatetime/internal/errorutil"
	"github.com/nowwaveradio/jdatetime/internal/jalali"
	"github.com/nowwaveradio/jdatetime/internal/jdate"
	"github.com/nowwaveradio/jdatetime/internal/locale"
)

// Parser decodes text against directive patterns. Compiled patterns are
// cached, so one Parser should be shared; it is safe for concurrent use.
type Parser struct {
	locale      locale.Tag
	pivot       int
	defaultYear int
	cache       sync.Map // pattern -> *Pattern
}

// Option configures a Parser
type Option func(*Parser)

// WithLocale attaches tag to every parsed value
func WithLocale(tag locale.Tag) Option {
	return func(p *Parser) { p.locale = tag }
}

// WithTwoDigitYearPivot changes the %y window: values up to pivot land in
// the 1400s, larger values in the 1300s
func WithTwoDigitYearPivot(pivot int) Option {
	return func(p *Parser) { p.pivot = pivot }
}

// WithDefaultYear sets the year used when the pattern has no year directive
func WithDefaultYear(year int) Option {
	return func(p *Parser) { p.defaultYear = year }
}

// New creates a Parser with the standard defaults
func New(opts ...Option) *Parser {
	p := &Parser{
		pivot:       constants.TwoDigitYearPivot,
		defaultYear: constants.DefaultParseYear,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Pivot returns the two-digit year pivot
func (p *Parser) Pivot() int {
	return p.pivot
}

func (p *Parser) compile(pattern string) (*Pattern, error) {
	if cached, ok := p.cache.Load(pattern); ok {
		return cached.(*Pattern), nil
	}
	compiled, err := Compile(pattern)
	if err != nil {
		return nil, err
	}
	p.cache.Store(pattern, compiled)
	return compiled, nil
}

// Parse decodes text into a DateTime. The whole text must match.
func (p *Parser) Parse(text, pattern string) (jdate.DateTime, error) {
	return p.ParseContext(context.Background(), text, pattern)
}

// ParseContext is Parse with the locale of ctx used when the parser has none
func (p *Parser) ParseContext(ctx context.Context, text, pattern string) (jdate.DateTime, error) {
	compiled, err := p.compile(pattern)
	if err != nil {
		return jdate.DateTime{}, errorutil.NewParseError(text, pattern, err)
	}
	captures, ok := compiled.match(locale.NormalizeDigits(text))
	if !ok {
		return jdate.DateTime{}, errorutil.NewParseError(text, pattern, errorutil.ErrNoMatch)
	}

	f, err := p.collect(compiled, captures)
	if err != nil {
		return jdate.DateTime{}, errorutil.NewParseError(text, pattern, err)
	}

	tag := p.locale
	if tag == locale.None {
		tag = locale.FromContext(ctx)
	}
	dt, err := jdate.NewDateTime(f.year, f.month, f.day, f.hour, f.minute, f.second, f.microsecond,
		jdate.WithZone(f.zone), jdate.WithLocale(tag))
	if err != nil {
		return jdate.DateTime{}, errorutil.NewParseError(text, pattern, err)
	}
	return dt, nil
}

// ParseDate decodes text and keeps the date part
func (p *Parser) ParseDate(text, pattern string) (jdate.Date, error) {
	dt, err := p.Parse(text, pattern)
	if err != nil {
		return jdate.Date{}, err
	}
	return dt.Date(), nil
}

// ParseTime decodes text and keeps the time part with its zone
func (p *Parser) ParseTime(text, pattern string) (jdate.Time, error) {
	dt, err := p.Parse(text, pattern)
	if err != nil {
		return jdate.Time{}, err
	}
	return dt.TimeTZ(), nil
}

// fields is the result record, pre-seeded with defaults
type fields struct {
	year, month, day                  int
	hour, minute, second, microsecond int
	zone                              jdate.Zone

	monthSet, daySet bool
	yday             int
	ydaySet          bool
	hour12           int
	meridiem         string
	zoneName         string
}

func (p *Parser) collect(compiled *Pattern, captures []string) (*fields, error) {
	f := &fields{year: p.defaultYear, month: 1, day: 1, hour12: -1}
	var offset string

	for i, tok := range compiled.Directives {
		value := captures[i]
		switch tok.Verb {
		case 'Y':
			f.year = atoi(value)
		case 'y':
			f.year = p.windowYear(atoi(value))
		case 'm':
			f.month = atoi(value)
			f.monthSet = true
		case 'd':
			f.day = atoi(value)
			f.daySet = true
		case 'H':
			f.hour = atoi(value)
		case 'I':
			f.hour12 = atoi(value)
		case 'M':
			f.minute = atoi(value)
		case 'S':
			f.second = atoi(value)
		case 'f':
			f.microsecond = atoi(value + strings.Repeat("0", 6-len(value)))
		case 'j':
			f.yday = atoi(value)
			f.ydaySet = true
		case 'b', 'B':
			month := locale.LookupMonth(value, tok.Verb == 'b')
			if month == 0 {
				return nil, fmt.Errorf("%w: month %q", errorutil.ErrUnknownName, value)
			}
			f.month = month
			f.monthSet = true
		case 'a', 'A':
			if locale.LookupWeekday(value, tok.Verb == 'a') < 0 {
				return nil, fmt.Errorf("%w: weekday %q", errorutil.ErrUnknownName, value)
			}
		case 'p':
			f.meridiem = value
		case 'z':
			offset = value
		case 'Z':
			f.zoneName = value
		}
		// %w and %W are matched by the expression and otherwise unused
	}

	if f.hour12 >= 0 {
		hour, err := resolveTwelveHour(f.hour12, f.meridiem)
		if err != nil {
			return nil, err
		}
		f.hour = hour
	}

	// %j is range checked even when an explicit month and day win
	if f.ydaySet {
		month, day, err := jalali.MonthDayFromYearDay(f.year, f.yday)
		if err != nil {
			return nil, err
		}
		if !f.monthSet && !f.daySet {
			f.month, f.day = month, day
		}
	}

	zone, err := resolveZone(offset, f.zoneName)
	if err != nil {
		return nil, err
	}
	f.zone = zone
	return f, nil
}

// windowYear maps a two-digit year onto 1300..1399 or 1400..1499
func (p *Parser) windowYear(yy int) int {
	if yy <= p.pivot {
		return 1400 + yy
	}
	return 1300 + yy
}

func resolveTwelveHour(hour12 int, meridiem string) (int, error) {
	if err := errorutil.CheckRange("hour", hour12, 1, 12); err != nil {
		return 0, err
	}
	pm := false
	if meridiem != "" {
		pm, _ = locale.LookupMeridiem(meridiem)
	}
	switch {
	case !pm && hour12 == 12:
		return 0, nil
	case pm && hour12 != 12:
		return hour12 + 12, nil
	}
	return hour12, nil
}

func resolveZone(offset, name string) (jdate.Zone, error) {
	if offset == "" {
		if strings.EqualFold(name, "UTC") || strings.EqualFold(name, "GMT") {
			return jdate.UTC, nil
		}
		return nil, nil
	}
	d, err := ParseOffset(offset)
	if err != nil {
		return nil, err
	}
	if d == 0 && name == "" {
		return jdate.UTC, nil
	}
	return jdate.NewFixedZone(d, name)
}

// atoi is only called on captures the expression restricted to digits
func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

var std = New()

// Parse decodes text with the package default parser
func Parse(text, pattern string) (jdate.DateTime, error) {
	return std.Parse(text, pattern)
}

// ParseContext decodes text with the package default parser and ctx's locale
func ParseContext(ctx context.Context, text, pattern string) (jdate.DateTime, error) {
	return std.ParseContext(ctx, text, pattern)
}

// ParseDate decodes a date with the package default parser
func ParseDate(text, pattern string) (jdate.Date, error) {
	return std.ParseDate(text, pattern)
}

// ParseTime decodes a time of day with the package default parser
func ParseTime(text, pattern string) (jdate.Time, error) {
	return std.ParseTime(text, pattern)
}
