// Package formatter renders Jalali dates and date-times through
// strftime-style directive patterns with locale-dependent names.
package formatter

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/nowwaveradio/jdatetime/internal/directive"
	"github.com/nowwaveradio/jdatetime/internal/jdate"
	"github.com/nowwaveradio/jdatetime/internal/locale"
)

// Common patterns
const (
	ISODate     = "%Y-%m-%d"
	ISODateTime = "%Y-%m-%dT%H:%M:%S"
	DateTime    = "%Y-%m-%d %H:%M:%S"
	Slashed     = "%Y/%m/%d"
	Long        = "%A %d %B %Y"
	LongTime    = "%A %d %B %Y %H:%M:%S"
	Kitchen     = "%I:%M %p"
)

// FormatterInterface defines the contract for rendering Jalali values
type FormatterInterface interface {
	Format(dt jdate.DateTime, pattern string) string
	FormatContext(ctx context.Context, dt jdate.DateTime, pattern string) string
	FormatDate(d jdate.Date, pattern string) string
}

var _ FormatterInterface = (*Formatter)(nil)

// Formatter renders values against tokenized patterns. It is safe for
// concurrent use.
type Formatter struct {
	defaultLocale locale.Tag        // used when neither the value nor the context carries one
	probe         func() locale.Tag // system locale fallback
	tokens        sync.Map          // pattern -> []directive.Token
}

// Option configures a Formatter
type Option func(*Formatter)

// WithDefaultLocale sets the locale used for values without their own
func WithDefaultLocale(tag locale.Tag) Option {
	return func(f *Formatter) { f.defaultLocale = tag }
}

// WithLocaleProbe replaces the system locale probe
func WithLocaleProbe(probe func() locale.Tag) Option {
	return func(f *Formatter) {
		if probe != nil {
			f.probe = probe
		}
	}
}

// New creates a Formatter that falls back to locale.Detect
func New(opts ...Option) *Formatter {
	f := &Formatter{probe: locale.Detect}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// DefaultLocale returns the configured default locale
func (f *Formatter) DefaultLocale() locale.Tag {
	return f.defaultLocale
}

// Format renders dt with pattern
func (f *Formatter) Format(dt jdate.DateTime, pattern string) string {
	return f.FormatContext(context.Background(), dt, pattern)
}

// FormatContext renders dt, consulting ctx for the default locale
func (f *Formatter) FormatContext(ctx context.Context, dt jdate.DateTime, pattern string) string {
	names := locale.NamesFor(f.resolveLocale(ctx, dt.Locale()))
	return render(dt, names, f.tokenize(pattern))
}

// FormatDate renders d as midnight with no zone
func (f *Formatter) FormatDate(d jdate.Date, pattern string) string {
	return f.FormatDateContext(context.Background(), d, pattern)
}

// FormatDateContext renders d, consulting ctx for the default locale
func (f *Formatter) FormatDateContext(ctx context.Context, d jdate.Date, pattern string) string {
	return f.FormatContext(ctx, jdate.Combine(d, jdate.Midnight), pattern)
}

// resolveLocale applies value, context, formatter default, system probe
// in that order
func (f *Formatter) resolveLocale(ctx context.Context, own locale.Tag) locale.Tag {
	if tag := locale.Resolve(ctx, own, f.defaultLocale); tag != locale.None {
		return tag
	}
	return f.probe()
}

func (f *Formatter) tokenize(pattern string) []directive.Token {
	if cached, ok := f.tokens.Load(pattern); ok {
		return cached.([]directive.Token)
	}
	tokens := directive.Tokenize(pattern)
	f.tokens.Store(pattern, tokens)
	return tokens
}

func render(dt jdate.DateTime, names *locale.Names, tokens []directive.Token) string {
	var b strings.Builder
	for _, tok := range tokens {
		if tok.Kind == directive.Literal {
			b.WriteString(tok.Text)
			continue
		}
		b.WriteString(renderDirective(dt, names, tok))
	}
	return b.String()
}

// one case per verb of the directive table; anything else is
// returned as written
func renderDirective(dt jdate.DateTime, names *locale.Names, tok directive.Token) string {
	switch tok.Verb {
	case 'a':
		return name(names.ShortWeekdays[:], dt.Weekday())
	case 'A':
		return name(names.Weekdays[:], dt.Weekday())
	case 'b':
		return name(names.ShortMonths[:], dt.Month()-1)
	case 'B':
		return name(names.Months[:], dt.Month()-1)
	case 'd':
		return number(dt.Day(), 2, tok.NoPad)
	case 'f':
		return fmt.Sprintf("%06d", dt.Microsecond())
	case 'H':
		return number(dt.Hour(), 2, tok.NoPad)
	case 'I':
		hour := dt.Hour() % 12
		if hour == 0 {
			hour = 12
		}
		return number(hour, 2, tok.NoPad)
	case 'j':
		return fmt.Sprintf("%03d", dt.YearDay())
	case 'm':
		return number(dt.Month(), 2, tok.NoPad)
	case 'M':
		return number(dt.Minute(), 2, tok.NoPad)
	case 'p':
		if dt.Hour() >= 12 {
			return names.PM
		}
		return names.AM
	case 'S':
		return number(dt.Second(), 2, tok.NoPad)
	case 'w':
		return strconv.Itoa(dt.Weekday())
	case 'W':
		return strconv.Itoa(dt.WeekNumber())
	case 'y':
		return fmt.Sprintf("%02d", dt.Year()%100)
	case 'Y':
		return fmt.Sprintf("%04d", dt.Year())
	case 'z':
		if offset, ok := dt.UTCOffset(); ok {
			return jdate.FormatOffset(offset, false)
		}
		return ""
	case 'Z':
		return dt.ZoneName()
	}
	return tok.Text
}

// name renders nothing for the out-of-range index of a zero value
func name(list []string, i int) string {
	if i < 0 || i >= len(list) {
		return ""
	}
	return list[i]
}

func number(v, width int, noPad bool) string {
	if noPad {
		return strconv.Itoa(v)
	}
	return fmt.Sprintf("%0*d", width, v)
}

var std = New()

// Format renders dt with the package default formatter
func Format(dt jdate.DateTime, pattern string) string {
	return std.Format(dt, pattern)
}

// FormatContext renders dt with the package default formatter and ctx's locale
func FormatContext(ctx context.Context, dt jdate.DateTime, pattern string) string {
	return std.FormatContext(ctx, dt, pattern)
}

// FormatDate renders d with the package default formatter
func FormatDate(d jdate.Date, pattern string) string {
	return std.FormatDate(d, pattern)
}
