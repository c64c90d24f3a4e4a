// Package jdate holds the Jalali value types: Date, Time and DateTime.
//
// Values are immutable. Every constructor validates its fields and every
// derived value (Replace, Add, AsTimezone) is validated again, so a value
// that exists is always inside the supported calendar range.
package jdate

import (
	"fmt"
	"math"
	"time"

	"github.com/nowwaveradio/jdatetime/internal/constants"
	"github.com/nowwaveradio/jdatetime/internal/errorutil"
	"github.com/nowwaveradio/jdatetime/internal/jalali"
	"github.com/nowwaveradio/jdatetime/internal/locale"
)

// Date is a Jalali calendar date with an optional locale tag.
// The zero Date is not valid; build one with NewDate or a conversion.
type Date struct {
	year   int
	month  int
	day    int
	locale locale.Tag
}

var (
	// MinDate is 0001-01-01
	MinDate = Date{year: constants.MinYear, month: 1, day: 1}
	// MaxDate is 9377-12-30; 9377 is a leap year
	MaxDate = Date{year: constants.MaxYear, month: 12, day: 30}
)

// NewDate validates and builds a date
func NewDate(year, month, day int, opts ...Option) (Date, error) {
	c := components{year: year, month: month, day: day}
	c.apply(opts)
	return dateFromComponents(c)
}

// MustDate is NewDate for values known at compile time; it panics on error
func MustDate(year, month, day int, opts ...Option) Date {
	d, err := NewDate(year, month, day, opts...)
	if err != nil {
		panic(err)
	}
	return d
}

func dateFromComponents(c components) (Date, error) {
	if err := jalali.ValidDate(c.year, c.month, c.day); err != nil {
		return Date{}, err
	}
	return Date{year: c.year, month: c.month, day: c.day, locale: c.locale}, nil
}

// Today returns the current local date
func Today(opts ...Option) Date {
	d, err := dateFromTime(time.Now(), opts)
	if err != nil {
		// the host clock is always inside the supported range
		panic(err)
	}
	return d
}

// DateFromTimestamp converts POSIX seconds to the local date
func DateFromTimestamp(ts float64, opts ...Option) (Date, error) {
	utc, err := timestampToTime(ts)
	if err != nil {
		return Date{}, err
	}
	return dateFromTime(utc.In(time.Local), opts)
}

// maxTimestamp is comfortably past year 9377 in either direction
const maxTimestamp = 1e15

// timestampToTime splits POSIX seconds into a UTC instant rounded to the
// nearest microsecond
func timestampToTime(ts float64) (time.Time, error) {
	if math.IsNaN(ts) || math.IsInf(ts, 0) || math.Abs(ts) > maxTimestamp {
		return time.Time{}, fmt.Errorf("%w: timestamp %v", errorutil.ErrOutOfRange, ts)
	}
	sec := math.Floor(ts)
	us := int64(math.Round((ts - sec) * 1e6))
	if us >= 1000000 {
		sec++
		us -= 1000000
	}
	return time.Unix(int64(sec), us*1000).UTC(), nil
}

// DateFromOrdinal is the inverse of Date.ToOrdinal; 1 is 0001-01-01
func DateFromOrdinal(n int, opts ...Option) (Date, error) {
	jy, jm, jd, err := jalali.FromOrdinal(n)
	if err != nil {
		return Date{}, err
	}
	return NewDate(jy, jm, jd, opts...)
}

// dateFromTime converts the calendar fields of t (in its own location)
func dateFromTime(t time.Time, opts []Option) (Date, error) {
	if err := jalali.ValidGregorian(t.Year(), int(t.Month()), t.Day()); err != nil {
		return Date{}, err
	}
	jy, jm, jd := jalali.GregorianToJalali(t.Year(), int(t.Month()), t.Day())
	return NewDate(jy, jm, jd, opts...)
}

func (d Date) Year() int          { return d.year }
func (d Date) Month() int         { return d.month }
func (d Date) Day() int           { return d.day }
func (d Date) Locale() locale.Tag { return d.locale }

// IsValid reports whether d was built through a constructor
func (d Date) IsValid() bool {
	return jalali.ValidDate(d.year, d.month, d.day) == nil
}

// MonthName returns the full month name in the date's locale, or "" for
// an invalid date such as the zero Date
func (d Date) MonthName() string {
	if !d.IsValid() {
		return ""
	}
	return locale.NamesFor(d.locale).Months[d.month-1]
}

// WeekdayName returns the full weekday name in the date's locale, or "" for
// an invalid date
func (d Date) WeekdayName() string {
	if !d.IsValid() {
		return ""
	}
	return locale.NamesFor(d.locale).Weekdays[d.Weekday()]
}

// IsLeap reports whether the date's year has 366 days
func (d Date) IsLeap() bool {
	return jalali.IsLeap(d.year)
}

// DaysInMonth returns the length of the date's month
func (d Date) DaysInMonth() int {
	return jalali.DaysInMonth(d.year, d.month)
}

// Weekday returns 0 for Saturday through 6 for Friday
func (d Date) Weekday() int {
	return jalali.Weekday(d.year, d.month, d.day)
}

// ISOWeekday returns 1 for Saturday through 7 for Friday
func (d Date) ISOWeekday() int {
	return d.Weekday() + 1
}

// YearDay returns the 1-based day of the year
func (d Date) YearDay() int {
	return jalali.YearDay(d.month, d.day)
}

// WeekNumber returns the week of the year, starting at 1
func (d Date) WeekNumber() int {
	return jalali.WeekNumber(d.year, d.month, d.day)
}

// ISOCalendar returns the year, week number and ISO weekday
func (d Date) ISOCalendar() (year, week, weekday int) {
	return d.year, d.WeekNumber(), d.ISOWeekday()
}

// ToOrdinal returns the proleptic day count with 0001-01-01 as day 1
func (d Date) ToOrdinal() int {
	return jalali.Ordinal(d.year, d.month, d.day)
}

// Gregorian returns midnight UTC of the equivalent Gregorian date
func (d Date) Gregorian() time.Time {
	gy, gm, gd := jalali.JalaliToGregorian(d.year, d.month, d.day)
	return time.Date(gy, time.Month(gm), gd, 0, 0, 0, 0, time.UTC)
}

// Replace returns a copy with the given fields changed and revalidated
func (d Date) Replace(opts ...Option) (Date, error) {
	c := components{year: d.year, month: d.month, day: d.day, locale: d.locale}
	c.apply(opts)
	return dateFromComponents(c)
}

// AsLocale returns a copy carrying tag
func (d Date) AsLocale(tag locale.Tag) Date {
	d.locale = tag
	return d
}

// AddDays moves the date by n days
func (d Date) AddDays(n int) (Date, error) {
	ord := d.ToOrdinal() + n
	jy, jm, jd, err := jalali.FromOrdinal(ord)
	if err != nil {
		return Date{}, fmt.Errorf("date %s%+d days: %w", d, n, err)
	}
	return Date{year: jy, month: jm, day: jd, locale: d.locale}, nil
}

// Add moves the date by whole days of dur, rounding toward negative infinity
func (d Date) Add(dur time.Duration) (Date, error) {
	days := int(dur / (24 * time.Hour))
	if dur%(24*time.Hour) < 0 {
		days--
	}
	return d.AddDays(days)
}

// Sub returns the number of days from o to d
func (d Date) Sub(o Date) int {
	return d.ToOrdinal() - o.ToOrdinal()
}

// Compare orders dates by calendar position and ignores locale
func (d Date) Compare(o Date) int {
	switch {
	case d.year != o.year:
		return cmpInt(d.year, o.year)
	case d.month != o.month:
		return cmpInt(d.month, o.month)
	default:
		return cmpInt(d.day, o.day)
	}
}

func (d Date) Before(o Date) bool { return d.Compare(o) < 0 }
func (d Date) After(o Date) bool  { return d.Compare(o) > 0 }

// Equal reports same calendar date and same locale
func (d Date) Equal(o Date) bool {
	return d.Compare(o) == 0 && d.locale == o.locale
}

// ISOFormat renders YYYY-MM-DD
func (d Date) ISOFormat() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.year, d.month, d.day)
}

func (d Date) String() string {
	return d.ISOFormat()
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
