package jdate

import (
	"fmt"
	"time"

	"github.com/nowwaveradio/jdatetime/internal/errorutil"
	"github.com/nowwaveradio/jdatetime/internal/jalali"
	"github.com/nowwaveradio/jdatetime/internal/locale"
)

// DateTime is a Jalali date composed with a time of day. The locale of the
// date part is the locale of the whole value.
type DateTime struct {
	date  Date
	clock Time
}

// NewDateTime validates and builds a date-time
func NewDateTime(year, month, day, hour, minute, second, microsecond int, opts ...Option) (DateTime, error) {
	c := components{
		year: year, month: month, day: day,
		hour: hour, minute: minute, second: second, microsecond: microsecond,
	}
	c.apply(opts)
	return dateTimeFromComponents(c)
}

// MustDateTime is NewDateTime for literal values; it panics on error
func MustDateTime(year, month, day, hour, minute, second, microsecond int, opts ...Option) DateTime {
	dt, err := NewDateTime(year, month, day, hour, minute, second, microsecond, opts...)
	if err != nil {
		panic(err)
	}
	return dt
}

func dateTimeFromComponents(c components) (DateTime, error) {
	d, err := dateFromComponents(c)
	if err != nil {
		return DateTime{}, err
	}
	t, err := timeFromComponents(c)
	if err != nil {
		return DateTime{}, err
	}
	return DateTime{date: d, clock: t}, nil
}

// Combine joins a date and a time; the result takes the date's locale
func Combine(d Date, t Time) DateTime {
	t.locale = d.locale
	return DateTime{date: d, clock: t}
}

// Now returns the current wall clock in z, or the naive local wall clock
// when z is nil
func Now(z Zone, opts ...Option) DateTime {
	dt, err := fromInstant(time.Now(), z, opts)
	if err != nil {
		panic(err)
	}
	return dt
}

// UTCNow returns the current UTC wall clock as a naive value
func UTCNow(opts ...Option) DateTime {
	dt, err := fromWall(time.Now().UTC(), nil, 0, opts)
	if err != nil {
		panic(err)
	}
	return dt
}

// FromTimestamp converts POSIX seconds to the wall clock of z. A nil zone
// yields the naive local wall clock.
func FromTimestamp(ts float64, z Zone, opts ...Option) (DateTime, error) {
	utc, err := timestampToTime(ts)
	if err != nil {
		return DateTime{}, err
	}
	return fromInstant(utc, z, opts)
}

// DateTimeFromOrdinal returns midnight of the given ordinal day
func DateTimeFromOrdinal(n int, opts ...Option) (DateTime, error) {
	jy, jm, jd, err := jalali.FromOrdinal(n)
	if err != nil {
		return DateTime{}, err
	}
	return NewDateTime(jy, jm, jd, 0, 0, 0, 0, opts...)
}

func fromInstant(instant time.Time, z Zone, opts []Option) (DateTime, error) {
	if z == nil {
		local := instant.In(time.Local)
		wall := time.Date(local.Year(), local.Month(), local.Day(), local.Hour(), local.Minute(),
			local.Second(), local.Nanosecond(), time.UTC)
		return fromWall(wall, nil, 0, opts)
	}
	wall, fold := z.FromUTC(instant.UTC())
	return fromWall(wall, z, fold, opts)
}

// fromWall converts a Gregorian wall clock (fields read in UTC) into a
// DateTime; options are applied last
func fromWall(wall time.Time, z Zone, fold int, opts []Option) (DateTime, error) {
	gy, gm, gd := wall.Year(), int(wall.Month()), wall.Day()
	if err := jalali.ValidGregorian(gy, gm, gd); err != nil {
		return DateTime{}, err
	}
	jy, jm, jd := jalali.GregorianToJalali(gy, gm, gd)
	c := components{
		year: jy, month: jm, day: jd,
		hour: wall.Hour(), minute: wall.Minute(), second: wall.Second(),
		microsecond: wall.Nanosecond() / 1000,
		zone:        z,
		fold:        fold,
	}
	c.apply(opts)
	return dateTimeFromComponents(c)
}

func (dt DateTime) Year() int          { return dt.date.year }
func (dt DateTime) Month() int         { return dt.date.month }
func (dt DateTime) Day() int           { return dt.date.day }
func (dt DateTime) Hour() int          { return dt.clock.hour }
func (dt DateTime) Minute() int        { return dt.clock.minute }
func (dt DateTime) Second() int        { return dt.clock.second }
func (dt DateTime) Microsecond() int   { return dt.clock.microsecond }
func (dt DateTime) Zone() Zone         { return dt.clock.zone }
func (dt DateTime) Fold() int          { return dt.clock.fold }
func (dt DateTime) Locale() locale.Tag { return dt.date.locale }

func (dt DateTime) Weekday() int    { return dt.date.Weekday() }
func (dt DateTime) ISOWeekday() int { return dt.date.ISOWeekday() }
func (dt DateTime) YearDay() int    { return dt.date.YearDay() }
func (dt DateTime) WeekNumber() int { return dt.date.WeekNumber() }
func (dt DateTime) IsLeap() bool    { return dt.date.IsLeap() }
func (dt DateTime) ToOrdinal() int  { return dt.date.ToOrdinal() }

// IsAware reports whether the value carries a zone
func (dt DateTime) IsAware() bool {
	return dt.clock.zone != nil
}

// Date returns the date part
func (dt DateTime) Date() Date {
	return dt.date
}

// Time returns the time of day without its zone
func (dt DateTime) Time() Time {
	t := dt.clock
	t.zone = nil
	return t
}

// TimeTZ returns the time of day including its zone and fold
func (dt DateTime) TimeTZ() Time {
	return dt.clock
}

// wall is the Gregorian wall clock as a UTC time.Time
func (dt DateTime) wall() time.Time {
	gy, gm, gd := jalali.JalaliToGregorian(dt.date.year, dt.date.month, dt.date.day)
	return time.Date(gy, time.Month(gm), gd, dt.clock.hour, dt.clock.minute, dt.clock.second,
		dt.clock.microsecond*1000, time.UTC)
}

// UTCOffset asks the zone for the offset at this wall clock and fold
func (dt DateTime) UTCOffset() (time.Duration, bool) {
	if dt.clock.zone == nil {
		return 0, false
	}
	return dt.clock.zone.UTCOffset(dt.wall(), dt.clock.fold)
}

// ZoneName returns the zone's name for this wall clock, or "" when naive
func (dt DateTime) ZoneName() string {
	if dt.clock.zone == nil {
		return ""
	}
	return dt.clock.zone.Name(dt.wall(), dt.clock.fold)
}

// DST returns the daylight saving adjustment; ok is false when naive
func (dt DateTime) DST() (time.Duration, bool) {
	if dt.clock.zone == nil {
		return 0, false
	}
	return dt.clock.zone.DST(dt.wall(), dt.clock.fold), true
}

// instant resolves the absolute time. Naive values are read as local time.
func (dt DateTime) instant() (time.Time, error) {
	zone := dt.clock.zone
	if zone == nil {
		zone = InLocation(time.Local)
	}
	offset, ok := zone.UTCOffset(dt.wall(), dt.clock.fold)
	if !ok {
		return time.Time{}, fmt.Errorf("%w: zone %T cannot determine a UTC offset", errorutil.ErrUnsupported, zone)
	}
	return dt.wall().Add(-offset), nil
}

// Timestamp returns POSIX seconds with microsecond fraction
func (dt DateTime) Timestamp() (float64, error) {
	instant, err := dt.instant()
	if err != nil {
		return 0, err
	}
	return float64(instant.Unix()) + float64(instant.Nanosecond()/1000)/1e6, nil
}

// Gregorian returns the equivalent time.Time. Aware values carry their zone
// (the wrapped location, or a fixed zone); naive values are returned as a
// wall clock in UTC.
func (dt DateTime) Gregorian() time.Time {
	wall := dt.wall()
	offset, ok := dt.UTCOffset()
	if !ok {
		return wall
	}
	instant := wall.Add(-offset)
	if lz, isLocation := dt.clock.zone.(LocationZone); isLocation {
		return instant.In(lz.location())
	}
	return instant.In(time.FixedZone(dt.ZoneName(), int(offset/time.Second)))
}

// AsTimezone converts the value to z, keeping the instant. A nil zone
// means the local zone.
func (dt DateTime) AsTimezone(z Zone) (DateTime, error) {
	instant, err := dt.instant()
	if err != nil {
		return DateTime{}, err
	}
	if z == nil {
		z = InLocation(time.Local)
	}
	return fromInstant(instant, z, []Option{WithLocale(dt.Locale())})
}

// AsLocale returns a copy carrying tag
func (dt DateTime) AsLocale(tag locale.Tag) DateTime {
	dt.date.locale = tag
	dt.clock.locale = tag
	return dt
}

// Replace returns a copy with the given fields changed and revalidated
func (dt DateTime) Replace(opts ...Option) (DateTime, error) {
	c := components{
		year: dt.date.year, month: dt.date.month, day: dt.date.day,
		hour: dt.clock.hour, minute: dt.clock.minute, second: dt.clock.second,
		microsecond: dt.clock.microsecond,
		zone:        dt.clock.zone,
		fold:        dt.clock.fold,
		locale:      dt.date.locale,
	}
	c.apply(opts)
	return dateTimeFromComponents(c)
}

// Add moves the wall clock by d; zone and locale are kept
func (dt DateTime) Add(d time.Duration) (DateTime, error) {
	moved, err := fromWall(dt.wall().Add(d), dt.clock.zone, 0, []Option{WithLocale(dt.Locale())})
	if err != nil {
		return DateTime{}, fmt.Errorf("datetime %s + %s: %w", dt, d, err)
	}
	return moved, nil
}

// Sub returns dt - o. Two naive values subtract wall clocks, two aware
// values subtract instants; mixing them is an error.
func (dt DateTime) Sub(o DateTime) (time.Duration, error) {
	if dt.IsAware() != o.IsAware() {
		return 0, fmt.Errorf("%w: can't subtract offset-naive and offset-aware datetimes", errorutil.ErrNotComparable)
	}
	if !dt.IsAware() {
		return dt.wall().Sub(o.wall()), nil
	}
	a, err := dt.instant()
	if err != nil {
		return 0, err
	}
	b, err := o.instant()
	if err != nil {
		return 0, err
	}
	return a.Sub(b), nil
}

// Compare orders by date then clock fields
func (dt DateTime) Compare(o DateTime) int {
	if c := dt.date.Compare(o.date); c != 0 {
		return c
	}
	return dt.clock.Compare(o.clock)
}

func (dt DateTime) Before(o DateTime) bool { return dt.Compare(o) < 0 }
func (dt DateTime) After(o DateTime) bool  { return dt.Compare(o) > 0 }

// Equal requires the same locale and either the same instant (both aware)
// or the same wall clock (both naive)
func (dt DateTime) Equal(o DateTime) bool {
	if dt.Locale() != o.Locale() || dt.IsAware() != o.IsAware() {
		return false
	}
	if !dt.IsAware() {
		return dt.Compare(o) == 0
	}
	a, errA := dt.instant()
	b, errB := o.instant()
	if errA != nil || errB != nil {
		return errA != nil && errB != nil && dt.Compare(o) == 0
	}
	return a.Equal(b)
}

// ISOFormat renders YYYY-MM-DDTHH:MM:SS[.ffffff][±HH:MM]
func (dt DateTime) ISOFormat() string {
	s, _ := dt.ISOFormatSpec('T', TimespecAuto)
	return s
}

// ISOFormatSpec renders the date, sep, and the clock truncated to spec
func (dt DateTime) ISOFormatSpec(sep rune, spec Timespec) (string, error) {
	clock, err := formatClock(dt.clock.hour, dt.clock.minute, dt.clock.second, dt.clock.microsecond, spec)
	if err != nil {
		return "", err
	}
	s := dt.date.ISOFormat() + string(sep) + clock
	if offset, ok := dt.UTCOffset(); ok {
		s += FormatOffset(offset, true)
	}
	return s, nil
}

// String renders YYYY-MM-DD HH:MM:SS[.ffffff][±HHMM]
func (dt DateTime) String() string {
	clock, _ := formatClock(dt.clock.hour, dt.clock.minute, dt.clock.second, dt.clock.microsecond, TimespecAuto)
	s := dt.date.ISOFormat() + " " + clock
	if offset, ok := dt.UTCOffset(); ok {
		s += FormatOffset(offset, false)
	}
	return s
}
