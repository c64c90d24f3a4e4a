package jdate

import (
	"time"

	"github.com/nowwaveradio/jdatetime/internal/errorutil"
	"github.com/nowwaveradio/jdatetime/internal/jalali"
)

// GregorianSource is one of FromComponents, FromGregorianDate or
// FromGregorianDateTime. The set is closed.
type GregorianSource interface {
	// resolve returns the Gregorian wall clock in UTC with its zone and fold
	resolve() (wall time.Time, zone Zone, fold int, err error)
}

// FromComponents names a Gregorian date and time by field. Month and Day
// start at 1.
type FromComponents struct {
	Year, Month, Day                  int
	Hour, Minute, Second, Microsecond int
}

// FromGregorianDate takes the calendar date of Date in its own location
type FromGregorianDate struct {
	Date time.Time
}

// FromGregorianDateTime takes the wall clock of Time in its own location.
// The location becomes the value's zone unless Naive is set.
type FromGregorianDateTime struct {
	Time  time.Time
	Naive bool
}

func (s FromComponents) resolve() (time.Time, Zone, int, error) {
	if err := jalali.ValidGregorian(s.Year, s.Month, s.Day); err != nil {
		return time.Time{}, nil, 0, err
	}
	c := components{hour: s.Hour, minute: s.Minute, second: s.Second, microsecond: s.Microsecond}
	if err := validClock(c); err != nil {
		return time.Time{}, nil, 0, err
	}
	wall := time.Date(s.Year, time.Month(s.Month), s.Day, s.Hour, s.Minute, s.Second, s.Microsecond*1000, time.UTC)
	return wall, nil, 0, nil
}

func (s FromGregorianDate) resolve() (time.Time, Zone, int, error) {
	y, m, d := s.Date.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil, 0, nil
}

func (s FromGregorianDateTime) resolve() (time.Time, Zone, int, error) {
	t := s.Time
	wall := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(),
		t.Nanosecond()/1000*1000, time.UTC)
	if s.Naive {
		return wall, nil, 0, nil
	}
	zone := zoneOf(t)
	_, fold := zone.FromUTC(t.UTC())
	return wall, zone, fold, nil
}

// zoneOf maps a time.Time's location onto a Zone
func zoneOf(t time.Time) Zone {
	if t.Location() == time.UTC {
		return UTC
	}
	return InLocation(t.Location())
}

// DateFromGregorian converts any Gregorian source to a Jalali date
func DateFromGregorian(src GregorianSource, opts ...Option) (Date, error) {
	if src == nil {
		return Date{}, errorutil.ErrUnsupported
	}
	wall, _, _, err := src.resolve()
	if err != nil {
		return Date{}, err
	}
	return dateFromTime(wall, opts)
}

// DateTimeFromGregorian converts any Gregorian source to a Jalali date-time.
// Options are applied after the source's zone and fold.
func DateTimeFromGregorian(src GregorianSource, opts ...Option) (DateTime, error) {
	if src == nil {
		return DateTime{}, errorutil.ErrUnsupported
	}
	wall, zone, fold, err := src.resolve()
	if err != nil {
		return DateTime{}, err
	}
	return fromWall(wall, zone, fold, opts)
}

// FromTime is shorthand for DateTimeFromGregorian(FromGregorianDateTime{Time: t})
func FromTime(t time.Time, opts ...Option) (DateTime, error) {
	return DateTimeFromGregorian(FromGregorianDateTime{Time: t}, opts...)
}
