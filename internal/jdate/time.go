package jdate

import (
	"fmt"
	"time"

	"github.com/nowwaveradio/jdatetime/internal/constants"
	"github.com/nowwaveradio/jdatetime/internal/errorutil"
	"github.com/nowwaveradio/jdatetime/internal/locale"
)

// Time is a time of day with microsecond precision, an optional zone and
// a fold flag that disambiguates repeated wall times
type Time struct {
	hour        int
	minute      int
	second      int
	microsecond int
	zone        Zone
	fold        int
	locale      locale.Tag
}

// Midnight is 00:00:00 without a zone
var Midnight = Time{}

// NewTime validates and builds a time of day
func NewTime(hour, minute, second, microsecond int, opts ...Option) (Time, error) {
	c := components{hour: hour, minute: minute, second: second, microsecond: microsecond}
	c.apply(opts)
	return timeFromComponents(c)
}

// MustTime is NewTime for literal values; it panics on error
func MustTime(hour, minute, second, microsecond int, opts ...Option) Time {
	t, err := NewTime(hour, minute, second, microsecond, opts...)
	if err != nil {
		panic(err)
	}
	return t
}

func validClock(c components) error {
	if err := errorutil.CheckRange("hour", c.hour, 0, 23); err != nil {
		return err
	}
	if err := errorutil.CheckRange("minute", c.minute, 0, 59); err != nil {
		return err
	}
	if err := errorutil.CheckRange("second", c.second, 0, 59); err != nil {
		return err
	}
	if err := errorutil.CheckRange("microsecond", c.microsecond, 0, constants.MaxMicrosecond); err != nil {
		return err
	}
	if c.fold != 0 && c.fold != 1 {
		return &errorutil.RangeError{Field: "fold", Value: c.fold, Min: 0, Max: 1, Message: "fold must be either 0 or 1"}
	}
	return nil
}

func timeFromComponents(c components) (Time, error) {
	if err := validClock(c); err != nil {
		return Time{}, err
	}
	return Time{
		hour:        c.hour,
		minute:      c.minute,
		second:      c.second,
		microsecond: c.microsecond,
		zone:        c.zone,
		fold:        c.fold,
		locale:      c.locale,
	}, nil
}

func (t Time) Hour() int          { return t.hour }
func (t Time) Minute() int        { return t.minute }
func (t Time) Second() int        { return t.second }
func (t Time) Microsecond() int   { return t.microsecond }
func (t Time) Zone() Zone         { return t.zone }
func (t Time) Fold() int          { return t.fold }
func (t Time) Locale() locale.Tag { return t.locale }

// IsAware reports whether the time carries a zone
func (t Time) IsAware() bool {
	return t.zone != nil
}

// UTCOffset asks the zone for its offset. A bare time has no date, so
// location zones are evaluated on 1970-01-01.
func (t Time) UTCOffset() (time.Duration, bool) {
	if t.zone == nil {
		return 0, false
	}
	return t.zone.UTCOffset(t.wall(), t.fold)
}

// ZoneName returns the zone's name, or "" for naive times
func (t Time) ZoneName() string {
	if t.zone == nil {
		return ""
	}
	return t.zone.Name(t.wall(), t.fold)
}

// DST returns the zone's daylight saving adjustment
func (t Time) DST() (time.Duration, bool) {
	if t.zone == nil {
		return 0, false
	}
	return t.zone.DST(t.wall(), t.fold), true
}

func (t Time) wall() time.Time {
	return time.Date(1970, time.January, 1, t.hour, t.minute, t.second, t.microsecond*1000, time.UTC)
}

// Replace returns a copy with the given fields changed and revalidated
func (t Time) Replace(opts ...Option) (Time, error) {
	c := components{
		hour:        t.hour,
		minute:      t.minute,
		second:      t.second,
		microsecond: t.microsecond,
		zone:        t.zone,
		fold:        t.fold,
		locale:      t.locale,
	}
	c.apply(opts)
	return timeFromComponents(c)
}

// Compare orders times by clock fields; zones and folds are not consulted
func (t Time) Compare(o Time) int {
	switch {
	case t.hour != o.hour:
		return cmpInt(t.hour, o.hour)
	case t.minute != o.minute:
		return cmpInt(t.minute, o.minute)
	case t.second != o.second:
		return cmpInt(t.second, o.second)
	default:
		return cmpInt(t.microsecond, o.microsecond)
	}
}

// Equal reports equal clock fields, zone presence and locale
func (t Time) Equal(o Time) bool {
	if t.Compare(o) != 0 || t.locale != o.locale || t.IsAware() != o.IsAware() {
		return false
	}
	if !t.IsAware() {
		return true
	}
	to, tok := t.UTCOffset()
	oo, ook := o.UTCOffset()
	return tok == ook && to == oo
}

// ISOFormat renders HH[:MM[:SS[.fff|.ffffff]]] followed by ±HH:MM when aware
func (t Time) ISOFormat(spec Timespec) (string, error) {
	clock, err := formatClock(t.hour, t.minute, t.second, t.microsecond, spec)
	if err != nil {
		return "", err
	}
	if offset, ok := t.UTCOffset(); ok {
		clock += FormatOffset(offset, true)
	}
	return clock, nil
}

func (t Time) String() string {
	s, _ := t.ISOFormat(TimespecAuto)
	return s
}

// Timespec selects the precision of ISO time rendering
type Timespec string

const (
	TimespecAuto         Timespec = "auto"
	TimespecHours        Timespec = "hours"
	TimespecMinutes      Timespec = "minutes"
	TimespecSeconds      Timespec = "seconds"
	TimespecMilliseconds Timespec = "milliseconds"
	TimespecMicroseconds Timespec = "microseconds"
)

func formatClock(hour, minute, second, microsecond int, spec Timespec) (string, error) {
	if spec == TimespecAuto {
		spec = TimespecSeconds
		if microsecond != 0 {
			spec = TimespecMicroseconds
		}
	}
	switch spec {
	case TimespecHours:
		return fmt.Sprintf("%02d", hour), nil
	case TimespecMinutes:
		return fmt.Sprintf("%02d:%02d", hour, minute), nil
	case TimespecSeconds:
		return fmt.Sprintf("%02d:%02d:%02d", hour, minute, second), nil
	case TimespecMilliseconds:
		return fmt.Sprintf("%02d:%02d:%02d.%03d", hour, minute, second, microsecond/1000), nil
	case TimespecMicroseconds:
		return fmt.Sprintf("%02d:%02d:%02d.%06d", hour, minute, second, microsecond), nil
	}
	return "", fmt.Errorf("%w: %q", errorutil.ErrInvalidTimespec, string(spec))
}
