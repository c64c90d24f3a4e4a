package jdate

import (
	"fmt"
	"strings"
	"time"

	"github.com/nowwaveradio/jdatetime/internal/errorutil"
)

// Zone supplies UTC offsets for wall-clock times. Wall times are passed as
// time.Time values in UTC whose fields are the local wall clock.
//
// UTCOffset reports ok=false when the zone cannot determine an offset.
// FromUTC maps an absolute instant to the zone's wall clock and the fold
// that selects it.
type Zone interface {
	UTCOffset(wall time.Time, fold int) (time.Duration, bool)
	Name(wall time.Time, fold int) string
	DST(wall time.Time, fold int) time.Duration
	FromUTC(utc time.Time) (wall time.Time, fold int)
}

// FixedZone is a constant offset from UTC, as produced by parsing %z
type FixedZone struct {
	offset time.Duration
	name   string
}

// UTC is the zero offset zone
var UTC = FixedZone{name: "UTC"}

// NewFixedZone validates that the offset is strictly within one day
func NewFixedZone(offset time.Duration, name string) (FixedZone, error) {
	if offset <= -24*time.Hour || offset >= 24*time.Hour {
		return FixedZone{}, fmt.Errorf("%w: offset must be strictly between -24h and 24h, got %s",
			errorutil.ErrMalformedOffset, offset)
	}
	return FixedZone{offset: offset, name: name}, nil
}

// Offset returns the zone's constant offset
func (z FixedZone) Offset() time.Duration {
	return z.offset
}

func (z FixedZone) UTCOffset(time.Time, int) (time.Duration, bool) {
	return z.offset, true
}

// Name returns the configured name, or "UTC±HH:MM" when none was given
func (z FixedZone) Name(time.Time, int) string {
	if z.name != "" {
		return z.name
	}
	if z.offset == 0 {
		return "UTC"
	}
	return "UTC" + FormatOffset(z.offset, true)
}

func (z FixedZone) DST(time.Time, int) time.Duration {
	return 0
}

func (z FixedZone) FromUTC(utc time.Time) (time.Time, int) {
	return utc.UTC().Add(z.offset), 0
}

func (z FixedZone) String() string {
	return z.Name(time.Time{}, 0)
}

// LocationZone adapts a host *time.Location (tz database entry)
type LocationZone struct {
	loc *time.Location
}

// InLocation wraps loc; a nil loc means UTC
func InLocation(loc *time.Location) LocationZone {
	if loc == nil {
		loc = time.UTC
	}
	return LocationZone{loc: loc}
}

// LoadZone loads an IANA zone such as "Asia/Tehran"
func LoadZone(name string) (LocationZone, error) {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return LocationZone{}, fmt.Errorf("loading time zone %q: %w", name, err)
	}
	return LocationZone{loc: loc}, nil
}

// Location returns the wrapped location
func (z LocationZone) Location() *time.Location {
	return z.location()
}

func (z LocationZone) location() *time.Location {
	if z.loc == nil {
		return time.UTC
	}
	return z.loc
}

// UTCOffset resolves gaps and repeated hours the same way for every zone:
// fold 0 picks the offset in effect before the transition, fold 1 the one after
func (z LocationZone) UTCOffset(wall time.Time, fold int) (time.Duration, bool) {
	return z.resolve(wall, fold), true
}

func (z LocationZone) Name(wall time.Time, fold int) string {
	offset := z.resolve(wall, fold)
	name, _ := wall.Add(-offset).In(z.location()).Zone()
	return name
}

// DST reports how far the offset is ahead of the zone's standard offset
// for that year
func (z LocationZone) DST(wall time.Time, fold int) time.Duration {
	offset := z.resolve(wall, fold)
	instant := wall.Add(-offset).In(z.location())
	if !instant.IsDST() {
		return 0
	}
	year := instant.Year()
	january := z.offsetAt(time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC).Unix())
	july := z.offsetAt(time.Date(year, time.July, 1, 0, 0, 0, 0, time.UTC).Unix())
	standard := january
	if july < standard {
		standard = july
	}
	return offset - standard
}

func (z LocationZone) FromUTC(utc time.Time) (time.Time, int) {
	local := utc.In(z.location())
	_, seconds := local.Zone()
	offset := time.Duration(seconds) * time.Second
	wall := time.Date(local.Year(), local.Month(), local.Day(), local.Hour(), local.Minute(),
		local.Second(), local.Nanosecond(), time.UTC)

	fold := 0
	if z.resolve(wall, 0) != offset {
		fold = 1
	}
	return wall, fold
}

func (z LocationZone) String() string {
	return z.location().String()
}

// resolve finds the offset for a wall time by testing the offsets in effect
// one day either side of it
func (z LocationZone) resolve(wall time.Time, fold int) time.Duration {
	w := wall.Unix()
	before := z.offsetAt(w - 86400)
	after := z.offsetAt(w + 86400)
	if before == after {
		return z.offsetAt(w - int64(before/time.Second))
	}

	validBefore := z.offsetAt(w-int64(before/time.Second)) == before
	validAfter := z.offsetAt(w-int64(after/time.Second)) == after

	switch {
	case validBefore && validAfter:
		if fold == 1 {
			return after
		}
		return before
	case validBefore:
		return before
	case validAfter:
		return after
	case fold == 1:
		return after
	default:
		return before
	}
}

func (z LocationZone) offsetAt(unix int64) time.Duration {
	_, seconds := time.Unix(unix, 0).In(z.location()).Zone()
	return time.Duration(seconds) * time.Second
}

// FormatOffset renders an offset as ±HHMM (or ±HH:MM with colon), adding
// seconds and microseconds only when they are non-zero
func FormatOffset(offset time.Duration, colon bool) string {
	sign := '+'
	if offset < 0 {
		sign = '-'
		offset = -offset
	}
	hours := offset / time.Hour
	offset -= hours * time.Hour
	minutes := offset / time.Minute
	offset -= minutes * time.Minute
	seconds := offset / time.Second
	offset -= seconds * time.Second
	micros := offset / time.Microsecond

	sep := ""
	if colon {
		sep = ":"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%c%02d%s%02d", sign, hours, sep, minutes)
	if seconds != 0 || micros != 0 {
		fmt.Fprintf(&b, "%s%02d", sep, seconds)
		if micros != 0 {
			fmt.Fprintf(&b, ".%06d", micros)
		}
	}
	return b.String()
}
