package jdate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nowwaveradio/jdatetime/internal/errorutil"
)

func TestFormatOffset(t *testing.T) {
	tests := []struct {
		offset time.Duration
		colon  bool
		want   string
	}{
		{3*time.Hour + 30*time.Minute, false, "+0330"},
		{3*time.Hour + 30*time.Minute, true, "+03:30"},
		{-5 * time.Hour, false, "-0500"},
		{0, false, "+0000"},
		{time.Hour + 2*time.Minute + 3*time.Second, false, "+010203"},
		{-(time.Hour + 2*time.Minute + 3*time.Second + 4*time.Microsecond), true, "-01:02:03.000004"},
	}
	for _, tt := range tests {
		if got := FormatOffset(tt.offset, tt.colon); got != tt.want {
			t.Errorf("FormatOffset(%s, %v) = %q, want %q", tt.offset, tt.colon, got, tt.want)
		}
	}
}

func TestFixedZone(t *testing.T) {
	z, err := NewFixedZone(-(4*time.Hour + 30*time.Minute), "")
	require.NoError(t, err)
	assert.Equal(t, "UTC-04:30", z.Name(time.Time{}, 0))
	assert.Equal(t, time.Duration(0), z.DST(time.Time{}, 0))

	_, err = NewFixedZone(24*time.Hour, "")
	assert.ErrorIs(t, err, errorutil.ErrMalformedOffset)

	assert.Equal(t, "UTC", UTC.Name(time.Time{}, 0))
}

func loadNewYork(t *testing.T) LocationZone {
	t.Helper()
	z, err := LoadZone("America/New_York")
	require.NoError(t, err)
	return z
}

func TestLocationZoneFold(t *testing.T) {
	ny := loadNewYork(t)

	// 2021-11-07 01:30 happens twice in New York
	repeated := FromComponents{Year: 2021, Month: 11, Day: 7, Hour: 1, Minute: 30}

	first, err := DateTimeFromGregorian(repeated, WithZone(ny))
	require.NoError(t, err)
	offset, ok := first.UTCOffset()
	require.True(t, ok)
	assert.Equal(t, -4*time.Hour, offset)
	assert.Equal(t, "EDT", first.ZoneName())
	dst, _ := first.DST()
	assert.Equal(t, time.Hour, dst)

	second, err := DateTimeFromGregorian(repeated, WithZone(ny), WithFold(1))
	require.NoError(t, err)
	offset, _ = second.UTCOffset()
	assert.Equal(t, -5*time.Hour, offset)
	assert.Equal(t, "EST", second.ZoneName())
	dst, _ = second.DST()
	assert.Equal(t, time.Duration(0), dst)

	diff, err := second.Sub(first)
	require.NoError(t, err)
	assert.Equal(t, time.Hour, diff)
}

func TestLocationZoneGap(t *testing.T) {
	ny := loadNewYork(t)

	// 2021-03-14 02:30 never happens in New York
	missing := FromComponents{Year: 2021, Month: 3, Day: 14, Hour: 2, Minute: 30}

	early, err := DateTimeFromGregorian(missing, WithZone(ny))
	require.NoError(t, err)
	offset, _ := early.UTCOffset()
	assert.Equal(t, -5*time.Hour, offset)

	late, err := DateTimeFromGregorian(missing, WithZone(ny), WithFold(1))
	require.NoError(t, err)
	offset, _ = late.UTCOffset()
	assert.Equal(t, -4*time.Hour, offset)
}

func TestLocationZoneFromUTC(t *testing.T) {
	ny := loadNewYork(t)

	wall, fold := ny.FromUTC(time.Date(2021, time.November, 7, 5, 30, 0, 0, time.UTC))
	assert.Equal(t, 1, wall.Hour())
	assert.Equal(t, 0, fold)

	wall, fold = ny.FromUTC(time.Date(2021, time.November, 7, 6, 30, 0, 0, time.UTC))
	assert.Equal(t, 1, wall.Hour())
	assert.Equal(t, 1, fold)

	dt, err := FromTimestamp(float64(time.Date(2021, time.November, 7, 6, 30, 0, 0, time.UTC).Unix()), ny)
	require.NoError(t, err)
	assert.Equal(t, 1, dt.Fold())
	assert.Equal(t, "1400-08-16 01:30:00-0500", dt.String())

	g := dt.Gregorian()
	assert.Equal(t, ny.Location(), g.Location())
	assert.Equal(t, 6, g.UTC().Hour())
}

func TestFromGregorianKeepsLocation(t *testing.T) {
	ny := loadNewYork(t)
	g := time.Date(2021, time.November, 7, 6, 30, 0, 0, time.UTC).In(ny.Location())

	dt, err := FromTime(g)
	require.NoError(t, err)
	assert.Equal(t, 1, dt.Fold())
	assert.True(t, dt.Gregorian().Equal(g))
}
