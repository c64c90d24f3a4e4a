package jdate

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nowwaveradio/jdatetime/internal/errorutil"
	"github.com/nowwaveradio/jdatetime/internal/locale"
)

func tehran(t *testing.T) FixedZone {
	t.Helper()
	z, err := NewFixedZone(3*time.Hour+30*time.Minute, "IRST")
	require.NoError(t, err)
	return z
}

func TestNewTimeValidation(t *testing.T) {
	_, err := NewTime(24, 0, 0, 0)
	assert.ErrorIs(t, err, errorutil.ErrOutOfRange)

	_, err = NewTime(0, 0, 0, 1000000)
	assert.ErrorIs(t, err, errorutil.ErrOutOfRange)

	_, err = NewTime(1, 30, 0, 0, WithFold(2))
	require.Error(t, err)
	assert.Equal(t, "fold must be either 0 or 1", err.Error())

	clock, err := NewTime(1, 30, 0, 0, WithFold(1))
	require.NoError(t, err)
	assert.Equal(t, 1, clock.Fold())
}

func TestTimeISOFormat(t *testing.T) {
	clock := MustTime(12, 13, 14, 1)

	tests := []struct {
		spec Timespec
		want string
	}{
		{TimespecHours, "12"},
		{TimespecMinutes, "12:13"},
		{TimespecSeconds, "12:13:14"},
		{TimespecMilliseconds, "12:13:14.000"},
		{TimespecMicroseconds, "12:13:14.000001"},
		{TimespecAuto, "12:13:14.000001"},
	}
	for _, tt := range tests {
		got, err := clock.ISOFormat(tt.spec)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "timespec %s", tt.spec)
	}

	assert.Equal(t, "12:13:14", MustTime(12, 13, 14, 0).String())
	assert.Equal(t, "08:00:00+03:30", MustTime(8, 0, 0, 0, WithZone(tehran(t))).String())

	_, err := clock.ISOFormat("nanoseconds")
	assert.ErrorIs(t, err, errorutil.ErrInvalidTimespec)
}

func TestDateTimeTimestamp(t *testing.T) {
	dt := MustDateTime(1397, 4, 23, 11, 47, 30, 40, WithZone(tehran(t)))

	ts, err := dt.Timestamp()
	require.NoError(t, err)
	assert.InDelta(t, 1531556250.00004, ts, 1e-6)

	naive := MustDateTime(1390, 2, 23, 12, 0, 0, 0)
	ts, err = naive.Timestamp()
	require.NoError(t, err)
	want := time.Date(2011, time.May, 13, 12, 0, 0, 0, time.Local).Unix()
	assert.InDelta(t, float64(want), ts, 1e-6)
}

type unknownZone struct{}

func (unknownZone) UTCOffset(time.Time, int) (time.Duration, bool) { return 0, false }
func (unknownZone) Name(time.Time, int) string                     { return "" }
func (unknownZone) DST(time.Time, int) time.Duration               { return 0 }
func (unknownZone) FromUTC(utc time.Time) (time.Time, int)         { return utc, 0 }

func TestTimestampUnsupportedZone(t *testing.T) {
	dt := MustDateTime(1400, 1, 1, 0, 0, 0, 0, WithZone(unknownZone{}))
	_, err := dt.Timestamp()
	assert.ErrorIs(t, err, errorutil.ErrUnsupported)
	assert.Equal(t, "1400-01-01 00:00:00", dt.String())
}

func TestFromTimestamp(t *testing.T) {
	dt, err := FromTimestamp(1783232224, UTC)
	require.NoError(t, err)
	assert.Equal(t, "1405-04-14 06:17:04+0000", dt.String())
	assert.Equal(t, "UTC", dt.ZoneName())

	dt, err = FromTimestamp(1531556250.00004, tehran(t))
	require.NoError(t, err)
	assert.Equal(t, "1397-04-23T11:47:30.000040+03:30", dt.ISOFormat())

	_, err = FromTimestamp(1e300, UTC)
	assert.ErrorIs(t, err, errorutil.ErrOutOfRange)
}

func TestDateTimeStringForms(t *testing.T) {
	dt := MustDateTime(1397, 4, 23, 11, 47, 30, 40, WithZone(tehran(t)))
	assert.Equal(t, "1397-04-23 11:47:30.000040+0330", dt.String())
	assert.Equal(t, "1397-04-23T11:47:30.000040+03:30", dt.ISOFormat())

	s, err := dt.ISOFormatSpec(' ', TimespecMinutes)
	require.NoError(t, err)
	assert.Equal(t, "1397-04-23 11:47+03:30", s)

	_, err = dt.ISOFormatSpec('T', "weeks")
	assert.ErrorIs(t, err, errorutil.ErrInvalidTimespec)

	naive := MustDateTime(1402, 1, 3, 15, 35, 59, 0)
	assert.Equal(t, "1402-01-03 15:35:59", naive.String())
	assert.Equal(t, "1402-01-03T15:35:59", naive.ISOFormat())
}

func TestAsTimezone(t *testing.T) {
	dt := MustDateTime(1397, 4, 23, 11, 47, 30, 0, WithZone(tehran(t)), WithLocale(locale.Persian))

	utc, err := dt.AsTimezone(UTC)
	require.NoError(t, err)
	assert.Equal(t, "1397-04-23 08:17:30+0000", utc.String())
	assert.Equal(t, locale.Persian, utc.Locale())
	assert.True(t, dt.Equal(utc))

	back, err := utc.AsTimezone(tehran(t))
	require.NoError(t, err)
	assert.Equal(t, 0, back.Compare(dt))
}

func TestDateTimeArithmetic(t *testing.T) {
	dt := MustDateTime(1391, 12, 30, 23, 0, 0, 0, WithZone(tehran(t)))

	next, err := dt.Add(90 * time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "1392-01-01 00:30:00+0330", next.String())

	diff, err := next.Sub(dt)
	require.NoError(t, err)
	assert.Equal(t, 90*time.Minute, diff)

	a := MustDateTime(1400, 1, 1, 0, 0, 0, 0)
	b := MustDateTime(1400, 1, 2, 12, 0, 0, 0)
	diff, err = b.Sub(a)
	require.NoError(t, err)
	assert.Equal(t, 36*time.Hour, diff)

	_, err = b.Sub(dt)
	assert.ErrorIs(t, err, errorutil.ErrNotComparable)

	_, err = MustDateTime(9377, 12, 30, 23, 0, 0, 0).Add(2 * time.Hour)
	assert.ErrorIs(t, err, errorutil.ErrOutOfRange)
}

func TestDateTimeEqual(t *testing.T) {
	z := tehran(t)
	aware := MustDateTime(1400, 1, 1, 3, 30, 0, 0, WithZone(z))
	sameInstant := MustDateTime(1400, 1, 1, 0, 0, 0, 0, WithZone(UTC))
	naive := MustDateTime(1400, 1, 1, 3, 30, 0, 0)

	assert.True(t, aware.Equal(sameInstant))
	assert.False(t, aware.Equal(naive))
	assert.True(t, naive.Equal(MustDateTime(1400, 1, 1, 3, 30, 0, 0)))
	assert.False(t, naive.Equal(naive.AsLocale(locale.Persian)))
	assert.Equal(t, 1, aware.Compare(sameInstant))
}

func TestDateTimeReplaceAndParts(t *testing.T) {
	dt := MustDateTime(1390, 2, 23, 12, 13, 14, 1, WithZone(UTC), WithLocale(locale.English))

	replaced, err := dt.Replace(WithHour(0), WithZone(nil))
	require.NoError(t, err)
	assert.False(t, replaced.IsAware())
	assert.Equal(t, 0, replaced.Hour())

	_, err = dt.Replace(WithFold(3))
	assert.ErrorIs(t, err, errorutil.ErrOutOfRange)

	assert.Equal(t, "1390-02-23", dt.Date().String())
	assert.False(t, dt.Time().IsAware())
	assert.True(t, dt.TimeTZ().IsAware())
	assert.Equal(t, locale.English, dt.Date().Locale())

	combined := Combine(dt.Date(), dt.TimeTZ())
	assert.True(t, combined.Equal(dt))
}

func TestDateTimeFromGregorian(t *testing.T) {
	g := time.Date(2011, time.May, 13, 12, 13, 14, 1500, time.UTC)

	dt, err := DateTimeFromGregorian(FromGregorianDateTime{Time: g})
	require.NoError(t, err)
	assert.Equal(t, "1390-02-23 12:13:14.000001+0000", dt.String())
	assert.True(t, dt.Gregorian().Equal(g.Truncate(time.Microsecond)))

	naive, err := DateTimeFromGregorian(FromGregorianDateTime{Time: g, Naive: true})
	require.NoError(t, err)
	assert.False(t, naive.IsAware())
	assert.Equal(t, time.UTC, naive.Gregorian().Location())

	dt, err = DateTimeFromGregorian(FromComponents{Year: 2018, Month: 7, Day: 14, Hour: 11, Minute: 47, Second: 30})
	require.NoError(t, err)
	assert.Equal(t, "1397-04-23 11:47:30", dt.String())

	_, err = DateTimeFromGregorian(FromComponents{Year: 2018, Month: 7, Day: 14, Hour: 25})
	assert.ErrorIs(t, err, errorutil.ErrOutOfRange)

	_, err = DateTimeFromGregorian(nil)
	assert.ErrorIs(t, err, errorutil.ErrUnsupported)
}

func TestDateTimeFromOrdinal(t *testing.T) {
	dt, err := DateTimeFromOrdinal(1)
	require.NoError(t, err)
	assert.Equal(t, "0001-01-01 00:00:00", dt.String())
	assert.Equal(t, 1, dt.ToOrdinal())
}

func TestNowAndUTCNow(t *testing.T) {
	now := Now(UTC)
	utc := UTCNow()
	assert.True(t, now.IsAware())
	assert.False(t, utc.IsAware())

	aligned, err := now.Replace(WithZone(nil))
	require.NoError(t, err)
	diff, err := utc.Sub(aligned)
	require.NoError(t, err)
	assert.Less(t, diff.Abs(), time.Minute)
}
