// Package jalali implements the proleptic Jalali (Persian solar Hijri)
// calendar arithmetic: the 33-year leap rule, Gregorian<->Jalali conversion,
// ordinal day numbers, weekdays and week numbers.
//
// The conversion follows the FarsiWeb day-count algorithm. Both directions
// count days from a shared pivot (Gregorian 1600-01-01 / Jalali 979) and
// redistribute the count into cyclic blocks of the target calendar. Every
// division is a floor division so dates before the pivot convert correctly.
package jalali

import (
	"time"

	"github.com/nowwaveradio/jdatetime/internal/constants"
	"github.com/nowwaveradio/jdatetime/internal/errorutil"
)

var (
	gregorianMonthDays = [12]int{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}
	jalaliMonthDays    = [12]int{31, 31, 31, 31, 31, 31, 30, 30, 30, 30, 30, 29}
)

// Block lengths in days
const (
	jalaliCycle       = 12053  // 33 Jalali years, 8 of them leap
	fourYears         = 1461   // 365*4 + 1
	gregorianQuad     = 146097 // 400 Gregorian years
	gregorianCentury  = 36524  // 100 Gregorian years without the 400-year leap day
	gregorianCentury1 = 36525  // first century of a 400-year block
	pivotGregorian    = 1600
	pivotJalali       = 979
	pivotOffsetDays   = 79 // Farvardin 1, 979 falls on day 79 of Gregorian 1600
)

// IsLeap reports whether year is a Jalali leap year under the 33-year rule
func IsLeap(year int) bool {
	switch floorMod(year, 33) {
	case 1, 5, 9, 13, 17, 22, 26, 30:
		return true
	}
	return false
}

// DaysInMonth returns the length of month in year, or 0 when month is not 1..12
func DaysInMonth(year, month int) int {
	if month < 1 || month > 12 {
		return 0
	}
	if month == 12 && IsLeap(year) {
		return 30
	}
	return jalaliMonthDays[month-1]
}

// DaysInYear returns 366 for leap years and 365 otherwise
func DaysInYear(year int) int {
	if IsLeap(year) {
		return 366
	}
	return 365
}

// IsGregorianLeap applies the 4/100/400 rule
func IsGregorianLeap(year int) bool {
	return (floorMod(year, 4) == 0 && floorMod(year, 100) != 0) || floorMod(year, 400) == 0
}

// GregorianToJalali converts a Gregorian civil date to its Jalali equivalent.
// The input is assumed valid; use ValidGregorian to check it first.
func GregorianToJalali(gy, gm, gd int) (jy, jm, jd int) {
	y := gy - pivotGregorian

	days := 365*y + floorDiv(y+3, 4) - floorDiv(y+99, 100) + floorDiv(y+399, 400)
	for i := 0; i < gm-1; i++ {
		days += gregorianMonthDays[i]
	}
	if gm > 2 && IsGregorianLeap(gy) {
		days++
	}
	days += gd - 1 - pivotOffsetDays

	cycles := floorDiv(days, jalaliCycle)
	days = floorMod(days, jalaliCycle)

	jy = pivotJalali + 33*cycles + 4*(days/fourYears)
	days %= fourYears

	// the first year of each 4-year block is the leap one
	if days >= 366 {
		days--
		jy += days / 365
		days %= 365
	}

	month := 0
	for month < 11 && days >= jalaliMonthDays[month] {
		days -= jalaliMonthDays[month]
		month++
	}

	return jy, month + 1, days + 1
}

// JalaliToGregorian converts a Jalali date to its Gregorian civil equivalent.
// The input is assumed valid; use ValidDate to check it first.
func JalaliToGregorian(jy, jm, jd int) (gy, gm, gd int) {
	y := jy - pivotJalali

	days := 365*y + floorDiv(y, 33)*8 + (floorMod(y, 33)+3)/4 + jd - 1 + pivotOffsetDays
	for i := 0; i < jm-1; i++ {
		days += jalaliMonthDays[i]
	}

	gy = pivotGregorian + 400*floorDiv(days, gregorianQuad)
	days = floorMod(days, gregorianQuad)

	leap := true
	if days >= gregorianCentury1 {
		days--
		gy += 100 * (days / gregorianCentury)
		days %= gregorianCentury

		if days >= 365 {
			days++
		} else {
			leap = false
		}
	}

	gy += 4 * (days / fourYears)
	days %= fourYears

	if days >= 366 {
		leap = false
		days--
		gy += days / 365
		days %= 365
	}

	month := 0
	for {
		length := gregorianMonthDays[month]
		if month == 1 && leap {
			length++
		}
		if days < length {
			break
		}
		days -= length
		month++
	}

	return gy, month + 1, days + 1
}

// ValidDate checks a Jalali date against the supported range and month lengths
func ValidDate(year, month, day int) error {
	if err := errorutil.CheckRange("year", year, constants.MinYear, constants.MaxYear); err != nil {
		return err
	}
	if err := errorutil.CheckRange("month", month, 1, 12); err != nil {
		return err
	}
	if max := DaysInMonth(year, month); day < 1 || day > max {
		return &errorutil.RangeError{
			Field:   "day",
			Value:   day,
			Min:     1,
			Max:     max,
			Message: "day is out of range for month",
		}
	}
	return nil
}

// ValidGregorian checks that the Gregorian date exists and converts into the
// supported Jalali range
func ValidGregorian(year, month, day int) error {
	if err := errorutil.CheckRange("month", month, 1, 12); err != nil {
		return err
	}
	max := gregorianMonthDays[month-1]
	if month == 2 && IsGregorianLeap(year) {
		max++
	}
	if day < 1 || day > max {
		return &errorutil.RangeError{Field: "day", Value: day, Min: 1, Max: max, Message: "day is out of range for month"}
	}
	jy, _, _ := GregorianToJalali(year, month, day)
	return errorutil.CheckRange("year", jy, constants.MinYear, constants.MaxYear)
}

// YearDay returns the 1-based day of the year
func YearDay(month, day int) int {
	yday := day
	for i := 0; i < month-1 && i < 12; i++ {
		yday += jalaliMonthDays[i]
	}
	return yday
}

// MonthDayFromYearDay is the inverse of YearDay
func MonthDayFromYearDay(year, yday int) (month, day int, err error) {
	if err := errorutil.CheckRange("yday", yday, 1, DaysInYear(year)); err != nil {
		return 0, 0, err
	}
	month = 1
	for yday > DaysInMonth(year, month) {
		yday -= DaysInMonth(year, month)
		month++
	}
	return month, yday, nil
}

// WeekdayFromGregorian maps a Go weekday to the Jalali week, which starts on
// Saturday (0) and ends on Friday (6)
func WeekdayFromGregorian(w time.Weekday) int {
	monday0 := (int(w) + 6) % 7
	return floorMod(monday0-5, 7)
}

// Weekday returns the Jalali weekday of a Jalali date
func Weekday(jy, jm, jd int) int {
	gy, gm, gd := JalaliToGregorian(jy, jm, jd)
	return WeekdayFromGregorian(gregorianTime(gy, gm, gd).Weekday())
}

// WeekNumber numbers weeks from 1, counting the partial week that holds
// Farvardin 1 as the first one
func WeekNumber(jy, jm, jd int) int {
	first := Weekday(jy, 1, 1)
	return (YearDay(jm, jd)+first-1)/7 + 1
}

// Ordinal returns the proleptic day number of a Jalali date; 1/1/1 is day 1
func Ordinal(jy, jm, jd int) int {
	gy, gm, gd := JalaliToGregorian(jy, jm, jd)
	return GregorianOrdinal(gy, gm, gd) - constants.OrdinalOffset
}

// FromOrdinal is the inverse of Ordinal
func FromOrdinal(n int) (jy, jm, jd int, err error) {
	if n < 1 {
		return 0, 0, 0, &errorutil.RangeError{Field: "ordinal", Value: n, Min: 1, Message: "ordinal must be >= 1"}
	}
	gy, gm, gd := GregorianFromOrdinal(n + constants.OrdinalOffset)
	jy, jm, jd = GregorianToJalali(gy, gm, gd)
	if jy > constants.MaxYear {
		return 0, 0, 0, errorutil.NewRangeError("year", jy, constants.MinYear, constants.MaxYear)
	}
	return jy, jm, jd, nil
}

var gregorianEpoch = time.Date(1, time.January, 1, 0, 0, 0, 0, time.UTC)

// GregorianOrdinal returns the proleptic Gregorian ordinal; 0001-01-01 is day 1
func GregorianOrdinal(gy, gm, gd int) int {
	secs := gregorianTime(gy, gm, gd).Unix() - gregorianEpoch.Unix()
	return int(secs/86400) + 1
}

// GregorianFromOrdinal is the inverse of GregorianOrdinal
func GregorianFromOrdinal(n int) (gy, gm, gd int) {
	t := time.Date(1, time.January, n, 0, 0, 0, 0, time.UTC)
	return t.Year(), int(t.Month()), t.Day()
}

func gregorianTime(gy, gm, gd int) time.Time {
	return time.Date(gy, time.Month(gm), gd, 0, 0, 0, 0, time.UTC)
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorMod(a, b int) int {
	m := a % b
	if m != 0 && ((m < 0) != (b < 0)) {
		m += b
	}
	return m
}
