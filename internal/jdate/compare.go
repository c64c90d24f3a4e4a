package jdate

import (
	"fmt"
	"time"

	"github.com/nowwaveradio/jdatetime/internal/errorutil"
)

// Compare orders two values of any supported kind: Date, DateTime or
// time.Time. Dates compare with dates and Gregorian times; date-times
// compare with date-times and Gregorian times. Anything else fails with
// ErrNotComparable.
func Compare(a, b any) (int, error) {
	switch x := a.(type) {
	case Date:
		y, err := asDate(b, x)
		if err != nil {
			return 0, notComparable(a, b)
		}
		return x.Compare(y), nil
	case DateTime:
		y, err := asDateTime(b, x)
		if err != nil {
			return 0, notComparable(a, b)
		}
		return x.Compare(y), nil
	case time.Time:
		if _, ok := b.(time.Time); !ok {
			c, err := Compare(b, a)
			return -c, err
		}
	}
	return 0, notComparable(a, b)
}

// Equal is the dynamic counterpart of Date.Equal and DateTime.Equal.
// Gregorian operands are converted into the other operand's locale.
func Equal(a, b any) (bool, error) {
	switch x := a.(type) {
	case Date:
		y, err := asDate(b, x)
		if err != nil {
			return false, notComparable(a, b)
		}
		return x.Equal(y), nil
	case DateTime:
		y, err := asDateTime(b, x)
		if err != nil {
			return false, notComparable(a, b)
		}
		return x.Equal(y), nil
	case time.Time:
		if _, ok := b.(time.Time); !ok {
			return Equal(b, a)
		}
	}
	return false, notComparable(a, b)
}

func asDate(v any, like Date) (Date, error) {
	switch y := v.(type) {
	case Date:
		return y, nil
	case time.Time:
		return DateFromGregorian(FromGregorianDate{Date: y}, WithLocale(like.locale))
	}
	return Date{}, errorutil.ErrNotComparable
}

func asDateTime(v any, like DateTime) (DateTime, error) {
	switch y := v.(type) {
	case DateTime:
		return y, nil
	case time.Time:
		return DateTimeFromGregorian(FromGregorianDateTime{Time: y, Naive: !like.IsAware()}, WithLocale(like.Locale()))
	}
	return DateTime{}, errorutil.ErrNotComparable
}

func notComparable(a, b any) error {
	return fmt.Errorf("%w: %T and %T", errorutil.ErrNotComparable, a, b)
}
