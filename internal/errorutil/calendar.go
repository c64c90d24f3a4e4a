package errorutil

import (
	"errors"
	"fmt"
)

// Calendar and codec sentinels. Typed errors below wrap one of these so
// callers can branch with errors.Is.
var (
	ErrOutOfRange        = errors.New("value out of range")
	ErrNotComparable     = errors.New("values are not comparable")
	ErrNoMatch           = errors.New("input does not match pattern")
	ErrInconsistentColon = errors.New("inconsistent use of :")
	ErrMalformedOffset   = errors.New("malformed UTC offset")
	ErrUnknownName       = errors.New("unknown month or weekday name")
	ErrUnsupported       = errors.New("unsupported operation")
	ErrInvalidTimespec   = errors.New("invalid timespec")
)

// RangeError reports a calendar component outside its valid bounds
type RangeError struct {
	Field   string
	Value   int
	Min     int
	Max     int
	Message string
}

func (e *RangeError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s must be in %d..%d, got %d", e.Field, e.Min, e.Max, e.Value)
}

func (e *RangeError) Unwrap() error {
	return ErrOutOfRange
}

// NewRangeError builds a RangeError with the default message
func NewRangeError(field string, value, min, max int) *RangeError {
	return &RangeError{Field: field, Value: value, Min: min, Max: max}
}

// CheckRange returns a RangeError when value falls outside [min, max]
func CheckRange(field string, value, min, max int) error {
	if value < min || value > max {
		return NewRangeError(field, value, min, max)
	}
	return nil
}

// ParseError reports text that could not be decoded with a pattern.
// Err carries the specific cause (ErrNoMatch, ErrInconsistentColon, a *RangeError, ...).
type ParseError struct {
	Text    string
	Pattern string
	Err     error
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("time data %q does not match format %q", e.Text, e.Pattern)
	switch {
	case e.Err == nil, errors.Is(e.Err, ErrNoMatch):
		return msg
	case errors.Is(e.Err, ErrInconsistentColon), errors.Is(e.Err, ErrMalformedOffset):
		return e.Err.Error()
	default:
		return msg + ": " + e.Err.Error()
	}
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError wraps cause with the text and pattern that failed
func NewParseError(text, pattern string, cause error) *ParseError {
	if cause == nil {
		cause = ErrNoMatch
	}
	return &ParseError{Text: text, Pattern: pattern, Err: cause}
}

// InconsistentColonError reports an offset that mixes "HH:MM" and "MMSS" forms
func InconsistentColonError(offset string) error {
	return fmt.Errorf("%w in %q", ErrInconsistentColon, offset)
}
