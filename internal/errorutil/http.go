package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// RequestError carries a calendar or codec failure across the HTTP boundary
// with the status and a stable machine-readable code
type RequestError struct {
	Operation  string
	StatusCode int
	Code       string
	Err        error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s failed (HTTP %d %s): %v", e.Operation, e.StatusCode, e.Code, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// ClassifyError maps an error onto an HTTP status and error code. Unknown
// errors become 500 internal_error.
func ClassifyError(err error, operation string) *RequestError {
	reqErr := &RequestError{Operation: operation, Err: err}

	var validationErr *ValidationError
	var parseErr *ParseError
	var layoutErr *time.ParseError
	switch {
	case err == nil:
		reqErr.StatusCode, reqErr.Code = http.StatusOK, "ok"
	case errors.As(err, &validationErr):
		reqErr.StatusCode, reqErr.Code = http.StatusBadRequest, "invalid_request"
	case errors.As(err, &parseErr),
		errors.As(err, &layoutErr),
		errors.Is(err, ErrNoMatch),
		errors.Is(err, ErrInconsistentColon),
		errors.Is(err, ErrMalformedOffset),
		errors.Is(err, ErrUnknownName),
		errors.Is(err, ErrInvalidTimespec):
		reqErr.StatusCode, reqErr.Code = http.StatusBadRequest, "parse_error"
	case errors.Is(err, ErrOutOfRange):
		reqErr.StatusCode, reqErr.Code = http.StatusUnprocessableEntity, "out_of_range"
	case errors.Is(err, ErrNotComparable):
		reqErr.StatusCode, reqErr.Code = http.StatusUnprocessableEntity, "not_comparable"
	case errors.Is(err, ErrUnsupported):
		reqErr.StatusCode, reqErr.Code = http.StatusNotImplemented, "unsupported"
	default:
		reqErr.StatusCode, reqErr.Code = http.StatusInternalServerError, "internal_error"
	}

	return reqErr
}

// IsClientError reports whether err is the caller's fault (4xx)
func IsClientError(err error) bool {
	status := ClassifyError(err, "").StatusCode
	return status >= 400 && status < 500
}
