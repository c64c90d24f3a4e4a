// Package constants holds the calendar range, epoch and parsing defaults
// shared by the conversion engine and the textual codec, plus the limits
// used by the batch processor, the HTTP server and the logger.
package constants

// Calendar range and epoch
const (
	// MinYear is the smallest representable Jalali year
	MinYear = 1

	// MaxYear is the largest representable Jalali year
	MaxYear = 9377

	// OrdinalOffset is the proleptic Gregorian ordinal (0001-01-01 = 1) of the
	// day before Farvardin 1 of year 1. Jalali ordinal = Gregorian ordinal - OrdinalOffset.
	OrdinalOffset = 226894

	// MaxMicrosecond is the largest sub-second component
	MaxMicrosecond = 999999
)

// Parsing defaults
const (
	// DefaultParseYear seeds the year when a pattern carries no year directive
	DefaultParseYear = 1279

	// TwoDigitYearPivot: %y values up to and including the pivot map to the
	// 1400s, larger values map to the 1300s
	TwoDigitYearPivot = 68
)

// Processing and batch configuration
const (
	// DefaultBatchSize for batch conversion requests
	DefaultBatchSize = 100

	// MaxBatchSize to prevent resource exhaustion
	MaxBatchSize = 1000
)

// HTTP server configuration
const (
	DefaultListenAddr          = ":8080"
	DefaultReadTimeoutSeconds  = 10
	DefaultWriteTimeoutSeconds = 10
)

// File and logging configuration
const (
	// DefaultMaxLogFiles to keep in rotation
	DefaultMaxLogFiles = 7

	// DefaultMaxLogSizeMB per log file
	DefaultMaxLogSizeMB = 10

	// DefaultLogFilenamePattern is expanded with Jalali calendar fields
	DefaultLogFilenamePattern = "jdate-%Y%m%d.log"
)
