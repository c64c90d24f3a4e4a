package parser

import (
	"fmt"
	"strings"
	"time"

	"github.com/nowwaveradio/jdatetime/internal/errorutil"
)

// ParseOffset decodes a %z value: Z, ±HHMM, ±HH:MM, ±HHMMSS[.ffffff] or
// ±HH:MM:SS[.ffffff]. Mixing the colon and compact forms is reported as
// ErrInconsistentColon; an offset of a day or more as ErrMalformedOffset.
func ParseOffset(raw string) (time.Duration, error) {
	if raw == "Z" {
		return 0, nil
	}
	if len(raw) < 5 || (raw[0] != '+' && raw[0] != '-') {
		return 0, fmt.Errorf("%w: %q", errorutil.ErrMalformedOffset, raw)
	}

	z := raw
	if z[3] == ':' {
		z = z[:3] + z[4:]
		if len(z) > 5 {
			if z[5] != ':' {
				return 0, errorutil.InconsistentColonError(raw)
			}
			z = z[:5] + z[6:]
		}
	}
	if strings.Contains(z, ":") {
		return 0, errorutil.InconsistentColonError(raw)
	}
	if len(z) < 5 || !digits(z[1:5]) {
		return 0, fmt.Errorf("%w: %q", errorutil.ErrMalformedOffset, raw)
	}

	offset := time.Duration(atoi(z[1:3]))*time.Hour + time.Duration(atoi(z[3:5]))*time.Minute
	rest := z[5:]
	if rest != "" {
		if len(rest) < 2 || !digits(rest[:2]) {
			return 0, fmt.Errorf("%w: %q", errorutil.ErrMalformedOffset, raw)
		}
		offset += time.Duration(atoi(rest[:2])) * time.Second
		rest = rest[2:]
	}
	if rest != "" {
		frac := strings.TrimPrefix(rest, ".")
		if frac == rest || frac == "" || len(frac) > 6 || !digits(frac) {
			return 0, fmt.Errorf("%w: %q", errorutil.ErrMalformedOffset, raw)
		}
		offset += time.Duration(atoi(frac+strings.Repeat("0", 6-len(frac)))) * time.Microsecond
	}

	if offset >= 24*time.Hour {
		return 0, fmt.Errorf("%w: %q is not strictly between -24h and 24h", errorutil.ErrMalformedOffset, raw)
	}
	if raw[0] == '-' {
		offset = -offset
	}
	return offset, nil
}

func digits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}
