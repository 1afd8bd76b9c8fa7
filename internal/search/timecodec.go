package search

import (
	"fmt"
	"time"
)

// Timestamps stored in the index are ISO-8601 in UTC without fractional
// seconds. Parsing is lenient: historical documents were written with
// millisecond precision, so both forms must round-trip.
const (
	timeLayoutFractional = "2006-01-02T15:04:05.000Z07:00"
	timeLayoutPlain      = "2006-01-02T15:04:05Z07:00"
)

// FormatTime renders t in the canonical index form.
func FormatTime(t time.Time) string {
	return t.UTC().Format(timeLayoutPlain)
}

// ParseTime accepts both the canonical and the legacy fractional form.
func ParseTime(s string) (time.Time, error) {
	for _, layout := range []string{timeLayoutFractional, timeLayoutPlain} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}
