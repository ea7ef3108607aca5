package sqlite

import (
	"time"
)

// FormatTimeForDB formats a time.Time value as an RFC3339 UTC string with
// nanoseconds, so text ordering matches time ordering
func FormatTimeForDB(t time.Time) string {
	return t.UTC().Format(dbTimeLayout)
}

// FormatStringPtrForDB returns nil for a nil pointer so the column is NULL
func FormatStringPtrForDB(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}

// ParseTimeFromDB parses a time string written by FormatTimeForDB
func ParseTimeFromDB(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

// Fixed-width fractional seconds keep lexical and chronological order equal.
const dbTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"
