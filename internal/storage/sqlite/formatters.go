package sqlite

import (
	"time"
)

// FormatTimeForDB formats a time.Time value as an RFC3339 UTC string for consistent storage
func FormatTimeForDB(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// ParseTimeFromDB parses an RFC3339 formatted time string from the database
func ParseTimeFromDB(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}
