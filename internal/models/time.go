package models

import "time"

// TimeLayout is the on-disk timestamp format: ISO-8601 / RFC 3339 in UTC
// with fixed millisecond precision. Fixed width keeps lexicographic order
// equal to chronological order, which the updatedAt index relies on.
const TimeLayout = "2006-01-02T15:04:05.000Z"

// FormatTime renders t in the on-disk layout.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// ParseTime parses a timestamp in the on-disk layout.
func ParseTime(s string) (time.Time, error) {
	return time.Parse(TimeLayout, s)
}
