package util

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// epochMillisCutoff separates epoch seconds from epoch milliseconds.
const epochMillisCutoff = 1e12

var layouts = []string{
	time.RFC3339,
	time.RFC3339Nano,
	time.DateOnly,
	time.DateTime,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.000",
}

// ParseTime tries the known date layouts, then a decimal epoch in seconds
// (or milliseconds when it is too large to be seconds). Returns (t, true) if any worked.
func ParseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 && !math.IsInf(f, 0) {
		return EpochTime(f), true
	}
	return time.Time{}, false
}

// EpochTime converts a numeric epoch to UTC time.
func EpochTime(f float64) time.Time {
	if f >= epochMillisCutoff {
		return time.UnixMilli(int64(f)).UTC()
	}
	sec, frac := math.Modf(f)
	return time.Unix(int64(sec), int64(frac*1e9)).UTC()
}
