package util

import (
	"strconv"
	"time"
)

// DateLayout is the day granularity used for market rows and macro observations.
const DateLayout = "2006-01-02"

var timeLayouts = []string{
	time.RFC3339,
	time.RFC3339Nano,
	time.RFC1123Z,
	time.RFC1123,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"2006-01-02 15:04:05",
	DateLayout,
}

// ParseTime tries RFC3339, RSS/Atom layouts, plain dates and unix seconds. Returns (t, true) if any worked.
func ParseTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	if ts, err := strconv.ParseInt(s, 10, 64); err == nil && ts > 0 {
		return time.Unix(ts, 0), true
	}
	return time.Time{}, false
}

// NormalizeDate renders any parseable timestamp as an ISO timestamp; unknown input is returned as-is.
func NormalizeDate(s string) string {
	t, ok := ParseTime(s)
	if !ok {
		return s
	}
	return t.UTC().Format(time.RFC3339)
}

// Day formats t at day granularity.
func Day(t time.Time) string {
	return t.UTC().Format(DateLayout)
}
