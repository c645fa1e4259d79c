package util

import (
	"strconv"
	"time"
)

// ParseTime tries RFC3339, RFC3339Nano, and unix seconds. Returns (t, true) if any worked.
func ParseTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}
	if ts, err := strconv.ParseInt(s, 10, 64); err == nil && ts > 0 {
		return time.Unix(ts, 0), true
	}
	return time.Time{}, false
}

// ParseTimeDefault parses time or returns default if empty/invalid.
func ParseTimeDefault(s string, def time.Time) time.Time {
	if t, ok := ParseTime(s); ok {
		return t
	}
	return def
}

// ParseBarTime parses a chart bar timestamp. Daily bars carry only a date
// ("2006-01-02" or "20060102"); intraday bars add a "15:04" minute.
// The result is in UTC.
func ParseBarTime(date, minute string) (time.Time, bool) {
	layouts := []string{"2006-01-02", "20060102"}
	for _, layout := range layouts {
		d, err := time.ParseInLocation(layout, date, time.UTC)
		if err != nil {
			continue
		}
		if minute == "" {
			return d, true
		}
		m, err := time.Parse("15:04", minute)
		if err != nil {
			return time.Time{}, false
		}
		return d.Add(time.Duration(m.Hour())*time.Hour + time.Duration(m.Minute())*time.Minute), true
	}
	return time.Time{}, false
}
