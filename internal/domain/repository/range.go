package repository

import "time"

// Range is a provider-defined relative window used to bound a fetched series.
type Range string

const (
	RangeMax Range = "max"
	Range5y  Range = "5y"
	Range2y  Range = "2y"
	Range1y  Range = "1y"
	RangeYTD Range = "ytd"
	Range6m  Range = "6m"
	Range3m  Range = "3m"
	Range1m  Range = "1m"
	Range1mm Range = "1mm"
	Range5d  Range = "5d"
	Range5dm Range = "5dm"
)

// IsValidRange returns true if r is part of the range vocabulary.
func IsValidRange(r Range) bool {
	switch r {
	case RangeMax, Range5y, Range2y, Range1y, RangeYTD, Range6m, Range3m, Range1m, Range1mm, Range5d, Range5dm:
		return true
	default:
		return false
	}
}

// DefaultRange returns the default range.
func DefaultRange() Range { return Range6m }

// RangeStart resolves r to the first instant it covers, relative to now.
// The zero time means "no lower bound" (max). ok is false for unknown ranges.
func RangeStart(r Range, now time.Time) (start time.Time, ok bool) {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch r {
	case RangeMax:
		return time.Time{}, true
	case Range5y:
		return day.AddDate(-5, 0, 0), true
	case Range2y:
		return day.AddDate(-2, 0, 0), true
	case Range1y:
		return day.AddDate(-1, 0, 0), true
	case RangeYTD:
		return time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location()), true
	case Range6m:
		return day.AddDate(0, -6, 0), true
	case Range3m:
		return day.AddDate(0, -3, 0), true
	case Range1m, Range1mm:
		return day.AddDate(0, -1, 0), true
	case Range5d, Range5dm:
		return day.AddDate(0, 0, -5), true
	default:
		return time.Time{}, false
	}
}
