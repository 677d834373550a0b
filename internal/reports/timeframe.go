package reports

import (
	"fmt"
	"time"
)

const (
	Today     = "today"
	Yesterday = "yesterday"
	Week      = "week"
	Month     = "month"
	Custom    = "custom"
)

// Timeframes lists the presets in display order.
var Timeframes = []string{Today, Yesterday, Week, Month, Custom}

// Range is a half-open [From, To) interval.
type Range struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

func (r Range) Days() int {
	return int(r.To.Sub(r.From).Hours() / 24)
}

// ResolveRange turns a preset into a range in now's location. Weeks start on
// Monday. Custom ranges go through CustomRange.
func ResolveRange(timeframe string, now time.Time) (Range, error) {
	day := startOfDay(now)

	switch timeframe {
	case Today:
		return Range{From: day, To: day.AddDate(0, 0, 1)}, nil
	case Yesterday:
		return Range{From: day.AddDate(0, 0, -1), To: day}, nil
	case Week:
		offset := (int(day.Weekday()) + 6) % 7
		monday := day.AddDate(0, 0, -offset)
		return Range{From: monday, To: monday.AddDate(0, 0, 7)}, nil
	case Month:
		first := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, day.Location())
		return Range{From: first, To: first.AddDate(0, 1, 0)}, nil
	case Custom:
		return Range{}, fmt.Errorf("custom timeframe needs explicit dates")
	default:
		return Range{}, fmt.Errorf("unknown timeframe %q", timeframe)
	}
}

// CustomRange covers the whole days from first to last inclusive.
func CustomRange(first, last time.Time) (Range, error) {
	from := startOfDay(first)
	to := startOfDay(last).AddDate(0, 0, 1)
	if !to.After(from) {
		return Range{}, fmt.Errorf("end date %s is before start date %s", last.Format(time.DateOnly), first.Format(time.DateOnly))
	}
	return Range{From: from, To: to}, nil
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
