package report

import (
	"strings"
	"time"
)

// Range selects the dashboard window
type Range string

const (
	RangeDay   Range = "day"
	RangeWeek  Range = "week"
	RangeMonth Range = "month"
	RangeYear  Range = "year"
)

// ParseRange maps a query value to a Range, defaulting to week.
func ParseRange(s string) Range {
	switch r := Range(strings.ToLower(strings.TrimSpace(s))); r {
	case RangeDay, RangeWeek, RangeMonth, RangeYear:
		return r
	default:
		return RangeWeek
	}
}

// Window is a calendar-aligned reporting period split into buckets
type Window struct {
	Range   Range
	From    time.Time // inclusive
	To      time.Time // exclusive
	Monthly bool
	Buckets []time.Time
}

// StartOfDay returns local midnight of t's day in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// NewWindow builds the window for r ending with the day containing now.
// Day, week and month windows are 1, 7 and 30 daily buckets; the year
// window is 12 monthly buckets ending with the current month.
func NewWindow(now time.Time, loc *time.Location, r Range) Window {
	today := StartOfDay(now, loc)
	w := Window{Range: r, To: today.AddDate(0, 0, 1)}

	if r == RangeYear {
		w.Monthly = true
		first := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, loc).AddDate(0, -11, 0)
		w.From = first
		for i := 0; i < 12; i++ {
			w.Buckets = append(w.Buckets, first.AddDate(0, i, 0))
		}
		return w
	}

	days := 7
	switch r {
	case RangeDay:
		days = 1
	case RangeMonth:
		days = 30
	}
	w.From = today.AddDate(0, 0, -(days - 1))
	for i := 0; i < days; i++ {
		w.Buckets = append(w.Buckets, w.From.AddDate(0, 0, i))
	}
	return w
}

// Label formats a bucket start for display.
func (w Window) Label(t time.Time) string {
	if w.Monthly {
		return t.Format("2006-01")
	}
	return t.Format("2006-01-02")
}

// labelFor returns the label of the bucket containing t.
func (w Window) labelFor(t time.Time, loc *time.Location) string {
	return w.Label(StartOfDay(t, loc))
}
