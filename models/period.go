package models

import (
	"fmt"
	"time"
)

// Period is a leaderboard time granularity
type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
	PeriodAllTime Period = "alltime"
)

// AllTimeKey is the single period key used by the alltime period
const AllTimeKey = "alltime"

// AllPeriods lists every maintained period in a fixed order
var AllPeriods = []Period{PeriodDaily, PeriodWeekly, PeriodMonthly, PeriodAllTime}

// ParsePeriod validates a period name
func ParsePeriod(s string) (Period, error) {
	switch p := Period(s); p {
	case PeriodDaily, PeriodWeekly, PeriodMonthly, PeriodAllTime:
		return p, nil
	default:
		return "", fmt.Errorf("unknown period %q", s)
	}
}

// PeriodKey maps a timestamp to the stable key of the window of the given period
// that contains it. Keys are computed in UTC and sort chronologically within a year.
func PeriodKey(period Period, t time.Time) string {
	t = t.UTC()
	switch period {
	case PeriodDaily:
		return t.Format("2006-01-02")
	case PeriodWeekly:
		return fmt.Sprintf("%d-W%02d", t.Year(), weekOfYear(t))
	case PeriodMonthly:
		return t.Format("2006-01")
	default:
		return AllTimeKey
	}
}

// weekOfYear numbers weeks from 1, with weeks starting on Sunday and week 1
// being the (possibly partial) week that contains January 1st.
func weekOfYear(t time.Time) int {
	jan1 := time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	return (t.YearDay()-1+int(jan1.Weekday()))/7 + 1
}

// PeriodWindow returns the half-open UTC window [start, end) sharing t's period key.
// bounded is false for the alltime period.
func PeriodWindow(period Period, t time.Time) (start, end time.Time, bounded bool) {
	t = t.UTC()
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	switch period {
	case PeriodDaily:
		return day, day.AddDate(0, 0, 1), true
	case PeriodWeekly:
		start = day.AddDate(0, 0, -int(day.Weekday()))
		end = start.AddDate(0, 0, 7)
		// Weeks are numbered per year, so the first and last week are clipped at the year boundary
		yearStart := time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
		yearEnd := yearStart.AddDate(1, 0, 0)
		if start.Before(yearStart) {
			start = yearStart
		}
		if end.After(yearEnd) {
			end = yearEnd
		}
		return start, end, true
	case PeriodMonthly:
		start = time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(0, 1, 0), true
	default:
		return time.Time{}, time.Time{}, false
	}
}

// TimeWindow is a half-open [Start, End) time range
type TimeWindow struct {
	Start time.Time
	End   time.Time
}

// WindowFor returns the window of the period containing t, or nil for alltime
func WindowFor(period Period, t time.Time) *TimeWindow {
	start, end, bounded := PeriodWindow(period, t)
	if !bounded {
		return nil
	}
	return &TimeWindow{Start: start, End: end}
}
