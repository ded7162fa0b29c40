// Package intervals provides the calendar math the forecast pipeline is
// built on: ISO week keys, 15-minute interval indexing, and historical
// query interval construction.
package intervals

import (
	"fmt"
	"strings"
	"time"

	"forecastgen/internal/types"
)

// WeekKey returns the ISO-8601 week key for t, formatted "YYYY-WW". The
// ISO year can differ from the calendar year near year boundaries:
// 2023-01-01 falls in week 52 of ISO year 2022.
func WeekKey(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-%02d", year, week)
}

// IntervalIndex returns the position of t's 15-minute slot within its day,
// in t's location. Range [0, 95].
func IntervalIndex(t time.Time) int {
	return (t.Hour()*60 + t.Minute()) / types.IntervalMinutes
}

// DayIndex returns t's day-of-week with Sunday = 0, in t's location.
func DayIndex(t time.Time) int {
	return int(t.Weekday())
}

// ParseWeekday resolves a day name ("Sunday" .. "Saturday") to a
// time.Weekday. Matching is case-insensitive.
func ParseWeekday(name string) (time.Weekday, error) {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.EqualFold(d.String(), name) {
			return d, nil
		}
	}
	return 0, types.NewAppError(types.ErrCodeValidationFailed,
		fmt.Sprintf("unknown day of week %q", name), nil)
}

// Interval is a closed historical query range.
type Interval struct {
	Start time.Time
	End   time.Time
}

// String renders the interval as the ISO-8601 "start/end" pair the
// aggregate query API expects.
func (iv Interval) String() string {
	return iv.Start.Format(time.RFC3339) + "/" + iv.End.Format(time.RFC3339)
}

// ParseStart extracts and parses the start instant of a "start/end" pair,
// preserving its UTC offset.
func ParseStart(interval string) (time.Time, error) {
	startStr, _, found := strings.Cut(interval, "/")
	if !found {
		return time.Time{}, types.NewAppError(types.ErrCodeValidationMalformedInterval,
			fmt.Sprintf("interval %q is not a start/end pair", interval), nil)
	}
	start, err := time.Parse(time.RFC3339, startStr)
	if err != nil {
		return time.Time{}, types.NewAppError(types.ErrCodeValidationMalformedInterval,
			fmt.Sprintf("interval start %q is not RFC 3339", startStr), err)
	}
	return start, nil
}

// QueryIntervals builds the historical week ranges to query, most recent
// first. Each range runs from the business unit's start-of-week to the end
// of its seventh day. The most recent range is the last fully or partially
// elapsed week strictly before now's week position.
func QueryIntervals(now time.Time, weeks int, startDay time.Weekday, loc *time.Location) []Interval {
	local := now.In(loc)
	daysBack := int(local.Weekday()-startDay+types.DaysPerWeek) % types.DaysPerWeek
	weekStart := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	weekStart = weekStart.AddDate(0, 0, -daysBack)
	// The current week has no complete history yet.
	weekStart = weekStart.AddDate(0, 0, -types.DaysPerWeek)

	out := make([]Interval, 0, weeks)
	for i := 0; i < weeks; i++ {
		end := weekStart.AddDate(0, 0, types.DaysPerWeek-1)
		end = time.Date(end.Year(), end.Month(), end.Day(), 23, 59, 59, 0, loc)
		out = append(out, Interval{Start: weekStart, End: end})
		weekStart = weekStart.AddDate(0, 0, -types.DaysPerWeek)
	}
	return out
}
