// Package period provides the calendar arithmetic used by the utilization
// and capacity aggregations: working-day counts, week counts and inclusive
// date-range overlap over calendar dates (no time-of-day component).
package period

import (
	"math"
	"time"
)

const dateLayout = "2006-01-02"

// Parse parses a calendar date in YYYY-MM-DD form.
func Parse(s string) (time.Time, error) {
	return time.Parse(dateLayout, s)
}

// Format renders a calendar date in YYYY-MM-DD form.
func Format(t time.Time) string {
	return t.Format(dateLayout)
}

// truncate drops any time-of-day component so day arithmetic is exact.
func truncate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// WorkingDays counts the days in the inclusive range [start, end] whose
// weekday is Monday through Friday. Saturday and Sunday are excluded
// unconditionally; configured holidays are not consulted.
func WorkingDays(start, end time.Time) int {
	start, end = truncate(start), truncate(end)
	if end.Before(start) {
		return 0
	}

	days := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		wd := d.Weekday()
		if wd != time.Saturday && wd != time.Sunday {
			days++
		}
	}
	return days
}

// WeeksInPeriod returns ceil((end - start in days) / 7), minimum 1.
// A same-day period therefore still counts as one week of capacity.
func WeeksInPeriod(start, end time.Time) int {
	start, end = truncate(start), truncate(end)
	if end.Before(start) {
		return 1
	}

	days := end.Sub(start).Hours() / 24
	weeks := int(math.Ceil(days / 7))
	if weeks < 1 {
		return 1
	}
	return weeks
}

// RangesOverlap reports whether [aStart, aEnd] and [bStart, bEnd] share at
// least one day. Bounds are inclusive, so two same-day ranges overlap.
func RangesOverlap(aStart, aEnd, bStart, bEnd time.Time) bool {
	aStart, aEnd = truncate(aStart), truncate(aEnd)
	bStart, bEnd = truncate(bStart), truncate(bEnd)
	return !aStart.After(bEnd) && !bStart.After(aEnd)
}

// MonthRange returns the first and last calendar day of now's month.
// The last day is computed as day 0 of the following month.
func MonthRange(now time.Time) (time.Time, time.Time) {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	last := time.Date(now.Year(), now.Month()+1, 0, 0, 0, 0, 0, time.UTC)
	return first, last
}
