package planner

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	minutesPerDay = 24 * 60
	daysPerWeek   = 7
)

// TruncateDay drops the clock part of t, keeping its location.
func TruncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// AddDays moves t by n calendar days.
func AddDays(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, n)
}

// DateRange lists every day from start to end inclusive. An inverted range is empty.
func DateRange(start, end time.Time) []time.Time {
	start, end = TruncateDay(start), TruncateDay(end)
	if start.After(end) {
		return nil
	}
	dates := make([]time.Time, 0, DaysBetweenInclusive(start, end))
	for day := start; !day.After(end); day = AddDays(day, 1) {
		dates = append(dates, day)
	}
	return dates
}

// DaysBetweenInclusive counts the days in [start, end], or 0 when inverted.
func DaysBetweenInclusive(start, end time.Time) int {
	start, end = TruncateDay(start), TruncateDay(end)
	if start.After(end) {
		return 0
	}
	// Calendar arithmetic in UTC avoids DST-shortened days.
	su := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	eu := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	return int(eu.Sub(su).Hours()/24) + 1
}

// MaxDate returns the later of a and b.
func MaxDate(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

// MinDate returns the earlier of a and b.
func MinDate(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}

// IsWeekend reports whether t falls on Saturday or Sunday.
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// StartOfWeek returns the Monday of the week containing t.
func StartOfWeek(t time.Time) time.Time {
	day := TruncateDay(t)
	offset := (int(day.Weekday()) + 6) % daysPerWeek
	return AddDays(day, -offset)
}

// ParseClock converts "HH:MM" into minutes after midnight.
func ParseClock(value string) (int, error) {
	parts := strings.Split(strings.TrimSpace(value), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("invalid clock %q", value)
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours < 0 || hours > 24 {
		return 0, fmt.Errorf("invalid clock hour %q", value)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("invalid clock minute %q", value)
	}
	total := hours*60 + minutes
	if total > minutesPerDay {
		return 0, fmt.Errorf("clock %q beyond 24:00", value)
	}
	return total, nil
}

// ClockDuration returns the minutes between two "HH:MM" values. An end before
// the start wraps past midnight.
func ClockDuration(start, end string) (int, error) {
	from, err := ParseClock(start)
	if err != nil {
		return 0, err
	}
	to, err := ParseClock(end)
	if err != nil {
		return 0, err
	}
	if to < from {
		to += minutesPerDay
	}
	return to - from, nil
}
