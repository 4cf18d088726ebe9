// Package dateutil provides date parsing and validation utilities.
package dateutil

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Validation errors.
var (
	ErrInvalidDateFormat = errors.New("date must be in YYYY-MM-DD format")
	ErrInvalidWeek       = errors.New("week must be YYYY-MM-DD, this, next, last or an offset like +2")
	ErrInvalidWeekday    = errors.New("unknown weekday")
)

// weekdayMap maps weekday names and abbreviations to time.Weekday values.
var weekdayMap = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
	"sun":       time.Sunday,
	"mon":       time.Monday,
	"tue":       time.Tuesday,
	"wed":       time.Wednesday,
	"thu":       time.Thursday,
	"fri":       time.Friday,
	"sat":       time.Saturday,
}

// ParseDate parses a date string in YYYY-MM-DD format.
// If the string is empty, returns today's date.
func ParseDate(s string) (time.Time, error) {
	if s == "" {
		return TruncateToDay(time.Now()), nil
	}
	t, err := time.ParseInLocation("2006-01-02", s, time.Local)
	if err != nil {
		return time.Time{}, ErrInvalidDateFormat
	}
	return t, nil
}

// ParseWeek resolves a week argument to the Monday of that week:
//   - "" or "this": the week containing relativeTo
//   - "next", "last" (or "prev"): one week after or before
//   - "+N" / "-N": N weeks after or before
//   - "YYYY-MM-DD": the week containing that date
//
// All inputs are case-insensitive.
func ParseWeek(s string, relativeTo time.Time) (time.Time, error) {
	monday, _ := WeekRange(relativeTo)
	input := strings.ToLower(strings.TrimSpace(s))

	switch input {
	case "", "this", "today":
		return monday, nil
	case "next":
		return monday.AddDate(0, 0, 7), nil
	case "last", "prev", "previous":
		return monday.AddDate(0, 0, -7), nil
	}

	if strings.HasPrefix(input, "+") || strings.HasPrefix(input, "-") {
		n, err := strconv.Atoi(input)
		if err != nil {
			return time.Time{}, ErrInvalidWeek
		}
		return monday.AddDate(0, 0, 7*n), nil
	}

	date, err := time.ParseInLocation("2006-01-02", input, relativeTo.Location())
	if err != nil {
		return time.Time{}, ErrInvalidWeek
	}
	monday, _ = WeekRange(date)
	return monday, nil
}

// ParseWeekday parses a weekday name such as "monday" or "mon".
func ParseWeekday(s string) (time.Weekday, error) {
	wd, ok := weekdayMap[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return time.Sunday, fmt.Errorf("%w: %q", ErrInvalidWeekday, s)
	}
	return wd, nil
}

// WeekRange returns the Monday and Sunday of the ISO week containing t.
func WeekRange(t time.Time) (monday, sunday time.Time) {
	t = TruncateToDay(t)
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday becomes day 7 in ISO week
	}
	monday = t.AddDate(0, 0, -(weekday - 1))
	sunday = monday.AddDate(0, 0, 6)
	return monday, sunday
}

// WeekLabel formats the week starting at monday, e.g. "Jan 7 - Jan 13, 2030".
func WeekLabel(monday time.Time) string {
	sunday := monday.AddDate(0, 0, 6)
	if monday.Year() != sunday.Year() {
		return fmt.Sprintf("%s - %s", monday.Format("Jan 2, 2006"), sunday.Format("Jan 2, 2006"))
	}
	return fmt.Sprintf("%s - %s", monday.Format("Jan 2"), sunday.Format("Jan 2, 2006"))
}

// TruncateToDay returns t with time set to midnight.
func TruncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
