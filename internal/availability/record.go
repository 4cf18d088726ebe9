package availability

import (
	"errors"
	"fmt"
	"time"
)

// DateLayout is the wire format of effective dates.
const DateLayout = "2006-01-02"

// Record parsing errors.
var (
	ErrInvalidTime    = errors.New("time must be in HH:mm format")
	ErrInvalidWeekday = errors.New("day_of_week must be between 0 and 6")
	ErrInvertedRange  = errors.New("start_time must be before end_time")
)

// RangeRecord is the persisted unit of availability: one status over the
// half-open interval [StartTime, EndTime) of one calendar day.
type RangeRecord struct {
	DayOfWeek      int    `json:"day_of_week"` // time.Weekday: 0=Sunday
	StartTime      string `json:"start_time"`
	EndTime        string `json:"end_time"`
	IsAvailable    bool   `json:"is_available"`
	IsPreferred    bool   `json:"is_preferred"`
	EffectiveFrom  string `json:"effective_from"`
	EffectiveUntil string `json:"effective_until"`
}

// Nurse is an entry of the nurse directory.
type Nurse struct {
	WorkerID    string `json:"worker_id"`
	DisplayName string `json:"display_name"`
}

// Status derives the record's status: preferred wins over available, and a
// record that is neither is unavailable.
func (r RangeRecord) Status() Status {
	switch {
	case r.IsPreferred:
		return Preferred
	case r.IsAvailable:
		return Available
	default:
		return Unavailable
	}
}

// IsSentinel reports whether the record is a zero-length marker.
func (r RangeRecord) IsSentinel() bool {
	return r.StartTime == r.EndTime ||
		(parses(r.StartTime) && parses(r.EndTime) && TimeToMinutes(r.StartTime) == TimeToMinutes(r.EndTime))
}

// HourSpan returns the hours [start, end) the record covers. Start is floored
// and end rounded up to a whole hour.
func (r RangeRecord) HourSpan() (start, end int, err error) {
	if r.DayOfWeek < 0 || r.DayOfWeek > 6 {
		return 0, 0, fmt.Errorf("%w: got %d", ErrInvalidWeekday, r.DayOfWeek)
	}
	startMins, err := ParseClock(r.StartTime)
	if err != nil {
		return 0, 0, fmt.Errorf("start_time: %w", err)
	}
	endMins, err := ParseClock(r.EndTime)
	if err != nil {
		return 0, 0, fmt.Errorf("end_time: %w", err)
	}
	if startMins >= endMins {
		return 0, 0, fmt.Errorf("%w: %s-%s", ErrInvertedRange, r.StartTime, r.EndTime)
	}
	return startMins / 60, (endMins + 59) / 60, nil
}

// NewRecord builds a day-scoped record for hours [startHour, endHour) on date.
func NewRecord(date time.Time, startHour, endHour int, s Status) RangeRecord {
	day := date.Format(DateLayout)
	return RangeRecord{
		DayOfWeek:      int(date.Weekday()),
		StartTime:      HourToTime(startHour),
		EndTime:        HourToTime(endHour),
		IsAvailable:    s == Available || s == Preferred,
		IsPreferred:    s == Preferred,
		EffectiveFrom:  day,
		EffectiveUntil: day,
	}
}

// HourToTime formats an hour boundary as "HH:00". 24 is the end of the day.
func HourToTime(h int) string {
	return MinutesToTime(h * 60)
}

// MinutesToTime converts minutes since midnight to "HH:MM", clamped to
// 00:00-24:00.
func MinutesToTime(m int) string {
	if m < 0 {
		m = 0
	}
	if m > 24*60 {
		m = 24 * 60
	}
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// TimeToMinutes converts "HH:MM" to minutes since midnight.
// Returns 0 for invalid input.
func TimeToMinutes(t string) int {
	m, err := ParseClock(t)
	if err != nil {
		return 0
	}
	return m
}

// ParseClock parses "HH:mm" or "HH:mm:ss" into minutes since midnight.
// "24:00" is accepted as the end of the day; seconds are ignored.
func ParseClock(t string) (int, error) {
	if len(t) != 5 && len(t) != 8 {
		return 0, fmt.Errorf("%w, got %q", ErrInvalidTime, t)
	}
	if t[2] != ':' || (len(t) == 8 && t[5] != ':') {
		return 0, fmt.Errorf("%w, got %q", ErrInvalidTime, t)
	}
	for i, c := range t {
		if i == 2 || i == 5 {
			continue
		}
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("%w, got %q", ErrInvalidTime, t)
		}
	}
	hours := int(t[0]-'0')*10 + int(t[1]-'0')
	mins := int(t[3]-'0')*10 + int(t[4]-'0')
	if mins > 59 || hours > 24 || (hours == 24 && mins != 0) {
		return 0, fmt.Errorf("%w, got %q", ErrInvalidTime, t)
	}
	return hours*60 + mins, nil
}

func parses(t string) bool {
	_, err := ParseClock(t)
	return err == nil
}
