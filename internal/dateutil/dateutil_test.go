package dateutil

import (
	"errors"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	t.Run("valid date", func(t *testing.T) {
		got, err := ParseDate("2025-01-15")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := time.Date(2025, 1, 15, 0, 0, 0, 0, time.Local)
		if !got.Equal(want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})

	t.Run("empty defaults to today", func(t *testing.T) {
		got, err := ParseDate("")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		today := TruncateToDay(time.Now())
		if !got.Equal(today) {
			t.Errorf("got %v, want %v", got, today)
		}
	})

	t.Run("invalid format", func(t *testing.T) {
		_, err := ParseDate("01-15-2025")
		if !errors.Is(err, ErrInvalidDateFormat) {
			t.Errorf("got error %v, want %v", err, ErrInvalidDateFormat)
		}
	})
}

func TestParseWeek(t *testing.T) {
	// Wednesday
	ref := time.Date(2030, 1, 9, 15, 0, 0, 0, time.UTC)
	monday := time.Date(2030, 1, 7, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		input string
		want  time.Time
	}{
		{"", monday},
		{"this", monday},
		{"TODAY", monday},
		{"next", monday.AddDate(0, 0, 7)},
		{"last", monday.AddDate(0, 0, -7)},
		{"prev", monday.AddDate(0, 0, -7)},
		{"+3", monday.AddDate(0, 0, 21)},
		{"-2", monday.AddDate(0, 0, -14)},
		{"2030-01-13", monday},
		{"2030-01-14", monday.AddDate(0, 0, 7)},
		{"2029-12-31", time.Date(2029, 12, 31, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseWeek(tt.input, ref)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("ParseWeek(%q) = %v, want %v", tt.input, got, tt.want)
			}
			if got.Weekday() != time.Monday {
				t.Errorf("ParseWeek(%q) is a %v", tt.input, got.Weekday())
			}
		})
	}
}

func TestParseWeek_Errors(t *testing.T) {
	ref := time.Date(2030, 1, 9, 0, 0, 0, 0, time.UTC)
	for _, input := range []string{"soon", "+x", "2030/01/07", "13-01-2030"} {
		t.Run(input, func(t *testing.T) {
			if _, err := ParseWeek(input, ref); !errors.Is(err, ErrInvalidWeek) {
				t.Errorf("ParseWeek(%q) error = %v, want ErrInvalidWeek", input, err)
			}
		})
	}
}

func TestParseWeekday(t *testing.T) {
	tests := []struct {
		input string
		want  time.Weekday
	}{
		{"monday", time.Monday},
		{"Mon", time.Monday},
		{" SUN ", time.Sunday},
		{"saturday", time.Saturday},
		{"thu", time.Thursday},
	}
	for _, tt := range tests {
		got, err := ParseWeekday(tt.input)
		if err != nil {
			t.Errorf("ParseWeekday(%q) error: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseWeekday(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}

	if _, err := ParseWeekday("funday"); !errors.Is(err, ErrInvalidWeekday) {
		t.Errorf("got %v, want ErrInvalidWeekday", err)
	}
}

func TestWeekRange(t *testing.T) {
	tests := []struct {
		name       string
		input      time.Time
		wantMonday time.Time
		wantSunday time.Time
	}{
		{
			name:       "Monday input returns same Monday",
			input:      time.Date(2025, 1, 6, 10, 30, 0, 0, time.UTC), // Monday
			wantMonday: time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC),
			wantSunday: time.Date(2025, 1, 12, 0, 0, 0, 0, time.UTC),
		},
		{
			name:       "Wednesday returns previous Monday",
			input:      time.Date(2025, 1, 8, 14, 0, 0, 0, time.UTC), // Wednesday
			wantMonday: time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC),
			wantSunday: time.Date(2025, 1, 12, 0, 0, 0, 0, time.UTC),
		},
		{
			name:       "Sunday returns previous Monday and same Sunday",
			input:      time.Date(2025, 1, 12, 23, 59, 0, 0, time.UTC), // Sunday
			wantMonday: time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC),
			wantSunday: time.Date(2025, 1, 12, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotMonday, gotSunday := WeekRange(tt.input)
			if !gotMonday.Equal(tt.wantMonday) {
				t.Errorf("monday: got %v, want %v", gotMonday, tt.wantMonday)
			}
			if !gotSunday.Equal(tt.wantSunday) {
				t.Errorf("sunday: got %v, want %v", gotSunday, tt.wantSunday)
			}
		})
	}
}

func TestWeekLabel(t *testing.T) {
	tests := []struct {
		monday time.Time
		want   string
	}{
		{time.Date(2030, 1, 7, 0, 0, 0, 0, time.UTC), "Jan 7 - Jan 13, 2030"},
		{time.Date(2029, 12, 31, 0, 0, 0, 0, time.UTC), "Dec 31, 2029 - Jan 6, 2030"},
		{time.Date(2030, 12, 30, 0, 0, 0, 0, time.UTC), "Dec 30, 2030 - Jan 5, 2031"},
	}
	for _, tt := range tests {
		if got := WeekLabel(tt.monday); got != tt.want {
			t.Errorf("WeekLabel(%v) = %q, want %q", tt.monday, got, tt.want)
		}
	}
}

func TestTruncateToDay(t *testing.T) {
	input := time.Date(2025, 1, 15, 14, 30, 45, 123456789, time.UTC)
	got := TruncateToDay(input)
	want := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}
