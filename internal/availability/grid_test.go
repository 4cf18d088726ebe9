package availability

import (
	"testing"
	"time"
)

// testMonday is the Monday of the week used across the package tests.
var testMonday = time.Date(2030, 1, 7, 0, 0, 0, 0, time.UTC)

// gridFromString creates a Grid from string notation.
// - 'U', 'P', 'A' are unavailable, preferred, available hours
// - '-' is an unset hour
// - '|' separates days, starting on Monday
//
// Only the first len(day) hours of each day are populated.
//
// Example: "-------AAA|UUPP" = Monday 07-10 available, Tuesday 00-02
// unavailable and 02-04 preferred.
func gridFromString(s string) *Grid {
	g := NewGrid(testMonday)
	day, hour := 0, 0
	for _, ch := range s {
		if ch == '|' {
			day++
			hour = 0
			continue
		}
		switch ch {
		case 'U':
			g.Put(Cell{Day: day, Hour: hour}, Unavailable)
		case 'P':
			g.Put(Cell{Day: day, Hour: hour}, Preferred)
		case 'A':
			g.Put(Cell{Day: day, Hour: hour}, Available)
		}
		hour++
	}
	return g
}

// dayPrefix returns the first n hours of a day as a string.
func dayPrefix(g *Grid, day, n int) string {
	return g.PrintDay(day)[:n]
}

func TestWeekStart(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{"monday", time.Date(2030, 1, 7, 15, 30, 0, 0, time.UTC), testMonday},
		{"wednesday", time.Date(2030, 1, 9, 0, 0, 0, 0, time.UTC), testMonday},
		{"sunday", time.Date(2030, 1, 13, 23, 59, 0, 0, time.UTC), testMonday},
		{"next monday", time.Date(2030, 1, 14, 0, 0, 0, 0, time.UTC), testMonday.AddDate(0, 0, 7)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WeekStart(tt.in); !got.Equal(tt.want) {
				t.Errorf("WeekStart(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestGrid_GetSet(t *testing.T) {
	g := NewGrid(testMonday)
	tuesday := testMonday.AddDate(0, 0, 1)

	if got := g.Get(tuesday, 9); got != Unset {
		t.Fatalf("empty grid Get = %v, want unset", got)
	}

	g.Set(tuesday, 9, Available)
	if got := g.Get(tuesday, 9); got != Available {
		t.Errorf("Get after Set = %v, want available", got)
	}
	if got := g.At(Cell{Day: 1, Hour: 9}); got != Available {
		t.Errorf("At(1,9) = %v, want available", got)
	}

	g.Set(tuesday, 9, Unset)
	if !g.IsEmpty() {
		t.Error("setting unset should remove the entry")
	}
}

func TestGrid_SetOutsideWeekIgnored(t *testing.T) {
	g := NewGrid(testMonday)
	g.Set(testMonday.AddDate(0, 0, 7), 9, Available)
	g.Set(testMonday.AddDate(0, 0, -1), 9, Available)
	g.Put(Cell{Day: 0, Hour: 24}, Available)
	g.Put(Cell{Day: 7, Hour: 0}, Available)
	g.Put(Cell{Day: 0, Hour: 0}, Status(42))

	if !g.IsEmpty() {
		t.Errorf("writes outside the grid should be ignored, got:\n%s", g.Print())
	}
}

func TestGrid_Clear(t *testing.T) {
	g := gridFromString("UUPPAA|AAA|||||PPP")
	g.Clear()
	if !g.IsEmpty() {
		t.Errorf("Clear left entries:\n%s", g.Print())
	}
	if !g.WeekStart().Equal(testMonday) {
		t.Error("Clear should keep the week")
	}
}

func TestGrid_CloneIsIndependent(t *testing.T) {
	g := gridFromString("AAA")
	c := g.Clone()
	c.Put(Cell{Day: 0, Hour: 0}, Unavailable)

	if g.At(Cell{Day: 0, Hour: 0}) != Available {
		t.Error("mutating a clone changed the original")
	}
	if g.Equal(c) {
		t.Error("Equal should notice the difference")
	}
}

func TestGrid_DayOfAndDate(t *testing.T) {
	g := NewGrid(testMonday)
	sunday := time.Date(2030, 1, 13, 18, 0, 0, 0, time.UTC)

	day, ok := g.DayOf(sunday)
	if !ok || day != 6 {
		t.Errorf("DayOf(sunday) = %d, %v; want 6, true", day, ok)
	}
	if _, ok := g.DayOf(sunday.AddDate(0, 0, 1)); ok {
		t.Error("DayOf outside week should report false")
	}
	if got := g.Date(2); got.Weekday() != time.Wednesday {
		t.Errorf("Date(2) = %v, want a Wednesday", got.Weekday())
	}
	if got := DayForWeekday(time.Sunday); got != 6 {
		t.Errorf("DayForWeekday(Sunday) = %d, want 6", got)
	}
	if got := DayForWeekday(time.Monday); got != 0 {
		t.Errorf("DayForWeekday(Monday) = %d, want 0", got)
	}
}

func TestGrid_HoursWithAndCount(t *testing.T) {
	g := gridFromString("--AA-A--PP")

	hours := g.HoursWith(0, Available)
	want := []int{2, 3, 5}
	if len(hours) != len(want) {
		t.Fatalf("HoursWith = %v, want %v", hours, want)
	}
	for i := range want {
		if hours[i] != want[i] {
			t.Errorf("HoursWith[%d] = %d, want %d", i, hours[i], want[i])
		}
	}
	if got := g.Count(Preferred); got != 2 {
		t.Errorf("Count(preferred) = %d, want 2", got)
	}
	if g.DayIsEmpty(0) || !g.DayIsEmpty(1) {
		t.Error("DayIsEmpty wrong")
	}
}

func TestGrid_PrintDay(t *testing.T) {
	g := gridFromString("UPA-")
	if got := dayPrefix(g, 0, 5); got != "UPA--" {
		t.Errorf("PrintDay prefix = %q, want %q", got, "UPA--")
	}
	if got := len(g.PrintDay(0)); got != HoursPerDay {
		t.Errorf("PrintDay length = %d, want %d", got, HoursPerDay)
	}
}
