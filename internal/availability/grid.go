package availability

import (
	"strings"
	"time"
)

const (
	// DaysPerWeek is the number of day columns in a grid.
	DaysPerWeek = 7
	// HoursPerDay is the number of hour rows in a grid.
	HoursPerDay = 24
	// TotalSlots is the number of cells in one week.
	TotalSlots = DaysPerWeek * HoursPerDay
)

// Cell addresses one hour of the displayed week.
type Cell struct {
	Day  int // 0=Monday, 6=Sunday
	Hour int // 0-23
}

// Valid reports whether the cell lies inside a week grid.
func (c Cell) Valid() bool {
	return c.Day >= 0 && c.Day < DaysPerWeek && c.Hour >= 0 && c.Hour < HoursPerDay
}

// Grid holds the hourly availability of one nurse for one week.
// The zero status (Unset) is never stored as anything but absence, so an empty
// grid and a cleared grid are identical.
type Grid struct {
	weekStart time.Time
	slots     [TotalSlots]Status
}

// NewGrid creates an empty grid for the week starting on weekStart.
// weekStart is normalised to midnight of the Monday of its week.
func NewGrid(weekStart time.Time) *Grid {
	return &Grid{weekStart: WeekStart(weekStart)}
}

// WeekStart returns the Monday (midnight) of the week containing t.
func WeekStart(t time.Time) time.Time {
	t = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	offset := DayForWeekday(t.Weekday())
	return t.AddDate(0, 0, -offset)
}

// DayForWeekday returns the day index holding wd in a week starting on Monday.
func DayForWeekday(wd time.Weekday) int {
	return (int(wd) + 6) % DaysPerWeek
}

// WeekStart returns the Monday this grid starts on.
func (g *Grid) WeekStart() time.Time {
	return g.weekStart
}

// Date returns the calendar date of a day index.
func (g *Grid) Date(day int) time.Time {
	return g.weekStart.AddDate(0, 0, day)
}

// DayOf returns the day index of date within the grid's week.
// ok is false when the date falls outside the week.
func (g *Grid) DayOf(date time.Time) (day int, ok bool) {
	d := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, g.weekStart.Location())
	for i := 0; i < DaysPerWeek; i++ {
		if g.Date(i).Equal(d) {
			return i, true
		}
	}
	return 0, false
}

func (g *Grid) slotIndex(c Cell) int {
	return c.Day*HoursPerDay + c.Hour
}

// At returns the status of a cell. Cells outside the grid are Unset.
func (g *Grid) At(c Cell) Status {
	if !c.Valid() {
		return Unset
	}
	return g.slots[g.slotIndex(c)]
}

// Get returns the status of an hour on a calendar date.
func (g *Grid) Get(date time.Time, hour int) Status {
	day, ok := g.DayOf(date)
	if !ok {
		return Unset
	}
	return g.At(Cell{Day: day, Hour: hour})
}

// Put sets the status of a cell. Setting Unset removes the entry.
// Cells outside the grid are ignored; callers validate at their boundary.
func (g *Grid) Put(c Cell, s Status) {
	if !c.Valid() || !s.Valid() {
		return
	}
	g.slots[g.slotIndex(c)] = s
}

// Set sets the status of an hour on a calendar date.
func (g *Grid) Set(date time.Time, hour int, s Status) {
	day, ok := g.DayOf(date)
	if !ok {
		return
	}
	g.Put(Cell{Day: day, Hour: hour}, s)
}

// Clear removes every entry of the week.
func (g *Grid) Clear() {
	g.slots = [TotalSlots]Status{}
}

// Clone returns an independent copy of the grid.
func (g *Grid) Clone() *Grid {
	c := *g
	return &c
}

// Equal reports whether two grids cover the same week with the same statuses.
func (g *Grid) Equal(other *Grid) bool {
	if g == nil || other == nil {
		return g == other
	}
	return g.weekStart.Equal(other.weekStart) && g.slots == other.slots
}

// IsEmpty reports whether no hour has a status.
func (g *Grid) IsEmpty() bool {
	return g.slots == [TotalSlots]Status{}
}

// Count returns how many hours of the week have status s.
func (g *Grid) Count(s Status) int {
	n := 0
	for _, v := range g.slots {
		if v == s {
			n++
		}
	}
	return n
}

// HoursWith returns the sorted hours of a day that have status s.
func (g *Grid) HoursWith(day int, s Status) []int {
	var hours []int
	for h := 0; h < HoursPerDay; h++ {
		if g.At(Cell{Day: day, Hour: h}) == s {
			hours = append(hours, h)
		}
	}
	return hours
}

// DayIsEmpty reports whether a day has no covered hour.
func (g *Grid) DayIsEmpty(day int) bool {
	for h := 0; h < HoursPerDay; h++ {
		if g.At(Cell{Day: day, Hour: h}) != Unset {
			return false
		}
	}
	return true
}

// PrintDay renders a day as 24 characters: '-' unset, 'U', 'P', 'A'.
// Useful for debugging and tests.
func (g *Grid) PrintDay(day int) string {
	var sb strings.Builder
	for h := 0; h < HoursPerDay; h++ {
		sb.WriteByte(statusRune(g.At(Cell{Day: day, Hour: h})))
	}
	return sb.String()
}

// Print renders the whole grid, one day per line.
func (g *Grid) Print() string {
	lines := make([]string, DaysPerWeek)
	for d := 0; d < DaysPerWeek; d++ {
		lines[d] = g.PrintDay(d)
	}
	return strings.Join(lines, "\n")
}

func statusRune(s Status) byte {
	switch s {
	case Unavailable:
		return 'U'
	case Preferred:
		return 'P'
	case Available:
		return 'A'
	default:
		return '-'
	}
}
