package availability

import (
	"fmt"
	"strings"
	"time"
)

// EncodeMode selects how a day's hours of one status become records.
type EncodeMode int

const (
	// ModeRuns writes one record per maximal contiguous run of a status.
	ModeRuns EncodeMode = iota
	// ModeBounding writes one record per status spanning its earliest to
	// latest hour of the day. Gaps inside the span are not preserved and
	// decode back as that status.
	ModeBounding
)

// String returns the config name of the mode.
func (m EncodeMode) String() string {
	if m == ModeBounding {
		return "bounding"
	}
	return "runs"
}

// ParseEncodeMode parses "runs" or "bounding".
func ParseEncodeMode(s string) (EncodeMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "runs":
		return ModeRuns, nil
	case "bounding":
		return ModeBounding, nil
	default:
		return ModeRuns, fmt.Errorf("unknown encoding %q (want runs or bounding)", s)
	}
}

// Codec translates between a Grid and range records.
type Codec struct {
	Mode EncodeMode

	// EmptyDayMarker makes Encode write a 00:00-00:00 unavailable record for
	// days with no covered hour, so a cleared day is distinguishable from a
	// day that was never saved.
	EmptyDayMarker bool
}

// DefaultCodec returns run-length encoding with empty-day markers.
func DefaultCodec() Codec {
	return Codec{Mode: ModeRuns, EmptyDayMarker: true}
}

// Skipped describes a record that Decode did not apply.
type Skipped struct {
	Index  int
	Record RangeRecord
	Reason error
}

func (s Skipped) Error() string {
	return fmt.Sprintf("record %d (day %d %s-%s): %v",
		s.Index, s.Record.DayOfWeek, s.Record.StartTime, s.Record.EndTime, s.Reason)
}

// Encode converts a week grid to records. Records are ordered by date, then
// by status (unavailable, preferred, available), then by start time.
func (c Codec) Encode(g *Grid) []RangeRecord {
	var out []RangeRecord
	for day := 0; day < DaysPerWeek; day++ {
		date := g.Date(day)
		if g.DayIsEmpty(day) {
			if c.EmptyDayMarker {
				out = append(out, NewRecord(date, 0, 0, Unavailable))
			}
			continue
		}
		for _, s := range PersistedStatuses {
			hours := g.HoursWith(day, s)
			if len(hours) == 0 {
				continue
			}
			for _, span := range c.spans(hours) {
				out = append(out, NewRecord(date, span[0], span[1], s))
			}
		}
	}
	return out
}

// spans groups sorted hours into [start, end) intervals according to Mode.
func (c Codec) spans(hours []int) [][2]int {
	if c.Mode == ModeBounding {
		return [][2]int{{hours[0], hours[len(hours)-1] + 1}}
	}

	var out [][2]int
	start, prev := hours[0], hours[0]
	for _, h := range hours[1:] {
		if h == prev+1 {
			prev = h
			continue
		}
		out = append(out, [2]int{start, prev + 1})
		start, prev = h, h
	}
	return append(out, [2]int{start, prev + 1})
}

// Decode builds the grid of the week starting at weekStart from records.
// Records are applied in order, so where two overlap the later one wins.
// Zero-length markers are ignored; malformed records are skipped and
// reported, never applied.
func (c Codec) Decode(weekStart time.Time, records []RangeRecord) (*Grid, []Skipped) {
	g := NewGrid(weekStart)
	var skipped []Skipped

	for i, r := range records {
		if r.DayOfWeek < 0 || r.DayOfWeek > 6 {
			skipped = append(skipped, Skipped{Index: i, Record: r,
				Reason: fmt.Errorf("%w: got %d", ErrInvalidWeekday, r.DayOfWeek)})
			continue
		}
		if r.IsSentinel() {
			continue
		}
		start, end, err := r.HourSpan()
		if err != nil {
			skipped = append(skipped, Skipped{Index: i, Record: r, Reason: err})
			continue
		}

		day := DayForWeekday(time.Weekday(r.DayOfWeek))
		status := r.Status()
		for h := start; h < end && h < HoursPerDay; h++ {
			g.Put(Cell{Day: day, Hour: h}, status)
		}
	}

	return g, skipped
}
