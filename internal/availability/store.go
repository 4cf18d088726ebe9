package availability

import (
	"context"
	"time"
)

// Store reads and writes a nurse's availability one week at a time.
type Store interface {
	// FetchWeek returns the records stored for the week starting weekStart.
	FetchWeek(ctx context.Context, nurseID string, weekStart time.Time) ([]RangeRecord, error)

	// ReplaceWeek replaces every record of the week with records.
	ReplaceWeek(ctx context.Context, nurseID string, weekStart time.Time, records []RangeRecord) error
}

// Directory lists the nurses that can be edited.
type Directory interface {
	ListNurses(ctx context.Context) ([]Nurse, error)
}

// Backend is a store that also serves the nurse directory.
type Backend interface {
	Store
	Directory
	Close() error
}
