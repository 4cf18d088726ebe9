package ui

import (
	"context"
	"fmt"
	"time"

	"github.com/wardrota/wardrota/internal/availability"
	"github.com/wardrota/wardrota/internal/dateutil"
)

// session drives one nurse-week through the controller synchronously, the
// way the TUI does it with commands.
type session struct {
	store availability.Store
	ctrl  *availability.Controller
}

// openWeek loads nurseID's week named by week ("" means this week).
func (a *App) openWeek(ctx context.Context, nurseID, week string) (*session, error) {
	if nurseID == "" {
		return nil, availability.ErrNoSelection
	}
	monday, err := dateutil.ParseWeek(week, a.now())
	if err != nil {
		return nil, err
	}
	store, err := a.store()
	if err != nil {
		return nil, err
	}

	s := &session{
		store: store,
		ctrl: availability.NewController(
			availability.WithLogger(a.logger),
			availability.WithCodec(a.config.Codec()),
		),
	}

	req := s.ctrl.Select(nurseID, monday)
	records, err := req.Fetch(ctx, store)
	s.ctrl.ApplyFetch(req, records, err)
	if err := s.ctrl.FetchErr(); err != nil {
		return nil, err
	}
	return s, nil
}

// commit submits req and reports the save outcome.
func (s *session) commit(ctx context.Context, req availability.SaveRequest, err error) error {
	if err != nil {
		return err
	}
	if req.IsZero() {
		return nil
	}
	saveErr := req.Submit(ctx, s.store)
	if outcome := s.ctrl.ApplySaveResult(req, saveErr); outcome == availability.SaveRolledBack {
		return fmt.Errorf("changes rolled back: %w", saveErr)
	}
	return saveErr
}

func (s *session) weekStart() time.Time {
	key, _ := s.ctrl.Key()
	return key.WeekStart
}

// hourCells returns the cells of day covering [from, to). from is floored
// and to rounded up to whole hours; "24:00" ends the day.
func hourCells(day int, from, to string) ([]availability.Cell, error) {
	start, err := availability.ParseClock(from)
	if err != nil {
		return nil, fmt.Errorf("--from: %w", err)
	}
	end, err := availability.ParseClock(to)
	if err != nil {
		return nil, fmt.Errorf("--to: %w", err)
	}
	if start >= end {
		return nil, fmt.Errorf("%w: %s-%s", availability.ErrInvertedRange, from, to)
	}

	first := start / 60
	last := (end + 59) / 60
	cells := make([]availability.Cell, 0, last-first)
	for h := first; h < last; h++ {
		cells = append(cells, availability.Cell{Day: day, Hour: h})
	}
	return cells, nil
}
