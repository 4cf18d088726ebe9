package availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Controller errors.
var (
	ErrNoSelection = errors.New("no nurse selected")
	ErrNotReady    = errors.New("week is not loaded")
	ErrInvalidCell = errors.New("cell outside the week grid")
)

// Key identifies the nurse and week being edited.
type Key struct {
	NurseID   string
	WeekStart time.Time
}

// Equal reports whether two keys select the same nurse and week.
func (k Key) Equal(o Key) bool {
	return k.NurseID == o.NurseID && k.WeekStart.Equal(o.WeekStart)
}

func (k Key) String() string {
	return k.NurseID + "@" + k.WeekStart.Format(DateLayout)
}

// FetchRequest is a pending read of one nurse-week.
type FetchRequest struct {
	Key   Key
	Epoch uint64 // selection generation the request belongs to
	Seq   uint64
}

// Fetch performs the read against store.
func (r FetchRequest) Fetch(ctx context.Context, store Store) ([]RangeRecord, error) {
	records, err := store.FetchWeek(ctx, r.Key.NurseID, r.Key.WeekStart)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", r.Key, err)
	}
	return records, nil
}

// SaveRequest is a pending full-week replace. Records are encoded when the
// request is created, so later edits never leak into it. The zero value
// means there is nothing to send yet.
type SaveRequest struct {
	Key     Key
	Epoch   uint64
	Seq     uint64
	Reason  string
	Records []RangeRecord
}

// IsZero reports whether the request is empty.
func (r SaveRequest) IsZero() bool {
	return r.Seq == 0
}

// Submit performs the write against store.
func (r SaveRequest) Submit(ctx context.Context, store Store) error {
	if err := store.ReplaceWeek(ctx, r.Key.NurseID, r.Key.WeekStart, r.Records); err != nil {
		return fmt.Errorf("saving %s: %w", r.Key, err)
	}
	return nil
}

// SaveOutcome tells the caller what ApplySaveResult did.
type SaveOutcome int

const (
	// SaveConfirmed means the server now holds the request's payload.
	SaveConfirmed SaveOutcome = iota
	// SaveRolledBack means the save failed with no later edits held, and the
	// grid was restored to the last confirmed state.
	SaveRolledBack
	// SaveSuperseded means the save failed while later edits were held. The
	// next save carries the whole grid, so nothing is rolled back.
	SaveSuperseded
	// SaveStale means the result belongs to a previous selection.
	SaveStale
)

func (o SaveOutcome) String() string {
	switch o {
	case SaveConfirmed:
		return "confirmed"
	case SaveRolledBack:
		return "rolled_back"
	case SaveSuperseded:
		return "superseded"
	case SaveStale:
		return "stale"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithLogger sets the logger used for warnings about skipped records and
// failed round trips.
func WithLogger(l zerolog.Logger) ControllerOption {
	return func(c *Controller) {
		c.logger = l
	}
}

// WithCodec overrides the default codec.
func WithCodec(codec Codec) ControllerOption {
	return func(c *Controller) {
		c.codec = codec
	}
}

// Controller owns the availability grid of the selected nurse-week. Edits are
// applied optimistically and yield a SaveRequest; results of the round trips
// are fed back through ApplyFetch and ApplySaveResult.
//
// At most one save is in flight per selection, so the server always applies
// saves in the order the edits were made. Edits made while a save is in
// flight are held, and NextSave hands them out as a single save once the
// previous one has resolved.
//
// A Controller is not safe for concurrent use. It is meant to be driven from
// a single event loop that also receives the round-trip results.
type Controller struct {
	codec  Codec
	logger zerolog.Logger

	key      Key
	selected bool
	epoch    uint64

	// Working state shown to the user, including unconfirmed edits.
	grid *Grid

	// Last state the server acknowledged (or returned on fetch).
	confirmed *Grid

	// The save in flight (0 when none) and its grid payload.
	inFlight     uint64
	inFlightGrid *Grid
	held         bool
	heldReason   string

	seq      uint64
	fetchSeq uint64
	loading  bool
	fetchErr error
	saveErr  error
}

// NewController creates a controller with no selection.
func NewController(opts ...ControllerOption) *Controller {
	c := &Controller{
		codec:  DefaultCodec(),
		logger: zerolog.Nop(),
		grid:   NewGrid(time.Now()),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Codec returns the codec used for saves and loads.
func (c *Controller) Codec() Codec {
	return c.codec
}

// Key returns the current selection. ok is false before the first Select.
func (c *Controller) Key() (key Key, ok bool) {
	return c.key, c.selected
}

// Loading reports whether a fetch for the current selection is in flight.
func (c *Controller) Loading() bool {
	return c.loading
}

// FetchErr returns the error of the last fetch, if it failed.
func (c *Controller) FetchErr() error {
	return c.fetchErr
}

// SaveErr returns the error of the last failed save, cleared by the next
// successful one.
func (c *Controller) SaveErr() error {
	return c.saveErr
}

// Pending returns the number of saves not yet resolved: the one in flight
// and the held one, if any.
func (c *Controller) Pending() int {
	n := 0
	if c.inFlight != 0 {
		n++
	}
	if c.held {
		n++
	}
	return n
}

// Dirty reports whether the grid holds edits the server has not confirmed.
func (c *Controller) Dirty() bool {
	if c.confirmed == nil {
		return false
	}
	return !c.grid.Equal(c.confirmed)
}

// Status returns the status of a cell of the working grid.
func (c *Controller) Status(cell Cell) Status {
	return c.grid.At(cell)
}

// Grid returns a copy of the working grid.
func (c *Controller) Grid() *Grid {
	return c.grid.Clone()
}

// Payload encodes the working grid as it would be saved.
func (c *Controller) Payload() []RangeRecord {
	return c.codec.Encode(c.grid)
}

// Select discards the current grid and starts loading nurseID's week
// containing date. Until ApplyFetch delivers the records the grid is empty.
func (c *Controller) Select(nurseID string, date time.Time) FetchRequest {
	c.key = Key{NurseID: nurseID, WeekStart: WeekStart(date)}
	c.selected = true
	c.epoch++

	c.grid = NewGrid(c.key.WeekStart)
	c.confirmed = nil
	c.inFlight = 0
	c.inFlightGrid = nil
	c.held = false
	c.heldReason = ""
	c.fetchErr = nil
	c.saveErr = nil

	return c.newFetch()
}

// SelectNurse switches nurse, keeping the displayed week.
func (c *Controller) SelectNurse(nurseID string) FetchRequest {
	week := c.grid.WeekStart()
	if c.selected {
		week = c.key.WeekStart
	}
	return c.Select(nurseID, week)
}

// SelectWeek switches to the week containing date, keeping the nurse.
func (c *Controller) SelectWeek(date time.Time) (FetchRequest, error) {
	if !c.selected {
		return FetchRequest{}, ErrNoSelection
	}
	return c.Select(c.key.NurseID, date), nil
}

// Reload refetches the current selection, discarding unconfirmed edits.
func (c *Controller) Reload() (FetchRequest, error) {
	if !c.selected {
		return FetchRequest{}, ErrNoSelection
	}
	return c.Select(c.key.NurseID, c.key.WeekStart), nil
}

func (c *Controller) newFetch() FetchRequest {
	c.seq++
	c.fetchSeq = c.seq
	c.loading = true
	return FetchRequest{Key: c.key, Epoch: c.epoch, Seq: c.seq}
}

// current reports whether a request belongs to the live selection.
func (c *Controller) current(key Key, epoch uint64) bool {
	return c.selected && epoch == c.epoch && key.Equal(c.key)
}

// ApplyFetch installs the result of a fetch. It returns false, and changes
// nothing, when the request is stale. On error the grid stays empty and
// FetchErr reports the failure; there is no automatic retry.
func (c *Controller) ApplyFetch(req FetchRequest, records []RangeRecord, err error) bool {
	if !c.current(req.Key, req.Epoch) || req.Seq != c.fetchSeq {
		c.logger.Debug().Str("key", req.Key.String()).Uint64("seq", req.Seq).Msg("ignoring stale fetch")
		return false
	}

	c.loading = false
	if err != nil {
		c.fetchErr = err
		c.grid = NewGrid(c.key.WeekStart)
		c.logger.Error().Err(err).Str("key", c.key.String()).Msg("fetch failed")
		return true
	}

	grid, skipped := c.codec.Decode(c.key.WeekStart, records)
	for _, s := range skipped {
		c.logger.Warn().
			Str("key", c.key.String()).
			Int("index", s.Index).
			Int("day_of_week", s.Record.DayOfWeek).
			Str("start_time", s.Record.StartTime).
			Str("end_time", s.Record.EndTime).
			Err(s.Reason).
			Msg("skipping malformed availability record")
	}

	c.fetchErr = nil
	c.grid = grid
	c.confirmed = grid.Clone()
	c.logger.Debug().Str("key", c.key.String()).Int("records", len(records)).Msg("week loaded")
	return true
}

func (c *Controller) ready() error {
	if !c.selected {
		return ErrNoSelection
	}
	if c.loading || c.fetchErr != nil || c.confirmed == nil {
		return ErrNotReady
	}
	return nil
}

// ApplyEdit applies edit to cells and returns the save carrying the result,
// or a zero request when the edit is held behind a save in flight.
// No cell is changed if any of them is outside the grid.
func (c *Controller) ApplyEdit(cells []Cell, edit Edit) (SaveRequest, error) {
	if err := c.ready(); err != nil {
		return SaveRequest{}, err
	}
	if !edit.Cycle && !edit.Status.Valid() {
		return SaveRequest{}, fmt.Errorf("%w: %d", ErrUnknownStatus, int(edit.Status))
	}
	for _, cell := range cells {
		if !cell.Valid() {
			return SaveRequest{}, fmt.Errorf("%w: day %d hour %d", ErrInvalidCell, cell.Day, cell.Hour)
		}
	}

	for _, cell := range cells {
		c.grid.Put(cell, edit.apply(c.grid.At(cell)))
	}
	return c.newSave(fmt.Sprintf("%s on %d cell(s)", edit, len(cells))), nil
}

// Apply applies an interaction intent.
func (c *Controller) Apply(intent Intent) (SaveRequest, error) {
	return c.ApplyEdit(intent.Cells, intent.Edit)
}

// ApplyToWeek sets every hour of the week to s and saves once.
func (c *Controller) ApplyToWeek(s Status) (SaveRequest, error) {
	if err := c.ready(); err != nil {
		return SaveRequest{}, err
	}
	if !s.Valid() {
		return SaveRequest{}, fmt.Errorf("%w: %d", ErrUnknownStatus, int(s))
	}
	for d := 0; d < DaysPerWeek; d++ {
		for h := 0; h < HoursPerDay; h++ {
			c.grid.Put(Cell{Day: d, Hour: h}, s)
		}
	}
	return c.newSave("apply " + s.String() + " to week"), nil
}

// ClearWeek unsets every hour of the week and saves once.
func (c *Controller) ClearWeek() (SaveRequest, error) {
	if err := c.ready(); err != nil {
		return SaveRequest{}, err
	}
	c.grid.Clear()
	return c.newSave("clear week"), nil
}

// Save submits the working grid as it is.
func (c *Controller) Save() (SaveRequest, error) {
	if err := c.ready(); err != nil {
		return SaveRequest{}, err
	}
	return c.newSave("save"), nil
}

func (c *Controller) newSave(reason string) SaveRequest {
	if c.inFlight != 0 {
		c.held = true
		c.heldReason = reason
		c.logger.Debug().Str("key", c.key.String()).Uint64("in_flight", c.inFlight).Str("reason", reason).Msg("save held")
		return SaveRequest{}
	}
	return c.send(reason)
}

func (c *Controller) send(reason string) SaveRequest {
	c.seq++
	c.inFlight = c.seq
	c.inFlightGrid = c.grid.Clone()
	c.held = false
	c.heldReason = ""
	return SaveRequest{
		Key:     c.key,
		Epoch:   c.epoch,
		Seq:     c.seq,
		Reason:  reason,
		Records: c.codec.Encode(c.grid),
	}
}

// NextSave returns the save carrying the held edits once the previous save
// has resolved. ok is false when nothing is held or a save is still in flight.
func (c *Controller) NextSave() (req SaveRequest, ok bool) {
	if !c.held || c.inFlight != 0 {
		return SaveRequest{}, false
	}
	return c.send(c.heldReason), true
}

// ApplySaveResult records the outcome of the save in flight. Callers then
// send whatever NextSave returns.
func (c *Controller) ApplySaveResult(req SaveRequest, err error) SaveOutcome {
	if !c.current(req.Key, req.Epoch) || req.IsZero() || req.Seq != c.inFlight {
		c.logger.Debug().Str("key", req.Key.String()).Uint64("seq", req.Seq).Msg("ignoring stale save result")
		return SaveStale
	}

	payload := c.inFlightGrid
	c.inFlight = 0
	c.inFlightGrid = nil

	if err == nil {
		c.confirmed = payload
		c.saveErr = nil
		c.logger.Debug().Str("key", c.key.String()).Uint64("seq", req.Seq).Str("reason", req.Reason).Msg("save confirmed")
		return SaveConfirmed
	}

	c.saveErr = err
	if c.held {
		c.logger.Warn().Err(err).Str("key", c.key.String()).Uint64("seq", req.Seq).Msg("save failed, held edits resend the week")
		return SaveSuperseded
	}

	c.grid = c.confirmed.Clone()
	c.logger.Error().Err(err).Str("key", c.key.String()).Str("reason", req.Reason).Msg("save failed, rolled back")
	return SaveRolledBack
}
