package integration

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/wardrota/wardrota/internal/availability"
	"github.com/wardrota/wardrota/internal/db"
)

// openRepo creates a fresh repository for each test with automatic cleanup.
func openRepo(t *testing.T) *db.SQLite {
	t.Helper()
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")
	repo, err := db.New(dbPath)
	if err != nil {
		t.Fatalf("failed to open repo: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

// mustParseDate parses a date string or fails the test.
func mustParseDate(t *testing.T, s string) time.Time {
	t.Helper()
	date, err := time.ParseInLocation("2006-01-02", s, time.Local)
	if err != nil {
		t.Fatalf("failed to parse date %q: %v", s, err)
	}
	return date
}

// addNurse is a helper to register a nurse.
func addNurse(t *testing.T, repo *db.SQLite, id, name string) {
	t.Helper()
	if err := repo.UpsertNurse(context.Background(), availability.Nurse{WorkerID: id, DisplayName: name}); err != nil {
		t.Fatalf("failed to add nurse: %v", err)
	}
}

// load selects nurseID's week and runs the fetch to completion.
func load(t *testing.T, c *availability.Controller, store availability.Store, nurseID string, date time.Time) {
	t.Helper()
	req := c.Select(nurseID, date)
	records, err := req.Fetch(context.Background(), store)
	if !c.ApplyFetch(req, records, err) {
		t.Fatal("fetch was unexpectedly stale")
	}
	if err := c.FetchErr(); err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
}

// save submits req and applies the result.
func save(t *testing.T, c *availability.Controller, store availability.Store, req availability.SaveRequest, err error) availability.SaveOutcome {
	t.Helper()
	if err != nil {
		t.Fatalf("edit rejected: %v", err)
	}
	return c.ApplySaveResult(req, req.Submit(context.Background(), store))
}

func newController(codec availability.Codec) *availability.Controller {
	return availability.NewController(availability.WithCodec(codec))
}

func TestEditSaveReload(t *testing.T) {
	repo := openRepo(t)
	addNurse(t, repo, "n1", "Ada")
	monday := mustParseDate(t, "2030-01-07")

	c := newController(availability.DefaultCodec())
	load(t, c, repo, "n1", monday.AddDate(0, 0, 3))

	morning := []availability.Cell{{Day: 0, Hour: 6}, {Day: 0, Hour: 7}, {Day: 0, Hour: 8}}
	req, err := c.ApplyEdit(morning, availability.SetTo(availability.Available))
	if got := save(t, c, repo, req, err); got != availability.SaveConfirmed {
		t.Fatalf("outcome = %v, want confirmed", got)
	}

	req, err = c.ApplyEdit([]availability.Cell{{Day: 6, Hour: 23}}, availability.CycleEdit())
	if got := save(t, c, repo, req, err); got != availability.SaveConfirmed {
		t.Fatalf("outcome = %v, want confirmed", got)
	}

	// A second operator opening the same week sees both edits.
	other := newController(availability.DefaultCodec())
	load(t, other, repo, "n1", monday)
	if !other.Grid().Equal(c.Grid()) {
		t.Fatalf("reloaded grid differs:\n%s\nwant:\n%s", other.Grid().Print(), c.Grid().Print())
	}
	if got := other.Status(availability.Cell{Day: 6, Hour: 23}); got != availability.Unavailable {
		t.Errorf("sunday 23:00 = %v, want unavailable", got)
	}
}

func TestWeeksAndNursesAreIsolated(t *testing.T) {
	repo := openRepo(t)
	addNurse(t, repo, "n1", "Ada")
	addNurse(t, repo, "n2", "Bo")
	monday := mustParseDate(t, "2030-01-07")

	c := newController(availability.DefaultCodec())
	load(t, c, repo, "n1", monday)
	req, err := c.ApplyToWeek(availability.Preferred)
	save(t, c, repo, req, err)

	for _, tc := range []struct {
		name  string
		nurse string
		date  time.Time
	}{
		{"next week", "n1", monday.AddDate(0, 0, 7)},
		{"previous week", "n1", monday.AddDate(0, 0, -1)},
		{"other nurse", "n2", monday},
	} {
		t.Run(tc.name, func(t *testing.T) {
			load(t, c, repo, tc.nurse, tc.date)
			if !c.Grid().IsEmpty() {
				t.Fatalf("expected empty grid, got:\n%s", c.Grid().Print())
			}
		})
	}

	load(t, c, repo, "n1", monday.AddDate(0, 0, 6))
	if got := c.Grid().Count(availability.Preferred); got != 7*24 {
		t.Fatalf("preferred hours = %d, want 168", got)
	}
}

// failingStore fails the next n saves and passes everything else through.
type failingStore struct {
	availability.Store
	failures int
}

var errDiskFull = errors.New("disk full")

func (s *failingStore) ReplaceWeek(ctx context.Context, nurseID string, weekStart time.Time, records []availability.RangeRecord) error {
	if s.failures > 0 {
		s.failures--
		return errDiskFull
	}
	return s.Store.ReplaceWeek(ctx, nurseID, weekStart, records)
}

func TestFailedSaveRollsBackToStoredWeek(t *testing.T) {
	repo := openRepo(t)
	addNurse(t, repo, "n1", "Ada")
	monday := mustParseDate(t, "2030-01-07")
	store := &failingStore{Store: repo}

	c := newController(availability.DefaultCodec())
	load(t, c, store, "n1", monday)
	req, err := c.ApplyEdit([]availability.Cell{{Day: 2, Hour: 9}}, availability.SetTo(availability.Available))
	save(t, c, store, req, err)
	confirmed := c.Grid().Clone()

	store.failures = 1
	req, err = c.ClearWeek()
	if got := save(t, c, store, req, err); got != availability.SaveRolledBack {
		t.Fatalf("outcome = %v, want rolled back", got)
	}
	if !errors.Is(c.SaveErr(), errDiskFull) {
		t.Fatalf("SaveErr = %v", c.SaveErr())
	}
	if !c.Grid().Equal(confirmed) {
		t.Fatalf("grid not rolled back:\n%s", c.Grid().Print())
	}

	// The stored week still matches what the controller shows.
	fresh := newController(availability.DefaultCodec())
	load(t, fresh, repo, "n1", monday)
	if !fresh.Grid().Equal(confirmed) {
		t.Fatalf("stored week changed:\n%s", fresh.Grid().Print())
	}
}

// recordingStore notes the payload of every write it passes through.
type recordingStore struct {
	availability.Store
	writes [][]availability.RangeRecord
}

func (s *recordingStore) ReplaceWeek(ctx context.Context, nurseID string, weekStart time.Time, records []availability.RangeRecord) error {
	s.writes = append(s.writes, records)
	return s.Store.ReplaceWeek(ctx, nurseID, weekStart, records)
}

func TestQuickEditsReachStoreInOrder(t *testing.T) {
	repo := openRepo(t)
	addNurse(t, repo, "n1", "Ada")
	monday := mustParseDate(t, "2030-01-07")
	store := &recordingStore{Store: repo}
	ctx := context.Background()

	c := newController(availability.DefaultCodec())
	load(t, c, store, "n1", monday)

	first, err := c.ApplyEdit([]availability.Cell{{Day: 1, Hour: 10}}, availability.SetTo(availability.Available))
	if err != nil {
		t.Fatal(err)
	}
	// Edits made while the first save is out are held, not raced.
	for _, edit := range []struct {
		hour   int
		status availability.Status
	}{{10, availability.Preferred}, {11, availability.Preferred}, {10, availability.Available}} {
		req, err := c.ApplyEdit([]availability.Cell{{Day: 1, Hour: edit.hour}}, availability.SetTo(edit.status))
		if err != nil {
			t.Fatal(err)
		}
		if !req.IsZero() {
			t.Fatalf("edit at %d:00 was sent while a save was in flight", edit.hour)
		}
	}

	c.ApplySaveResult(first, first.Submit(ctx, store))
	next, ok := c.NextSave()
	if !ok {
		t.Fatal("held edits were not handed out")
	}
	if got := c.ApplySaveResult(next, next.Submit(ctx, store)); got != availability.SaveConfirmed {
		t.Fatalf("outcome = %v, want confirmed", got)
	}

	if c.Dirty() || c.Pending() != 0 {
		t.Fatalf("dirty=%v pending=%d after both saves", c.Dirty(), c.Pending())
	}
	if len(store.writes) != 2 {
		t.Fatalf("store saw %d writes, want 2", len(store.writes))
	}
	fresh := newController(availability.DefaultCodec())
	load(t, fresh, repo, "n1", monday)
	if got := fresh.Grid().PrintDay(1); got != "----------AP------------" {
		t.Fatalf("stored tuesday = %s", got)
	}
	if !fresh.Grid().Equal(c.Grid()) {
		t.Fatal("stored week differs from the editor")
	}
}

func TestBoundingEncodingFillsGapsOnReload(t *testing.T) {
	repo := openRepo(t)
	addNurse(t, repo, "n1", "Ada")
	monday := mustParseDate(t, "2030-01-07")
	codec := availability.Codec{Mode: availability.ModeBounding, EmptyDayMarker: true}

	c := newController(codec)
	load(t, c, repo, "n1", monday)
	split := []availability.Cell{{Day: 4, Hour: 8}, {Day: 4, Hour: 9}, {Day: 4, Hour: 14}}
	req, err := c.ApplyEdit(split, availability.SetTo(availability.Available))
	save(t, c, repo, req, err)

	// 08:00-15:00 is written as one record.
	records, err := repo.FetchWeek(context.Background(), "n1", monday)
	if err != nil {
		t.Fatal(err)
	}
	var friday []availability.RangeRecord
	for _, r := range records {
		if r.DayOfWeek == int(time.Friday) {
			friday = append(friday, r)
		}
	}
	if len(friday) != 1 || friday[0].StartTime != "08:00" || friday[0].EndTime != "15:00" {
		t.Fatalf("friday records = %+v", friday)
	}

	fresh := newController(codec)
	load(t, fresh, repo, "n1", monday)
	if got := fresh.Grid().PrintDay(4); got != "--------AAAAAAA---------" {
		t.Fatalf("reloaded friday = %s", got)
	}
}

func TestEmptyDayMarkersRoundTrip(t *testing.T) {
	repo := openRepo(t)
	addNurse(t, repo, "n1", "Ada")
	monday := mustParseDate(t, "2030-01-07")

	c := newController(availability.DefaultCodec())
	load(t, c, repo, "n1", monday)
	req, err := c.ClearWeek()
	save(t, c, repo, req, err)

	records, err := repo.FetchWeek(context.Background(), "n1", monday)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != availability.DaysPerWeek {
		t.Fatalf("expected one marker per day, got %d records", len(records))
	}
	for _, r := range records {
		if !r.IsSentinel() {
			t.Errorf("expected marker, got %+v", r)
		}
	}

	fresh := newController(availability.DefaultCodec())
	load(t, fresh, repo, "n1", monday)
	if !fresh.Grid().IsEmpty() {
		t.Fatal("markers must decode to an empty week")
	}
}
