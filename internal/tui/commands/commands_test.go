package commands

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/wardrota/wardrota/internal/availability"
)

type fakeBackend struct {
	nurses    []availability.Nurse
	records   []availability.RangeRecord
	err       error
	saved     []availability.RangeRecord
	savedWeek time.Time
}

func (f *fakeBackend) ListNurses(ctx context.Context) ([]availability.Nurse, error) {
	return f.nurses, f.err
}

func (f *fakeBackend) FetchWeek(ctx context.Context, nurseID string, weekStart time.Time) ([]availability.RangeRecord, error) {
	return f.records, f.err
}

func (f *fakeBackend) ReplaceWeek(ctx context.Context, nurseID string, weekStart time.Time, records []availability.RangeRecord) error {
	if f.err != nil {
		return f.err
	}
	f.saved = records
	f.savedWeek = weekStart
	return nil
}

var monday = time.Date(2030, 1, 7, 0, 0, 0, 0, time.UTC)

func TestLoadNurses(t *testing.T) {
	backend := &fakeBackend{nurses: []availability.Nurse{{WorkerID: "n1", DisplayName: "Ada"}}}
	msg := LoadNurses(backend)()

	loaded, ok := msg.(NursesLoadedMsg)
	if !ok {
		t.Fatalf("expected NursesLoadedMsg, got %T", msg)
	}
	if len(loaded.Nurses) != 1 || loaded.Nurses[0].WorkerID != "n1" {
		t.Fatalf("unexpected nurses: %+v", loaded.Nurses)
	}
}

func TestLoadNurses_Error(t *testing.T) {
	boom := errors.New("boom")
	msg := LoadNurses(&fakeBackend{err: boom})()

	errMsg, ok := msg.(ErrMsg)
	if !ok {
		t.Fatalf("expected ErrMsg, got %T", msg)
	}
	if !errors.Is(errMsg.Err, boom) {
		t.Fatalf("expected wrapped boom, got %v", errMsg.Err)
	}
}

func TestFetchWeek_CarriesRequest(t *testing.T) {
	records := []availability.RangeRecord{availability.NewRecord(monday, 7, 10, availability.Available)}
	req := availability.FetchRequest{Key: availability.Key{NurseID: "n1", WeekStart: monday}, Epoch: 2, Seq: 5}

	msg := FetchWeek(&fakeBackend{records: records}, req)()
	fetched, ok := msg.(WeekFetchedMsg)
	if !ok {
		t.Fatalf("expected WeekFetchedMsg, got %T", msg)
	}
	if fetched.Req != req {
		t.Fatalf("request = %+v, want %+v", fetched.Req, req)
	}
	if fetched.Err != nil || len(fetched.Records) != 1 {
		t.Fatalf("unexpected result: %+v", fetched)
	}
}

func TestFetchWeek_ErrorInMessage(t *testing.T) {
	boom := errors.New("offline")
	req := availability.FetchRequest{Key: availability.Key{NurseID: "n1", WeekStart: monday}}

	fetched := FetchWeek(&fakeBackend{err: boom}, req)().(WeekFetchedMsg)
	if !errors.Is(fetched.Err, boom) {
		t.Fatalf("expected offline error, got %v", fetched.Err)
	}
}

func TestSaveWeek(t *testing.T) {
	backend := &fakeBackend{}
	req := availability.SaveRequest{
		Key:     availability.Key{NurseID: "n1", WeekStart: monday},
		Seq:     3,
		Records: []availability.RangeRecord{availability.NewRecord(monday, 0, 1, availability.Preferred)},
	}

	saved := SaveWeek(backend, req)().(WeekSavedMsg)
	if saved.Err != nil {
		t.Fatalf("unexpected error: %v", saved.Err)
	}
	if saved.Req.Seq != 3 {
		t.Fatalf("seq = %d, want 3", saved.Req.Seq)
	}
	if len(backend.saved) != 1 || !backend.savedWeek.Equal(monday) {
		t.Fatalf("backend not written: %+v", backend.saved)
	}
}

func TestStatus(t *testing.T) {
	msg := Status("copied")()
	if got, ok := msg.(StatusMsgCmd); !ok || got.Msg != "copied" {
		t.Fatalf("unexpected msg %#v", msg)
	}
}
