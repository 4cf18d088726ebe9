package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/wardrota/wardrota/internal/availability"
)

var week = time.Date(2030, 1, 7, 0, 0, 0, 0, time.UTC)

func TestFetchWeek_PathAndHeaders(t *testing.T) {
	want := []availability.RangeRecord{
		{DayOfWeek: 1, StartTime: "07:00", EndTime: "10:00", IsAvailable: true,
			EffectiveFrom: "2030-01-07", EffectiveUntil: "2030-01-07"},
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("method = %s, want GET", r.Method)
		}
		if r.URL.Path != "/api/v1/nurses/n 1/availability" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("week_start"); got != "2030-01-07" {
			t.Errorf("week_start = %q, want 2030-01-07", got)
		}
		if got := r.Header.Get("X-API-Key"); got != "secret" {
			t.Errorf("X-API-Key = %q, want secret", got)
		}
		if _, err := uuid.Parse(r.Header.Get("X-Request-ID")); err != nil {
			t.Errorf("X-Request-ID is not a uuid: %v", err)
		}
		_ = json.NewEncoder(w).Encode(want)
	}))
	defer srv.Close()

	c := New(srv.URL+"/", WithAPIKey("secret"))
	got, err := c.FetchWeek(context.Background(), "n 1", week)
	if err != nil {
		t.Fatalf("FetchWeek failed: %v", err)
	}
	if len(got) != 1 || got[0] != want[0] {
		t.Errorf("FetchWeek = %+v, want %+v", got, want)
	}
}

func TestFetchWeek_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such nurse", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := New(srv.URL).FetchWeek(context.Background(), "ghost", week)
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want *StatusError", err)
	}
	if se.StatusCode != http.StatusNotFound || se.Body != "no such nurse" {
		t.Errorf("StatusError = %+v", se)
	}
}

func TestFetchWeek_BadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("{not json"))
	}))
	defer srv.Close()

	if _, err := New(srv.URL).FetchWeek(context.Background(), "n1", week); err == nil {
		t.Error("expected decode error")
	}
}

func TestReplaceWeek_SendsFullPayload(t *testing.T) {
	var received []availability.RangeRecord
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("method = %s, want PUT", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("decoding body: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	g := availability.NewGrid(week)
	g.Put(availability.Cell{Day: 0, Hour: 7}, availability.Available)
	records := availability.DefaultCodec().Encode(g)

	if err := New(srv.URL).ReplaceWeek(context.Background(), "n1", week, records); err != nil {
		t.Fatalf("ReplaceWeek failed: %v", err)
	}
	if len(received) != len(records) {
		t.Fatalf("server got %d records, want %d", len(received), len(records))
	}
	for i := range records {
		if received[i] != records[i] {
			t.Errorf("record %d = %+v, want %+v", i, received[i], records[i])
		}
	}
}

func TestReplaceWeek_EmptySendsArray(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var raw json.RawMessage
		_ = json.NewDecoder(r.Body).Decode(&raw)
		if string(raw) != "[]" {
			t.Errorf("body = %s, want []", raw)
		}
	}))
	defer srv.Close()

	if err := New(srv.URL).ReplaceWeek(context.Background(), "n1", week, nil); err != nil {
		t.Fatal(err)
	}
}

func TestReplaceWeek_ServerErrorSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := New(srv.URL).ReplaceWeek(context.Background(), "n1", week, nil)
	var se *StatusError
	if !errors.As(err, &se) || se.StatusCode != http.StatusInternalServerError {
		t.Errorf("err = %v, want 500 StatusError", err)
	}
}

func TestReplaceWeek_RateLimitHonoursContext(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	c := New(srv.URL, WithSaveRate(0.001, 1))
	if err := c.ReplaceWeek(context.Background(), "n1", week, nil); err != nil {
		t.Fatalf("first save should use the burst: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := c.ReplaceWeek(ctx, "n1", week, nil); err == nil {
		t.Error("second save should be throttled past the deadline")
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("server saw %d calls, want 1", got)
	}
}

func TestListNurses_CachedInRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Path != "/api/v1/nurses" {
			t.Errorf("path = %q", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode([]availability.Nurse{
			{WorkerID: "n1", DisplayName: "Ada"},
			{WorkerID: "n2", DisplayName: "Bea"},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, WithRedisCache(rdb, time.Minute))
	defer func() { _ = c.Close() }()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		nurses, err := c.ListNurses(ctx)
		if err != nil {
			t.Fatalf("ListNurses failed: %v", err)
		}
		if len(nurses) != 2 || nurses[1].DisplayName != "Bea" {
			t.Errorf("ListNurses = %+v", nurses)
		}
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("server saw %d calls, want 1", got)
	}
	if !mr.Exists(nursesCacheKey) {
		t.Error("directory should be cached")
	}

	mr.FastForward(2 * time.Minute)
	if _, err := c.ListNurses(ctx); err != nil {
		t.Fatal(err)
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("after expiry server saw %d calls, want 2", got)
	}

	if err := c.InvalidateNurses(ctx); err != nil {
		t.Fatal(err)
	}
	if mr.Exists(nursesCacheKey) {
		t.Error("invalidate should drop the cache entry")
	}
}

func TestListNurses_NoCache(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`[{"worker_id":"n1","display_name":"Ada"}]`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	for i := 0; i < 2; i++ {
		if _, err := c.ListNurses(context.Background()); err != nil {
			t.Fatal(err)
		}
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("server saw %d calls, want 2", got)
	}
}

func TestClientAsControllerStore(t *testing.T) {
	stored := map[string][]availability.RangeRecord{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.URL.Path + "?" + r.URL.RawQuery
		switch r.Method {
		case http.MethodGet:
			_ = json.NewEncoder(w).Encode(stored[key])
		case http.MethodPut:
			var recs []availability.RangeRecord
			_ = json.NewDecoder(r.Body).Decode(&recs)
			stored[key] = recs
		}
	}))
	defer srv.Close()

	ctx := context.Background()
	client := New(srv.URL)
	ctl := availability.NewController()

	req := ctl.Select("n1", week)
	records, err := req.Fetch(ctx, client)
	ctl.ApplyFetch(req, records, err)

	save, err := ctl.ApplyEdit([]availability.Cell{{Day: 1, Hour: 8}, {Day: 1, Hour: 9}}, availability.SetTo(availability.Preferred))
	if err != nil {
		t.Fatal(err)
	}
	if got := ctl.ApplySaveResult(save, save.Submit(ctx, client)); got != availability.SaveConfirmed {
		t.Fatalf("outcome = %v, want confirmed", got)
	}

	other := availability.NewController()
	req = other.Select("n1", week)
	records, err = req.Fetch(ctx, client)
	other.ApplyFetch(req, records, err)
	if !other.Grid().Equal(ctl.Grid()) {
		t.Errorf("reloaded grid differs:\n%s", other.Grid().Print())
	}
}
