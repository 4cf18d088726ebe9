// Package db provides SQLite storage implementation.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/wardrota/wardrota/internal/availability"
)

// ErrNurseNotFound is returned when an operation names an unknown worker id.
var ErrNurseNotFound = errors.New("nurse not found")

// SQLite implements availability.Backend using SQLite.
type SQLite struct {
	db *sql.DB
}

var _ availability.Backend = (*SQLite)(nil)

// New creates a new SQLite repository and runs migrations.
func New(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	// TUI fetches and saves run in their own goroutines; one connection
	// keeps SQLite from reporting busy errors.
	db.SetMaxOpenConns(1)

	s := &SQLite{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close releases database resources.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// UpsertNurse adds a nurse or renames an existing one.
func (s *SQLite) UpsertNurse(ctx context.Context, n availability.Nurse) error {
	n.WorkerID = strings.TrimSpace(n.WorkerID)
	n.DisplayName = strings.TrimSpace(n.DisplayName)
	if n.WorkerID == "" {
		return errors.New("worker id is required")
	}
	if n.DisplayName == "" {
		n.DisplayName = n.WorkerID
	}

	query := `
		INSERT INTO nurses (worker_id, display_name) VALUES (?, ?)
		ON CONFLICT(worker_id) DO UPDATE SET display_name = excluded.display_name
	`
	if _, err := s.db.ExecContext(ctx, query, n.WorkerID, n.DisplayName); err != nil {
		return fmt.Errorf("upserting nurse: %w", err)
	}
	return nil
}

// GetNurse retrieves a nurse by worker id. Returns nil if there is none.
func (s *SQLite) GetNurse(ctx context.Context, workerID string) (*availability.Nurse, error) {
	var n availability.Nurse
	err := s.db.QueryRowContext(ctx,
		`SELECT worker_id, display_name FROM nurses WHERE worker_id = ?`, workerID,
	).Scan(&n.WorkerID, &n.DisplayName)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying nurse: %w", err)
	}
	return &n, nil
}

// ListNurses returns every nurse ordered by display name.
func (s *SQLite) ListNurses(ctx context.Context) ([]availability.Nurse, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT worker_id, display_name FROM nurses ORDER BY display_name, worker_id`)
	if err != nil {
		return nil, fmt.Errorf("querying nurses: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var nurses []availability.Nurse
	for rows.Next() {
		var n availability.Nurse
		if err := rows.Scan(&n.WorkerID, &n.DisplayName); err != nil {
			return nil, fmt.Errorf("scanning nurse: %w", err)
		}
		nurses = append(nurses, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating nurses: %w", err)
	}
	return nurses, nil
}

// FetchWeek returns the records stored for a nurse-week in the order they
// were written.
func (s *SQLite) FetchWeek(ctx context.Context, nurseID string, weekStart time.Time) ([]availability.RangeRecord, error) {
	if err := s.requireNurse(ctx, s.db, nurseID); err != nil {
		return nil, err
	}

	query := `
		SELECT day_of_week, start_time, end_time, is_available, is_preferred,
		       effective_from, effective_until
		FROM availability
		WHERE nurse_id = ? AND week_start = ?
		ORDER BY position
	`
	rows, err := s.db.QueryContext(ctx, query, nurseID, weekKey(weekStart))
	if err != nil {
		return nil, fmt.Errorf("querying availability: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []availability.RangeRecord
	for rows.Next() {
		var (
			r         availability.RangeRecord
			from      sql.NullString
			until     sql.NullString
			avail     int
			preferred int
		)
		if err := rows.Scan(&r.DayOfWeek, &r.StartTime, &r.EndTime, &avail, &preferred, &from, &until); err != nil {
			return nil, fmt.Errorf("scanning availability: %w", err)
		}
		r.IsAvailable = avail != 0
		r.IsPreferred = preferred != 0
		r.EffectiveFrom = dateOnly(from)
		r.EffectiveUntil = dateOnly(until)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating availability: %w", err)
	}

	return records, nil
}

// ReplaceWeek deletes every record of the nurse-week and inserts records in
// one transaction. Either all of them are stored or none are.
func (s *SQLite) ReplaceWeek(ctx context.Context, nurseID string, weekStart time.Time, records []availability.RangeRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.requireNurse(ctx, tx, nurseID); err != nil {
		return err
	}

	week := weekKey(weekStart)
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM availability WHERE nurse_id = ? AND week_start = ?`, nurseID, week,
	); err != nil {
		return fmt.Errorf("deleting availability: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO availability (
			nurse_id, week_start, position, day_of_week, start_time, end_time,
			is_available, is_preferred, effective_from, effective_until
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, r := range records {
		if _, err := stmt.ExecContext(ctx,
			nurseID, week, i, r.DayOfWeek, r.StartTime, r.EndTime,
			boolInt(r.IsAvailable), boolInt(r.IsPreferred),
			nullString(r.EffectiveFrom), nullString(r.EffectiveUntil),
		); err != nil {
			return fmt.Errorf("inserting record %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *SQLite) requireNurse(ctx context.Context, q queryer, nurseID string) error {
	var exists int
	err := q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM nurses WHERE worker_id = ?`, nurseID,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("checking nurse: %w", err)
	}
	if exists == 0 {
		return fmt.Errorf("%w: %s", ErrNurseNotFound, nurseID)
	}
	return nil
}

// weekKey normalises a week start to the stored date string. The calendar
// date is taken as is, in the time's own location.
func weekKey(weekStart time.Time) string {
	return weekStart.Format(availability.DateLayout)
}

// dateOnly returns the YYYY-MM-DD prefix of a stored date, or "" for NULL.
func dateOnly(ns sql.NullString) string {
	if !ns.Valid {
		return ""
	}
	if len(ns.String) >= 10 {
		return ns.String[:10]
	}
	return ns.String
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
