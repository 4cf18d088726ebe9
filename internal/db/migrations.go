package db

import "fmt"

// migrate runs database migrations.
func (s *SQLite) migrate() error {
	query := `
		CREATE TABLE IF NOT EXISTS nurses (
			worker_id    TEXT PRIMARY KEY,
			display_name TEXT NOT NULL,
			created_at   DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS availability (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			nurse_id        TEXT NOT NULL REFERENCES nurses(worker_id),
			week_start      DATE NOT NULL,
			position        INTEGER NOT NULL,
			day_of_week     INTEGER NOT NULL,
			start_time      TEXT NOT NULL,
			end_time        TEXT NOT NULL,
			is_available    INTEGER NOT NULL DEFAULT 0,
			is_preferred    INTEGER NOT NULL DEFAULT 0,
			effective_from  DATE,
			effective_until DATE
		);

		CREATE INDEX IF NOT EXISTS idx_availability_week ON availability(nurse_id, week_start);
	`

	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("creating availability tables: %w", err)
	}

	return nil
}
