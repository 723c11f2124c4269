package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate applies the schema. Every statement is safe to re-run.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// ALTER TABLE ADD COLUMN has no IF NOT EXISTS form.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS snapshots (
		id           TEXT PRIMARY KEY,
		slug         TEXT NOT NULL,
		label        TEXT NOT NULL DEFAULT '',
		filters_json TEXT NOT NULL DEFAULT '[]',
		date_start   TEXT,
		date_end     TEXT,
		record_count INTEGER NOT NULL DEFAULT 0,
		created_at   TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_snapshots_slug ON snapshots(slug)`,
	`CREATE INDEX IF NOT EXISTS idx_snapshots_created ON snapshots(created_at)`,

	`CREATE TABLE IF NOT EXISTS snapshot_cases (
		snapshot_id          TEXT NOT NULL REFERENCES snapshots(id) ON DELETE CASCADE,
		seq                  INTEGER NOT NULL,
		title                TEXT NOT NULL DEFAULT '',
		client_name          TEXT NOT NULL DEFAULT '',
		sponsor_name         TEXT NOT NULL DEFAULT '',
		account_manager_name TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (snapshot_id, seq)
	)`,

	`CREATE TABLE IF NOT EXISTS snapshot_worker_hours (
		snapshot_id      TEXT NOT NULL,
		case_seq         INTEGER NOT NULL,
		seq              INTEGER NOT NULL,
		worker_name      TEXT NOT NULL DEFAULT '',
		consulting_hours REAL NOT NULL DEFAULT 0,
		hands_on_hours   REAL NOT NULL DEFAULT 0,
		squad_hours      REAL NOT NULL DEFAULT 0,
		internal_hours   REAL NOT NULL DEFAULT 0,
		PRIMARY KEY (snapshot_id, case_seq, seq),
		FOREIGN KEY (snapshot_id, case_seq)
			REFERENCES snapshot_cases(snapshot_id, seq) ON DELETE CASCADE
	)`,

	// Summary totals as reported by the server at save time.
	`ALTER TABLE snapshots ADD COLUMN summary_json TEXT NOT NULL DEFAULT '{}'`,
}
