package database

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// rosterSchema mirrors the staff_members and staff_attendance tables for offline use.
const rosterSchema = `CREATE TABLE IF NOT EXISTS staff_members (
    id               TEXT PRIMARY KEY,
    staff_code       TEXT NOT NULL UNIQUE,
    full_name        TEXT NOT NULL,
    department       TEXT NOT NULL,
    role             TEXT NOT NULL,
    shift_preference TEXT NOT NULL,
    contact_number   TEXT NOT NULL DEFAULT '',
    email            TEXT,
    active           INTEGER NOT NULL DEFAULT 1
);
CREATE TABLE IF NOT EXISTS staff_attendance (
    id              TEXT PRIMARY KEY,
    staff_member_id TEXT NOT NULL REFERENCES staff_members (id),
    date            TEXT NOT NULL,
    shift           TEXT NOT NULL,
    status          TEXT NOT NULL,
    remarks         TEXT NOT NULL DEFAULT '',
    updated_at      TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
    UNIQUE (staff_member_id, date)
)`

// NewSQLite opens (creating when absent) a local roster database. Use ":memory:" in tests.
func NewSQLite(path string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// A single connection keeps ":memory:" databases shared across queries.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(rosterSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init roster schema: %w", err)
	}
	return db, nil
}
