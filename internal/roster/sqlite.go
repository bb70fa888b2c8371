package roster

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/staff-attendance/internal/models"
	"github.com/noah-isme/staff-attendance/internal/tracker"
)

const sqliteStaffColumns = `id, staff_code, full_name, department, role, shift_preference, contact_number, email, active`

// SQLiteSource serves the roster and stored attendance from a local SQLite
// database opened with database.NewSQLite.
type SQLiteSource struct {
	db    *sqlx.DB
	clock func() time.Time
}

// NewSQLiteSource wraps db. A nil clock uses time.Now.
func NewSQLiteSource(db *sqlx.DB, clock func() time.Time) *SQLiteSource {
	if clock == nil {
		clock = time.Now
	}
	return &SQLiteSource{db: db, clock: clock}
}

// Load implements tracker.Source.
func (s *SQLiteSource) Load(ctx context.Context, q tracker.Query) ([]models.AttendanceRecord, error) {
	dates, err := scopeDates(q.Scope, today(s.clock))
	if err != nil {
		return nil, err
	}

	var members []models.StaffMember
	query := fmt.Sprintf(`SELECT %s FROM staff_members WHERE active = 1 ORDER BY full_name`, sqliteStaffColumns)
	if err := s.db.SelectContext(ctx, &members, query); err != nil {
		return nil, fmt.Errorf("load roster: %w", err)
	}

	var rows []models.AttendanceRecord
	if err := s.db.SelectContext(ctx, &rows,
		`SELECT id, staff_member_id, date, shift, status, remarks FROM staff_attendance WHERE date BETWEEN ? AND ?`,
		dates[0], dates[len(dates)-1]); err != nil {
		return nil, fmt.Errorf("load stored attendance: %w", err)
	}
	stored := make(map[string]models.AttendanceRecord, len(rows))
	for _, r := range rows {
		stored[r.ID] = r
	}
	return materialize(members, dates, stored), nil
}

// Submit implements tracker.Submitter. The batch is written in one transaction.
func (s *SQLiteSource) Submit(ctx context.Context, records []models.AttendanceRecord) (err error) {
	for _, r := range records {
		if err := validateRecord(r); err != nil {
			return err
		}
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin attendance write: %w", err)
	}
	commit := false
	defer func() {
		if !commit {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PreparexContext(ctx, `INSERT INTO staff_attendance (id, staff_member_id, date, shift, status, remarks, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (staff_member_id, date) DO UPDATE SET shift = excluded.shift, status = excluded.status, remarks = excluded.remarks, updated_at = excluded.updated_at`)
	if err != nil {
		return fmt.Errorf("prepare attendance write: %w", err)
	}
	defer stmt.Close()

	now := s.clock().UTC().Format(time.RFC3339)
	for _, r := range records {
		if _, err := stmt.ExecContext(ctx, r.ID, r.StaffMemberID, r.Date, r.Shift, r.Status, r.Remarks, now); err != nil {
			return fmt.Errorf("store attendance for %s: %w", r.StaffID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit attendance write: %w", err)
	}
	commit = true
	return nil
}

// ImportStaff upserts members into the local roster.
func (s *SQLiteSource) ImportStaff(ctx context.Context, members []models.StaffMember) (int, error) {
	for _, m := range members {
		if err := validateMember(m); err != nil {
			return 0, err
		}
	}
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin roster import: %w", err)
	}
	commit := false
	defer func() {
		if !commit {
			_ = tx.Rollback()
		}
	}()

	for _, m := range members {
		if _, err := tx.NamedExecContext(ctx, `INSERT INTO staff_members (`+sqliteStaffColumns+`)
VALUES (:id, :staff_code, :full_name, :department, :role, :shift_preference, :contact_number, :email, :active)
ON CONFLICT (id) DO UPDATE SET staff_code = excluded.staff_code, full_name = excluded.full_name,
    department = excluded.department, role = excluded.role, shift_preference = excluded.shift_preference,
    contact_number = excluded.contact_number, email = excluded.email, active = excluded.active`, m); err != nil {
			return 0, fmt.Errorf("import staff %s: %w", m.StaffID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit roster import: %w", err)
	}
	commit = true
	return len(members), nil
}
