package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/staff-attendance/internal/models"
)

// AttendanceRepository persists staff attendance and shift assignments.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs the repository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// attendanceQuery holds the FROM/WHERE parts shared by listing, counting and summaries.
type attendanceQuery struct {
	rosterDay bool
	base      string
	where     []string
	args      []interface{}
	shift     string
	status    string
}

func (q *attendanceQuery) add(format string, arg interface{}) {
	q.where = append(q.where, fmt.Sprintf(format, len(q.args)+1))
	q.args = append(q.args, arg)
}

func (q *attendanceQuery) whereClause() string {
	return strings.Join(q.where, " AND ")
}

// buildAttendanceQuery selects between a roster day (every active staff member,
// defaulted to their preferred shift and Present when no row is stored) and a
// range of stored rows.
func buildAttendanceQuery(filter models.AttendanceFilter) *attendanceQuery {
	q := &attendanceQuery{}
	if filter.Date != nil {
		q.rosterDay = true
		q.args = []interface{}{*filter.Date}
		q.base = `FROM staff_members s
LEFT JOIN staff_attendance a ON a.staff_member_id = s.id AND a.date = $1`
		q.where = []string{"s.active = TRUE"}
		q.shift = "COALESCE(a.shift, s.shift_preference)"
		q.status = "COALESCE(a.status, 'Present')"
	} else {
		q.base = `FROM staff_attendance a
JOIN staff_members s ON s.id = a.staff_member_id`
		q.where = []string{"1=1"}
		q.shift = "a.shift"
		q.status = "a.status"
		if filter.DateFrom != nil {
			q.add("a.date >= $%d", *filter.DateFrom)
		}
		if filter.DateTo != nil {
			q.add("a.date <= $%d", *filter.DateTo)
		}
	}

	if filter.Search != "" {
		q.add("(LOWER(s.full_name) LIKE $%[1]d OR LOWER(s.staff_code) LIKE $%[1]d)", "%"+strings.ToLower(filter.Search)+"%")
	}
	if filter.Department != "" {
		q.add("s.department = $%d", filter.Department)
	}
	if filter.Role != "" {
		q.add("s.role = $%d", filter.Role)
	}
	if filter.Shift != "" {
		q.add(q.shift+" = $%d", filter.Shift)
	}
	if filter.Status != "" {
		q.add(q.status+" = $%d", filter.Status)
	}
	return q
}

// List returns attendance records matching the filter and the total count.
func (r *AttendanceRepository) List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, int, error) {
	q := buildAttendanceQuery(filter)

	allowedSort := map[string]string{
		"name":       "s.full_name",
		"staff_id":   "s.staff_code",
		"department": "s.department",
		"role":       "s.role",
		"shift":      q.shift,
		"status":     q.status,
	}
	defaultSort := "name"
	if !q.rosterDay {
		allowedSort["date"] = "a.date"
		defaultSort = "date"
	}
	sortBy := filter.SortBy
	if sortBy == "" {
		sortBy = defaultSort
	}
	sortColumn, ok := allowedSort[sortBy]
	if !ok {
		sortColumn = allowedSort[defaultSort]
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
		if sortBy == "date" {
			order = "DESC"
		}
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	offset := (page - 1) * size

	columns := `s.id AS staff_member_id, s.full_name, s.staff_code, s.department, s.role, s.contact_number,
        COALESCE(a.shift, s.shift_preference) AS shift, COALESCE(a.status, 'Present') AS status, COALESCE(a.remarks, '') AS remarks`
	if !q.rosterDay {
		columns = `a.staff_member_id, s.full_name, s.staff_code, s.department, s.role, s.contact_number,
        to_char(a.date, 'YYYY-MM-DD') AS date, a.shift, a.status, a.remarks`
	}

	query := fmt.Sprintf(`SELECT %s
        %s WHERE %s ORDER BY %s %s, s.staff_code ASC LIMIT %d OFFSET %d`,
		columns, q.base, q.whereClause(), sortColumn, order, size, offset)

	var rows []models.AttendanceRecord
	if err := r.db.SelectContext(ctx, &rows, query, q.args...); err != nil {
		return nil, 0, fmt.Errorf("list staff attendance: %w", err)
	}
	for i := range rows {
		if q.rosterDay {
			rows[i].Date = filter.Date.Format(models.DateLayout)
		}
		rows[i].ID = models.AttendanceRecordID(rows[i].StaffMemberID, rows[i].Date)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s WHERE %s", q.base, q.whereClause())
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, q.args...); err != nil {
		return nil, 0, fmt.Errorf("count staff attendance: %w", err)
	}
	return rows, total, nil
}

// BulkUpsert writes every item in one transaction; any failure rolls back the batch.
func (r *AttendanceRepository) BulkUpsert(ctx context.Context, items []models.AttendanceUpsert) error {
	if len(items) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin attendance upsert: %w", err)
	}
	commit := false
	defer func() {
		if !commit {
			_ = tx.Rollback()
		}
	}()

	const query = `INSERT INTO staff_attendance (id, staff_member_id, date, shift, status, remarks, updated_by, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
ON CONFLICT (staff_member_id, date)
DO UPDATE SET shift = EXCLUDED.shift, status = EXCLUDED.status, remarks = EXCLUDED.remarks,
    updated_by = EXCLUDED.updated_by, updated_at = EXCLUDED.updated_at`
	now := time.Now().UTC()
	for _, item := range items {
		if _, err := tx.ExecContext(ctx, query, item.ID, item.StaffMemberID, item.Date, item.Shift, item.Status, item.Remarks, item.UpdatedBy, now); err != nil {
			return fmt.Errorf("upsert attendance for %s on %s: %w", item.StaffMemberID, item.Date.Format(models.DateLayout), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit attendance upsert: %w", err)
	}
	commit = true
	return nil
}

// Summary counts statuses over the filter. A roster day counts unrecorded staff as present.
func (r *AttendanceRepository) Summary(ctx context.Context, filter models.AttendanceFilter) (*models.AttendanceSummary, error) {
	q := buildAttendanceQuery(filter)
	query := fmt.Sprintf(`SELECT %s AS status, COUNT(*) AS cnt
%s WHERE %s
GROUP BY 1`, q.status, q.base, q.whereClause())

	rows := []struct {
		Status string `db:"status"`
		Count  int    `db:"cnt"`
	}{}
	if err := r.db.SelectContext(ctx, &rows, query, q.args...); err != nil {
		return nil, fmt.Errorf("attendance summary: %w", err)
	}

	summary := &models.AttendanceSummary{}
	for _, row := range rows {
		switch models.AttendanceStatus(row.Status) {
		case models.AttendanceStatusPresent:
			summary.TotalPresent += row.Count
		case models.AttendanceStatusAbsent:
			summary.TotalAbsent += row.Count
		case models.AttendanceStatusLeave:
			summary.TotalLeave += row.Count
		}
		summary.Total += row.Count
	}
	return summary, nil
}
