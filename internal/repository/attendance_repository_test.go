package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/staff-attendance/internal/models"
)

func TestAttendanceRepositoryListRosterDay(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	day := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"staff_member_id", "full_name", "staff_code", "department", "role", "contact_number", "shift", "status", "remarks"}).
		AddRow("s1", "Jane Doe", "EMP-001", "ICU", "Nurse", "555-0101", "Morning", "Present", "").
		AddRow("s2", "John Roe", "EMP-002", "ICU", "Doctor", "555-0102", "Night", "Leave", "annual leave")
	mock.ExpectQuery(regexp.QuoteMeta("LEFT JOIN staff_attendance a ON a.staff_member_id = s.id AND a.date = $1 WHERE s.active = TRUE AND s.department = $2")).
		WithArgs(day, models.DepartmentICU).
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM staff_members s")).
		WithArgs(day, models.DepartmentICU).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	list, total, err := repo.List(context.Background(), models.AttendanceFilter{Date: &day, Department: models.DepartmentICU})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, 2, total)
	assert.Equal(t, "2024-07-01", list[0].Date)
	assert.Equal(t, models.AttendanceRecordID("s1", "2024-07-01"), list[0].ID)
	assert.Equal(t, models.AttendanceStatusLeave, list[1].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryListRangeFiltersDefaultedColumns(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	from := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"staff_member_id", "full_name", "staff_code", "department", "role", "contact_number", "date", "shift", "status", "remarks"}).
		AddRow("s1", "Jane Doe", "EMP-001", "ICU", "Nurse", "", "2024-06-15", "Night", "Absent", "")
	mock.ExpectQuery(regexp.QuoteMeta("WHERE 1=1 AND a.date >= $1 AND a.date <= $2 AND a.status = $3 ORDER BY a.date DESC, s.staff_code ASC LIMIT 20 OFFSET 20")).
		WithArgs(from, to, models.AttendanceStatusAbsent).
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM staff_attendance a")).
		WithArgs(from, to, models.AttendanceStatusAbsent).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(21))

	list, total, err := repo.List(context.Background(), models.AttendanceFilter{
		DateFrom: &from,
		DateTo:   &to,
		Status:   models.AttendanceStatusAbsent,
		Page:     2,
		PageSize: 20,
	})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 21, total)
	assert.Equal(t, models.AttendanceRecordID("s1", "2024-06-15"), list[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryRosterShiftFilterUsesPreference(t *testing.T) {
	q := buildAttendanceQuery(models.AttendanceFilter{
		Date:   &time.Time{},
		Shift:  models.ShiftNight,
		Search: "doe",
	})
	assert.Equal(t, "s.active = TRUE AND (LOWER(s.full_name) LIKE $2 OR LOWER(s.staff_code) LIKE $2) AND COALESCE(a.shift, s.shift_preference) = $3", q.whereClause())
	assert.Len(t, q.args, 3)
}

func TestAttendanceRepositoryBulkUpsert(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	day := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	items := []models.AttendanceUpsert{
		{ID: "r1", StaffMemberID: "s1", Date: day, Shift: models.ShiftMorning, Status: models.AttendanceStatusLeave},
		{ID: "r2", StaffMemberID: "s2", Date: day, Shift: models.ShiftNight, Status: models.AttendanceStatusPresent},
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO staff_attendance").
		WithArgs("r1", "s1", day, models.ShiftMorning, models.AttendanceStatusLeave, "", nil, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO staff_attendance").
		WithArgs("r2", "s2", day, models.ShiftNight, models.AttendanceStatusPresent, "", nil, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.BulkUpsert(context.Background(), items))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryBulkUpsertRollsBack(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	day := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO staff_attendance").WillReturnError(errors.New("fk violation"))
	mock.ExpectRollback()

	err := repo.BulkUpsert(context.Background(), []models.AttendanceUpsert{{ID: "r1", StaffMemberID: "ghost", Date: day}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ghost")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositorySummary(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	from := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT a.status AS status, COUNT(*) AS cnt")).
		WithArgs(from).
		WillReturnRows(sqlmock.NewRows([]string{"status", "cnt"}).
			AddRow("Present", 7).
			AddRow("Absent", 2).
			AddRow("Leave", 1))

	summary, err := repo.Summary(context.Background(), models.AttendanceFilter{DateFrom: &from})
	require.NoError(t, err)
	assert.Equal(t, 7, summary.TotalPresent)
	assert.Equal(t, 2, summary.TotalAbsent)
	assert.Equal(t, 1, summary.TotalLeave)
	assert.Equal(t, 10, summary.Total)
	assert.NoError(t, mock.ExpectationsWereMet())
}
