package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/staff-attendance/internal/models"
)

var staffRowColumns = []string{"id", "staff_code", "full_name", "department", "role", "shift_preference", "contact_number", "email", "active", "created_at", "updated_at"}

func TestStaffRepositoryList(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStaffRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(staffRowColumns).
		AddRow("s1", "EMP-001", "Jane Doe", "ICU", "Nurse", "Morning", "555-0101", nil, true, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT "+staffColumns+" FROM staff_members WHERE 1=1 AND active = TRUE AND department = $1 AND (LOWER(full_name) LIKE $2 OR LOWER(staff_code) LIKE $2) ORDER BY full_name ASC, staff_code ASC LIMIT 50 OFFSET 0")).
		WithArgs(models.DepartmentICU, "%jane%").
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM staff_members WHERE 1=1 AND active = TRUE")).
		WithArgs(models.DepartmentICU, "%jane%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	list, total, err := repo.List(context.Background(), models.StaffFilter{
		Department: models.DepartmentICU,
		Search:     "Jane",
		ActiveOnly: true,
	})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "EMP-001", list[0].StaffID)
	assert.Equal(t, models.ShiftMorning, list[0].ShiftPreference)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStaffRepositoryFindByIDNotFound(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStaffRepository(db)

	mock.ExpectQuery("FROM staff_members WHERE id = \\$1").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStaffRepositoryFindByIDs(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStaffRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("FROM staff_members WHERE id IN ($1, $2)")).
		WithArgs("s1", "s2").
		WillReturnRows(sqlmock.NewRows(staffRowColumns).
			AddRow("s1", "EMP-001", "Jane Doe", "ICU", "Nurse", "Morning", "", nil, true, now, now))

	found, err := repo.FindByIDs(context.Background(), []string{"s1", "s2"})
	require.NoError(t, err)
	assert.Contains(t, found, "s1")
	assert.NotContains(t, found, "s2")
	assert.NoError(t, mock.ExpectationsWereMet())

	empty, err := repo.FindByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
