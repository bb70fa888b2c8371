package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/staff-attendance/internal/models"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

var userColumns = []string{"id", "email", "password_hash", "full_name", "role", "staff_member_id", "active", "last_login", "created_at", "updated_at"}

func TestUserRepositoryFindByEmail(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(userColumns).
		AddRow("1", "supervisor@ward.example.org", "hash", "Ward Supervisor", string(models.RoleSupervisor), "s1", true, now, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE LOWER(email) = LOWER($1) LIMIT 1")).
		WithArgs("Supervisor@ward.example.org").
		WillReturnRows(rows)

	user, err := repo.FindByEmail(context.Background(), "Supervisor@ward.example.org")
	require.NoError(t, err)
	assert.Equal(t, models.RoleSupervisor, user.Role)
	require.NotNil(t, user.StaffMemberID)
	assert.Equal(t, "s1", *user.StaffMemberID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryFindByIDMissing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = $1")).
		WithArgs("nope").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "nope")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryCreateIfMissing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	user := &models.User{Email: "Admin@ward.example.org", PasswordHash: "hash", FullName: "Admin", Role: models.RoleAdmin, Active: true}
	insert := regexp.QuoteMeta("INSERT INTO users (email, password_hash, full_name, role, staff_member_id, active)")
	mock.ExpectExec(insert).
		WithArgs(user.Email, "hash", "Admin", models.RoleAdmin, nil, true).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(insert).
		WillReturnResult(sqlmock.NewResult(0, 0))

	created, err := repo.CreateIfMissing(context.Background(), user)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = repo.CreateIfMissing(context.Background(), user)
	require.NoError(t, err)
	assert.False(t, created)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryUpdateLastLogin(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	ts := time.Now()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET last_login = $2, updated_at = $2 WHERE id = $1")).
		WithArgs("1", ts).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateLastLogin(context.Background(), "1", ts))
	assert.NoError(t, mock.ExpectationsWereMet())
}
