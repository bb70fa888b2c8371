package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/staff-attendance/internal/models"
)

const selectUser = `SELECT id, email, password_hash, full_name, role, staff_member_id, active, last_login, created_at, updated_at FROM users`

// UserRepository reads and writes sign-in accounts.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByEmail matches email case-insensitively. A missing account returns sql.ErrNoRows unwrapped.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, selectUser+` WHERE LOWER(email) = LOWER($1) LIMIT 1`, email)
}

// FindByID loads one account.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	return r.findOne(ctx, selectUser+` WHERE id = $1 LIMIT 1`, id)
}

func (r *UserRepository) findOne(ctx context.Context, query string, arg interface{}) (*models.User, error) {
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	return &user, nil
}

// CreateIfMissing inserts user unless an account with the same email exists.
// It reports whether a row was written.
func (r *UserRepository) CreateIfMissing(ctx context.Context, user *models.User) (bool, error) {
	const query = `INSERT INTO users (email, password_hash, full_name, role, staff_member_id, active)
VALUES (LOWER($1), $2, $3, $4, $5, $6)
ON CONFLICT (email) DO NOTHING`
	res, err := r.db.ExecContext(ctx, query, user.Email, user.PasswordHash, user.FullName, user.Role, user.StaffMemberID, user.Active)
	if err != nil {
		return false, fmt.Errorf("create user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("create user: %w", err)
	}
	return n == 1, nil
}

// UpdateLastLogin stamps a successful sign-in.
func (r *UserRepository) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE users SET last_login = $2, updated_at = $2 WHERE id = $1`, id, ts); err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	return nil
}
