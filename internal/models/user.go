package models

import "time"

// UserRole is the permission tier of an account.
type UserRole string

const (
	// RoleAdmin manages accounts and sees service metrics.
	RoleAdmin UserRole = "ADMIN"
	// RoleSupervisor records attendance and schedules shifts.
	RoleSupervisor UserRole = "SUPERVISOR"
	// RoleStaff can only read attendance.
	RoleStaff UserRole = "STAFF"
)

// EditorRoles lists the roles allowed to submit attendance batches.
var EditorRoles = []UserRole{RoleAdmin, RoleSupervisor}

// Valid reports whether r is a known role.
func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleSupervisor, RoleStaff:
		return true
	}
	return false
}

// CanRecordAttendance reports whether r may submit attendance or shift changes.
func (r UserRole) CanRecordAttendance() bool {
	for _, editor := range EditorRoles {
		if r == editor {
			return true
		}
	}
	return false
}

// User is a sign-in account. StaffMemberID links supervisors who are also on the roster.
type User struct {
	ID            string     `db:"id" json:"id"`
	Email         string     `db:"email" json:"email"`
	PasswordHash  string     `db:"password_hash" json:"-"`
	FullName      string     `db:"full_name" json:"full_name"`
	Role          UserRole   `db:"role" json:"role"`
	StaffMemberID *string    `db:"staff_member_id" json:"staff_member_id,omitempty"`
	Active        bool       `db:"active" json:"active"`
	LastLogin     *time.Time `db:"last_login" json:"last_login,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"-"`
	UpdatedAt     time.Time  `db:"updated_at" json:"-"`
}

// Info is the public view of u.
func (u *User) Info() UserInfo {
	return UserInfo{ID: u.ID, Email: u.Email, FullName: u.FullName, Role: u.Role}
}
