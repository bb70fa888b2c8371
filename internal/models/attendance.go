package models

import (
	"time"

	"github.com/google/uuid"
)

// DateLayout is the ISO calendar-day format used on the wire and in records.
const DateLayout = "2006-01-02"

// AttendanceStatus represents the attendance outcome for a staff member on a day.
type AttendanceStatus string

const (
	AttendanceStatusPresent AttendanceStatus = "Present"
	AttendanceStatusAbsent  AttendanceStatus = "Absent"
	AttendanceStatusLeave   AttendanceStatus = "Leave"
)

// AttendanceStatuses lists the supported statuses.
var AttendanceStatuses = []AttendanceStatus{AttendanceStatusPresent, AttendanceStatusAbsent, AttendanceStatusLeave}

// Valid returns true when the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendanceStatusPresent, AttendanceStatusAbsent, AttendanceStatusLeave:
		return true
	default:
		return false
	}
}

// recordNamespace seeds name-based record identifiers.
var recordNamespace = uuid.MustParse("7d1c8f2e-4a4b-4f0e-9a53-3f6f1c2b9e10")

// AttendanceRecordID derives the stable identifier of a staff member's record on a day.
func AttendanceRecordID(staffMemberID, date string) string {
	return uuid.NewSHA1(recordNamespace, []byte(staffMemberID+"|"+date)).String()
}

// AttendanceRecord is one staff member's attendance and shift assignment on one date.
type AttendanceRecord struct {
	ID            string           `db:"id" json:"id"`
	StaffMemberID string           `db:"staff_member_id" json:"staff_member_id"`
	Name          string           `db:"full_name" json:"name"`
	StaffID       string           `db:"staff_code" json:"staff_id"`
	Department    Department       `db:"department" json:"department"`
	Role          Role             `db:"role" json:"role"`
	ContactNumber string           `db:"contact_number" json:"contact_number,omitempty"`
	Date          string           `db:"date" json:"date"`
	Shift         Shift            `db:"shift" json:"shift"`
	Status        AttendanceStatus `db:"status" json:"status"`
	Remarks       string           `db:"remarks" json:"remarks,omitempty"`
}

// NewAttendanceRecord materialises the default record for a staff member on date.
func NewAttendanceRecord(member StaffMember, date string) AttendanceRecord {
	return AttendanceRecord{
		ID:            AttendanceRecordID(member.ID, date),
		StaffMemberID: member.ID,
		Name:          member.Name,
		StaffID:       member.StaffID,
		Department:    member.Department,
		Role:          member.Role,
		ContactNumber: member.ContactNumber,
		Date:          date,
		Shift:         member.ShiftPreference,
		Status:        AttendanceStatusPresent,
	}
}

// AttendanceFilter defines repository query filters. Date selects a roster day
// (every active staff member, defaulted when no row exists); DateFrom/DateTo
// select stored rows only.
type AttendanceFilter struct {
	Date       *time.Time
	DateFrom   *time.Time
	DateTo     *time.Time
	Search     string
	Department Department
	Role       Role
	Shift      Shift
	Status     AttendanceStatus
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}

// AttendanceUpsert is the persisted subset of a submitted record.
type AttendanceUpsert struct {
	ID            string           `db:"id"`
	StaffMemberID string           `db:"staff_member_id"`
	Date          time.Time        `db:"date"`
	Shift         Shift            `db:"shift"`
	Status        AttendanceStatus `db:"status"`
	Remarks       string           `db:"remarks"`
	UpdatedBy     *string          `db:"updated_by"`
}

// AttendanceSummary counts statuses over a scope.
type AttendanceSummary struct {
	From         string `json:"from"`
	To           string `json:"to"`
	TotalPresent int    `json:"total_present"`
	TotalAbsent  int    `json:"total_absent"`
	TotalLeave   int    `json:"total_leave"`
	Total        int    `json:"total"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
