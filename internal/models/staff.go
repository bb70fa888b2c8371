package models

import "time"

// Department is the closed set of hospital departments staff belong to.
type Department string

const (
	DepartmentNursing         Department = "Nursing"
	DepartmentPathology       Department = "Pathology"
	DepartmentRadiology       Department = "Radiology"
	DepartmentPharmacy        Department = "Pharmacy"
	DepartmentAdministration  Department = "Administration"
	DepartmentCardiology      Department = "Cardiology"
	DepartmentEmergency       Department = "Emergency"
	DepartmentICU             Department = "ICU"
	DepartmentGeneralMedicine Department = "General Medicine"
)

// Departments lists every supported department in display order.
var Departments = []Department{
	DepartmentNursing,
	DepartmentPathology,
	DepartmentRadiology,
	DepartmentPharmacy,
	DepartmentAdministration,
	DepartmentCardiology,
	DepartmentEmergency,
	DepartmentICU,
	DepartmentGeneralMedicine,
}

// Valid returns true when the department is part of the vocabulary.
func (d Department) Valid() bool {
	for _, candidate := range Departments {
		if d == candidate {
			return true
		}
	}
	return false
}

// Role is the closed set of staff roles.
type Role string

const (
	RoleNurse          Role = "Nurse"
	RoleTechnician     Role = "Technician"
	RoleDoctor         Role = "Doctor"
	RoleLabAssistant   Role = "Lab Assistant"
	RoleAdminAssistant Role = "Admin Assistant"
)

// Roles lists every supported staff role.
var Roles = []Role{RoleNurse, RoleTechnician, RoleDoctor, RoleLabAssistant, RoleAdminAssistant}

// Valid returns true when the role is part of the vocabulary.
func (r Role) Valid() bool {
	switch r {
	case RoleNurse, RoleTechnician, RoleDoctor, RoleLabAssistant, RoleAdminAssistant:
		return true
	default:
		return false
	}
}

// Shift is a working shift slot.
type Shift string

const (
	ShiftMorning   Shift = "Morning"
	ShiftAfternoon Shift = "Afternoon"
	ShiftNight     Shift = "Night"
)

// Shifts lists the shift slots in chronological order.
var Shifts = []Shift{ShiftMorning, ShiftAfternoon, ShiftNight}

// Valid returns true when the shift is supported.
func (s Shift) Valid() bool {
	switch s {
	case ShiftMorning, ShiftAfternoon, ShiftNight:
		return true
	default:
		return false
	}
}

// StaffMember is roster reference data.
type StaffMember struct {
	ID              string     `db:"id" json:"id"`
	Name            string     `db:"full_name" json:"name"`
	StaffID         string     `db:"staff_code" json:"staff_id"`
	Department      Department `db:"department" json:"department"`
	Role            Role       `db:"role" json:"role"`
	ShiftPreference Shift      `db:"shift_preference" json:"shift_preference"`
	ContactNumber   string     `db:"contact_number" json:"contact_number"`
	Email           *string    `db:"email" json:"email,omitempty"`
	Active          bool       `db:"active" json:"active"`
	CreatedAt       time.Time  `db:"created_at" json:"-"`
	UpdatedAt       time.Time  `db:"updated_at" json:"-"`
}

// StaffFilter scopes roster listings.
type StaffFilter struct {
	Department Department
	Role       Role
	Search     string
	ActiveOnly bool
	Page       int
	PageSize   int
}
