package tracker

import (
	"fmt"

	"github.com/noah-isme/staff-attendance/internal/models"
)

// Field names a filterable attribute of an attendance record.
type Field string

const (
	FieldDepartment Field = "department"
	FieldRole       Field = "role"
	FieldShift      Field = "shift"
	FieldStatus     Field = "status"
)

// Fields lists the filterable fields in column order.
var Fields = []Field{FieldDepartment, FieldRole, FieldShift, FieldStatus}

type fieldSpec struct {
	get   func(models.AttendanceRecord) string
	valid func(string) bool
}

var fieldSpecs = map[Field]fieldSpec{
	FieldDepartment: {
		get:   func(r models.AttendanceRecord) string { return string(r.Department) },
		valid: func(v string) bool { return models.Department(v).Valid() },
	},
	FieldRole: {
		get:   func(r models.AttendanceRecord) string { return string(r.Role) },
		valid: func(v string) bool { return models.Role(v).Valid() },
	},
	FieldShift: {
		get:   func(r models.AttendanceRecord) string { return string(r.Shift) },
		valid: func(v string) bool { return models.Shift(v).Valid() },
	},
	FieldStatus: {
		get:   func(r models.AttendanceRecord) string { return string(r.Status) },
		valid: func(v string) bool { return models.AttendanceStatus(v).Valid() },
	},
}

// ParseField resolves a field name such as "department".
func ParseField(name string) (Field, error) {
	f := Field(name)
	if _, ok := fieldSpecs[f]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	return f, nil
}

// Value reads the field from r.
func (f Field) Value(r models.AttendanceRecord) string {
	spec, ok := fieldSpecs[f]
	if !ok {
		return ""
	}
	return spec.get(r)
}

// Allows reports whether value is in the field's closed vocabulary. Matching is case-sensitive.
func (f Field) Allows(value string) bool {
	spec, ok := fieldSpecs[f]
	return ok && spec.valid(value)
}

// Editable reports whether users may change the field on a record.
func (f Field) Editable() bool {
	return f == FieldStatus || f == FieldShift
}
