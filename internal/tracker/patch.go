package tracker

import (
	"fmt"

	"github.com/noah-isme/staff-attendance/internal/models"
)

// Patch is a sparse change to a record. Nil fields are left untouched.
type Patch struct {
	Status *models.AttendanceStatus
	Shift  *models.Shift
}

// StatusPatch changes only the attendance status.
func StatusPatch(status models.AttendanceStatus) Patch {
	return Patch{Status: &status}
}

// ShiftPatch changes only the shift assignment.
func ShiftPatch(shift models.Shift) Patch {
	return Patch{Shift: &shift}
}

// PatchFor builds a patch for an editable field from its string value.
func PatchFor(field Field, value string) (Patch, error) {
	if !field.Editable() {
		return Patch{}, fmt.Errorf("%w: %s", ErrFieldNotEditable, field)
	}
	if !field.Allows(value) {
		return Patch{}, fmt.Errorf("%w: %s=%q", ErrInvalidValue, field, value)
	}
	if field == FieldStatus {
		return StatusPatch(models.AttendanceStatus(value)), nil
	}
	return ShiftPatch(models.Shift(value)), nil
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.Status == nil && p.Shift == nil
}

// Merge layers next over p; fields set in next win.
func (p Patch) Merge(next Patch) Patch {
	out := p
	if next.Status != nil {
		status := *next.Status
		out.Status = &status
	}
	if next.Shift != nil {
		shift := *next.Shift
		out.Shift = &shift
	}
	return out
}

// ApplyTo returns r with the patch applied.
func (p Patch) ApplyTo(r models.AttendanceRecord) models.AttendanceRecord {
	if p.Status != nil {
		r.Status = *p.Status
	}
	if p.Shift != nil {
		r.Shift = *p.Shift
	}
	return r
}
