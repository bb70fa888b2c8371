package tracker

import (
	"strings"

	"github.com/noah-isme/staff-attendance/internal/models"
)

// Filters maps a field to the exact value a record must carry. Empty values impose no constraint.
type Filters map[Field]string

// Clone returns an independent copy.
func (f Filters) Clone() Filters {
	out := make(Filters, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Active returns the constrained fields in column order.
func (f Filters) Active() []Field {
	active := make([]Field, 0, len(f))
	for _, field := range Fields {
		if f[field] != "" {
			active = append(active, field)
		}
	}
	return active
}

// Match requires every active filter to equal the record's value exactly.
func (f Filters) Match(r models.AttendanceRecord) bool {
	for field, want := range f {
		if want == "" {
			continue
		}
		if field.Value(r) != want {
			return false
		}
	}
	return true
}

// MatchesSearch is a case-insensitive substring test over name and staff identifier.
func MatchesSearch(r models.AttendanceRecord, search string) bool {
	if search == "" {
		return true
	}
	term := strings.ToLower(search)
	return strings.Contains(strings.ToLower(r.Name), term) ||
		strings.Contains(strings.ToLower(r.StaffID), term)
}

// Visible returns the records matching search AND filters, in input order.
func Visible(records []models.AttendanceRecord, search string, filters Filters) []models.AttendanceRecord {
	out := make([]models.AttendanceRecord, 0, len(records))
	for _, r := range records {
		if MatchesSearch(r, search) && filters.Match(r) {
			out = append(out, r)
		}
	}
	return out
}
