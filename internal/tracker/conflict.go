package tracker

import (
	"sort"

	"github.com/noah-isme/staff-attendance/internal/models"
)

// ConflictSet is the set of record ids involved in a scheduling conflict.
type ConflictSet map[string]struct{}

// Has reports whether id is conflicting.
func (c ConflictSet) Has(id string) bool {
	_, ok := c[id]
	return ok
}

// Len returns the number of conflicting records.
func (c ConflictSet) Len() int {
	return len(c)
}

// IDs returns the conflicting ids sorted.
func (c ConflictSet) IDs() []string {
	ids := make([]string, 0, len(c))
	for id := range c {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Slot identifies one staffing position on the schedule.
type Slot struct {
	Date       string
	Department models.Department
	Role       models.Role
	Shift      models.Shift
}

// SlotOf returns the slot a record occupies.
func SlotOf(r models.AttendanceRecord) Slot {
	return Slot{Date: r.Date, Department: r.Department, Role: r.Role, Shift: r.Shift}
}

// Detect groups the materialised pending edits by slot. Every record in a slot
// shared by two or more distinct records is in the result. Only the edits
// themselves are compared, never the rest of the roster.
func Detect(edits []PendingEdit) ConflictSet {
	records := make([]models.AttendanceRecord, 0, len(edits))
	for _, edit := range edits {
		records = append(records, edit.Record())
	}
	return DetectRecords(records)
}

// DetectRecords applies the slot rule to already materialised records.
func DetectRecords(records []models.AttendanceRecord) ConflictSet {
	groups := make(map[Slot]map[string]struct{})
	for _, r := range records {
		slot := SlotOf(r)
		if groups[slot] == nil {
			groups[slot] = make(map[string]struct{})
		}
		groups[slot][r.ID] = struct{}{}
	}

	conflicts := make(ConflictSet)
	for _, ids := range groups {
		if len(ids) < 2 {
			continue
		}
		for id := range ids {
			conflicts[id] = struct{}{}
		}
	}
	return conflicts
}
