package tracker

import "github.com/noah-isme/staff-attendance/internal/models"

// PendingEdit is the accumulated unsubmitted change to one record.
type PendingEdit struct {
	ID    string
	Base  models.AttendanceRecord
	Patch Patch
}

// Record returns the fully materialised record: base with the patch applied.
func (e PendingEdit) Record() models.AttendanceRecord {
	return e.Patch.ApplyTo(e.Base)
}

// EditTracker accumulates field-level edits per record id until they are
// submitted or discarded. Repeated edits to one record merge into a single
// entry; later values for the same field win. It is not safe for concurrent
// use; Session serialises access.
type EditTracker struct {
	edits map[string]*PendingEdit
	order []string
}

// NewEditTracker returns an empty tracker.
func NewEditTracker() *EditTracker {
	return &EditTracker{edits: make(map[string]*PendingEdit)}
}

// Record merges p into the pending edit for base.ID, creating it on first edit.
// The base captured by the first edit is kept until Rebase replaces it.
func (t *EditTracker) Record(base models.AttendanceRecord, p Patch) {
	if p.Empty() {
		return
	}
	if existing, ok := t.edits[base.ID]; ok {
		existing.Patch = existing.Patch.Merge(p)
		return
	}
	t.edits[base.ID] = &PendingEdit{ID: base.ID, Base: base, Patch: Patch{}.Merge(p)}
	t.order = append(t.order, base.ID)
}

// Rebase replaces the base of the pending edit for base.ID, keeping its patch.
// It reports whether an edit was pending.
func (t *EditTracker) Rebase(base models.AttendanceRecord) bool {
	existing, ok := t.edits[base.ID]
	if ok {
		existing.Base = base
	}
	return ok
}

// RecordField records a single-field edit given as a string value.
func (t *EditTracker) RecordField(base models.AttendanceRecord, field Field, value string) error {
	p, err := PatchFor(field, value)
	if err != nil {
		return err
	}
	t.Record(base, p)
	return nil
}

// Get returns the pending edit for id.
func (t *EditTracker) Get(id string) (PendingEdit, bool) {
	edit, ok := t.edits[id]
	if !ok {
		return PendingEdit{}, false
	}
	return *edit, true
}

// Has reports whether id has unsubmitted edits.
func (t *EditTracker) Has(id string) bool {
	_, ok := t.edits[id]
	return ok
}

// Len returns the number of edited records.
func (t *EditTracker) Len() int {
	return len(t.edits)
}

// Pending lists edits in first-edit order.
func (t *EditTracker) Pending() []PendingEdit {
	out := make([]PendingEdit, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, *t.edits[id])
	}
	return out
}

// Snapshot materialises every pending edit as a full record, in first-edit order.
func (t *EditTracker) Snapshot() []models.AttendanceRecord {
	out := make([]models.AttendanceRecord, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, t.edits[id].Record())
	}
	return out
}

// Discard drops the pending edit for id.
func (t *EditTracker) Discard(id string) bool {
	if _, ok := t.edits[id]; !ok {
		return false
	}
	delete(t.edits, id)
	for i, candidate := range t.order {
		if candidate == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	return true
}

// Clear drops every pending edit.
func (t *EditTracker) Clear() {
	t.edits = make(map[string]*PendingEdit)
	t.order = nil
}
