package tracker

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/noah-isme/staff-attendance/internal/models"
)

// EditPath selects the validation applied before submission.
type EditPath int

const (
	// PathAttendance records statuses for today or a past day.
	PathAttendance EditPath = iota
	// PathShiftScheduling assigns shifts for a future day and is conflict checked.
	PathShiftScheduling
)

func (p EditPath) String() string {
	if p == PathShiftScheduling {
		return "shift-scheduling"
	}
	return "attendance"
}

// State is a step of the submission lifecycle.
type State int

const (
	StateIdle State = iota
	StateValidating
	StateConflictBlocked
	StateSubmitting
	StateSuccess
	StateFailed
)

var stateNames = map[State]string{
	StateIdle:            "idle",
	StateValidating:      "validating",
	StateConflictBlocked: "conflict-blocked",
	StateSubmitting:      "submitting",
	StateSuccess:         "success",
	StateFailed:          "failed",
}

func (s State) String() string {
	return stateNames[s]
}

// Submitter delivers the full materialised records of a batch.
type Submitter interface {
	Submit(ctx context.Context, records []models.AttendanceRecord) error
}

// SubmitterFunc adapts a function to Submitter.
type SubmitterFunc func(ctx context.Context, records []models.AttendanceRecord) error

// Submit implements Submitter.
func (f SubmitterFunc) Submit(ctx context.Context, records []models.AttendanceRecord) error {
	return f(ctx, records)
}

// Gate runs pending edits through validation and submission.
type Gate struct {
	edits     *EditTracker
	store     *RecordStore
	submitter Submitter
	logger    *zap.Logger
	state     State
	observer  func(from, to State)
	scheduled func(PendingEdit) bool
}

// NewGate wires a gate. store may be nil when no reload is wanted.
func NewGate(edits *EditTracker, store *RecordStore, submitter Submitter, logger *zap.Logger) *Gate {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gate{edits: edits, store: store, submitter: submitter, logger: logger}
}

// Observe registers a callback invoked on every state transition.
func (g *Gate) Observe(fn func(from, to State)) {
	g.observer = fn
}

// ScheduleFilter restricts conflict detection to the pending edits fn accepts.
// Without a filter every pending edit is checked.
func (g *Gate) ScheduleFilter(fn func(PendingEdit) bool) {
	g.scheduled = fn
}

// State returns the current lifecycle state.
func (g *Gate) State() State {
	return g.state
}

// Reset returns a conflict-blocked gate to idle after the user edits again.
func (g *Gate) Reset() {
	if g.state == StateConflictBlocked {
		g.transition(StateIdle)
	}
}

// Submit validates and sends every pending edit as one batch. With nothing
// pending it returns nil without contacting the submitter. Conflicts return a
// *ConflictError and transport failures a *TransportError; both keep the
// pending edits. On success the edits are cleared and the store reloaded; a
// failed reload is logged only.
func (g *Gate) Submit(ctx context.Context, path EditPath) error {
	g.transition(StateValidating)
	if g.edits.Len() == 0 {
		g.transition(StateIdle)
		return nil
	}

	if path == PathShiftScheduling {
		if conflicts := Detect(g.scheduledEdits()); conflicts.Len() > 0 {
			g.transition(StateConflictBlocked)
			return &ConflictError{IDs: conflicts.IDs()}
		}
	}

	payload := g.edits.Snapshot()
	g.transition(StateSubmitting)
	if err := g.submitter.Submit(ctx, payload); err != nil {
		var conflictErr *ConflictError
		if errors.As(err, &conflictErr) {
			g.transition(StateConflictBlocked)
			return conflictErr
		}
		g.transition(StateFailed)
		g.logger.Warn("attendance submission failed",
			zap.Int("records", len(payload)),
			zap.String("path", path.String()),
			zap.Error(err))
		g.transition(StateIdle)
		return &TransportError{Err: err}
	}

	g.transition(StateSuccess)
	g.edits.Clear()
	g.logger.Info("attendance submitted", zap.Int("records", len(payload)), zap.String("path", path.String()))
	if g.store != nil {
		if err := g.store.Reload(ctx); err != nil {
			g.logger.Warn("reload after submit failed", zap.Error(err))
		}
	}
	g.transition(StateIdle)
	return nil
}

func (g *Gate) scheduledEdits() []PendingEdit {
	pending := g.edits.Pending()
	if g.scheduled == nil {
		return pending
	}
	out := pending[:0]
	for _, edit := range pending {
		if g.scheduled(edit) {
			out = append(out, edit)
		}
	}
	return out
}

func (g *Gate) transition(to State) {
	from := g.state
	g.state = to
	if g.observer != nil {
		g.observer(from, to)
	}
}
