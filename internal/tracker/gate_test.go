package tracker

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/staff-attendance/internal/models"
)

func newGateFixture(t *testing.T, records []models.AttendanceRecord, date string) (*Gate, *EditTracker, *RecordStore, *fakeSource, *fakeSubmitter) {
	t.Helper()
	source := &fakeSource{records: records}
	store := NewRecordStore(source, fixedClock("2024-07-31"))
	_, err := store.Load(context.Background(), Query{Scope: SpecificDate(date)})
	require.NoError(t, err)
	edits := NewEditTracker()
	submitter := &fakeSubmitter{}
	return NewGate(edits, store, submitter, nil), edits, store, source, submitter
}

func TestGateSubmitsSingleLeaveEdit(t *testing.T) {
	gate, edits, store, source, submitter := newGateFixture(t, roster(5, "2024-07-01"), "2024-07-01")

	base, ok := store.Get("u3")
	require.True(t, ok)
	edits.Record(base, StatusPatch(models.AttendanceStatusLeave))
	store.Apply("u3", StatusPatch(models.AttendanceStatusLeave))

	require.NoError(t, gate.Submit(context.Background(), PathAttendance))

	require.Len(t, submitter.payloads, 1)
	payload := submitter.payloads[0]
	require.Len(t, payload, 1)
	expected := base
	expected.Status = models.AttendanceStatusLeave
	assert.Equal(t, expected, payload[0])
	assert.Zero(t, edits.Len())
	assert.Equal(t, 2, source.Calls(), "store reloads after success")
	assert.Equal(t, StateIdle, gate.State())
}

func TestGateSecondSubmitIsNoop(t *testing.T) {
	gate, edits, store, _, submitter := newGateFixture(t, roster(2, "2024-07-01"), "2024-07-01")
	base, _ := store.Get("u1")
	edits.Record(base, StatusPatch(models.AttendanceStatusAbsent))

	require.NoError(t, gate.Submit(context.Background(), PathAttendance))
	require.NoError(t, gate.Submit(context.Background(), PathAttendance))
	assert.Len(t, submitter.payloads, 1)
}

func TestGateBlocksConflictsWithoutContactingSubmitter(t *testing.T) {
	records := []models.AttendanceRecord{
		record("u1", "2024-08-02", models.DepartmentICU, models.RoleNurse, models.ShiftNight),
		record("u2", "2024-08-02", models.DepartmentICU, models.RoleNurse, models.ShiftAfternoon),
	}
	gate, edits, store, source, submitter := newGateFixture(t, records, "2024-08-02")
	for _, id := range []string{"u1", "u2"} {
		base, _ := store.Get(id)
		edits.Record(base, ShiftPatch(models.ShiftMorning))
	}

	var transitions []State
	gate.Observe(func(_, to State) { transitions = append(transitions, to) })

	err := gate.Submit(context.Background(), PathShiftScheduling)
	var conflictErr *ConflictError
	require.ErrorAs(t, err, &conflictErr)
	assert.Equal(t, []string{"u1", "u2"}, conflictErr.IDs)
	assert.Empty(t, submitter.payloads)
	assert.Equal(t, 2, edits.Len())
	assert.Equal(t, 1, source.Calls())
	assert.Equal(t, []State{StateValidating, StateConflictBlocked}, transitions)
	assert.Equal(t, StateConflictBlocked, gate.State())

	gate.Reset()
	assert.Equal(t, StateIdle, gate.State())
}

func TestGateScheduleFilterLimitsDetection(t *testing.T) {
	records := []models.AttendanceRecord{
		record("u1", "2024-08-02", models.DepartmentICU, models.RoleNurse, models.ShiftNight),
		record("u2", "2024-08-02", models.DepartmentICU, models.RoleNurse, models.ShiftAfternoon),
	}
	gate, edits, store, _, submitter := newGateFixture(t, records, "2024-08-02")
	for _, id := range []string{"u1", "u2"} {
		base, _ := store.Get(id)
		edits.Record(base, ShiftPatch(models.ShiftMorning))
	}
	gate.ScheduleFilter(func(e PendingEdit) bool { return e.ID == "u1" })

	require.NoError(t, gate.Submit(context.Background(), PathShiftScheduling))
	require.Len(t, submitter.payloads, 1)
	assert.Len(t, submitter.payloads[0], 2)
}

func TestGateSkipsDetectionOnAttendancePath(t *testing.T) {
	records := []models.AttendanceRecord{
		record("u1", "2024-07-01", models.DepartmentICU, models.RoleNurse, models.ShiftMorning),
		record("u2", "2024-07-01", models.DepartmentICU, models.RoleNurse, models.ShiftMorning),
	}
	gate, edits, store, _, submitter := newGateFixture(t, records, "2024-07-01")
	for _, id := range []string{"u1", "u2"} {
		base, _ := store.Get(id)
		edits.Record(base, StatusPatch(models.AttendanceStatusAbsent))
	}

	require.NoError(t, gate.Submit(context.Background(), PathAttendance))
	assert.Len(t, submitter.payloads, 1)
}

func TestGateKeepsEditsOnTransportFailure(t *testing.T) {
	gate, edits, store, _, submitter := newGateFixture(t, roster(2, "2024-07-01"), "2024-07-01")
	submitter.err = errors.New("connection refused")
	base, _ := store.Get("u1")
	edits.Record(base, StatusPatch(models.AttendanceStatusAbsent))

	var transitions []State
	gate.Observe(func(_, to State) { transitions = append(transitions, to) })

	err := gate.Submit(context.Background(), PathAttendance)
	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.ErrorIs(t, err, submitter.err)
	assert.Equal(t, 1, edits.Len())
	assert.Equal(t, []State{StateValidating, StateSubmitting, StateFailed, StateIdle}, transitions)
}

func TestGateSurvivesReloadFailure(t *testing.T) {
	gate, edits, store, source, submitter := newGateFixture(t, roster(2, "2024-07-01"), "2024-07-01")
	base, _ := store.Get("u1")
	edits.Record(base, StatusPatch(models.AttendanceStatusAbsent))
	source.err = errors.New("read timeout")

	require.NoError(t, gate.Submit(context.Background(), PathAttendance))
	assert.Len(t, submitter.payloads, 1)
	assert.Zero(t, edits.Len())
}

func TestGatePassesThroughServerConflict(t *testing.T) {
	gate, edits, store, _, submitter := newGateFixture(t, roster(2, "2024-08-02"), "2024-08-02")
	submitter.err = &ConflictError{IDs: []string{"u1", "u9"}}
	base, _ := store.Get("u1")
	edits.Record(base, ShiftPatch(models.ShiftNight))

	err := gate.Submit(context.Background(), PathShiftScheduling)
	var conflictErr *ConflictError
	require.ErrorAs(t, err, &conflictErr)
	assert.Equal(t, StateConflictBlocked, gate.State())
	assert.Equal(t, 1, edits.Len())
}
