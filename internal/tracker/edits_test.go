package tracker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/staff-attendance/internal/models"
)

func TestEditTrackerMergesFields(t *testing.T) {
	base := record("u1", "2024-06-01", models.DepartmentICU, models.RoleNurse, models.ShiftMorning)
	tracker := NewEditTracker()

	require.NoError(t, tracker.RecordField(base, FieldStatus, "Absent"))
	require.NoError(t, tracker.RecordField(base, FieldShift, "Night"))

	snapshot := tracker.Snapshot()
	require.Len(t, snapshot, 1)
	assert.Equal(t, models.AttendanceStatusAbsent, snapshot[0].Status)
	assert.Equal(t, models.ShiftNight, snapshot[0].Shift)
	assert.Equal(t, base.Name, snapshot[0].Name)
	assert.Equal(t, base.Department, snapshot[0].Department)
}

func TestEditTrackerLaterValueWins(t *testing.T) {
	base := record("u1", "2024-06-01", models.DepartmentICU, models.RoleNurse, models.ShiftMorning)
	tracker := NewEditTracker()

	tracker.Record(base, StatusPatch(models.AttendanceStatusAbsent))
	tracker.Record(base, ShiftPatch(models.ShiftAfternoon))
	tracker.Record(base, StatusPatch(models.AttendanceStatusLeave))

	edit, ok := tracker.Get("u1")
	require.True(t, ok)
	assert.Equal(t, models.AttendanceStatusLeave, *edit.Patch.Status)
	assert.Equal(t, models.ShiftAfternoon, *edit.Patch.Shift)
	assert.Equal(t, 1, tracker.Len())
}

func TestEditTrackerKeepsFirstEditOrder(t *testing.T) {
	tracker := NewEditTracker()
	for _, id := range []string{"u3", "u1", "u2"} {
		tracker.Record(record(id, "2024-06-01", models.DepartmentICU, models.RoleNurse, models.ShiftMorning),
			StatusPatch(models.AttendanceStatusLeave))
	}
	tracker.Record(record("u3", "2024-06-01", models.DepartmentICU, models.RoleNurse, models.ShiftMorning),
		ShiftPatch(models.ShiftNight))

	assert.Equal(t, []string{"u3", "u1", "u2"}, ids(tracker.Snapshot()))

	assert.True(t, tracker.Discard("u1"))
	assert.False(t, tracker.Discard("u1"))
	assert.Equal(t, []string{"u3", "u2"}, ids(tracker.Snapshot()))

	tracker.Clear()
	assert.Zero(t, tracker.Len())
	assert.Empty(t, tracker.Snapshot())
}

func TestEditTrackerIgnoresEmptyPatch(t *testing.T) {
	tracker := NewEditTracker()
	tracker.Record(record("u1", "2024-06-01", models.DepartmentICU, models.RoleNurse, models.ShiftMorning), Patch{})
	assert.False(t, tracker.Has("u1"))
}

func TestRecordFieldRejectsInvalidInput(t *testing.T) {
	tracker := NewEditTracker()
	base := record("u1", "2024-06-01", models.DepartmentICU, models.RoleNurse, models.ShiftMorning)

	assert.ErrorIs(t, tracker.RecordField(base, FieldDepartment, "ICU"), ErrFieldNotEditable)
	assert.ErrorIs(t, tracker.RecordField(base, FieldStatus, "Sick"), ErrInvalidValue)
	assert.Zero(t, tracker.Len())
}

func TestPatchMergeDoesNotAlias(t *testing.T) {
	first := StatusPatch(models.AttendanceStatusAbsent)
	merged := first.Merge(ShiftPatch(models.ShiftNight))
	*merged.Status = models.AttendanceStatusLeave
	assert.Equal(t, models.AttendanceStatusAbsent, *first.Status)
}

func TestEditTrackerRebaseKeepsPatch(t *testing.T) {
	base := record("u1", "2024-06-01", models.DepartmentICU, models.RoleNurse, models.ShiftMorning)
	tracker := NewEditTracker()
	tracker.Record(base, StatusPatch(models.AttendanceStatusLeave))

	fresh := base
	fresh.Remarks = "updated elsewhere"
	assert.True(t, tracker.Rebase(fresh))
	assert.False(t, tracker.Rebase(record("u9", "2024-06-01", models.DepartmentICU, models.RoleNurse, models.ShiftMorning)))

	snapshot := tracker.Snapshot()
	require.Len(t, snapshot, 1)
	assert.Equal(t, models.AttendanceStatusLeave, snapshot[0].Status)
	assert.Equal(t, "updated elsewhere", snapshot[0].Remarks)
}
