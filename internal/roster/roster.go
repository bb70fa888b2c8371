// Package roster provides offline attendance sources: a JSON fixture file and
// a local SQLite database. Both materialise a default Present record for every
// active staff member on every day in scope and overlay what was stored.
package roster

import (
	"fmt"
	"sort"
	"time"

	"github.com/noah-isme/staff-attendance/internal/models"
	"github.com/noah-isme/staff-attendance/internal/tracker"
)

func scopeDates(scope tracker.Scope, today time.Time) ([]string, error) {
	if scope.Kind == tracker.ScopeDate {
		if _, err := tracker.ParseDate(scope.Date); err != nil {
			return nil, err
		}
		return []string{scope.Date}, nil
	}
	dates := make([]string, 0, scope.Days+1)
	for d := scope.Days; d >= 0; d-- {
		dates = append(dates, today.AddDate(0, 0, -d).Format(models.DateLayout))
	}
	return dates, nil
}

func materialize(members []models.StaffMember, dates []string, stored map[string]models.AttendanceRecord) []models.AttendanceRecord {
	records := make([]models.AttendanceRecord, 0, len(members)*len(dates))
	for _, date := range dates {
		for _, member := range members {
			record := models.NewAttendanceRecord(member, date)
			if saved, ok := stored[record.ID]; ok {
				record.Shift = saved.Shift
				record.Status = saved.Status
				record.Remarks = saved.Remarks
			}
			records = append(records, record)
		}
	}
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Date != records[j].Date {
			return records[i].Date > records[j].Date
		}
		return records[i].Name < records[j].Name
	})
	return records
}

func validateMember(m models.StaffMember) error {
	switch {
	case m.ID == "":
		return fmt.Errorf("staff %q has no id", m.StaffID)
	case !m.Department.Valid():
		return fmt.Errorf("staff %s: unknown department %q", m.ID, m.Department)
	case !m.Role.Valid():
		return fmt.Errorf("staff %s: unknown role %q", m.ID, m.Role)
	case !m.ShiftPreference.Valid():
		return fmt.Errorf("staff %s: unknown shift %q", m.ID, m.ShiftPreference)
	}
	return nil
}

func validateRecord(r models.AttendanceRecord) error {
	if _, err := tracker.ParseDate(r.Date); err != nil {
		return fmt.Errorf("record %s: %w", r.ID, err)
	}
	if !r.Shift.Valid() {
		return fmt.Errorf("record %s: unknown shift %q", r.ID, r.Shift)
	}
	if !r.Status.Valid() {
		return fmt.Errorf("record %s: unknown status %q", r.ID, r.Status)
	}
	return nil
}

func today(clock func() time.Time) time.Time {
	now := clock()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
