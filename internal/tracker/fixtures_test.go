package tracker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/noah-isme/staff-attendance/internal/models"
)

func fixedClock(date string) func() time.Time {
	t, err := time.Parse(models.DateLayout, date)
	if err != nil {
		panic(err)
	}
	t = t.Add(9 * time.Hour)
	return func() time.Time { return t }
}

func record(id, date string, dept models.Department, role models.Role, shift models.Shift) models.AttendanceRecord {
	return models.AttendanceRecord{
		ID:            id,
		StaffMemberID: "staff-" + id,
		Name:          "Staff " + id,
		StaffID:       "EMP-" + id,
		Department:    dept,
		Role:          role,
		Date:          date,
		Shift:         shift,
		Status:        models.AttendanceStatusPresent,
	}
}

func roster(n int, date string) []models.AttendanceRecord {
	out := make([]models.AttendanceRecord, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, record(fmt.Sprintf("u%d", i), date, models.DepartmentNursing, models.RoleNurse, models.ShiftMorning))
	}
	return out
}

type fakeSource struct {
	mu      sync.Mutex
	records []models.AttendanceRecord
	err     error
	calls   int
	queries []Query
}

func (f *fakeSource) Load(_ context.Context, q Query) ([]models.AttendanceRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.queries = append(f.queries, q)
	if f.err != nil {
		return nil, f.err
	}
	out := make([]models.AttendanceRecord, 0, len(f.records))
	for _, r := range f.records {
		if MatchesSearch(r, q.Search) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeSource) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeSubmitter struct {
	err      error
	payloads [][]models.AttendanceRecord
}

func (f *fakeSubmitter) Submit(_ context.Context, records []models.AttendanceRecord) error {
	f.payloads = append(f.payloads, records)
	return f.err
}
