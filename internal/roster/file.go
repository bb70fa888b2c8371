package roster

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/noah-isme/staff-attendance/internal/models"
	"github.com/noah-isme/staff-attendance/internal/tracker"
)

type fileStaff struct {
	models.StaffMember
	Active *bool `json:"active,omitempty"`
}

type fileContents struct {
	Staff      []fileStaff               `json:"staff"`
	Attendance []models.AttendanceRecord `json:"attendance,omitempty"`
}

// FileSource reads a JSON roster fixture and stores submissions back into it.
// Staff without an "active" key are active.
type FileSource struct {
	path  string
	clock func() time.Time
	mu    sync.Mutex
}

// NewFileSource opens the fixture at path lazily. A nil clock uses time.Now.
func NewFileSource(path string, clock func() time.Time) *FileSource {
	if clock == nil {
		clock = time.Now
	}
	return &FileSource{path: path, clock: clock}
}

// Load implements tracker.Source.
func (s *FileSource) Load(ctx context.Context, q tracker.Query) ([]models.AttendanceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	contents, err := s.read()
	if err != nil {
		return nil, err
	}
	dates, err := scopeDates(q.Scope, today(s.clock))
	if err != nil {
		return nil, err
	}

	members := make([]models.StaffMember, 0, len(contents.Staff))
	for _, staff := range contents.Staff {
		if staff.Active != nil && !*staff.Active {
			continue
		}
		if err := validateMember(staff.StaffMember); err != nil {
			return nil, fmt.Errorf("roster %s: %w", s.path, err)
		}
		members = append(members, staff.StaffMember)
	}
	stored := make(map[string]models.AttendanceRecord, len(contents.Attendance))
	for _, r := range contents.Attendance {
		stored[r.ID] = r
	}
	return materialize(members, dates, stored), nil
}

// Submit implements tracker.Submitter by upserting records into the file.
func (s *FileSource) Submit(ctx context.Context, records []models.AttendanceRecord) error {
	for _, r := range records {
		if err := validateRecord(r); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	contents, err := s.read()
	if err != nil {
		return err
	}
	index := make(map[string]int, len(contents.Attendance))
	for i, r := range contents.Attendance {
		index[r.ID] = i
	}
	for _, r := range records {
		if i, ok := index[r.ID]; ok {
			contents.Attendance[i] = r
			continue
		}
		index[r.ID] = len(contents.Attendance)
		contents.Attendance = append(contents.Attendance, r)
	}
	return s.write(contents)
}

// Staff returns every staff member in the fixture.
func (s *FileSource) Staff() ([]models.StaffMember, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	contents, err := s.read()
	if err != nil {
		return nil, err
	}
	members := make([]models.StaffMember, 0, len(contents.Staff))
	for _, staff := range contents.Staff {
		member := staff.StaffMember
		member.Active = staff.Active == nil || *staff.Active
		members = append(members, member)
	}
	return members, nil
}

func (s *FileSource) read() (*fileContents, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("roster file %s not found", s.path)
		}
		return nil, fmt.Errorf("read roster %s: %w", s.path, err)
	}
	var contents fileContents
	if err := json.Unmarshal(raw, &contents); err != nil {
		return nil, fmt.Errorf("parse roster %s: %w", s.path, err)
	}
	return &contents, nil
}

func (s *FileSource) write(contents *fileContents) error {
	payload, err := json.MarshalIndent(contents, "", "  ")
	if err != nil {
		return fmt.Errorf("encode roster: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".roster-*.json")
	if err != nil {
		return fmt.Errorf("write roster %s: %w", s.path, err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck
	if _, err := tmp.Write(append(payload, '\n')); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write roster %s: %w", s.path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write roster %s: %w", s.path, err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace roster %s: %w", s.path, err)
	}
	return nil
}
