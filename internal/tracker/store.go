package tracker

import (
	"context"
	"fmt"
	"time"

	"github.com/noah-isme/staff-attendance/internal/models"
)

// ScopeKind distinguishes a single day from a rolling window.
type ScopeKind int

const (
	ScopeDate ScopeKind = iota
	ScopeWindow
)

// Scope selects which records are loaded.
type Scope struct {
	Kind ScopeKind
	Date string
	Days int
}

// SpecificDate scopes to one calendar day (YYYY-MM-DD).
func SpecificDate(date string) Scope {
	return Scope{Kind: ScopeDate, Date: date}
}

// RollingWindow scopes to [today-days, today], both ends inclusive.
func RollingWindow(days int) Scope {
	if days < 0 {
		days = 0
	}
	return Scope{Kind: ScopeWindow, Days: days}
}

// ParseDate validates a YYYY-MM-DD date.
func ParseDate(value string) (time.Time, error) {
	t, err := time.Parse(models.DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, value)
	}
	return t, nil
}

// Bounds returns the inclusive first and last dates covered by the scope.
func (s Scope) Bounds(today time.Time) (string, string) {
	if s.Kind == ScopeDate {
		return s.Date, s.Date
	}
	return today.AddDate(0, 0, -s.Days).Format(models.DateLayout), today.Format(models.DateLayout)
}

// Contains reports whether date falls within the scope.
func (s Scope) Contains(date string, today time.Time) bool {
	if _, err := ParseDate(date); err != nil {
		return false
	}
	from, to := s.Bounds(today)
	return date >= from && date <= to
}

// Future reports whether the scope is a single day after today.
func (s Scope) Future(today time.Time) bool {
	return s.Kind == ScopeDate && s.Date > today.Format(models.DateLayout)
}

func (s Scope) String() string {
	if s.Kind == ScopeDate {
		return "date " + s.Date
	}
	return fmt.Sprintf("last %d days", s.Days)
}

// Query is what a Source is asked to load.
type Query struct {
	Scope   Scope
	Search  string
	Filters Filters
}

// Source loads attendance records for a query. Implementations may ignore
// Search and Filters; the store applies the scope regardless.
type Source interface {
	Load(ctx context.Context, q Query) ([]models.AttendanceRecord, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context, q Query) ([]models.AttendanceRecord, error)

// Load implements Source.
func (f SourceFunc) Load(ctx context.Context, q Query) ([]models.AttendanceRecord, error) {
	return f(ctx, q)
}

// RecordStore owns the records of the currently loaded scope. Each load
// replaces the view entirely. Not safe for concurrent use.
type RecordStore struct {
	source  Source
	clock   func() time.Time
	query   Query
	loaded  bool
	records []models.AttendanceRecord
	index   map[string]int
}

// NewRecordStore builds a store reading from source. A nil clock uses time.Now.
func NewRecordStore(source Source, clock func() time.Time) *RecordStore {
	if clock == nil {
		clock = time.Now
	}
	return &RecordStore{source: source, clock: clock, index: make(map[string]int)}
}

// Load fetches q and replaces the current view. Records outside the scope and
// repeated ids are dropped. On error the previous view is left untouched.
func (s *RecordStore) Load(ctx context.Context, q Query) ([]models.AttendanceRecord, error) {
	if q.Scope.Kind == ScopeDate {
		if _, err := ParseDate(q.Scope.Date); err != nil {
			return nil, err
		}
	}
	rows, err := s.source.Load(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", q.Scope, err)
	}

	today := s.clock()
	records := make([]models.AttendanceRecord, 0, len(rows))
	index := make(map[string]int, len(rows))
	for _, r := range rows {
		if !q.Scope.Contains(r.Date, today) {
			continue
		}
		if _, dup := index[r.ID]; dup {
			continue
		}
		index[r.ID] = len(records)
		records = append(records, r)
	}

	s.query = q
	s.loaded = true
	s.records = records
	s.index = index
	return s.Records(), nil
}

// Reload re-runs the last query.
func (s *RecordStore) Reload(ctx context.Context) error {
	if !s.loaded {
		return nil
	}
	_, err := s.Load(ctx, s.query)
	return err
}

// Query returns the query behind the current view.
func (s *RecordStore) Query() Query {
	return s.query
}

// Loaded reports whether any load has succeeded.
func (s *RecordStore) Loaded() bool {
	return s.loaded
}

// Records returns a copy of the current view in source order.
func (s *RecordStore) Records() []models.AttendanceRecord {
	return append([]models.AttendanceRecord(nil), s.records...)
}

// Len returns the number of records in view.
func (s *RecordStore) Len() int {
	return len(s.records)
}

// Get returns the record with id.
func (s *RecordStore) Get(id string) (models.AttendanceRecord, bool) {
	i, ok := s.index[id]
	if !ok {
		return models.AttendanceRecord{}, false
	}
	return s.records[i], true
}

// Apply mirrors a local edit into the view. A missing id is a silent no-op.
func (s *RecordStore) Apply(id string, p Patch) bool {
	i, ok := s.index[id]
	if !ok {
		return false
	}
	s.records[i] = p.ApplyTo(s.records[i])
	return true
}
