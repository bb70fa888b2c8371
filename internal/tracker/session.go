package tracker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/staff-attendance/internal/models"
)

// Mode selects whether the session accepts edits.
type Mode string

const (
	ModeEntry Mode = "entry"
	ModeView  Mode = "view"
)

const (
	defaultPageSize    = 20
	defaultWindowDays  = 30
	defaultSearchDelay = 500 * time.Millisecond
)

// SessionConfig wires a Session.
type SessionConfig struct {
	Source    Source
	Submitter Submitter
	Logger    *zap.Logger
	Clock     func() time.Time
	PageSize  int
	// WindowDays is the rolling window loaded when switching to view mode.
	WindowDays int
	// RemoteSearch re-queries the source, debounced by SearchDelay, whenever
	// the search term changes. Without it search is applied locally only.
	RemoteSearch bool
	SearchDelay  time.Duration
}

// Row is a rendered record with its edit and conflict markers.
type Row struct {
	models.AttendanceRecord
	Edited   bool
	Conflict bool
}

// PageView is one rendered page.
type PageView struct {
	Rows       []Row
	Page       int
	TotalPages int
	Total      int
	HasPrev    bool
	HasNext    bool
	Scope      Scope
	Mode       Mode
	Path       EditPath
	Pending    int
	Conflicts  int
}

type groupFocus struct {
	department models.Department
	role       models.Role
}

// Session is the reconciliation state shared by every front end: the loaded
// scope, search and filters, the current page, pending edits, and the last
// detected conflicts. All methods are safe for concurrent use.
type Session struct {
	mu sync.Mutex

	store     *RecordStore
	edits     *EditTracker
	gate      *Gate
	debouncer *Debouncer
	logger    *zap.Logger
	clock     func() time.Time

	ctx    context.Context
	cancel context.CancelFunc

	pageSize      int
	windowDays    int
	mode          Mode
	search        string
	filters       Filters
	page          int
	conflicts     ConflictSet
	conflictsOnly bool
	focus         *groupFocus
	searchErr     error
	closed        bool
}

// NewSession builds a session in entry mode. Nothing is loaded until
// LoadDate, LoadWindow or SetMode is called.
func NewSession(cfg SessionConfig) *Session {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	windowDays := cfg.WindowDays
	if windowDays <= 0 {
		windowDays = defaultWindowDays
	}

	store := NewRecordStore(cfg.Source, clock)
	edits := NewEditTracker()
	ctx, cancel := context.WithCancel(context.Background())

	s := &Session{
		store:      store,
		edits:      edits,
		gate:       NewGate(edits, store, cfg.Submitter, logger),
		logger:     logger,
		clock:      clock,
		ctx:        ctx,
		cancel:     cancel,
		pageSize:   pageSize,
		windowDays: windowDays,
		mode:       ModeEntry,
		filters:    make(Filters),
		page:       1,
	}
	if cfg.RemoteSearch {
		delay := cfg.SearchDelay
		if delay <= 0 {
			delay = defaultSearchDelay
		}
		s.debouncer = NewDebouncer(delay, s.remoteSearch)
	}
	s.gate.ScheduleFilter(s.scheduledEdit)
	return s
}

// Close stops the search debouncer and cancels in-flight debounced loads.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	if s.debouncer != nil {
		s.debouncer.Stop()
	}
	s.cancel()
}

// Mode returns the current mode.
func (s *Session) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// SetMode switches mode and loads its default scope: today for entry, the
// rolling window for view.
func (s *Session) SetMode(ctx context.Context, mode Mode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch mode {
	case ModeEntry:
		s.mode = mode
		return s.load(ctx, SpecificDate(s.today()))
	case ModeView:
		s.mode = mode
		return s.load(ctx, RollingWindow(s.windowDays))
	default:
		return fmt.Errorf("unknown mode %q", mode)
	}
}

// LoadDate replaces the view with one calendar day.
func (s *Session) LoadDate(ctx context.Context, date string) error {
	if _, err := ParseDate(date); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx, SpecificDate(date))
}

// LoadWindow replaces the view with the last days days.
func (s *Session) LoadWindow(ctx context.Context, days int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx, RollingWindow(days))
}

// Reload re-runs the current query.
func (s *Session) Reload(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx, s.store.Query().Scope)
}

// Scope returns the loaded scope.
func (s *Session) Scope() Scope {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Query().Scope
}

// SetSearch changes the search term and returns to page 1. With remote search
// enabled a debounced reload follows.
func (s *Session) SetSearch(term string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.search = term
	s.page = 1
	if s.debouncer != nil && !s.closed {
		s.debouncer.Trigger(term)
	}
}

// Search returns the current search term.
func (s *Session) Search() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.search
}

// SearchErr returns the error of the last debounced search, if any.
func (s *Session) SearchErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.searchErr
}

// SetFilter constrains field to value; an empty value clears it. Returns to page 1.
func (s *Session) SetFilter(field Field, value string) error {
	if _, err := ParseField(string(field)); err != nil {
		return err
	}
	if value != "" && !field.Allows(value) {
		return fmt.Errorf("%w: %s=%q", ErrInvalidValue, field, value)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if value == "" {
		delete(s.filters, field)
	} else {
		s.filters[field] = value
	}
	s.page = 1
	return nil
}

// ClearFilters drops every filter and returns to page 1.
func (s *Session) ClearFilters() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters = make(Filters)
	s.page = 1
}

// Filters returns a copy of the active filters.
func (s *Session) Filters() Filters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filters.Clone()
}

// NextPage advances one page. It returns false on the last page.
func (s *Session) NextPage() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, total := Page(s.visible(), s.pageSize, s.page)
	if s.page >= total {
		return false
	}
	s.page++
	return true
}

// PrevPage goes back one page. It returns false on the first page.
func (s *Session) PrevPage() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.page <= 1 {
		return false
	}
	s.page--
	return true
}

// GoToPage jumps to page n when it exists.
func (s *Session) GoToPage(n int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := TotalPages(len(s.visible()), s.pageSize)
	if n < 1 || n > total {
		return false
	}
	s.page = n
	return true
}

// ShowConflictsOnly restricts the view to the last detected conflicts.
func (s *Session) ShowConflictsOnly(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conflictsOnly = on
	s.page = 1
}

// ClearFocus drops the department/role focus set by a scheduling edit.
func (s *Session) ClearFocus() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.focus = nil
	s.page = 1
}

// View renders the current page.
func (s *Session) View() PageView {
	s.mu.Lock()
	defer s.mu.Unlock()

	visible := s.visible()
	records, totalPages := Page(visible, s.pageSize, s.page)
	rows := make([]Row, 0, len(records))
	for _, r := range records {
		rows = append(rows, Row{
			AttendanceRecord: r,
			Edited:           s.edits.Has(r.ID),
			Conflict:         s.conflicts.Has(r.ID),
		})
	}
	return PageView{
		Rows:       rows,
		Page:       s.page,
		TotalPages: totalPages,
		Total:      len(visible),
		HasPrev:    s.page > 1,
		HasNext:    s.page < totalPages,
		Scope:      s.store.Query().Scope,
		Mode:       s.mode,
		Path:       s.editPath(),
		Pending:    s.edits.Len(),
		Conflicts:  s.conflicts.Len(),
	}
}

// Record returns the current state of a loaded record.
func (s *Session) Record(id string) (models.AttendanceRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Get(id)
}

// Find returns the first loaded record whose id equals ref or whose staff ID
// matches ref case-insensitively.
func (s *Session) Find(ref string) (models.AttendanceRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.store.Get(ref); ok {
		return r, true
	}
	for _, r := range s.store.Records() {
		if strings.EqualFold(r.StaffID, ref) {
			return r, true
		}
	}
	return models.AttendanceRecord{}, false
}

// Records returns every record passing the current search, filters and
// focus, across all pages.
func (s *Session) Records() []models.AttendanceRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.AttendanceRecord(nil), s.visible()...)
}

// SetStatus records an attendance status edit.
func (s *Session) SetStatus(id string, status models.AttendanceStatus) error {
	return s.Edit(id, FieldStatus, string(status))
}

// SetShift records a shift assignment edit.
func (s *Session) SetShift(id string, shift models.Shift) error {
	return s.Edit(id, FieldShift, string(shift))
}

// Edit records a change to an editable field. Unknown ids are ignored.
func (s *Session) Edit(id string, field Field, value string) error {
	p, err := PatchFor(field, value)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mode == ModeView {
		return ErrReadOnlyView
	}
	base, ok := s.store.Get(id)
	if !ok {
		s.logger.Debug("edit for record not in view ignored", zap.String("id", id))
		return nil
	}
	future := s.isFutureDate(base.Date)
	if p.Status != nil && future {
		return ErrStatusOnFutureDate
	}

	s.edits.Record(base, p)
	s.store.Apply(id, p)
	s.gate.Reset()

	if p.Shift != nil && future {
		s.focus = &groupFocus{department: base.Department, role: base.Role}
		s.page = 1
	}
	if s.conflicts.Len() > 0 {
		s.conflicts = Detect(s.scheduledEdits())
	}
	return nil
}

// Pending lists unsubmitted edits in first-edit order.
func (s *Session) Pending() []PendingEdit {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.edits.Pending()
}

// Conflicts returns the conflicts found by the last blocked submission.
func (s *Session) Conflicts() ConflictSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(ConflictSet, len(s.conflicts))
	for id := range s.conflicts {
		out[id] = struct{}{}
	}
	return out
}

// EditPath returns the path the pending edits take on submission. Any edit to
// a future day selects shift scheduling, whichever scope is loaded; with
// nothing pending the loaded scope decides.
func (s *Session) EditPath() EditPath {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editPath()
}

// State returns the submission gate state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gate.State()
}

// Submit sends every pending edit. See Gate.Submit for the outcomes.
func (s *Session) Submit(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.gate.Submit(ctx, s.editPath())
	var conflictErr *ConflictError
	switch {
	case errors.As(err, &conflictErr):
		s.conflicts = make(ConflictSet, len(conflictErr.IDs))
		for _, id := range conflictErr.IDs {
			s.conflicts[id] = struct{}{}
		}
		return err
	case err != nil:
		return err
	}

	s.conflicts = nil
	s.conflictsOnly = false
	s.focus = nil
	s.clampPage()
	return nil
}

// Discard drops all pending edits and reloads the current scope.
func (s *Session) Discard(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.edits.Clear()
	s.conflicts = nil
	s.conflictsOnly = false
	s.focus = nil
	s.gate.Reset()
	if !s.store.Loaded() {
		return nil
	}
	return s.load(ctx, s.store.Query().Scope)
}

func (s *Session) load(ctx context.Context, scope Scope) error {
	q := Query{Scope: scope, Filters: s.filters.Clone()}
	if s.debouncer != nil {
		q.Search = s.search
	}
	if _, err := s.store.Load(ctx, q); err != nil {
		return err
	}
	s.reapplyPending()
	s.page = 1
	s.focus = nil
	s.conflictsOnly = false
	return nil
}

func (s *Session) remoteSearch(term string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || !s.store.Loaded() {
		return
	}
	q := s.store.Query()
	q.Search = term
	q.Filters = s.filters.Clone()
	if _, err := s.store.Load(s.ctx, q); err != nil {
		s.searchErr = err
		s.logger.Warn("search reload failed", zap.String("search", term), zap.Error(err))
		return
	}
	s.searchErr = nil
	s.reapplyPending()
	s.clampPage()
}

// reapplyPending keeps unsubmitted edits visible across reloads. Edits whose
// record came back take the reloaded record as their new base.
func (s *Session) reapplyPending() {
	for _, edit := range s.edits.Pending() {
		if fresh, ok := s.store.Get(edit.ID); ok {
			s.edits.Rebase(fresh)
		}
		s.store.Apply(edit.ID, edit.Patch)
	}
}

func (s *Session) visible() []models.AttendanceRecord {
	records := Visible(s.store.Records(), s.search, s.filters)
	if s.conflictsOnly && s.conflicts.Len() > 0 {
		records = keep(records, func(r models.AttendanceRecord) bool { return s.conflicts.Has(r.ID) })
	}
	if s.focus != nil {
		focus := *s.focus
		records = keep(records, func(r models.AttendanceRecord) bool {
			return r.Department == focus.department && r.Role == focus.role
		})
	}
	return records
}

func (s *Session) clampPage() {
	total := TotalPages(len(s.visible()), s.pageSize)
	if s.page > total {
		s.page = total
	}
	if s.page < 1 {
		s.page = 1
	}
}

func (s *Session) editPath() EditPath {
	if s.edits.Len() > 0 {
		if len(s.scheduledEdits()) > 0 {
			return PathShiftScheduling
		}
		return PathAttendance
	}
	if s.store.Query().Scope.Future(s.clock()) {
		return PathShiftScheduling
	}
	return PathAttendance
}

func (s *Session) scheduledEdit(edit PendingEdit) bool {
	return s.isFutureDate(edit.Base.Date)
}

func (s *Session) scheduledEdits() []PendingEdit {
	return keepEdits(s.edits.Pending(), s.scheduledEdit)
}

func (s *Session) isFutureDate(date string) bool {
	return date > s.today()
}

func (s *Session) today() string {
	return s.clock().Format(models.DateLayout)
}

func keep(records []models.AttendanceRecord, pred func(models.AttendanceRecord) bool) []models.AttendanceRecord {
	out := records[:0]
	for _, r := range records {
		if pred(r) {
			out = append(out, r)
		}
	}
	return out
}

func keepEdits(edits []PendingEdit, pred func(PendingEdit) bool) []PendingEdit {
	out := edits[:0]
	for _, e := range edits {
		if pred(e) {
			out = append(out, e)
		}
	}
	return out
}
