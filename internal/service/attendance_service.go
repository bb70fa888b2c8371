package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/staff-attendance/internal/dto"
	"github.com/noah-isme/staff-attendance/internal/models"
	"github.com/noah-isme/staff-attendance/internal/tracker"
	appErrors "github.com/noah-isme/staff-attendance/pkg/errors"
	"github.com/noah-isme/staff-attendance/pkg/export"
)

const (
	attendanceCachePrefix = "attendance"
	defaultListPageSize   = 20
	exportPageSize        = 200
	maxBatchSize          = 1000
)

type attendanceRepository interface {
	List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, int, error)
	BulkUpsert(ctx context.Context, items []models.AttendanceUpsert) error
	Summary(ctx context.Context, filter models.AttendanceFilter) (*models.AttendanceSummary, error)
}

type staffLookup interface {
	FindByIDs(ctx context.Context, ids []string) (map[string]models.StaffMember, error)
}

// AttendanceConfig tunes the attendance service.
type AttendanceConfig struct {
	CacheTTL            time.Duration
	MaxPageSize         int
	ScheduleHorizonDays int
	Clock               func() time.Time
}

// AttendanceService lists, stores, summarises and exports staff attendance.
type AttendanceService struct {
	repo      attendanceRepository
	staff     staffLookup
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	renderers map[export.Format]export.Renderer
	cfg       AttendanceConfig
}

// NewAttendanceService constructs the attendance service.
func NewAttendanceService(repo attendanceRepository, staff staffLookup, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, cfg AttendanceConfig) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxPageSize <= 0 {
		cfg.MaxPageSize = 200
	}
	if cfg.ScheduleHorizonDays <= 0 {
		cfg.ScheduleHorizonDays = 7
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	registerVocabulary(validate)
	return &AttendanceService{
		repo:      repo,
		staff:     staff,
		cache:     cache,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		renderers: export.Renderers(),
		cfg:       cfg,
	}
}

// ListAttendanceRequest selects a scope and filters. Date picks a roster day;
// From/To or Days pick stored rows; with none of them today's roster is used.
type ListAttendanceRequest struct {
	Date       string `form:"date" validate:"omitempty,datetime=2006-01-02"`
	From       string `form:"from" validate:"omitempty,datetime=2006-01-02"`
	To         string `form:"to" validate:"omitempty,datetime=2006-01-02"`
	Days       int    `form:"days" validate:"omitempty,min=0,max=366"`
	Search     string `form:"search" validate:"omitempty,max=100"`
	Department string `form:"department" validate:"omitempty,department"`
	Role       string `form:"role" validate:"omitempty,staff_role"`
	Shift      string `form:"shift" validate:"omitempty,shift"`
	Status     string `form:"status" validate:"omitempty,attendance_status"`
	Page       int    `form:"page" validate:"omitempty,min=1"`
	Limit      int    `form:"limit" validate:"omitempty,min=1"`
	SortBy     string `form:"sortBy" validate:"omitempty,oneof=name staff_id department role shift status date"`
	SortOrder  string `form:"sortOrder" validate:"omitempty,oneof=asc desc ASC DESC"`
}

// AttendanceUpdateItem is one fully materialised record in a PUT batch.
// Department and role are taken from the roster, not from the payload.
type AttendanceUpdateItem struct {
	ID            string `json:"id"`
	StaffMemberID string `json:"staff_member_id" validate:"required"`
	Date          string `json:"date" validate:"required,datetime=2006-01-02"`
	Shift         string `json:"shift" validate:"required,shift"`
	Status        string `json:"status" validate:"required,attendance_status"`
	Remarks       string `json:"remarks" validate:"max=500"`
}

// List returns one page of attendance. The boolean reports a cache hit.
func (s *AttendanceService) List(ctx context.Context, req ListAttendanceRequest) (*dto.AttendanceList, bool, error) {
	filter, _, _, err := s.resolveFilter(req)
	if err != nil {
		return nil, false, err
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = defaultListPageSize
	}
	if filter.PageSize > s.cfg.MaxPageSize {
		filter.PageSize = s.cfg.MaxPageSize
	}

	key := makeCacheKey(attendanceCachePrefix, "list",
		formatDate(filter.Date), formatDate(filter.DateFrom), formatDate(filter.DateTo),
		strings.ToLower(filter.Search), string(filter.Department), string(filter.Role),
		string(filter.Shift), string(filter.Status),
		strconv.Itoa(filter.Page), strconv.Itoa(filter.PageSize), filter.SortBy, strings.ToLower(filter.SortOrder))

	list, hit, err := cached(ctx, s.cache, key, s.cfg.CacheTTL, func(ctx context.Context) (dto.AttendanceList, error) {
		start := time.Now()
		records, total, err := s.repo.List(ctx, filter)
		s.metrics.ObserveDBQuery("attendance_list", time.Since(start))
		if err != nil {
			return dto.AttendanceList{}, err
		}
		if records == nil {
			records = []models.AttendanceRecord{}
		}
		return dto.AttendanceList{
			Records:    records,
			Pagination: models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total},
		}, nil
	})
	if err != nil {
		return nil, false, appErrors.Internal(err, "failed to list attendance")
	}
	return &list, hit, nil
}

// Update validates and stores a batch of records atomically. Future-dated
// records must keep the Present status, stay within the scheduling horizon,
// and must not share a (date, department, role, shift) slot within the batch.
func (s *AttendanceService) Update(ctx context.Context, items []AttendanceUpdateItem, claims *models.JWTClaims) (*dto.AttendanceUpdateResult, error) {
	if len(items) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "at least one attendance record is required")
	}
	if len(items) > maxBatchSize {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("at most %d records per request", maxBatchSize))
	}

	dates, err := s.validateItems(items)
	if err != nil {
		s.metrics.RecordSubmission(SubmissionInvalid, len(items))
		return nil, err
	}

	members, err := s.lookupStaff(ctx, items)
	if err != nil {
		s.metrics.RecordSubmission(SubmissionInvalid, len(items))
		return nil, err
	}

	today := s.today()
	upserts := make([]models.AttendanceUpsert, 0, len(items))
	scheduled := make([]models.AttendanceRecord, 0)
	submittedID := make(map[string]string)
	var updatedBy *string
	if id := claims.UserID(); id != "" {
		updatedBy = &id
	}
	for i, item := range items {
		member := members[item.StaffMemberID]
		record := models.NewAttendanceRecord(member, item.Date)
		record.Shift = models.Shift(item.Shift)
		record.Status = models.AttendanceStatus(item.Status)
		record.Remarks = item.Remarks
		if dates[i].After(today) {
			scheduled = append(scheduled, record)
			submittedID[record.ID] = item.ID
		}
		upserts = append(upserts, models.AttendanceUpsert{
			ID:            record.ID,
			StaffMemberID: record.StaffMemberID,
			Date:          dates[i],
			Shift:         record.Shift,
			Status:        record.Status,
			Remarks:       record.Remarks,
			UpdatedBy:     updatedBy,
		})
	}

	if conflicts := tracker.DetectRecords(scheduled); conflicts.Len() > 0 {
		ids := make([]string, 0, conflicts.Len())
		for _, id := range conflicts.IDs() {
			if original := submittedID[id]; original != "" {
				id = original
			}
			ids = append(ids, id)
		}
		sort.Strings(ids)
		s.metrics.RecordSubmission(SubmissionConflict, len(ids))
		s.logger.Info("shift assignment conflict", zap.Int("records", len(ids)))
		return nil, appErrors.WithDetails(appErrors.ErrScheduleConflict,
			"scheduling conflict: staff with the same department and role share a shift",
			dto.ConflictDetails{ConflictIDs: ids})
	}

	start := time.Now()
	err = s.repo.BulkUpsert(ctx, upserts)
	s.metrics.ObserveDBQuery("attendance_upsert", time.Since(start))
	if err != nil {
		s.metrics.RecordSubmission(SubmissionFailed, len(upserts))
		return nil, appErrors.Internal(err, "failed to store attendance")
	}
	s.metrics.RecordSubmission(SubmissionAccepted, len(upserts))

	if err := s.cache.Invalidate(ctx, attendanceCachePrefix+":*"); err != nil {
		s.logger.Warn("attendance cache not invalidated", zap.Error(err))
	}
	return &dto.AttendanceUpdateResult{Processed: len(items), Updated: len(upserts)}, nil
}

// Summary counts statuses for the requested scope.
func (s *AttendanceService) Summary(ctx context.Context, req ListAttendanceRequest) (*models.AttendanceSummary, error) {
	filter, from, to, err := s.resolveFilter(req)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	summary, err := s.repo.Summary(ctx, filter)
	s.metrics.ObserveDBQuery("attendance_summary", time.Since(start))
	if err != nil {
		return nil, appErrors.Internal(err, "failed to summarise attendance")
	}
	summary.From = from
	summary.To = to
	return summary, nil
}

// Export renders every record in scope in the requested format.
func (s *AttendanceService) Export(ctx context.Context, req ListAttendanceRequest, format string) (*dto.ExportFile, error) {
	f, err := export.ParseFormat(format)
	if err != nil {
		return nil, appErrors.Invalid(err, err.Error())
	}
	filter, from, to, err := s.resolveFilter(req)
	if err != nil {
		return nil, err
	}

	var records []models.AttendanceRecord
	filter.PageSize = exportPageSize
	for filter.Page = 1; ; filter.Page++ {
		page, total, err := s.repo.List(ctx, filter)
		if err != nil {
			return nil, appErrors.Internal(err, "failed to load attendance for export")
		}
		records = append(records, page...)
		if len(page) == 0 || len(records) >= total {
			break
		}
	}

	title := "Staff attendance " + from
	if to != from {
		title += " to " + to
	}
	dataset := export.Dataset{
		Title:   title,
		Headers: []string{"Staff ID", "Name", "Department", "Role", "Date", "Shift", "Status", "Remarks"},
		Rows:    make([][]string, 0, len(records)),
	}
	for _, r := range records {
		dataset.Rows = append(dataset.Rows, []string{
			r.StaffID, r.Name, string(r.Department), string(r.Role), r.Date, string(r.Shift), string(r.Status), r.Remarks,
		})
	}

	payload, err := s.renderers[f].Render(dataset)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to render export")
	}
	filename := fmt.Sprintf("attendance_%s", from)
	if to != from {
		filename += "_" + to
	}
	return &dto.ExportFile{
		Filename:    filename + "." + string(f),
		ContentType: f.ContentType(),
		Payload:     payload,
	}, nil
}

func (s *AttendanceService) resolveFilter(req ListAttendanceRequest) (models.AttendanceFilter, string, string, error) {
	if err := s.validator.Struct(req); err != nil {
		return models.AttendanceFilter{}, "", "", appErrors.Invalid(err, "invalid attendance query")
	}
	filter := models.AttendanceFilter{
		Search:     strings.TrimSpace(req.Search),
		Department: models.Department(req.Department),
		Role:       models.Role(req.Role),
		Shift:      models.Shift(req.Shift),
		Status:     models.AttendanceStatus(req.Status),
		Page:       req.Page,
		PageSize:   req.Limit,
		SortBy:     req.SortBy,
		SortOrder:  req.SortOrder,
	}

	today := s.today()
	switch {
	case req.Date != "":
		day, _ := time.Parse(models.DateLayout, req.Date)
		filter.Date = &day
		return filter, req.Date, req.Date, nil
	case req.From != "" || req.To != "":
		from, to := today, today
		if req.From != "" {
			from, _ = time.Parse(models.DateLayout, req.From)
		}
		if req.To != "" {
			to, _ = time.Parse(models.DateLayout, req.To)
		}
		if from.After(to) {
			return models.AttendanceFilter{}, "", "", appErrors.Clone(appErrors.ErrValidation, "from must not be after to")
		}
		filter.DateFrom, filter.DateTo = &from, &to
		return filter, from.Format(models.DateLayout), to.Format(models.DateLayout), nil
	case req.Days > 0:
		from := today.AddDate(0, 0, -req.Days)
		to := today
		filter.DateFrom, filter.DateTo = &from, &to
		return filter, from.Format(models.DateLayout), to.Format(models.DateLayout), nil
	default:
		filter.Date = &today
		day := today.Format(models.DateLayout)
		return filter, day, day, nil
	}
}

func (s *AttendanceService) validateItems(items []AttendanceUpdateItem) ([]time.Time, error) {
	today := s.today()
	horizon := today.AddDate(0, 0, s.cfg.ScheduleHorizonDays)
	dates := make([]time.Time, len(items))
	seen := make(map[string]int, len(items))
	var violations []dto.FieldViolation

	for i, item := range items {
		if err := s.validator.Struct(item); err != nil {
			var fieldErrs validator.ValidationErrors
			if errors.As(err, &fieldErrs) {
				for _, fe := range fieldErrs {
					violations = append(violations, dto.FieldViolation{Index: i, Field: jsonFieldName(fe.Field()), Reason: fe.Tag()})
				}
				continue
			}
			return nil, appErrors.Invalid(err, "invalid attendance payload")
		}
		date, _ := time.Parse(models.DateLayout, item.Date)
		dates[i] = date

		key := item.StaffMemberID + "|" + item.Date
		if first, dup := seen[key]; dup {
			violations = append(violations, dto.FieldViolation{Index: i, Field: "date", Reason: fmt.Sprintf("duplicates record %d", first)})
			continue
		}
		seen[key] = i

		if date.After(today) {
			if models.AttendanceStatus(item.Status) != models.AttendanceStatusPresent {
				violations = append(violations, dto.FieldViolation{Index: i, Field: "status", Reason: "status cannot be recorded for a future date"})
			}
			if date.After(horizon) {
				violations = append(violations, dto.FieldViolation{Index: i, Field: "date", Reason: fmt.Sprintf("beyond the %d day scheduling horizon", s.cfg.ScheduleHorizonDays)})
			}
		}
	}

	if len(violations) > 0 {
		return nil, appErrors.WithDetails(appErrors.ErrValidation, "invalid attendance records", violations)
	}
	return dates, nil
}

func (s *AttendanceService) lookupStaff(ctx context.Context, items []AttendanceUpdateItem) (map[string]models.StaffMember, error) {
	ids := make([]string, 0, len(items))
	unique := make(map[string]struct{}, len(items))
	for _, item := range items {
		if _, ok := unique[item.StaffMemberID]; ok {
			continue
		}
		unique[item.StaffMemberID] = struct{}{}
		ids = append(ids, item.StaffMemberID)
	}

	members, err := s.staff.FindByIDs(ctx, ids)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load staff")
	}
	var violations []dto.FieldViolation
	for i, item := range items {
		if _, ok := members[item.StaffMemberID]; !ok {
			violations = append(violations, dto.FieldViolation{Index: i, Field: "staff_member_id", Reason: "unknown staff member"})
		}
	}
	if len(violations) > 0 {
		return nil, appErrors.WithDetails(appErrors.ErrUnknownStaff, "", violations)
	}
	return members, nil
}

// today is midnight UTC of the service clock's calendar day.
func (s *AttendanceService) today() time.Time {
	now := s.cfg.Clock()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(models.DateLayout)
}

func jsonFieldName(field string) string {
	switch field {
	case "StaffMemberID":
		return "staff_member_id"
	default:
		return strings.ToLower(field)
	}
}
