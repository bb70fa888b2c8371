package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/staff-attendance/internal/models"
	appErrors "github.com/noah-isme/staff-attendance/pkg/errors"
)

type staffRepository interface {
	List(ctx context.Context, filter models.StaffFilter) ([]models.StaffMember, int, error)
}

// StaffListRequest filters the roster listing.
type StaffListRequest struct {
	Department string `form:"department" validate:"omitempty,department"`
	Role       string `form:"role" validate:"omitempty,staff_role"`
	Search     string `form:"search" validate:"omitempty,max=100"`
	Page       int    `form:"page" validate:"omitempty,min=1"`
	PageSize   int    `form:"limit" validate:"omitempty,min=1,max=200"`
}

// StaffService exposes the staff roster.
type StaffService struct {
	repo      staffRepository
	validator *validator.Validate
	metrics   *MetricsService
	logger    *zap.Logger
}

// NewStaffService constructs a StaffService.
func NewStaffService(repo staffRepository, validate *validator.Validate, metrics *MetricsService, logger *zap.Logger) *StaffService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	registerVocabulary(validate)
	return &StaffService{repo: repo, validator: validate, metrics: metrics, logger: logger}
}

// List returns active staff members with pagination metadata.
func (s *StaffService) List(ctx context.Context, req StaffListRequest) ([]models.StaffMember, *models.Pagination, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, nil, appErrors.Invalid(err, "invalid staff query")
	}
	page := req.Page
	if page < 1 {
		page = 1
	}
	size := req.PageSize
	if size <= 0 {
		size = 50
	}

	start := time.Now()
	staff, total, err := s.repo.List(ctx, models.StaffFilter{
		Department: models.Department(req.Department),
		Role:       models.Role(req.Role),
		Search:     req.Search,
		ActiveOnly: true,
		Page:       page,
		PageSize:   size,
	})
	s.metrics.ObserveDBQuery("staff_list", time.Since(start))
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list staff")
	}
	return staff, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}
