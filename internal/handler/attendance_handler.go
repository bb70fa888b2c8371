package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/staff-attendance/internal/dto"
	"github.com/noah-isme/staff-attendance/internal/middleware"
	"github.com/noah-isme/staff-attendance/internal/models"
	"github.com/noah-isme/staff-attendance/internal/service"
	appErrors "github.com/noah-isme/staff-attendance/pkg/errors"
	"github.com/noah-isme/staff-attendance/pkg/response"
)

type attendanceService interface {
	List(ctx context.Context, req service.ListAttendanceRequest) (*dto.AttendanceList, bool, error)
	Update(ctx context.Context, items []service.AttendanceUpdateItem, claims *models.JWTClaims) (*dto.AttendanceUpdateResult, error)
	Summary(ctx context.Context, req service.ListAttendanceRequest) (*models.AttendanceSummary, error)
	Export(ctx context.Context, req service.ListAttendanceRequest, format string) (*dto.ExportFile, error)
}

// AttendanceHandler exposes attendance listing, submission, summary and export.
type AttendanceHandler struct {
	service attendanceService
}

// NewAttendanceHandler constructs an AttendanceHandler.
func NewAttendanceHandler(svc attendanceService) *AttendanceHandler {
	return &AttendanceHandler{service: svc}
}

// List godoc
// @Summary List attendance records
// @Description Date returns the full roster for that day with unrecorded staff defaulted to Present. From/to or days return stored records only.
// @Tags Attendance
// @Produce json
// @Param date query string false "Roster day (YYYY-MM-DD)"
// @Param from query string false "Range start (YYYY-MM-DD)"
// @Param to query string false "Range end (YYYY-MM-DD)"
// @Param days query int false "Rolling window in days"
// @Param search query string false "Name or staff ID"
// @Param department query string false "Department"
// @Param role query string false "Role"
// @Param shift query string false "Shift"
// @Param status query string false "Status"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Param sortBy query string false "name|staff_id|department|role|shift|status|date"
// @Param sortOrder query string false "asc|desc"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /attendance [get]
func (h *AttendanceHandler) List(c *gin.Context) {
	req, ok := bindAttendanceQuery(c)
	if !ok {
		return
	}
	list, hit, err := h.service.List(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, list.Records, &list.Pagination, middleware.ExtractMeta(c))
}

// Update godoc
// @Summary Submit attendance records
// @Description Stores a batch atomically. Future-dated records that double-book a (department, role, shift) slot are rejected with 409 and error.details.conflict_ids.
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body []service.AttendanceUpdateItem true "Attendance records"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /attendance [put]
func (h *AttendanceHandler) Update(c *gin.Context) {
	var items []service.AttendanceUpdateItem
	if err := c.ShouldBindJSON(&items); err != nil {
		response.Error(c, appErrors.Invalid(err, "invalid attendance payload"))
		return
	}
	middleware.SetMeta(c, "records", len(items))
	claims, _ := currentClaims(c)
	result, err := h.service.Update(c.Request.Context(), items, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil, middleware.ExtractMeta(c))
}

// Summary godoc
// @Summary Attendance totals
// @Tags Attendance
// @Produce json
// @Param date query string false "Roster day (YYYY-MM-DD)"
// @Param from query string false "Range start (YYYY-MM-DD)"
// @Param to query string false "Range end (YYYY-MM-DD)"
// @Param days query int false "Rolling window in days"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /attendance/summary [get]
func (h *AttendanceHandler) Summary(c *gin.Context) {
	req, ok := bindAttendanceQuery(c)
	if !ok {
		return
	}
	summary, err := h.service.Summary(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// Export godoc
// @Summary Export attendance
// @Tags Attendance
// @Produce text/csv
// @Produce application/pdf
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param format query string false "csv|pdf|xlsx"
// @Param date query string false "Roster day (YYYY-MM-DD)"
// @Param from query string false "Range start (YYYY-MM-DD)"
// @Param to query string false "Range end (YYYY-MM-DD)"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /attendance/export [get]
func (h *AttendanceHandler) Export(c *gin.Context) {
	req, ok := bindAttendanceQuery(c)
	if !ok {
		return
	}
	file, err := h.service.Export(c.Request.Context(), req, c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Payload)
}

func bindAttendanceQuery(c *gin.Context) (service.ListAttendanceRequest, bool) {
	var req service.ListAttendanceRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, appErrors.Invalid(err, "invalid query parameters"))
		return req, false
	}
	return req, true
}
