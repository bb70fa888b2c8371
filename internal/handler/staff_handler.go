package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/staff-attendance/internal/models"
	"github.com/noah-isme/staff-attendance/internal/service"
	appErrors "github.com/noah-isme/staff-attendance/pkg/errors"
	"github.com/noah-isme/staff-attendance/pkg/response"
)

type staffService interface {
	List(ctx context.Context, req service.StaffListRequest) ([]models.StaffMember, *models.Pagination, error)
}

// StaffHandler exposes the roster.
type StaffHandler struct {
	service staffService
}

// NewStaffHandler constructs a StaffHandler.
func NewStaffHandler(svc staffService) *StaffHandler {
	return &StaffHandler{service: svc}
}

// List godoc
// @Summary List staff members
// @Tags Staff
// @Produce json
// @Param department query string false "Department"
// @Param role query string false "Role"
// @Param search query string false "Name or staff ID"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /staff [get]
func (h *StaffHandler) List(c *gin.Context) {
	var req service.StaffListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, appErrors.Invalid(err, "invalid query parameters"))
		return
	}
	staff, pagination, err := h.service.List(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, staff, pagination)
}
