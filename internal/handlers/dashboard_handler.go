package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/course-marketplace/internal/services"
	"github.com/SAP-F-2025/course-marketplace/internal/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type DashboardHandler struct {
	BaseHandler
	service services.DashboardService
	reports services.ReportService
}

func NewDashboardHandler(service services.DashboardService, reports services.ReportService, logger utils.Logger) *DashboardHandler {
	return &DashboardHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
		reports:     reports,
	}
}

// ===== DASHBOARD ENDPOINTS =====

// GetInstructorDashboard returns the caller's course and enrollment totals
// @Summary Get instructor dashboard
// @Tags dashboard
// @Produce json
// @Success 200 {object} models.InstructorDashboard
// @Failure 403 {object} ErrorResponse "Caller is not an instructor"
// @Router /dashboard/instructor [get]
func (h *DashboardHandler) GetInstructorDashboard(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Getting instructor dashboard")

	stats, err := h.service.GetInstructorDashboard(c.Request.Context(), principal.AccountID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GetAdminDashboard returns platform-wide totals
// @Summary Get admin dashboard
// @Tags dashboard
// @Produce json
// @Success 200 {object} models.AdminDashboard
// @Router /dashboard/admin [get]
func (h *DashboardHandler) GetAdminDashboard(c *gin.Context) {
	h.LogRequest(c, "Getting admin dashboard")

	stats, err := h.service.GetAdminDashboard(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// ExportApplications downloads instructor applications as a workbook
// @Summary Export instructor applications
// @Tags dashboard
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param status query string false "pending, approved or rejected"
// @Router /admin/applications/export [get]
func (h *DashboardHandler) ExportApplications(c *gin.Context) {
	h.LogRequest(c, "Exporting instructor applications")

	// Buffered so a failure mid-export still gets a JSON error
	var buf bytes.Buffer
	if err := h.reports.ExportApplications(c.Request.Context(), parseApplicationParams(c), &buf); err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("instructor-applications-%s.xlsx", time.Now().UTC().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
