package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/course-marketplace/internal/authz"
	"github.com/SAP-F-2025/course-marketplace/internal/models"
	"github.com/SAP-F-2025/course-marketplace/internal/services"
	"github.com/SAP-F-2025/course-marketplace/internal/utils"
)

type ApplicationHandler struct {
	BaseHandler
	applicationService services.ApplicationService
}

func NewApplicationHandler(applicationService services.ApplicationService, logger utils.Logger) *ApplicationHandler {
	return &ApplicationHandler{
		BaseHandler:        NewBaseHandler(logger),
		applicationService: applicationService,
	}
}

// SubmitApplication files an instructor application for the caller
// @Summary Apply to teach
// @Tags applications
// @Accept json
// @Param application body models.ApplicationSubmitRequest true "Application"
// @Success 201 {object} models.InstructorApplication
// @Failure 400 {object} ErrorResponse "Invalid or duplicate application"
// @Failure 403 {object} ErrorResponse "Caller is not a student"
// @Router /applications [post]
func (h *ApplicationHandler) SubmitApplication(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}

	var req models.ApplicationSubmitRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Submitting instructor application", "user_id", principal.AccountID)

	app, err := h.applicationService.Submit(c.Request.Context(), principal, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, app)
}

// ListMyApplications godoc
// @Tags applications
// @Router /applications/mine [get]
func (h *ApplicationHandler) ListMyApplications(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}

	apps, err := h.applicationService.ListMine(c.Request.Context(), principal.AccountID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, apps)
}

// GetApplication returns an application to its applicant or an admin
// @Tags applications
// @Param id path uint true "Application ID"
// @Router /applications/{id} [get]
func (h *ApplicationHandler) GetApplication(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	app, err := h.applicationService.Get(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, app)
}

// ListApplications lists applications for review
// @Tags applications
// @Param status query string false "pending, approved or rejected"
// @Router /admin/applications [get]
func (h *ApplicationHandler) ListApplications(c *gin.Context) {
	page, err := h.applicationService.List(c.Request.Context(), parseApplicationParams(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

// ApproveApplication approves a pending application and promotes the applicant
// @Tags applications
// @Param id path uint true "Application ID"
// @Failure 409 {object} ErrorResponse "Already decided"
// @Router /admin/applications/{id}/approve [post]
func (h *ApplicationHandler) ApproveApplication(c *gin.Context) {
	h.review(c, "Approving instructor application", h.applicationService.Approve)
}

// RejectApplication rejects a pending application
// @Tags applications
// @Param id path uint true "Application ID"
// @Failure 409 {object} ErrorResponse "Already decided"
// @Router /admin/applications/{id}/reject [post]
func (h *ApplicationHandler) RejectApplication(c *gin.Context) {
	h.review(c, "Rejecting instructor application", h.applicationService.Reject)
}

type reviewFunc func(ctx context.Context, id uint, reviewer authz.Principal, req *models.ApplicationReviewRequest) (*models.InstructorApplication, error)

func (h *ApplicationHandler) review(c *gin.Context, msg string, fn reviewFunc) {
	reviewer, ok := h.principal(c)
	if !ok {
		return
	}
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	// The review body is optional
	var req models.ApplicationReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		RespondWithError(c, http.StatusBadRequest, "invalid_payload", "Invalid request payload", err.Error())
		return
	}

	h.LogRequest(c, msg, "application_id", id, "reviewer_id", reviewer.AccountID)

	app, err := fn(c.Request.Context(), id, reviewer, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, app)
}

func parseApplicationParams(c *gin.Context) *models.ListApplicationsParams {
	params := &models.ListApplicationsParams{
		Page:   parseIntQuery(c, "page", 1),
		Size:   parseIntQuery(c, "size", 20),
		Status: models.ApplicationStatus(c.Query("status")),
	}
	if userID := c.Query("user_id"); userID != "" {
		params.UserID = &userID
	}
	return params
}
