package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/course-marketplace/internal/models"
	"github.com/SAP-F-2025/course-marketplace/internal/services"
	"github.com/SAP-F-2025/course-marketplace/internal/utils"
)

type AccountHandler struct {
	BaseHandler
	accountService services.AccountService
}

func NewAccountHandler(accountService services.AccountService, logger utils.Logger) *AccountHandler {
	return &AccountHandler{
		BaseHandler:    NewBaseHandler(logger),
		accountService: accountService,
	}
}

// GetProfile returns the caller's account
// @Summary Get my profile
// @Tags accounts
// @Produce json
// @Success 200 {object} models.Account
// @Failure 401 {object} ErrorResponse
// @Router /accounts/me [get]
func (h *AccountHandler) GetProfile(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}

	account, err := h.accountService.GetProfile(c.Request.Context(), principal.AccountID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, account)
}

// UpdateProfile edits the caller's profile fields. The payload has no role.
// @Summary Update my profile
// @Tags accounts
// @Accept json
// @Produce json
// @Param profile body models.ProfileUpdateRequest true "Profile fields"
// @Success 200 {object} models.Account
// @Failure 400 {object} ErrorResponse
// @Router /accounts/me [put]
func (h *AccountHandler) UpdateProfile(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}

	var req models.ProfileUpdateRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Updating profile", "account_id", principal.AccountID)

	account, err := h.accountService.UpdateProfile(c.Request.Context(), principal.AccountID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, account)
}

// ListAccounts lists accounts for administrators
// @Summary List accounts
// @Tags accounts
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 20, max: 100)"
// @Param role query string false "Filter by role"
// @Param q query string false "Search by name or email"
// @Router /accounts [get]
func (h *AccountHandler) ListAccounts(c *gin.Context) {
	params := &models.ListAccountsParams{
		Page:   parseIntQuery(c, "page", 1),
		Size:   parseIntQuery(c, "size", 20),
		Role:   models.UserRole(c.Query("role")),
		Search: c.Query("q"),
	}

	page, err := h.accountService.List(c.Request.Context(), params)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

// ChangeRole promotes an account
// @Summary Change account role
// @Tags accounts
// @Accept json
// @Param id path string true "Account ID"
// @Param role body models.RoleChangeRequest true "Target role"
// @Success 200 {object} models.RoleChangeResponse
// @Failure 409 {object} ErrorResponse "Demotion or unchanged role"
// @Router /accounts/{id}/role [put]
func (h *AccountHandler) ChangeRole(c *gin.Context) {
	actor, ok := h.principal(c)
	if !ok {
		return
	}

	var req models.RoleChangeRequest
	if !h.bindJSON(c, &req) {
		return
	}

	targetID := c.Param("id")
	h.LogRequest(c, "Changing account role", "target_id", targetID, "role", req.Role)

	resp, err := h.accountService.ChangeRole(c.Request.Context(), actor, targetID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
