package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/course-marketplace/internal/authz"
	"github.com/SAP-F-2025/course-marketplace/internal/identity"
	"github.com/SAP-F-2025/course-marketplace/internal/models"
	"github.com/SAP-F-2025/course-marketplace/internal/services"
	"github.com/SAP-F-2025/course-marketplace/internal/utils"
)

// AuthHandler completes logins and provisions the local account. It is the
// only place accounts are created.
type AuthHandler struct {
	BaseHandler
	accountService services.AccountService
	verifier       identity.Verifier
	exchanger      identity.Exchanger
}

func NewAuthHandler(
	accountService services.AccountService,
	verifier identity.Verifier,
	exchanger identity.Exchanger,
	logger utils.Logger,
) *AuthHandler {
	return &AuthHandler{
		BaseHandler:    NewBaseHandler(logger),
		accountService: accountService,
		verifier:       verifier,
		exchanger:      exchanger,
	}
}

type sessionResponse struct {
	AccessToken  string          `json:"access_token,omitempty"`
	RefreshToken string          `json:"refresh_token,omitempty"`
	ExpiresAt    *int64          `json:"expires_at,omitempty"`
	Account      *models.Account `json:"account"`
}

// Callback exchanges an authorization code for tokens
// @Summary Complete login
// @Tags auth
// @Param code query string true "Authorization code"
// @Param state query string true "OAuth state"
// @Router /auth/callback [get]
func (h *AuthHandler) Callback(c *gin.Context) {
	if h.exchanger == nil {
		RespondWithError(c, http.StatusNotImplemented, "login_unsupported", "login callback is not available in this auth mode", nil)
		return
	}

	code := c.Query("code")
	if code == "" {
		RespondWithError(c, http.StatusBadRequest, "invalid_request", "query parameter 'code' is required", nil)
		return
	}

	session, err := h.exchanger.Exchange(c.Request.Context(), code, c.Query("state"))
	if err != nil {
		h.LogError(c, err, "Login exchange failed")
		RespondWithError(c, http.StatusUnauthorized, "unauthenticated", "login failed", nil)
		return
	}

	account, err := h.accountService.Provision(c.Request.Context(), session.Subject)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "Login completed", "account_id", account.ID)

	resp := sessionResponse{
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
		Account:      account,
	}
	if !session.Expiry.IsZero() {
		expiresAt := session.Expiry.Unix()
		resp.ExpiresAt = &expiresAt
	}
	c.JSON(http.StatusOK, resp)
}

// Session provisions the account behind a bearer token obtained elsewhere
// @Summary Start session
// @Tags auth
// @Router /auth/session [post]
func (h *AuthHandler) Session(c *gin.Context) {
	token, err := identity.BearerToken(c.GetHeader("Authorization"))
	if err != nil {
		RespondWithError(c, http.StatusUnauthorized, "unauthenticated", "authentication required", nil)
		return
	}

	subject, err := h.verifier.Verify(c.Request.Context(), token)
	if err != nil {
		if !errors.Is(err, identity.ErrInvalidToken) && !errors.Is(err, identity.ErrMissingToken) {
			h.LogError(c, err, "Token verification failed")
		}
		RespondWithError(c, http.StatusUnauthorized, "unauthenticated", "authentication required", nil)
		return
	}

	account, err := h.accountService.Provision(c.Request.Context(), subject)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, sessionResponse{Account: account})
}

// Me returns the caller's principal as the server sees it
// @Summary Current principal
// @Tags auth
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"account_id":   principal.AccountID,
		"email":        principal.Email,
		"display_name": principal.DisplayName,
		"role":         principal.Role,
		"is_admin":     principal.IsAdmin(),
		"can_teach":    authz.DecideRole(principal.Role, authz.RequireInstructorOrAbove) == authz.Allow,
	})
}
