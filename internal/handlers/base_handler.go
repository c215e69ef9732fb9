package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/course-marketplace/internal/authz"
	"github.com/SAP-F-2025/course-marketplace/internal/payment"
	"github.com/SAP-F-2025/course-marketplace/internal/services"
	"github.com/SAP-F-2025/course-marketplace/internal/utils"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error   string      `json:"error"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// SuccessResponse wraps responses that carry a message
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

func (h *BaseHandler) LogRequest(c *gin.Context, msg string, args ...any) {
	utils.GetLogger(c, h.logger).Info(msg, args...)
}

func (h *BaseHandler) LogError(c *gin.Context, err error, msg string, args ...any) {
	utils.GetLogger(c, h.logger).Error(msg, append(args, "error", err)...)
}

// RespondWithError writes an ErrorResponse and aborts the chain
func RespondWithError(c *gin.Context, status int, code, message string, details interface{}) {
	c.AbortWithStatusJSON(status, ErrorResponse{Error: code, Message: message, Details: details})
}

// principal returns the caller resolved by the guard. Routes behind
// Guard.Authenticate always have one.
func (h *BaseHandler) principal(c *gin.Context) (authz.Principal, bool) {
	p, ok := authz.CurrentPrincipal(c)
	if !ok {
		RespondWithError(c, http.StatusUnauthorized, "unauthenticated", "authentication required", nil)
	}
	return p, ok
}

// parseIDParam reads a positive numeric path parameter and answers 400
// itself when it is malformed. Zero means the response was written.
func (h *BaseHandler) parseIDParam(c *gin.Context, name string) uint {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		RespondWithError(c, http.StatusBadRequest, "invalid_id", "invalid "+name, nil)
		return 0
	}
	return uint(id)
}

func parseIntQuery(c *gin.Context, name string, fallback int) int {
	value, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return fallback
	}
	return value
}

func (h *BaseHandler) bindJSON(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		RespondWithError(c, http.StatusBadRequest, "invalid_payload", "Invalid request payload", err.Error())
		return false
	}
	return true
}

// handleServiceError translates service and authorization errors into
// responses. Bodies never name the owner of a resource.
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var verrs services.ValidationErrors
	if errors.As(err, &verrs) {
		RespondWithError(c, http.StatusBadRequest, "validation_failed", "Validation failed", verrs)
		return
	}

	var rule *services.BusinessRuleError
	if errors.As(err, &rule) {
		RespondWithError(c, http.StatusUnprocessableEntity, rule.Rule, rule.Message, rule.Context)
		return
	}

	var duplicate *authz.DuplicateApplicationError
	if errors.As(err, &duplicate) {
		RespondWithError(c, http.StatusBadRequest, authz.ErrorCode(err), duplicate.Error(), gin.H{
			"application_id": duplicate.ApplicationID,
			"status":         duplicate.Status,
		})
		return
	}

	if authz.IsAuthzError(err) {
		status := authz.HTTPStatus(err)
		if status >= http.StatusInternalServerError {
			h.LogError(c, err, "Authorization data unavailable")
		}
		RespondWithError(c, status, authz.ErrorCode(err), authzMessage(err), nil)
		return
	}

	status, code := serviceStatus(err)
	if status >= http.StatusInternalServerError {
		h.LogError(c, err, "Request failed")
		RespondWithError(c, status, code, "Internal server error", nil)
		return
	}
	RespondWithError(c, status, code, err.Error(), nil)
}

func serviceStatus(err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrAccountNotFound),
		errors.Is(err, services.ErrCourseNotFound),
		errors.Is(err, services.ErrCategoryNotFound),
		errors.Is(err, services.ErrApplicationNotFound),
		errors.Is(err, services.ErrEnrollmentNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, services.ErrInvalidRoleChange):
		return http.StatusConflict, "invalid_role_change"
	case errors.Is(err, services.ErrAlreadyEnrolled):
		return http.StatusConflict, "already_enrolled"
	case errors.Is(err, services.ErrCourseHasEnrollments):
		return http.StatusConflict, "course_has_enrollments"
	case errors.Is(err, services.ErrEmailTaken):
		return http.StatusConflict, "email_taken"
	case errors.Is(err, services.ErrSlugTaken), errors.Is(err, services.ErrCategoryNameTaken):
		return http.StatusConflict, "duplicate"
	case errors.Is(err, services.ErrCourseNotPublished):
		return http.StatusConflict, "course_not_published"
	case errors.Is(err, services.ErrPaymentNotSuccessful):
		return http.StatusPaymentRequired, "payment_not_successful"
	case errors.Is(err, services.ErrInvalidWebhook):
		if errors.Is(err, payment.ErrInvalidSignature) {
			return http.StatusUnauthorized, "invalid_signature"
		}
		return http.StatusBadRequest, "invalid_webhook"
	case errors.Is(err, services.ErrPaymentsDisabled):
		return http.StatusServiceUnavailable, "payments_disabled"
	case errors.Is(err, payment.ErrGatewayUnavailable), errors.Is(err, payment.ErrChargeRejected):
		return http.StatusBadGateway, "payment_gateway_error"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

func authzMessage(err error) string {
	switch {
	case errors.Is(err, authz.ErrUnauthenticated):
		return "authentication required"
	case errors.Is(err, authz.ErrForbidden):
		return "you do not have permission to perform this action"
	case errors.Is(err, authz.ErrInvalidTransition):
		return "the application has already been decided"
	case errors.Is(err, authz.ErrNotFound):
		return "resource not found"
	default:
		return "authorization is temporarily unavailable"
	}
}
