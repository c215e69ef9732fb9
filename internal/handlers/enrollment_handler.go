package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/course-marketplace/internal/models"
	"github.com/SAP-F-2025/course-marketplace/internal/services"
	"github.com/SAP-F-2025/course-marketplace/internal/utils"
)

// PaystackSignatureHeader carries the HMAC of a webhook body
const PaystackSignatureHeader = "X-Paystack-Signature"

type EnrollmentHandler struct {
	BaseHandler
	enrollmentService services.EnrollmentService
}

func NewEnrollmentHandler(enrollmentService services.EnrollmentService, logger utils.Logger) *EnrollmentHandler {
	return &EnrollmentHandler{
		BaseHandler:       NewBaseHandler(logger),
		enrollmentService: enrollmentService,
	}
}

// Enroll enrolls the caller in a published course
// @Summary Enroll in course
// @Tags enrollments
// @Param id path uint true "Course ID"
// @Success 201 {object} models.EnrollmentResponse
// @Failure 409 {object} ErrorResponse "Already enrolled or course not published"
// @Router /courses/{id}/enroll [post]
func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	courseID := h.parseIDParam(c, "id")
	if courseID == 0 {
		return
	}

	var req models.EnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		RespondWithError(c, http.StatusBadRequest, "invalid_payload", "Invalid request payload", err.Error())
		return
	}

	h.LogRequest(c, "Enrolling in course", "course_id", courseID, "user_id", principal.AccountID)

	resp, err := h.enrollmentService.Enroll(c.Request.Context(), principal, courseID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// ListMyEnrollments godoc
// @Tags enrollments
// @Router /enrollments/mine [get]
func (h *EnrollmentHandler) ListMyEnrollments(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}

	page, err := h.enrollmentService.ListMine(c.Request.Context(), principal.AccountID,
		parseIntQuery(c, "page", 1), parseIntQuery(c, "size", 20))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

// GetEnrollment godoc
// @Tags enrollments
// @Param id path uint true "Enrollment ID"
// @Router /enrollments/{id} [get]
func (h *EnrollmentHandler) GetEnrollment(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	enrollment, err := h.enrollmentService.Get(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, enrollment)
}

// VerifyPayment confirms a checkout with the gateway
// @Tags enrollments
// @Param reference path string true "Payment reference"
// @Failure 402 {object} ErrorResponse "Payment not successful"
// @Router /payments/{reference}/verify [post]
func (h *EnrollmentHandler) VerifyPayment(c *gin.Context) {
	reference := c.Param("reference")
	h.LogRequest(c, "Verifying payment", "reference", reference)

	enrollment, err := h.enrollmentService.Verify(c.Request.Context(), reference)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, enrollment)
}

// ListCourseEnrollments lists enrollments of a course to its owner or an admin
// @Tags enrollments
// @Param id path uint true "Course ID"
// @Router /courses/{id}/enrollments [get]
func (h *EnrollmentHandler) ListCourseEnrollments(c *gin.Context) {
	courseID := h.parseIDParam(c, "id")
	if courseID == 0 {
		return
	}

	page, err := h.enrollmentService.ListForCourse(c.Request.Context(), courseID,
		parseIntQuery(c, "page", 1), parseIntQuery(c, "size", 20))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

// PaymentWebhook receives gateway callbacks. It is unauthenticated; the body
// signature is checked by the service.
// @Tags payments
// @Router /payments/webhook [post]
func (h *EnrollmentHandler) PaymentWebhook(c *gin.Context) {
	payload, err := c.GetRawData()
	if err != nil {
		RespondWithError(c, http.StatusBadRequest, "invalid_webhook", "unreadable body", nil)
		return
	}

	if err := h.enrollmentService.HandleWebhook(c.Request.Context(), payload, c.GetHeader(PaystackSignatureHeader)); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusOK)
}
