package services

import (
	"errors"
	"fmt"

	"github.com/SAP-F-2025/course-marketplace/internal/validator"
)

var (
	ErrAccountNotFound     = errors.New("account not found")
	ErrCourseNotFound      = errors.New("course not found")
	ErrCategoryNotFound    = errors.New("category not found")
	ErrApplicationNotFound = errors.New("instructor application not found")
	ErrEnrollmentNotFound  = errors.New("enrollment not found")

	// ErrInvalidRoleChange covers demotions, no-op changes and lost races
	ErrInvalidRoleChange    = errors.New("invalid role change")
	ErrAlreadyEnrolled      = errors.New("already enrolled in this course")
	ErrCourseNotPublished   = errors.New("course is not published")
	ErrCourseHasEnrollments = errors.New("course has active enrollments")
	ErrSlugTaken            = errors.New("slug already in use")
	ErrCategoryNameTaken    = errors.New("category name or slug already in use")
	ErrEmailTaken           = errors.New("email already belongs to another account")

	ErrPaymentsDisabled     = errors.New("payments are not configured")
	ErrPaymentNotSuccessful = errors.New("payment was not successful")
	ErrInvalidWebhook       = errors.New("invalid payment webhook")
)

// ValidationErrors is re-exported so handlers only import services
type ValidationErrors = validator.ValidationErrors

// BusinessRuleError reports a request that is well formed but breaks a
// domain rule. Rule is a stable code clients can switch on.
type BusinessRuleError struct {
	Rule    string                 `json:"rule"`
	Message string                 `json:"message"`
	Context map[string]interface{} `json:"context,omitempty"`
}

func (e *BusinessRuleError) Error() string {
	return fmt.Sprintf("%s: %s", e.Rule, e.Message)
}

func NewBusinessRuleError(rule, message string, context map[string]interface{}) *BusinessRuleError {
	return &BusinessRuleError{Rule: rule, Message: message, Context: context}
}
