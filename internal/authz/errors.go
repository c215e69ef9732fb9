package authz

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/SAP-F-2025/course-marketplace/internal/models"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrAccountNotFound is an authentication failure: the subject is valid
	// but has no account.
	ErrAccountNotFound      = fmt.Errorf("account not found: %w", ErrUnauthenticated)
	ErrForbidden            = errors.New("forbidden")
	ErrDuplicateApplication = errors.New("duplicate instructor application")
	ErrInvalidTransition    = errors.New("invalid application status transition")
	ErrNotFound             = errors.New("resource not found")
	ErrUnavailable          = errors.New("authorization data unavailable")
)

// DuplicateApplicationError names the application that blocks a new submission.
type DuplicateApplicationError struct {
	ApplicationID uint
	Status        models.ApplicationStatus
}

func (e *DuplicateApplicationError) Error() string {
	return fmt.Sprintf("you already have an instructor application that is %s", e.Status)
}

func (e *DuplicateApplicationError) Unwrap() error {
	return ErrDuplicateApplication
}

// UnavailableError wraps a datastore failure met while deciding.
type UnavailableError struct {
	Op  string
	Err error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *UnavailableError) Unwrap() []error {
	return []error{ErrUnavailable, e.Err}
}

// Unavailable wraps err as an UnavailableError for op.
func Unavailable(op string, err error) error {
	return &UnavailableError{Op: op, Err: err}
}

// HTTPStatus maps an authorization error to its HTTP status code.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrDuplicateApplication):
		return http.StatusBadRequest
	case errors.Is(err, ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// ErrorCode returns the stable machine-readable code for err.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrUnauthenticated):
		return "unauthenticated"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrDuplicateApplication):
		return "duplicate_application"
	case errors.Is(err, ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrUnavailable):
		return "unavailable"
	default:
		return "internal_error"
	}
}

// IsAuthzError reports whether err belongs to the authorization taxonomy.
func IsAuthzError(err error) bool {
	return errors.Is(err, ErrUnauthenticated) ||
		errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrDuplicateApplication) ||
		errors.Is(err, ErrInvalidTransition) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrUnavailable)
}
