package validator

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ValidationError represents a single field validation failure
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
	Rule    string      `json:"rule,omitempty"`
}

type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "validation failed"
	}
	if len(ve) == 1 {
		return fmt.Sprintf("validation failed: %s %s", ve[0].Field, ve[0].Message)
	}
	return fmt.Sprintf("validation failed: %d field errors", len(ve))
}

// Add appends a rule failure that no struct tag can express
func (ve *ValidationErrors) Add(field, message, rule string) {
	*ve = append(*ve, ValidationError{Field: field, Message: message, Rule: rule})
}

// ToValidationErrors converts validator/v10 errors into ValidationErrors
func ToValidationErrors(err error) ValidationErrors {
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return ValidationErrors{{Field: "request", Message: err.Error(), Rule: "invalid"}}
	}

	out := make(ValidationErrors, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		out = append(out, ValidationError{
			Field:   fe.Field(),
			Message: errorMessage(fe),
			Value:   fe.Value(),
			Rule:    fe.Tag(),
		})
	}
	return out
}

// errorMessage returns user-friendly error messages
func errorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "url":
		return "must be a valid URL"
	case "course_slug":
		return "must contain lowercase letters, digits and single hyphens"
	case "iso_country":
		return "must be an ISO 3166-1 alpha-2 country code"
	case "currency_code":
		return "must be a supported currency code"
	case "app_role":
		return "must be student, instructor or admin"
	default:
		return fmt.Sprintf("validation failed for rule '%s'", fe.Tag())
	}
}
