package validator

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator validates request DTOs and exposes the business rule checks
type Validator struct {
	validate *validator.Validate
	business *BusinessValidator
}

func New() *Validator {
	validate := validator.New()
	validate.RegisterTagNameFunc(jsonFieldName)
	registerCustomRules(validate)

	return &Validator{
		validate: validate,
		business: &BusinessValidator{validate: validate},
	}
}

// Validate checks struct tags and returns ValidationErrors or nil
func (v *Validator) Validate(s interface{}) error {
	if err := v.validate.Struct(s); err != nil {
		return ToValidationErrors(err)
	}
	return nil
}

// Var validates a single value against a tag
func (v *Validator) Var(field interface{}, tag string) error {
	if err := v.validate.Var(field, tag); err != nil {
		return ToValidationErrors(err)
	}
	return nil
}

func (v *Validator) GetBusinessValidator() *BusinessValidator {
	return v.business
}

// jsonFieldName reports fields by their json name
func jsonFieldName(field reflect.StructField) string {
	name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
	if name == "-" || name == "" {
		return field.Name
	}
	return name
}
