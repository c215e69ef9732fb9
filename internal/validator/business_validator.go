package validator

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/SAP-F-2025/course-marketplace/internal/models"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

var supportedCurrencies = map[string]bool{
	"NGN": true,
	"GHS": true,
	"KES": true,
	"ZAR": true,
	"USD": true,
}

// Countries the marketplace serves
var isoCountries = map[string]bool{
	"NG": true, "GH": true, "KE": true, "ZA": true, "EG": true, "RW": true,
	"US": true, "GB": true, "CA": true, "DE": true, "FR": true, "IN": true,
}

// BusinessValidator handles business rule validation
type BusinessValidator struct {
	validate *validator.Validate
}

// registerCustomRules registers custom business rule validators
func registerCustomRules(validate *validator.Validate) {
	// Course and category slugs
	_ = validate.RegisterValidation("course_slug", func(fl validator.FieldLevel) bool {
		slug := fl.Field().String()
		return len(slug) <= 120 && slugPattern.MatchString(slug)
	})

	_ = validate.RegisterValidation("iso_country", func(fl validator.FieldLevel) bool {
		return isoCountries[strings.ToUpper(fl.Field().String())]
	})

	_ = validate.RegisterValidation("currency_code", func(fl validator.FieldLevel) bool {
		return supportedCurrencies[strings.ToUpper(fl.Field().String())]
	})

	// Exact role names only; the empty role is not a valid target
	_ = validate.RegisterValidation("app_role", func(fl validator.FieldLevel) bool {
		switch models.UserRole(fl.Field().String()) {
		case models.RoleStudent, models.RoleInstructor, models.RoleAdmin:
			return true
		}
		return false
	})
}

// Validate validates business rules for any struct
func (bv *BusinessValidator) Validate(s interface{}) ValidationErrors {
	if err := bv.validate.Struct(s); err != nil {
		return ToValidationErrors(err)
	}
	return nil
}

// ValidateCourseCreate validates course creation business rules
func (bv *BusinessValidator) ValidateCourseCreate(req *models.CourseCreateRequest) ValidationErrors {
	var errors ValidationErrors
	errors = append(errors, bv.Validate(req)...)

	seen := make(map[string]bool, len(req.Tags))
	for _, tag := range req.Tags {
		key := strings.ToLower(strings.TrimSpace(tag))
		if seen[key] {
			errors.Add("tags", "must not contain duplicates", "unique")
			break
		}
		seen[key] = true
	}
	return errors
}

// ValidateCourseUpdate validates an update against the stored course
func (bv *BusinessValidator) ValidateCourseUpdate(req *models.CourseUpdateRequest, existing *models.Course) ValidationErrors {
	var errors ValidationErrors
	errors = append(errors, bv.Validate(req)...)

	if existing.Status == models.CourseArchived {
		errors.Add("status", "archived courses cannot be edited", "archived_course")
	}
	// Price changes would invalidate checkouts already in flight
	if existing.Status == models.CoursePublished && req.Price != nil && *req.Price != existing.Price {
		errors.Add("price", "cannot change while the course is published", "published_price")
	}
	return errors
}

// ValidatePublish checks a course is complete enough to be listed
func (bv *BusinessValidator) ValidatePublish(course *models.Course) ValidationErrors {
	var errors ValidationErrors

	switch course.Status {
	case models.CoursePublished:
		errors.Add("status", "course is already published", "status_transition")
	case models.CourseArchived:
		errors.Add("status", "archived courses cannot be published", "status_transition")
	}
	if strings.TrimSpace(course.Title) == "" {
		errors.Add("title", "is required", "required")
	}
	if course.Description == nil || strings.TrimSpace(*course.Description) == "" {
		errors.Add("description", "is required before publishing", "required")
	}
	return errors
}

// ValidateApplicationSubmit validates an instructor application
func (bv *BusinessValidator) ValidateApplicationSubmit(req *models.ApplicationSubmitRequest) ValidationErrors {
	var errors ValidationErrors
	errors = append(errors, bv.Validate(req)...)

	seen := make(map[string]bool, len(req.Expertise))
	for _, area := range req.Expertise {
		key := strings.ToLower(strings.TrimSpace(area))
		if seen[key] {
			errors.Add("expertise", "must not contain duplicates", "unique")
			break
		}
		seen[key] = true
	}
	return errors
}
