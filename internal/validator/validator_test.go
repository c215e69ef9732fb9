package validator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/course-marketplace/internal/models"
)

func TestCustomRules(t *testing.T) {
	v := New()

	tests := []struct {
		name  string
		value interface{}
		tag   string
		valid bool
	}{
		{"slug", "intro-to-go", "course_slug", true},
		{"slug with double hyphen", "intro--go", "course_slug", false},
		{"slug uppercase", "Intro", "course_slug", false},
		{"country", "ng", "iso_country", true},
		{"unknown country", "XX", "iso_country", false},
		{"currency", "NGN", "currency_code", true},
		{"unknown currency", "BTC", "currency_code", false},
		{"role", "instructor", "app_role", true},
		{"empty role", "", "app_role", false},
		{"unknown role", "superuser", "app_role", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Var(tt.value, tt.tag)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidate_ReportsJSONFieldNames(t *testing.T) {
	v := New()

	err := v.Validate(&models.RoleChangeRequest{Role: "root"})
	require.Error(t, err)

	var verrs ValidationErrors
	require.True(t, errors.As(err, &verrs))
	require.Len(t, verrs, 1)
	assert.Equal(t, "role", verrs[0].Field)
	assert.Equal(t, "app_role", verrs[0].Rule)
}

func TestBusinessValidator(t *testing.T) {
	bv := New().GetBusinessValidator()

	errs := bv.ValidateApplicationSubmit(&models.ApplicationSubmitRequest{
		Motivation: "I have shipped Go services for a decade",
		Expertise:  []string{"Go", "go "},
	})
	require.Len(t, errs, 1)
	assert.Equal(t, "unique", errs[0].Rule)

	desc := "a course"
	price := int64(100)
	published := &models.Course{Title: "Go", Description: &desc, Status: models.CoursePublished, Price: 50}
	errs = bv.ValidateCourseUpdate(&models.CourseUpdateRequest{Price: &price}, published)
	require.Len(t, errs, 1)
	assert.Equal(t, "price", errs[0].Field)

	assert.Empty(t, bv.ValidatePublish(&models.Course{Title: "Go", Description: &desc, Status: models.CourseDraft}))
	assert.NotEmpty(t, bv.ValidatePublish(published))
	assert.NotEmpty(t, bv.ValidatePublish(&models.Course{Title: "Go", Status: models.CourseDraft}))
}
