package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/SAP-F-2025/course-marketplace/internal/models"
)

var allRequirements = []Requirement{
	RequireStudent,
	RequireInstructor,
	RequireAdmin,
	RequireInstructorOrAbove,
	RequireAuthenticated,
}

func TestDecideRole_Table(t *testing.T) {
	tests := []struct {
		role Role
		req  Requirement
		want Decision
	}{
		{RoleStudent, RequireStudent, Allow},
		{RoleStudent, RequireInstructor, Deny},
		{RoleStudent, RequireAdmin, Deny},
		{RoleStudent, RequireInstructorOrAbove, Deny},
		{RoleStudent, RequireAuthenticated, Allow},

		{RoleInstructor, RequireStudent, Deny},
		{RoleInstructor, RequireInstructor, Allow},
		{RoleInstructor, RequireAdmin, Deny},
		{RoleInstructor, RequireInstructorOrAbove, Allow},
		{RoleInstructor, RequireAuthenticated, Allow},

		{RoleAdmin, RequireStudent, Allow},
		{RoleAdmin, RequireInstructor, Allow},
		{RoleAdmin, RequireAdmin, Allow},
		{RoleAdmin, RequireInstructorOrAbove, Allow},
		{RoleAdmin, RequireAuthenticated, Allow},
	}

	for _, tt := range tests {
		t.Run(string(tt.role)+"/"+string(tt.req), func(t *testing.T) {
			assert.Equal(t, tt.want, DecideRole(tt.role, tt.req))
		})
	}
}

func TestDecideRole_AdminAllowsEveryRequirement(t *testing.T) {
	reqs := append([]Requirement{"some_future_capability", ""}, allRequirements...)
	for _, req := range reqs {
		assert.Equal(t, Allow, DecideRole(RoleAdmin, req), "requirement %q", req)
	}
}

func TestDecideRole_MissingRoleIsStudent(t *testing.T) {
	for _, raw := range []Role{"", "  ", "superuser", "ADMINISTRATOR", "moderator"} {
		for _, req := range allRequirements {
			assert.Equal(t, DecideRole(RoleStudent, req), DecideRole(raw, req),
				"role %q requirement %q", raw, req)
		}
		assert.Equal(t, Deny, DecideRole(raw, RequireInstructorOrAbove))
		assert.Equal(t, Deny, DecideRole(raw, RequireAdmin))
	}
}

func TestDecideRole_UnknownRequirementDeniesNonAdmins(t *testing.T) {
	assert.Equal(t, Deny, DecideRole(RoleStudent, "billing"))
	assert.Equal(t, Deny, DecideRole(RoleInstructor, "billing"))
}

func TestNormalizeRole(t *testing.T) {
	assert.Equal(t, RoleAdmin, NormalizeRole("admin"))
	assert.Equal(t, RoleAdmin, NormalizeRole(" Admin "))
	assert.Equal(t, RoleInstructor, NormalizeRole("instructor"))
	assert.Equal(t, RoleStudent, NormalizeRole(""))
	assert.Equal(t, RoleStudent, NormalizeRole("root"))
}

func TestIsPromotion(t *testing.T) {
	assert.True(t, IsPromotion(RoleStudent, RoleInstructor))
	assert.True(t, IsPromotion(RoleStudent, RoleAdmin))
	assert.True(t, IsPromotion(RoleInstructor, RoleAdmin))
	assert.True(t, IsPromotion("", RoleInstructor))
	assert.False(t, IsPromotion(RoleAdmin, RoleInstructor))
	assert.False(t, IsPromotion(RoleInstructor, RoleStudent))
	assert.False(t, IsPromotion(RoleInstructor, RoleInstructor))
}

func TestDecideOwnership(t *testing.T) {
	const owner = "user-a"

	tests := []struct {
		name      string
		accountID string
		role      Role
		ownerID   string
		want      Decision
	}{
		{"owner instructor", owner, RoleInstructor, owner, Allow},
		{"owner student", owner, RoleStudent, owner, Allow},
		{"other instructor", "user-b", RoleInstructor, owner, Deny},
		{"other student", "user-b", RoleStudent, owner, Deny},
		{"admin non-owner", "admin-1", RoleAdmin, owner, Allow},
		{"admin ownerless", "admin-1", RoleAdmin, "", Allow},
		{"ownerless resource", "user-b", RoleInstructor, "", Deny},
		{"empty account on ownerless", "", RoleInstructor, "", Deny},
		{"missing role non-owner", "user-b", "", owner, Deny},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DecideOwnership(tt.accountID, tt.role, tt.ownerID))
		})
	}
}

func TestDefaultPolicies_Shape(t *testing.T) {
	for op, p := range DefaultPolicies {
		assert.NotEmpty(t, p.Requirement, "operation %s", op)
	}

	// Creation is role-only; mutation of an existing course is owner-scoped.
	assert.False(t, DefaultPolicies[OpCourseCreate].OwnershipScoped())
	assert.Equal(t, ResourceCourse, DefaultPolicies[OpCourseUpdate].Resource)
	assert.Equal(t, ResourceCourse, DefaultPolicies[OpCourseDelete].Resource)
	assert.Equal(t, RequireAdmin, DefaultPolicies[OpApplicationReview].Requirement)
	assert.Equal(t, RequireStudent, DefaultPolicies[OpApplicationSubmit].Requirement)
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, 401, HTTPStatus(ErrUnauthenticated))
	assert.Equal(t, 401, HTTPStatus(ErrAccountNotFound))
	assert.Equal(t, 403, HTTPStatus(ErrForbidden))
	assert.Equal(t, 400, HTTPStatus(&DuplicateApplicationError{ApplicationID: 1, Status: models.ApplicationPending}))
	assert.Equal(t, 409, HTTPStatus(ErrInvalidTransition))
	assert.Equal(t, 404, HTTPStatus(ErrNotFound))
	assert.Equal(t, 500, HTTPStatus(Unavailable("lookup", assert.AnError)))
}

func TestDuplicateApplicationError(t *testing.T) {
	err := &DuplicateApplicationError{ApplicationID: 3, Status: models.ApplicationPending}
	assert.ErrorIs(t, err, ErrDuplicateApplication)
	assert.Contains(t, err.Error(), "pending")
}

func TestUnavailableErrorKeepsCause(t *testing.T) {
	err := Unavailable("resolve principal", assert.AnError)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, "unavailable", ErrorCode(err))
}
