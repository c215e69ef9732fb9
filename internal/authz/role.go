package authz

import (
	"strings"

	"github.com/SAP-F-2025/course-marketplace/internal/models"
)

// Role is the single-valued role carried by an Account.
type Role = models.UserRole

const (
	RoleStudent    = models.RoleStudent
	RoleInstructor = models.RoleInstructor
	RoleAdmin      = models.RoleAdmin
)

// NormalizeRole maps a stored role to a known Role. Empty or unrecognised
// values become student, the least privileged role.
func NormalizeRole(raw string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleAdmin:
		return RoleAdmin
	case RoleInstructor:
		return RoleInstructor
	case RoleStudent:
		return RoleStudent
	default:
		return RoleStudent
	}
}

// IsKnownRole reports whether raw names one of the three roles exactly.
func IsKnownRole(raw string) bool {
	switch Role(raw) {
	case RoleStudent, RoleInstructor, RoleAdmin:
		return true
	}
	return false
}

// roleRank orders roles for promotion checks.
func roleRank(r Role) int {
	switch NormalizeRole(string(r)) {
	case RoleAdmin:
		return 2
	case RoleInstructor:
		return 1
	default:
		return 0
	}
}

// IsPromotion reports whether moving from one role to another strictly raises privilege.
func IsPromotion(from, to Role) bool {
	return roleRank(to) > roleRank(from)
}

// AtLeast reports whether r carries at least the privilege of min.
func AtLeast(r, min Role) bool {
	return roleRank(r) >= roleRank(min)
}
