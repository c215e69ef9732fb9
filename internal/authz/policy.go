package authz

// Requirement is what an operation demands of the acting principal's role.
type Requirement string

const (
	RequireStudent           Requirement = "student"
	RequireInstructor        Requirement = "instructor"
	RequireAdmin             Requirement = "admin"
	RequireInstructorOrAbove Requirement = "instructor_or_above"
	// RequireAuthenticated is satisfied by any resolved account.
	RequireAuthenticated Requirement = "authenticated"
)

// Decision is the outcome of a policy check. The zero value is Deny.
type Decision int

const (
	Deny Decision = iota
	Allow
)

func (d Decision) String() string {
	if d == Allow {
		return "allow"
	}
	return "deny"
}

// Allowed reports whether d is Allow.
func (d Decision) Allowed() bool {
	return d == Allow
}

// DecideRole evaluates the role policy table. It is total: every pair of
// role and requirement yields a decision, unknown requirements included.
func DecideRole(role Role, req Requirement) Decision {
	role = NormalizeRole(string(role))

	// Admin holds every capability.
	if role == RoleAdmin {
		return Allow
	}

	switch req {
	case RequireAuthenticated:
		return Allow
	case RequireStudent:
		if role == RoleStudent {
			return Allow
		}
	case RequireInstructor:
		if role == RoleInstructor {
			return Allow
		}
	case RequireInstructorOrAbove:
		if role == RoleInstructor {
			return Allow
		}
	}

	return Deny
}

// DecideOwnership allows admins and the owner of a resource. A resource with
// no recorded owner is never matched.
func DecideOwnership(accountID string, role Role, ownerID string) Decision {
	if NormalizeRole(string(role)) == RoleAdmin {
		return Allow
	}
	if accountID != "" && ownerID != "" && accountID == ownerID {
		return Allow
	}
	return Deny
}
