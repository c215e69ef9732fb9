package authz

import (
	"fmt"

	"github.com/SAP-F-2025/course-marketplace/internal/models"
)

// ApplicationEvent drives the instructor application lifecycle.
type ApplicationEvent string

const (
	EventSubmit  ApplicationEvent = "submit"
	EventApprove ApplicationEvent = "approve"
	EventReject  ApplicationEvent = "reject"
)

type applicationTransition struct {
	from  models.ApplicationStatus
	to    models.ApplicationStatus
	actor Role
}

// Submit starts from no application, written as the empty status.
var applicationTransitions = map[ApplicationEvent]applicationTransition{
	EventSubmit:  {from: "", to: models.ApplicationPending, actor: RoleStudent},
	EventApprove: {from: models.ApplicationPending, to: models.ApplicationApproved, actor: RoleAdmin},
	EventReject:  {from: models.ApplicationPending, to: models.ApplicationRejected, actor: RoleAdmin},
}

// NextApplicationStatus returns the status reached by applying ev to from,
// or ErrInvalidTransition when the table has no such edge.
func NextApplicationStatus(from models.ApplicationStatus, ev ApplicationEvent) (models.ApplicationStatus, error) {
	t, ok := applicationTransitions[ev]
	if !ok {
		return "", fmt.Errorf("unknown event %q: %w", ev, ErrInvalidTransition)
	}
	if t.from != from {
		return "", fmt.Errorf("cannot %s an application that is %q: %w", ev, displayStatus(from), ErrInvalidTransition)
	}
	return t.to, nil
}

// CanActOnApplication reports whether role may fire ev. Submission is
// reserved to students; reviews to admins.
func CanActOnApplication(role Role, ev ApplicationEvent) bool {
	t, ok := applicationTransitions[ev]
	if !ok {
		return false
	}
	return NormalizeRole(string(role)) == t.actor
}

func displayStatus(s models.ApplicationStatus) string {
	if s == "" {
		return "none"
	}
	return string(s)
}
