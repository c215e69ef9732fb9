package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	EventSource  = "course-marketplace"
	EventVersion = "1.0"
)

// Event types
const (
	ApplicationSubmitted = "instructor_application.submitted"
	ApplicationApproved  = "instructor_application.approved"
	ApplicationRejected  = "instructor_application.rejected"
	AccountRoleChanged   = "account.role_changed"
	EnrollmentActivated  = "enrollment.activated"
	CourseDeleted        = "course.deleted"
)

// Event is the envelope published for every domain event
type Event struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Source    string      `json:"source"`
	Version   string      `json:"version"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// NewEvent stamps a payload with an id, source and time
func NewEvent(eventType string, data interface{}) Event {
	return Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Source:    EventSource,
		Version:   EventVersion,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

// Publisher delivers events. Callers publish after their transaction commits.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// ===== PAYLOADS =====

type ApplicationEventData struct {
	ApplicationID uint    `json:"application_id"`
	UserID        string  `json:"user_id"`
	Status        string  `json:"status"`
	ReviewerID    *string `json:"reviewer_id,omitempty"`
	Comments      *string `json:"comments,omitempty"`
}

type RoleChangedData struct {
	AccountID    string `json:"account_id"`
	PreviousRole string `json:"previous_role"`
	Role         string `json:"role"`
	ChangedBy    string `json:"changed_by"`
	Reason       string `json:"reason"`
}

type EnrollmentEventData struct {
	EnrollmentID uint   `json:"enrollment_id"`
	UserID       string `json:"user_id"`
	CourseID     uint   `json:"course_id"`
	AmountPaid   int64  `json:"amount_paid"`
	Currency     string `json:"currency"`
}

type CourseDeletedData struct {
	CourseID     uint   `json:"course_id"`
	InstructorID string `json:"instructor_id"`
	DeletedBy    string `json:"deleted_by"`
}
