package models

import (
	"time"

	"gorm.io/datatypes"
)

type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "pending"
	ApplicationApproved ApplicationStatus = "approved"
	ApplicationRejected ApplicationStatus = "rejected"
)

// IsActive reports whether the status blocks a new submission by the same user.
func (s ApplicationStatus) IsActive() bool {
	return s == ApplicationPending || s == ApplicationApproved
}

// IsTerminal reports whether no further transition exists from s.
func (s ApplicationStatus) IsTerminal() bool {
	return s == ApplicationApproved || s == ApplicationRejected
}

// InstructorApplication is a student's request to become an instructor.
// Rejected rows are kept as history; at most one row per user is active.
type InstructorApplication struct {
	ID     uint              `json:"id" gorm:"primaryKey"`
	UserID string            `json:"user_id" gorm:"not null;size:255;index;uniqueIndex:idx_active_application,where:status <> 'rejected'"`
	Status ApplicationStatus `json:"status" gorm:"size:20;not null;default:pending;index"`

	Motivation   string         `json:"motivation" gorm:"type:text;not null"`
	Expertise    datatypes.JSON `json:"expertise" gorm:"type:json"`
	PortfolioURL *string        `json:"portfolio_url" gorm:"size:500"`

	SubmittedAt    time.Time  `json:"submitted_at" gorm:"not null"`
	ReviewerID     *string    `json:"reviewer_id" gorm:"size:255"`
	ReviewedAt     *time.Time `json:"reviewed_at"`
	ReviewComments *string    `json:"review_comments" gorm:"type:text"`

	User *Account `json:"user,omitempty" gorm:"foreignKey:UserID"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (InstructorApplication) TableName() string {
	return "instructor_applications"
}

// ApplicationReview carries the reviewer stamp written with a transition.
type ApplicationReview struct {
	ReviewerID string
	ReviewedAt time.Time
	Comments   *string
}
