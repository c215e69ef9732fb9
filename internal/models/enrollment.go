package models

import "time"

type EnrollmentStatus string

const (
	EnrollmentPending   EnrollmentStatus = "pending"
	EnrollmentActive    EnrollmentStatus = "active"
	EnrollmentCancelled EnrollmentStatus = "cancelled"
)

type Enrollment struct {
	ID       uint             `json:"id" gorm:"primaryKey"`
	UserID   string           `json:"user_id" gorm:"not null;size:255;uniqueIndex:idx_user_course"`
	CourseID uint             `json:"course_id" gorm:"not null;uniqueIndex:idx_user_course"`
	Status   EnrollmentStatus `json:"status" gorm:"size:20;not null;default:pending;index"`

	AmountPaid       int64   `json:"amount_paid" gorm:"not null;default:0"`
	Currency         string  `json:"currency" gorm:"size:3"`
	PaymentReference *string `json:"payment_reference,omitempty" gorm:"size:100;uniqueIndex"`

	Course *Course `json:"course,omitempty" gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE"`

	EnrolledAt  time.Time  `json:"enrolled_at" gorm:"not null"`
	ActivatedAt *time.Time `json:"activated_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (Enrollment) TableName() string {
	return "enrollments"
}
