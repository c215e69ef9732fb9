package models

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string
type Role = UserRole // Alias for compatibility

const (
	RoleStudent    UserRole = "student"
	RoleInstructor UserRole = "instructor"
	RoleAdmin      UserRole = "admin"
)

// Account is a principal of the marketplace. ID is the identity provider's
// subject id, so the same person maps to the same row across logins.
type Account struct {
	ID       string   `json:"id" gorm:"primaryKey;size:255"`
	FullName string   `json:"full_name" gorm:"not null;size:100"`
	Email    string   `json:"email" gorm:"not null;size:255;uniqueIndex:idx_accounts_email,where:email <> ''"`
	Role     UserRole `json:"role" gorm:"size:20;not null;default:student;index"`

	// Profile info
	Bio       *string `json:"bio" gorm:"type:text"`
	Country   *string `json:"country" gorm:"size:2"`
	AvatarURL *string `json:"avatar_url" gorm:"size:500"`

	EmailVerified bool       `json:"email_verified" gorm:"default:false"`
	LastLoginAt   *time.Time `json:"last_login_at"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Account) TableName() string {
	return "accounts"
}
