package models

import (
	"time"

	"gorm.io/datatypes"
)

type CourseStatus string

const (
	CourseDraft     CourseStatus = "draft"
	CoursePublished CourseStatus = "published"
	CourseArchived  CourseStatus = "archived"
)

type CourseLevel string

const (
	LevelBeginner     CourseLevel = "beginner"
	LevelIntermediate CourseLevel = "intermediate"
	LevelAdvanced     CourseLevel = "advanced"
)

type Category struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"not null;size:100;uniqueIndex"`
	Slug        string    `json:"slug" gorm:"not null;size:120;uniqueIndex"`
	Description *string   `json:"description" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Category) TableName() string {
	return "categories"
}

type Course struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	Title       string         `json:"title" gorm:"not null;size:200;index"`
	Slug        string         `json:"slug" gorm:"not null;size:220;uniqueIndex"`
	Description *string        `json:"description" gorm:"type:text"`
	Price       int64          `json:"price" gorm:"not null;default:0"` // minor units
	Currency    string         `json:"currency" gorm:"size:3;not null;default:NGN"`
	Level       CourseLevel    `json:"level" gorm:"size:20;default:beginner"`
	Status      CourseStatus   `json:"status" gorm:"size:20;default:draft;index"`
	Tags        datatypes.JSON `json:"tags" gorm:"type:json"`

	// Owner of the course. Only the owner or an admin may mutate it.
	InstructorID string    `json:"instructor_id" gorm:"not null;index;size:255"`
	CategoryID   *uint     `json:"category_id" gorm:"index"`
	Category     *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL"`
	Instructor   *Account  `json:"instructor,omitempty" gorm:"foreignKey:InstructorID"`

	Modules []CourseModule `json:"modules,omitempty" gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE"`

	PublishedAt *time.Time `json:"published_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	// Computed fields (not stored)
	EnrollmentCount int `json:"enrollment_count" gorm:"-"`
}

func (Course) TableName() string {
	return "courses"
}

// IsFree reports whether enrolling requires no payment.
func (c *Course) IsFree() bool {
	return c.Price <= 0
}

// CourseModule is the parent of lesson content. It is kept as a thin row so
// that deleting a course cascades through the storage layer.
type CourseModule struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CourseID  uint      `json:"course_id" gorm:"not null;index"`
	Title     string    `json:"title" gorm:"not null;size:200"`
	Position  int       `json:"position" gorm:"not null;default:0"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (CourseModule) TableName() string {
	return "course_modules"
}
