package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// DashboardRepository interface for cross-table dashboard aggregates
type DashboardRepository interface {
	// Catalog totals for the admin dashboard
	GetCatalogTotals(ctx context.Context, tx *gorm.DB) (*CatalogTotals, error)

	// Per-course figures for one instructor
	GetInstructorCourses(ctx context.Context, tx *gorm.DB, instructorID string) ([]InstructorCourseData, error)
}

// Data structures for dashboard responses

type CatalogTotals struct {
	TotalCourses      int64 `json:"total_courses"`
	PublishedCourses  int64 `json:"published_courses"`
	ActiveEnrollments int64 `json:"active_enrollments"`
}

type InstructorCourseData struct {
	ID                uint      `json:"id"`
	Title             string    `json:"title"`
	Status            string    `json:"status"`
	Price             int64     `json:"price"`
	Currency          string    `json:"currency"`
	TotalEnrollments  int64     `json:"total_enrollments"`
	ActiveEnrollments int64     `json:"active_enrollments"`
	CreatedAt         time.Time `json:"created_at"`
}
