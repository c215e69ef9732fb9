package postgres

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/course-marketplace/internal/models"
	"github.com/SAP-F-2025/course-marketplace/internal/repositories"
	"gorm.io/gorm"
)

type dashboardRepository struct {
	db *gorm.DB
}

func NewDashboardRepository(db *gorm.DB) repositories.DashboardRepository {
	return &dashboardRepository{db: db}
}

func (r *dashboardRepository) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

// ===== ADMIN TOTALS =====

func (r *dashboardRepository) GetCatalogTotals(ctx context.Context, tx *gorm.DB) (*repositories.CatalogTotals, error) {
	db := r.getDB(tx)
	totals := &repositories.CatalogTotals{}

	if err := db.WithContext(ctx).
		Model(&models.Course{}).
		Count(&totals.TotalCourses).Error; err != nil {
		return nil, fmt.Errorf("failed to get total courses: %w", err)
	}

	if err := db.WithContext(ctx).
		Model(&models.Course{}).
		Where("status = ?", models.CoursePublished).
		Count(&totals.PublishedCourses).Error; err != nil {
		return nil, fmt.Errorf("failed to get published courses: %w", err)
	}

	if err := db.WithContext(ctx).
		Model(&models.Enrollment{}).
		Where("status = ?", models.EnrollmentActive).
		Count(&totals.ActiveEnrollments).Error; err != nil {
		return nil, fmt.Errorf("failed to get active enrollments: %w", err)
	}

	return totals, nil
}

// ===== INSTRUCTOR COURSES =====

func (r *dashboardRepository) GetInstructorCourses(ctx context.Context, tx *gorm.DB, instructorID string) ([]repositories.InstructorCourseData, error) {
	db := r.getDB(tx)
	var courses []repositories.InstructorCourseData

	err := db.WithContext(ctx).
		Table("courses c").
		Select(`c.id, c.title, c.status, c.price, c.currency, c.created_at,
			COUNT(e.id) AS total_enrollments,
			COALESCE(SUM(CASE WHEN e.status = ? THEN 1 ELSE 0 END), 0) AS active_enrollments`, models.EnrollmentActive).
		Joins("LEFT JOIN enrollments e ON e.course_id = c.id").
		Where("c.instructor_id = ?", instructorID).
		Group("c.id, c.title, c.status, c.price, c.currency, c.created_at").
		Order("c.created_at DESC").
		Scan(&courses).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get instructor courses: %w", err)
	}

	return courses, nil
}
