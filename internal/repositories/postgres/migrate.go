package postgres

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/course-marketplace/internal/models"
)

// Migrate creates or updates the marketplace tables
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Account{},
		&models.Category{},
		&models.Course{},
		&models.CourseModule{},
		&models.InstructorApplication{},
		&models.Enrollment{},
	); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}
