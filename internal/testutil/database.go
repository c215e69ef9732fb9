// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"fmt"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/SAP-F-2025/course-marketplace/internal/models"
)

// NewSQLite opens a private in-memory database with the marketplace schema.
// A single connection keeps the in-memory database alive and serialises
// concurrent writers the way row locks would.
func NewSQLite(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sqlite handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(
		&models.Account{},
		&models.Category{},
		&models.Course{},
		&models.CourseModule{},
		&models.InstructorApplication{},
		&models.Enrollment{},
	); err != nil {
		t.Fatalf("failed to migrate sqlite: %v", err)
	}
	return db
}

// SeedAccount inserts an account with the given role
func SeedAccount(t testing.TB, db *gorm.DB, id string, role models.UserRole) *models.Account {
	t.Helper()

	account := &models.Account{
		ID:       id,
		FullName: "User " + id,
		Email:    id + "@example.com",
		Role:     role,
	}
	if err := db.Create(account).Error; err != nil {
		t.Fatalf("failed to seed account %s: %v", id, err)
	}
	return account
}

// SeedCourse inserts a course owned by instructorID
func SeedCourse(t testing.TB, db *gorm.DB, instructorID string, status models.CourseStatus, price int64) *models.Course {
	t.Helper()

	var n int64
	db.Model(&models.Course{}).Count(&n)
	course := &models.Course{
		Title:        "Course " + instructorID,
		Slug:         fmt.Sprintf("%s-course-%d", instructorID, n+1),
		Price:        price,
		Currency:     "NGN",
		Level:        models.LevelBeginner,
		Status:       status,
		InstructorID: instructorID,
	}
	if err := db.Create(course).Error; err != nil {
		t.Fatalf("failed to seed course: %v", err)
	}
	return course
}
