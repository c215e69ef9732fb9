package repositories

import (
	"context"

	"gorm.io/gorm"
)

// Repository aggregates all the repository interfaces
type Repository interface {
	// Identity domain
	Account() AccountRepository

	// Catalog domain
	Course() CourseRepository
	Category() CategoryRepository

	// Instructor onboarding
	Application() ApplicationRepository

	// Enrollment domain
	Enrollment() EnrollmentRepository

	// Dashboard domain
	Dashboard() DashboardRepository

	// DB returns the default connection services start transactions from
	DB() *gorm.DB

	// Transaction support
	WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error

	// Health check
	Ping(ctx context.Context) error

	// Close connections
	Close() error
}

// RepositoryManager interface for managing repository lifecycle
type RepositoryManager interface {
	// Initialize repositories with database connections
	Initialize() error

	// Get repository instance
	GetRepository() Repository

	// Health check for all repositories
	HealthCheck(ctx context.Context) error

	// Graceful shutdown
	Shutdown(ctx context.Context) error
}
