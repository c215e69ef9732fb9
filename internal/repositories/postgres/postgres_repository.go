package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/course-marketplace/internal/repositories"
)

// PostgreSQLRepository implements the main Repository interface
type PostgreSQLRepository struct {
	db          *gorm.DB
	redisClient *redis.Client

	// Repository instances
	account     repositories.AccountRepository
	course      repositories.CourseRepository
	category    repositories.CategoryRepository
	application repositories.ApplicationRepository
	enrollment  repositories.EnrollmentRepository
	dashboard   repositories.DashboardRepository
}

// RepositoryConfig holds configuration for repository initialization
type RepositoryConfig struct {
	DB          *gorm.DB
	RedisClient *redis.Client
}

// NewPostgreSQLRepository creates a new repository with all sub-repositories.
// The Redis client is only held so Close can release it; catalog caching
// lives in the service layer.
func NewPostgreSQLRepository(config RepositoryConfig) repositories.Repository {
	repo := &PostgreSQLRepository{
		db:          config.DB,
		redisClient: config.RedisClient,
	}

	repo.account = NewAccountPostgreSQL(config.DB)
	repo.course = NewCoursePostgreSQL(config.DB)
	repo.category = NewCategoryPostgreSQL(config.DB)
	repo.application = NewApplicationPostgreSQL(config.DB)
	repo.enrollment = NewEnrollmentPostgreSQL(config.DB)
	repo.dashboard = NewDashboardRepository(config.DB)

	return repo
}

func (r *PostgreSQLRepository) Account() repositories.AccountRepository {
	return r.account
}

func (r *PostgreSQLRepository) Course() repositories.CourseRepository {
	return r.course
}

func (r *PostgreSQLRepository) Category() repositories.CategoryRepository {
	return r.category
}

func (r *PostgreSQLRepository) Application() repositories.ApplicationRepository {
	return r.application
}

func (r *PostgreSQLRepository) Enrollment() repositories.EnrollmentRepository {
	return r.enrollment
}

func (r *PostgreSQLRepository) Dashboard() repositories.DashboardRepository {
	return r.dashboard
}

func (r *PostgreSQLRepository) DB() *gorm.DB {
	return r.db
}

// WithTransaction executes fn within a database transaction. Repositories
// take the tx argument directly, so no transactional copy is built.
func (r *PostgreSQLRepository) WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

// Ping checks the database. Cache health is reported by the services.
func (r *PostgreSQLRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	return nil
}

// Close closes all connections
func (r *PostgreSQLRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	if r.redisClient != nil {
		if err := r.redisClient.Close(); err != nil {
			return fmt.Errorf("failed to close Redis: %w", err)
		}
	}

	return nil
}

// RepositoryManager implements the RepositoryManager interface
type RepositoryManager struct {
	config RepositoryConfig
	repo   repositories.Repository
}

func NewRepositoryManager(config RepositoryConfig) repositories.RepositoryManager {
	return &RepositoryManager{
		config: config,
	}
}

// Initialize checks connectivity and builds the repository
func (rm *RepositoryManager) Initialize() error {
	if rm.config.DB == nil {
		return fmt.Errorf("database connection is required")
	}

	sqlDB, err := rm.config.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}

	if rm.config.RedisClient != nil {
		if _, err := rm.config.RedisClient.Ping(ctx).Result(); err != nil {
			return fmt.Errorf("redis connection failed: %w", err)
		}
	}

	rm.repo = NewPostgreSQLRepository(rm.config)
	return nil
}

func (rm *RepositoryManager) GetRepository() repositories.Repository {
	return rm.repo
}

func (rm *RepositoryManager) HealthCheck(ctx context.Context) error {
	if rm.repo == nil {
		return fmt.Errorf("repository not initialized")
	}
	return rm.repo.Ping(ctx)
}

// Shutdown closes the database and cache connections
func (rm *RepositoryManager) Shutdown(ctx context.Context) error {
	if rm.repo == nil {
		return nil
	}
	return rm.repo.Close()
}
