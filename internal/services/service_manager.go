package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/course-marketplace/internal/cache"
	"github.com/SAP-F-2025/course-marketplace/internal/events"
	"github.com/SAP-F-2025/course-marketplace/internal/payment"
	"github.com/SAP-F-2025/course-marketplace/internal/repositories"
	"github.com/SAP-F-2025/course-marketplace/internal/validator"
)

// ServiceManagerConfig carries the collaborators services need beyond the
// repository. Every field is optional.
type ServiceManagerConfig struct {
	Cache       *cache.CacheManager
	Publisher   events.Publisher
	Gateway     payment.Gateway
	CallbackURL string
}

type serviceManager struct {
	db        *gorm.DB
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	config    ServiceManagerConfig

	accountService     AccountService
	courseService      CourseService
	categoryService    CategoryService
	applicationService ApplicationService
	enrollmentService  EnrollmentService
	dashboardService   DashboardService
	reportService      ReportService

	// Lifecycle management
	initialized bool
	shutdown    bool
	mu          sync.RWMutex
}

// NewServiceManager creates a new service manager with all dependencies
func NewServiceManager(db *gorm.DB, repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, config ServiceManagerConfig) ServiceManager {
	if config.Cache == nil {
		config.Cache = cache.NewCacheManager(nil)
	}
	return &serviceManager{
		db:        db,
		repo:      repo,
		logger:    logger,
		validator: validator,
		config:    config,
	}
}

// Initialize sets up all services and their dependencies
func (sm *serviceManager) Initialize(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}
	if sm.shutdown {
		return errors.New("service manager is shut down")
	}

	sm.logger.Info("Initializing service manager")

	cfg := sm.config
	sm.accountService = NewAccountService(sm.repo, sm.db, sm.logger, sm.validator, cfg.Publisher)
	sm.courseService = NewCourseService(sm.repo, sm.db, sm.logger, sm.validator, cfg.Cache, cfg.Publisher)
	sm.categoryService = NewCategoryService(sm.repo, sm.logger, sm.validator, cfg.Cache)
	sm.applicationService = NewApplicationService(sm.repo, sm.db, sm.logger, sm.validator, cfg.Publisher)
	sm.enrollmentService = NewEnrollmentService(sm.repo, sm.logger, cfg.Gateway, cfg.Publisher, cfg.CallbackURL)
	sm.dashboardService = NewDashboardService(sm.repo, sm.logger, cfg.Cache)
	sm.reportService = NewReportService(sm.repo, sm.logger)

	if cfg.Gateway == nil {
		sm.logger.Warn("Payment gateway not configured, paid enrollments are disabled")
	}

	sm.initialized = true
	sm.logger.Info("Service manager initialized successfully")

	return nil
}

// HealthCheck reports the database as fatal and the cache as degraded
func (sm *serviceManager) HealthCheck(ctx context.Context) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		return errors.New("service manager not initialized")
	}
	if sm.shutdown {
		return errors.New("service manager is shut down")
	}

	if err := sm.repo.Ping(ctx); err != nil {
		return fmt.Errorf("repository health check failed: %w", err)
	}
	if sm.config.Cache.Enabled() {
		if err := sm.config.Cache.HealthCheck(ctx); err != nil {
			sm.logger.Warn("Cache health check failed", "error", err)
		}
	}

	return nil
}

// Shutdown closes the event publisher. Connections belong to main.
func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.shutdown {
		return nil
	}
	sm.shutdown = true

	sm.logger.Info("Shutting down service manager")
	if sm.config.Publisher != nil {
		if err := sm.config.Publisher.Close(); err != nil {
			return fmt.Errorf("failed to close event publisher: %w", err)
		}
	}
	return nil
}

// Service getters

func (sm *serviceManager) Account() AccountService {
	sm.mustBeReady()
	return sm.accountService
}

func (sm *serviceManager) Course() CourseService {
	sm.mustBeReady()
	return sm.courseService
}

func (sm *serviceManager) Category() CategoryService {
	sm.mustBeReady()
	return sm.categoryService
}

func (sm *serviceManager) Application() ApplicationService {
	sm.mustBeReady()
	return sm.applicationService
}

func (sm *serviceManager) Enrollment() EnrollmentService {
	sm.mustBeReady()
	return sm.enrollmentService
}

func (sm *serviceManager) Dashboard() DashboardService {
	sm.mustBeReady()
	return sm.dashboardService
}

func (sm *serviceManager) Report() ReportService {
	sm.mustBeReady()
	return sm.reportService
}

func (sm *serviceManager) mustBeReady() {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
}
