package services

import (
	"context"
	"io"

	"github.com/SAP-F-2025/course-marketplace/internal/authz"
	"github.com/SAP-F-2025/course-marketplace/internal/identity"
	"github.com/SAP-F-2025/course-marketplace/internal/models"
)

// ===== ACCOUNT SERVICE =====

type AccountService interface {
	// Provision creates the account of a first-time subject as a student and
	// refreshes email and name on later logins. It never changes the role.
	Provision(ctx context.Context, subject identity.Subject) (*models.Account, error)

	GetProfile(ctx context.Context, accountID string) (*models.Account, error)
	UpdateProfile(ctx context.Context, accountID string, req *models.ProfileUpdateRequest) (*models.Account, error)
	List(ctx context.Context, params *models.ListAccountsParams) (*models.PaginatedResponse, error)

	// ChangeRole promotes an account. Demotions and no-op changes fail with
	// ErrInvalidRoleChange.
	ChangeRole(ctx context.Context, actor authz.Principal, targetID string, req *models.RoleChangeRequest) (*models.RoleChangeResponse, error)
}

// ===== CATALOG SERVICES =====

type CourseService interface {
	Create(ctx context.Context, req *models.CourseCreateRequest, instructorID string) (*models.Course, error)

	// Public catalog, served from cache when Redis is configured
	GetPublished(ctx context.Context, id uint) (*models.Course, error)
	ListPublished(ctx context.Context, params *models.ListCoursesParams) (*models.PaginatedResponse, error)

	// Owner views; ownership is enforced by the authorization guard
	Get(ctx context.Context, id uint) (*models.Course, error)
	ListMine(ctx context.Context, instructorID string, params *models.ListCoursesParams) (*models.PaginatedResponse, error)

	Update(ctx context.Context, id uint, req *models.CourseUpdateRequest, actorID string) (*models.Course, error)
	Publish(ctx context.Context, id uint, actorID string) (*models.Course, error)
	Archive(ctx context.Context, id uint, actorID string) (*models.Course, error)
	Delete(ctx context.Context, id uint, actorID string) error
}

type CategoryService interface {
	Create(ctx context.Context, req *models.CategoryCreateRequest) (*models.Category, error)
	Get(ctx context.Context, id uint) (*models.Category, error)
	Update(ctx context.Context, id uint, req *models.CategoryUpdateRequest) (*models.Category, error)
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context) ([]*models.Category, error)
}

// ===== INSTRUCTOR APPLICATION SERVICE =====

type ApplicationService interface {
	Submit(ctx context.Context, applicant authz.Principal, req *models.ApplicationSubmitRequest) (*models.InstructorApplication, error)

	// Approve and Reject decide a pending application. Approval promotes the
	// applicant in the same transaction.
	Approve(ctx context.Context, id uint, reviewer authz.Principal, req *models.ApplicationReviewRequest) (*models.InstructorApplication, error)
	Reject(ctx context.Context, id uint, reviewer authz.Principal, req *models.ApplicationReviewRequest) (*models.InstructorApplication, error)

	Get(ctx context.Context, id uint) (*models.InstructorApplication, error)
	ListMine(ctx context.Context, userID string) ([]*models.InstructorApplication, error)
	List(ctx context.Context, params *models.ListApplicationsParams) (*models.PaginatedResponse, error)
}

// ===== ENROLLMENT SERVICE =====

type EnrollmentService interface {
	// Enroll activates free courses at once and opens a checkout for paid ones
	Enroll(ctx context.Context, student authz.Principal, courseID uint, req *models.EnrollRequest) (*models.EnrollmentResponse, error)

	Get(ctx context.Context, id uint) (*models.Enrollment, error)

	// Verify asks the gateway about a pending payment and activates on success
	Verify(ctx context.Context, reference string) (*models.Enrollment, error)
	HandleWebhook(ctx context.Context, payload []byte, signature string) error

	ListMine(ctx context.Context, userID string, page, size int) (*models.PaginatedResponse, error)
	ListForCourse(ctx context.Context, courseID uint, page, size int) (*models.PaginatedResponse, error)
}

// ===== DASHBOARD & REPORTING =====

type DashboardService interface {
	GetInstructorDashboard(ctx context.Context, instructorID string) (*models.InstructorDashboard, error)
	GetAdminDashboard(ctx context.Context) (*models.AdminDashboard, error)
}

type ReportService interface {
	// ExportApplications writes an XLSX workbook of applications matching params
	ExportApplications(ctx context.Context, params *models.ListApplicationsParams, w io.Writer) error
}

// ===== SERVICE MANAGER =====

type ServiceManager interface {
	// Core service getters
	Account() AccountService
	Course() CourseService
	Category() CategoryService
	Application() ApplicationService
	Enrollment() EnrollmentService
	Dashboard() DashboardService
	Report() ReportService

	// Health and lifecycle
	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
