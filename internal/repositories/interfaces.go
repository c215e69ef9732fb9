package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/course-marketplace/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type AccountFilters struct {
	Role   *models.UserRole `json:"role"`
	Query  string           `json:"query"` // name or email
	Limit  int              `json:"limit"`
	Offset int              `json:"offset"`
}

type CourseFilters struct {
	Status       *models.CourseStatus `json:"status"`
	Level        *models.CourseLevel  `json:"level"`
	CategoryID   *uint                `json:"category_id"`
	InstructorID *string              `json:"instructor_id"`
	Search       string               `json:"search"`
	Limit        int                  `json:"limit"`
	Offset       int                  `json:"offset"`
	SortBy       string               `json:"sort_by"`    // "created_at", "title", "price"
	SortOrder    string               `json:"sort_order"` // "asc", "desc"
}

type ApplicationFilters struct {
	Status   *models.ApplicationStatus `json:"status"`
	UserID   *string                   `json:"user_id"`
	DateFrom *time.Time                `json:"date_from"`
	DateTo   *time.Time                `json:"date_to"`
	Limit    int                       `json:"limit"`
	Offset   int                       `json:"offset"`
}

type EnrollmentFilters struct {
	Status *models.EnrollmentStatus `json:"status"`
	Limit  int                      `json:"limit"`
	Offset int                      `json:"offset"`
}

// ===== REPOSITORY INTERFACES =====
// A nil tx means the repository's default connection.

type AccountRepository interface {
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Account, error)
	GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.Account, error)
	Create(ctx context.Context, tx *gorm.DB, account *models.Account) error
	UpdateProfile(ctx context.Context, tx *gorm.DB, account *models.Account) error
	TouchLogin(ctx context.Context, tx *gorm.DB, id string, at time.Time) error

	// UpdateRole is a compare-and-set on the role column and returns
	// ErrConflict when the stored role is no longer expected.
	UpdateRole(ctx context.Context, tx *gorm.DB, id string, expected, next models.UserRole) error

	// PromoteToInstructor raises a student to instructor. Instructor and
	// admin rows are left untouched.
	PromoteToInstructor(ctx context.Context, tx *gorm.DB, id string) error

	List(ctx context.Context, tx *gorm.DB, filters AccountFilters) ([]*models.Account, int64, error)
	CountByRole(ctx context.Context, tx *gorm.DB) (map[models.UserRole]int64, error)
}

type CourseRepository interface {
	Create(ctx context.Context, tx *gorm.DB, course *models.Course) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Course, error)

	// GetOwnerID reads the owner straight from the database
	GetOwnerID(ctx context.Context, tx *gorm.DB, id uint) (string, error)

	Update(ctx context.Context, tx *gorm.DB, course *models.Course) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
	List(ctx context.Context, tx *gorm.DB, filters CourseFilters) ([]*models.Course, int64, error)
	ExistsBySlug(ctx context.Context, tx *gorm.DB, slug string, excludeID *uint) (bool, error)
	CountByInstructor(ctx context.Context, tx *gorm.DB, instructorID string) (int64, error)
}

type CategoryRepository interface {
	Create(ctx context.Context, tx *gorm.DB, category *models.Category) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Category, error)
	Update(ctx context.Context, tx *gorm.DB, category *models.Category) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
	List(ctx context.Context, tx *gorm.DB) ([]*models.Category, error)
}

type ApplicationRepository interface {
	Create(ctx context.Context, tx *gorm.DB, app *models.InstructorApplication) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.InstructorApplication, error)

	// GetActiveByUser returns the pending or approved application of a user
	GetActiveByUser(ctx context.Context, tx *gorm.DB, userID string) (*models.InstructorApplication, error)

	ListByUser(ctx context.Context, tx *gorm.DB, userID string) ([]*models.InstructorApplication, error)
	List(ctx context.Context, tx *gorm.DB, filters ApplicationFilters) ([]*models.InstructorApplication, int64, error)

	// TransitionStatus writes next only while the row still holds expected,
	// returning ErrConflict when another writer got there first.
	TransitionStatus(ctx context.Context, tx *gorm.DB, id uint, expected, next models.ApplicationStatus, review models.ApplicationReview) error

	CountByStatus(ctx context.Context, tx *gorm.DB) (map[models.ApplicationStatus]int64, error)
}

type EnrollmentRepository interface {
	Create(ctx context.Context, tx *gorm.DB, enrollment *models.Enrollment) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Enrollment, error)
	GetByReference(ctx context.Context, tx *gorm.DB, reference string) (*models.Enrollment, error)
	GetByUserAndCourse(ctx context.Context, tx *gorm.DB, userID string, courseID uint) (*models.Enrollment, error)

	// Activate moves a pending enrollment to active, ErrConflict otherwise
	Activate(ctx context.Context, tx *gorm.DB, id uint, amountPaid int64, at time.Time) error
	// ReplaceReference swaps the payment reference of a pending enrollment
	// still carrying previous, ErrConflict otherwise
	ReplaceReference(ctx context.Context, tx *gorm.DB, id uint, previous *string, reference string) error

	ListByUser(ctx context.Context, tx *gorm.DB, userID string, filters EnrollmentFilters) ([]*models.Enrollment, int64, error)
	ListByCourse(ctx context.Context, tx *gorm.DB, courseID uint, filters EnrollmentFilters) ([]*models.Enrollment, int64, error)
	CountByCourse(ctx context.Context, tx *gorm.DB, courseID uint, status *models.EnrollmentStatus) (int64, error)
}
