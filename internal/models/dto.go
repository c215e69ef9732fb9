package models

import (
	"time"
)

// ===== ACCOUNT DTOS =====

// ProfileUpdateRequest has no role field: roles change only through
// application approval or an admin role change.
type ProfileUpdateRequest struct {
	FullName  *string `json:"full_name" validate:"omitempty,min=1,max=100"`
	Bio       *string `json:"bio" validate:"omitempty,max=2000"`
	Country   *string `json:"country" validate:"omitempty,iso_country"`
	AvatarURL *string `json:"avatar_url" validate:"omitempty,url,max=500"`
}

type RoleChangeRequest struct {
	Role UserRole `json:"role" validate:"required,app_role"`
}

type RoleChangeResponse struct {
	AccountID    string    `json:"account_id"`
	PreviousRole UserRole  `json:"previous_role"`
	Role         UserRole  `json:"role"`
	ChangedAt    time.Time `json:"changed_at"`
}

// ===== CATALOG DTOS =====

type CategoryCreateRequest struct {
	Name        string  `json:"name" validate:"required,min=1,max=100"`
	Slug        string  `json:"slug" validate:"required,course_slug"`
	Description *string `json:"description" validate:"omitempty,max=500"`
}

type CategoryUpdateRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=100"`
	Slug        *string `json:"slug" validate:"omitempty,course_slug"`
	Description *string `json:"description" validate:"omitempty,max=500"`
}

type CourseCreateRequest struct {
	Title       string      `json:"title" validate:"required,min=3,max=200"`
	Slug        string      `json:"slug" validate:"required,course_slug"`
	Description *string     `json:"description" validate:"omitempty,max=10000"`
	Price       int64       `json:"price" validate:"min=0"`
	Currency    string      `json:"currency" validate:"omitempty,currency_code"`
	Level       CourseLevel `json:"level" validate:"omitempty,oneof=beginner intermediate advanced"`
	CategoryID  *uint       `json:"category_id"`
	Tags        []string    `json:"tags" validate:"omitempty,max=10,dive,min=1,max=30"`
}

type CourseUpdateRequest struct {
	Title       *string      `json:"title" validate:"omitempty,min=3,max=200"`
	Slug        *string      `json:"slug" validate:"omitempty,course_slug"`
	Description *string      `json:"description" validate:"omitempty,max=10000"`
	Price       *int64       `json:"price" validate:"omitempty,min=0"`
	Currency    *string      `json:"currency" validate:"omitempty,currency_code"`
	Level       *CourseLevel `json:"level" validate:"omitempty,oneof=beginner intermediate advanced"`
	CategoryID  *uint        `json:"category_id"`
	Tags        []string     `json:"tags" validate:"omitempty,max=10,dive,min=1,max=30"`
}

// ===== INSTRUCTOR APPLICATION DTOS =====

type ApplicationSubmitRequest struct {
	Motivation   string   `json:"motivation" validate:"required,min=20,max=5000"`
	Expertise    []string `json:"expertise" validate:"required,min=1,max=10,dive,min=1,max=50"`
	PortfolioURL *string  `json:"portfolio_url" validate:"omitempty,url,max=500"`
}

type ApplicationReviewRequest struct {
	Comments *string `json:"comments" validate:"omitempty,max=2000"`
}

// ===== ENROLLMENT DTOS =====

type EnrollRequest struct {
	CallbackURL *string `json:"callback_url" validate:"omitempty,url"`
}

type EnrollmentResponse struct {
	Enrollment       *Enrollment `json:"enrollment"`
	AuthorizationURL *string     `json:"authorization_url,omitempty"`
}

// ===== PAGINATION & FILTERING =====

type ListCoursesParams struct {
	Page         int          `json:"page" validate:"min=0"`
	Size         int          `json:"size" validate:"min=1,max=100"`
	Search       string       `json:"search"`
	CategoryID   *uint        `json:"category_id"`
	InstructorID *string      `json:"instructor_id"`
	Status       CourseStatus `json:"status"`
	Level        CourseLevel  `json:"level"`
	SortBy       string       `json:"sort_by"`
	SortDir      string       `json:"sort_dir" validate:"omitempty,oneof=asc desc"`
}

type ListApplicationsParams struct {
	Page   int               `json:"page" validate:"min=0"`
	Size   int               `json:"size" validate:"min=1,max=100"`
	Status ApplicationStatus `json:"status"`
	UserID *string           `json:"user_id"`
}

type ListAccountsParams struct {
	Page   int      `json:"page" validate:"min=0"`
	Size   int      `json:"size" validate:"min=1,max=100"`
	Role   UserRole `json:"role"`
	Search string   `json:"search"`
}

type PaginatedResponse struct {
	Content          interface{} `json:"content"`
	TotalElements    int64       `json:"total_elements"`
	TotalPages       int         `json:"total_pages"`
	Size             int         `json:"size"`
	Page             int         `json:"page"`
	First            bool        `json:"first"`
	Last             bool        `json:"last"`
	NumberOfElements int         `json:"number_of_elements"`
	Empty            bool        `json:"empty"`
}

// NewPaginatedResponse builds a page envelope; page is 1-based.
func NewPaginatedResponse(content interface{}, count int, total int64, page, size int) *PaginatedResponse {
	totalPages := 0
	if size > 0 {
		totalPages = int((total + int64(size) - 1) / int64(size))
	}
	return &PaginatedResponse{
		Content:          content,
		TotalElements:    total,
		TotalPages:       totalPages,
		Size:             size,
		Page:             page,
		First:            page <= 1,
		Last:             page >= totalPages,
		NumberOfElements: count,
		Empty:            count == 0,
	}
}

// ===== DASHBOARD DTOS =====

type CourseSummary struct {
	ID              uint         `json:"id"`
	Title           string       `json:"title"`
	Status          CourseStatus `json:"status"`
	Price           int64        `json:"price"`
	Currency        string       `json:"currency"`
	EnrollmentCount int64        `json:"enrollment_count"`
	CreatedAt       time.Time    `json:"created_at"`
}

type InstructorDashboard struct {
	TotalCourses      int64           `json:"total_courses"`
	PublishedCourses  int64           `json:"published_courses"`
	TotalEnrollments  int64           `json:"total_enrollments"`
	ActiveEnrollments int64           `json:"active_enrollments"`
	Courses           []CourseSummary `json:"courses"`
}

type AdminDashboard struct {
	AccountsByRole       map[UserRole]int64          `json:"accounts_by_role"`
	ApplicationsByStatus map[ApplicationStatus]int64 `json:"applications_by_status"`
	TotalCourses         int64                       `json:"total_courses"`
	PublishedCourses     int64                       `json:"published_courses"`
	ActiveEnrollments    int64                       `json:"active_enrollments"`
	GeneratedAt          time.Time                   `json:"generated_at"`
}

// ===== VALIDATION RESPONSES =====

type ValidationErrorResponse struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   string `json:"value"`
	Code    string `json:"code"`
}

// ===== ERROR RESPONSES =====

type ErrorResponse struct {
	Error            string                    `json:"error"`
	Message          string                    `json:"message"`
	Code             string                    `json:"code"`
	Details          interface{}               `json:"details,omitempty"`
	Timestamp        time.Time                 `json:"timestamp"`
	Path             string                    `json:"path"`
	ValidationErrors []ValidationErrorResponse `json:"validation_errors,omitempty"`
}

type SuccessResponse struct {
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}
