package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/course-marketplace/internal/authz"
	"github.com/SAP-F-2025/course-marketplace/internal/identity"
	"github.com/SAP-F-2025/course-marketplace/internal/observability"
	"github.com/SAP-F-2025/course-marketplace/internal/repositories"
	"github.com/SAP-F-2025/course-marketplace/internal/services"
	"github.com/SAP-F-2025/course-marketplace/internal/utils"
)

// RouterConfig carries what the route table needs besides the services
type RouterConfig struct {
	Verifier  identity.Verifier
	Exchanger identity.Exchanger // nil when logins happen elsewhere
	Metrics   *observability.Metrics
}

type HandlerManager struct {
	authHandler        *AuthHandler
	accountHandler     *AccountHandler
	categoryHandler    *CategoryHandler
	courseHandler      *CourseHandler
	applicationHandler *ApplicationHandler
	enrollmentHandler  *EnrollmentHandler
	dashboardHandler   *DashboardHandler

	guard    *authz.Guard
	services services.ServiceManager
	metrics  *observability.Metrics
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	guard *authz.Guard,
	repo repositories.Repository,
	logger utils.Logger,
	cfg RouterConfig,
) *HandlerManager {
	RegisterOwnerLookups(guard, repo)

	return &HandlerManager{
		authHandler:        NewAuthHandler(serviceManager.Account(), cfg.Verifier, cfg.Exchanger, logger),
		accountHandler:     NewAccountHandler(serviceManager.Account(), logger),
		categoryHandler:    NewCategoryHandler(serviceManager.Category(), logger),
		courseHandler:      NewCourseHandler(serviceManager.Course(), logger),
		applicationHandler: NewApplicationHandler(serviceManager.Application(), logger),
		enrollmentHandler:  NewEnrollmentHandler(serviceManager.Enrollment(), logger),
		dashboardHandler:   NewDashboardHandler(serviceManager.Dashboard(), serviceManager.Report(), logger),
		guard:              guard,
		services:           serviceManager,
		metrics:            cfg.Metrics,
	}
}

// RegisterOwnerLookups binds every ownership-scoped resource kind to a fresh
// datastore read of its owner.
func RegisterOwnerLookups(guard *authz.Guard, repo repositories.Repository) {
	guard.RegisterOwner(authz.ResourceCourse, "id", authz.UintOwnerLookup(func(ctx context.Context, id uint) (string, error) {
		return repo.Course().GetOwnerID(ctx, nil, id)
	}))
	guard.RegisterOwner(authz.ResourceApplication, "id", authz.UintOwnerLookup(func(ctx context.Context, id uint) (string, error) {
		app, err := repo.Application().GetByID(ctx, nil, id)
		if err != nil {
			return "", err
		}
		return app.UserID, nil
	}))
	guard.RegisterOwner(authz.ResourceEnrollment, "id", authz.UintOwnerLookup(func(ctx context.Context, id uint) (string, error) {
		enrollment, err := repo.Enrollment().GetByID(ctx, nil, id)
		if err != nil {
			return "", err
		}
		return enrollment.UserID, nil
	}))
	guard.RegisterOwner(authz.ResourcePayment, "reference", func(ctx context.Context, reference string) (string, error) {
		enrollment, err := repo.Enrollment().GetByReference(ctx, nil, reference)
		if err != nil {
			return "", err
		}
		return enrollment.UserID, nil
	})
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	g := hm.guard

	v1 := router.Group("/api/v1")

	// Public routes
	{
		v1.GET("/auth/callback", hm.authHandler.Callback)
		v1.POST("/auth/session", hm.authHandler.Session)

		catalog := v1.Group("/catalog")
		catalog.GET("/courses", hm.courseHandler.ListCourses)
		catalog.GET("/courses/:id", hm.courseHandler.GetCourse)
		catalog.GET("/categories", hm.categoryHandler.ListCategories)
		catalog.GET("/categories/:id", hm.categoryHandler.GetCategory)

		v1.POST("/payments/webhook", hm.enrollmentHandler.PaymentWebhook)
	}

	api := v1.Group("")
	api.Use(g.Authenticate())
	{
		api.GET("/auth/me", g.Authorize(authz.OpAccountProfileRead), hm.authHandler.Me)

		accounts := api.Group("/accounts")
		{
			accounts.GET("/me", g.Authorize(authz.OpAccountProfileRead), hm.accountHandler.GetProfile)
			accounts.PUT("/me", g.Authorize(authz.OpAccountProfileUpdate), hm.accountHandler.UpdateProfile)
			accounts.GET("", g.Authorize(authz.OpAccountList), hm.accountHandler.ListAccounts)
			accounts.PUT("/:id/role", g.Authorize(authz.OpAccountRoleUpdate), hm.accountHandler.ChangeRole)
		}

		categories := api.Group("/categories")
		{
			categories.POST("", g.Authorize(authz.OpCategoryCreate), hm.categoryHandler.CreateCategory)
			categories.PUT("/:id", g.Authorize(authz.OpCategoryUpdate), hm.categoryHandler.UpdateCategory)
			categories.DELETE("/:id", g.Authorize(authz.OpCategoryDelete), hm.categoryHandler.DeleteCategory)
		}

		courses := api.Group("/courses")
		{
			courses.POST("", g.Authorize(authz.OpCourseCreate), hm.courseHandler.CreateCourse)
			courses.GET("/mine", g.Authorize(authz.OpCourseListMine), hm.courseHandler.ListMyCourses)
			courses.GET("/:id", g.Authorize(authz.OpCourseReadDraft), hm.courseHandler.GetOwnCourse)
			courses.PUT("/:id", g.Authorize(authz.OpCourseUpdate), hm.courseHandler.UpdateCourse)
			courses.POST("/:id/publish", g.Authorize(authz.OpCoursePublish), hm.courseHandler.PublishCourse)
			courses.POST("/:id/archive", g.Authorize(authz.OpCourseArchive), hm.courseHandler.ArchiveCourse)
			courses.DELETE("/:id", g.Authorize(authz.OpCourseDelete), hm.courseHandler.DeleteCourse)

			courses.POST("/:id/enroll", g.Authorize(authz.OpEnrollmentCreate), hm.enrollmentHandler.Enroll)
			courses.GET("/:id/enrollments", g.Authorize(authz.OpEnrollmentListCourse), hm.enrollmentHandler.ListCourseEnrollments)
		}

		applications := api.Group("/applications")
		{
			applications.POST("", g.Authorize(authz.OpApplicationSubmit), hm.applicationHandler.SubmitApplication)
			applications.GET("/mine", g.Authorize(authz.OpApplicationListMine), hm.applicationHandler.ListMyApplications)
			applications.GET("/:id", g.Authorize(authz.OpApplicationRead), hm.applicationHandler.GetApplication)
		}

		enrollments := api.Group("/enrollments")
		{
			enrollments.GET("/mine", g.Authorize(authz.OpEnrollmentListMine), hm.enrollmentHandler.ListMyEnrollments)
			enrollments.GET("/:id", g.Authorize(authz.OpEnrollmentRead), hm.enrollmentHandler.GetEnrollment)
		}

		api.POST("/payments/:reference/verify", g.Authorize(authz.OpEnrollmentVerify), hm.enrollmentHandler.VerifyPayment)

		dashboard := api.Group("/dashboard")
		{
			dashboard.GET("/instructor", g.Authorize(authz.OpDashboardInstructor), hm.dashboardHandler.GetInstructorDashboard)
			dashboard.GET("/admin", g.Authorize(authz.OpDashboardAdmin), hm.dashboardHandler.GetAdminDashboard)
		}

		admin := api.Group("/admin")
		{
			admin.GET("/applications", g.Authorize(authz.OpApplicationList), hm.applicationHandler.ListApplications)
			admin.GET("/applications/export", g.Authorize(authz.OpApplicationExport), hm.dashboardHandler.ExportApplications)
			admin.POST("/applications/:id/approve", g.Authorize(authz.OpApplicationReview), hm.applicationHandler.ApproveApplication)
			admin.POST("/applications/:id/reject", g.Authorize(authz.OpApplicationReview), hm.applicationHandler.RejectApplication)
		}
	}

	router.GET("/health", hm.health)
	if hm.metrics != nil {
		router.GET("/metrics", hm.metrics.Handler())
	}
}

func (hm *HandlerManager) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	if err := hm.services.HealthCheck(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "unhealthy",
			"service": "course-marketplace",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "course-marketplace",
	})
}
