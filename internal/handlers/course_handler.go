package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/course-marketplace/internal/models"
	"github.com/SAP-F-2025/course-marketplace/internal/services"
	"github.com/SAP-F-2025/course-marketplace/internal/utils"
)

type CourseHandler struct {
	BaseHandler
	courseService services.CourseService
}

func NewCourseHandler(courseService services.CourseService, logger utils.Logger) *CourseHandler {
	return &CourseHandler{
		BaseHandler:   NewBaseHandler(logger),
		courseService: courseService,
	}
}

// CreateCourse creates a draft owned by the caller
// @Summary Create course
// @Tags courses
// @Accept json
// @Produce json
// @Param course body models.CourseCreateRequest true "Course data"
// @Success 201 {object} models.Course
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /courses [post]
func (h *CourseHandler) CreateCourse(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}

	var req models.CourseCreateRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Creating course", "slug", req.Slug)

	course, err := h.courseService.Create(c.Request.Context(), &req, principal.AccountID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, course)
}

// GetCourse returns a published course
// @Summary Get course
// @Tags catalog
// @Param id path uint true "Course ID"
// @Router /catalog/courses/{id} [get]
func (h *CourseHandler) GetCourse(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	course, err := h.courseService.GetPublished(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, course)
}

// ListCourses lists the public catalog
// @Summary List published courses
// @Tags catalog
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 20, max: 100)"
// @Param q query string false "Search in title"
// @Param category_id query int false "Category filter"
// @Param level query string false "Level filter"
// @Router /catalog/courses [get]
func (h *CourseHandler) ListCourses(c *gin.Context) {
	page, err := h.courseService.ListPublished(c.Request.Context(), h.parseCourseParams(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

// GetOwnCourse returns any course, drafts included, to its owner or an admin
// @Summary Get course for editing
// @Tags courses
// @Param id path uint true "Course ID"
// @Router /courses/{id} [get]
func (h *CourseHandler) GetOwnCourse(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	course, err := h.courseService.Get(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, course)
}

// ListMyCourses lists the caller's courses in every status
// @Summary List my courses
// @Tags courses
// @Router /courses/mine [get]
func (h *CourseHandler) ListMyCourses(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}

	page, err := h.courseService.ListMine(c.Request.Context(), principal.AccountID, h.parseCourseParams(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

// UpdateCourse edits a course
// @Summary Update course
// @Tags courses
// @Accept json
// @Param id path uint true "Course ID"
// @Param course body models.CourseUpdateRequest true "Fields to change"
// @Failure 403 {object} ErrorResponse "Not the owner"
// @Router /courses/{id} [put]
func (h *CourseHandler) UpdateCourse(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req models.CourseUpdateRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Updating course", "course_id", id)

	course, err := h.courseService.Update(c.Request.Context(), id, &req, principal.AccountID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, course)
}

// PublishCourse publishes a draft
// @Summary Publish course
// @Tags courses
// @Param id path uint true "Course ID"
// @Router /courses/{id}/publish [post]
func (h *CourseHandler) PublishCourse(c *gin.Context) {
	h.transition(c, "Publishing course", h.courseService.Publish)
}

// ArchiveCourse removes a course from the catalog
// @Summary Archive course
// @Tags courses
// @Param id path uint true "Course ID"
// @Router /courses/{id}/archive [post]
func (h *CourseHandler) ArchiveCourse(c *gin.Context) {
	h.transition(c, "Archiving course", h.courseService.Archive)
}

// DeleteCourse deletes a course without active enrollments
// @Summary Delete course
// @Tags courses
// @Param id path uint true "Course ID"
// @Success 204
// @Failure 409 {object} ErrorResponse "Course has active enrollments"
// @Router /courses/{id} [delete]
func (h *CourseHandler) DeleteCourse(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Deleting course", "course_id", id)

	if err := h.courseService.Delete(c.Request.Context(), id, principal.AccountID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *CourseHandler) transition(c *gin.Context, msg string, fn func(ctx context.Context, id uint, actorID string) (*models.Course, error)) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, msg, "course_id", id)

	course, err := fn(c.Request.Context(), id, principal.AccountID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, course)
}

func (h *CourseHandler) parseCourseParams(c *gin.Context) *models.ListCoursesParams {
	params := &models.ListCoursesParams{
		Page:    parseIntQuery(c, "page", 1),
		Size:    parseIntQuery(c, "size", 20),
		Search:  c.Query("q"),
		Level:   models.CourseLevel(c.Query("level")),
		SortBy:  c.Query("sort_by"),
		SortDir: c.Query("sort_dir"),
	}
	if raw := c.Query("category_id"); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 64); err == nil {
			categoryID := uint(id)
			params.CategoryID = &categoryID
		}
	}
	return params
}
