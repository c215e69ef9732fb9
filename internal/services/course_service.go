package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/course-marketplace/internal/cache"
	"github.com/SAP-F-2025/course-marketplace/internal/events"
	"github.com/SAP-F-2025/course-marketplace/internal/models"
	"github.com/SAP-F-2025/course-marketplace/internal/repositories"
	"github.com/SAP-F-2025/course-marketplace/internal/validator"
)

const defaultCurrency = "NGN"

type courseService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	cache     *cache.CacheManager
	publisher events.Publisher
}

func NewCourseService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, cacheManager *cache.CacheManager, publisher events.Publisher) CourseService {
	if cacheManager == nil {
		cacheManager = cache.NewCacheManager(nil)
	}
	return &courseService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		cache:     cacheManager,
		publisher: publisher,
	}
}

func (s *courseService) Create(ctx context.Context, req *models.CourseCreateRequest, instructorID string) (*models.Course, error) {
	s.logger.Info("Creating course", "instructor_id", instructorID, "title", req.Title)

	if errs := s.validator.GetBusinessValidator().ValidateCourseCreate(req); len(errs) > 0 {
		return nil, errs
	}

	if err := s.ensureSlugFree(ctx, req.Slug, nil); err != nil {
		return nil, err
	}
	if err := s.ensureCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}

	course := &models.Course{
		Title:        strings.TrimSpace(req.Title),
		Slug:         req.Slug,
		Description:  req.Description,
		Price:        req.Price,
		Currency:     req.Currency,
		Level:        req.Level,
		Status:       models.CourseDraft,
		Tags:         jsonList(req.Tags),
		InstructorID: instructorID,
		CategoryID:   req.CategoryID,
	}
	if course.Currency == "" {
		course.Currency = defaultCurrency
	}
	if course.Level == "" {
		course.Level = models.LevelBeginner
	}

	if err := s.repo.Course().Create(ctx, nil, course); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrSlugTaken
		}
		return nil, fmt.Errorf("failed to create course: %w", err)
	}

	s.logger.Info("Course created successfully", "course_id", course.ID)
	return course, nil
}

func (s *courseService) GetPublished(ctx context.Context, id uint) (*models.Course, error) {
	var course models.Course
	key := fmt.Sprintf("id:%d", id)

	err := s.cache.Course.CacheOrExecute(ctx, key, &course, cache.CourseCacheConfig.TTL, func() (interface{}, error) {
		found, err := s.getCourse(ctx, nil, id)
		if err != nil {
			return nil, err
		}
		if found.Status != models.CoursePublished {
			return nil, ErrCourseNotFound
		}
		return found, nil
	})
	if err != nil {
		if errors.Is(err, ErrCourseNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}

	return &course, nil
}

func (s *courseService) ListPublished(ctx context.Context, params *models.ListCoursesParams) (*models.PaginatedResponse, error) {
	published := *params
	published.Status = models.CoursePublished

	var page models.PaginatedResponse
	err := s.cache.Course.CacheOrExecute(ctx, catalogKey(&published), &page, cache.CourseCacheConfig.TTL, func() (interface{}, error) {
		return s.list(ctx, &published)
	})
	if err != nil {
		return nil, err
	}

	return &page, nil
}

func (s *courseService) Get(ctx context.Context, id uint) (*models.Course, error) {
	return s.getCourse(ctx, nil, id)
}

func (s *courseService) ListMine(ctx context.Context, instructorID string, params *models.ListCoursesParams) (*models.PaginatedResponse, error) {
	mine := *params
	mine.InstructorID = &instructorID
	return s.list(ctx, &mine)
}

func (s *courseService) Update(ctx context.Context, id uint, req *models.CourseUpdateRequest, actorID string) (*models.Course, error) {
	s.logger.Info("Updating course", "course_id", id, "actor_id", actorID)

	course, err := s.getCourse(ctx, nil, id)
	if err != nil {
		return nil, err
	}

	if errs := s.validator.GetBusinessValidator().ValidateCourseUpdate(req, course); len(errs) > 0 {
		return nil, errs
	}

	if req.Slug != nil && *req.Slug != course.Slug {
		if err := s.ensureSlugFree(ctx, *req.Slug, &course.ID); err != nil {
			return nil, err
		}
		course.Slug = *req.Slug
	}
	if req.CategoryID != nil {
		if err := s.ensureCategory(ctx, req.CategoryID); err != nil {
			return nil, err
		}
		course.CategoryID = req.CategoryID
		course.Category = nil
	}
	if req.Title != nil {
		course.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		course.Description = req.Description
	}
	if req.Price != nil {
		course.Price = *req.Price
	}
	if req.Currency != nil {
		course.Currency = *req.Currency
	}
	if req.Level != nil {
		course.Level = *req.Level
	}
	if req.Tags != nil {
		course.Tags = jsonList(req.Tags)
	}

	if err := s.save(ctx, course); err != nil {
		return nil, err
	}

	s.logger.Info("Course updated successfully", "course_id", id)
	return course, nil
}

func (s *courseService) Publish(ctx context.Context, id uint, actorID string) (*models.Course, error) {
	s.logger.Info("Publishing course", "course_id", id, "actor_id", actorID)

	course, err := s.getCourse(ctx, nil, id)
	if err != nil {
		return nil, err
	}

	if errs := s.validator.GetBusinessValidator().ValidatePublish(course); len(errs) > 0 {
		return nil, errs
	}

	now := time.Now()
	course.Status = models.CoursePublished
	course.PublishedAt = &now

	if err := s.save(ctx, course); err != nil {
		return nil, err
	}

	s.logger.Info("Course published", "course_id", id)
	return course, nil
}

func (s *courseService) Archive(ctx context.Context, id uint, actorID string) (*models.Course, error) {
	s.logger.Info("Archiving course", "course_id", id, "actor_id", actorID)

	course, err := s.getCourse(ctx, nil, id)
	if err != nil {
		return nil, err
	}

	if course.Status == models.CourseArchived {
		return nil, NewBusinessRuleError(
			"COURSE-ALREADY-ARCHIVED",
			"Course is already archived",
			map[string]interface{}{"course_id": id},
		)
	}

	course.Status = models.CourseArchived
	if err := s.save(ctx, course); err != nil {
		return nil, err
	}

	return course, nil
}

func (s *courseService) Delete(ctx context.Context, id uint, actorID string) error {
	s.logger.Info("Deleting course", "course_id", id, "actor_id", actorID)

	var course *models.Course
	err := s.withTx(ctx, func(tx *gorm.DB) error {
		var err error
		course, err = s.getCourse(ctx, tx, id)
		if err != nil {
			return err
		}

		active := models.EnrollmentActive
		count, err := s.repo.Enrollment().CountByCourse(ctx, tx, id, &active)
		if err != nil {
			return fmt.Errorf("failed to count enrollments: %w", err)
		}
		if count > 0 {
			return fmt.Errorf("%d active enrollments: %w", count, ErrCourseHasEnrollments)
		}

		if err := s.repo.Course().Delete(ctx, tx, id); err != nil {
			if repositories.IsNotFound(err) {
				return ErrCourseNotFound
			}
			return fmt.Errorf("failed to delete course: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	cache.InvalidateCourseCache(ctx, s.cache, id)
	publishAfterCommit(ctx, s.publisher, s.logger, events.NewEvent(events.CourseDeleted, events.CourseDeletedData{
		CourseID:     id,
		InstructorID: course.InstructorID,
		DeletedBy:    actorID,
	}))

	s.logger.Info("Course deleted successfully", "course_id", id)
	return nil
}

// ===== HELPERS =====

func (s *courseService) withTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return s.db.WithContext(ctx).Transaction(fn)
}

func (s *courseService) getCourse(ctx context.Context, tx *gorm.DB, id uint) (*models.Course, error) {
	course, err := s.repo.Course().GetByID(ctx, tx, id)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	return course, nil
}

func (s *courseService) save(ctx context.Context, course *models.Course) error {
	if err := s.repo.Course().Update(ctx, nil, course); err != nil {
		switch {
		case repositories.IsNotFound(err):
			return ErrCourseNotFound
		case errors.Is(err, repositories.ErrDuplicate):
			return ErrSlugTaken
		}
		return fmt.Errorf("failed to update course: %w", err)
	}
	cache.InvalidateCourseCache(ctx, s.cache, course.ID)
	return nil
}

func (s *courseService) ensureSlugFree(ctx context.Context, slug string, excludeID *uint) error {
	taken, err := s.repo.Course().ExistsBySlug(ctx, nil, slug, excludeID)
	if err != nil {
		return fmt.Errorf("failed to check slug: %w", err)
	}
	if taken {
		return ErrSlugTaken
	}
	return nil
}

func (s *courseService) ensureCategory(ctx context.Context, categoryID *uint) error {
	if categoryID == nil {
		return nil
	}
	if _, err := s.repo.Category().GetByID(ctx, nil, *categoryID); err != nil {
		if repositories.IsNotFound(err) {
			return ErrCategoryNotFound
		}
		return fmt.Errorf("failed to get category: %w", err)
	}
	return nil
}

func (s *courseService) list(ctx context.Context, params *models.ListCoursesParams) (*models.PaginatedResponse, error) {
	page, size, offset := normalizePage(params.Page, params.Size)

	filters := repositories.CourseFilters{
		CategoryID:   params.CategoryID,
		InstructorID: params.InstructorID,
		Search:       params.Search,
		Limit:        size,
		Offset:       offset,
		SortBy:       params.SortBy,
		SortOrder:    params.SortDir,
	}
	if params.Status != "" {
		status := params.Status
		filters.Status = &status
	}
	if params.Level != "" {
		level := params.Level
		filters.Level = &level
	}

	courses, total, err := s.repo.Course().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}

	return models.NewPaginatedResponse(courses, len(courses), total, page, size), nil
}

// catalogKey lives under the "list:" prefix that InvalidateCourseCache drops
func catalogKey(p *models.ListCoursesParams) string {
	category, instructor := "", ""
	if p.CategoryID != nil {
		category = fmt.Sprint(*p.CategoryID)
	}
	if p.InstructorID != nil {
		instructor = *p.InstructorID
	}
	return fmt.Sprintf("list:%d:%d:%s:%s:%s:%s:%s:%s",
		p.Page, p.Size, strings.ToLower(p.Search), category, instructor, p.Level, p.SortBy, p.SortDir)
}
