package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/course-marketplace/internal/models"
	"github.com/SAP-F-2025/course-marketplace/internal/repositories"
)

type CoursePostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewCoursePostgreSQL(db *gorm.DB) repositories.CourseRepository {
	return &CoursePostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

// getDB returns the transaction DB if provided, otherwise returns the default DB
func (c *CoursePostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return c.db
}

func (c *CoursePostgreSQL) Create(ctx context.Context, tx *gorm.DB, course *models.Course) error {
	if err := c.getDB(tx).WithContext(ctx).Omit("Category", "Instructor", "Modules").Create(course).Error; err != nil {
		return repositories.Translate("failed to create course", err)
	}
	return nil
}

func (c *CoursePostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Course, error) {
	var course models.Course
	err := c.getDB(tx).WithContext(ctx).
		Preload("Category").
		First(&course, id).Error
	if err != nil {
		return nil, repositories.Translate("failed to get course", err)
	}
	return &course, nil
}

// GetOwnerID reads a single column so the ownership check stays one cheap query
func (c *CoursePostgreSQL) GetOwnerID(ctx context.Context, tx *gorm.DB, id uint) (string, error) {
	var row struct {
		InstructorID string
	}
	err := c.getDB(tx).WithContext(ctx).
		Model(&models.Course{}).
		Select("instructor_id").
		Where("id = ?", id).
		Take(&row).Error
	if err != nil {
		return "", repositories.Translate("failed to get course owner", err)
	}
	return row.InstructorID, nil
}

// Update writes the editable columns. The owner column is not among them.
func (c *CoursePostgreSQL) Update(ctx context.Context, tx *gorm.DB, course *models.Course) error {
	result := c.getDB(tx).WithContext(ctx).
		Model(&models.Course{ID: course.ID}).
		Select("title", "slug", "description", "price", "currency", "level", "status", "tags", "category_id", "published_at").
		Updates(course)
	if result.Error != nil {
		return repositories.Translate("failed to update course", result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.Translate("failed to update course", gorm.ErrRecordNotFound)
	}
	return nil
}

// Delete removes the course together with its modules and enrollments
func (c *CoursePostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	return c.getDB(tx).WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("course_id = ?", id).Delete(&models.CourseModule{}).Error; err != nil {
			return repositories.Translate("failed to delete course modules", err)
		}
		if err := tx.Where("course_id = ?", id).Delete(&models.Enrollment{}).Error; err != nil {
			return repositories.Translate("failed to delete course enrollments", err)
		}

		result := tx.Delete(&models.Course{}, id)
		if result.Error != nil {
			return repositories.Translate("failed to delete course", result.Error)
		}
		if result.RowsAffected == 0 {
			return repositories.Translate("failed to delete course", gorm.ErrRecordNotFound)
		}
		return nil
	})
}

func (c *CoursePostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.CourseFilters) ([]*models.Course, int64, error) {
	query := c.helpers.ApplyCourseFilters(c.getDB(tx).WithContext(ctx).Model(&models.Course{}), filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, repositories.Translate("failed to count courses", err)
	}

	var courses []*models.Course
	query = c.helpers.ApplyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)
	if err := query.Preload("Category").Find(&courses).Error; err != nil {
		return nil, 0, repositories.Translate("failed to list courses", err)
	}

	return courses, total, nil
}

func (c *CoursePostgreSQL) ExistsBySlug(ctx context.Context, tx *gorm.DB, slug string, excludeID *uint) (bool, error) {
	query := c.getDB(tx).WithContext(ctx).Model(&models.Course{}).Where("slug = ?", slug)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, repositories.Translate("failed to check course slug", err)
	}
	return count > 0, nil
}

func (c *CoursePostgreSQL) CountByInstructor(ctx context.Context, tx *gorm.DB, instructorID string) (int64, error) {
	var count int64
	err := c.getDB(tx).WithContext(ctx).
		Model(&models.Course{}).
		Where("instructor_id = ?", instructorID).
		Count(&count).Error
	if err != nil {
		return 0, repositories.Translate("failed to count instructor courses", err)
	}
	return count, nil
}
