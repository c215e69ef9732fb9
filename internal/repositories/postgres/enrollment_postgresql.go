package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/course-marketplace/internal/models"
	"github.com/SAP-F-2025/course-marketplace/internal/repositories"
)

type EnrollmentPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewEnrollmentPostgreSQL(db *gorm.DB) repositories.EnrollmentRepository {
	return &EnrollmentPostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

func (e *EnrollmentPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return e.db
}

func (e *EnrollmentPostgreSQL) Create(ctx context.Context, tx *gorm.DB, enrollment *models.Enrollment) error {
	if err := e.getDB(tx).WithContext(ctx).Omit("Course").Create(enrollment).Error; err != nil {
		return repositories.Translate("failed to create enrollment", err)
	}
	return nil
}

func (e *EnrollmentPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Enrollment, error) {
	var enrollment models.Enrollment
	if err := e.getDB(tx).WithContext(ctx).Preload("Course").First(&enrollment, id).Error; err != nil {
		return nil, repositories.Translate("failed to get enrollment", err)
	}
	return &enrollment, nil
}

func (e *EnrollmentPostgreSQL) GetByReference(ctx context.Context, tx *gorm.DB, reference string) (*models.Enrollment, error) {
	var enrollment models.Enrollment
	err := e.getDB(tx).WithContext(ctx).
		Where("payment_reference = ?", reference).
		First(&enrollment).Error
	if err != nil {
		return nil, repositories.Translate("failed to get enrollment by reference", err)
	}
	return &enrollment, nil
}

func (e *EnrollmentPostgreSQL) GetByUserAndCourse(ctx context.Context, tx *gorm.DB, userID string, courseID uint) (*models.Enrollment, error) {
	var enrollment models.Enrollment
	err := e.getDB(tx).WithContext(ctx).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		First(&enrollment).Error
	if err != nil {
		return nil, repositories.Translate("failed to get enrollment", err)
	}
	return &enrollment, nil
}

// Activate only moves pending rows, so a replayed webhook is a conflict, not a second activation
func (e *EnrollmentPostgreSQL) Activate(ctx context.Context, tx *gorm.DB, id uint, amountPaid int64, at time.Time) error {
	db := e.getDB(tx)
	result := db.WithContext(ctx).
		Model(&models.Enrollment{}).
		Where("id = ? AND status = ?", id, models.EnrollmentPending).
		Updates(map[string]interface{}{
			"status":       models.EnrollmentActive,
			"amount_paid":  amountPaid,
			"activated_at": at,
		})
	if result.Error != nil {
		return repositories.Translate("failed to activate enrollment", result.Error)
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := db.WithContext(ctx).Model(&models.Enrollment{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return repositories.Translate("failed to activate enrollment", err)
		}
		if count == 0 {
			return repositories.Translate("failed to activate enrollment", gorm.ErrRecordNotFound)
		}
		return repositories.ErrConflict
	}
	return nil
}

func (e *EnrollmentPostgreSQL) ReplaceReference(ctx context.Context, tx *gorm.DB, id uint, previous *string, reference string) error {
	query := e.getDB(tx).WithContext(ctx).
		Model(&models.Enrollment{}).
		Where("id = ? AND status = ?", id, models.EnrollmentPending)
	if previous == nil {
		query = query.Where("payment_reference IS NULL")
	} else {
		query = query.Where("payment_reference = ?", *previous)
	}

	result := query.Update("payment_reference", reference)
	if result.Error != nil {
		return repositories.Translate("failed to replace payment reference", result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.ErrConflict
	}
	return nil
}

func (e *EnrollmentPostgreSQL) ListByUser(ctx context.Context, tx *gorm.DB, userID string, filters repositories.EnrollmentFilters) ([]*models.Enrollment, int64, error) {
	query := e.getDB(tx).WithContext(ctx).Model(&models.Enrollment{}).Where("user_id = ?", userID)
	return e.list(query, filters, true)
}

func (e *EnrollmentPostgreSQL) ListByCourse(ctx context.Context, tx *gorm.DB, courseID uint, filters repositories.EnrollmentFilters) ([]*models.Enrollment, int64, error) {
	query := e.getDB(tx).WithContext(ctx).Model(&models.Enrollment{}).Where("course_id = ?", courseID)
	return e.list(query, filters, false)
}

func (e *EnrollmentPostgreSQL) list(query *gorm.DB, filters repositories.EnrollmentFilters, withCourse bool) ([]*models.Enrollment, int64, error) {
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, repositories.Translate("failed to count enrollments", err)
	}

	query = e.helpers.ApplyPaginationAndSort(query, "created_at", "desc", filters.Limit, filters.Offset)
	if withCourse {
		query = query.Preload("Course")
	}

	var enrollments []*models.Enrollment
	if err := query.Find(&enrollments).Error; err != nil {
		return nil, 0, repositories.Translate("failed to list enrollments", err)
	}
	return enrollments, total, nil
}

func (e *EnrollmentPostgreSQL) CountByCourse(ctx context.Context, tx *gorm.DB, courseID uint, status *models.EnrollmentStatus) (int64, error) {
	query := e.getDB(tx).WithContext(ctx).Model(&models.Enrollment{}).Where("course_id = ?", courseID)
	if status != nil {
		query = query.Where("status = ?", *status)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, repositories.Translate("failed to count course enrollments", err)
	}
	return count, nil
}
