package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/course-marketplace/internal/models"
	"github.com/SAP-F-2025/course-marketplace/internal/repositories"
)

type ApplicationPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewApplicationPostgreSQL(db *gorm.DB) repositories.ApplicationRepository {
	return &ApplicationPostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

func (a *ApplicationPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return a.db
}

// Create inserts a pending application. The partial unique index on active
// applications turns a concurrent second submission into ErrDuplicate.
func (a *ApplicationPostgreSQL) Create(ctx context.Context, tx *gorm.DB, app *models.InstructorApplication) error {
	if err := a.getDB(tx).WithContext(ctx).Omit("User").Create(app).Error; err != nil {
		return repositories.Translate("failed to create instructor application", err)
	}
	return nil
}

func (a *ApplicationPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.InstructorApplication, error) {
	var app models.InstructorApplication
	if err := a.getDB(tx).WithContext(ctx).First(&app, id).Error; err != nil {
		return nil, repositories.Translate("failed to get instructor application", err)
	}
	return &app, nil
}

func (a *ApplicationPostgreSQL) GetActiveByUser(ctx context.Context, tx *gorm.DB, userID string) (*models.InstructorApplication, error) {
	var app models.InstructorApplication
	err := a.getDB(tx).WithContext(ctx).
		Where("user_id = ? AND status IN ?", userID, []models.ApplicationStatus{models.ApplicationPending, models.ApplicationApproved}).
		Order("id DESC").
		First(&app).Error
	if err != nil {
		return nil, repositories.Translate("failed to get active instructor application", err)
	}
	return &app, nil
}

func (a *ApplicationPostgreSQL) ListByUser(ctx context.Context, tx *gorm.DB, userID string) ([]*models.InstructorApplication, error) {
	var apps []*models.InstructorApplication
	err := a.getDB(tx).WithContext(ctx).
		Where("user_id = ?", userID).
		Order("submitted_at DESC").Order("id DESC").
		Find(&apps).Error
	if err != nil {
		return nil, repositories.Translate("failed to list instructor applications", err)
	}
	return apps, nil
}

func (a *ApplicationPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.ApplicationFilters) ([]*models.InstructorApplication, int64, error) {
	query := a.helpers.ApplyApplicationFilters(a.getDB(tx).WithContext(ctx).Model(&models.InstructorApplication{}), filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, repositories.Translate("failed to count instructor applications", err)
	}

	var apps []*models.InstructorApplication
	query = a.helpers.ApplyPaginationAndSort(query, "submitted_at", "desc", filters.Limit, filters.Offset)
	if err := query.Preload("User").Find(&apps).Error; err != nil {
		return nil, 0, repositories.Translate("failed to list instructor applications", err)
	}

	return apps, total, nil
}

// TransitionStatus is a compare-and-set on status. Of two concurrent
// reviewers only the first matches the expected status.
func (a *ApplicationPostgreSQL) TransitionStatus(ctx context.Context, tx *gorm.DB, id uint, expected, next models.ApplicationStatus, review models.ApplicationReview) error {
	db := a.getDB(tx)
	result := db.WithContext(ctx).
		Model(&models.InstructorApplication{}).
		Where("id = ? AND status = ?", id, expected).
		Updates(map[string]interface{}{
			"status":          next,
			"reviewer_id":     review.ReviewerID,
			"reviewed_at":     review.ReviewedAt,
			"review_comments": review.Comments,
		})
	if result.Error != nil {
		return repositories.Translate("failed to transition instructor application", result.Error)
	}
	if result.RowsAffected == 0 {
		if _, err := a.GetByID(ctx, db, id); err != nil {
			return err
		}
		return repositories.ErrConflict
	}
	return nil
}

func (a *ApplicationPostgreSQL) CountByStatus(ctx context.Context, tx *gorm.DB) (map[models.ApplicationStatus]int64, error) {
	var rows []struct {
		Status models.ApplicationStatus
		Count  int64
	}
	err := a.getDB(tx).WithContext(ctx).
		Model(&models.InstructorApplication{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, repositories.Translate("failed to count instructor applications", err)
	}

	counts := map[models.ApplicationStatus]int64{
		models.ApplicationPending:  0,
		models.ApplicationApproved: 0,
		models.ApplicationRejected: 0,
	}
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}
