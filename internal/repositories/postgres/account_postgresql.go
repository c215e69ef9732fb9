package postgres

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/course-marketplace/internal/models"
	"github.com/SAP-F-2025/course-marketplace/internal/repositories"
)

// AccountPostgreSQL stores accounts. Nothing here is cached: every read is
// served by the database so role changes take effect on the next request.
type AccountPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewAccountPostgreSQL(db *gorm.DB) repositories.AccountRepository {
	return &AccountPostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

// getDB returns the transaction DB if provided, otherwise returns the default DB
func (a *AccountPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return a.db
}

func (a *AccountPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Account, error) {
	var account models.Account
	err := a.getDB(tx).WithContext(ctx).
		Where("id = ?", id).
		First(&account).Error
	if err != nil {
		return nil, repositories.Translate("failed to get account", err)
	}
	return &account, nil
}

func (a *AccountPostgreSQL) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.Account, error) {
	var account models.Account
	err := a.getDB(tx).WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&account).Error
	if err != nil {
		return nil, repositories.Translate("failed to get account by email", err)
	}
	return &account, nil
}

func (a *AccountPostgreSQL) Create(ctx context.Context, tx *gorm.DB, account *models.Account) error {
	account.Email = strings.ToLower(strings.TrimSpace(account.Email))
	if err := a.getDB(tx).WithContext(ctx).Create(account).Error; err != nil {
		return repositories.Translate("failed to create account", err)
	}
	return nil
}

// UpdateProfile writes profile columns only; the role column is never part of it
func (a *AccountPostgreSQL) UpdateProfile(ctx context.Context, tx *gorm.DB, account *models.Account) error {
	result := a.getDB(tx).WithContext(ctx).
		Model(&models.Account{}).
		Where("id = ?", account.ID).
		Select("full_name", "email", "bio", "country", "avatar_url", "email_verified").
		Updates(account)
	if result.Error != nil {
		return repositories.Translate("failed to update account profile", result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.Translate("failed to update account profile", gorm.ErrRecordNotFound)
	}
	return nil
}

func (a *AccountPostgreSQL) TouchLogin(ctx context.Context, tx *gorm.DB, id string, at time.Time) error {
	err := a.getDB(tx).WithContext(ctx).
		Model(&models.Account{}).
		Where("id = ?", id).
		UpdateColumn("last_login_at", at).Error
	return repositories.Translate("failed to record login", err)
}

func (a *AccountPostgreSQL) UpdateRole(ctx context.Context, tx *gorm.DB, id string, expected, next models.UserRole) error {
	db := a.getDB(tx)
	result := db.WithContext(ctx).
		Model(&models.Account{}).
		Where("id = ? AND role = ?", id, expected).
		Update("role", next)
	if result.Error != nil {
		return repositories.Translate("failed to update role", result.Error)
	}
	if result.RowsAffected == 0 {
		if _, err := a.GetByID(ctx, db, id); err != nil {
			return err
		}
		return repositories.ErrConflict
	}
	return nil
}

func (a *AccountPostgreSQL) PromoteToInstructor(ctx context.Context, tx *gorm.DB, id string) error {
	db := a.getDB(tx)
	result := db.WithContext(ctx).
		Model(&models.Account{}).
		Where("id = ? AND (role IS NULL OR role NOT IN ?)", id, []models.UserRole{models.RoleInstructor, models.RoleAdmin}).
		Update("role", models.RoleInstructor)
	if result.Error != nil {
		return repositories.Translate("failed to promote account", result.Error)
	}
	if result.RowsAffected == 0 {
		// Either the account is missing or it already holds instructor or admin.
		if _, err := a.GetByID(ctx, db, id); err != nil {
			return err
		}
	}
	return nil
}

func (a *AccountPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.AccountFilters) ([]*models.Account, int64, error) {
	query := a.getDB(tx).WithContext(ctx).Model(&models.Account{})
	if filters.Role != nil {
		query = query.Where("role = ?", *filters.Role)
	}
	if filters.Query != "" {
		pattern := likePattern(filters.Query)
		query = query.Where("LOWER(full_name) LIKE ? OR LOWER(email) LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, repositories.Translate("failed to count accounts", err)
	}

	var accounts []*models.Account
	query = a.helpers.ApplyPaginationAndSort(query, "created_at", "desc", filters.Limit, filters.Offset)
	if err := query.Find(&accounts).Error; err != nil {
		return nil, 0, repositories.Translate("failed to list accounts", err)
	}

	return accounts, total, nil
}

func (a *AccountPostgreSQL) CountByRole(ctx context.Context, tx *gorm.DB) (map[models.UserRole]int64, error) {
	var rows []struct {
		Role  models.UserRole
		Count int64
	}
	err := a.getDB(tx).WithContext(ctx).
		Model(&models.Account{}).
		Select("role, COUNT(*) AS count").
		Group("role").
		Scan(&rows).Error
	if err != nil {
		return nil, repositories.Translate("failed to count accounts by role", err)
	}

	counts := map[models.UserRole]int64{
		models.RoleStudent:    0,
		models.RoleInstructor: 0,
		models.RoleAdmin:      0,
	}
	for _, row := range rows {
		role := row.Role
		if role != models.RoleInstructor && role != models.RoleAdmin {
			role = models.RoleStudent
		}
		counts[role] += row.Count
	}
	return counts, nil
}
