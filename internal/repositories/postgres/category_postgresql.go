package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/course-marketplace/internal/models"
	"github.com/SAP-F-2025/course-marketplace/internal/repositories"
)

type CategoryPostgreSQL struct {
	db *gorm.DB
}

func NewCategoryPostgreSQL(db *gorm.DB) repositories.CategoryRepository {
	return &CategoryPostgreSQL{db: db}
}

func (c *CategoryPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return c.db
}

func (c *CategoryPostgreSQL) Create(ctx context.Context, tx *gorm.DB, category *models.Category) error {
	if err := c.getDB(tx).WithContext(ctx).Create(category).Error; err != nil {
		return repositories.Translate("failed to create category", err)
	}
	return nil
}

func (c *CategoryPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Category, error) {
	var category models.Category
	if err := c.getDB(tx).WithContext(ctx).First(&category, id).Error; err != nil {
		return nil, repositories.Translate("failed to get category", err)
	}
	return &category, nil
}

func (c *CategoryPostgreSQL) Update(ctx context.Context, tx *gorm.DB, category *models.Category) error {
	result := c.getDB(tx).WithContext(ctx).
		Model(&models.Category{ID: category.ID}).
		Select("name", "slug", "description").
		Updates(category)
	if result.Error != nil {
		return repositories.Translate("failed to update category", result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.Translate("failed to update category", gorm.ErrRecordNotFound)
	}
	return nil
}

// Delete detaches courses from the category before removing it
func (c *CategoryPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	return c.getDB(tx).WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Course{}).Where("category_id = ?", id).Update("category_id", nil).Error; err != nil {
			return repositories.Translate("failed to detach courses", err)
		}
		result := tx.Delete(&models.Category{}, id)
		if result.Error != nil {
			return repositories.Translate("failed to delete category", result.Error)
		}
		if result.RowsAffected == 0 {
			return repositories.Translate("failed to delete category", gorm.ErrRecordNotFound)
		}
		return nil
	})
}

func (c *CategoryPostgreSQL) List(ctx context.Context, tx *gorm.DB) ([]*models.Category, error) {
	var categories []*models.Category
	if err := c.getDB(tx).WithContext(ctx).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, repositories.Translate("failed to list categories", err)
	}
	return categories, nil
}
