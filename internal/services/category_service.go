package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SAP-F-2025/course-marketplace/internal/cache"
	"github.com/SAP-F-2025/course-marketplace/internal/models"
	"github.com/SAP-F-2025/course-marketplace/internal/repositories"
	"github.com/SAP-F-2025/course-marketplace/internal/validator"
)

type categoryService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	cache     *cache.CacheManager
}

func NewCategoryService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, cacheManager *cache.CacheManager) CategoryService {
	if cacheManager == nil {
		cacheManager = cache.NewCacheManager(nil)
	}
	return &categoryService{
		repo:      repo,
		logger:    logger,
		validator: validator,
		cache:     cacheManager,
	}
}

func (s *categoryService) Create(ctx context.Context, req *models.CategoryCreateRequest) (*models.Category, error) {
	s.logger.Info("Creating category", "name", req.Name)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	category := &models.Category{
		Name:        strings.TrimSpace(req.Name),
		Slug:        req.Slug,
		Description: req.Description,
	}
	if err := s.repo.Category().Create(ctx, nil, category); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrCategoryNameTaken
		}
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	cache.InvalidateCategoryCache(ctx, s.cache)
	return category, nil
}

func (s *categoryService) Get(ctx context.Context, id uint) (*models.Category, error) {
	category, err := s.repo.Category().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return category, nil
}

func (s *categoryService) Update(ctx context.Context, id uint, req *models.CategoryUpdateRequest) (*models.Category, error) {
	s.logger.Info("Updating category", "category_id", id)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	category, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		category.Name = strings.TrimSpace(*req.Name)
	}
	if req.Slug != nil {
		category.Slug = *req.Slug
	}
	if req.Description != nil {
		category.Description = req.Description
	}

	if err := s.repo.Category().Update(ctx, nil, category); err != nil {
		switch {
		case repositories.IsNotFound(err):
			return nil, ErrCategoryNotFound
		case errors.Is(err, repositories.ErrDuplicate):
			return nil, ErrCategoryNameTaken
		}
		return nil, fmt.Errorf("failed to update category: %w", err)
	}

	cache.InvalidateCategoryCache(ctx, s.cache)
	return category, nil
}

func (s *categoryService) Delete(ctx context.Context, id uint) error {
	s.logger.Info("Deleting category", "category_id", id)

	if err := s.repo.Category().Delete(ctx, nil, id); err != nil {
		if repositories.IsNotFound(err) {
			return ErrCategoryNotFound
		}
		return fmt.Errorf("failed to delete category: %w", err)
	}

	cache.InvalidateCategoryCache(ctx, s.cache)
	return nil
}

func (s *categoryService) List(ctx context.Context) ([]*models.Category, error) {
	var categories []*models.Category
	err := s.cache.Category.CacheOrExecute(ctx, "all", &categories, cache.CategoryCacheConfig.TTL, func() (interface{}, error) {
		return s.repo.Category().List(ctx, nil)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}
