package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/SAP-F-2025/course-marketplace/internal/cache"
	"github.com/SAP-F-2025/course-marketplace/internal/models"
	"github.com/SAP-F-2025/course-marketplace/internal/repositories"
)

type dashboardService struct {
	repo   repositories.Repository
	logger *slog.Logger
	cache  *cache.CacheManager
}

func NewDashboardService(repo repositories.Repository, logger *slog.Logger, cacheManager *cache.CacheManager) DashboardService {
	if cacheManager == nil {
		cacheManager = cache.NewCacheManager(nil)
	}
	return &dashboardService{
		repo:   repo,
		logger: logger,
		cache:  cacheManager,
	}
}

func (s *dashboardService) GetInstructorDashboard(ctx context.Context, instructorID string) (*models.InstructorDashboard, error) {
	var dashboard models.InstructorDashboard
	key := "instructor:" + instructorID

	err := s.cache.Stats.CacheOrExecute(ctx, key, &dashboard, cache.StatsCacheConfig.TTL, func() (interface{}, error) {
		rows, err := s.repo.Dashboard().GetInstructorCourses(ctx, nil, instructorID)
		if err != nil {
			return nil, err
		}

		result := &models.InstructorDashboard{Courses: make([]models.CourseSummary, 0, len(rows))}
		for _, row := range rows {
			result.TotalCourses++
			if models.CourseStatus(row.Status) == models.CoursePublished {
				result.PublishedCourses++
			}
			result.TotalEnrollments += row.TotalEnrollments
			result.ActiveEnrollments += row.ActiveEnrollments
			result.Courses = append(result.Courses, models.CourseSummary{
				ID:              row.ID,
				Title:           row.Title,
				Status:          models.CourseStatus(row.Status),
				Price:           row.Price,
				Currency:        row.Currency,
				EnrollmentCount: row.ActiveEnrollments,
				CreatedAt:       row.CreatedAt,
			})
		}
		return result, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build instructor dashboard: %w", err)
	}

	return &dashboard, nil
}

func (s *dashboardService) GetAdminDashboard(ctx context.Context) (*models.AdminDashboard, error) {
	var dashboard models.AdminDashboard

	err := s.cache.Stats.CacheOrExecute(ctx, "admin", &dashboard, cache.StatsCacheConfig.TTL, func() (interface{}, error) {
		result := &models.AdminDashboard{GeneratedAt: time.Now().UTC()}

		// Independent aggregates, read concurrently
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			counts, err := s.repo.Account().CountByRole(gctx, nil)
			result.AccountsByRole = counts
			return err
		})
		g.Go(func() error {
			counts, err := s.repo.Application().CountByStatus(gctx, nil)
			result.ApplicationsByStatus = counts
			return err
		})
		g.Go(func() error {
			totals, err := s.repo.Dashboard().GetCatalogTotals(gctx, nil)
			if err != nil {
				return err
			}
			result.TotalCourses = totals.TotalCourses
			result.PublishedCourses = totals.PublishedCourses
			result.ActiveEnrollments = totals.ActiveEnrollments
			return nil
		})
		if err := g.Wait(); err != nil {
			return nil, err
		}
		return result, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build admin dashboard: %w", err)
	}

	return &dashboard, nil
}
