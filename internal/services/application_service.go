package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/course-marketplace/internal/authz"
	"github.com/SAP-F-2025/course-marketplace/internal/events"
	"github.com/SAP-F-2025/course-marketplace/internal/models"
	"github.com/SAP-F-2025/course-marketplace/internal/repositories"
	"github.com/SAP-F-2025/course-marketplace/internal/validator"
)

type applicationService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.Publisher
}

func NewApplicationService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, publisher events.Publisher) ApplicationService {
	return &applicationService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		publisher: publisher,
	}
}

func (s *applicationService) Submit(ctx context.Context, applicant authz.Principal, req *models.ApplicationSubmitRequest) (*models.InstructorApplication, error) {
	s.logger.Info("Submitting instructor application", "user_id", applicant.AccountID)

	if !authz.CanActOnApplication(applicant.Role, authz.EventSubmit) {
		return nil, authz.ErrForbidden
	}
	if errs := s.validator.GetBusinessValidator().ValidateApplicationSubmit(req); len(errs) > 0 {
		return nil, errs
	}

	status, err := authz.NextApplicationStatus("", authz.EventSubmit)
	if err != nil {
		return nil, err
	}

	app := &models.InstructorApplication{
		UserID:       applicant.AccountID,
		Status:       status,
		Motivation:   strings.TrimSpace(req.Motivation),
		Expertise:    jsonList(req.Expertise),
		PortfolioURL: req.PortfolioURL,
		SubmittedAt:  time.Now(),
	}

	err = s.withTx(ctx, func(tx *gorm.DB) error {
		if err := s.ensureNoActiveApplication(ctx, tx, applicant.AccountID); err != nil {
			return err
		}
		if err := s.repo.Application().Create(ctx, tx, app); err != nil {
			return fmt.Errorf("failed to create application: %w", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			// Lost the race against a concurrent submission by the same user
			return nil, s.duplicateOf(ctx, applicant.AccountID)
		}
		return nil, err
	}

	publishAfterCommit(ctx, s.publisher, s.logger, events.NewEvent(events.ApplicationSubmitted, applicationEventData(app)))

	s.logger.Info("Instructor application submitted", "application_id", app.ID, "user_id", app.UserID)
	return app, nil
}

func (s *applicationService) Approve(ctx context.Context, id uint, reviewer authz.Principal, req *models.ApplicationReviewRequest) (*models.InstructorApplication, error) {
	return s.review(ctx, id, reviewer, req, authz.EventApprove)
}

func (s *applicationService) Reject(ctx context.Context, id uint, reviewer authz.Principal, req *models.ApplicationReviewRequest) (*models.InstructorApplication, error) {
	return s.review(ctx, id, reviewer, req, authz.EventReject)
}

func (s *applicationService) review(ctx context.Context, id uint, reviewer authz.Principal, req *models.ApplicationReviewRequest, ev authz.ApplicationEvent) (*models.InstructorApplication, error) {
	s.logger.Info("Reviewing instructor application", "application_id", id, "reviewer_id", reviewer.AccountID, "event", ev)

	if !authz.CanActOnApplication(reviewer.Role, ev) {
		return nil, authz.ErrForbidden
	}
	if req == nil {
		req = &models.ApplicationReviewRequest{}
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	var (
		app          *models.InstructorApplication
		previousRole models.UserRole
		promoted     bool
	)
	err := s.withTx(ctx, func(tx *gorm.DB) error {
		var err error
		app, err = s.getApplication(ctx, tx, id)
		if err != nil {
			return err
		}

		next, err := authz.NextApplicationStatus(app.Status, ev)
		if err != nil {
			return err
		}

		review := models.ApplicationReview{
			ReviewerID: reviewer.AccountID,
			ReviewedAt: time.Now(),
			Comments:   req.Comments,
		}
		if err := s.repo.Application().TransitionStatus(ctx, tx, id, app.Status, next, review); err != nil {
			switch {
			case errors.Is(err, repositories.ErrConflict):
				return fmt.Errorf("application %d was decided concurrently: %w", id, authz.ErrInvalidTransition)
			case repositories.IsNotFound(err):
				return ErrApplicationNotFound
			}
			return fmt.Errorf("failed to update application: %w", err)
		}

		app.Status = next
		app.ReviewerID = &review.ReviewerID
		app.ReviewedAt = &review.ReviewedAt
		app.ReviewComments = review.Comments

		if next != models.ApplicationApproved {
			return nil
		}

		// The promotion commits or rolls back together with the status change
		applicant, err := s.repo.Account().GetByID(ctx, tx, app.UserID)
		if err != nil {
			if repositories.IsNotFound(err) {
				return ErrAccountNotFound
			}
			return fmt.Errorf("failed to load applicant: %w", err)
		}
		previousRole = authz.NormalizeRole(string(applicant.Role))
		if err := s.repo.Account().PromoteToInstructor(ctx, tx, app.UserID); err != nil {
			return fmt.Errorf("failed to promote applicant: %w", err)
		}
		promoted = authz.IsPromotion(previousRole, models.RoleInstructor)
		return nil
	})
	if err != nil {
		return nil, err
	}

	eventType := events.ApplicationRejected
	if app.Status == models.ApplicationApproved {
		eventType = events.ApplicationApproved
	}
	publishAfterCommit(ctx, s.publisher, s.logger, events.NewEvent(eventType, applicationEventData(app)))
	if promoted {
		publishAfterCommit(ctx, s.publisher, s.logger, events.NewEvent(events.AccountRoleChanged, events.RoleChangedData{
			AccountID:    app.UserID,
			PreviousRole: string(previousRole),
			Role:         string(models.RoleInstructor),
			ChangedBy:    reviewer.AccountID,
			Reason:       "instructor_application_approved",
		}))
	}

	s.logger.Info("Instructor application reviewed", "application_id", id, "status", app.Status, "promoted", promoted)
	return app, nil
}

func (s *applicationService) Get(ctx context.Context, id uint) (*models.InstructorApplication, error) {
	return s.getApplication(ctx, nil, id)
}

func (s *applicationService) ListMine(ctx context.Context, userID string) ([]*models.InstructorApplication, error) {
	apps, err := s.repo.Application().ListByUser(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	return apps, nil
}

func (s *applicationService) List(ctx context.Context, params *models.ListApplicationsParams) (*models.PaginatedResponse, error) {
	page, size, offset := normalizePage(params.Page, params.Size)

	apps, total, err := s.repo.Application().List(ctx, nil, applicationFilters(params, size, offset))
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}

	return models.NewPaginatedResponse(apps, len(apps), total, page, size), nil
}

// ===== HELPERS =====

func (s *applicationService) withTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return s.db.WithContext(ctx).Transaction(fn)
}

func (s *applicationService) getApplication(ctx context.Context, tx *gorm.DB, id uint) (*models.InstructorApplication, error) {
	app, err := s.repo.Application().GetByID(ctx, tx, id)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, ErrApplicationNotFound
		}
		return nil, fmt.Errorf("failed to get application: %w", err)
	}
	return app, nil
}

func (s *applicationService) ensureNoActiveApplication(ctx context.Context, tx *gorm.DB, userID string) error {
	active, err := s.repo.Application().GetActiveByUser(ctx, tx, userID)
	switch {
	case err == nil:
		return &authz.DuplicateApplicationError{ApplicationID: active.ID, Status: active.Status}
	case repositories.IsNotFound(err):
		return nil
	default:
		return fmt.Errorf("failed to check active application: %w", err)
	}
}

func (s *applicationService) duplicateOf(ctx context.Context, userID string) error {
	active, err := s.repo.Application().GetActiveByUser(ctx, nil, userID)
	if err != nil {
		return &authz.DuplicateApplicationError{Status: models.ApplicationPending}
	}
	return &authz.DuplicateApplicationError{ApplicationID: active.ID, Status: active.Status}
}

func applicationFilters(params *models.ListApplicationsParams, limit, offset int) repositories.ApplicationFilters {
	filters := repositories.ApplicationFilters{
		UserID: params.UserID,
		Limit:  limit,
		Offset: offset,
	}
	if params.Status != "" {
		status := params.Status
		filters.Status = &status
	}
	return filters
}

func applicationEventData(app *models.InstructorApplication) events.ApplicationEventData {
	return events.ApplicationEventData{
		ApplicationID: app.ID,
		UserID:        app.UserID,
		Status:        string(app.Status),
		ReviewerID:    app.ReviewerID,
		Comments:      app.ReviewComments,
	}
}
