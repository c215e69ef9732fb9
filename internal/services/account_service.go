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
	"github.com/SAP-F-2025/course-marketplace/internal/identity"
	"github.com/SAP-F-2025/course-marketplace/internal/models"
	"github.com/SAP-F-2025/course-marketplace/internal/repositories"
	"github.com/SAP-F-2025/course-marketplace/internal/validator"
)

type accountService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.Publisher
}

func NewAccountService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, publisher events.Publisher) AccountService {
	return &accountService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		publisher: publisher,
	}
}

func (s *accountService) Provision(ctx context.Context, subject identity.Subject) (*models.Account, error) {
	if strings.TrimSpace(subject.ID) == "" {
		return nil, authz.ErrUnauthenticated
	}
	now := time.Now()

	account, err := s.repo.Account().GetByID(ctx, nil, subject.ID)
	switch {
	case repositories.IsNotFound(err):
		account = &models.Account{
			ID:            subject.ID,
			FullName:      displayName(subject),
			Email:         subject.Email,
			Role:          models.RoleStudent,
			EmailVerified: subject.Email != "",
			LastLoginAt:   &now,
		}
		if subject.Avatar != "" {
			avatar := subject.Avatar
			account.AvatarURL = &avatar
		}
		if err := s.repo.Account().Create(ctx, nil, account); err != nil {
			if errors.Is(err, repositories.ErrDuplicate) {
				// A concurrent first login won the insert. Otherwise the
				// email belongs to another account.
				if existing, getErr := s.repo.Account().GetByID(ctx, nil, subject.ID); getErr == nil {
					return existing, nil
				}
				return nil, fmt.Errorf("%w: %w", ErrEmailTaken, err)
			}
			return nil, fmt.Errorf("failed to provision account: %w", err)
		}
		s.logger.Info("Account provisioned", "account_id", account.ID, "role", account.Role)
		return account, nil
	case err != nil:
		return nil, fmt.Errorf("failed to load account: %w", err)
	}

	changed := false
	if subject.Email != "" && !strings.EqualFold(subject.Email, account.Email) {
		account.Email = strings.ToLower(subject.Email)
		changed = true
	}
	if name := displayName(subject); subject.DisplayName != "" && name != account.FullName {
		account.FullName = name
		changed = true
	}
	if changed {
		if err := s.repo.Account().UpdateProfile(ctx, nil, account); err != nil {
			return nil, fmt.Errorf("failed to refresh account: %w", err)
		}
	}
	if err := s.repo.Account().TouchLogin(ctx, nil, account.ID, now); err != nil {
		s.logger.Warn("Failed to record login", "account_id", account.ID, "error", err)
	}
	account.LastLoginAt = &now

	return account, nil
}

func (s *accountService) GetProfile(ctx context.Context, accountID string) (*models.Account, error) {
	account, err := s.repo.Account().GetByID(ctx, nil, accountID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return account, nil
}

func (s *accountService) UpdateProfile(ctx context.Context, accountID string, req *models.ProfileUpdateRequest) (*models.Account, error) {
	s.logger.Info("Updating profile", "account_id", accountID)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	account, err := s.GetProfile(ctx, accountID)
	if err != nil {
		return nil, err
	}

	if req.FullName != nil {
		account.FullName = strings.TrimSpace(*req.FullName)
	}
	if req.Bio != nil {
		account.Bio = req.Bio
	}
	if req.Country != nil {
		country := strings.ToUpper(*req.Country)
		account.Country = &country
	}
	if req.AvatarURL != nil {
		account.AvatarURL = req.AvatarURL
	}

	if err := s.repo.Account().UpdateProfile(ctx, nil, account); err != nil {
		if repositories.IsNotFound(err) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	return account, nil
}

func (s *accountService) List(ctx context.Context, params *models.ListAccountsParams) (*models.PaginatedResponse, error) {
	page, size, offset := normalizePage(params.Page, params.Size)

	filters := repositories.AccountFilters{
		Query:  params.Search,
		Limit:  size,
		Offset: offset,
	}
	if params.Role != "" {
		role := params.Role
		filters.Role = &role
	}

	accounts, total, err := s.repo.Account().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	return models.NewPaginatedResponse(accounts, len(accounts), total, page, size), nil
}

func (s *accountService) ChangeRole(ctx context.Context, actor authz.Principal, targetID string, req *models.RoleChangeRequest) (*models.RoleChangeResponse, error) {
	s.logger.Info("Changing account role", "actor_id", actor.AccountID, "target_id", targetID, "role", req.Role)

	if !actor.IsAdmin() {
		return nil, authz.ErrForbidden
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	target, err := s.GetProfile(ctx, targetID)
	if err != nil {
		return nil, err
	}

	current := authz.NormalizeRole(string(target.Role))
	if !authz.IsPromotion(current, req.Role) {
		return nil, NewRoleChangeError(current, req.Role)
	}

	// Compare against the stored value so a concurrent change is detected
	if err := s.repo.Account().UpdateRole(ctx, nil, targetID, target.Role, req.Role); err != nil {
		switch {
		case errors.Is(err, repositories.ErrConflict):
			return nil, fmt.Errorf("role changed concurrently: %w", ErrInvalidRoleChange)
		case repositories.IsNotFound(err):
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to update role: %w", err)
	}

	resp := &models.RoleChangeResponse{
		AccountID:    targetID,
		PreviousRole: current,
		Role:         req.Role,
		ChangedAt:    time.Now().UTC(),
	}

	s.publish(ctx, events.NewEvent(events.AccountRoleChanged, events.RoleChangedData{
		AccountID:    targetID,
		PreviousRole: string(current),
		Role:         string(req.Role),
		ChangedBy:    actor.AccountID,
		Reason:       "admin_change",
	}))

	s.logger.Info("Account role changed", "target_id", targetID, "previous_role", current, "role", req.Role)
	return resp, nil
}

func (s *accountService) publish(ctx context.Context, event events.Event) {
	publishAfterCommit(ctx, s.publisher, s.logger, event)
}

// NewRoleChangeError explains why a requested role is not a promotion
func NewRoleChangeError(from, to models.UserRole) error {
	if from == to {
		return fmt.Errorf("account already has role %s: %w", to, ErrInvalidRoleChange)
	}
	return fmt.Errorf("cannot change role from %s to %s: %w", from, to, ErrInvalidRoleChange)
}

func displayName(subject identity.Subject) string {
	if name := strings.TrimSpace(subject.DisplayName); name != "" {
		return name
	}
	if at := strings.Index(subject.Email, "@"); at > 0 {
		return subject.Email[:at]
	}
	return subject.ID
}
