package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/SAP-F-2025/course-marketplace/internal/authz"
	"github.com/SAP-F-2025/course-marketplace/internal/events"
	"github.com/SAP-F-2025/course-marketplace/internal/models"
	"github.com/SAP-F-2025/course-marketplace/internal/payment"
	"github.com/SAP-F-2025/course-marketplace/internal/repositories"
)

const chargeSuccessEvent = "charge.success"

type enrollmentService struct {
	repo        repositories.Repository
	logger      *slog.Logger
	gateway     payment.Gateway
	publisher   events.Publisher
	callbackURL string
}

// NewEnrollmentService wires enrollment flows. A nil gateway disables paid
// enrollments; free courses keep working.
func NewEnrollmentService(repo repositories.Repository, logger *slog.Logger, gateway payment.Gateway, publisher events.Publisher, callbackURL string) EnrollmentService {
	return &enrollmentService{
		repo:        repo,
		logger:      logger,
		gateway:     gateway,
		publisher:   publisher,
		callbackURL: callbackURL,
	}
}

func (s *enrollmentService) Enroll(ctx context.Context, student authz.Principal, courseID uint, req *models.EnrollRequest) (*models.EnrollmentResponse, error) {
	s.logger.Info("Enrolling in course", "user_id", student.AccountID, "course_id", courseID)

	course, err := s.repo.Course().GetByID(ctx, nil, courseID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	if course.Status != models.CoursePublished {
		return nil, ErrCourseNotPublished
	}
	if course.InstructorID == student.AccountID {
		return nil, NewBusinessRuleError(
			"ENROLLMENT-OWN-COURSE",
			"Instructors cannot enroll in their own course",
			map[string]interface{}{"course_id": courseID},
		)
	}

	existing, err := s.repo.Enrollment().GetByUserAndCourse(ctx, nil, student.AccountID, courseID)
	switch {
	case err == nil:
		if existing.Status != models.EnrollmentPending {
			return nil, ErrAlreadyEnrolled
		}
		return s.resumePayment(ctx, student, course, existing, req)
	case !repositories.IsNotFound(err):
		return nil, fmt.Errorf("failed to check enrollment: %w", err)
	}

	now := time.Now()
	enrollment := &models.Enrollment{
		UserID:     student.AccountID,
		CourseID:   courseID,
		Currency:   course.Currency,
		EnrolledAt: now,
	}

	if course.IsFree() {
		enrollment.Status = models.EnrollmentActive
		enrollment.ActivatedAt = &now
		if err := s.create(ctx, enrollment); err != nil {
			return nil, err
		}
		s.publishActivated(ctx, enrollment)
		return &models.EnrollmentResponse{Enrollment: enrollment}, nil
	}

	if s.gateway == nil {
		return nil, ErrPaymentsDisabled
	}

	charge, err := s.initializeCharge(ctx, student, course, req)
	if err != nil {
		return nil, err
	}

	enrollment.Status = models.EnrollmentPending
	enrollment.PaymentReference = &charge.Reference
	if err := s.create(ctx, enrollment); err != nil {
		return nil, err
	}

	s.logger.Info("Enrollment awaiting payment", "enrollment_id", enrollment.ID, "reference", charge.Reference)
	return &models.EnrollmentResponse{
		Enrollment:       enrollment,
		AuthorizationURL: &charge.AuthorizationURL,
	}, nil
}

// resumePayment continues a pending enrollment. A charge that already went
// through activates the enrollment; otherwise a fresh checkout replaces the
// abandoned one.
func (s *enrollmentService) resumePayment(ctx context.Context, student authz.Principal, course *models.Course, enrollment *models.Enrollment, req *models.EnrollRequest) (*models.EnrollmentResponse, error) {
	if s.gateway == nil {
		return nil, ErrPaymentsDisabled
	}

	if enrollment.PaymentReference != nil {
		verification, err := s.gateway.Verify(ctx, *enrollment.PaymentReference)
		switch {
		case err == nil && verification.Successful():
			activated, err := s.activate(ctx, enrollment, verification.Amount)
			if err != nil {
				return nil, err
			}
			return &models.EnrollmentResponse{Enrollment: activated}, nil
		case err != nil && !errors.Is(err, payment.ErrChargeRejected):
			return nil, fmt.Errorf("failed to verify payment: %w", err)
		}
	}

	charge, err := s.initializeCharge(ctx, student, course, req)
	if err != nil {
		return nil, err
	}

	err = s.repo.Enrollment().ReplaceReference(ctx, nil, enrollment.ID, enrollment.PaymentReference, charge.Reference)
	switch {
	case errors.Is(err, repositories.ErrConflict):
		// Activated or resumed concurrently
		return nil, ErrAlreadyEnrolled
	case err != nil:
		return nil, fmt.Errorf("failed to resume enrollment: %w", err)
	}

	enrollment.PaymentReference = &charge.Reference
	s.logger.Info("Enrollment payment restarted", "enrollment_id", enrollment.ID, "reference", charge.Reference)
	return &models.EnrollmentResponse{
		Enrollment:       enrollment,
		AuthorizationURL: &charge.AuthorizationURL,
	}, nil
}

func (s *enrollmentService) initializeCharge(ctx context.Context, student authz.Principal, course *models.Course, req *models.EnrollRequest) (*payment.Charge, error) {
	callback := s.callbackURL
	if req != nil && req.CallbackURL != nil {
		callback = *req.CallbackURL
	}

	charge, err := s.gateway.Initialize(ctx, payment.ChargeRequest{
		Email:       student.Email,
		Amount:      course.Price,
		Currency:    course.Currency,
		Reference:   "CM-" + uuid.New().String(),
		CallbackURL: callback,
		Metadata: map[string]string{
			"course_id":  strconv.FormatUint(uint64(course.ID), 10),
			"account_id": student.AccountID,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize payment: %w", err)
	}
	return charge, nil
}

func (s *enrollmentService) Get(ctx context.Context, id uint) (*models.Enrollment, error) {
	enrollment, err := s.repo.Enrollment().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, ErrEnrollmentNotFound
		}
		return nil, fmt.Errorf("failed to get enrollment: %w", err)
	}
	return enrollment, nil
}

func (s *enrollmentService) Verify(ctx context.Context, reference string) (*models.Enrollment, error) {
	s.logger.Info("Verifying enrollment payment", "reference", reference)

	enrollment, err := s.byReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	if enrollment.Status != models.EnrollmentPending {
		return enrollment, nil
	}
	if s.gateway == nil {
		return nil, ErrPaymentsDisabled
	}

	verification, err := s.gateway.Verify(ctx, reference)
	if err != nil {
		return nil, fmt.Errorf("failed to verify payment: %w", err)
	}
	if !verification.Successful() {
		return nil, fmt.Errorf("payment status %q: %w", verification.Status, ErrPaymentNotSuccessful)
	}

	return s.activate(ctx, enrollment, verification.Amount)
}

func (s *enrollmentService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	if s.gateway == nil {
		return ErrPaymentsDisabled
	}
	if !s.gateway.VerifySignature(payload, signature) {
		return fmt.Errorf("%w: %w", ErrInvalidWebhook, payment.ErrInvalidSignature)
	}

	var event payment.WebhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidWebhook, err)
	}
	if event.Event != chargeSuccessEvent {
		s.logger.Debug("Ignoring payment webhook", "event", event.Event)
		return nil
	}

	enrollment, err := s.byReference(ctx, event.Data.Reference)
	if err != nil {
		if errors.Is(err, ErrEnrollmentNotFound) {
			s.logger.Warn("Payment webhook for unknown reference", "reference", event.Data.Reference)
			return nil
		}
		return err
	}
	if enrollment.Status != models.EnrollmentPending {
		return nil
	}

	_, err = s.activate(ctx, enrollment, event.Data.Amount)
	return err
}

func (s *enrollmentService) ListMine(ctx context.Context, userID string, page, size int) (*models.PaginatedResponse, error) {
	page, size, offset := normalizePage(page, size)

	enrollments, total, err := s.repo.Enrollment().ListByUser(ctx, nil, userID, repositories.EnrollmentFilters{Limit: size, Offset: offset})
	if err != nil {
		return nil, fmt.Errorf("failed to list enrollments: %w", err)
	}
	return models.NewPaginatedResponse(enrollments, len(enrollments), total, page, size), nil
}

func (s *enrollmentService) ListForCourse(ctx context.Context, courseID uint, page, size int) (*models.PaginatedResponse, error) {
	page, size, offset := normalizePage(page, size)

	enrollments, total, err := s.repo.Enrollment().ListByCourse(ctx, nil, courseID, repositories.EnrollmentFilters{Limit: size, Offset: offset})
	if err != nil {
		return nil, fmt.Errorf("failed to list course enrollments: %w", err)
	}
	return models.NewPaginatedResponse(enrollments, len(enrollments), total, page, size), nil
}

// ===== HELPERS =====

func (s *enrollmentService) create(ctx context.Context, enrollment *models.Enrollment) error {
	if err := s.repo.Enrollment().Create(ctx, nil, enrollment); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return ErrAlreadyEnrolled
		}
		return fmt.Errorf("failed to create enrollment: %w", err)
	}
	return nil
}

func (s *enrollmentService) byReference(ctx context.Context, reference string) (*models.Enrollment, error) {
	enrollment, err := s.repo.Enrollment().GetByReference(ctx, nil, reference)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, ErrEnrollmentNotFound
		}
		return nil, fmt.Errorf("failed to get enrollment: %w", err)
	}
	return enrollment, nil
}

// activate checks the captured amount against the course price and moves the
// enrollment to active. Only the caller that wins the transition publishes.
func (s *enrollmentService) activate(ctx context.Context, enrollment *models.Enrollment, amount int64) (*models.Enrollment, error) {
	course, err := s.repo.Course().GetByID(ctx, nil, enrollment.CourseID)
	if err != nil && !repositories.IsNotFound(err) {
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	if course != nil && amount < course.Price {
		return nil, NewBusinessRuleError(
			"PAYMENT-AMOUNT-MISMATCH",
			"Captured amount is lower than the course price",
			map[string]interface{}{
				"enrollment_id": enrollment.ID,
				"amount":        amount,
				"price":         course.Price,
			},
		)
	}

	now := time.Now()
	err = s.repo.Enrollment().Activate(ctx, nil, enrollment.ID, amount, now)
	switch {
	case err == nil:
		enrollment.Status = models.EnrollmentActive
		enrollment.AmountPaid = amount
		enrollment.ActivatedAt = &now
		s.publishActivated(ctx, enrollment)
		s.logger.Info("Enrollment activated", "enrollment_id", enrollment.ID, "amount", amount)
		return enrollment, nil
	case errors.Is(err, repositories.ErrConflict):
		// Activated concurrently by the webhook or another verify call
		return s.Get(ctx, enrollment.ID)
	case repositories.IsNotFound(err):
		return nil, ErrEnrollmentNotFound
	default:
		return nil, fmt.Errorf("failed to activate enrollment: %w", err)
	}
}

func (s *enrollmentService) publishActivated(ctx context.Context, enrollment *models.Enrollment) {
	publishAfterCommit(ctx, s.publisher, s.logger, events.NewEvent(events.EnrollmentActivated, events.EnrollmentEventData{
		EnrollmentID: enrollment.ID,
		UserID:       enrollment.UserID,
		CourseID:     enrollment.CourseID,
		AmountPaid:   enrollment.AmountPaid,
		Currency:     enrollment.Currency,
	}))
}
