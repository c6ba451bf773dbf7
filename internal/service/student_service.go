package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/boxgym/boxgym-api/internal/models"
	appErrors "github.com/boxgym/boxgym-api/pkg/errors"
)

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
	Update(ctx context.Context, student *models.Student) error
	RecordPayment(ctx context.Context, id string, paymentDate string) error
	Delete(ctx context.Context, id string) error
}

type studentAuditor interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// UpdateStudentRequest holds payload for updating a student profile.
type UpdateStudentRequest struct {
	Name        string   `json:"name" validate:"required"`
	Email       string   `json:"email" validate:"required,email"`
	Phone       string   `json:"phone" validate:"required"`
	Address     *string  `json:"address"`
	BirthDate   string   `json:"birth_date" validate:"required"`
	HeightCM    float64  `json:"height_cm" validate:"gt=0"`
	WeightKG    float64  `json:"weight_kg" validate:"gt=0"`
	Objective   string   `json:"objective" validate:"required"`
	PlanType    string   `json:"plan_type" validate:"required"`
	AthleteType string   `json:"athlete_type" validate:"required"`
	PaymentDay  int      `json:"payment_day" validate:"gte=1,lte=31"`
	Active      bool     `json:"active"`
	MonthlyFee  *float64 `json:"monthly_fee" validate:"omitempty,gte=0"`
}

// RecordPaymentRequest registers a received payment.
type RecordPaymentRequest struct {
	PaymentDate string `json:"payment_date" validate:"required,datetime=2006-01-02"`
}

// StudentService handles student management use cases.
type StudentService struct {
	repo      studentRepository
	audit     studentAuditor
	billing   *BillingService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewStudentService constructs the student service.
func NewStudentService(repo studentRepository, audit studentAuditor, billing *BillingService, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{
		repo:      repo,
		audit:     audit,
		billing:   billing,
		validator: validate,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// List returns students with computed payment status and pagination metadata.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.StudentDetail, *models.Pagination, error) {
	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	now := s.now()
	details := make([]models.StudentDetail, 0, len(students))
	for _, student := range students {
		details = append(details, models.StudentDetail{
			Student:       student,
			PaymentStatus: PaymentStatusAt(student.LastPaymentDate, now),
		})
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return details, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns a single student with payment status.
func (s *StudentService) Get(ctx context.Context, id string) (*models.StudentDetail, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return &models.StudentDetail{
		Student:       *student,
		PaymentStatus: PaymentStatusAt(student.LastPaymentDate, s.now()),
	}, nil
}

// Update replaces the mutable profile fields of a student.
func (s *StudentService) Update(ctx context.Context, id string, req UpdateStudentRequest) (*models.StudentDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	plan := models.PlanType(req.PlanType)
	if !plan.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown plan type")
	}
	athlete := models.AthleteType(req.AthleteType)
	if !athlete.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown athlete type")
	}

	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	student.Name = req.Name
	student.Email = req.Email
	student.Phone = req.Phone
	student.Address = req.Address
	student.BirthDate = req.BirthDate
	student.HeightCM = req.HeightCM
	student.WeightKG = req.WeightKG
	student.Objective = req.Objective
	student.PlanType = plan
	student.AthleteType = athlete
	student.PaymentDay = req.PaymentDay
	student.Active = req.Active
	student.MonthlyFee = req.MonthlyFee

	if err := s.repo.Update(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student")
	}
	if s.billing != nil {
		s.billing.InvalidateCache(ctx)
	}
	return &models.StudentDetail{
		Student:       *student,
		PaymentStatus: PaymentStatusAt(student.LastPaymentDate, s.now()),
	}, nil
}

// RecordPayment stores a received payment, clearing any overdue state.
func (s *StudentService) RecordPayment(ctx context.Context, id string, req RecordPaymentRequest) (*models.StudentDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payment payload")
	}
	if err := s.repo.RecordPayment(ctx, id, req.PaymentDate); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record payment")
	}
	if s.billing != nil {
		s.billing.InvalidateCache(ctx)
	}
	return s.Get(ctx, id)
}

// Delete permanently removes a student, their attendance history and the
// owning account.
func (s *StudentService) Delete(ctx context.Context, id string, actorID string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete student")
	}
	if s.billing != nil {
		s.billing.InvalidateCache(ctx)
	}
	if s.audit != nil {
		if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
			UserID:     &actorID,
			Action:     models.AuditActionStudentDelete,
			Resource:   "student",
			ResourceID: &id,
		}); err != nil {
			s.logger.Warn("failed to record student delete audit log", zap.Error(err))
		}
	}
	return nil
}
