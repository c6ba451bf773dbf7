package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/boxgym/boxgym-api/internal/models"
	appErrors "github.com/boxgym/boxgym-api/pkg/errors"
)

type sessionRepository interface {
	ListFrom(ctx context.Context, fromDate string) ([]models.TrainingSession, error)
	FindByID(ctx context.Context, id string) (*models.TrainingSession, error)
	Create(ctx context.Context, session *models.TrainingSession) error
	Update(ctx context.Context, session *models.TrainingSession) error
	Delete(ctx context.Context, id string) error
}

// SessionRequest holds payload for creating or updating a training session.
type SessionRequest struct {
	Date        string  `json:"date" validate:"required,datetime=2006-01-02"`
	Time        string  `json:"time" validate:"required,datetime=15:04"`
	Location    string  `json:"location" validate:"required"`
	Description *string `json:"description"`
}

// SessionService manages the training schedule.
type SessionService struct {
	repo      sessionRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
	cacheTTL  time.Duration
	now       func() time.Time
}

// NewSessionService constructs the session service.
func NewSessionService(repo sessionRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger, cacheTTL time.Duration) *SessionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = time.Minute
	}
	return &SessionService{
		repo:      repo,
		cache:     cache,
		validator: validate,
		logger:    logger,
		cacheTTL:  cacheTTL,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// ListUpcoming returns today's and future sessions in chronological order.
func (s *SessionService) ListUpcoming(ctx context.Context) ([]models.TrainingSession, error) {
	fromDate := s.now().Format("2006-01-02")
	cacheKey := fmt.Sprintf("sessions:upcoming:%s", fromDate)

	var cached []models.TrainingSession
	if s.cache.Get(ctx, cacheKey, &cached) {
		return cached, nil
	}

	sessions, err := s.repo.ListFrom(ctx, fromDate)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sessions")
	}
	s.cache.Set(ctx, cacheKey, sessions, s.cacheTTL)
	return sessions, nil
}

// Get returns a single session.
func (s *SessionService) Get(ctx context.Context, id string) (*models.TrainingSession, error) {
	session, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "training session not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}
	return session, nil
}

// Create schedules a new training session.
func (s *SessionService) Create(ctx context.Context, req SessionRequest, createdBy string) (*models.TrainingSession, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid session payload")
	}
	session := &models.TrainingSession{
		Date:        req.Date,
		Time:        req.Time,
		Location:    req.Location,
		Description: req.Description,
		CreatedBy:   createdBy,
	}
	if err := s.repo.Create(ctx, session); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create session")
	}
	s.cache.Invalidate(ctx, "sessions:*")
	return session, nil
}

// Update reschedules or edits an existing session.
func (s *SessionService) Update(ctx context.Context, id string, req SessionRequest) (*models.TrainingSession, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid session payload")
	}
	session, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "training session not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}

	session.Date = req.Date
	session.Time = req.Time
	session.Location = req.Location
	session.Description = req.Description

	if err := s.repo.Update(ctx, session); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "training session not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update session")
	}
	s.cache.Invalidate(ctx, "sessions:*")
	return session, nil
}

// Delete removes a session from the schedule.
func (s *SessionService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "training session not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete session")
	}
	s.cache.Invalidate(ctx, "sessions:*")
	return nil
}
