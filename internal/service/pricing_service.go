package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/boxgym/boxgym-api/internal/dto"
	"github.com/boxgym/boxgym-api/internal/models"
	appErrors "github.com/boxgym/boxgym-api/pkg/errors"
)

type pricingRepository interface {
	ListAll(ctx context.Context) ([]models.PricingEntry, error)
	ReplaceAll(ctx context.Context, entries []models.PricingEntry) error
}

type pricingAuditor interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// PricingService manages the plan price table. While the table is empty the
// built-in defaults apply.
type PricingService struct {
	repo      pricingRepository
	audit     pricingAuditor
	billing   *BillingService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPricingService constructs a PricingService.
func NewPricingService(repo pricingRepository, audit pricingAuditor, validate *validator.Validate, logger *zap.Logger) *PricingService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PricingService{repo: repo, audit: audit, validator: validate, logger: logger}
}

// BindBilling wires the billing service for cache invalidation. Separate from
// the constructor because billing itself depends on pricing.
func (s *PricingService) BindBilling(billing *BillingService) {
	s.billing = billing
}

// Current returns the effective price table.
func (s *PricingService) Current(ctx context.Context) (models.PricingConfig, error) {
	entries, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load pricing")
	}
	if len(entries) == 0 {
		return models.DefaultPricing(), nil
	}
	config := make(models.PricingConfig)
	for _, entry := range entries {
		if config[entry.PlanType] == nil {
			config[entry.PlanType] = make(map[models.AthleteType]float64)
		}
		config[entry.PlanType][entry.AthleteType] = entry.Price
	}
	return config, nil
}

// List returns the stored rows, falling back to the defaults flattened in
// display order.
func (s *PricingService) List(ctx context.Context) ([]models.PricingEntry, error) {
	entries, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load pricing")
	}
	if len(entries) > 0 {
		return entries, nil
	}
	defaults := models.DefaultPricing()
	for _, plan := range models.PlanTypes() {
		for _, athlete := range []models.AthleteType{models.AthleteCompetitor, models.AthleteFunctional, models.AthletePrivate} {
			entries = append(entries, models.PricingEntry{
				PlanType:    plan,
				AthleteType: athlete,
				Price:       defaults.Price(plan, athlete),
			})
		}
	}
	return entries, nil
}

// Replace swaps the whole price table.
func (s *PricingService) Replace(ctx context.Context, req dto.ReplacePricingRequest, actorID string) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid pricing payload")
	}
	seen := make(map[string]bool, len(req.Items))
	entries := make([]models.PricingEntry, 0, len(req.Items))
	for _, item := range req.Items {
		if !item.PlanType.Valid() {
			return appErrors.Clone(appErrors.ErrValidation, "unknown plan type")
		}
		if !item.AthleteType.Valid() {
			return appErrors.Clone(appErrors.ErrValidation, "unknown athlete type")
		}
		key := string(item.PlanType) + "|" + string(item.AthleteType)
		if seen[key] {
			return appErrors.Clone(appErrors.ErrValidation, "duplicate pricing entry")
		}
		seen[key] = true
		entries = append(entries, models.PricingEntry{
			PlanType:    item.PlanType,
			AthleteType: item.AthleteType,
			Price:       item.Price,
			UpdatedBy:   &actorID,
			UpdatedAt:   time.Now().UTC(),
		})
	}
	if err := s.repo.ReplaceAll(ctx, entries); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to replace pricing")
	}

	if s.billing != nil {
		s.billing.InvalidateCache(ctx)
	}
	if s.audit != nil {
		payload, _ := json.Marshal(req.Items)
		if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
			UserID:    &actorID,
			Action:    models.AuditActionPricingUpdate,
			Resource:  "pricing",
			NewValues: payload,
		}); err != nil {
			s.logger.Warn("failed to record pricing audit log", zap.Error(err))
		}
	}
	return nil
}
