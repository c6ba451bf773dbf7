package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/boxgym/boxgym-api/internal/dto"
	"github.com/boxgym/boxgym-api/internal/models"
	appErrors "github.com/boxgym/boxgym-api/pkg/errors"
)

const revenueCacheKey = "revenue:summary"

type activeStudentLister interface {
	ListActive(ctx context.Context) ([]models.Student, error)
}

type pricingProvider interface {
	Current(ctx context.Context) (models.PricingConfig, error)
}

// PaymentStatusAt computes the billing status of a student at the given
// instant. A student with no recorded payment, or with an unparseable payment
// date, is treated as active: missing data must never lock a member out of
// training. Overdue starts strictly after one calendar month from the last
// payment, so the boundary day itself is still active.
func PaymentStatusAt(lastPaymentDate *string, now time.Time) models.PaymentStatus {
	if lastPaymentDate == nil || *lastPaymentDate == "" {
		return models.PaymentActive
	}
	paid, err := time.Parse("2006-01-02", *lastPaymentDate)
	if err != nil {
		return models.PaymentActive
	}
	if now.After(paid.AddDate(0, 1, 0)) {
		return models.PaymentOverdue
	}
	return models.PaymentActive
}

// MonthlyFeeFor resolves the fee charged to a student: a positive per-student
// override wins, otherwise the price table decides, defaulting to zero for
// unknown combinations.
func MonthlyFeeFor(student models.Student, pricing models.PricingConfig) float64 {
	if student.MonthlyFee != nil && *student.MonthlyFee > 0 {
		return *student.MonthlyFee
	}
	return pricing.Price(student.PlanType, student.AthleteType)
}

// BillingService estimates monthly revenue from the enrolled student base.
type BillingService struct {
	students activeStudentLister
	pricing  pricingProvider
	cache    *CacheService
	logger   *zap.Logger
	cacheTTL time.Duration
	now      func() time.Time
}

// NewBillingService constructs a BillingService.
func NewBillingService(students activeStudentLister, pricing pricingProvider, cache *CacheService, logger *zap.Logger, cacheTTL time.Duration) *BillingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &BillingService{
		students: students,
		pricing:  pricing,
		cache:    cache,
		logger:   logger,
		cacheTTL: cacheTTL,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// EstimateMonthlyRevenue sums fees across active students and breaks them
// down per plan. Deactivated students never contribute.
func (s *BillingService) EstimateMonthlyRevenue(ctx context.Context) (*dto.RevenueSummary, error) {
	var cached dto.RevenueSummary
	if s.cache.Get(ctx, revenueCacheKey, &cached) {
		return &cached, nil
	}

	students, err := s.students.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load students")
	}
	pricing, err := s.pricing.Current(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	summary := &dto.RevenueSummary{}
	byPlan := make(map[models.PlanType]*dto.PlanRevenue)
	for _, student := range students {
		fee := MonthlyFeeFor(student, pricing)
		summary.Total += fee
		entry, ok := byPlan[student.PlanType]
		if !ok {
			entry = &dto.PlanRevenue{PlanType: student.PlanType}
			byPlan[student.PlanType] = entry
		}
		entry.Amount += fee
		entry.Students++

		if PaymentStatusAt(student.LastPaymentDate, now) == models.PaymentOverdue {
			summary.Overdue++
		} else {
			summary.Active++
		}
	}
	for _, plan := range models.PlanTypes() {
		if entry, ok := byPlan[plan]; ok {
			summary.ByPlan = append(summary.ByPlan, *entry)
		}
	}

	s.cache.Set(ctx, revenueCacheKey, summary, s.cacheTTL)
	return summary, nil
}

// InvalidateCache drops the cached revenue summary. Called after any change
// that affects billing inputs.
func (s *BillingService) InvalidateCache(ctx context.Context) {
	s.cache.Invalidate(ctx, "revenue:*")
}
