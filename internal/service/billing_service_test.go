package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boxgym/boxgym-api/internal/models"
)

func TestPaymentStatusAt(t *testing.T) {
	now := time.Date(2025, 2, 15, 12, 0, 0, 0, time.UTC)

	t.Run("no payment recorded is active", func(t *testing.T) {
		assert.Equal(t, models.PaymentActive, PaymentStatusAt(nil, now))
		empty := ""
		assert.Equal(t, models.PaymentActive, PaymentStatusAt(&empty, now))
	})

	t.Run("garbage date is active", func(t *testing.T) {
		bad := "not-a-date"
		assert.Equal(t, models.PaymentActive, PaymentStatusAt(&bad, now))
	})

	t.Run("payment older than one month is overdue", func(t *testing.T) {
		paid := "2025-01-10"
		assert.Equal(t, models.PaymentOverdue, PaymentStatusAt(&paid, now))
	})

	t.Run("payment within one month is active", func(t *testing.T) {
		paid := "2025-02-09"
		assert.Equal(t, models.PaymentActive, PaymentStatusAt(&paid, now))
	})

	t.Run("exactly one month boundary is still active", func(t *testing.T) {
		paid := "2025-01-15"
		boundary := time.Date(2025, 2, 15, 0, 0, 0, 0, time.UTC)
		assert.Equal(t, models.PaymentActive, PaymentStatusAt(&paid, boundary))
		assert.Equal(t, models.PaymentOverdue, PaymentStatusAt(&paid, boundary.Add(time.Second)))
	})
}

func TestMonthlyFeeFor(t *testing.T) {
	pricing := models.DefaultPricing()

	t.Run("positive override wins over table", func(t *testing.T) {
		fee := 150.0
		student := models.Student{PlanType: models.PlanMonthly, AthleteType: models.AthleteCompetitor, MonthlyFee: &fee}
		assert.Equal(t, 150.0, MonthlyFeeFor(student, pricing))
	})

	t.Run("zero override falls back to table", func(t *testing.T) {
		fee := 0.0
		student := models.Student{PlanType: models.PlanMonthly, AthleteType: models.AthleteCompetitor, MonthlyFee: &fee}
		assert.Equal(t, 120.0, MonthlyFeeFor(student, pricing))
	})

	t.Run("unknown combination prices at zero", func(t *testing.T) {
		student := models.Student{PlanType: "weekly", AthleteType: models.AthleteCompetitor}
		assert.Equal(t, 0.0, MonthlyFeeFor(student, pricing))
	})
}

type fakeStudentLister struct {
	students []models.Student
	err      error
}

func (f *fakeStudentLister) ListActive(ctx context.Context) ([]models.Student, error) {
	return f.students, f.err
}

type fakePricingProvider struct {
	config models.PricingConfig
}

func (f *fakePricingProvider) Current(ctx context.Context) (models.PricingConfig, error) {
	return f.config, nil
}

func TestEstimateMonthlyRevenue(t *testing.T) {
	overduePaid := "2025-01-01"
	recentPaid := "2025-02-10"
	override := 250.0
	lister := &fakeStudentLister{students: []models.Student{
		{PlanType: models.PlanMonthly, AthleteType: models.AthleteCompetitor, LastPaymentDate: &recentPaid},
		{PlanType: models.PlanMonthly, AthleteType: models.AthleteFunctional, LastPaymentDate: &overduePaid},
		{PlanType: models.PlanAnnual, AthleteType: models.AthletePrivate, MonthlyFee: &override},
	}}
	svc := NewBillingService(lister, &fakePricingProvider{config: models.DefaultPricing()}, nil, nil, time.Minute)
	svc.now = func() time.Time { return time.Date(2025, 2, 15, 12, 0, 0, 0, time.UTC) }

	summary, err := svc.EstimateMonthlyRevenue(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 120.0+100.0+250.0, summary.Total)
	assert.Equal(t, 2, summary.Active)
	assert.Equal(t, 1, summary.Overdue)

	require.Len(t, summary.ByPlan, 2)
	assert.Equal(t, models.PlanMonthly, summary.ByPlan[0].PlanType)
	assert.Equal(t, 220.0, summary.ByPlan[0].Amount)
	assert.Equal(t, 2, summary.ByPlan[0].Students)
	assert.Equal(t, models.PlanAnnual, summary.ByPlan[1].PlanType)
	assert.Equal(t, 250.0, summary.ByPlan[1].Amount)
}

func TestEstimateMonthlyRevenueEmptyBase(t *testing.T) {
	svc := NewBillingService(&fakeStudentLister{}, &fakePricingProvider{config: models.DefaultPricing()}, nil, nil, time.Minute)

	summary, err := svc.EstimateMonthlyRevenue(context.Background())
	require.NoError(t, err)
	assert.Zero(t, summary.Total)
	assert.Empty(t, summary.ByPlan)
}
