package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boxgym/boxgym-api/internal/dto"
	"github.com/boxgym/boxgym-api/internal/models"
	appErrors "github.com/boxgym/boxgym-api/pkg/errors"
)

type fakePricingRepo struct {
	entries  []models.PricingEntry
	replaced [][]models.PricingEntry
}

func (f *fakePricingRepo) ListAll(ctx context.Context) ([]models.PricingEntry, error) {
	return f.entries, nil
}

func (f *fakePricingRepo) ReplaceAll(ctx context.Context, entries []models.PricingEntry) error {
	f.entries = entries
	f.replaced = append(f.replaced, entries)
	return nil
}

func TestPricingCurrentFallsBackToDefaults(t *testing.T) {
	svc := NewPricingService(&fakePricingRepo{}, nil, nil, nil)

	config, err := svc.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 120.0, config.Price(models.PlanMonthly, models.AthleteCompetitor))
	assert.Equal(t, 50.0, config.Price(models.PlanDaily, models.AthletePrivate))
}

func TestPricingCurrentUsesStoredRows(t *testing.T) {
	repo := &fakePricingRepo{entries: []models.PricingEntry{
		{PlanType: models.PlanMonthly, AthleteType: models.AthleteCompetitor, Price: 135},
	}}
	svc := NewPricingService(repo, nil, nil, nil)

	config, err := svc.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 135.0, config.Price(models.PlanMonthly, models.AthleteCompetitor))
	assert.Zero(t, config.Price(models.PlanAnnual, models.AthletePrivate))
}

func TestPricingReplace(t *testing.T) {
	repo := &fakePricingRepo{}
	svc := NewPricingService(repo, nil, nil, nil)

	err := svc.Replace(context.Background(), dto.ReplacePricingRequest{Items: []dto.PricingItem{
		{PlanType: models.PlanMonthly, AthleteType: models.AthleteCompetitor, Price: 140},
		{PlanType: models.PlanMonthly, AthleteType: models.AthleteFunctional, Price: 110},
	}}, "prof1")
	require.NoError(t, err)
	require.Len(t, repo.replaced, 1)
	assert.Len(t, repo.entries, 2)
	assert.Equal(t, "prof1", *repo.entries[0].UpdatedBy)
}

func TestPricingReplaceRejectsDuplicates(t *testing.T) {
	svc := NewPricingService(&fakePricingRepo{}, nil, nil, nil)

	err := svc.Replace(context.Background(), dto.ReplacePricingRequest{Items: []dto.PricingItem{
		{PlanType: models.PlanMonthly, AthleteType: models.AthleteCompetitor, Price: 140},
		{PlanType: models.PlanMonthly, AthleteType: models.AthleteCompetitor, Price: 150},
	}}, "prof1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestPricingReplaceRejectsUnknownPlan(t *testing.T) {
	svc := NewPricingService(&fakePricingRepo{}, nil, nil, nil)

	err := svc.Replace(context.Background(), dto.ReplacePricingRequest{Items: []dto.PricingItem{
		{PlanType: "weekly", AthleteType: models.AthleteCompetitor, Price: 140},
	}}, "prof1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
