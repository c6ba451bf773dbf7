package models

import "time"

// PricingConfig maps plan type to athlete type to a non-negative monthly
// price. Missing combinations price at zero.
type PricingConfig map[PlanType]map[AthleteType]float64

// Price returns the configured price for the combination, or zero when absent.
func (p PricingConfig) Price(plan PlanType, athlete AthleteType) float64 {
	if byAthlete, ok := p[plan]; ok {
		return byAthlete[athlete]
	}
	return 0
}

// DefaultPricing returns the built-in price table used until a professor
// replaces it.
func DefaultPricing() PricingConfig {
	return PricingConfig{
		PlanMonthly:    {AthleteCompetitor: 120, AthleteFunctional: 100, AthletePrivate: 200},
		PlanSemiannual: {AthleteCompetitor: 100, AthleteFunctional: 90, AthletePrivate: 180},
		PlanAnnual:     {AthleteCompetitor: 90, AthleteFunctional: 80, AthletePrivate: 160},
		PlanDaily:      {AthleteCompetitor: 20, AthleteFunctional: 20, AthletePrivate: 50},
	}
}

// PricingEntry is a single persisted price row.
type PricingEntry struct {
	PlanType    PlanType    `db:"plan_type" json:"plan_type"`
	AthleteType AthleteType `db:"athlete_type" json:"athlete_type"`
	Price       float64     `db:"price" json:"price"`
	UpdatedBy   *string     `db:"updated_by" json:"updated_by,omitempty"`
	UpdatedAt   time.Time   `db:"updated_at" json:"updated_at"`
}
