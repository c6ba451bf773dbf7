package dto

import "github.com/boxgym/boxgym-api/internal/models"

// PlanRevenue is the estimated revenue attributable to one plan type.
type PlanRevenue struct {
	PlanType models.PlanType `json:"plan_type"`
	Amount   float64         `json:"amount"`
	Students int             `json:"students"`
}

// RevenueSummary is the professor-facing monthly revenue estimate.
type RevenueSummary struct {
	Total   float64       `json:"total"`
	ByPlan  []PlanRevenue `json:"by_plan"`
	Active  int           `json:"active_students"`
	Overdue int           `json:"overdue_students"`
}

// PricingItem flattens one price cell for API payloads.
type PricingItem struct {
	PlanType    models.PlanType    `json:"plan_type" validate:"required"`
	AthleteType models.AthleteType `json:"athlete_type" validate:"required"`
	Price       float64            `json:"price" validate:"gte=0"`
}

// ReplacePricingRequest fully replaces the pricing table.
type ReplacePricingRequest struct {
	Items []PricingItem `json:"items" validate:"required,min=1,dive"`
}
