package models

import "time"

// PlanType is the billing cadence for a student's plan.
type PlanType string

const (
	PlanDaily      PlanType = "daily"
	PlanMonthly    PlanType = "monthly"
	PlanSemiannual PlanType = "semiannual"
	PlanAnnual     PlanType = "annual"
)

// Valid returns true when the plan type is a supported value.
func (p PlanType) Valid() bool {
	switch p {
	case PlanDaily, PlanMonthly, PlanSemiannual, PlanAnnual:
		return true
	default:
		return false
	}
}

// PlanTypes lists all plan types in display order.
func PlanTypes() []PlanType {
	return []PlanType{PlanMonthly, PlanSemiannual, PlanAnnual, PlanDaily}
}

// AthleteType is the training category used for pricing.
type AthleteType string

const (
	AthleteCompetitor AthleteType = "athlete"
	AthleteFunctional AthleteType = "functional"
	AthletePrivate    AthleteType = "private"
)

// Valid returns true when the athlete type is a supported value.
func (a AthleteType) Valid() bool {
	switch a {
	case AthleteCompetitor, AthleteFunctional, AthletePrivate:
		return true
	default:
		return false
	}
}

// PaymentStatus is the computed billing state of a student.
type PaymentStatus string

const (
	PaymentActive  PaymentStatus = "active"
	PaymentOverdue PaymentStatus = "overdue"
)

// Student represents a gym member. Calendar fields are stored as ISO date
// strings (YYYY-MM-DD) as received from clients; the billing evaluator parses
// them lazily and fails open on garbage.
type Student struct {
	ID              string      `db:"id" json:"id"`
	UserID          string      `db:"user_id" json:"user_id"`
	Username        string      `db:"username" json:"username"`
	Name            string      `db:"name" json:"name"`
	Email           string      `db:"email" json:"email"`
	Phone           string      `db:"phone" json:"phone"`
	Address         *string     `db:"address" json:"address,omitempty"`
	BirthDate       string      `db:"birth_date" json:"birth_date"`
	HeightCM        float64     `db:"height_cm" json:"height_cm"`
	WeightKG        float64     `db:"weight_kg" json:"weight_kg"`
	Objective       string      `db:"objective" json:"objective"`
	JoinDate        string      `db:"join_date" json:"join_date"`
	PlanType        PlanType    `db:"plan_type" json:"plan_type"`
	AthleteType     AthleteType `db:"athlete_type" json:"athlete_type"`
	PaymentDay      int         `db:"payment_day" json:"payment_day"`
	Active          bool        `db:"active" json:"active"`
	LastPaymentDate *string     `db:"last_payment_date" json:"last_payment_date,omitempty"`
	MonthlyFee      *float64    `db:"monthly_fee" json:"monthly_fee,omitempty"`
	CreatedAt       time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time   `db:"updated_at" json:"updated_at"`
}

// StudentDetail decorates a student with its computed payment status.
type StudentDetail struct {
	Student
	PaymentStatus PaymentStatus `json:"payment_status"`
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	Search    string
	PlanType  *PlanType
	Active    *bool
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
