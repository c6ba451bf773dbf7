package models

import "time"

// TrainingSession is a scheduled class instance students may attend. Date is
// an ISO date (YYYY-MM-DD) and Time a local time-of-day (HH:MM), combined by
// the attendance service when evaluating the confirmation window.
type TrainingSession struct {
	ID          string    `db:"id" json:"id"`
	Date        string    `db:"date" json:"date"`
	Time        string    `db:"time" json:"time"`
	Location    string    `db:"location" json:"location"`
	Description *string   `db:"description" json:"description,omitempty"`
	CreatedBy   string    `db:"created_by" json:"created_by"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}
