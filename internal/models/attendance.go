package models

import "time"

// Attendance records whether a student was present at a training session.
// TrainingSessionID is nil for legacy daily records keyed only by date; those
// rows are unique per (student, date) instead of (student, session).
type Attendance struct {
	ID                string    `db:"id" json:"id"`
	StudentID         string    `db:"student_id" json:"student_id"`
	TrainingSessionID *string   `db:"training_session_id" json:"training_session_id,omitempty"`
	Date              string    `db:"date" json:"date"`
	Present           bool      `db:"present" json:"present"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}

// AttendanceFilter scopes attendance listing queries.
type AttendanceFilter struct {
	StudentID         string
	TrainingSessionID string
	DateFrom          string
	DateTo            string
	Page              int
	PageSize          int
}

// AttendanceRecord extends an attendance row with student metadata for
// professor-facing listings and reports.
type AttendanceRecord struct {
	Attendance
	StudentName     string  `db:"student_name" json:"student_name"`
	SessionDate     *string `db:"session_date" json:"session_date,omitempty"`
	SessionTime     *string `db:"session_time" json:"session_time,omitempty"`
	SessionLocation *string `db:"session_location" json:"session_location,omitempty"`
}
