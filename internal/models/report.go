package models

import "time"

// ReportType identifies the dataset a report renders.
type ReportType string

const (
	ReportAttendance ReportType = "attendance"
	ReportRevenue    ReportType = "revenue"
)

// Valid returns true for supported report types.
func (t ReportType) Valid() bool {
	return t == ReportAttendance || t == ReportRevenue
}

// ReportFormat identifies the output encoding.
type ReportFormat string

const (
	ReportFormatCSV ReportFormat = "csv"
	ReportFormatPDF ReportFormat = "pdf"
)

// Valid returns true for supported formats.
func (f ReportFormat) Valid() bool {
	return f == ReportFormatCSV || f == ReportFormatPDF
}

// ReportStatus tracks the async lifecycle of a report job.
type ReportStatus string

const (
	ReportStatusPending    ReportStatus = "pending"
	ReportStatusProcessing ReportStatus = "processing"
	ReportStatusCompleted  ReportStatus = "completed"
	ReportStatusFailed     ReportStatus = "failed"
)

// Report represents an asynchronous export job requested by a professor.
type Report struct {
	ID          string       `db:"id" json:"id"`
	Type        ReportType   `db:"type" json:"type"`
	Format      ReportFormat `db:"format" json:"format"`
	Status      ReportStatus `db:"status" json:"status"`
	FilePath    *string      `db:"file_path" json:"-"`
	Error       *string      `db:"error" json:"error,omitempty"`
	RequestedBy string       `db:"requested_by" json:"requested_by"`
	CreatedAt   time.Time    `db:"created_at" json:"created_at"`
	CompletedAt *time.Time   `db:"completed_at" json:"completed_at,omitempty"`
}
