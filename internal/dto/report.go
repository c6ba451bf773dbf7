package dto

// CreateReportRequest asks for an asynchronous export.
type CreateReportRequest struct {
	Type   string `json:"type" validate:"required,oneof=attendance revenue"`
	Format string `json:"format" validate:"required,oneof=csv pdf"`
}

// ReportDownload carries the signed download token for a completed report.
type ReportDownload struct {
	ReportID  string `json:"report_id"`
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
}
