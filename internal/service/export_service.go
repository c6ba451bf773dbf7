package service

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/boxgym/boxgym-api/internal/models"
	"github.com/boxgym/boxgym-api/pkg/export"
)

type attendanceLister interface {
	List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, int, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportService builds report datasets and persists the rendered files.
type ExportService struct {
	attendance attendanceLister
	billing    *BillingService
	storage    fileStorage
	csv        csvRenderer
	pdf        pdfRenderer
	logger     *zap.Logger
	now        func() time.Time
}

// NewExportService constructs an ExportService.
func NewExportService(attendance attendanceLister, billing *BillingService, storage fileStorage, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		attendance: attendance,
		billing:    billing,
		storage:    storage,
		csv:        export.NewCSVExporter(),
		pdf:        export.NewPDFExporter(),
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Generate renders the dataset for a report and stores the file, returning
// the relative path within storage.
func (s *ExportService) Generate(ctx context.Context, report *models.Report) (string, error) {
	var (
		dataset export.Dataset
		title   string
		err     error
	)
	switch report.Type {
	case models.ReportAttendance:
		dataset, title, err = s.buildAttendanceDataset(ctx)
	case models.ReportRevenue:
		dataset, title, err = s.buildRevenueDataset(ctx)
	default:
		err = fmt.Errorf("unsupported report type %s", report.Type)
	}
	if err != nil {
		return "", err
	}

	var payload []byte
	switch report.Format {
	case models.ReportFormatCSV:
		payload, err = s.csv.Render(dataset)
	case models.ReportFormatPDF:
		payload, err = s.pdf.Render(dataset, title)
	default:
		err = fmt.Errorf("unsupported report format %s", report.Format)
	}
	if err != nil {
		return "", err
	}

	filename := fmt.Sprintf("%s_%s.%s", strings.ToLower(string(report.Type)), s.now().Format("20060102_150405"), report.Format)
	return s.storage.Save(filename, payload)
}

// Open returns a handle to a stored export file.
func (s *ExportService) Open(relPath string) (*os.File, error) {
	return s.storage.Open(relPath)
}

func (s *ExportService) buildAttendanceDataset(ctx context.Context) (export.Dataset, string, error) {
	headers := []string{"Student", "Date", "Session Time", "Location", "Present"}
	var rows [][]string
	for page := 1; ; page++ {
		records, total, err := s.attendance.List(ctx, models.AttendanceFilter{Page: page, PageSize: 200})
		if err != nil {
			return export.Dataset{}, "", err
		}
		for _, record := range records {
			rows = append(rows, []string{
				record.StudentName,
				record.Date,
				deref(record.SessionTime),
				deref(record.SessionLocation),
				presentLabel(record.Present),
			})
		}
		if len(records) == 0 || len(rows) >= total {
			break
		}
	}
	return export.Dataset{Headers: headers, Rows: rows}, "Attendance Report", nil
}

func (s *ExportService) buildRevenueDataset(ctx context.Context) (export.Dataset, string, error) {
	summary, err := s.billing.EstimateMonthlyRevenue(ctx)
	if err != nil {
		return export.Dataset{}, "", err
	}
	headers := []string{"Plan", "Students", "Estimated Revenue"}
	rows := make([][]string, 0, len(summary.ByPlan)+1)
	for _, plan := range summary.ByPlan {
		rows = append(rows, []string{string(plan.PlanType), fmt.Sprintf("%d", plan.Students), fmt.Sprintf("%.2f", plan.Amount)})
	}
	rows = append(rows, []string{"total", fmt.Sprintf("%d", summary.Active+summary.Overdue), fmt.Sprintf("%.2f", summary.Total)})
	return export.Dataset{Headers: headers, Rows: rows}, "Monthly Revenue Estimate", nil
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func presentLabel(present bool) string {
	if present {
		return "yes"
	}
	return "no"
}
