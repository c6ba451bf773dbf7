package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/boxgym/boxgym-api/internal/dto"
	"github.com/boxgym/boxgym-api/internal/models"
	appErrors "github.com/boxgym/boxgym-api/pkg/errors"
	"github.com/boxgym/boxgym-api/pkg/jobs"
	"github.com/boxgym/boxgym-api/pkg/storage"
)

type reportStore interface {
	Create(ctx context.Context, report *models.Report) error
	FindByID(ctx context.Context, id string) (*models.Report, error)
	ListByRequester(ctx context.Context, userID string, limit int) ([]models.Report, error)
	MarkProcessing(ctx context.Context, id string) error
	MarkCompleted(ctx context.Context, id, filePath string) error
	MarkFailed(ctx context.Context, id, reason string) error
}

type jobDispatcher interface {
	Enqueue(job jobs.Job) error
}

// ReportFile is a resolved download ready for streaming.
type ReportFile struct {
	File     *os.File
	Filename string
	Format   models.ReportFormat
}

// ReportService manages the asynchronous export lifecycle: a professor
// requests a report, a worker renders it, and the result is fetched through
// a signed URL.
type ReportService struct {
	repo      reportStore
	queue     jobDispatcher
	exporter  *ExportService
	signer    *storage.SignedURLSigner
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewReportService constructs the report service.
func NewReportService(repo reportStore, queue jobDispatcher, exporter *ExportService, signer *storage.SignedURLSigner, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *ReportService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		repo:      repo,
		queue:     queue,
		exporter:  exporter,
		signer:    signer,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
	}
}

// Create persists a pending report and enqueues it for rendering.
func (s *ReportService) Create(ctx context.Context, req dto.CreateReportRequest, requestedBy string) (*models.Report, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid report payload")
	}
	report := &models.Report{
		Type:        models.ReportType(req.Type),
		Format:      models.ReportFormat(req.Format),
		Status:      models.ReportStatusPending,
		RequestedBy: requestedBy,
	}
	if err := s.repo.Create(ctx, report); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create report")
	}
	if err := s.queue.Enqueue(jobs.Job{ID: report.ID, Type: string(report.Type)}); err != nil {
		if markErr := s.repo.MarkFailed(ctx, report.ID, "failed to enqueue"); markErr != nil {
			s.logger.Warn("failed to mark report failed", zap.String("report_id", report.ID), zap.Error(markErr))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue report")
	}
	return report, nil
}

// Get returns report status. Requesters can only read their own reports.
func (s *ReportService) Get(ctx context.Context, id, requesterID string) (*models.Report, error) {
	report, err := s.findOwned(ctx, id, requesterID)
	if err != nil {
		return nil, err
	}
	return report, nil
}

// List returns the requester's recent reports.
func (s *ReportService) List(ctx context.Context, requesterID string, limit int) ([]models.Report, error) {
	reports, err := s.repo.ListByRequester(ctx, requesterID, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list reports")
	}
	return reports, nil
}

// DownloadToken issues a signed token for a completed report.
func (s *ReportService) DownloadToken(ctx context.Context, id, requesterID string) (*dto.ReportDownload, error) {
	report, err := s.findOwned(ctx, id, requesterID)
	if err != nil {
		return nil, err
	}
	if report.Status != models.ReportStatusCompleted || report.FilePath == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "report is not ready for download")
	}
	token, expiresAt, err := s.signer.Generate(report.ID, *report.FilePath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download url")
	}
	return &dto.ReportDownload{
		ReportID:  report.ID,
		Token:     token,
		ExpiresAt: expiresAt.UTC().Format(time.RFC3339),
	}, nil
}

// Resolve validates a signed token and opens the underlying file.
func (s *ReportService) Resolve(ctx context.Context, token string) (*ReportFile, error) {
	reportID, relPath, _, err := s.signer.Parse(token)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid download token")
	}
	report, err := s.repo.FindByID(ctx, reportID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "report not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load report")
	}
	if report.FilePath == nil || *report.FilePath != relPath {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "download token does not match report")
	}
	file, err := s.exporter.Open(relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open report file")
	}
	return &ReportFile{
		File:     file,
		Filename: fmt.Sprintf("%s_%s.%s", report.Type, report.ID[:8], report.Format),
		Format:   report.Format,
	}, nil
}

// ProcessJob is the queue handler that renders one report.
func (s *ReportService) ProcessJob(ctx context.Context, job jobs.Job) error {
	report, err := s.repo.FindByID(ctx, job.ID)
	if err != nil {
		return fmt.Errorf("load report %s: %w", job.ID, err)
	}
	if report.Status == models.ReportStatusCompleted {
		return nil
	}
	if err := s.repo.MarkProcessing(ctx, report.ID); err != nil {
		s.logger.Warn("failed to mark report processing", zap.String("report_id", report.ID), zap.Error(err))
	}

	relPath, err := s.exporter.Generate(ctx, report)
	if err != nil {
		s.metrics.RecordReport(report.Type, "failed")
		if markErr := s.repo.MarkFailed(ctx, report.ID, err.Error()); markErr != nil {
			s.logger.Warn("failed to mark report failed", zap.String("report_id", report.ID), zap.Error(markErr))
		}
		return fmt.Errorf("generate report %s: %w", report.ID, err)
	}
	if err := s.repo.MarkCompleted(ctx, report.ID, relPath); err != nil {
		return fmt.Errorf("complete report %s: %w", report.ID, err)
	}
	s.metrics.RecordReport(report.Type, "completed")
	s.logger.Info("report generated",
		zap.String("report_id", report.ID),
		zap.String("type", string(report.Type)),
		zap.String("format", string(report.Format)))
	return nil
}

func (s *ReportService) findOwned(ctx context.Context, id, requesterID string) (*models.Report, error) {
	report, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "report not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load report")
	}
	if report.RequestedBy != requesterID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "report belongs to another user")
	}
	return report, nil
}
