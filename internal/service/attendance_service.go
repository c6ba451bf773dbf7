package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/boxgym/boxgym-api/internal/models"
	appErrors "github.com/boxgym/boxgym-api/pkg/errors"
)

const (
	confirmWindowMin = time.Hour
	confirmWindowMax = 72 * time.Hour
)

type attendanceRepository interface {
	List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, int, error)
	FindBySession(ctx context.Context, sessionID string) ([]models.AttendanceRecord, error)
	CountPresentBySession(ctx context.Context, sessionID string) (int, error)
	Upsert(ctx context.Context, att *models.Attendance) error
}

type sessionFinder interface {
	FindByID(ctx context.Context, id string) (*models.TrainingSession, error)
}

type studentFinder interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

// MarkAttendanceRequest confirms or retracts presence. StudentID and Date are
// only honoured for professor callers; students always mark themselves
// against a session.
type MarkAttendanceRequest struct {
	TrainingSessionID *string `json:"training_session_id"`
	StudentID         string  `json:"student_id"`
	Date              string  `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Present           bool    `json:"present"`
}

// CanConfirmAt reports whether a session can be confirmed at the given
// instant. Confirmation opens three days before the session and closes one
// hour before it starts. Sessions with malformed date or time can never be
// confirmed.
func CanConfirmAt(sessionDate, sessionTime string, now time.Time) bool {
	start, err := time.ParseInLocation("2006-01-02 15:04", sessionDate+" "+sessionTime, now.Location())
	if err != nil {
		return false
	}
	until := start.Sub(now)
	return until >= confirmWindowMin && until <= confirmWindowMax
}

// AttendanceService manages the attendance ledger.
type AttendanceService struct {
	repo      attendanceRepository
	sessions  sessionFinder
	students  studentFinder
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewAttendanceService constructs the attendance service.
func NewAttendanceService(repo attendanceRepository, sessions sessionFinder, students studentFinder, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{
		repo:      repo,
		sessions:  sessions,
		students:  students,
		validator: validate,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Mark records presence for a student. Students may only mark themselves and
// only while the confirmation window is open; professors can correct any
// record at any time, including legacy date-only entries.
func (s *AttendanceService) Mark(ctx context.Context, actor *models.JWTClaims, req MarkAttendanceRequest) (*models.Attendance, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}

	studentID := req.StudentID
	if !actor.IsProfessor() {
		studentID = actor.ProfileID
	}
	if studentID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "student is required")
	}

	if _, err := s.students.FindByID(ctx, studentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	att := &models.Attendance{
		StudentID:         studentID,
		TrainingSessionID: req.TrainingSessionID,
		Present:           req.Present,
	}

	switch {
	case req.TrainingSessionID != nil:
		session, err := s.sessions.FindByID(ctx, *req.TrainingSessionID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "training session not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
		}
		if !actor.IsProfessor() && !CanConfirmAt(session.Date, session.Time, s.now()) {
			return nil, appErrors.Clone(appErrors.ErrWindowClosed, "")
		}
		att.Date = session.Date
	case actor.IsProfessor() && req.Date != "":
		att.Date = req.Date
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "training session is required")
	}

	if err := s.repo.Upsert(ctx, att); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save attendance")
	}
	return att, nil
}

// List returns attendance records. Student callers only ever see their own
// history regardless of the requested filter.
func (s *AttendanceService) List(ctx context.Context, actor *models.JWTClaims, filter models.AttendanceFilter) ([]models.AttendanceRecord, *models.Pagination, error) {
	if !actor.IsProfessor() {
		filter.StudentID = actor.ProfileID
	}
	records, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attendance")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	return records, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// BySession returns the roster of attendance marks for one session together
// with the number of students marked present.
func (s *AttendanceService) BySession(ctx context.Context, sessionID string) ([]models.AttendanceRecord, int, error) {
	if _, err := s.sessions.FindByID(ctx, sessionID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, 0, appErrors.Clone(appErrors.ErrNotFound, "training session not found")
		}
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}
	records, err := s.repo.FindBySession(ctx, sessionID)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session attendance")
	}
	present, err := s.repo.CountPresentBySession(ctx, sessionID)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count session attendance")
	}
	return records, present, nil
}
