package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/boxgym/boxgym-api/internal/models"
)

// AttendanceRepository manages the attendance ledger. A record is unique per
// (student, session) when a session is set, and per (student, date) for
// legacy daily rows; Upsert picks the conflict target accordingly.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs an AttendanceRepository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

const attendanceRecordColumns = `a.id, a.student_id, a.training_session_id, a.date, a.present, a.created_at, a.updated_at,
s.name AS student_name, ts.date AS session_date, ts.time AS session_time, ts.location AS session_location`

// List returns attendance records with student and session metadata.
func (r *AttendanceRepository) List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, int, error) {
	base := `FROM attendance a
JOIN students s ON s.id = a.student_id
LEFT JOIN training_sessions ts ON ts.id = a.training_session_id`
	conditions := []string{"1=1"}
	var args []interface{}

	if filter.StudentID != "" {
		conditions = append(conditions, fmt.Sprintf("a.student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.TrainingSessionID != "" {
		conditions = append(conditions, fmt.Sprintf("a.training_session_id = $%d", len(args)+1))
		args = append(args, filter.TrainingSessionID)
	}
	if filter.DateFrom != "" {
		conditions = append(conditions, fmt.Sprintf("a.date >= $%d", len(args)+1))
		args = append(args, filter.DateFrom)
	}
	if filter.DateTo != "" {
		conditions = append(conditions, fmt.Sprintf("a.date <= $%d", len(args)+1))
		args = append(args, filter.DateTo)
	}

	base = fmt.Sprintf("%s WHERE %s", base, strings.Join(conditions, " AND "))

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY a.date DESC, a.created_at DESC LIMIT %d OFFSET %d", attendanceRecordColumns, base, size, offset)
	var records []models.AttendanceRecord
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list attendance: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count attendance: %w", err)
	}
	return records, total, nil
}

// FindBySession returns attendance rows for one training session.
func (r *AttendanceRepository) FindBySession(ctx context.Context, sessionID string) ([]models.AttendanceRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM attendance a
JOIN students s ON s.id = a.student_id
LEFT JOIN training_sessions ts ON ts.id = a.training_session_id
WHERE a.training_session_id = $1 ORDER BY s.name ASC`, attendanceRecordColumns)
	var records []models.AttendanceRecord
	if err := r.db.SelectContext(ctx, &records, query, sessionID); err != nil {
		return nil, fmt.Errorf("find attendance by session: %w", err)
	}
	return records, nil
}

// Upsert inserts or overwrites an attendance mark. The latest write wins for
// the Present flag; on conflict the stored row keeps its original id and
// creation time, which are scanned back into att.
func (r *AttendanceRepository) Upsert(ctx context.Context, att *models.Attendance) error {
	if att.ID == "" {
		att.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	att.CreatedAt = now
	att.UpdatedAt = now

	var query string
	if att.TrainingSessionID != nil {
		query = `INSERT INTO attendance (id, student_id, training_session_id, date, present, created_at, updated_at)
VALUES (:id, :student_id, :training_session_id, :date, :present, :created_at, :updated_at)
ON CONFLICT (student_id, training_session_id) WHERE training_session_id IS NOT NULL
DO UPDATE SET present = EXCLUDED.present, date = EXCLUDED.date, updated_at = EXCLUDED.updated_at
RETURNING id, created_at`
	} else {
		query = `INSERT INTO attendance (id, student_id, training_session_id, date, present, created_at, updated_at)
VALUES (:id, :student_id, :training_session_id, :date, :present, :created_at, :updated_at)
ON CONFLICT (student_id, date) WHERE training_session_id IS NULL
DO UPDATE SET present = EXCLUDED.present, updated_at = EXCLUDED.updated_at
RETURNING id, created_at`
	}
	bound, args, err := r.db.BindNamed(query, att)
	if err != nil {
		return fmt.Errorf("bind upsert attendance: %w", err)
	}
	if err := r.db.QueryRowxContext(ctx, bound, args...).Scan(&att.ID, &att.CreatedAt); err != nil {
		return fmt.Errorf("upsert attendance: %w", err)
	}
	return nil
}

// CountPresentBySession returns how many students are marked present for a
// session.
func (r *AttendanceRepository) CountPresentBySession(ctx context.Context, sessionID string) (int, error) {
	const query = `SELECT COUNT(*) FROM attendance WHERE training_session_id = $1 AND present = TRUE`
	var count int
	if err := r.db.GetContext(ctx, &count, query, sessionID); err != nil {
		return 0, fmt.Errorf("count present: %w", err)
	}
	return count, nil
}
