package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/boxgym/boxgym-api/internal/models"
)

// SessionRepository manages persistence for training sessions.
type SessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository constructs a SessionRepository.
func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

const sessionColumns = `id, date, time, location, description, created_by, created_at, updated_at`

// ListFrom returns sessions on or after the given ISO date, soonest first.
func (r *SessionRepository) ListFrom(ctx context.Context, fromDate string) ([]models.TrainingSession, error) {
	query := fmt.Sprintf("SELECT %s FROM training_sessions WHERE date >= $1 ORDER BY date ASC, time ASC", sessionColumns)
	var sessions []models.TrainingSession
	if err := r.db.SelectContext(ctx, &sessions, query, fromDate); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}

// FindByID fetches a session by ID.
func (r *SessionRepository) FindByID(ctx context.Context, id string) (*models.TrainingSession, error) {
	query := fmt.Sprintf("SELECT %s FROM training_sessions WHERE id = $1 LIMIT 1", sessionColumns)
	var session models.TrainingSession
	if err := r.db.GetContext(ctx, &session, query, id); err != nil {
		return nil, err
	}
	return &session, nil
}

// Create inserts a new training session.
func (r *SessionRepository) Create(ctx context.Context, session *models.TrainingSession) error {
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	session.CreatedAt = now
	session.UpdatedAt = now
	const query = `INSERT INTO training_sessions (id, date, time, location, description, created_by, created_at, updated_at)
VALUES (:id, :date, :time, :location, :description, :created_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, session); err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// Update modifies an existing session.
func (r *SessionRepository) Update(ctx context.Context, session *models.TrainingSession) error {
	session.UpdatedAt = time.Now().UTC()
	const query = `UPDATE training_sessions SET date = :date, time = :time, location = :location, description = :description, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, session)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a session. Attendance rows keep their session reference so
// historical records survive; the listing join tolerates the dangling ID.
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM training_sessions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
