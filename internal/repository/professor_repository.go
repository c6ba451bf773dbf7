package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/boxgym/boxgym-api/internal/models"
)

// ProfessorRepository manages persistence for professor profiles.
type ProfessorRepository struct {
	db *sqlx.DB
}

// NewProfessorRepository constructs a ProfessorRepository.
func NewProfessorRepository(db *sqlx.DB) *ProfessorRepository {
	return &ProfessorRepository{db: db}
}

const professorColumns = `id, user_id, name, email, whatsapp, instagram, facebook, bio, portfolio_url, created_at, updated_at`

// List returns all professors ordered by name.
func (r *ProfessorRepository) List(ctx context.Context) ([]models.Professor, error) {
	query := fmt.Sprintf("SELECT %s FROM professors ORDER BY name ASC", professorColumns)
	var professors []models.Professor
	if err := r.db.SelectContext(ctx, &professors, query); err != nil {
		return nil, fmt.Errorf("list professors: %w", err)
	}
	return professors, nil
}

// FindByID fetches a professor by ID.
func (r *ProfessorRepository) FindByID(ctx context.Context, id string) (*models.Professor, error) {
	query := fmt.Sprintf("SELECT %s FROM professors WHERE id = $1 LIMIT 1", professorColumns)
	var professor models.Professor
	if err := r.db.GetContext(ctx, &professor, query, id); err != nil {
		return nil, err
	}
	return &professor, nil
}

// FindByUserID fetches the professor profile owned by an account.
func (r *ProfessorRepository) FindByUserID(ctx context.Context, userID string) (*models.Professor, error) {
	query := fmt.Sprintf("SELECT %s FROM professors WHERE user_id = $1 LIMIT 1", professorColumns)
	var professor models.Professor
	if err := r.db.GetContext(ctx, &professor, query, userID); err != nil {
		return nil, err
	}
	return &professor, nil
}

// Update modifies a professor profile.
func (r *ProfessorRepository) Update(ctx context.Context, professor *models.Professor) error {
	professor.UpdatedAt = time.Now().UTC()
	const query = `UPDATE professors SET name = :name, email = :email, whatsapp = :whatsapp, instagram = :instagram, facebook = :facebook, bio = :bio, portfolio_url = :portfolio_url, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, professor); err != nil {
		return fmt.Errorf("update professor: %w", err)
	}
	return nil
}
