package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/boxgym/boxgym-api/internal/models"
)

// PricingRepository persists the plan price table.
type PricingRepository struct {
	db *sqlx.DB
}

// NewPricingRepository constructs a PricingRepository.
func NewPricingRepository(db *sqlx.DB) *PricingRepository {
	return &PricingRepository{db: db}
}

// ListAll returns every stored price row. An empty result means the built-in
// defaults apply.
func (r *PricingRepository) ListAll(ctx context.Context) ([]models.PricingEntry, error) {
	const query = `SELECT plan_type, athlete_type, price, updated_by, updated_at FROM pricing ORDER BY plan_type, athlete_type`
	var entries []models.PricingEntry
	if err := r.db.SelectContext(ctx, &entries, query); err != nil {
		return nil, fmt.Errorf("list pricing: %w", err)
	}
	return entries, nil
}

// ReplaceAll swaps the whole price table in one transaction.
func (r *PricingRepository) ReplaceAll(ctx context.Context, entries []models.PricingEntry) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace pricing: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM pricing`); err != nil {
		return fmt.Errorf("clear pricing: %w", err)
	}
	const query = `INSERT INTO pricing (plan_type, athlete_type, price, updated_by, updated_at)
VALUES (:plan_type, :athlete_type, :price, :updated_by, :updated_at)`
	now := time.Now().UTC()
	for i := range entries {
		entries[i].UpdatedAt = now
		if _, err := tx.NamedExecContext(ctx, query, entries[i]); err != nil {
			return fmt.Errorf("insert pricing row: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace pricing: %w", err)
	}
	committed = true
	return nil
}
