package models

import "time"

// Professor represents a coach profile linked to an account.
type Professor struct {
	ID           string    `db:"id" json:"id"`
	UserID       string    `db:"user_id" json:"user_id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	Whatsapp     *string   `db:"whatsapp" json:"whatsapp,omitempty"`
	Instagram    *string   `db:"instagram" json:"instagram,omitempty"`
	Facebook     *string   `db:"facebook" json:"facebook,omitempty"`
	Bio          *string   `db:"bio" json:"bio,omitempty"`
	PortfolioURL *string   `db:"portfolio_url" json:"portfolio_url,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}
