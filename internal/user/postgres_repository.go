package user

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/breezyday/breezyday/internal/database"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	db database.Querier
}

// NewPostgresRepository creates a new PostgreSQL profile repository.
func NewPostgresRepository(db database.Querier) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Get retrieves a profile by user ID.
func (r *PostgresRepository) Get(ctx context.Context, userID string) (*Profile, error) {
	query := `
		SELECT user_id, username, gender, date_of_birth, preferred_styles, updated_at
		FROM profiles
		WHERE user_id = $1
	`

	var p Profile
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&p.UserID,
		&p.Username,
		&p.Gender,
		&p.DateOfBirth,
		&p.PreferredStyles,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	if p.PreferredStyles == nil {
		p.PreferredStyles = []string{}
	}

	return &p, nil
}

// Upsert creates or replaces a profile.
func (r *PostgresRepository) Upsert(ctx context.Context, p *Profile) error {
	query := `
		INSERT INTO profiles (user_id, username, gender, date_of_birth, preferred_styles, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id) DO UPDATE SET
			username = EXCLUDED.username,
			gender = EXCLUDED.gender,
			date_of_birth = EXCLUDED.date_of_birth,
			preferred_styles = EXCLUDED.preferred_styles,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.Exec(ctx, query,
		p.UserID,
		p.Username,
		p.Gender,
		p.DateOfBirth,
		p.PreferredStyles,
		p.UpdatedAt,
	)
	return err
}
