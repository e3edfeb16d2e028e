package feedback

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/breezyday/breezyday/internal/database"
)

// PostgresRepository stores entries as JSONB payloads.
type PostgresRepository struct {
	db database.Querier
}

// NewPostgresRepository creates a new PostgreSQL feedback repository.
func NewPostgresRepository(db database.Querier) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create stores a new entry.
func (r *PostgresRepository) Create(ctx context.Context, entry *Entry) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encoding feedback: %w", err)
	}

	query := `
		INSERT INTO feedback (id, user_id, payload, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err = r.db.Exec(ctx, query, entry.ID, entry.UserID, payload, entry.CreatedAt)
	return err
}

// ListByUser returns up to limit entries, newest first.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultListCap
	}

	query := `
		SELECT id, payload, created_at
		FROM feedback
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying feedback: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			id        string
			payload   []byte
			createdAt time.Time
		)
		if err := rows.Scan(&id, &payload, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning feedback: %w", err)
		}

		var e Entry
		if err := json.Unmarshal(payload, &e); err != nil {
			return nil, fmt.Errorf("decoding feedback %s: %w", id, err)
		}
		e.ID = id
		e.UserID = userID
		e.CreatedAt = createdAt
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading feedback rows: %w", err)
	}

	return entries, nil
}
