package repository

import (
	"context"
	"fmt"

	"github.com/lib/pq"

	"github.com/flotech/flotech/internal/model"
)

// CreateIngestion records an audit row for one processed webhook
// delivery. Failures here are treated as non-fatal by callers; the
// meeting upsert is the source of truth.
func (r *Repository) CreateIngestion(ctx context.Context, ing *model.Ingestion) error {
	query := `
		INSERT INTO ingestions (id, user_id, meeting_ids, received_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.pool.Exec(ctx, query,
		ing.ID,
		ing.UserID,
		pq.Array(ing.MeetingIDs),
		ing.ReceivedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create ingestion record: %w", err)
	}

	return nil
}

// ListIngestionsByUser returns a user's ingestion audit records, newest
// first, capped at limit.
func (r *Repository) ListIngestionsByUser(ctx context.Context, userID string, limit int) ([]*model.Ingestion, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	query := `
		SELECT id, user_id, meeting_ids, received_at
		FROM ingestions
		WHERE user_id = $1
		ORDER BY received_at DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list ingestions: %w", err)
	}
	defer rows.Close()

	var ingestions []*model.Ingestion
	for rows.Next() {
		var ing model.Ingestion
		if err := rows.Scan(
			&ing.ID,
			&ing.UserID,
			pq.Array(&ing.MeetingIDs),
			&ing.ReceivedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan ingestion: %w", err)
		}
		ingestions = append(ingestions, &ing)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ingestions: %w", err)
	}

	return ingestions, nil
}
