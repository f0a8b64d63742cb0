package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/flotech/flotech/internal/model"
)

// ErrMeetingNotFound indicates no meeting matched the lookup.
var ErrMeetingNotFound = errors.New("meeting not found")

// UpsertMeetings writes all meetings under the owning user in a single
// batch, keyed by (user_id, id). Re-delivering a transcript overwrites
// the row in place: created_at and updated_at are both set to the write
// time, matching the ingestion-time semantics of the webhook contract.
func (r *Repository) UpsertMeetings(ctx context.Context, meetings []*model.Meeting) error {
	if len(meetings) == 0 {
		return nil
	}

	query := `
		INSERT INTO meetings (user_id, id, title, date, duration, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id, id) DO UPDATE
		SET title = EXCLUDED.title,
		    date = EXCLUDED.date,
		    duration = EXCLUDED.duration,
		    created_at = EXCLUDED.created_at,
		    updated_at = EXCLUDED.updated_at
	`

	batch := &pgx.Batch{}
	for _, m := range meetings {
		batch.Queue(query,
			m.UserID,
			m.ID,
			m.Title,
			m.Date,
			m.Duration,
			m.CreatedAt,
			m.UpdatedAt,
		)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range meetings {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to upsert meetings: %w", err)
		}
	}

	return nil
}

// GetMeeting retrieves a single meeting by owner and transcript ID.
func (r *Repository) GetMeeting(ctx context.Context, userID, id string) (*model.Meeting, error) {
	query := `
		SELECT user_id, id, title, date, duration, created_at, updated_at
		FROM meetings
		WHERE user_id = $1 AND id = $2
	`

	var m model.Meeting
	err := r.pool.QueryRow(ctx, query, userID, id).Scan(
		&m.UserID,
		&m.ID,
		&m.Title,
		&m.Date,
		&m.Duration,
		&m.CreatedAt,
		&m.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMeetingNotFound
		}
		return nil, fmt.Errorf("failed to get meeting: %w", err)
	}

	return &m, nil
}

// ListMeetingsByUser returns all meetings owned by a user, newest date
// first.
func (r *Repository) ListMeetingsByUser(ctx context.Context, userID string) ([]*model.Meeting, error) {
	query := `
		SELECT user_id, id, title, date, duration, created_at, updated_at
		FROM meetings
		WHERE user_id = $1
		ORDER BY date DESC, id
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list meetings: %w", err)
	}
	defer rows.Close()

	var meetings []*model.Meeting
	for rows.Next() {
		var m model.Meeting
		if err := rows.Scan(
			&m.UserID,
			&m.ID,
			&m.Title,
			&m.Date,
			&m.Duration,
			&m.CreatedAt,
			&m.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan meeting: %w", err)
		}
		meetings = append(meetings, &m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating meetings: %w", err)
	}

	return meetings, nil
}
