package repository

import (
	"context"
	"fmt"

	"wacms/internal/models"
)

type feedMessageRepository struct {
	db DB
}

// NewFeedMessageRepository creates a new feed message repository
func NewFeedMessageRepository(db DB) FeedMessageRepository {
	return &feedMessageRepository{db: db}
}

// List retrieves every feed message ordered by creation time
func (r *feedMessageRepository) List(ctx context.Context) ([]*models.FeedMessage, error) {
	query := `
		SELECT id, created_at, phone_number, content, direction, status
		FROM messages
		ORDER BY created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list feed messages: %w", err)
	}
	defer rows.Close()

	messages := []*models.FeedMessage{}
	for rows.Next() {
		msg := &models.FeedMessage{}
		err := rows.Scan(
			&msg.ID,
			&msg.CreatedAt,
			&msg.PhoneNumber,
			&msg.Content,
			&msg.Direction,
			&msg.Status,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan feed message: %w", err)
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate feed messages: %w", err)
	}

	return messages, nil
}

// Upsert inserts a feed message or refreshes its content and status.
// It reports true when a new row was inserted.
func (r *feedMessageRepository) Upsert(ctx context.Context, msg *models.FeedMessage) (bool, error) {
	query := `
		INSERT INTO messages (id, created_at, phone_number, content, direction, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE
		SET content = EXCLUDED.content, status = EXCLUDED.status
		RETURNING (xmax = 0) AS inserted
	`

	var inserted bool
	err := r.db.QueryRowContext(
		ctx,
		query,
		msg.ID,
		msg.CreatedAt,
		msg.PhoneNumber,
		msg.Content,
		msg.Direction,
		msg.Status,
	).Scan(&inserted)
	if err != nil {
		return false, fmt.Errorf("failed to upsert feed message: %w", err)
	}

	return inserted, nil
}

// MarkPhoneRead flips unread incoming messages of a phone to read and returns the updated rows
func (r *feedMessageRepository) MarkPhoneRead(ctx context.Context, phoneNumber string) ([]*models.FeedMessage, error) {
	query := `
		UPDATE messages
		SET status = $1
		WHERE phone_number = $2 AND direction = $3 AND status = $4
		RETURNING id, created_at, phone_number, content, direction, status
	`

	rows, err := r.db.QueryContext(ctx, query,
		models.FeedStatusRead,
		phoneNumber,
		models.DirectionIncoming,
		models.FeedStatusUnread,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to mark messages as read: %w", err)
	}
	defer rows.Close()

	updated := []*models.FeedMessage{}
	for rows.Next() {
		msg := &models.FeedMessage{}
		err := rows.Scan(
			&msg.ID,
			&msg.CreatedAt,
			&msg.PhoneNumber,
			&msg.Content,
			&msg.Direction,
			&msg.Status,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan feed message: %w", err)
		}
		updated = append(updated, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate updated messages: %w", err)
	}

	return updated, nil
}
