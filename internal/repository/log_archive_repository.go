package repository

import (
	"context"
	"fmt"

	"github.com/lib/pq"

	"wacms/internal/models"
)

type logArchiveRepository struct {
	db DB
}

// NewLogArchiveRepository creates a new message log archive repository
func NewLogArchiveRepository(db DB) LogArchiveRepository {
	return &logArchiveRepository{db: db}
}

// Archive stores one send attempt. Entries already archived are left untouched.
func (r *logArchiveRepository) Archive(ctx context.Context, entry *models.MessageLog) error {
	query := `
		INSERT INTO message_logs (id, campaign_id, contact_id, contact_name, contact_phone, message, status, error, sent_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO NOTHING
	`

	var lastError *string
	if entry.Error != "" {
		lastError = &entry.Error
	}

	_, err := r.db.ExecContext(
		ctx,
		query,
		entry.ID,
		entry.CampaignID,
		entry.ContactID,
		entry.ContactName,
		entry.ContactPhone,
		entry.Message,
		entry.Status,
		lastError,
		entry.SentAt,
	)
	if err != nil {
		return fmt.Errorf("failed to archive message log: %w", err)
	}

	return nil
}

// ListByCampaign retrieves archived attempts of a campaign, newest first
func (r *logArchiveRepository) ListByCampaign(ctx context.Context, campaignID string, limit int) ([]*models.MessageLog, error) {
	if limit <= 0 {
		limit = models.MaxLogEntries
	}

	query := `
		SELECT id, campaign_id, contact_id, contact_name, contact_phone, message, status, error, sent_at
		FROM message_logs
		WHERE campaign_id = $1
		ORDER BY sent_at DESC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, campaignID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list message logs: %w", err)
	}
	defer rows.Close()

	entries := []*models.MessageLog{}
	for rows.Next() {
		entry := &models.MessageLog{}
		var lastError *string
		err := rows.Scan(
			&entry.ID,
			&entry.CampaignID,
			&entry.ContactID,
			&entry.ContactName,
			&entry.ContactPhone,
			&entry.Message,
			&entry.Status,
			&lastError,
			&entry.SentAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan message log: %w", err)
		}
		if lastError != nil {
			entry.Error = *lastError
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate message logs: %w", err)
	}

	return entries, nil
}

// CountByCampaigns returns archived sent/failed counts keyed by campaign id
func (r *logArchiveRepository) CountByCampaigns(ctx context.Context, campaignIDs []string) (map[string]*CampaignLogStats, error) {
	stats := make(map[string]*CampaignLogStats, len(campaignIDs))
	if len(campaignIDs) == 0 {
		return stats, nil
	}

	query := `
		SELECT campaign_id, status, COUNT(*)
		FROM message_logs
		WHERE campaign_id = ANY($1)
		GROUP BY campaign_id, status
	`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(campaignIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to count message logs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var campaignID string
		var status models.LogStatus
		var count int
		if err := rows.Scan(&campaignID, &status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan message log count: %w", err)
		}
		s, ok := stats[campaignID]
		if !ok {
			s = &CampaignLogStats{}
			stats[campaignID] = s
		}
		switch status {
		case models.LogStatusFailed:
			s.Failed += count
		case models.LogStatusSent, models.LogStatusDelivered:
			s.Sent += count
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate message log counts: %w", err)
	}

	return stats, nil
}

// DeleteByCampaign removes every archived attempt of a campaign
func (r *logArchiveRepository) DeleteByCampaign(ctx context.Context, campaignID string) error {
	query := `DELETE FROM message_logs WHERE campaign_id = $1`

	if _, err := r.db.ExecContext(ctx, query, campaignID); err != nil {
		return fmt.Errorf("failed to delete message logs: %w", err)
	}

	return nil
}
