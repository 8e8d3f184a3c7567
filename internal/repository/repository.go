package repository

import (
	"context"
	"database/sql"

	"wacms/internal/models"
)

// LogArchiveRepository defines message log archive operations
type LogArchiveRepository interface {
	Archive(ctx context.Context, entry *models.MessageLog) error
	ListByCampaign(ctx context.Context, campaignID string, limit int) ([]*models.MessageLog, error)
	CountByCampaigns(ctx context.Context, campaignIDs []string) (map[string]*CampaignLogStats, error)
	DeleteByCampaign(ctx context.Context, campaignID string) error
}

// CampaignLogStats holds archived attempt counts of one campaign
type CampaignLogStats struct {
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}

// Total returns the number of archived attempts
func (s *CampaignLogStats) Total() int {
	return s.Sent + s.Failed
}

// FeedMessageRepository defines conversation feed message operations
type FeedMessageRepository interface {
	List(ctx context.Context) ([]*models.FeedMessage, error)
	Upsert(ctx context.Context, msg *models.FeedMessage) (bool, error)
	MarkPhoneRead(ctx context.Context, phoneNumber string) ([]*models.FeedMessage, error)
}

// DB is a wrapper around *sql.DB to allow passing in transaction
type DB interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}
