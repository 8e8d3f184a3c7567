package service

import (
	"wacms/internal/models"
)

// RecentActivityLimit is the number of log entries shown on the dashboard
const RecentActivityLimit = 5

// LogStore is the part of the state container the logs page and dashboard read
type LogStore interface {
	Logs() []models.MessageLog
	ClearLogs()
	Contacts() []models.Contact
	Campaigns() []models.Campaign
}

// LogService handles message log queries and dashboard counters
type LogService struct {
	store LogStore
}

// NewLogService creates a new log service
func NewLogService(store LogStore) *LogService {
	return &LogService{store: store}
}

// LogFilter narrows a log query. An empty or "all" status keeps every status.
type LogFilter struct {
	Search string
	Status string
}

// Query returns matching log entries, newest first
func (s *LogService) Query(filter LogFilter) ([]models.MessageLog, error) {
	if err := validateLogStatus(filter.Status); err != nil {
		return nil, err
	}

	out := []models.MessageLog{}
	for _, l := range s.store.Logs() {
		if !l.Matches(filter.Search) {
			continue
		}
		if filter.Status != "" && filter.Status != "all" && string(l.Status) != filter.Status {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

// ClearLogs drops every log entry
func (s *LogService) ClearLogs() {
	s.store.ClearLogs()
}

// DashboardStats are the dashboard counters
type DashboardStats struct {
	TotalContacts   int                 `json:"totalContacts"`
	TotalCampaigns  int                 `json:"totalCampaigns"`
	MessagesSent    int                 `json:"messagesSent"`
	PendingMessages int                 `json:"pendingMessages"`
	RecentActivity  []models.MessageLog `json:"recentActivity"`
}

// DashboardStats computes the dashboard counters from the current state
func (s *LogService) DashboardStats() *DashboardStats {
	logs := s.store.Logs()
	stats := &DashboardStats{
		TotalContacts:  len(s.store.Contacts()),
		TotalCampaigns: len(s.store.Campaigns()),
		RecentActivity: []models.MessageLog{},
	}
	for i, l := range logs {
		if l.IsDelivered() {
			stats.MessagesSent++
		}
		if l.Status == models.LogStatusPending {
			stats.PendingMessages++
		}
		if i < RecentActivityLimit {
			stats.RecentActivity = append(stats.RecentActivity, l)
		}
	}
	return stats
}

func validateLogStatus(status string) error {
	switch models.LogStatus(status) {
	case "", "all", models.LogStatusPending, models.LogStatusSent, models.LogStatusDelivered, models.LogStatusFailed:
		return nil
	}
	return &ValidationError{Message: "invalid status: must be all, pending, sent, delivered or failed"}
}
