package models

import (
	"strings"
	"time"
)

// LogStatus represents valid message log statuses
type LogStatus string

const (
	LogStatusPending   LogStatus = "pending"
	LogStatusSent      LogStatus = "sent"
	LogStatusDelivered LogStatus = "delivered"
	LogStatusFailed    LogStatus = "failed"
)

// MaxLogEntries is the number of log entries retained, newest first
const MaxLogEntries = 500

// MessageLog records one send attempt
type MessageLog struct {
	ID           string    `json:"id"`
	CampaignID   string    `json:"campaignId,omitempty"`
	ContactID    string    `json:"contactId"`
	ContactName  string    `json:"contactName"`
	ContactPhone string    `json:"contactPhone"`
	Message      string    `json:"message"`
	Status       LogStatus `json:"status"`
	SentAt       time.Time `json:"sentAt"`
	Error        string    `json:"error,omitempty"`
}

// Matches implements the log search: name and message ignore case, phone is a substring match
func (l *MessageLog) Matches(search string) bool {
	if search == "" {
		return true
	}
	q := strings.ToLower(search)
	return strings.Contains(strings.ToLower(l.ContactName), q) ||
		strings.Contains(l.ContactPhone, search) ||
		strings.Contains(strings.ToLower(l.Message), q)
}

// IsDelivered counts toward "messages sent" on the dashboard
func (l *MessageLog) IsDelivered() bool {
	return l.Status == LogStatusSent || l.Status == LogStatusDelivered
}
