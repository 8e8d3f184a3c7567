package models

import (
	"time"
)

// CampaignStatus represents valid campaign statuses
type CampaignStatus string

const (
	CampaignStatusDraft     CampaignStatus = "draft"
	CampaignStatusScheduled CampaignStatus = "scheduled"
	CampaignStatusSending   CampaignStatus = "sending"
	CampaignStatusCompleted CampaignStatus = "completed"
	CampaignStatusFailed    CampaignStatus = "failed"
)

// Campaign represents a batch of template sends to an ordered recipient list
type Campaign struct {
	ID                string         `json:"id"`
	Name              string         `json:"name"`
	Status            CampaignStatus `json:"status"`
	Contacts          []string       `json:"contacts"`
	Template          string         `json:"template,omitempty"`
	TemplateVariables []string       `json:"templateVariables,omitempty"`
	Message           string         `json:"message"`
	SentCount         int            `json:"sentCount"`
	TotalCount        int            `json:"totalCount"`
	CreatedAt         time.Time      `json:"createdAt"`
}

// CampaignSummary is the outcome of one campaign run
type CampaignSummary struct {
	CampaignID string         `json:"campaignId"`
	Status     CampaignStatus `json:"status"`
	Succeeded  int            `json:"succeeded"`
	Failed     int            `json:"failed"`
	Skipped    int            `json:"skipped"`
	Cancelled  bool           `json:"cancelled"`
}

// CanStart checks if the campaign may enter the sending state
func (c *Campaign) CanStart() bool {
	return c.Status == CampaignStatusDraft || c.Status == CampaignStatusScheduled
}

// IsTerminal reports whether the campaign has finished
func (c *Campaign) IsTerminal() bool {
	return c.Status == CampaignStatusCompleted || c.Status == CampaignStatusFailed
}

// FinalStatus applies the terminal rule: failed only when every recipient failed.
func FinalStatus(failed, total int) CampaignStatus {
	if total > 0 && failed == total {
		return CampaignStatusFailed
	}
	return CampaignStatusCompleted
}
