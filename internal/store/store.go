// Package store holds the process-wide console state: contacts, templates,
// campaigns, message logs and settings. Every mutation goes through an
// action method and is followed by a snapshot save.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"wacms/internal/models"
)

// StorageKey is the key the snapshot is saved under
const StorageKey = "whatsapp-cms-data"

// Errors returned by BeginSending
var (
	ErrCampaignNotFound     = errors.New("campaign not found")
	ErrCampaignNotStartable = errors.New("campaign cannot be started")
)

// State is the serialized snapshot
type State struct {
	Contacts  []models.Contact         `json:"contacts"`
	Templates []models.MessageTemplate `json:"templates"`
	Campaigns []models.Campaign        `json:"campaigns"`
	Logs      []models.MessageLog      `json:"logs"`
	Settings  models.Settings          `json:"settings"`
}

// Store is the mutable state container
type Store struct {
	mu        sync.RWMutex
	state     State
	persister Persister
	log       *logrus.Entry
}

// New hydrates a store from the persister. Default templates are injected
// when the saved template list is empty.
func New(persister Persister) (*Store, error) {
	if persister == nil {
		return nil, errors.New("persister cannot be nil")
	}

	state := State{Settings: models.DefaultSettings()}
	data, err := persister.Load(StorageKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load state: %w", err)
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &state); err != nil {
			return nil, fmt.Errorf("failed to decode state: %w", err)
		}
	}
	if len(state.Templates) == 0 {
		state.Templates = DefaultTemplates()
	}

	return &Store{
		state:     state,
		persister: persister,
		log:       logrus.WithField("component", "store"),
	}, nil
}

// persist must be called with mu held
func (s *Store) persist() {
	data, err := json.Marshal(s.state)
	if err != nil {
		s.log.WithError(err).Error("Failed to encode state snapshot")
		return
	}
	if err := s.persister.Save(StorageKey, data); err != nil {
		s.log.WithError(err).Error("Failed to save state snapshot")
	}
}

// Contacts

// Contacts returns all contacts in insertion order
func (s *Store) Contacts() []models.Contact {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneContacts(s.state.Contacts)
}

// Contact looks up a contact by id
func (s *Store) Contact(id string) (models.Contact, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.state.Contacts {
		if c.ID == id {
			return cloneContact(c), true
		}
	}
	return models.Contact{}, false
}

// AddContacts appends contacts in one mutation
func (s *Store) AddContacts(contacts ...models.Contact) {
	if len(contacts) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range contacts {
		s.state.Contacts = append(s.state.Contacts, cloneContact(c))
	}
	s.persist()
}

// UpdateContact applies fn to the stored contact
func (s *Store) UpdateContact(id string, fn func(*models.Contact)) (models.Contact, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.state.Contacts {
		if s.state.Contacts[i].ID == id {
			fn(&s.state.Contacts[i])
			s.persist()
			return cloneContact(s.state.Contacts[i]), true
		}
	}
	return models.Contact{}, false
}

// RemoveContact deletes a contact. Campaigns keep the dangling id.
func (s *Store) RemoveContact(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, c := range s.state.Contacts {
		if c.ID == id {
			s.state.Contacts = append(s.state.Contacts[:i], s.state.Contacts[i+1:]...)
			s.persist()
			return true
		}
	}
	return false
}

// Templates

// Templates returns all local templates
func (s *Store) Templates() []models.MessageTemplate {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append(make([]models.MessageTemplate, 0, len(s.state.Templates)), s.state.Templates...)
}

// Template looks up a local template by id
func (s *Store) Template(id string) (models.MessageTemplate, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.state.Templates {
		if t.ID == id {
			return t, true
		}
	}
	return models.MessageTemplate{}, false
}

// AddTemplate appends a local template
func (s *Store) AddTemplate(t models.MessageTemplate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Templates = append(s.state.Templates, t)
	s.persist()
}

// UpdateTemplate applies fn to the stored template
func (s *Store) UpdateTemplate(id string, fn func(*models.MessageTemplate)) (models.MessageTemplate, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.state.Templates {
		if s.state.Templates[i].ID == id {
			fn(&s.state.Templates[i])
			s.persist()
			return s.state.Templates[i], true
		}
	}
	return models.MessageTemplate{}, false
}

// RemoveTemplate deletes a local template
func (s *Store) RemoveTemplate(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, t := range s.state.Templates {
		if t.ID == id {
			s.state.Templates = append(s.state.Templates[:i], s.state.Templates[i+1:]...)
			s.persist()
			return true
		}
	}
	return false
}

// Campaigns

// Campaigns returns all campaigns
func (s *Store) Campaigns() []models.Campaign {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneCampaigns(s.state.Campaigns)
}

// Campaign looks up a campaign by id
func (s *Store) Campaign(id string) (models.Campaign, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.campaignIndex(id); i >= 0 {
		return cloneCampaign(s.state.Campaigns[i]), true
	}
	return models.Campaign{}, false
}

// AddCampaign appends a campaign
func (s *Store) AddCampaign(c models.Campaign) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Campaigns = append(s.state.Campaigns, cloneCampaign(c))
	s.persist()
}

// RemoveCampaign deletes a campaign
func (s *Store) RemoveCampaign(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.campaignIndex(id)
	if i < 0 {
		return false
	}
	s.state.Campaigns = append(s.state.Campaigns[:i], s.state.Campaigns[i+1:]...)
	s.persist()
	return true
}

// BeginSending moves a startable campaign to sending. Only one caller can
// win the transition; later callers get ErrCampaignNotStartable.
func (s *Store) BeginSending(id string) (models.Campaign, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.campaignIndex(id)
	if i < 0 {
		return models.Campaign{}, ErrCampaignNotFound
	}
	c := &s.state.Campaigns[i]
	if !c.CanStart() {
		return cloneCampaign(*c), ErrCampaignNotStartable
	}
	c.Status = models.CampaignStatusSending
	s.persist()
	return cloneCampaign(*c), nil
}

// RecordAttempt appends the log entry and increments sentCount in one
// critical section.
func (s *Store) RecordAttempt(campaignID string, entry models.MessageLog) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appendLog(entry)
	if i := s.campaignIndex(campaignID); i >= 0 {
		c := &s.state.Campaigns[i]
		if c.SentCount < c.TotalCount {
			c.SentCount++
		}
	}
	s.persist()
}

// FinishCampaign sets the terminal status
func (s *Store) FinishCampaign(id string, status models.CampaignStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.campaignIndex(id); i >= 0 {
		s.state.Campaigns[i].Status = status
		s.persist()
	}
}

func (s *Store) campaignIndex(id string) int {
	for i, c := range s.state.Campaigns {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// Logs

// Logs returns the retained log entries, newest first
func (s *Store) Logs() []models.MessageLog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append(make([]models.MessageLog, 0, len(s.state.Logs)), s.state.Logs...)
}

// AppendLog records a log entry outside of a campaign run
func (s *Store) AppendLog(entry models.MessageLog) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appendLog(entry)
	s.persist()
}

// ClearLogs drops every log entry
func (s *Store) ClearLogs() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Logs = nil
	s.persist()
}

func (s *Store) appendLog(entry models.MessageLog) {
	logs := make([]models.MessageLog, 0, len(s.state.Logs)+1)
	logs = append(logs, entry)
	logs = append(logs, s.state.Logs...)
	if len(logs) > models.MaxLogEntries {
		logs = logs[:models.MaxLogEntries]
	}
	s.state.Logs = logs
}

// Settings

// Settings returns the current settings
func (s *Store) Settings() models.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Settings
}

// UpdateSettings applies fn to the settings
func (s *Store) UpdateSettings(fn func(*models.Settings)) models.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.state.Settings)
	s.persist()
	return s.state.Settings
}

// cloneStrings copies a slice, keeping empty slices non-nil so they encode as []
func cloneStrings(in []string) []string {
	return append(make([]string, 0, len(in)), in...)
}

func cloneContact(c models.Contact) models.Contact {
	c.Tags = cloneStrings(c.Tags)
	return c
}

func cloneContacts(in []models.Contact) []models.Contact {
	out := make([]models.Contact, len(in))
	for i, c := range in {
		out[i] = cloneContact(c)
	}
	return out
}

func cloneCampaign(c models.Campaign) models.Campaign {
	c.Contacts = cloneStrings(c.Contacts)
	c.TemplateVariables = cloneStrings(c.TemplateVariables)
	return c
}

func cloneCampaigns(in []models.Campaign) []models.Campaign {
	out := make([]models.Campaign, len(in))
	for i, c := range in {
		out[i] = cloneCampaign(c)
	}
	return out
}

// DefaultTemplates are injected into an empty template list
func DefaultTemplates() []models.MessageTemplate {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return []models.MessageTemplate{
		{
			ID:        "default-1",
			Name:      "Welcome Message",
			Content:   "Hello {{name}}! Welcome to our service. We're excited to have you!",
			CreatedAt: created,
		},
		{
			ID:        "default-2",
			Name:      "Promotion",
			Content:   "Hi {{name}}! 🎉 Don't miss our special offer this week. Use code SAVE20 for 20% off!",
			CreatedAt: created,
		},
	}
}
