package webhook

import (
	"encoding/json"
	"fmt"
	"sync"

	"wacms/internal/store"
)

// DefaultVerifyToken is used until a token is configured
const DefaultVerifyToken = "whatsapp_webhook_verify_token"

// ServerConfig is the receiver's persisted configuration
type ServerConfig struct {
	WebhookVerifyToken string `json:"webhookVerifyToken"`
	PhoneNumberID      string `json:"phoneNumberId"`
	AccessToken        string `json:"accessToken"`
}

// DefaultServerConfig returns the configuration used when nothing is saved
func DefaultServerConfig() ServerConfig {
	return ServerConfig{WebhookVerifyToken: DefaultVerifyToken}
}

// ConfigUpdate carries the fields to overwrite; nil fields are kept
type ConfigUpdate struct {
	WebhookVerifyToken *string `json:"webhookVerifyToken"`
	PhoneNumberID      *string `json:"phoneNumberId"`
	AccessToken        *string `json:"accessToken"`
}

// ConfigStore holds the server configuration in one JSON file
type ConfigStore struct {
	persister store.Persister
	key       string

	mu     sync.RWMutex
	config ServerConfig
}

// NewConfigStore loads the saved configuration over the defaults
func NewConfigStore(persister store.Persister, key string) (*ConfigStore, error) {
	s := &ConfigStore{
		persister: persister,
		key:       key,
		config:    DefaultServerConfig(),
	}

	data, err := persister.Load(key)
	if err != nil {
		return nil, err
	}
	if data != nil {
		if err := json.Unmarshal(data, &s.config); err != nil {
			return nil, fmt.Errorf("failed to decode server config: %w", err)
		}
	}
	return s, nil
}

// Get returns the current configuration
func (s *ConfigStore) Get() ServerConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config
}

// VerifyToken returns the token the provider must echo during verification
func (s *ConfigStore) VerifyToken() string {
	return s.Get().WebhookVerifyToken
}

// Update merges the given fields and saves the result
func (s *ConfigStore) Update(update ConfigUpdate) (ServerConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.config
	if update.WebhookVerifyToken != nil {
		next.WebhookVerifyToken = *update.WebhookVerifyToken
	}
	if update.PhoneNumberID != nil {
		next.PhoneNumberID = *update.PhoneNumberID
	}
	if update.AccessToken != nil {
		next.AccessToken = *update.AccessToken
	}

	data, err := json.MarshalIndent(next, "", "  ")
	if err != nil {
		return s.config, fmt.Errorf("failed to encode server config: %w", err)
	}
	if err := s.persister.Save(s.key, data); err != nil {
		return s.config, err
	}
	s.config = next
	return next, nil
}
