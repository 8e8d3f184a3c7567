package models

import "time"

// Delay bounds in seconds
const (
	MinDelaySeconds = 1
	MaxDelaySeconds = 60
)

// Settings holds business, pacing and provider credential settings
type Settings struct {
	BusinessName         string `json:"businessName"`
	DefaultCountryCode   string `json:"defaultCountryCode"`
	DelayBetweenMessages int    `json:"delayBetweenMessages"`
	MaxMessagesPerDay    int    `json:"maxMessagesPerDay"`
	PhoneNumberID        string `json:"phoneNumberId"`
	BusinessAccountID    string `json:"businessAccountId"`
	AccessToken          string `json:"accessToken"`
	APIVersion           string `json:"apiVersion"`
	WebhookURL           string `json:"webhookUrl"`
	WebhookVerifyToken   string `json:"webhookVerifyToken"`
	Language             string `json:"language"`
}

// DefaultSettings returns the settings used before anything is saved
func DefaultSettings() Settings {
	return Settings{
		BusinessName:         "My Business",
		DefaultCountryCode:   "+1",
		DelayBetweenMessages: 3,
		MaxMessagesPerDay:    100,
		APIVersion:           "v18.0",
		WebhookVerifyToken:   "whatsapp_webhook_verify_token",
		Language:             "en",
	}
}

// Delay returns the pause between messages, clamped to 1-60 seconds
func (s Settings) Delay() time.Duration {
	seconds := s.DelayBetweenMessages
	if seconds < MinDelaySeconds {
		seconds = MinDelaySeconds
	}
	if seconds > MaxDelaySeconds {
		seconds = MaxDelaySeconds
	}
	return time.Duration(seconds) * time.Second
}

// HasSendCredentials reports whether template messages can be sent
func (s Settings) HasSendCredentials() bool {
	return s.PhoneNumberID != "" && s.AccessToken != ""
}

// HasCatalogCredentials reports whether the template catalog can be fetched
func (s Settings) HasCatalogCredentials() bool {
	return s.BusinessAccountID != "" && s.AccessToken != ""
}
