package service

import (
	"context"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/sirupsen/logrus"

	"wacms/internal/models"
)

var countryCodePattern = regexp.MustCompile(`^\+\d{1,4}$`)

// SettingsStore is the part of the state container holding settings
type SettingsStore interface {
	SettingsSource
	UpdateSettings(fn func(*models.Settings)) models.Settings
}

// CredentialValidator checks provider credentials
type CredentialValidator interface {
	ValidateCredentials(ctx context.Context) bool
}

// SettingsService handles settings reads, partial updates and credential checks
type SettingsService struct {
	store     SettingsStore
	validator CredentialValidator
}

// NewSettingsService creates a new settings service
func NewSettingsService(store SettingsStore, validator CredentialValidator) *SettingsService {
	return &SettingsService{store: store, validator: validator}
}

// GetSettings returns the current settings
func (s *SettingsService) GetSettings() models.Settings {
	return s.store.Settings()
}

// UpdateSettings merges the provided fields into the current settings
func (s *SettingsService) UpdateSettings(req *SettingsRequest) (models.Settings, error) {
	req.normalize()
	if err := req.Validate(); err != nil {
		return models.Settings{}, &ValidationError{Message: err.Error()}
	}

	updated := s.store.UpdateSettings(req.apply)

	logrus.WithFields(logrus.Fields{
		"send_credentials":    updated.HasSendCredentials(),
		"catalog_credentials": updated.HasCatalogCredentials(),
	}).Info("Settings: updated")

	return updated, nil
}

// ValidateCredentials reports whether the stored credentials reach the provider
func (s *SettingsService) ValidateCredentials(ctx context.Context) bool {
	return s.validator.ValidateCredentials(ctx)
}

// SettingsRequest is a partial settings update; nil fields are left unchanged
type SettingsRequest struct {
	BusinessName         *string `json:"businessName,omitempty"`
	DefaultCountryCode   *string `json:"defaultCountryCode,omitempty"`
	DelayBetweenMessages *int    `json:"delayBetweenMessages,omitempty"`
	MaxMessagesPerDay    *int    `json:"maxMessagesPerDay,omitempty"`
	PhoneNumberID        *string `json:"phoneNumberId,omitempty"`
	BusinessAccountID    *string `json:"businessAccountId,omitempty"`
	AccessToken          *string `json:"accessToken,omitempty"`
	APIVersion           *string `json:"apiVersion,omitempty"`
	WebhookURL           *string `json:"webhookUrl,omitempty"`
	WebhookVerifyToken   *string `json:"webhookVerifyToken,omitempty"`
	Language             *string `json:"language,omitempty"`
}

func (r *SettingsRequest) normalize() {
	for _, field := range []*string{
		r.BusinessName, r.DefaultCountryCode, r.PhoneNumberID, r.BusinessAccountID,
		r.AccessToken, r.APIVersion, r.WebhookURL, r.WebhookVerifyToken, r.Language,
	} {
		if field != nil {
			*field = strings.TrimSpace(*field)
		}
	}
}

// Validate validates the settings request
func (r SettingsRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.BusinessName, validation.NilOrNotEmpty, validation.RuneLength(1, 100)),
		validation.Field(&r.DefaultCountryCode, validation.NilOrNotEmpty,
			validation.Match(countryCodePattern).Error("must start with + followed by 1-4 digits")),
		validation.Field(&r.DelayBetweenMessages, validation.NilOrNotEmpty,
			validation.Min(models.MinDelaySeconds), validation.Max(models.MaxDelaySeconds)),
		validation.Field(&r.MaxMessagesPerDay, validation.NilOrNotEmpty, validation.Min(1)),
		validation.Field(&r.APIVersion, validation.NilOrNotEmpty),
	)
}

func (r *SettingsRequest) apply(s *models.Settings) {
	if r.BusinessName != nil {
		s.BusinessName = *r.BusinessName
	}
	if r.DefaultCountryCode != nil {
		s.DefaultCountryCode = *r.DefaultCountryCode
	}
	if r.DelayBetweenMessages != nil {
		s.DelayBetweenMessages = *r.DelayBetweenMessages
	}
	if r.MaxMessagesPerDay != nil {
		s.MaxMessagesPerDay = *r.MaxMessagesPerDay
	}
	if r.PhoneNumberID != nil {
		s.PhoneNumberID = *r.PhoneNumberID
	}
	if r.BusinessAccountID != nil {
		s.BusinessAccountID = *r.BusinessAccountID
	}
	if r.AccessToken != nil {
		s.AccessToken = *r.AccessToken
	}
	if r.APIVersion != nil {
		s.APIVersion = *r.APIVersion
	}
	if r.WebhookURL != nil {
		s.WebhookURL = *r.WebhookURL
	}
	if r.WebhookVerifyToken != nil {
		s.WebhookVerifyToken = *r.WebhookVerifyToken
	}
	if r.Language != nil {
		s.Language = *r.Language
	}
}
