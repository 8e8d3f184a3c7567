package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wacms/internal/models"
	"wacms/internal/service"
	"wacms/internal/store"
)

type stubValidator struct {
	valid bool
	calls int
}

func (s *stubValidator) ValidateCredentials(ctx context.Context) bool {
	s.calls++
	return s.valid
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func TestSettingsService_UpdateMergesFields(t *testing.T) {
	// Setup
	st, err := store.New(store.NewMemoryPersister())
	require.NoError(t, err)
	svc := service.NewSettingsService(st, &stubValidator{})

	// Execute
	updated, err := svc.UpdateSettings(&service.SettingsRequest{
		BusinessName:         strPtr(" Acme "),
		DelayBetweenMessages: intPtr(10),
		PhoneNumberID:        strPtr("123"),
		AccessToken:          strPtr("tok"),
	})

	// Verify
	require.NoError(t, err)
	assert.Equal(t, "Acme", updated.BusinessName)
	assert.Equal(t, 10, updated.DelayBetweenMessages)
	assert.Equal(t, "+1", updated.DefaultCountryCode)
	assert.Equal(t, "v18.0", updated.APIVersion)
	assert.True(t, updated.HasSendCredentials())
	assert.Equal(t, updated, svc.GetSettings())
}

func TestSettingsService_UpdateValidation(t *testing.T) {
	testCases := []struct {
		name    string
		request service.SettingsRequest
	}{
		{name: "delay below range", request: service.SettingsRequest{DelayBetweenMessages: intPtr(0)}},
		{name: "delay above range", request: service.SettingsRequest{DelayBetweenMessages: intPtr(61)}},
		{name: "max per day zero", request: service.SettingsRequest{MaxMessagesPerDay: intPtr(0)}},
		{name: "country code without plus", request: service.SettingsRequest{DefaultCountryCode: strPtr("44")}},
		{name: "blank business name", request: service.SettingsRequest{BusinessName: strPtr("  ")}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			st, err := store.New(store.NewMemoryPersister())
			require.NoError(t, err)
			svc := service.NewSettingsService(st, &stubValidator{})

			_, err = svc.UpdateSettings(&tc.request)

			var validationErr *service.ValidationError
			assert.ErrorAs(t, err, &validationErr)
			assert.Equal(t, models.DefaultSettings(), st.Settings())
		})
	}
}

func TestSettingsService_ValidateCredentials(t *testing.T) {
	st, err := store.New(store.NewMemoryPersister())
	require.NoError(t, err)
	validator := &stubValidator{valid: true}
	svc := service.NewSettingsService(st, validator)

	assert.True(t, svc.ValidateCredentials(context.Background()))
	assert.Equal(t, 1, validator.calls)
}
