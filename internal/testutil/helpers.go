// Package testutil holds fixtures, HTTP helpers and mocks shared by package tests.
package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"wacms/internal/models"
)

// NewMockDB creates a mock database for testing
func NewMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create mock DB: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

// NewJSONRequest creates an HTTP request with JSON body
func NewJSONRequest(t *testing.T, method, url string, body interface{}) *http.Request {
	t.Helper()
	var bodyReader io.Reader
	if body != nil {
		jsonBytes, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal JSON: %v", err)
		}
		bodyReader = bytes.NewReader(jsonBytes)
	}

	req := httptest.NewRequest(method, url, bodyReader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

// ParseJSONResponse parses JSON response body
func ParseJSONResponse(t *testing.T, resp *httptest.ResponseRecorder, target interface{}) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}

// AssertStatusCode checks HTTP response status code
func AssertStatusCode(t *testing.T, resp *httptest.ResponseRecorder, want int) {
	t.Helper()
	if resp.Code != want {
		t.Errorf("Expected status code %d but got %d (body: %s)", want, resp.Code, resp.Body.String())
	}
}

// AssertJSONContentType checks Content-Type header
func AssertJSONContentType(t *testing.T, resp *httptest.ResponseRecorder) {
	t.Helper()
	contentType := resp.Header().Get("Content-Type")
	if contentType != "application/json" {
		t.Errorf("Expected Content-Type application/json but got %s", contentType)
	}
}

// NewTestContact creates a test contact with all fields populated
func NewTestContact() models.Contact {
	return models.Contact{
		ID:        "contact-1",
		Name:      "Ann Lee",
		Phone:     "+15551234567",
		Tags:      []string{"vip"},
		CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// NewTestContacts creates multiple test contacts with ids contact-1..contact-n
func NewTestContacts(count int) []models.Contact {
	contacts := make([]models.Contact, count)
	for i := 0; i < count; i++ {
		contacts[i] = models.Contact{
			ID:        fmt.Sprintf("contact-%d", i+1),
			Name:      fmt.Sprintf("Contact %d", i+1),
			Phone:     fmt.Sprintf("+1555000%04d", i+1),
			Tags:      []string{},
			CreatedAt: time.Date(2024, 1, 1, 0, 0, i, 0, time.UTC),
		}
	}
	return contacts
}

// NewTestCampaign creates a draft campaign addressed to the given contacts
func NewTestCampaign(contactIDs ...string) models.Campaign {
	return models.Campaign{
		ID:                "campaign-1",
		Name:              "Spring Sale",
		Status:            models.CampaignStatusDraft,
		Contacts:          contactIDs,
		Template:          "tpl-1",
		TemplateVariables: []string{},
		Message:           "Hi {{1}}, your number is {{2}}",
		TotalCount:        len(contactIDs),
		CreatedAt:         time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
	}
}

// NewTestCampaignWithStatus creates a campaign with specific status
func NewTestCampaignWithStatus(status models.CampaignStatus, contactIDs ...string) models.Campaign {
	c := NewTestCampaign(contactIDs...)
	c.Status = status
	return c
}

// NewTestProviderTemplate creates an approved provider template with a two-parameter body
func NewTestProviderTemplate() models.ProviderTemplate {
	return models.ProviderTemplate{
		ID:       "tpl-1",
		Name:     "spring_sale",
		Status:   models.TemplateStatusApproved,
		Category: "MARKETING",
		Language: "en_US",
		Components: []models.TemplateComponent{
			{Type: models.ComponentHeader, Format: "TEXT", Text: "Sale"},
			{Type: models.ComponentBody, Text: "Hi {{1}}, your number is {{2}}"},
		},
	}
}

// NewTestSettings returns default settings with send and catalog credentials filled in
func NewTestSettings() models.Settings {
	s := models.DefaultSettings()
	s.PhoneNumberID = "1234567890"
	s.BusinessAccountID = "waba-1"
	s.AccessToken = "test-token"
	return s
}

// NewTestLog creates a sent log entry
func NewTestLog(id string) models.MessageLog {
	return models.MessageLog{
		ID:           id,
		CampaignID:   "campaign-1",
		ContactID:    "contact-1",
		ContactName:  "Ann Lee",
		ContactPhone: "+15551234567",
		Message:      "Hello Ann",
		Status:       models.LogStatusSent,
		SentAt:       time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC),
	}
}

// NewTestFeedMessage creates an unread incoming feed message
func NewTestFeedMessage(id, phone string, createdAt time.Time) models.FeedMessage {
	return models.FeedMessage{
		ID:          id,
		CreatedAt:   createdAt,
		PhoneNumber: phone,
		Content:     "hello " + id,
		Direction:   models.DirectionIncoming,
		Status:      models.FeedStatusUnread,
	}
}
