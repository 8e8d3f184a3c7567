package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"wacms/internal/metrics"
	"wacms/internal/models"
	"wacms/internal/phone"
)

// SettingsSource supplies the current settings; credentials are read on every call
type SettingsSource interface {
	Settings() models.Settings
}

// GatewayService is the WhatsApp Cloud API client
type GatewayService struct {
	client   *http.Client
	baseURL  string
	settings SettingsSource
}

// NewGatewayService creates a new gateway service.
// baseURL is the Graph API root, e.g. https://graph.facebook.com
func NewGatewayService(client *http.Client, baseURL string, settings SettingsSource) *GatewayService {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &GatewayService{
		client:   client,
		baseURL:  strings.TrimRight(baseURL, "/"),
		settings: settings,
	}
}

// TemplateMessage describes one template send
type TemplateMessage struct {
	Phone        string
	TemplateName string
	LanguageCode string
	Variables    []string
}

// SendResult represents the result of a send attempt
type SendResult struct {
	MessageID string
	WaID      string
	Latency   time.Duration
}

// ListTemplates fetches the full template catalog (any status)
func (g *GatewayService) ListTemplates(ctx context.Context) ([]models.ProviderTemplate, error) {
	settings := g.settings.Settings()
	if !settings.HasCatalogCredentials() {
		return nil, &ConfigurationError{Message: "WhatsApp Business API credentials are not configured"}
	}

	url := fmt.Sprintf("%s/%s/%s/message_templates?limit=100", g.baseURL, settings.APIVersion, settings.BusinessAccountID)

	var resp templatesResponse
	if _, err := g.do(ctx, "list_templates", http.MethodGet, url, settings.AccessToken, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		return []models.ProviderTemplate{}, nil
	}
	return resp.Data, nil
}

// SendTemplate sends one template message. Variables become BODY parameters;
// the components list is omitted when there are none.
func (g *GatewayService) SendTemplate(ctx context.Context, msg TemplateMessage) (*SendResult, error) {
	settings := g.settings.Settings()
	if !settings.HasSendCredentials() {
		return nil, &ConfigurationError{Message: "WhatsApp Business API credentials are not configured"}
	}

	payload := templateMessageRequest{
		MessagingProduct: "whatsapp",
		To:               phone.Wire(phone.ForDispatch(msg.Phone, settings.DefaultCountryCode)),
		Type:             "template",
		Template: templatePayload{
			Name:     msg.TemplateName,
			Language: languagePayload{Code: msg.LanguageCode},
		},
	}
	if len(msg.Variables) > 0 {
		params := make([]parameterPayload, len(msg.Variables))
		for i, v := range msg.Variables {
			params[i] = parameterPayload{Type: "text", Text: v}
		}
		payload.Template.Components = []componentPayload{{Type: "body", Parameters: params}}
	}

	url := fmt.Sprintf("%s/%s/%s/messages", g.baseURL, settings.APIVersion, settings.PhoneNumberID)

	var resp messageResponse
	latency, err := g.do(ctx, "send_template", http.MethodPost, url, settings.AccessToken, payload, &resp)
	if err != nil {
		return nil, err
	}

	result := &SendResult{Latency: latency}
	if len(resp.Messages) > 0 {
		result.MessageID = resp.Messages[0].ID
	}
	if len(resp.Contacts) > 0 {
		result.WaID = resp.Contacts[0].WaID
	}
	return result, nil
}

// ValidateCredentials checks that the phone number resource is reachable.
// Every failure is reported as false.
func (g *GatewayService) ValidateCredentials(ctx context.Context) bool {
	settings := g.settings.Settings()
	if !settings.HasSendCredentials() {
		return false
	}

	url := fmt.Sprintf("%s/%s/%s", g.baseURL, settings.APIVersion, settings.PhoneNumberID)
	_, err := g.do(ctx, "validate_credentials", http.MethodGet, url, settings.AccessToken, nil, nil)
	return err == nil
}

// do performs the request and maps failures onto ProviderError / NetworkError
func (g *GatewayService) do(ctx context.Context, operation, method, url, token string, body, out interface{}) (time.Duration, error) {
	start := time.Now()
	outcome := "error"
	defer func() {
		metrics.ProviderRequestDuration.WithLabelValues(operation, outcome).Observe(time.Since(start).Seconds())
	}()

	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return 0, &NetworkError{Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return 0, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, &NetworkError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		outcome = "provider_error"
		return 0, decodeProviderError(resp.StatusCode, respBody)
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return 0, &NetworkError{Err: fmt.Errorf("invalid response body: %w", err)}
		}
	}

	outcome = "ok"
	return time.Since(start), nil
}

func decodeProviderError(status int, body []byte) *ProviderError {
	var envelope errorResponse
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		return &ProviderError{
			Message:    envelope.Error.Message,
			Code:       envelope.Error.Code,
			Type:       envelope.Error.Type,
			StatusCode: status,
		}
	}
	return &ProviderError{
		Message:    fmt.Sprintf("provider returned status %d", status),
		Code:       status,
		StatusCode: status,
	}
}
