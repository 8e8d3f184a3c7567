package service

import "wacms/internal/models"

// Wire structures of the WhatsApp Cloud API

type templateMessageRequest struct {
	MessagingProduct string          `json:"messaging_product"`
	To               string          `json:"to"`
	Type             string          `json:"type"`
	Template         templatePayload `json:"template"`
}

type templatePayload struct {
	Name       string             `json:"name"`
	Language   languagePayload    `json:"language"`
	Components []componentPayload `json:"components,omitempty"`
}

type languagePayload struct {
	Code string `json:"code"`
}

type componentPayload struct {
	Type       string             `json:"type"`
	Parameters []parameterPayload `json:"parameters"`
}

type parameterPayload struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type messageResponse struct {
	MessagingProduct string `json:"messaging_product"`
	Contacts         []struct {
		Input string `json:"input"`
		WaID  string `json:"wa_id"`
	} `json:"contacts"`
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

type templatesResponse struct {
	Data []models.ProviderTemplate `json:"data"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
	} `json:"error"`
}
