package handler

import (
	"net/http"

	"wacms/internal/service"
)

// SettingsHandler reads and updates the console settings
type SettingsHandler struct {
	settingsService *service.SettingsService
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(settingsService *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{
		settingsService: settingsService,
	}
}

// Get handles GET /api/settings
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	WriteOK(w, h.settingsService.GetSettings())
}

// Update handles PUT /api/settings with a partial body
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req service.SettingsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	settings, err := h.settingsService.UpdateSettings(&req)
	if err != nil {
		HandleServiceError(w, err)
		return
	}
	WriteOK(w, settings)
}

// Validate handles POST /api/settings/validate
func (h *SettingsHandler) Validate(w http.ResponseWriter, r *http.Request) {
	WriteOK(w, map[string]bool{"valid": h.settingsService.ValidateCredentials(r.Context())})
}
