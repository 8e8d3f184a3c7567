package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"wacms/internal/service"
)

// PreviewHandler handles HTTP requests for message preview functionality
type PreviewHandler struct {
	campaignService *service.CampaignService
}

// NewPreviewHandler creates a new PreviewHandler instance
func NewPreviewHandler(campaignService *service.CampaignService) *PreviewHandler {
	return &PreviewHandler{
		campaignService: campaignService,
	}
}

// Preview handles POST /api/campaigns/{id}/preview
// It shows how the campaign message renders for one contact
func (h *PreviewHandler) Preview(w http.ResponseWriter, r *http.Request) {
	var req service.PreviewMessageRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.ContactID == "" {
		WriteValidationError(w, "contactId is required")
		return
	}
	req.CampaignID = mux.Vars(r)["id"]

	result, err := h.campaignService.PreviewMessage(&req)
	if err != nil {
		HandleServiceError(w, err)
		return
	}

	WriteOK(w, result)
}
