package handler

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"wacms/internal/models"
	"wacms/internal/service"
)

// CampaignHandler handles HTTP requests for campaign operations
type CampaignHandler struct {
	campaignService *service.CampaignService
}

// NewCampaignHandler creates a new campaign handler
func NewCampaignHandler(campaignService *service.CampaignService) *CampaignHandler {
	return &CampaignHandler{
		campaignService: campaignService,
	}
}

// Create handles POST /api/campaigns - creates a draft campaign
func (h *CampaignHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.CreateCampaignRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	campaign, err := h.campaignService.CreateCampaign(&req)
	if err != nil {
		HandleServiceError(w, err)
		return
	}

	WriteCreated(w, campaign)
}

// List handles GET /api/campaigns - lists campaigns with filters
func (h *CampaignHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	// Parse pagination parameters
	page := 1
	if pageStr := query.Get("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
			page = p
		}
	}

	perPage := 20
	if perPageStr := query.Get("per_page"); perPageStr != "" {
		if pp, err := strconv.Atoi(perPageStr); err == nil && pp > 0 {
			perPage = pp
		}
	}
	if perPage > 100 {
		perPage = 100
	}

	filters := service.CampaignFilters{
		Page:     page,
		PageSize: perPage,
	}

	if statusStr := query.Get("status"); statusStr != "" {
		validStatuses := map[string]models.CampaignStatus{
			"draft":     models.CampaignStatusDraft,
			"scheduled": models.CampaignStatusScheduled,
			"sending":   models.CampaignStatusSending,
			"completed": models.CampaignStatusCompleted,
			"failed":    models.CampaignStatusFailed,
		}
		status, ok := validStatuses[statusStr]
		if !ok {
			WriteValidationError(w, "invalid status: must be one of draft, scheduled, sending, completed, failed")
			return
		}
		filters.Status = &status
	}

	campaigns, pagination := h.campaignService.ListCampaigns(filters)

	WriteOK(w, ListCampaignsResponse{
		Campaigns:  campaigns,
		Pagination: pagination,
	})
}

// GetByID handles GET /api/campaigns/{id}
func (h *CampaignHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	campaign, err := h.campaignService.GetCampaignWithStats(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		HandleServiceError(w, err)
		return
	}

	WriteOK(w, campaign)
}

// Delete handles DELETE /api/campaigns/{id}
func (h *CampaignHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.campaignService.DeleteCampaign(r.Context(), mux.Vars(r)["id"]); err != nil {
		HandleServiceError(w, err)
		return
	}

	WriteNoContent(w)
}

// Start handles POST /api/campaigns/{id}/start. The run continues in the
// background; with ?wait=true the request blocks until it finishes and
// returns the summary.
func (h *CampaignHandler) Start(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if wait, _ := strconv.ParseBool(r.URL.Query().Get("wait")); wait {
		summary, err := h.campaignService.StartCampaign(r.Context(), id)
		if err != nil {
			HandleServiceError(w, err)
			return
		}
		WriteOK(w, summary)
		return
	}

	campaign, err := h.campaignService.Launch(r.Context(), id)
	if err != nil {
		HandleServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusAccepted, service.CampaignWithStats{
		Campaign: campaign,
		Running:  true,
	})
}

// Cancel handles POST /api/campaigns/{id}/cancel
func (h *CampaignHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	if err := h.campaignService.CancelCampaign(mux.Vars(r)["id"]); err != nil {
		HandleServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusAccepted, map[string]bool{"cancelling": true})
}

// Summary handles GET /api/campaigns/{id}/summary - outcome of the last run
func (h *CampaignHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.campaignService.LastSummary(mux.Vars(r)["id"])
	if err != nil {
		HandleServiceError(w, err)
		return
	}

	WriteOK(w, summary)
}

// History handles GET /api/campaigns/{id}/history - archived attempts
func (h *CampaignHandler) History(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		l, err := strconv.Atoi(limitStr)
		if err != nil || l <= 0 {
			WriteValidationError(w, "limit must be a positive integer")
			return
		}
		limit = l
	}

	entries, err := h.campaignService.CampaignHistory(r.Context(), mux.Vars(r)["id"], limit)
	if err != nil {
		HandleServiceError(w, err)
		return
	}

	WriteOK(w, map[string]interface{}{"logs": entries})
}

// Request/Response types

// ListCampaignsResponse represents the response for listing campaigns
type ListCampaignsResponse struct {
	Campaigns  []models.Campaign       `json:"campaigns"`
	Pagination *service.PaginationInfo `json:"pagination"`
}
