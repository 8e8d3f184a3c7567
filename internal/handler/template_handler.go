package handler

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"wacms/internal/models"
	"wacms/internal/service"
)

// TemplateHandler handles local templates and the provider catalog
type TemplateHandler struct {
	templateService *service.TemplateService
}

// NewTemplateHandler creates a new template handler
func NewTemplateHandler(templateService *service.TemplateService) *TemplateHandler {
	return &TemplateHandler{
		templateService: templateService,
	}
}

// List handles GET /api/templates
func (h *TemplateHandler) List(w http.ResponseWriter, r *http.Request) {
	WriteOK(w, map[string]interface{}{"templates": h.templateService.ListTemplates()})
}

// GetByID handles GET /api/templates/{id}
func (h *TemplateHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	template, err := h.templateService.GetTemplate(mux.Vars(r)["id"])
	if err != nil {
		HandleServiceError(w, err)
		return
	}
	WriteOK(w, template)
}

// Create handles POST /api/templates
func (h *TemplateHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.TemplateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	template, err := h.templateService.CreateTemplate(&req)
	if err != nil {
		HandleServiceError(w, err)
		return
	}
	WriteCreated(w, template)
}

// Update handles PUT /api/templates/{id}
func (h *TemplateHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req service.TemplateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	template, err := h.templateService.UpdateTemplate(mux.Vars(r)["id"], &req)
	if err != nil {
		HandleServiceError(w, err)
		return
	}
	WriteOK(w, template)
}

// Delete handles DELETE /api/templates/{id}
func (h *TemplateHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.templateService.DeleteTemplate(mux.Vars(r)["id"]); err != nil {
		HandleServiceError(w, err)
		return
	}
	WriteNoContent(w)
}

// ProviderCatalog handles GET /api/provider-templates - the last fetched catalog
func (h *TemplateHandler) ProviderCatalog(w http.ResponseWriter, r *http.Request) {
	templates, syncedAt := h.templateService.ProviderTemplates()
	WriteOK(w, newCatalogResponse(templates, syncedAt))
}

// Sync handles POST /api/provider-templates/sync
func (h *TemplateHandler) Sync(w http.ResponseWriter, r *http.Request) {
	if _, err := h.templateService.SyncProviderTemplates(r.Context()); err != nil {
		HandleServiceError(w, err)
		return
	}
	templates, syncedAt := h.templateService.ProviderTemplates()
	WriteOK(w, newCatalogResponse(templates, syncedAt))
}

// Approved handles GET /api/provider-templates/approved
func (h *TemplateHandler) Approved(w http.ResponseWriter, r *http.Request) {
	approved := h.templateService.ApprovedTemplates()
	out := make([]ApprovedTemplate, len(approved))
	for i, t := range approved {
		body, _ := t.BodyText()
		out[i] = ApprovedTemplate{
			ProviderTemplate: t,
			Body:             body,
			ParameterCount:   service.ParameterCount(body),
		}
	}
	WriteOK(w, map[string]interface{}{"templates": out})
}

// Mirror handles POST /api/provider-templates/{id}/mirror
func (h *TemplateHandler) Mirror(w http.ResponseWriter, r *http.Request) {
	template, err := h.templateService.MirrorProviderTemplate(mux.Vars(r)["id"])
	if err != nil {
		HandleServiceError(w, err)
		return
	}
	WriteCreated(w, template)
}

// CatalogResponse is the provider catalog with its fetch time
type CatalogResponse struct {
	Templates []models.ProviderTemplate `json:"templates"`
	SyncedAt  *time.Time                `json:"syncedAt"`
}

func newCatalogResponse(templates []models.ProviderTemplate, syncedAt time.Time) CatalogResponse {
	resp := CatalogResponse{Templates: templates}
	if resp.Templates == nil {
		resp.Templates = []models.ProviderTemplate{}
	}
	if !syncedAt.IsZero() {
		resp.SyncedAt = &syncedAt
	}
	return resp
}

// ApprovedTemplate is a sendable template with its body and parameter count
type ApprovedTemplate struct {
	models.ProviderTemplate
	Body           string `json:"body"`
	ParameterCount int    `json:"parameterCount"`
}
