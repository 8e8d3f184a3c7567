package handler

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"wacms/internal/service"
)

const maxImportBytes = 5 << 20

// ContactHandler handles HTTP requests for contacts
type ContactHandler struct {
	contactService *service.ContactService
}

// NewContactHandler creates a new contact handler
func NewContactHandler(contactService *service.ContactService) *ContactHandler {
	return &ContactHandler{
		contactService: contactService,
	}
}

// List handles GET /api/contacts?q=
func (h *ContactHandler) List(w http.ResponseWriter, r *http.Request) {
	contacts := h.contactService.ListContacts(r.URL.Query().Get("q"))
	WriteOK(w, map[string]interface{}{
		"contacts": contacts,
		"total":    len(contacts),
	})
}

// GetByID handles GET /api/contacts/{id}
func (h *ContactHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	contact, err := h.contactService.GetContact(mux.Vars(r)["id"])
	if err != nil {
		HandleServiceError(w, err)
		return
	}
	WriteOK(w, contact)
}

// Create handles POST /api/contacts
func (h *ContactHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.ContactRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	contact, err := h.contactService.AddContact(&req)
	if err != nil {
		HandleServiceError(w, err)
		return
	}
	WriteCreated(w, contact)
}

// Update handles PUT /api/contacts/{id}
func (h *ContactHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req service.ContactRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	contact, err := h.contactService.UpdateContact(mux.Vars(r)["id"], &req)
	if err != nil {
		HandleServiceError(w, err)
		return
	}
	WriteOK(w, contact)
}

// Delete handles DELETE /api/contacts/{id}
func (h *ContactHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.contactService.RemoveContact(mux.Vars(r)["id"]); err != nil {
		HandleServiceError(w, err)
		return
	}
	WriteNoContent(w)
}

// Import handles POST /api/contacts/import. The body is either raw CSV text
// or JSON {"csv": "..."}.
func (h *ContactHandler) Import(w http.ResponseWriter, r *http.Request) {
	var text string
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var req ImportContactsRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		text = req.CSV
	} else {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxImportBytes))
		if err != nil {
			WriteValidationError(w, "failed to read CSV body")
			return
		}
		text = string(body)
	}

	result, err := h.contactService.ImportCSV(text)
	if err != nil {
		HandleServiceError(w, err)
		return
	}
	WriteCreated(w, result)
}

// Export handles GET /api/contacts/export
func (h *ContactHandler) Export(w http.ResponseWriter, r *http.Request) {
	filename := fmt.Sprintf("contacts-%s.csv", time.Now().UTC().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, h.contactService.ExportCSV())
}

// ImportContactsRequest wraps CSV text in a JSON body
type ImportContactsRequest struct {
	CSV string `json:"csv"`
}
