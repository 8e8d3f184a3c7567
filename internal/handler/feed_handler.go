package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"wacms/internal/service"
)

// FeedHandler serves the conversation feed
type FeedHandler struct {
	feedService *service.FeedService
}

// NewFeedHandler creates a new feed handler
func NewFeedHandler(feedService *service.FeedService) *FeedHandler {
	return &FeedHandler{
		feedService: feedService,
	}
}

// Threads handles GET /api/feed/threads
func (h *FeedHandler) Threads(w http.ResponseWriter, r *http.Request) {
	WriteOK(w, map[string]interface{}{"threads": h.feedService.Threads()})
}

// Thread handles GET /api/feed/threads/{phone}
func (h *FeedHandler) Thread(w http.ResponseWriter, r *http.Request) {
	thread, err := h.feedService.Thread(mux.Vars(r)["phone"])
	if err != nil {
		HandleServiceError(w, err)
		return
	}
	WriteOK(w, thread)
}

// MarkRead handles POST /api/feed/threads/{phone}/read
func (h *FeedHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	updated, err := h.feedService.MarkAsRead(r.Context(), mux.Vars(r)["phone"])
	if err != nil {
		HandleServiceError(w, err)
		return
	}
	WriteOK(w, map[string]int{"updated": updated})
}
