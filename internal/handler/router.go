package handler

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"wacms/internal/middleware"
)

// APIHandlers groups the handlers of the console API.
// Feed and WebSocket are nil when the conversation feed is disabled.
type APIHandlers struct {
	Contacts  *ContactHandler
	Templates *TemplateHandler
	Campaigns *CampaignHandler
	Preview   *PreviewHandler
	Logs      *LogHandler
	Settings  *SettingsHandler
	Feed      *FeedHandler
	Health    *HealthHandler
	WebSocket http.HandlerFunc
}

// withMiddleware wraps the router so preflight requests are answered
// before route matching
func withMiddleware(router *mux.Router) http.Handler {
	return middleware.Recovery(middleware.Logging(middleware.CORS(router)))
}

// NewAPIRouter wires the console API routes
func NewAPIRouter(h APIHandlers) http.Handler {
	router := mux.NewRouter()

	router.HandleFunc("/health", h.Health.HandleHealth).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()

	// Contacts
	api.HandleFunc("/contacts", h.Contacts.List).Methods(http.MethodGet)
	api.HandleFunc("/contacts", h.Contacts.Create).Methods(http.MethodPost)
	api.HandleFunc("/contacts/import", h.Contacts.Import).Methods(http.MethodPost)
	api.HandleFunc("/contacts/export", h.Contacts.Export).Methods(http.MethodGet)
	api.HandleFunc("/contacts/{id}", h.Contacts.GetByID).Methods(http.MethodGet)
	api.HandleFunc("/contacts/{id}", h.Contacts.Update).Methods(http.MethodPut)
	api.HandleFunc("/contacts/{id}", h.Contacts.Delete).Methods(http.MethodDelete)

	// Local templates
	api.HandleFunc("/templates", h.Templates.List).Methods(http.MethodGet)
	api.HandleFunc("/templates", h.Templates.Create).Methods(http.MethodPost)
	api.HandleFunc("/templates/{id}", h.Templates.GetByID).Methods(http.MethodGet)
	api.HandleFunc("/templates/{id}", h.Templates.Update).Methods(http.MethodPut)
	api.HandleFunc("/templates/{id}", h.Templates.Delete).Methods(http.MethodDelete)

	// Provider catalog
	api.HandleFunc("/provider-templates", h.Templates.ProviderCatalog).Methods(http.MethodGet)
	api.HandleFunc("/provider-templates/sync", h.Templates.Sync).Methods(http.MethodPost)
	api.HandleFunc("/provider-templates/approved", h.Templates.Approved).Methods(http.MethodGet)
	api.HandleFunc("/provider-templates/{id}/mirror", h.Templates.Mirror).Methods(http.MethodPost)

	// Campaigns
	api.HandleFunc("/campaigns", h.Campaigns.List).Methods(http.MethodGet)
	api.HandleFunc("/campaigns", h.Campaigns.Create).Methods(http.MethodPost)
	api.HandleFunc("/campaigns/{id}", h.Campaigns.GetByID).Methods(http.MethodGet)
	api.HandleFunc("/campaigns/{id}", h.Campaigns.Delete).Methods(http.MethodDelete)
	api.HandleFunc("/campaigns/{id}/start", h.Campaigns.Start).Methods(http.MethodPost)
	api.HandleFunc("/campaigns/{id}/cancel", h.Campaigns.Cancel).Methods(http.MethodPost)
	api.HandleFunc("/campaigns/{id}/summary", h.Campaigns.Summary).Methods(http.MethodGet)
	api.HandleFunc("/campaigns/{id}/history", h.Campaigns.History).Methods(http.MethodGet)
	api.HandleFunc("/campaigns/{id}/preview", h.Preview.Preview).Methods(http.MethodPost)

	// Logs and dashboard
	api.HandleFunc("/logs", h.Logs.List).Methods(http.MethodGet)
	api.HandleFunc("/logs", h.Logs.Clear).Methods(http.MethodDelete)
	api.HandleFunc("/dashboard", h.Logs.Dashboard).Methods(http.MethodGet)

	// Settings
	api.HandleFunc("/settings", h.Settings.Get).Methods(http.MethodGet)
	api.HandleFunc("/settings", h.Settings.Update).Methods(http.MethodPut)
	api.HandleFunc("/settings/validate", h.Settings.Validate).Methods(http.MethodPost)

	// Conversation feed
	if h.Feed != nil {
		api.HandleFunc("/feed/threads", h.Feed.Threads).Methods(http.MethodGet)
		api.HandleFunc("/feed/threads/{phone}", h.Feed.Thread).Methods(http.MethodGet)
		api.HandleFunc("/feed/threads/{phone}/read", h.Feed.MarkRead).Methods(http.MethodPost)
	}
	if h.WebSocket != nil {
		router.HandleFunc("/ws", h.WebSocket).Methods(http.MethodGet)
	}

	return withMiddleware(router)
}

// NewWebhookRouter wires the webhook receiver routes. Unmatched paths fall
// through to static.
func NewWebhookRouter(h *WebhookHandler, static http.Handler) http.Handler {
	router := mux.NewRouter()

	router.HandleFunc("/webhook", h.Verify).Methods(http.MethodGet)
	router.HandleFunc("/webhook", h.Receive).Methods(http.MethodPost)
	router.HandleFunc("/api/conversations", h.ListConversations).Methods(http.MethodGet)
	router.HandleFunc("/api/conversations/{phone}", h.GetConversation).Methods(http.MethodGet)
	router.HandleFunc("/api/messages/outgoing", h.RecordOutgoing).Methods(http.MethodPost)
	router.HandleFunc("/api/config", h.GetConfig).Methods(http.MethodGet)
	router.HandleFunc("/api/config", h.UpdateConfig).Methods(http.MethodPost)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	if static != nil {
		router.PathPrefix("/").Handler(static)
	}

	return withMiddleware(router)
}
