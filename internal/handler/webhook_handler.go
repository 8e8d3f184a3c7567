package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"wacms/internal/metrics"
	"wacms/internal/models"
	"wacms/internal/webhook"
)

// WebhookHandler serves the provider callback and the conversation API
// of the webhook receiver. Its responses follow the provider's expectations
// (plain-text OK / Forbidden) rather than the console's error envelope.
type WebhookHandler struct {
	receiver *webhook.Receiver
	config   *webhook.ConfigStore
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(receiver *webhook.Receiver, config *webhook.ConfigStore) *WebhookHandler {
	return &WebhookHandler{
		receiver: receiver,
		config:   config,
	}
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	io.WriteString(w, body)
}

// Verify handles GET /webhook - the provider's subscription handshake
func (h *WebhookHandler) Verify(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	mode := query.Get("hub.mode")
	token := query.Get("hub.verify_token")

	logrus.WithField("mode", mode).Info("📥 Webhook verification request")

	if mode == "subscribe" && token == h.config.VerifyToken() {
		logrus.Info("✅ Webhook verified successfully")
		writeText(w, http.StatusOK, query.Get("hub.challenge"))
		return
	}

	logrus.Warn("❌ Webhook verification failed")
	writeText(w, http.StatusForbidden, "Forbidden")
}

// Receive handles POST /webhook - message deliveries
func (h *WebhookHandler) Receive(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		logrus.WithError(err).Error("Webhook: failed to read body")
		writeText(w, http.StatusInternalServerError, "Error")
		return
	}

	payload, rejected, err := webhook.DecodePayload(body)
	if err != nil {
		logrus.WithError(err).Error("Webhook: malformed body")
		writeText(w, http.StatusInternalServerError, "Error")
		return
	}
	if rejected > 0 {
		logrus.WithField("rejected", rejected).Warn("Webhook: skipped entries that do not match the envelope schema")
		metrics.WebhookEvents.WithLabelValues("error").Add(float64(rejected))
	}

	summary := h.receiver.Ingest(r.Context(), payload)
	summary.Failed += rejected
	logrus.WithFields(logrus.Fields{
		"entries":    len(payload.Entry),
		"stored":     summary.Stored,
		"duplicates": summary.Duplicates,
		"ignored":    summary.Ignored,
		"failed":     summary.Failed,
	}).Info("📨 Webhook received")

	writeText(w, http.StatusOK, "OK")
}

// ListConversations handles GET /api/conversations
func (h *WebhookHandler) ListConversations(w http.ResponseWriter, r *http.Request) {
	conversations, err := h.receiver.Conversations().List()
	if err != nil {
		logrus.WithError(err).Error("Webhook: failed to list conversations")
		conversations = []models.Conversation{}
	}
	WriteOK(w, conversations)
}

// GetConversation handles GET /api/conversations/{phone}
func (h *WebhookHandler) GetConversation(w http.ResponseWriter, r *http.Request) {
	conversation, err := h.receiver.Conversations().Get(mux.Vars(r)["phone"])
	if err != nil {
		writeText(w, http.StatusNotFound, "Not Found")
		return
	}
	WriteOK(w, conversation)
}

// RecordOutgoing handles POST /api/messages/outgoing
func (h *WebhookHandler) RecordOutgoing(w http.ResponseWriter, r *http.Request) {
	var req webhook.OutgoingMessage
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to save message"})
		return
	}

	if _, err := h.receiver.RecordOutgoing(r.Context(), req); err != nil {
		logrus.WithError(err).WithField("phone", req.PhoneNumber).Error("Webhook: failed to save outgoing message")
		WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to save message"})
		return
	}
	WriteOK(w, map[string]bool{"success": true})
}

// GetConfig handles GET /api/config
func (h *WebhookHandler) GetConfig(w http.ResponseWriter, r *http.Request) {
	token := h.config.VerifyToken()
	WriteOK(w, ConfigResponse{
		WebhookVerifyToken: token,
		Configured:         token != "",
	})
}

// UpdateConfig handles POST /api/config
func (h *WebhookHandler) UpdateConfig(w http.ResponseWriter, r *http.Request) {
	var req webhook.ConfigUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to save config"})
		return
	}

	if _, err := h.config.Update(req); err != nil {
		logrus.WithError(err).Error("Webhook: failed to save config")
		WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to save config"})
		return
	}

	logrus.Info("🔧 Config updated from frontend")
	WriteOK(w, map[string]bool{"success": true})
}

// ConfigResponse is the public part of the receiver configuration
type ConfigResponse struct {
	WebhookVerifyToken string `json:"webhookVerifyToken"`
	Configured         bool   `json:"configured"`
}
