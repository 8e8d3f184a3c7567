package webhook

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"wacms/internal/metrics"
	"wacms/internal/models"
)

// EventPublisher mirrors stored messages onto the conversation feed
type EventPublisher interface {
	Publish(ctx context.Context, event models.FeedEvent) error
}

// IngestSummary counts what happened to the entries of one delivery
type IngestSummary struct {
	Stored     int `json:"stored"`
	Duplicates int `json:"duplicates"`
	Ignored    int `json:"ignored"`
	Failed     int `json:"failed"`
}

// OutgoingMessage records a message sent from the console
type OutgoingMessage struct {
	PhoneNumber string `json:"phoneNumber"`
	MessageID   string `json:"messageId"`
	Text        string `json:"text"`
	ContactName string `json:"contactName"`
}

// Receiver stores webhook messages and optionally mirrors them to the feed
type Receiver struct {
	conversations *ConversationStore
	publisher     EventPublisher
	now           func() time.Time
}

// NewReceiver creates a receiver. publisher may be nil.
func NewReceiver(conversations *ConversationStore, publisher EventPublisher) *Receiver {
	return &Receiver{
		conversations: conversations,
		publisher:     publisher,
		now:           time.Now,
	}
}

// Conversations exposes the underlying store
func (r *Receiver) Conversations() *ConversationStore {
	return r.conversations
}

// Ingest stores every message of a delivery. Failures are logged and counted,
// never returned, so the provider always gets an acknowledgement.
func (r *Receiver) Ingest(ctx context.Context, payload *Payload) IngestSummary {
	var summary IngestSummary

	for _, result := range ExtractMessages(payload) {
		if !result.IsMessage() {
			summary.Ignored++
			metrics.WebhookEvents.WithLabelValues("ignored").Inc()
			continue
		}

		in := result.Message
		stored, err := r.conversations.AddMessage(in.Phone, in.Message, in.ContactName)
		switch {
		case err != nil:
			summary.Failed++
			metrics.WebhookEvents.WithLabelValues("error").Inc()
			logrus.WithError(err).WithFields(logrus.Fields{
				"phone":      in.Phone,
				"message_id": in.Message.ID,
			}).Error("Webhook: failed to store message")
		case !stored:
			summary.Duplicates++
			metrics.WebhookEvents.WithLabelValues("duplicate").Inc()
			logrus.WithField("message_id", in.Message.ID).Info("Webhook: duplicate message ignored")
		default:
			summary.Stored++
			metrics.WebhookEvents.WithLabelValues("stored").Inc()
			logrus.WithFields(logrus.Fields{
				"phone":      in.Phone,
				"message_id": in.Message.ID,
				"type":       in.Message.Type,
			}).Info("Webhook: message stored")
			r.mirror(ctx, in.Phone, in.Message)
		}
	}

	return summary
}

// RecordOutgoing appends a console-sent message to the recipient's conversation
func (r *Receiver) RecordOutgoing(ctx context.Context, out OutgoingMessage) (*models.ConversationMessage, error) {
	now := r.now()
	id := out.MessageID
	if id == "" {
		id = fmt.Sprintf("out_%d", now.UnixMilli())
	}

	msg := models.ConversationMessage{
		ID:        id,
		From:      "me",
		Timestamp: formatISO(now),
		Type:      "text",
		Text:      out.Text,
		Direction: models.DirectionOutgoing,
	}

	stored, err := r.conversations.AddMessage(out.PhoneNumber, msg, out.ContactName)
	if err != nil {
		return nil, err
	}
	if stored {
		r.mirror(ctx, out.PhoneNumber, msg)
	}
	return &msg, nil
}

func (r *Receiver) mirror(ctx context.Context, phone string, msg models.ConversationMessage) {
	if r.publisher == nil {
		return
	}
	event := models.FeedEvent{
		Type:    models.FeedEventInsert,
		Message: ToFeedMessage(phone, msg),
	}
	if err := r.publisher.Publish(ctx, event); err != nil {
		logrus.WithError(err).WithField("message_id", msg.ID).Warn("Webhook: failed to publish feed event")
	}
}

// ToFeedMessage converts a stored conversation message into a feed row
func ToFeedMessage(phone string, msg models.ConversationMessage) models.FeedMessage {
	status := models.FeedStatusRead
	if msg.Direction == models.DirectionIncoming {
		status = models.FeedStatusUnread
	}
	createdAt := parseISO(msg.Timestamp)
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	return models.FeedMessage{
		ID:          msg.ID,
		CreatedAt:   createdAt,
		PhoneNumber: phone,
		Content:     msg.Text,
		Direction:   msg.Direction,
		Status:      status,
	}
}
