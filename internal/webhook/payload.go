// Package webhook ingests WhatsApp Cloud API webhook deliveries into
// per-phone conversation files.
package webhook

import (
	"encoding/json"
	"errors"
)

// ErrMalformedPayload is returned when a delivery is not valid JSON
var ErrMalformedPayload = errors.New("malformed webhook payload")

// Payload is the top-level webhook delivery
type Payload struct {
	Object string  `json:"object"`
	Entry  []Entry `json:"entry"`
}

// Entry represents one business account entry
type Entry struct {
	ID      string   `json:"id"`
	Changes []Change `json:"changes"`
}

// Change wraps a single change notification
type Change struct {
	Field string      `json:"field"`
	Value ChangeValue `json:"value"`
}

// ChangeValue holds the message data
type ChangeValue struct {
	MessagingProduct string    `json:"messaging_product"`
	Metadata         Metadata  `json:"metadata"`
	Contacts         []Contact `json:"contacts,omitempty"`
	Messages         []Message `json:"messages,omitempty"`
	Statuses         []Status  `json:"statuses,omitempty"`
}

// Metadata about the receiving phone number
type Metadata struct {
	DisplayPhoneNumber string `json:"display_phone_number"`
	PhoneNumberID      string `json:"phone_number_id"`
}

// Contact is the sender's WhatsApp profile
type Contact struct {
	Profile ContactProfile `json:"profile"`
	WaID    string         `json:"wa_id"`
}

// ContactProfile has the display name
type ContactProfile struct {
	Name string `json:"name"`
}

// Message is one inbound message. Only the field matching Type is set.
type Message struct {
	From      string        `json:"from"`
	ID        string        `json:"id"`
	Timestamp Timestamp     `json:"timestamp"`
	Type      string        `json:"type"`
	Text      *TextContent  `json:"text,omitempty"`
	Image     *MediaContent `json:"image,omitempty"`
	Video     *MediaContent `json:"video,omitempty"`
	Document  *MediaContent `json:"document,omitempty"`
	Audio     *MediaContent `json:"audio,omitempty"`
	Sticker   *MediaContent `json:"sticker,omitempty"`
	Reaction  *Reaction     `json:"reaction,omitempty"`
}

// TextContent holds a text message body
type TextContent struct {
	Body string `json:"body"`
}

// MediaContent describes an attachment
type MediaContent struct {
	ID       string `json:"id"`
	MimeType string `json:"mime_type"`
	Caption  string `json:"caption,omitempty"`
}

// Reaction is an emoji reaction to an earlier message
type Reaction struct {
	MessageID string `json:"message_id"`
	Emoji     string `json:"emoji"`
}

// Status is a delivery status update. Statuses are not stored.
type Status struct {
	ID          string    `json:"id"`
	Status      string    `json:"status"`
	Timestamp   Timestamp `json:"timestamp"`
	RecipientID string    `json:"recipient_id"`
}

// media returns the attachment for media types
func (m *Message) media() *MediaContent {
	switch m.Type {
	case "image":
		return m.Image
	case "video":
		return m.Video
	case "document":
		return m.Document
	case "audio":
		return m.Audio
	case "sticker":
		return m.Sticker
	}
	return nil
}

// Timestamp is unix seconds, sent as a string or as a number
type Timestamp string

// UnmarshalJSON accepts "1700000000", 1700000000 and null
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Timestamp(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*t = Timestamp(n.String())
	return nil
}

// DecodePayload parses a delivery. Only invalid JSON is an error: entries
// that do not fit the schema are dropped and counted in rejected.
func DecodePayload(body []byte) (payload *Payload, rejected int, err error) {
	if !json.Valid(body) {
		return nil, 0, ErrMalformedPayload
	}

	payload = &Payload{}
	if err := json.Unmarshal(body, payload); err == nil {
		return payload, 0, nil
	}

	var loose struct {
		Object json.RawMessage   `json:"object"`
		Entry  []json.RawMessage `json:"entry"`
	}
	payload = &Payload{}
	if err := json.Unmarshal(body, &loose); err != nil {
		return payload, 1, nil
	}
	if len(loose.Object) > 0 {
		_ = json.Unmarshal(loose.Object, &payload.Object)
	}
	for _, raw := range loose.Entry {
		var entry Entry
		if err := json.Unmarshal(raw, &entry); err != nil {
			rejected++
			continue
		}
		payload.Entry = append(payload.Entry, entry)
	}
	return payload, rejected, nil
}
