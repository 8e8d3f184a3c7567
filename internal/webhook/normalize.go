package webhook

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"wacms/internal/models"
)

// InboundMessage is a message extracted from one webhook entry
type InboundMessage struct {
	Phone       string
	ContactName string
	Message     models.ConversationMessage
}

// ExtractResult is the outcome for one entry. Message is nil when the
// entry carries no message (status updates, other fields).
type ExtractResult struct {
	EntryID string
	Message *InboundMessage
}

// IsMessage reports whether the entry carried a message
func (r ExtractResult) IsMessage() bool {
	return r.Message != nil
}

// ExtractMessages reads changes[0].value.messages[0] of every entry
func ExtractMessages(payload *Payload) []ExtractResult {
	results := make([]ExtractResult, 0, len(payload.Entry))
	for _, entry := range payload.Entry {
		result := ExtractResult{EntryID: entry.ID}
		if len(entry.Changes) > 0 && len(entry.Changes[0].Value.Messages) > 0 {
			value := entry.Changes[0].Value
			msg := value.Messages[0]

			inbound := &InboundMessage{
				Phone:   msg.From,
				Message: normalizeMessage(msg, time.Now()),
			}
			if len(value.Contacts) > 0 {
				inbound.ContactName = value.Contacts[0].Profile.Name
			}
			result.Message = inbound
		}
		results = append(results, result)
	}
	return results
}

func normalizeMessage(msg Message, now time.Time) models.ConversationMessage {
	out := models.ConversationMessage{
		ID:        msg.ID,
		From:      msg.From,
		Timestamp: unixToISO(string(msg.Timestamp), now),
		Type:      msg.Type,
		Direction: models.DirectionIncoming,
	}
	if out.Type == "" {
		out.Type = "unknown"
	}

	switch msg.Type {
	case "text":
		if msg.Text != nil {
			out.Text = msg.Text.Body
		}
	case "image", "video", "document":
		label := "[" + strings.ToUpper(msg.Type) + "]"
		if media := msg.media(); media != nil && media.Caption != "" {
			out.Caption = media.Caption
			label = fmt.Sprintf("%s: %s", label, media.Caption)
		}
		out.Text = label
	case "audio":
		out.Text = "[AUDIO MESSAGE]"
	case "sticker":
		out.Text = "[STICKER]"
	case "reaction":
		emoji := ""
		if msg.Reaction != nil {
			emoji = msg.Reaction.Emoji
		}
		out.Text = fmt.Sprintf("[REACTION: %s]", emoji)
	}
	return out
}

// unixToISO converts a unix-seconds string; unparseable values become now
func unixToISO(ts string, now time.Time) string {
	seconds, err := strconv.ParseInt(strings.TrimSpace(ts), 10, 64)
	if err != nil {
		return formatISO(now)
	}
	return formatISO(time.Unix(seconds, 0))
}

func formatISO(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}
