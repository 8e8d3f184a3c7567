package models

// Direction of a conversation message
type Direction string

const (
	DirectionIncoming Direction = "incoming"
	DirectionOutgoing Direction = "outgoing"
)

// ConversationMessage is one stored webhook or outgoing message.
// Timestamp is an ISO-8601 string in UTC.
type ConversationMessage struct {
	ID        string    `json:"id"`
	From      string    `json:"from"`
	Timestamp string    `json:"timestamp"`
	Type      string    `json:"type"`
	Text      string    `json:"text,omitempty"`
	Caption   string    `json:"caption,omitempty"`
	Direction Direction `json:"direction"`
}

// Conversation is the per-phone message file kept by the webhook receiver
type Conversation struct {
	PhoneNumber   string                `json:"phoneNumber"`
	ContactName   string                `json:"contactName,omitempty"`
	Messages      []ConversationMessage `json:"messages"`
	LastMessageAt string                `json:"lastMessageAt"`
	CreatedAt     string                `json:"createdAt"`
}

// HasMessage reports whether a message id is already stored
func (c *Conversation) HasMessage(id string) bool {
	for _, m := range c.Messages {
		if m.ID == id {
			return true
		}
	}
	return false
}
