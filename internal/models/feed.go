package models

import "time"

// FeedStatus is the read state of a feed message
type FeedStatus string

const (
	FeedStatusUnread FeedStatus = "unread"
	FeedStatusRead   FeedStatus = "read"
)

// FeedEventType identifies a change in the message feed
type FeedEventType string

const (
	FeedEventInsert FeedEventType = "INSERT"
	FeedEventUpdate FeedEventType = "UPDATE"
)

// FeedMessage is a row of the messages table behind the conversation feed
type FeedMessage struct {
	ID          string     `json:"id" db:"id"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	PhoneNumber string     `json:"phone_number" db:"phone_number"`
	Content     string     `json:"content" db:"content"`
	Direction   Direction  `json:"direction" db:"direction"`
	Status      FeedStatus `json:"status" db:"status"`
}

// IsUnreadIncoming reports whether the message counts toward a thread's unread total
func (m *FeedMessage) IsUnreadIncoming() bool {
	return m.Direction == DirectionIncoming && m.Status == FeedStatusUnread
}

// FeedEvent carries one insert or update of a feed message
type FeedEvent struct {
	Type    FeedEventType `json:"type"`
	Message FeedMessage   `json:"message"`
}

// Thread groups feed messages by phone number
type Thread struct {
	PhoneNumber   string        `json:"phoneNumber"`
	Messages      []FeedMessage `json:"messages"`
	LastMessageAt time.Time     `json:"lastMessageAt"`
	UnreadCount   int           `json:"unreadCount"`
}
