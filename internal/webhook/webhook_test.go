package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wacms/internal/models"
	"wacms/internal/store"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []models.FeedEvent
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, event models.FeedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func messagePayload(t *testing.T, raw string) *Payload {
	t.Helper()
	var p Payload
	require.NoError(t, json.Unmarshal([]byte(raw), &p))
	return &p
}

const textDelivery = `{
  "object": "whatsapp_business_account",
  "entry": [{
    "id": "waba-1",
    "changes": [{
      "field": "messages",
      "value": {
        "messaging_product": "whatsapp",
        "contacts": [{"profile": {"name": "Ana"}, "wa_id": "15551234"}],
        "messages": [{"from": "15551234", "id": "wamid.1", "timestamp": "1700000000", "type": "text", "text": {"body": "hello"}}]
      }
    }]
  }]
}`

func TestNormalizeMessage(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	testCases := []struct {
		name        string
		msg         Message
		wantType    string
		wantText    string
		wantCaption string
	}{
		{
			name:     "text body",
			msg:      Message{Type: "text", Text: &TextContent{Body: "hi there"}},
			wantType: "text",
			wantText: "hi there",
		},
		{
			name:        "image with caption",
			msg:         Message{Type: "image", Image: &MediaContent{Caption: "look"}},
			wantType:    "image",
			wantText:    "[IMAGE]: look",
			wantCaption: "look",
		},
		{
			name:     "video without caption",
			msg:      Message{Type: "video", Video: &MediaContent{ID: "m1"}},
			wantType: "video",
			wantText: "[VIDEO]",
		},
		{
			name:        "document with caption",
			msg:         Message{Type: "document", Document: &MediaContent{Caption: "invoice"}},
			wantType:    "document",
			wantText:    "[DOCUMENT]: invoice",
			wantCaption: "invoice",
		},
		{
			name:     "audio",
			msg:      Message{Type: "audio", Audio: &MediaContent{ID: "a1"}},
			wantType: "audio",
			wantText: "[AUDIO MESSAGE]",
		},
		{
			name:     "sticker",
			msg:      Message{Type: "sticker"},
			wantType: "sticker",
			wantText: "[STICKER]",
		},
		{
			name:     "reaction",
			msg:      Message{Type: "reaction", Reaction: &Reaction{MessageID: "wamid.0", Emoji: "👍"}},
			wantType: "reaction",
			wantText: "[REACTION: 👍]",
		},
		{
			name:     "unsupported type keeps no text",
			msg:      Message{Type: "location"},
			wantType: "location",
		},
		{
			name:     "missing type",
			msg:      Message{},
			wantType: "unknown",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tc.msg.ID = "wamid.x"
			tc.msg.From = "15551234"
			tc.msg.Timestamp = "1700000000"

			got := normalizeMessage(tc.msg, now)

			assert.Equal(t, tc.wantType, got.Type)
			assert.Equal(t, tc.wantText, got.Text)
			assert.Equal(t, tc.wantCaption, got.Caption)
			assert.Equal(t, "2023-11-14T22:13:20.000Z", got.Timestamp)
			assert.Equal(t, models.DirectionIncoming, got.Direction)
		})
	}
}

func TestNormalizeMessage_BadTimestampUsesNow(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	got := normalizeMessage(Message{ID: "x", Type: "text", Timestamp: "soon"}, now)

	assert.Equal(t, "2024-05-01T12:00:00.000Z", got.Timestamp)
}

func TestExtractMessages(t *testing.T) {
	payload := messagePayload(t, `{
	  "entry": [
	    {"id": "e1", "changes": [{"value": {"statuses": [{"id": "wamid.9", "status": "delivered"}]}}]},
	    {"id": "e2", "changes": [{"value": {"messages": [{"from": "15550000", "id": "wamid.2", "timestamp": "1700000000", "type": "sticker"}]}}]},
	    {"id": "e3"}
	  ]
	}`)

	results := ExtractMessages(payload)

	require.Len(t, results, 3)
	assert.False(t, results[0].IsMessage())
	require.True(t, results[1].IsMessage())
	assert.Equal(t, "15550000", results[1].Message.Phone)
	assert.Empty(t, results[1].Message.ContactName)
	assert.Equal(t, "[STICKER]", results[1].Message.Message.Text)
	assert.False(t, results[2].IsMessage())
}

func TestDecodePayload(t *testing.T) {
	testCases := []struct {
		name         string
		body         string
		wantErr      error
		wantEntries  int
		wantRejected int
		wantStamp    Timestamp
	}{
		{
			name:        "string timestamp",
			body:        `{"object":"whatsapp_business_account","entry":[{"id":"e1","changes":[{"value":{"messages":[{"from":"1555","id":"m1","timestamp":"1700000000","type":"text"}]}}]}]}`,
			wantEntries: 1,
			wantStamp:   "1700000000",
		},
		{
			name:        "numeric timestamp",
			body:        `{"entry":[{"id":"e1","changes":[{"value":{"messages":[{"from":"1555","id":"m1","timestamp":1700000000,"type":"text"}]}}]}]}`,
			wantEntries: 1,
			wantStamp:   "1700000000",
		},
		{
			name:         "entry that does not fit is skipped",
			body:         `{"entry":[{"id":"e1","changes":"oops"},{"id":"e2","changes":[{"value":{"messages":[{"from":"1555","id":"m2","timestamp":"1700000000","type":"text"}]}}]}]}`,
			wantEntries:  1,
			wantRejected: 1,
			wantStamp:    "1700000000",
		},
		{
			name:         "envelope that does not fit",
			body:         `{"entry":"oops"}`,
			wantRejected: 1,
		},
		{
			name:    "invalid json",
			body:    `{"entry":[`,
			wantErr: ErrMalformedPayload,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Execute
			payload, rejected, err := DecodePayload([]byte(tc.body))

			// Verify
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantRejected, rejected)
			require.Len(t, payload.Entry, tc.wantEntries)
			if tc.wantEntries > 0 {
				assert.Equal(t, tc.wantStamp, payload.Entry[0].Changes[0].Value.Messages[0].Timestamp)
			}
		})
	}
}

func TestSanitizePhone(t *testing.T) {
	testCases := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "digits", input: "15551234", want: "15551234"},
		{name: "plus kept", input: "+1555", want: "+1555"},
		{name: "path traversal stripped", input: "../../etc/passwd", want: "etcpasswd"},
		{name: "spaces stripped", input: "+1 555 1234", want: "+15551234"},
		{name: "nothing usable", input: "../", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := SanitizePhone(tc.input)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPhone)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestConversationStore_AddMessage(t *testing.T) {
	// Setup
	files := store.NewMemoryPersister()
	s := NewConversationStore(files)
	first := models.ConversationMessage{ID: "m1", From: "15551234", Timestamp: "2024-01-01T10:00:00.000Z", Type: "text", Text: "a", Direction: models.DirectionIncoming}
	second := models.ConversationMessage{ID: "m2", From: "15551234", Timestamp: "2024-01-01T11:00:00.000Z", Type: "text", Text: "b", Direction: models.DirectionIncoming}

	// Execute
	stored1, err := s.AddMessage("15551234", first, "Ana")
	require.NoError(t, err)
	dup, err := s.AddMessage("15551234", first, "")
	require.NoError(t, err)
	stored2, err := s.AddMessage("15551234", second, "")
	require.NoError(t, err)

	// Verify
	assert.True(t, stored1)
	assert.False(t, dup)
	assert.True(t, stored2)

	conv, err := s.Get("15551234")
	require.NoError(t, err)
	require.Len(t, conv.Messages, 2)
	assert.Equal(t, "Ana", conv.ContactName)
	assert.Equal(t, "2024-01-01T11:00:00.000Z", conv.LastMessageAt)
	assert.Equal(t, 2, files.SaveCount())
}

func TestConversationStore_GetMissingReturnsSkeleton(t *testing.T) {
	s := NewConversationStore(store.NewMemoryPersister())
	s.now = func() time.Time { return time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC) }

	conv, err := s.Get("15559999")

	require.NoError(t, err)
	assert.Equal(t, "15559999", conv.PhoneNumber)
	assert.NotNil(t, conv.Messages)
	assert.Empty(t, conv.Messages)
	assert.Equal(t, "2024-02-03T04:05:06.000Z", conv.CreatedAt)
	assert.Equal(t, conv.CreatedAt, conv.LastMessageAt)
}

func TestConversationStore_ConcurrentDuplicatesStoredOnce(t *testing.T) {
	s := NewConversationStore(store.NewMemoryPersister())
	msg := models.ConversationMessage{ID: "same", Timestamp: "2024-01-01T10:00:00.000Z", Type: "text"}

	var wg sync.WaitGroup
	results := make(chan bool, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			stored, err := s.AddMessage("15551234", msg, "")
			assert.NoError(t, err)
			results <- stored
		}()
	}
	wg.Wait()
	close(results)

	storedCount := 0
	for stored := range results {
		if stored {
			storedCount++
		}
	}
	assert.Equal(t, 1, storedCount)

	conv, err := s.Get("15551234")
	require.NoError(t, err)
	assert.Len(t, conv.Messages, 1)
}

func TestConversationStore_ListSortedByLastMessage(t *testing.T) {
	s := NewConversationStore(store.NewMemoryPersister())
	add := func(phone, id, ts string) {
		_, err := s.AddMessage(phone, models.ConversationMessage{ID: id, Timestamp: ts, Type: "text"}, "")
		require.NoError(t, err)
	}
	add("111", "a", "2024-01-01T10:00:00.000Z")
	add("222", "b", "2024-01-03T10:00:00.000Z")
	add("333", "c", "2024-01-02T10:00:00.000Z")

	list, err := s.List()

	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "222", list[0].PhoneNumber)
	assert.Equal(t, "333", list[1].PhoneNumber)
	assert.Equal(t, "111", list[2].PhoneNumber)
}

func TestConversationStore_FileBacked(t *testing.T) {
	files, err := store.NewFilePersister(t.TempDir())
	require.NoError(t, err)
	s := NewConversationStore(files)

	_, err = s.AddMessage("+15551234", models.ConversationMessage{ID: "m1", Timestamp: "2024-01-01T10:00:00.000Z", Type: "text"}, "Ana")
	require.NoError(t, err)

	reopened := NewConversationStore(files)
	list, err := reopened.List()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "+15551234", list[0].PhoneNumber)
	assert.Equal(t, "Ana", list[0].ContactName)
}

func TestConfigStore(t *testing.T) {
	t.Run("defaults when nothing saved", func(t *testing.T) {
		s, err := NewConfigStore(store.NewMemoryPersister(), "server-config")
		require.NoError(t, err)

		assert.Equal(t, DefaultServerConfig(), s.Get())
		assert.Equal(t, DefaultVerifyToken, s.VerifyToken())
	})

	t.Run("saved values override defaults", func(t *testing.T) {
		p := store.NewMemoryPersister()
		require.NoError(t, p.Save("server-config", []byte(`{"phoneNumberId":"123"}`)))

		s, err := NewConfigStore(p, "server-config")
		require.NoError(t, err)

		assert.Equal(t, DefaultVerifyToken, s.Get().WebhookVerifyToken)
		assert.Equal(t, "123", s.Get().PhoneNumberID)
	})

	t.Run("update merges and persists", func(t *testing.T) {
		p := store.NewMemoryPersister()
		s, err := NewConfigStore(p, "server-config")
		require.NoError(t, err)
		token := "secret"

		updated, err := s.Update(ConfigUpdate{WebhookVerifyToken: &token})

		require.NoError(t, err)
		assert.Equal(t, "secret", updated.WebhookVerifyToken)
		reloaded, err := NewConfigStore(p, "server-config")
		require.NoError(t, err)
		assert.Equal(t, "secret", reloaded.VerifyToken())
	})

	t.Run("corrupt file", func(t *testing.T) {
		p := store.NewMemoryPersister()
		require.NoError(t, p.Save("server-config", []byte(`{`)))

		_, err := NewConfigStore(p, "server-config")

		assert.Error(t, err)
	})
}

func TestReceiver_Ingest(t *testing.T) {
	// Setup
	publisher := &recordingPublisher{}
	r := NewReceiver(NewConversationStore(store.NewMemoryPersister()), publisher)
	payload := messagePayload(t, textDelivery)

	// Execute
	first := r.Ingest(context.Background(), payload)
	second := r.Ingest(context.Background(), payload)

	// Verify
	assert.Equal(t, IngestSummary{Stored: 1}, first)
	assert.Equal(t, IngestSummary{Duplicates: 1}, second)

	conv, err := r.Conversations().Get("15551234")
	require.NoError(t, err)
	require.Len(t, conv.Messages, 1)
	assert.Equal(t, "hello", conv.Messages[0].Text)
	assert.Equal(t, "Ana", conv.ContactName)

	require.Len(t, publisher.events, 1)
	event := publisher.events[0]
	assert.Equal(t, models.FeedEventInsert, event.Type)
	assert.Equal(t, "wamid.1", event.Message.ID)
	assert.Equal(t, models.FeedStatusUnread, event.Message.Status)
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), event.Message.CreatedAt)
}

func TestReceiver_PublishFailureDoesNotFailIngest(t *testing.T) {
	publisher := &recordingPublisher{err: errors.New("broker down")}
	r := NewReceiver(NewConversationStore(store.NewMemoryPersister()), publisher)

	summary := r.Ingest(context.Background(), messagePayload(t, textDelivery))

	assert.Equal(t, 1, summary.Stored)
}

func TestReceiver_RecordOutgoing(t *testing.T) {
	r := NewReceiver(NewConversationStore(store.NewMemoryPersister()), nil)
	r.now = func() time.Time { return time.UnixMilli(1700000000123) }

	testCases := []struct {
		name   string
		input  OutgoingMessage
		wantID string
	}{
		{
			name:   "generated id",
			input:  OutgoingMessage{PhoneNumber: "15551234", Text: "hi"},
			wantID: "out_1700000000123",
		},
		{
			name:   "provider id",
			input:  OutgoingMessage{PhoneNumber: "15551234", MessageID: "wamid.out", Text: "hey", ContactName: "Ana"},
			wantID: "wamid.out",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			msg, err := r.RecordOutgoing(context.Background(), tc.input)

			require.NoError(t, err)
			assert.Equal(t, tc.wantID, msg.ID)
			assert.Equal(t, "me", msg.From)
			assert.Equal(t, "text", msg.Type)
			assert.Equal(t, models.DirectionOutgoing, msg.Direction)
			assert.Equal(t, "2023-11-14T22:13:20.123Z", msg.Timestamp)
		})
	}

	conv, err := r.Conversations().Get("15551234")
	require.NoError(t, err)
	assert.Len(t, conv.Messages, 2)
	assert.Equal(t, "Ana", conv.ContactName)
}

func TestReceiver_RecordOutgoingInvalidPhone(t *testing.T) {
	r := NewReceiver(NewConversationStore(store.NewMemoryPersister()), nil)

	_, err := r.RecordOutgoing(context.Background(), OutgoingMessage{PhoneNumber: "//", Text: "x"})

	assert.ErrorIs(t, err, ErrInvalidPhone)
}
