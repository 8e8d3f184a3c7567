package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"wacms/internal/metrics"
	"wacms/internal/models"
	"wacms/internal/repository"
)

// FeedListener receives the full thread list after every change
type FeedListener func(threads []models.Thread)

// FeedService keeps the conversation feed in memory, backed by the messages table
type FeedService struct {
	repo repository.FeedMessageRepository

	mu       sync.RWMutex
	messages []models.FeedMessage
	index    map[string]int

	listenersMu sync.RWMutex
	listeners   []FeedListener
}

// NewFeedService creates a new feed service
func NewFeedService(repo repository.FeedMessageRepository) *FeedService {
	return &FeedService{
		repo:  repo,
		index: make(map[string]int),
	}
}

// OnChange registers a listener called after every applied change
func (s *FeedService) OnChange(fn FeedListener) {
	s.listenersMu.Lock()
	s.listeners = append(s.listeners, fn)
	s.listenersMu.Unlock()
}

// Load replaces the in-memory feed with the stored messages
func (s *FeedService) Load(ctx context.Context) error {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to load feed: %w", err)
	}

	s.mu.Lock()
	s.messages = make([]models.FeedMessage, 0, len(rows))
	s.index = make(map[string]int, len(rows))
	for _, m := range rows {
		if _, dup := s.index[m.ID]; dup {
			continue
		}
		s.index[m.ID] = len(s.messages)
		s.messages = append(s.messages, *m)
	}
	s.sortLocked()
	s.mu.Unlock()

	logrus.WithField("messages", len(rows)).Info("Feed: loaded")
	s.notify()
	return nil
}

// Apply merges one feed event. INSERT of a known id and UPDATE of an
// unknown id are ignored. It reports whether the feed changed.
func (s *FeedService) Apply(event models.FeedEvent) bool {
	s.mu.Lock()
	changed := false
	switch event.Type {
	case models.FeedEventInsert:
		if _, exists := s.index[event.Message.ID]; !exists {
			s.index[event.Message.ID] = len(s.messages)
			s.messages = append(s.messages, event.Message)
			s.sortLocked()
			changed = true
		}
	case models.FeedEventUpdate:
		if i, exists := s.index[event.Message.ID]; exists {
			s.messages[i] = event.Message
			s.sortLocked()
			changed = true
		}
	}
	s.mu.Unlock()

	if !changed {
		return false
	}
	metrics.FeedEvents.WithLabelValues(string(event.Type)).Inc()
	s.notify()
	return true
}

// Threads groups the feed by phone, newest thread first
func (s *FeedService) Threads() []models.Thread {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return buildThreads(s.messages)
}

// Thread returns the messages of one phone
func (s *FeedService) Thread(phoneNumber string) (*models.Thread, error) {
	for _, t := range s.Threads() {
		if t.PhoneNumber == phoneNumber {
			found := t
			return &found, nil
		}
	}
	return nil, &NotFoundError{Resource: "thread", ID: phoneNumber}
}

// MarkAsRead marks the unread incoming messages of a phone as read in
// storage and in the feed
func (s *FeedService) MarkAsRead(ctx context.Context, phoneNumber string) (int, error) {
	phoneNumber = strings.TrimSpace(phoneNumber)
	if phoneNumber == "" {
		return 0, &ValidationError{Message: "phone number is required"}
	}

	updated, err := s.repo.MarkPhoneRead(ctx, phoneNumber)
	if err != nil {
		return 0, fmt.Errorf("failed to mark thread as read: %w", err)
	}

	for _, m := range updated {
		s.Apply(models.FeedEvent{Type: models.FeedEventUpdate, Message: *m})
	}
	return len(updated), nil
}

// sortLocked orders messages by creation time and rebuilds the index
func (s *FeedService) sortLocked() {
	sort.SliceStable(s.messages, func(i, j int) bool {
		return s.messages[i].CreatedAt.Before(s.messages[j].CreatedAt)
	})
	for i, m := range s.messages {
		s.index[m.ID] = i
	}
}

func (s *FeedService) notify() {
	s.listenersMu.RLock()
	listeners := append([]FeedListener(nil), s.listeners...)
	s.listenersMu.RUnlock()
	if len(listeners) == 0 {
		return
	}
	threads := s.Threads()
	for _, fn := range listeners {
		fn(threads)
	}
}

// buildThreads expects messages sorted ascending by creation time
func buildThreads(messages []models.FeedMessage) []models.Thread {
	byPhone := make(map[string]*models.Thread)
	order := []string{}
	for _, m := range messages {
		t, ok := byPhone[m.PhoneNumber]
		if !ok {
			t = &models.Thread{PhoneNumber: m.PhoneNumber, Messages: []models.FeedMessage{}}
			byPhone[m.PhoneNumber] = t
			order = append(order, m.PhoneNumber)
		}
		t.Messages = append(t.Messages, m)
		t.LastMessageAt = m.CreatedAt
		if m.IsUnreadIncoming() {
			t.UnreadCount++
		}
	}

	threads := make([]models.Thread, 0, len(order))
	for _, phone := range order {
		threads = append(threads, *byPhone[phone])
	}
	sort.SliceStable(threads, func(i, j int) bool {
		return threads[i].LastMessageAt.After(threads[j].LastMessageAt)
	})
	return threads
}
