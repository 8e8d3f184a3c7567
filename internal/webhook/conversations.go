package webhook

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"sync"
	"time"

	"wacms/internal/models"
	"wacms/internal/store"
)

var unsafePhoneChars = regexp.MustCompile(`[^0-9A-Za-z+_-]`)

// ErrInvalidPhone is returned when a phone number has no usable characters
var ErrInvalidPhone = errors.New("invalid phone number")

// ConversationFiles stores one serialized conversation per key
type ConversationFiles interface {
	store.Persister
	Keys() ([]string, error)
}

// ConversationStore keeps one conversation per phone number.
// Writes to the same phone are serialized.
type ConversationStore struct {
	files ConversationFiles
	now   func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewConversationStore creates a store over files
func NewConversationStore(files ConversationFiles) *ConversationStore {
	return &ConversationStore{
		files: files,
		now:   time.Now,
		locks: make(map[string]*sync.Mutex),
	}
}

// SanitizePhone strips characters that are not allowed in a file key
func SanitizePhone(phone string) (string, error) {
	clean := unsafePhoneChars.ReplaceAllString(phone, "")
	if clean == "" {
		return "", ErrInvalidPhone
	}
	return clean, nil
}

func (s *ConversationStore) lock(phone string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[phone]
	if !ok {
		l = &sync.Mutex{}
		s.locks[phone] = l
	}
	return l
}

// Get returns the conversation for phone, or an empty one when nothing is stored
func (s *ConversationStore) Get(phone string) (*models.Conversation, error) {
	key, err := SanitizePhone(phone)
	if err != nil {
		return nil, err
	}
	return s.load(key)
}

func (s *ConversationStore) load(key string) (*models.Conversation, error) {
	data, err := s.files.Load(key)
	if err != nil {
		return nil, err
	}
	if data == nil {
		now := formatISO(s.now())
		return &models.Conversation{
			PhoneNumber:   key,
			Messages:      []models.ConversationMessage{},
			LastMessageAt: now,
			CreatedAt:     now,
		}, nil
	}

	var conv models.Conversation
	if err := json.Unmarshal(data, &conv); err != nil {
		return nil, fmt.Errorf("failed to decode conversation %s: %w", key, err)
	}
	if conv.Messages == nil {
		conv.Messages = []models.ConversationMessage{}
	}
	return &conv, nil
}

// AddMessage appends msg unless its id is already stored. It reports
// whether the message was new.
func (s *ConversationStore) AddMessage(phone string, msg models.ConversationMessage, contactName string) (bool, error) {
	key, err := SanitizePhone(phone)
	if err != nil {
		return false, err
	}

	l := s.lock(key)
	l.Lock()
	defer l.Unlock()

	conv, err := s.load(key)
	if err != nil {
		return false, err
	}
	if conv.HasMessage(msg.ID) {
		return false, nil
	}

	conv.Messages = append(conv.Messages, msg)
	conv.LastMessageAt = msg.Timestamp
	if contactName != "" {
		conv.ContactName = contactName
	}

	data, err := json.MarshalIndent(conv, "", "  ")
	if err != nil {
		return false, fmt.Errorf("failed to encode conversation %s: %w", key, err)
	}
	if err := s.files.Save(key, data); err != nil {
		return false, err
	}
	return true, nil
}

// List returns every stored conversation, most recent message first
func (s *ConversationStore) List() ([]models.Conversation, error) {
	keys, err := s.files.Keys()
	if err != nil {
		return nil, err
	}

	conversations := make([]models.Conversation, 0, len(keys))
	for _, key := range keys {
		conv, err := s.load(key)
		if err != nil {
			return nil, err
		}
		conversations = append(conversations, *conv)
	}

	sort.SliceStable(conversations, func(i, j int) bool {
		return parseISO(conversations[i].LastMessageAt).After(parseISO(conversations[j].LastMessageAt))
	})
	return conversations, nil
}

func parseISO(value string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return t
}
