package queue

import (
	"encoding/json"
	"errors"
	"fmt"

	"wacms/internal/models"
)

// EncodeEvent serializes a feed event for publishing
func EncodeEvent(event models.FeedEvent) ([]byte, error) {
	if err := validateEvent(event); err != nil {
		return nil, err
	}
	body, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal feed event: %w", err)
	}
	return body, nil
}

// DecodeEvent parses and validates a delivered feed event
func DecodeEvent(body []byte) (models.FeedEvent, error) {
	var event models.FeedEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return models.FeedEvent{}, fmt.Errorf("failed to unmarshal feed event: %w", err)
	}
	if err := validateEvent(event); err != nil {
		return models.FeedEvent{}, err
	}
	return event, nil
}

func validateEvent(event models.FeedEvent) error {
	switch event.Type {
	case models.FeedEventInsert, models.FeedEventUpdate:
	default:
		return fmt.Errorf("invalid feed event type %q", event.Type)
	}
	if event.Message.ID == "" {
		return errors.New("feed event message id cannot be empty")
	}
	if event.Message.PhoneNumber == "" {
		return errors.New("feed event phone number cannot be empty")
	}
	return nil
}
