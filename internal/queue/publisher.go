package queue

import (
	"context"
	"errors"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"wacms/internal/models"
)

// Publisher publishes feed events to a fanout exchange
type Publisher struct {
	conn     *Connection
	exchange string
}

// NewPublisher creates a new publisher instance and declares its exchange
func NewPublisher(conn *Connection, exchange string) (*Publisher, error) {
	if conn == nil {
		return nil, errors.New("connection cannot be nil")
	}
	if exchange == "" {
		return nil, errors.New("exchange name cannot be empty")
	}

	if err := conn.DeclareExchange(exchange); err != nil {
		return nil, err
	}

	return &Publisher{
		conn:     conn,
		exchange: exchange,
	}, nil
}

// Publish sends one feed event to every bound queue
func (p *Publisher) Publish(ctx context.Context, event models.FeedEvent) error {
	body, err := EncodeEvent(event)
	if err != nil {
		return err
	}

	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to get channel: %w", err)
	}

	err = ch.PublishWithContext(
		ctx,
		p.exchange,
		"",    // routing key (ignored by fanout)
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			MessageId:    event.Message.ID,
			Type:         string(event.Type),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish feed event: %w", err)
	}

	return nil
}
