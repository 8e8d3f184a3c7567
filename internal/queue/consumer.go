package queue

import (
	"context"
	"errors"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"wacms/internal/models"
)

// EventHandler processes one feed event. A returned error requeues the delivery.
type EventHandler func(ctx context.Context, event models.FeedEvent) error

// Consumer consumes feed events from a queue bound to the fanout exchange.
// An empty queue name declares an exclusive, server-named queue that lives
// as long as the connection.
type Consumer struct {
	conn      *Connection
	exchange  string
	queueName string
	handler   EventHandler
	stopChan  chan struct{}
	doneChan  chan struct{}
	log       *logrus.Entry
}

// NewConsumer creates a new consumer instance and binds its queue
func NewConsumer(conn *Connection, exchange, queueName string, handler EventHandler) (*Consumer, error) {
	if conn == nil {
		return nil, errors.New("connection cannot be nil")
	}
	if exchange == "" {
		return nil, errors.New("exchange name cannot be empty")
	}
	if handler == nil {
		return nil, errors.New("handler cannot be nil")
	}

	if err := conn.DeclareExchange(exchange); err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to get channel: %w", err)
	}

	durable := queueName != ""
	q, err := ch.QueueDeclare(
		queueName,
		durable,  // durable
		!durable, // auto-delete
		!durable, // exclusive
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	if err := ch.QueueBind(q.Name, "", exchange, false, nil); err != nil {
		return nil, fmt.Errorf("failed to bind queue: %w", err)
	}

	return &Consumer{
		conn:      conn,
		exchange:  exchange,
		queueName: q.Name,
		handler:   handler,
		stopChan:  make(chan struct{}),
		doneChan:  make(chan struct{}),
		log: logrus.WithFields(logrus.Fields{
			"component": "queue",
			"queue":     q.Name,
		}),
	}, nil
}

// QueueName returns the bound queue name (server-generated when declared without one)
func (c *Consumer) QueueName() string {
	return c.queueName
}

// Start starts consuming events until Stop is called
func (c *Consumer) Start(ctx context.Context) error {
	ch, err := c.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to get channel: %w", err)
	}

	if err := ch.Qos(1, 0, false); err != nil {
		return fmt.Errorf("failed to set QoS: %w", err)
	}

	deliveries, err := ch.ConsumeWithContext(
		ctx,
		c.queueName,
		"",    // consumer tag (auto-generated)
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	go func() {
		defer close(c.doneChan)

		for {
			select {
			case <-c.stopChan:
				c.log.Info("Consumer stopping...")
				return
			case d, ok := <-deliveries:
				if !ok {
					c.log.Warn("Delivery channel closed")
					return
				}
				c.handle(ctx, d)
			}
		}
	}()

	c.log.Info("Consumer started")
	return nil
}

// handle acks processed events, drops undecodable ones and requeues handler failures
func (c *Consumer) handle(ctx context.Context, d amqp.Delivery) {
	event, err := DecodeEvent(d.Body)
	if err != nil {
		c.log.WithError(err).Error("Dropping malformed feed event")
		d.Nack(false, false)
		return
	}

	if err := c.handler(ctx, event); err != nil {
		c.log.WithError(err).WithField("message_id", event.Message.ID).Error("Error processing feed event")
		d.Nack(false, !d.Redelivered)
		return
	}

	d.Ack(false)
}

// Stop stops consuming events gracefully
func (c *Consumer) Stop() error {
	close(c.stopChan)
	<-c.doneChan

	c.log.Info("Consumer stopped successfully")
	return nil
}
