// Package queue carries conversation feed events over a RabbitMQ fanout
// exchange. Every bound queue receives every event.
package queue

import (
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

const dialTimeout = 5 * time.Second

// Connection represents a RabbitMQ connection with automatic reconnection support
type Connection struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	url     string
	mu      sync.Mutex
	log     *logrus.Entry
}

// NewConnection creates a new RabbitMQ connection
func NewConnection(url string) (*Connection, error) {
	if url == "" {
		return nil, errors.New("rabbitmq url cannot be empty")
	}

	c := &Connection{
		url: url,
		log: logrus.WithField("component", "queue"),
	}
	if err := c.dial(); err != nil {
		return nil, err
	}

	c.log.Info("Successfully connected to RabbitMQ")
	return c, nil
}

// Channel returns the channel, reconnecting if necessary
func (c *Connection) Channel() (*amqp.Channel, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.channel == nil || c.channel.IsClosed() || c.conn == nil || c.conn.IsClosed() {
		c.log.Warn("Channel is closed, attempting to reconnect...")
		c.closeLocked()
		if err := c.dial(); err != nil {
			return nil, fmt.Errorf("failed to reconnect: %w", err)
		}
		c.log.Info("Successfully reconnected to RabbitMQ")
	}

	return c.channel, nil
}

// DeclareExchange declares the durable fanout exchange events are published to
func (c *Connection) DeclareExchange(name string) error {
	if name == "" {
		return errors.New("exchange name cannot be empty")
	}

	ch, err := c.Channel()
	if err != nil {
		return fmt.Errorf("failed to get channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		name,
		amqp.ExchangeFanout,
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}
	return nil
}

// dial must be called with mu held (or before the connection is shared)
func (c *Connection) dial() error {
	conn, err := amqp.DialConfig(c.url, amqp.Config{Dial: amqp.DefaultDial(dialTimeout)})
	if err != nil {
		return fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to create channel: %w", err)
	}

	c.conn = conn
	c.channel = channel
	return nil
}

func (c *Connection) closeLocked() []error {
	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
		c.channel = nil
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
		c.conn = nil
	}
	return errs
}

// Close closes the connection gracefully
func (c *Connection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if errs := c.closeLocked(); len(errs) > 0 {
		return fmt.Errorf("errors during close: %v", errs)
	}

	c.log.Info("RabbitMQ connection closed successfully")
	return nil
}
