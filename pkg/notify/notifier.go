// Package notify publishes booking lifecycle events to RabbitMQ and builds the
// scannable ticket reference handed back on booking creation.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const (
	EventBookingCreated  = "booking.created"
	EventBookingPaid     = "booking.paid"
	EventBookingReleased = "booking.released"
	EventTicketScanned   = "ticket.scanned"
)

type BookingEvent struct {
	Type             string    `json:"type"`
	BookingID        int64     `json:"bookingId"`
	CustomerID       int64     `json:"customerId"`
	EventID          int64     `json:"eventId"`
	BookingReference string    `json:"bookingReference"`
	TicketID         string    `json:"ticketId"`
	Seats            []string  `json:"seats,omitempty"`
	Amount           float64   `json:"amount"`
	PaymentStatus    string    `json:"paymentStatus"`
	TicketStatus     string    `json:"ticketStatus"`
	Reason           string    `json:"reason,omitempty"`
	OccurredAt       time.Time `json:"occurredAt"`
}

// Publisher is the subset of *amqp.Channel used for publishing
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// AMQPNotifier publishes to a topic exchange using the event type as routing key
type AMQPNotifier struct {
	mu       sync.Mutex // amqp channels are not safe for concurrent publishing
	ch       Publisher
	exchange string
	log      *zap.Logger
}

func NewAMQPNotifier(ch Publisher, exchange string, log *zap.Logger) *AMQPNotifier {
	return &AMQPNotifier{
		ch:       ch,
		exchange: exchange,
		log:      log.With(zap.String("notifier", "amqp")),
	}
}

func (n *AMQPNotifier) Publish(ctx context.Context, event BookingEvent) error {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", event.Type, err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    event.OccurredAt,
		MessageId:    fmt.Sprintf("%s-%d-%d", event.Type, event.BookingID, event.OccurredAt.UnixNano()),
		Body:         body,
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if err := n.ch.PublishWithContext(ctx, n.exchange, event.Type, false, false, msg); err != nil {
		n.log.Warn("Failed to publish booking event",
			zap.String("type", event.Type),
			zap.Int64("booking_id", event.BookingID),
			zap.Error(err),
		)
		return fmt.Errorf("publish %s event: %w", event.Type, err)
	}

	n.log.Debug("Published booking event",
		zap.String("type", event.Type),
		zap.Int64("booking_id", event.BookingID),
	)
	return nil
}

// NopNotifier drops every event; used when no broker is configured
type NopNotifier struct{}

func (NopNotifier) Publish(context.Context, BookingEvent) error { return nil }

// Connection owns the broker connection behind an AMQPNotifier
type Connection struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

// Dial opens a channel and declares the durable topic exchange
func Dial(url, exchange string) (*Connection, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open rabbitmq channel: %w", err)
	}

	if err := ch.ExchangeDeclare(
		exchange, // name
		"topic",  // kind
		true,     // durable
		false,    // autoDelete
		false,    // internal
		false,    // noWait
		nil,      // args
	); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}

	return &Connection{conn: conn, ch: ch}, nil
}

func (c *Connection) Channel() *amqp.Channel { return c.ch }

func (c *Connection) Close() error {
	if err := c.ch.Close(); err != nil {
		c.conn.Close()
		return err
	}
	return c.conn.Close()
}
