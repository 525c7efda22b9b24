// Package events publishes order lifecycle notifications to RabbitMQ.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"gugarden/internal/config"
	"gugarden/internal/model"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Event types double as the routing key suffix.
const (
	TypeOrderCreated       = "created"
	TypeOrderPaid          = "paid"
	TypeOrderCancelled     = "cancelled"
	TypeOrderStatusChanged = "status_changed"
)

// OrderEvent is the message body for every order notification.
type OrderEvent struct {
	Type           string            `json:"type"`
	OrderID        uuid.UUID         `json:"orderId"`
	OrderNumber    string            `json:"orderNumber"`
	UserID         uuid.UUID         `json:"userId"`
	Status         model.OrderStatus `json:"status"`
	PreviousStatus model.OrderStatus `json:"previousStatus,omitempty"`
	TotalAmount    decimal.Decimal   `json:"totalAmount"`
	OccurredAt     time.Time         `json:"occurredAt"`
}

// NewOrderEvent snapshots order for an event of the given type.
func NewOrderEvent(eventType string, order *model.Order, previous model.OrderStatus) OrderEvent {
	return OrderEvent{
		Type:           eventType,
		OrderID:        order.ID,
		OrderNumber:    order.OrderNumber,
		UserID:         order.UserID,
		Status:         order.Status,
		PreviousStatus: previous,
		TotalAmount:    order.TotalAmount,
		OccurredAt:     time.Now().UTC(),
	}
}

// RoutingKey is the topic key the event is published under.
func (e OrderEvent) RoutingKey() string {
	return "order." + e.Type
}

// Publisher delivers events after the owning transaction has committed.
// Delivery is best effort: failures are logged, never returned to callers.
type Publisher interface {
	Publish(ctx context.Context, event OrderEvent)
	Close() error
}

type amqpPublisher struct {
	conn     *amqp.Connection
	mu       sync.Mutex
	channel  *amqp.Channel
	exchange string
	logger   zerolog.Logger
}

// NewAMQPPublisher dials the broker and declares the topic exchange.
func NewAMQPPublisher(cfg config.AMQPConfig, logger zerolog.Logger) (Publisher, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open RabbitMQ channel: %w", err)
	}

	if err := ch.ExchangeDeclare(cfg.Exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", cfg.Exchange, err)
	}

	return &amqpPublisher{
		conn:     conn,
		channel:  ch,
		exchange: cfg.Exchange,
		logger:   logger.With().Str("component", "events").Logger(),
	}, nil
}

func (p *amqpPublisher) Publish(ctx context.Context, event OrderEvent) {
	body, err := json.Marshal(event)
	if err != nil {
		p.logger.Error().Err(err).Msg("failed to encode order event")
		return
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.NewString(),
		Timestamp:    event.OccurredAt,
		Body:         body,
	}

	p.mu.Lock()
	err = p.channel.PublishWithContext(ctx, p.exchange, event.RoutingKey(), false, false, msg)
	p.mu.Unlock()

	if err != nil {
		p.logger.Error().
			Err(err).
			Str("routing_key", event.RoutingKey()).
			Str("order_id", event.OrderID.String()).
			Msg("failed to publish order event")
		return
	}

	p.logger.Debug().
		Str("routing_key", event.RoutingKey()).
		Str("order_id", event.OrderID.String()).
		Msg("order event published")
}

func (p *amqpPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.channel.Close(); err != nil {
		p.logger.Warn().Err(err).Msg("failed to close channel")
	}
	return p.conn.Close()
}

type nopPublisher struct{}

// NewNopPublisher discards every event.
func NewNopPublisher() Publisher {
	return nopPublisher{}
}

func (nopPublisher) Publish(context.Context, OrderEvent) {}
func (nopPublisher) Close() error                       { return nil }
