// Package notify publishes committed room status changes to RabbitMQ.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"roomstatus/internal/tracking"
)

const EventStatusChanged = "room.status_changed"

type Event struct {
	Type       string                `json:"type"`
	OccurredAt time.Time             `json:"occurredAt"`
	Data       tracking.StatusChange `json:"data"`
}

// Publisher sends every event to a durable fanout exchange; consumers bind
// their own queues.
type Publisher struct {
	conn     Connection
	exchange string
}

var _ tracking.Notifier = (*Publisher)(nil)

func NewPublisher(conn Connection, exchange string) *Publisher {
	return &Publisher{conn: conn, exchange: exchange}
}

func (p *Publisher) StatusChanged(ctx context.Context, c tracking.StatusChange) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(p.exchange, "fanout", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	body, err := json.Marshal(Event{Type: EventStatusChanged, OccurredAt: c.ChangedAt, Data: c})
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	err = ch.PublishWithContext(ctx, p.exchange, "", false, false, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		MessageId:    c.EntryID,
		Type:         EventStatusChanged,
		Timestamp:    c.ChangedAt,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}
	return nil
}
