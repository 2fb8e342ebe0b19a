package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"moving_ops/pkg/notify"
)

const (
	NotificationsExchange = "notifications_fanout"
	OrdersExchange        = "orders_topic"
)

// Channel is the part of *amqp.Channel the publisher needs.
type Channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Publisher puts notifications on the notifications fanout exchange and a
// copy on the orders topic exchange keyed by notification type, so other
// services can subscribe to order events.
type Publisher struct {
	conn    *amqp.Connection
	channel Channel
	timeout time.Duration
}

// Dial connects to the broker and declares the exchanges.
func Dial(url string, timeout time.Duration) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	p, err := NewPublisher(ch, timeout)
	if err != nil {
		conn.Close()
		return nil, err
	}
	p.conn = conn
	return p, nil
}

// NewPublisher declares the exchanges on ch.
func NewPublisher(ch Channel, timeout time.Duration) (*Publisher, error) {
	if err := ch.ExchangeDeclare(NotificationsExchange, "fanout", true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("failed to declare exchange %s: %w", NotificationsExchange, err)
	}
	if err := ch.ExchangeDeclare(OrdersExchange, "topic", true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("failed to declare exchange %s: %w", OrdersExchange, err)
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Publisher{channel: ch, timeout: timeout}, nil
}

// RoutingKey is the orders topic key of a notification, e.g. "order.offer".
func RoutingKey(n notify.Notification) string {
	return "order." + n.Type
}

func (p *Publisher) Notify(ctx context.Context, n notify.Notification) error {
	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	msg := amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		Body:         body,
		Timestamp:    time.Now(),
	}
	if err := p.channel.PublishWithContext(ctx, NotificationsExchange, "", false, false, msg); err != nil {
		return fmt.Errorf("failed to publish notification: %w", err)
	}
	if err := p.channel.PublishWithContext(ctx, OrdersExchange, RoutingKey(n), false, false, msg); err != nil {
		return fmt.Errorf("failed to publish order event: %w", err)
	}
	return nil
}

func (p *Publisher) Close() error {
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
