package event

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gram-vidya/internal/config"

	"github.com/golang/glog"
	amqp "github.com/rabbitmq/amqp091-go"
)

// EventPublisher publishes domain events to a durable topic exchange. With no
// RabbitMQ URI configured it is disabled and every publish is a no-op.
type EventPublisher struct {
	conn         *amqp.Connection
	channel      *amqp.Channel
	exchangeName string
	source       string
	enabled      bool
}

func NewEventPublisher(cfg config.RabbitMQConfig, source string) (*EventPublisher, error) {
	if cfg.URI == "" {
		glog.Warning("RabbitMQ URI is empty, event publishing is disabled")
		return &EventPublisher{source: source, enabled: false}, nil
	}

	conn, err := amqp.Dial(cfg.URI)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		cfg.Exchange, // name
		"topic",      // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	glog.Infof("Publishing events to exchange %s", cfg.Exchange)
	return &EventPublisher{
		conn:         conn,
		channel:      channel,
		exchangeName: cfg.Exchange,
		source:       source,
		enabled:      true,
	}, nil
}

func (p *EventPublisher) Enabled() bool {
	return p != nil && p.enabled
}

func (p *EventPublisher) Publish(ctx context.Context, eventType string, payload interface{}) error {
	if !p.Enabled() {
		glog.V(3).Infof("Event publishing is disabled, skipping event: %s", eventType)
		return nil
	}

	body, err := json.Marshal(newEnvelope(p.source, eventType, payload))
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = p.channel.PublishWithContext(
		pubCtx,
		p.exchangeName, // exchange
		eventType,      // routing key
		false,          // mandatory
		false,          // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	glog.V(2).Infof("Published event: %s", eventType)
	return nil
}

func (p *EventPublisher) Close() error {
	if !p.Enabled() {
		return nil
	}
	if p.channel != nil {
		if err := p.channel.Close(); err != nil {
			glog.Errorf("Error closing RabbitMQ channel: %v", err)
		}
	}
	if p.conn != nil {
		if err := p.conn.Close(); err != nil {
			return fmt.Errorf("error closing RabbitMQ connection: %w", err)
		}
	}
	return nil
}
