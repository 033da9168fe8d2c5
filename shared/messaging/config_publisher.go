package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// ConfigUpdatePublisher broadcasts configuration changes.
type ConfigUpdatePublisher interface {
	PublishConfigUpdate(ctx context.Context, payload ConfigUpdatePayload) error
}

// RabbitMQConfigUpdatePublisher publishes ConfigUpdatePayload events to the fanout exchange.
type RabbitMQConfigUpdatePublisher struct {
	ch           *amqp091.Channel
	logger       *zap.Logger
	exchangeName string
}

// NewRabbitMQConfigUpdatePublisher opens a channel and declares the exchange.
func NewRabbitMQConfigUpdatePublisher(conn *amqp091.Connection, logger *zap.Logger) (*RabbitMQConfigUpdatePublisher, error) {
	if conn == nil {
		return nil, fmt.Errorf("rabbitmq connection is nil")
	}
	log := logger.Named("ConfigUpdatePublisher")

	ch, err := conn.Channel()
	if err != nil {
		log.Error("Failed to open a channel for config updates", zap.Error(err))
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	if err := declareConfigUpdateExchange(ch); err != nil {
		_ = ch.Close()
		log.Error("Failed to declare config update exchange", zap.String("exchange", ConfigUpdateExchange), zap.Error(err))
		return nil, err
	}
	log.Info("Config update exchange declared", zap.String("exchange", ConfigUpdateExchange))

	return &RabbitMQConfigUpdatePublisher{
		ch:           ch,
		logger:       log,
		exchangeName: ConfigUpdateExchange,
	}, nil
}

func declareConfigUpdateExchange(ch *amqp091.Channel) error {
	err := ch.ExchangeDeclare(
		ConfigUpdateExchange,
		configUpdateExchangeType,
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to declare exchange '%s': %w", ConfigUpdateExchange, err)
	}
	return nil
}

// PublishConfigUpdate sends one event. Routing key is ignored by the fanout exchange.
func (p *RabbitMQConfigUpdatePublisher) PublishConfigUpdate(ctx context.Context, payload ConfigUpdatePayload) error {
	if payload.UpdatedAt.IsZero() {
		payload.UpdatedAt = time.Now().UTC()
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal config update payload: %w", err)
	}

	err = p.ch.PublishWithContext(ctx,
		p.exchangeName,
		"",
		false, // mandatory
		false, // immediate
		amqp091.Publishing{
			ContentType: "application/json",
			MessageId:   uuid.NewString(),
			Timestamp:   payload.UpdatedAt,
			Body:        body,
		},
	)
	if err != nil {
		p.logger.Error("Failed to publish config update event", zap.String("name", payload.Name), zap.Error(err))
		return fmt.Errorf("failed to publish config update event: %w", err)
	}

	p.logger.Debug("Config update event published", zap.String("name", payload.Name))
	return nil
}

// Close closes the channel.
func (p *RabbitMQConfigUpdatePublisher) Close() error {
	if p.ch != nil {
		return p.ch.Close()
	}
	return nil
}
