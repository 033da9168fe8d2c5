package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// ConfigUpdateHandler receives decoded configuration change events.
type ConfigUpdateHandler interface {
	HandleConfigUpdate(payload ConfigUpdatePayload)
}

// ConfigUpdateConsumer binds a temporary exclusive queue to the config update
// exchange and forwards every event to a ConfigUpdateHandler.
type ConfigUpdateConsumer struct {
	conn        *amqp091.Connection
	handler     ConfigUpdateHandler
	logger      *zap.Logger
	consumerTag string

	mu      sync.Mutex
	ch      *amqp091.Channel
	cancel  context.CancelFunc
	stopped chan struct{}
}

// NewConfigUpdateConsumer creates a consumer. Start must be called to begin receiving.
func NewConfigUpdateConsumer(conn *amqp091.Connection, handler ConfigUpdateHandler, logger *zap.Logger) (*ConfigUpdateConsumer, error) {
	if conn == nil {
		return nil, fmt.Errorf("rabbitmq connection is nil")
	}
	if handler == nil {
		return nil, fmt.Errorf("config update handler is nil")
	}
	consumerTag := fmt.Sprintf("config_update_consumer_%d", time.Now().UnixNano())
	return &ConfigUpdateConsumer{
		conn:        conn,
		handler:     handler,
		logger:      logger.Named("ConfigUpdateConsumer").With(zap.String("consumerTag", consumerTag)),
		consumerTag: consumerTag,
	}, nil
}

// Start declares the exchange, a server-named exclusive queue and the binding,
// then consumes in a background goroutine until ctx is cancelled or Stop is called.
func (c *ConfigUpdateConsumer) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ch != nil {
		return errors.New("config update consumer already started")
	}

	ch, err := c.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	if err := declareConfigUpdateExchange(ch); err != nil {
		_ = ch.Close()
		return err
	}

	q, err := ch.QueueDeclare(
		"",    // server-generated name
		false, // durable
		true,  // auto-delete
		true,  // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		_ = ch.Close()
		return fmt.Errorf("failed to declare queue: %w", err)
	}
	if err := ch.QueueBind(q.Name, "", ConfigUpdateExchange, false, nil); err != nil {
		_ = ch.Close()
		return fmt.Errorf("failed to bind queue '%s' to exchange '%s': %w", q.Name, ConfigUpdateExchange, err)
	}

	deliveries, err := ch.Consume(q.Name, c.consumerTag, false, true, false, false, nil)
	if err != nil {
		_ = ch.Close()
		return fmt.Errorf("failed to register a consumer: %w", err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	c.ch = ch
	c.cancel = cancel
	c.stopped = make(chan struct{})

	c.logger.Info("Consuming config update events", zap.String("queue", q.Name))
	go c.run(runCtx, deliveries, c.stopped)
	return nil
}

func (c *ConfigUpdateConsumer) run(ctx context.Context, deliveries <-chan amqp091.Delivery, stopped chan<- struct{}) {
	defer close(stopped)
	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-deliveries:
			if !ok {
				c.logger.Warn("Delivery channel closed, consumer stops")
				return
			}
			c.handleDelivery(d)
		}
	}
}

// handleDelivery decodes one message; malformed bodies are rejected without requeue.
func (c *ConfigUpdateConsumer) handleDelivery(d amqp091.Delivery) {
	var payload ConfigUpdatePayload
	if err := json.Unmarshal(d.Body, &payload); err != nil {
		c.logger.Error("Failed to decode config update event", zap.Error(err), zap.ByteString("body", d.Body))
		if nackErr := d.Nack(false, false); nackErr != nil {
			c.logger.Error("Failed to nack malformed message", zap.Error(nackErr))
		}
		return
	}

	c.handler.HandleConfigUpdate(payload)

	if err := d.Ack(false); err != nil {
		c.logger.Error("Failed to acknowledge message", zap.Error(err))
	}
}

// Stop cancels consumption and closes the channel.
func (c *ConfigUpdateConsumer) Stop() error {
	c.mu.Lock()
	ch, cancel, stopped := c.ch, c.cancel, c.stopped
	c.ch, c.cancel, c.stopped = nil, nil, nil
	c.mu.Unlock()

	if ch == nil {
		return errors.New("config update consumer is not running")
	}
	cancel()
	select {
	case <-stopped:
	case <-time.After(5 * time.Second):
		c.logger.Warn("Timed out waiting for consumer goroutine")
	}
	return ch.Close()
}
