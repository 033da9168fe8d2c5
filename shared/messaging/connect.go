package messaging

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// ConnectRabbitMQ dials RabbitMQ, retrying up to maxRetries times.
func ConnectRabbitMQ(ctx context.Context, rawURL string, maxRetries int, retryDelay time.Duration, logger *zap.Logger) (*amqp091.Connection, error) {
	if maxRetries <= 0 {
		maxRetries = 1
	}
	logger.Info("Attempting to connect to RabbitMQ",
		zap.String("url", MaskURL(rawURL)),
		zap.Int("max_retries", maxRetries),
		zap.Duration("retry_delay", retryDelay),
	)

	var err error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		var conn *amqp091.Connection
		conn, err = amqp091.Dial(rawURL)
		if err == nil {
			logger.Info("Successfully connected to RabbitMQ", zap.Int("attempt", attempt))
			go func() {
				closeErr := <-conn.NotifyClose(make(chan *amqp091.Error, 1))
				if closeErr != nil {
					logger.Error("RabbitMQ connection closed unexpectedly", zap.Error(closeErr))
				} else {
					logger.Info("RabbitMQ connection closed gracefully")
				}
			}()
			return conn, nil
		}
		logger.Warn("RabbitMQ connection failed, retrying...",
			zap.Int("attempt", attempt),
			zap.Int("max_retries", maxRetries),
			zap.Error(err),
		)
		if attempt == maxRetries {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryDelay):
		}
	}
	return nil, fmt.Errorf("failed to connect to RabbitMQ after %d attempts: %w", maxRetries, err)
}

// MaskURL hides the password of a connection URL for logging.
func MaskURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return u.Redacted()
}
