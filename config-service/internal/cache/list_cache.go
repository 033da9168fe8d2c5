package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"config-console/shared/models"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	// DefaultListKey is the Redis key holding the serialized configuration list.
	DefaultListKey = "console:configs:list"
	// DefaultGenerationKey counts invalidations; a fill only lands if it is unchanged.
	DefaultGenerationKey = "console:configs:gen"
)

// ListCache caches the whole configuration list.
//
// Readers take Generation before loading from the database and pass it to
// Set. Invalidate bumps the generation, so a fill that raced a write is
// dropped instead of caching the old list.
type ListCache interface {
	// Get reports false on a miss.
	Get(ctx context.Context) ([]models.ConfigurationRecord, bool, error)
	Generation(ctx context.Context) (int64, error)
	// Set reports false when the generation moved and nothing was stored.
	Set(ctx context.Context, generation int64, records []models.ConfigurationRecord) (bool, error)
	Invalidate(ctx context.Context) error
}

// RedisListCache stores the list as one JSON value with a TTL.
type RedisListCache struct {
	client *redis.Client
	key    string
	genKey string
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisListCache creates a cache under DefaultListKey.
func NewRedisListCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisListCache {
	return &RedisListCache{
		client: client,
		key:    DefaultListKey,
		genKey: DefaultGenerationKey,
		ttl:    ttl,
		logger: logger.Named("RedisListCache"),
	}
}

func (c *RedisListCache) Get(ctx context.Context) ([]models.ConfigurationRecord, bool, error) {
	raw, err := c.client.Get(ctx, c.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read configuration list cache: %w", err)
	}

	var records []models.ConfigurationRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		// corrupted entry behaves as a miss and is dropped
		c.logger.Warn("Dropping undecodable cache entry", zap.Error(err))
		_ = c.client.Del(ctx, c.key).Err()
		return nil, false, nil
	}
	return records, true, nil
}

func (c *RedisListCache) Generation(ctx context.Context) (int64, error) {
	return readGeneration(ctx, c.client.Get, c.genKey)
}

func (c *RedisListCache) Set(ctx context.Context, generation int64, records []models.ConfigurationRecord) (bool, error) {
	raw, err := json.Marshal(records)
	if err != nil {
		return false, fmt.Errorf("failed to encode configuration list: %w", err)
	}

	stored := false
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := readGeneration(ctx, tx.Get, c.genKey)
		if err != nil {
			return err
		}
		if current != generation {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, c.key, raw, c.ttl)
			return nil
		})
		if err == nil {
			stored = true
		}
		return err
	}, c.genKey)

	switch {
	case errors.Is(err, redis.TxFailedErr):
		stored = false
	case err != nil:
		return false, fmt.Errorf("failed to write configuration list cache: %w", err)
	}
	if !stored {
		c.logger.Debug("Skipped stale cache fill", zap.Int64("generation", generation))
	}
	return stored, nil
}

func (c *RedisListCache) Invalidate(ctx context.Context) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, c.genKey)
		pipe.Del(ctx, c.key)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to invalidate configuration list cache: %w", err)
	}
	return nil
}

func readGeneration(ctx context.Context, get func(context.Context, string) *redis.StringCmd, key string) (int64, error) {
	gen, err := get(ctx, key).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read cache generation: %w", err)
	}
	return gen, nil
}
