//go:build integration

package cache_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"config-console/config-service/internal/cache"
	"config-console/shared/database"
	"config-console/shared/models"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

func startRedis(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()

	rdContainer, err := tcredis.Run(ctx,
		"docker.io/redis:7-alpine",
		testcontainers.WithWaitStrategy(
			wait.ForLog("* Ready to accept connections").
				WithOccurrence(1).
				WithStartupTimeout(1*time.Minute),
		),
	)
	require.NoError(t, err, "Failed to start redis container")
	t.Cleanup(func() { _ = rdContainer.Terminate(context.Background()) })

	host, err := rdContainer.Host(ctx)
	require.NoError(t, err)
	port, err := rdContainer.MappedPort(ctx, "6379/tcp")
	require.NoError(t, err)

	client, err := database.NewRedisClient(ctx, database.RedisConfig{
		Addr:       fmt.Sprintf("%s:%s", host, port.Port()),
		MaxRetries: 5,
		RetryDelay: time.Second,
	}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRedisListCacheAgainstRealRedis(t *testing.T) {
	client := startRedis(t)
	ctx := context.Background()
	c := cache.NewRedisListCache(client, time.Minute, zap.NewNop())

	records := []models.ConfigurationRecord{
		{ID: 1, Name: "x", Value: "a", DescrMap: map[string]string{"en-us": "d", "zh-cn": "描述"}},
	}
	stored, err := c.Set(ctx, 0, records)
	require.NoError(t, err)
	require.True(t, stored)

	ttl, err := client.TTL(ctx, cache.DefaultListKey).Result()
	require.NoError(t, err)
	require.Greater(t, ttl, time.Duration(0))

	got, ok, err := c.Get(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, records, got)

	require.NoError(t, c.Invalidate(ctx))
	_, ok, err = c.Get(ctx)
	require.NoError(t, err)
	require.False(t, ok)
}
