package docstore

import (
	"context"
	"errors"
	"sync"
	"time"

	"docquery/internal/config"
	"docquery/pkg/applog"
	"github.com/redis/go-redis/v9"
)

var (
	clientInstance *redisClient
	clientMu       sync.Mutex
	clientLogger   *applog.Logger
)

type redisClient struct {
	client *redis.Client
}

func getRedisClient(ctx context.Context) *redisClient {
	clientMu.Lock()
	defer clientMu.Unlock()

	if clientInstance != nil {
		return clientInstance
	}

	clientLogger = applog.NewLogger("Redis")
	newClient := redis.NewClient(&redis.Options{
		Addr:                  config.RedisAddr(),
		DB:                    config.RedisDocumentStore,
		ContextTimeoutEnabled: true,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          30 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := newClient.Ping(pingCtx).Err(); err != nil {
		clientLogger.Error("Redis is offline", "error", err)
		return nil
	}
	clientLogger.Info("Redis connected")

	clientInstance = &redisClient{client: newClient}
	go closeRedis(ctx, clientInstance)
	return clientInstance
}

func closeRedis(ctx context.Context, c *redisClient) {
	<-ctx.Done()
	clientLogger.Info("Closing Redis client")
	if err := c.client.Close(); err != nil {
		clientLogger.Error("Error closing redis client", "error", err)
	}
}

func (c *redisClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return c.client.Set(ctx, key, value, expiration).Err()
}

func (c *redisClient) Get(ctx context.Context, key string) (string, error) {
	return c.client.Get(ctx, key).Result()
}

func (c *redisClient) Del(ctx context.Context, keys ...string) error {
	return c.client.Del(ctx, keys...).Err()
}

func (c *redisClient) SetAdd(ctx context.Context, key string, member string) error {
	return c.client.SAdd(ctx, key, member).Err()
}

func (c *redisClient) SetRemove(ctx context.Context, key string, member string) error {
	return c.client.SRem(ctx, key, member).Err()
}

func (c *redisClient) SetMembers(ctx context.Context, key string) ([]string, error) {
	return c.client.SMembers(ctx, key).Result()
}

func (c *redisClient) IsNil(err error) bool {
	return errors.Is(err, redis.Nil)
}
