// Package cache provides the Redis connection and the CEP lookup caches.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/erp/backoffice/internal/application/address"
	"github.com/erp/backoffice/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// NewRedisClient connects to Redis and verifies the connection with a ping
func NewRedisClient(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     10,
		MinIdleConns: 2,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// Factory picks the cache backends from configuration
type Factory struct {
	redisConfig config.RedisConfig
	logger      *zap.Logger
	client      *redis.Client
}

// FactoryOption is a functional option for configuring the factory
type FactoryOption func(*Factory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) FactoryOption {
	return func(f *Factory) {
		f.logger = logger
	}
}

// NewFactory creates a new factory
func NewFactory(cfg config.RedisConfig, opts ...FactoryOption) *Factory {
	f := &Factory{
		redisConfig: cfg,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Client returns the shared Redis client, or nil when Redis is disabled or
// unreachable. Unreachable Redis is logged and the caller falls back to
// in-memory backends.
func (f *Factory) Client() *redis.Client {
	if f.client != nil || !f.redisConfig.Enabled {
		return f.client
	}
	client, err := NewRedisClient(f.redisConfig)
	if err != nil {
		f.logger.Warn("Redis unavailable, falling back to in-memory caches. "+
			"Cached state is not shared between instances.",
			zap.String("addr", f.redisConfig.Addr()),
			zap.Error(err))
		return nil
	}
	f.logger.Info("Connected to Redis", zap.String("addr", f.redisConfig.Addr()))
	f.client = client
	return client
}

// CEPCache returns the Redis CEP cache when Redis is available, otherwise an
// in-memory one
func (f *Factory) CEPCache() address.Cache {
	if client := f.Client(); client != nil {
		return NewRedisCEPCache(client)
	}
	return NewInMemoryCEPCache()
}

// Close releases the Redis connection
func (f *Factory) Close() error {
	if f.client == nil {
		return nil
	}
	return f.client.Close()
}
