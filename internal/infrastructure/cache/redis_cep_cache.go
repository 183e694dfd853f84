package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/erp/backoffice/internal/application/address"
	"github.com/erp/backoffice/internal/domain/location"
	"github.com/redis/go-redis/v9"
)

const cepKeyPrefix = "cep:"

// RedisCEPCache stores provider answers as JSON under cep:{digits}
type RedisCEPCache struct {
	client redis.UniversalClient
}

// NewRedisCEPCache creates a cache on an existing client
func NewRedisCEPCache(client redis.UniversalClient) *RedisCEPCache {
	return &RedisCEPCache{client: client}
}

// Get returns the cached address for cep
func (c *RedisCEPCache) Get(ctx context.Context, cep string) (*location.PostalAddress, bool, error) {
	raw, err := c.client.Get(ctx, cepKeyPrefix+cep).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read CEP cache: %w", err)
	}

	var addr location.PostalAddress
	if err := json.Unmarshal(raw, &addr); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached CEP: %w", err)
	}
	return &addr, true, nil
}

// Set caches addr for ttl
func (c *RedisCEPCache) Set(ctx context.Context, cep string, addr *location.PostalAddress, ttl time.Duration) error {
	raw, err := json.Marshal(addr)
	if err != nil {
		return fmt.Errorf("failed to encode CEP: %w", err)
	}
	if err := c.client.Set(ctx, cepKeyPrefix+cep, raw, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write CEP cache: %w", err)
	}
	return nil
}

var _ address.Cache = (*RedisCEPCache)(nil)
