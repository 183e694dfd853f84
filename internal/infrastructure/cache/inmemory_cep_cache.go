package cache

import (
	"context"
	"sync"
	"time"

	"github.com/erp/backoffice/internal/application/address"
	"github.com/erp/backoffice/internal/domain/location"
)

type cepEntry struct {
	addr      location.PostalAddress
	expiresAt time.Time
}

// InMemoryCEPCache keeps CEP answers in process memory. Expired entries are
// dropped on read.
type InMemoryCEPCache struct {
	mu      sync.RWMutex
	entries map[string]cepEntry
	now     func() time.Time
}

// NewInMemoryCEPCache creates an empty cache
func NewInMemoryCEPCache() *InMemoryCEPCache {
	return &InMemoryCEPCache{
		entries: make(map[string]cepEntry),
		now:     time.Now,
	}
}

// Get returns a copy of the cached address
func (c *InMemoryCEPCache) Get(_ context.Context, cep string) (*location.PostalAddress, bool, error) {
	c.mu.RLock()
	e, ok := c.entries[cep]
	c.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if !c.now().Before(e.expiresAt) {
		c.mu.Lock()
		delete(c.entries, cep)
		c.mu.Unlock()
		return nil, false, nil
	}
	addr := e.addr
	return &addr, true, nil
}

// Set caches a copy of addr for ttl; a non-positive ttl stores nothing
func (c *InMemoryCEPCache) Set(_ context.Context, cep string, addr *location.PostalAddress, ttl time.Duration) error {
	if addr == nil || ttl <= 0 {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[cep] = cepEntry{addr: *addr, expiresAt: c.now().Add(ttl)}
	return nil
}

// Len returns the number of stored entries, expired ones included
func (c *InMemoryCEPCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

var _ address.Cache = (*InMemoryCEPCache)(nil)
