package cache

import (
	"context"
	"encoding/json"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache is the default single-node backend, a thin wrapper over
// patrickmn/go-cache.
type MemoryCache struct {
	c *gocache.Cache
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		c: gocache.New(gocache.NoExpiration, 10*time.Minute),
	}
}

func (m *MemoryCache) Get(_ context.Context, key string, dest any) bool {
	v, found := m.c.Get(key)
	if !found {
		return false
	}
	raw, ok := v.([]byte)
	if !ok {
		return false
	}
	return json.Unmarshal(raw, dest) == nil
}

func (m *MemoryCache) Set(_ context.Context, key string, value any, ttl time.Duration) {
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	m.c.Set(key, raw, ttl)
}

func (m *MemoryCache) Delete(_ context.Context, key string) {
	m.c.Delete(key)
}

func (m *MemoryCache) Flush(_ context.Context) {
	m.c.Flush()
}
