// Package cache is the durable key/value store behind the collection
// stores. Each collection owns one key holding its serialized snapshot;
// there are no cross-key transactions.
//
// Backends:
//
//   - SQLiteCache: a single-file database, the default.
//   - BadgerCache: an LSM directory, for devices with heavy write churn.
//   - MemoryCache: process-local, for tests and "-b memory".
//   - SealedCache: wraps any of the above and encrypts values at rest.
package cache

import (
	"context"
	"sync"
)

// Cache stores opaque snapshot blobs by key.
type Cache interface {
	// Get returns (nil, nil) when key has never been written.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// MemoryCache is a Cache kept in a map.
type MemoryCache struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryCache returns an empty in-process cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{data: make(map[string][]byte)}
}

func (m *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.data[key]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), v...), nil
}

func (m *MemoryCache) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *MemoryCache) Close() error { return nil }
