package cache

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"
)

// Store is the query cache behind the resource clients: reads are cached by
// query key, mutations invalidate the affected key prefix.
type Store interface {
	Get(ctx context.Context, key string, out any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Invalidate(ctx context.Context, prefix string) error
	Close() error
}

type memoryEntry struct {
	raw     []byte
	expires time.Time
}

// MemoryStore is the default process-local TTL cache.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryStore constructs an empty in-memory cache.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// Get decodes the cached value for key into out, reporting whether a live
// entry existed.
func (m *MemoryStore) Get(ctx context.Context, key string, out any) (bool, error) {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok {
		return false, nil
	}
	if m.now().After(entry.expires) {
		m.mu.Lock()
		delete(m.entries, key)
		m.mu.Unlock()
		return false, nil
	}
	if err := json.Unmarshal(entry.raw, out); err != nil {
		return false, err
	}
	return true, nil
}

// Set stores value under key for ttl.
func (m *MemoryStore) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.entries[key] = memoryEntry{raw: raw, expires: m.now().Add(ttl)}
	m.mu.Unlock()
	return nil
}

// Invalidate drops every entry whose key starts with prefix.
func (m *MemoryStore) Invalidate(ctx context.Context, prefix string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key := range m.entries {
		if strings.HasPrefix(key, prefix) {
			delete(m.entries, key)
		}
	}
	return nil
}

// Close is a no-op for the memory store.
func (m *MemoryStore) Close() error {
	return nil
}
