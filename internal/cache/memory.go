package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps entries in-process with a TTL and a periodic sweep,
// for deployments without redis.
type MemoryStore struct {
	entries map[string]*memoryEntry
	mu      sync.RWMutex
}

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

func NewMemoryStore() *MemoryStore {
	ms := &MemoryStore{
		entries: make(map[string]*memoryEntry),
	}

	// Start background cleanup goroutine
	go ms.cleanupLoop()

	return ms
}

func (ms *MemoryStore) Get(ctx context.Context, key string) (string, bool) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	entry, exists := ms.entries[key]
	if !exists {
		return "", false
	}
	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		return "", false
	}
	return entry.value, true
}

// Set stores a value. A zero ttl means the entry never expires.
func (ms *MemoryStore) Set(ctx context.Context, key, value string, ttl time.Duration) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	entry := &memoryEntry{value: value}
	if ttl > 0 {
		entry.expiresAt = time.Now().Add(ttl)
	}
	ms.entries[key] = entry
}

// cleanupLoop runs periodically to remove expired entries
func (ms *MemoryStore) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		ms.cleanup()
	}
}

func (ms *MemoryStore) cleanup() {
	now := time.Now()

	ms.mu.Lock()
	defer ms.mu.Unlock()

	for key, entry := range ms.entries {
		if !entry.expiresAt.IsZero() && now.After(entry.expiresAt) {
			delete(ms.entries, key)
		}
	}
}
