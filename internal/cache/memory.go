package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

// cleanupInterval is how often Set sweeps expired entries.
const cleanupInterval = 5 * time.Minute

// MemoryStore is an in-process Store backed by a map.
type MemoryStore struct {
	entries     map[string]*memoryEntry
	mu          sync.RWMutex
	maxSize     int
	stats       Stats
	lastCleanup time.Time
	now         func() time.Time
}

// memoryEntry is a single cached value with its expiry.
type memoryEntry struct {
	value     []byte
	storedAt  time.Time
	expiresAt time.Time
}

// NewMemoryStore creates an in-memory store.
// maxSize: maximum number of entries (0 = unlimited); the oldest entry is evicted when full.
func NewMemoryStore(maxSize int) *MemoryStore {
	return &MemoryStore{
		entries:     make(map[string]*memoryEntry),
		maxSize:     maxSize,
		lastCleanup: time.Now(),
		now:         time.Now,
	}
}

// Get returns the value for key if present and not expired.
func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[key]
	if !ok {
		m.stats.Misses++
		return nil, false, nil
	}

	if !m.now().Before(entry.expiresAt) {
		delete(m.entries, key)
		m.stats.Misses++
		return nil, false, nil
	}

	m.stats.Hits++
	return entry.value, true, nil
}

// Set stores value under key until ttl elapses.
func (m *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()

	if now.Sub(m.lastCleanup) > cleanupInterval {
		m.cleanupExpired(now)
	}

	if m.maxSize > 0 && len(m.entries) >= m.maxSize {
		if _, exists := m.entries[key]; !exists {
			m.evictOldest()
		}
	}

	stored := make([]byte, len(value))
	copy(stored, value)

	m.entries[key] = &memoryEntry{
		value:     stored,
		storedAt:  now,
		expiresAt: now.Add(ttl),
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, key)
	return nil
}

// DeletePrefix removes every key with the given prefix.
func (m *MemoryStore) DeletePrefix(_ context.Context, prefix string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for key := range m.entries {
		if strings.HasPrefix(key, prefix) {
			delete(m.entries, key)
			removed++
		}
	}
	return removed, nil
}

// Len returns the number of stored entries, including expired ones not yet swept.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Stats returns current cache statistics.
func (m *MemoryStore) Stats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := m.stats
	stats.Size = len(m.entries)
	return stats
}

// evictOldest removes the oldest entry (FIFO eviction).
// Caller must hold write lock.
func (m *MemoryStore) evictOldest() {
	var oldestKey string
	var oldestTime time.Time

	for key, entry := range m.entries {
		if oldestKey == "" || entry.storedAt.Before(oldestTime) {
			oldestKey = key
			oldestTime = entry.storedAt
		}
	}

	if oldestKey != "" {
		delete(m.entries, oldestKey)
		m.stats.Evictions++
	}
}

// cleanupExpired removes all expired entries.
// Caller must hold write lock.
func (m *MemoryStore) cleanupExpired(now time.Time) {
	for key, entry := range m.entries {
		if !now.Before(entry.expiresAt) {
			delete(m.entries, key)
		}
	}
	m.lastCleanup = now
}
