package cache

import (
	"context"
	"log"
	"sync"
	"time"
)

// entry is a stored response with its creation time and hit counter.
type entry struct {
	response  string
	createdAt time.Time
	hits      int
}

// Memory is the in-memory cache tier. Entries expire after the TTL (checked
// lazily on read and by ClearExpired) and the store is capacity-bounded:
// when full, the entry with the oldest creation time is evicted before a new
// key is inserted.
type Memory struct {
	mu       sync.Mutex
	entries  map[string]*entry
	ttl      time.Duration
	capacity int
	now      func() time.Time
}

// NewMemory creates an in-memory cache with the given TTL and capacity.
func NewMemory(ttl time.Duration, capacity int) *Memory {
	return &Memory{
		entries:  make(map[string]*entry),
		ttl:      ttl,
		capacity: capacity,
		now:      time.Now,
	}
}

func (m *Memory) Get(_ context.Context, query string, fp Fingerprint) (string, bool) {
	key := Key(query, fp)

	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return "", false
	}
	if m.now().Sub(e.createdAt) > m.ttl {
		delete(m.entries, key)
		return "", false
	}
	e.hits++
	return e.response, true
}

func (m *Memory) Set(_ context.Context, query, response string, fp Fingerprint) {
	key := Key(query, fp)

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.entries[key]; !exists && len(m.entries) >= m.capacity {
		m.evictOldestLocked()
	}
	m.entries[key] = &entry{response: response, createdAt: m.now()}
}

// evictOldestLocked removes the single entry with the oldest creation time.
// Caller holds m.mu.
func (m *Memory) evictOldestLocked() {
	var oldestKey string
	var oldestAt time.Time
	for k, e := range m.entries {
		if oldestKey == "" || e.createdAt.Before(oldestAt) {
			oldestKey = k
			oldestAt = e.createdAt
		}
	}
	if oldestKey != "" {
		delete(m.entries, oldestKey)
	}
}

func (m *Memory) ClearExpired(_ context.Context) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	cutoff := m.now().Add(-m.ttl)
	for k, e := range m.entries {
		if e.createdAt.Before(cutoff) {
			delete(m.entries, k)
			removed++
		}
	}
	return removed
}

// Len returns the number of physically stored entries, expired or not.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Hits returns the hit counter for the query's entry, or 0 if absent.
func (m *Memory) Hits(query string, fp Fingerprint) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.entries[Key(query, fp)]; ok {
		return e.hits
	}
	return 0
}

// StartSweeper runs ClearExpired on the given interval until ctx is done.
func StartSweeper(ctx context.Context, c Cache, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := c.ClearExpired(ctx); n > 0 {
					log.Printf("cache: sweep removed %d expired entries", n)
				}
			}
		}
	}()
}
