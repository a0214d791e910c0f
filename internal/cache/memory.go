package cache

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	count     int64
	value     string
	expiresAt time.Time
}

func (e *memoryEntry) expired(now time.Time) bool {
	return now.After(e.expiresAt)
}

// Memory is the in-process Cache fallback. Counters and records are scoped to
// the local instance only, a weaker guarantee than the shared Redis primary.
// A background sweep bounds memory by evicting expired entries.
type Memory struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry

	stop chan struct{}
	once sync.Once
}

// NewMemory creates an in-process cache. If sweepInterval is positive, a
// background goroutine evicts expired entries at that cadence until Stop.
func NewMemory(sweepInterval time.Duration) *Memory {
	m := &Memory{
		entries: make(map[string]*memoryEntry),
		stop:    make(chan struct{}),
	}
	if sweepInterval > 0 {
		go m.sweepLoop(sweepInterval)
	}
	return m
}

// IncrEx atomically increments the counter at key. A fresh entry (new or
// expired) starts at 1 and carries the ttl from the moment of creation.
func (m *Memory) IncrEx(_ context.Context, key string, ttl time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	entry, ok := m.entries[key]
	if !ok || entry.expired(now) {
		entry = &memoryEntry{expiresAt: now.Add(ttl)}
		m.entries[key] = entry
	}
	entry.count++
	return entry.count, nil
}

// Get returns the value at key, or ErrMiss when absent or expired.
func (m *Memory) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[key]
	if !ok {
		return "", ErrMiss
	}
	if entry.expired(time.Now()) {
		delete(m.entries, key)
		return "", ErrMiss
	}
	return entry.value, nil
}

// SetEx stores value at key with a time-to-live.
func (m *Memory) SetEx(_ context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = &memoryEntry{
		value:     value,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

// Len returns the number of live entries, for the diagnostics endpoint.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Sweep removes expired entries immediately.
func (m *Memory) Sweep() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	for key, entry := range m.entries {
		if entry.expired(now) {
			delete(m.entries, key)
		}
	}
}

// Stop terminates the background sweep goroutine.
func (m *Memory) Stop() {
	m.once.Do(func() { close(m.stop) })
}

func (m *Memory) sweepLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}
