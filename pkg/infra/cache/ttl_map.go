package cache

import (
	"sync"
	"time"
)

type ttlEntry struct {
	expiresAt time.Time
}

// TTLMap is an in-process key set where every key expires on its own deadline. It backs
// notification dedup when Redis is not configured, so the window only holds per replica.
type TTLMap struct {
	mu      sync.Mutex
	data    map[string]ttlEntry
	now     func() time.Time
	maxKeys int
}

const defaultMaxKeys = 100_000

func NewTTLMap() *TTLMap {
	return &TTLMap{
		data:    make(map[string]ttlEntry),
		now:     time.Now,
		maxKeys: defaultMaxKeys,
	}
}

// SetNX stores key for ttl unless a live entry exists. It reports whether the key was set.
func (m *TTLMap) SetNX(key string, ttl time.Duration) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if entry, ok := m.data[key]; ok && now.Before(entry.expiresAt) {
		return false
	}
	if len(m.data) >= m.maxKeys {
		m.sweep(now)
	}
	m.data[key] = ttlEntry{expiresAt: now.Add(ttl)}
	return true
}

// Len counts live entries.
func (m *TTLMap) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sweep(m.now())
	return len(m.data)
}

func (m *TTLMap) sweep(now time.Time) {
	for k, e := range m.data {
		if !now.Before(e.expiresAt) {
			delete(m.data, k)
		}
	}
}
