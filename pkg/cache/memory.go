package cache

import (
	"context"
	"sync"
)

// Memory is a process-local cache. Entries larger than MaxEntryBytes are
// rejected with ErrQuotaExceeded.
type Memory struct {
	mu            sync.RWMutex
	entries       map[string][]byte
	maxEntryBytes int
}

// NewMemory creates an empty in-memory cache. A maxEntryBytes <= 0
// disables the quota.
func NewMemory(maxEntryBytes int) *Memory {
	return &Memory{
		entries:       make(map[string][]byte),
		maxEntryBytes: maxEntryBytes,
	}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte) error {
	if m.maxEntryBytes > 0 && len(value) > m.maxEntryBytes {
		return ErrQuotaExceeded
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = append([]byte(nil), value...)
	return nil
}

// Len returns the number of stored entries.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

func (m *Memory) Close() error {
	return nil
}
