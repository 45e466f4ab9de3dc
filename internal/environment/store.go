package environment

import (
	"context"
	"maps"
	"sync"
)

// Store persists the snapshot of the last successful build.
type Store interface {
	// Load returns the last saved snapshot, or nil when none exists.
	Load(ctx context.Context) (*Snapshot, error)

	// Save replaces the stored snapshot.
	Save(ctx context.Context, snap *Snapshot) error

	// Close closes the store and releases resources.
	Close() error
}

// MemoryStore keeps the snapshot in process memory. Watch mode uses it when
// no state file is configured.
type MemoryStore struct {
	mu   sync.RWMutex
	snap *Snapshot
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Load(_ context.Context) (*Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snap.Clone(), nil
}

func (m *MemoryStore) Save(_ context.Context, snap *Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := snap.Clone()
	if c != nil && c.Fingerprints == nil {
		c.Fingerprints = map[string]string{}
	}
	m.snap = c
	return nil
}

func (m *MemoryStore) Close() error { return nil }

// Fingerprints returns a copy of the stored fingerprints.
func (m *MemoryStore) Fingerprints() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.snap == nil {
		return nil
	}
	return maps.Clone(m.snap.Fingerprints)
}
