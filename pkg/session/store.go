package session

import (
	"context"
	"sync"
)

// Store persists a Record between runs.
// Implementations must treat Save as a whole-value replacement.
type Store interface {
	// Load returns the persisted record.
	// Returns ErrNotFound if nothing was saved yet.
	Load(ctx context.Context) (Record, error)

	// Save replaces the persisted record.
	Save(ctx context.Context, rec Record) error

	// Delete removes the persisted record. Deleting a missing record is not an error.
	Delete(ctx context.Context) error
}

// MemoryStore keeps the record in process memory.
// State does not survive a restart; use it for tests and short-lived tools.
type MemoryStore struct {
	rec   *Record
	mu    sync.Mutex
	saves int
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load returns the stored record.
func (m *MemoryStore) Load(_ context.Context) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.rec == nil {
		return Record{}, ErrNotFound
	}
	return m.rec.clone(), nil
}

// Save replaces the stored record.
func (m *MemoryStore) Save(_ context.Context, rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := rec.clone()
	m.rec = &c
	m.saves++
	return nil
}

// Delete removes the stored record.
func (m *MemoryStore) Delete(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rec = nil
	m.saves++
	return nil
}

// Writes returns how many times the store was written to.
func (m *MemoryStore) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

var _ Store = (*MemoryStore)(nil)
