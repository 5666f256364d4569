// Package kvstore is the persistence collaborator: a string-keyed store
// of JSON-serializable values. Missing or malformed data is reported as
// absence so callers can fall back to an empty default.
package kvstore

import (
	"context"
	"encoding/json"
	"sync"
)

// Store is the key-value persistence contract shared by all backends
type Store interface {
	// Get unmarshals the value at key into out. It returns false when the
	// key is missing or the stored payload cannot be decoded.
	Get(ctx context.Context, key string, out interface{}) (bool, error)
	// Set marshals value as JSON and writes it at key
	Set(ctx context.Context, key string, value interface{}) error
	// Delete removes key; deleting a missing key is not an error
	Delete(ctx context.Context, key string) error
	// Close releases backend resources
	Close() error
}

// MemoryStore is an in-process Store used for tests and for running
// without external infrastructure
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (m *MemoryStore) Get(_ context.Context, key string, out interface{}) (bool, error) {
	m.mu.RLock()
	raw, ok := m.data[key]
	m.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, nil
	}
	return true, nil
}

func (m *MemoryStore) Set(_ context.Context, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.data[key] = raw
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.data, key)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Close() error {
	return nil
}

// SetRaw stores a pre-encoded payload, used in tests to simulate
// corrupted persisted data
func (m *MemoryStore) SetRaw(key string, raw []byte) {
	m.mu.Lock()
	m.data[key] = raw
	m.mu.Unlock()
}
