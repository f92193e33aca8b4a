package store

import (
	"context"
	"sync"
)

// MemoryTokenStore keeps the token in process memory. Nothing survives a restart.
type MemoryTokenStore struct {
	mu     sync.Mutex
	token  *string
	closed bool
}

// NewMemoryTokenStore returns an empty in-memory store.
func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{}
}

// Load returns the stored token.
func (m *MemoryTokenStore) Load(ctx context.Context) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return "", false, ErrClosed
	}
	if m.token == nil {
		return "", false, nil
	}
	return *m.token, true, nil
}

// Save replaces the stored token.
func (m *MemoryTokenStore) Save(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.token = &token
	return nil
}

// Remove clears the stored token.
func (m *MemoryTokenStore) Remove(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.token = nil
	return nil
}

// Close marks the store closed.
func (m *MemoryTokenStore) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}
