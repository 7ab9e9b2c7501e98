package storage

import (
	"context"
	"sync"
)

// MemoryStore keeps the pair for the lifetime of the process only.
type MemoryStore struct {
	mu     sync.Mutex
	values map[string]string
	saves  int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Load(_ context.Context) (*Credentials, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return decode(m.values[TokenKey], m.values[UserKey])
}

func (m *MemoryStore) Save(_ context.Context, creds Credentials) error {
	values, err := encode(creds)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.values = values
	m.saves++
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Clear(_ context.Context) error {
	m.mu.Lock()
	m.values = nil
	m.mu.Unlock()
	return nil
}

// Saves counts successful writes.
func (m *MemoryStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// Raw returns a copy of what is stored under both keys.
func (m *MemoryStore) Raw() map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw := make(map[string]string, len(m.values))
	for k, v := range m.values {
		raw[k] = v
	}
	return raw
}
