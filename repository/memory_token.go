package repository

import (
	"context"
	"sync"
)

// memoryTokenStore, kalıcı olmayan TokenStore. STORE_PATH=":memory:" ve
// testler için. Semantiği SQLite implementasyonu ile aynıdır.
type memoryTokenStore struct {
	mu     sync.RWMutex
	stored StoredSession
}

// NewMemoryTokenStore, constructor.
func NewMemoryTokenStore() TokenStore {
	return &memoryTokenStore{}
}

func (m *memoryTokenStore) Load(_ context.Context) (StoredSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return copyStored(m.stored), nil
}

func (m *memoryTokenStore) Save(_ context.Context, s StoredSession) error {
	if err := validateForSave(s); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stored = copyStored(s)
	return nil
}

func (m *memoryTokenStore) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stored = StoredSession{}
	return nil
}

// copyStored, çağıranın User pointer'ı üzerinden depoyu değiştirmesini engeller.
func copyStored(s StoredSession) StoredSession {
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}
