// Package prefs remembers per-user form preferences: the last-used category
// and store name.
package prefs

import (
	"context"
	"sync"

	"github.com/mmynk/pricediary/internal/models"
)

// Preferences are the remembered values of one user. Empty fields are unset.
type Preferences struct {
	Category models.Category
	Store    string
}

// Store reads and writes preferences.
type Store interface {
	// Get returns the user's preferences, zero-valued when none are stored.
	Get(ctx context.Context, userID string) (Preferences, error)

	// Remember merges the non-empty fields of p into the user's preferences.
	Remember(ctx context.Context, userID string, p Preferences) error
}

// MemoryStore keeps preferences in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	users map[string]Preferences
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{users: make(map[string]Preferences)}
}

func (m *MemoryStore) Get(_ context.Context, userID string) (Preferences, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.users[userID], nil
}

func (m *MemoryStore) Remember(_ context.Context, userID string, p Preferences) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	current := m.users[userID]
	if p.Category != "" {
		current.Category = p.Category
	}
	if p.Store != "" {
		current.Store = p.Store
	}
	m.users[userID] = current
	return nil
}
