package auth

import (
	"context"
	"sync"

	"github.com/kvaidya/stockfolio/internal/models"
)

// MemoryUserStore is the in-memory UserStore used by tests and
// offline mode.
type MemoryUserStore struct {
	mu    sync.RWMutex
	users map[string]models.User // keyed by email
}

// NewMemoryUserStore creates an empty in-memory user store.
func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: make(map[string]models.User)}
}

// CreateUser stores the user, rejecting duplicate emails.
func (m *MemoryUserStore) CreateUser(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.users[user.Email]; exists {
		return ErrEmailTaken
	}
	m.users[user.Email] = *user
	return nil
}

// GetUserByEmail returns the stored user, or nil when unknown.
func (m *MemoryUserStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	user, ok := m.users[email]
	if !ok {
		return nil, nil
	}
	return &user, nil
}
