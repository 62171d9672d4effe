package session

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/hiredesk/internal/client/models"
)

// MemoryStore is an in-process Store. It forgets everything on exit.
type MemoryStore struct {
	mu    sync.Mutex
	token string
	user  models.User
	now   func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{now: time.Now}
}

func (m *MemoryStore) GetToken(_ context.Context) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tokenLocked()
}

func (m *MemoryStore) tokenLocked() (string, bool) {
	if m.token == "" {
		return "", false
	}
	if expired(m.token, m.now()) {
		m.token, m.user = "", models.User{}
		return "", false
	}
	return m.token, true
}

func (m *MemoryStore) User(_ context.Context) (models.User, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tokenLocked(); !ok {
		return models.User{}, false
	}
	return m.user, true
}

func (m *MemoryStore) SetSession(_ context.Context, token string, user models.User) error {
	if token == "" {
		return ErrEmptyToken
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token, m.user = token, user
	return nil
}

func (m *MemoryStore) ClearSession(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token, m.user = "", models.User{}
	return nil
}
