// Package session persists the authenticated principal between requests:
// one serialized record per session key, cleared on logout.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"muniboard-be/models"
)

var ErrNoSession = errors.New("no session")

// TTL matches the auth token lifetime.
const TTL = 72 * time.Hour

type Store interface {
	Set(ctx context.Context, key string, p models.Principal) error
	Get(ctx context.Context, key string) (*models.Principal, error)
	Clear(ctx context.Context, key string) error
}

// Memory keeps sessions in-process, for tests and redis-less development.
type Memory struct {
	mu       sync.Mutex
	sessions map[string]models.Principal
}

func NewMemory() *Memory {
	return &Memory{sessions: make(map[string]models.Principal)}
}

func (m *Memory) Set(ctx context.Context, key string, p models.Principal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[key] = p
	return nil
}

func (m *Memory) Get(ctx context.Context, key string) (*models.Principal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.sessions[key]
	if !ok {
		return nil, ErrNoSession
	}
	return &p, nil
}

func (m *Memory) Clear(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, key)
	return nil
}
