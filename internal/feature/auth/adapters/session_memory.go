package adapters

import (
	"context"
	"sync"
	"time"

	"gym_backend/internal/feature/auth/domain/entity"
	"gym_backend/internal/feature/auth/usecase"
)

// sessionMemory is the in-process SessionRepository used when neither
// Redis nor a database is configured.
type sessionMemory struct {
	mu       sync.RWMutex
	sessions map[string]*entity.Session
}

var _ usecase.SessionRepository = (*sessionMemory)(nil)

// NewSessionMemory creates an empty session store.
func NewSessionMemory() *sessionMemory {
	return &sessionMemory{sessions: make(map[string]*entity.Session)}
}

func (r *sessionMemory) Create(ctx context.Context, s *entity.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c := *s
	r.sessions[s.ID] = &c
	return nil
}

func (r *sessionMemory) FindByID(ctx context.Context, id string) (*entity.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, usecase.ErrSessionNotFound
	}
	c := *s
	return &c, nil
}

// FindByUserID returns the user's valid sessions, oldest first.
func (r *sessionMemory) FindByUserID(ctx context.Context, userID uint) ([]*entity.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.activeLocked(userID), nil
}

func (r *sessionMemory) Revoke(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return usecase.ErrSessionNotFound
	}
	if s.RevokedAt == nil {
		now := time.Now()
		s.RevokedAt = &now
	}
	return nil
}

func (r *sessionMemory) RevokeAllByUserID(ctx context.Context, userID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	for _, s := range r.sessions {
		if s.UserID == userID && s.RevokedAt == nil {
			revokedAt := now
			s.RevokedAt = &revokedAt
		}
	}
	return nil
}

func (r *sessionMemory) DeleteExpired(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for id, s := range r.sessions {
		if s.IsExpired() {
			delete(r.sessions, id)
			n++
		}
	}
	return n, nil
}

func (r *sessionMemory) CountByUserID(ctx context.Context, userID uint) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.activeLocked(userID))), nil
}

func (r *sessionMemory) DeleteOldestByUserID(ctx context.Context, userID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	active := r.activeLocked(userID)
	if len(active) == 0 {
		return nil
	}
	delete(r.sessions, active[0].ID)
	return nil
}

// activeLocked must be called with r.mu held.
func (r *sessionMemory) activeLocked(userID uint) []*entity.Session {
	var owned []*entity.Session
	for _, s := range r.sessions {
		if s.UserID == userID {
			c := *s
			owned = append(owned, &c)
		}
	}
	return activeSessions(owned)
}
