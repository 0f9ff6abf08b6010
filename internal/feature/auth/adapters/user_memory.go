// Package adapters provides repository implementations for the auth feature.
package adapters

import (
	"context"
	"sync"
	"time"

	"gym_backend/internal/feature/auth/domain/entity"
	"gym_backend/internal/feature/auth/usecase"
)

// userMemory is the in-process UserRepository.
// Contents live as long as the value does and are lost on restart.
type userMemory struct {
	mu      sync.RWMutex
	nextID  uint
	byID    map[uint]*entity.User
	byEmail map[string]uint
}

var _ usecase.UserRepository = (*userMemory)(nil)

// NewUserMemory creates an empty store whose first user gets ID 1.
func NewUserMemory() *userMemory {
	return &userMemory{
		nextID:  1,
		byID:    make(map[uint]*entity.User),
		byEmail: make(map[string]uint),
	}
}

// Create checks the email and inserts under one lock, so two concurrent
// registrations for the same address cannot both succeed.
func (r *userMemory) Create(ctx context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byEmail[u.Email]; ok {
		return usecase.ErrEmailAlreadyExists
	}

	now := time.Now()
	u.ID = r.nextID
	u.IsActive = true
	u.CreatedAt = now
	u.UpdatedAt = now
	r.nextID++

	r.byID[u.ID] = u.Clone()
	r.byEmail[u.Email] = u.ID
	return nil
}

// FindByEmail returns a copy of the user with exactly this email.
func (r *userMemory) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, usecase.ErrUserNotFound
	}
	return r.byID[id].Clone(), nil
}

// FindByID returns a copy of the user with this ID.
func (r *userMemory) FindByID(ctx context.Context, id uint) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, usecase.ErrUserNotFound
	}
	return u.Clone(), nil
}
