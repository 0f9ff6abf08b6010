// Package domain models who is looking at a page and what the dashboard shows them.
package domain

import "gym_backend/internal/feature/auth/domain/entity"

// Viewer is either Anonymous or Authenticated.
type Viewer interface {
	viewer()
}

// Anonymous is a visitor without a valid session.
type Anonymous struct{}

// Authenticated is a visitor whose session resolved to a user.
type Authenticated struct {
	User      *entity.User
	SessionID string
}

func (Anonymous) viewer()     {}
func (Authenticated) viewer() {}
