package dto

import (
	"time"

	"gym_backend/internal/feature/auth/domain/entity"
)

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse acknowledges an operation with no other payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// UserResponse is the public view of a user. The password hash is never included.
type UserResponse struct {
	ID        uint      `json:"id"`
	Email     string    `json:"email"`
	FirstName *string   `json:"firstName"`
	LastName  *string   `json:"lastName"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewUserResponse converts a user entity to its public view.
func NewUserResponse(u *entity.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt.UTC(),
		UpdatedAt: u.UpdatedAt.UTC(),
	}
}

// LoginResponse is returned by a successful login.
type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      UserResponse `json:"user"`
}

// SessionResponse describes one active session of the caller.
type SessionResponse struct {
	ID        string    `json:"id"`
	UserAgent string    `json:"userAgent"`
	IPAddress string    `json:"ipAddress"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
	Current   bool      `json:"current"`
}

// NewSessionResponses converts sessions, flagging the one the request was made with.
func NewSessionResponses(sessions []*entity.Session, currentID string) []SessionResponse {
	out := make([]SessionResponse, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, SessionResponse{
			ID:        s.ID,
			UserAgent: s.UserAgent,
			IPAddress: s.IPAddress,
			CreatedAt: s.CreatedAt.UTC(),
			ExpiresAt: s.ExpiresAt.UTC(),
			Current:   s.ID == currentID,
		})
	}
	return out
}
