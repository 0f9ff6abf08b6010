package entity

import "time"

// Session represents a signed-in browser or API client.
// The session ID is embedded in the issued JWT so a logout can revoke it.
type Session struct {
	ID        string     // Random 64-character hex string
	UserID    uint       // Owner of the session
	UserAgent string     // Client's User-Agent header
	IPAddress string     // Client's IP address
	CreatedAt time.Time  // Session creation time
	ExpiresAt time.Time  // Matches the token expiry
	RevokedAt *time.Time // Set on logout, nil while active
}

// IsExpired returns true if the session has passed its expiration time.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// IsRevoked returns true if the session has been revoked.
func (s *Session) IsRevoked() bool {
	return s.RevokedAt != nil
}

// IsValid returns true if the session is neither expired nor revoked.
func (s *Session) IsValid() bool {
	return !s.IsExpired() && !s.IsRevoked()
}
