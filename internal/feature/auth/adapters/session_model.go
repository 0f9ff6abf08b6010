package adapters

import (
	"sort"
	"time"
	"unicode/utf8"

	"gym_backend/internal/feature/auth/domain/entity"
)

// SessionModel is the GORM model for the sessions table.
type SessionModel struct {
	ID        string     `gorm:"primaryKey;size:64"`
	UserID    uint       `gorm:"index;not null"`
	UserAgent string     `gorm:"size:512"`
	IPAddress string     `gorm:"size:45"` // IPv6 max length
	CreatedAt time.Time  `gorm:"not null"`
	ExpiresAt time.Time  `gorm:"index;not null"`
	RevokedAt *time.Time `gorm:"index"`
}

// TableName returns the table name for GORM.
func (SessionModel) TableName() string {
	return "sessions"
}

// ToEntity converts the GORM model to a domain entity.
func (m *SessionModel) ToEntity() *entity.Session {
	return &entity.Session{
		ID:        m.ID,
		UserID:    m.UserID,
		UserAgent: m.UserAgent,
		IPAddress: m.IPAddress,
		CreatedAt: m.CreatedAt,
		ExpiresAt: m.ExpiresAt,
		RevokedAt: m.RevokedAt,
	}
}

// SessionModelFromEntity converts a domain entity to a GORM model.
func SessionModelFromEntity(s *entity.Session) *SessionModel {
	return &SessionModel{
		ID:        s.ID,
		UserID:    s.UserID,
		UserAgent: truncate(s.UserAgent, 512),
		IPAddress: s.IPAddress,
		CreatedAt: s.CreatedAt,
		ExpiresAt: s.ExpiresAt,
		RevokedAt: s.RevokedAt,
	}
}

// Models lists every GORM model of the auth feature, for AutoMigrate.
func Models() []any {
	return []any{&entity.User{}, &SessionModel{}}
}

// activeSessions keeps the valid sessions and orders them oldest first,
// breaking creation-time ties by ID. Every session store lists through it.
func activeSessions(all []*entity.Session) []*entity.Session {
	out := make([]*entity.Session, 0, len(all))
	for _, s := range all {
		if s.IsValid() {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
