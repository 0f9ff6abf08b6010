// Package di provides dependency injection factories for creating application components.
package di

import (
	authadapters "gym_backend/internal/feature/auth/adapters"
	"gym_backend/internal/feature/auth/usecase"
	"gym_backend/internal/platform/session"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// NewSessionRepository creates a SessionRepository implementation.
// Redis is preferred, then the database, then process memory.
// Redis keys are placed under namespace, see RedisNamespace.
func NewSessionRepository(rdb *redis.Client, db *gorm.DB, namespace string) usecase.SessionRepository {
	switch {
	case rdb != nil:
		return session.NewSessionRedis(rdb, namespaced("session", namespace))
	case db != nil:
		return authadapters.NewSessionGorm(db)
	default:
		return authadapters.NewSessionMemory()
	}
}
