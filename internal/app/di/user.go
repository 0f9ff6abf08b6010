package di

import (
	"time"

	authadapters "gym_backend/internal/feature/auth/adapters"
	"gym_backend/internal/feature/auth/usecase"
	"gym_backend/internal/platform/cache"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// RedisNamespace returns the key segment this process uses in Redis. With a
// database the users outlive the process, so the shared keyspace is used.
// Without one, user IDs start over at 1 on every start, and a fresh namespace
// keeps the cache and sessions of an earlier run out of reach.
func RedisNamespace(db *gorm.DB) string {
	if db != nil {
		return ""
	}
	return uuid.NewString()
}

func namespaced(base, namespace string) string {
	if namespace == "" {
		return base
	}
	return base + ":" + namespace
}

// NewUserRepository picks the database store when db is set and the in-memory
// store otherwise, then wraps it with the Redis lookup cache when rdb is set.
func NewUserRepository(db *gorm.DB, rdb *redis.Client, cacheTTL time.Duration, namespace string) usecase.UserRepository {
	var repo usecase.UserRepository
	if db != nil {
		repo = authadapters.NewUserGorm(db)
	} else {
		repo = authadapters.NewUserMemory()
	}

	if rdb == nil {
		return repo
	}
	return cache.NewCachingUserRepository(rdb, cacheTTL, repo, namespaced("users", namespace))
}
