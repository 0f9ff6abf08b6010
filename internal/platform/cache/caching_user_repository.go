// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/redis/go-redis/v9"

	"gym_backend/internal/feature/auth/domain/entity"
	"gym_backend/internal/feature/auth/usecase"
)

// CachingUserRepository decorates a UserRepository with Redis caching of
// lookups. User records are immutable once created, so entries only expire
// through their TTL. Misses are never cached.
type CachingUserRepository struct {
	inner     usecase.UserRepository
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

var _ usecase.UserRepository = (*CachingUserRepository)(nil)

// NewCachingUserRepository decorates a UserRepository with Redis caching.
// If ttl is 0, it defaults to 5 minutes. If namespace is empty, it uses "users".
// A nil rdb disables caching.
func NewCachingUserRepository(rdb *redis.Client, ttl time.Duration, inner usecase.UserRepository, namespace string) *CachingUserRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if namespace == "" {
		namespace = "users"
	}
	return &CachingUserRepository{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

// Create writes through to the underlying repository.
func (c *CachingUserRepository) Create(ctx context.Context, user *entity.User) error {
	return c.inner.Create(ctx, user)
}

// FindByID checks the cache first, then falls back to the underlying repository.
func (c *CachingUserRepository) FindByID(ctx context.Context, id uint) (*entity.User, error) {
	return c.lookup(ctx, c.idKey(id), func() (*entity.User, error) {
		return c.inner.FindByID(ctx, id)
	})
}

// FindByEmail checks the cache first, then falls back to the underlying repository.
func (c *CachingUserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return c.lookup(ctx, c.emailKey(email), func() (*entity.User, error) {
		return c.inner.FindByEmail(ctx, email)
	})
}

func (c *CachingUserRepository) lookup(ctx context.Context, key string, load func() (*entity.User, error)) (*entity.User, error) {
	if c.rdb == nil {
		return load()
	}

	b, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil && len(b) > 0:
		var u entity.User
		if err := json.Unmarshal(b, &u); err == nil {
			return &u, nil
		}
		// Corrupted entry.
		_ = c.rdb.Del(ctx, key).Err()
	case err != nil && !errors.Is(err, redis.Nil):
		slog.Warn("user cache read failed", "key", key, "error", err)
	}

	u, err := load()
	if err != nil {
		return nil, err
	}

	// Best effort: a failed write only costs a future miss.
	if b, err := json.Marshal(u); err == nil {
		pipe := c.rdb.Pipeline()
		pipe.Set(ctx, c.idKey(u.ID), b, c.ttl)
		pipe.Set(ctx, c.emailKey(u.Email), b, c.ttl)
		if _, err := pipe.Exec(ctx); err != nil {
			slog.Warn("user cache write failed", "user_id", u.ID, "error", err)
		}
	}
	return u, nil
}

func (c *CachingUserRepository) idKey(id uint) string {
	return fmt.Sprintf("%s:id:%d", c.namespace, id)
}

// emailKey escapes the address so that distinct emails never share a key.
func (c *CachingUserRepository) emailKey(email string) string {
	return fmt.Sprintf("%s:email:%s", c.namespace, url.QueryEscape(email))
}
