// Package session stores login sessions in Redis.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gym_backend/internal/feature/auth/domain/entity"
	"gym_backend/internal/feature/auth/usecase"

	"github.com/redis/go-redis/v9"
)

// record is the JSON stored under each session key.
type record struct {
	ID        string     `json:"id"`
	UserID    uint       `json:"userId"`
	UserAgent string     `json:"userAgent,omitempty"`
	IPAddress string     `json:"ipAddress,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	ExpiresAt time.Time  `json:"expiresAt"`
	RevokedAt *time.Time `json:"revokedAt,omitempty"`
}

func toRecord(s *entity.Session) record {
	return record{
		ID:        s.ID,
		UserID:    s.UserID,
		UserAgent: s.UserAgent,
		IPAddress: s.IPAddress,
		CreatedAt: s.CreatedAt,
		ExpiresAt: s.ExpiresAt,
		RevokedAt: s.RevokedAt,
	}
}

func (r record) toEntity() *entity.Session {
	return &entity.Session{
		ID:        r.ID,
		UserID:    r.UserID,
		UserAgent: r.UserAgent,
		IPAddress: r.IPAddress,
		CreatedAt: r.CreatedAt,
		ExpiresAt: r.ExpiresAt,
		RevokedAt: r.RevokedAt,
	}
}

// SessionRedis implements usecase.SessionRepository using Redis.
// Each session lives under its own key with a TTL matching its expiry; a
// per-user sorted set scored by creation time indexes the user's sessions.
type SessionRedis struct {
	client *redis.Client
	prefix string
}

var _ usecase.SessionRepository = (*SessionRedis)(nil)

// NewSessionRedis creates a new SessionRedis instance.
func NewSessionRedis(client *redis.Client, prefix string) *SessionRedis {
	return &SessionRedis{
		client: client,
		prefix: prefix,
	}
}

func (r *SessionRedis) sessionKey(id string) string {
	return fmt.Sprintf("%s:%s", r.prefix, id)
}

func (r *SessionRedis) userSessionsKey(userID uint) string {
	return fmt.Sprintf("%s:user:%d", r.prefix, userID)
}

// Create stores the session and indexes it under its user.
func (r *SessionRedis) Create(ctx context.Context, session *entity.Session) error {
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("create session %s: %w", session.ID, usecase.ErrSessionExpired)
	}

	data, err := json.Marshal(toRecord(session))
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, r.sessionKey(session.ID), data, ttl)
	pipe.ZAdd(ctx, r.userSessionsKey(session.UserID), redis.Z{
		Score:  float64(session.CreatedAt.UnixNano()),
		Member: session.ID,
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

// FindByID retrieves a session by its ID.
func (r *SessionRedis) FindByID(ctx context.Context, id string) (*entity.Session, error) {
	data, err := r.client.Get(ctx, r.sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, usecase.ErrSessionNotFound
		}
		return nil, err
	}
	return decode(data)
}

func decode(data []byte) (*entity.Session, error) {
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return rec.toEntity(), nil
}

// FindByUserID returns the user's valid sessions, oldest first. Index entries
// whose session key has expired are pruned along the way.
func (r *SessionRedis) FindByUserID(ctx context.Context, userID uint) ([]*entity.Session, error) {
	all, err := r.userSessions(ctx, userID)
	if err != nil {
		return nil, err
	}

	var sessions []*entity.Session
	for _, s := range all {
		if s.IsValid() {
			sessions = append(sessions, s)
		}
	}
	return sessions, nil
}

// userSessions loads every indexed session of the user, valid or not.
func (r *SessionRedis) userSessions(ctx context.Context, userID uint) ([]*entity.Session, error) {
	indexKey := r.userSessionsKey(userID)
	ids, err := r.client.ZRange(ctx, indexKey, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.sessionKey(id)
	}
	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	var (
		sessions []*entity.Session
		stale    []any
	)
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			stale = append(stale, ids[i])
			continue
		}
		s, err := decode([]byte(raw))
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}

	if len(stale) > 0 {
		if err := r.client.ZRem(ctx, indexKey, stale...).Err(); err != nil {
			return nil, err
		}
	}
	return sessions, nil
}

// Revoke marks a session as revoked. The key keeps its remaining TTL and an
// already revoked session keeps its first revocation time.
func (r *SessionRedis) Revoke(ctx context.Context, id string) error {
	session, err := r.FindByID(ctx, id)
	if err != nil || session.IsRevoked() {
		return err
	}
	return r.revoke(ctx, session, time.Now())
}

func (r *SessionRedis) revoke(ctx context.Context, session *entity.Session, at time.Time) error {
	session.RevokedAt = &at
	data, err := json.Marshal(toRecord(session))
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	err = r.client.SetArgs(ctx, r.sessionKey(session.ID), data, redis.SetArgs{KeepTTL: true, Mode: "XX"}).Err()
	if errors.Is(err, redis.Nil) {
		// Expired between the read and the write.
		return usecase.ErrSessionNotFound
	}
	return err
}

// RevokeAllByUserID revokes all sessions for a user.
func (r *SessionRedis) RevokeAllByUserID(ctx context.Context, userID uint) error {
	sessions, err := r.userSessions(ctx, userID)
	if err != nil {
		return err
	}

	now := time.Now()
	for _, s := range sessions {
		if s.IsRevoked() {
			continue
		}
		if err := r.revoke(ctx, s, now); err != nil && !errors.Is(err, usecase.ErrSessionNotFound) {
			return err
		}
	}
	return nil
}

// DeleteExpired prunes user index entries whose session key has expired.
// Redis drops the session keys themselves through their TTL.
func (r *SessionRedis) DeleteExpired(ctx context.Context) (int64, error) {
	var removed int64
	iter := r.client.Scan(ctx, 0, r.prefix+":user:*", 100).Iterator()
	for iter.Next(ctx) {
		indexKey := iter.Val()
		ids, err := r.client.ZRange(ctx, indexKey, 0, -1).Result()
		if err != nil {
			return removed, err
		}
		for _, id := range ids {
			exists, err := r.client.Exists(ctx, r.sessionKey(id)).Result()
			if err != nil {
				return removed, err
			}
			if exists == 0 {
				n, err := r.client.ZRem(ctx, indexKey, id).Result()
				if err != nil {
					return removed, err
				}
				removed += n
			}
		}
	}
	return removed, iter.Err()
}

// CountByUserID returns the number of active sessions for a user.
func (r *SessionRedis) CountByUserID(ctx context.Context, userID uint) (int64, error) {
	sessions, err := r.FindByUserID(ctx, userID)
	if err != nil {
		return 0, err
	}
	return int64(len(sessions)), nil
}

// DeleteOldestByUserID deletes the oldest active session for a user.
func (r *SessionRedis) DeleteOldestByUserID(ctx context.Context, userID uint) error {
	sessions, err := r.FindByUserID(ctx, userID)
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		return nil
	}

	oldest := sessions[0]
	pipe := r.client.TxPipeline()
	pipe.Del(ctx, r.sessionKey(oldest.ID))
	pipe.ZRem(ctx, r.userSessionsKey(userID), oldest.ID)
	_, err = pipe.Exec(ctx)
	return err
}
