package adapters

import (
	"context"
	"errors"
	"time"

	"gym_backend/internal/feature/auth/domain/entity"
	"gym_backend/internal/feature/auth/usecase"

	"gorm.io/gorm"
)

// sessionGorm stores sessions in the sessions table. Revocation stamps
// revoked_at and keeps the row so a revoked token is told apart from an
// unknown one until the sweeper deletes it after expiry.
type sessionGorm struct {
	db *gorm.DB
}

var _ usecase.SessionRepository = (*sessionGorm)(nil)

// NewSessionGorm creates a session store on db. The sessions table must exist.
func NewSessionGorm(db *gorm.DB) *sessionGorm {
	return &sessionGorm{db: db}
}

// ownedBy narrows a query to the user's sessions that have not been revoked.
// Expiry is checked in Go by activeSessions.
func ownedBy(userID uint) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		return tx.Where("user_id = ?", userID).Where("revoked_at IS NULL")
	}
}

func (r *sessionGorm) Create(ctx context.Context, s *entity.Session) error {
	return r.db.WithContext(ctx).Create(SessionModelFromEntity(s)).Error
}

func (r *sessionGorm) FindByID(ctx context.Context, id string) (*entity.Session, error) {
	var m SessionModel
	err := r.db.WithContext(ctx).Take(&m, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, usecase.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return m.ToEntity(), nil
}

// FindByUserID returns the user's valid sessions, oldest first.
func (r *sessionGorm) FindByUserID(ctx context.Context, userID uint) ([]*entity.Session, error) {
	var models []SessionModel
	if err := r.db.WithContext(ctx).Scopes(ownedBy(userID)).Find(&models).Error; err != nil {
		return nil, err
	}

	all := make([]*entity.Session, 0, len(models))
	for i := range models {
		all = append(all, models[i].ToEntity())
	}
	return activeSessions(all), nil
}

// Revoke keeps the first revocation time when the session was already revoked.
func (r *sessionGorm) Revoke(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m SessionModel
		err := tx.Select("id", "revoked_at").Take(&m, "id = ?", id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return usecase.ErrSessionNotFound
		}
		if err != nil || m.RevokedAt != nil {
			return err
		}
		return tx.Model(&m).Update("revoked_at", time.Now()).Error
	})
}

func (r *sessionGorm) RevokeAllByUserID(ctx context.Context, userID uint) error {
	return r.db.WithContext(ctx).
		Model(&SessionModel{}).
		Scopes(ownedBy(userID)).
		Update("revoked_at", time.Now()).Error
}

func (r *sessionGorm) DeleteExpired(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&SessionModel{}, "expires_at < ?", time.Now())
	return res.RowsAffected, res.Error
}

func (r *sessionGorm) CountByUserID(ctx context.Context, userID uint) (int64, error) {
	active, err := r.FindByUserID(ctx, userID)
	if err != nil {
		return 0, err
	}
	return int64(len(active)), nil
}

func (r *sessionGorm) DeleteOldestByUserID(ctx context.Context, userID uint) error {
	active, err := r.FindByUserID(ctx, userID)
	if err != nil || len(active) == 0 {
		return err
	}
	return r.db.WithContext(ctx).Delete(&SessionModel{}, "id = ?", active[0].ID).Error
}
