package adapters

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"gym_backend/internal/feature/auth/domain/entity"
	"gym_backend/internal/feature/auth/usecase"
)

// userGorm is the UserRepository backed by a SQL database through GORM.
// The unique index on email makes Create an atomic check-and-insert.
// The *gorm.DB must be opened with TranslateError enabled.
type userGorm struct {
	db *gorm.DB
}

// Compile-time check to ensure userGorm implements UserRepository.
var _ usecase.UserRepository = (*userGorm)(nil)

// NewUserGorm creates a new instance of userGorm.
func NewUserGorm(db *gorm.DB) *userGorm {
	return &userGorm{db: db}
}

// Create inserts the user. A duplicate email yields usecase.ErrEmailAlreadyExists.
func (r *userGorm) Create(ctx context.Context, u *entity.User) error {
	if u == nil {
		return errors.New("user is nil")
	}

	now := time.Now()
	u.IsActive = true
	u.CreatedAt = now
	u.UpdatedAt = now

	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return usecase.ErrEmailAlreadyExists
		}
		return err
	}
	return nil
}

// FindByEmail retrieves a user by exact email.
// It returns usecase.ErrUserNotFound if there is none.
func (r *userGorm) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	var u entity.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// FindByID retrieves a user by ID.
// It returns usecase.ErrUserNotFound if there is none.
func (r *userGorm) FindByID(ctx context.Context, id uint) (*entity.User, error) {
	var u entity.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}
