package adapters

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"gym_backend/internal/feature/auth/domain/entity"
	"gym_backend/internal/feature/auth/usecase"
)

// setupTestDB prepares an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "failed to initialize test database")

	// Every pooled connection to ":memory:" would open its own empty database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(Models()...)
	require.NoError(t, err, "failed to migrate tables")

	return db
}

func TestNewUserGorm(t *testing.T) {
	db := setupTestDB(t)

	repo := NewUserGorm(db)

	assert.NotNil(t, repo, "repository is nil")
	assert.NotNil(t, repo.db, "database connection is nil")
}

func TestUserGorm_Create(t *testing.T) {
	t.Run("successful user creation", func(t *testing.T) {
		repo := NewUserGorm(setupTestDB(t))

		user := &entity.User{
			Email:        "test@example.com",
			PasswordHash: "hashed_password",
			FirstName:    strPtr("Test"),
		}

		err := repo.Create(context.Background(), user)

		assert.NoError(t, err, "failed to create user")
		assert.Equal(t, uint(1), user.ID)
		assert.True(t, user.IsActive)
		assert.False(t, user.CreatedAt.IsZero(), "CreatedAt is not set")
		assert.Equal(t, user.CreatedAt, user.UpdatedAt)
	})

	t.Run("duplicate email error", func(t *testing.T) {
		repo := NewUserGorm(setupTestDB(t))

		err := repo.Create(context.Background(), &entity.User{Email: "duplicate@example.com", PasswordHash: "p1"})
		require.NoError(t, err, "failed to create first user")

		err = repo.Create(context.Background(), &entity.User{Email: "duplicate@example.com", PasswordHash: "p2"})

		assert.ErrorIs(t, err, usecase.ErrEmailAlreadyExists)
	})

	t.Run("nil user error", func(t *testing.T) {
		repo := NewUserGorm(setupTestDB(t))

		err := repo.Create(context.Background(), nil)

		assert.Error(t, err, "should return error for nil user")
	})
}

func TestUserGorm_FindByEmail(t *testing.T) {
	t.Run("find user by email successfully", func(t *testing.T) {
		repo := NewUserGorm(setupTestDB(t))

		expected := &entity.User{
			Email:        "find@example.com",
			PasswordHash: "hashed_password",
			FirstName:    strPtr("Find"),
			LastName:     strPtr("Me"),
		}
		require.NoError(t, repo.Create(context.Background(), expected))

		found, err := repo.FindByEmail(context.Background(), "find@example.com")

		require.NoError(t, err, "failed to find user")
		assert.Equal(t, expected.ID, found.ID)
		assert.Equal(t, expected.Email, found.Email)
		assert.Equal(t, expected.PasswordHash, found.PasswordHash)
		assert.Equal(t, "Find", *found.FirstName)
		assert.Equal(t, "Me", *found.LastName)
		assert.True(t, found.IsActive)
	})

	t.Run("email not found error", func(t *testing.T) {
		repo := NewUserGorm(setupTestDB(t))

		found, err := repo.FindByEmail(context.Background(), "notfound@example.com")

		assert.ErrorIs(t, err, usecase.ErrUserNotFound)
		assert.Nil(t, found, "user should be nil")
	})

	t.Run("find correct user when multiple users exist", func(t *testing.T) {
		repo := NewUserGorm(setupTestDB(t))

		for _, email := range []string{"user1@example.com", "user2@example.com", "user3@example.com"} {
			require.NoError(t, repo.Create(context.Background(), &entity.User{Email: email, PasswordHash: "p"}))
		}

		found, err := repo.FindByEmail(context.Background(), "user2@example.com")

		require.NoError(t, err)
		assert.Equal(t, uint(2), found.ID)
	})
}

func TestUserGorm_FindByID(t *testing.T) {
	repo := NewUserGorm(setupTestDB(t))

	user := &entity.User{Email: "byid@example.com", PasswordHash: "p"}
	require.NoError(t, repo.Create(context.Background(), user))

	found, err := repo.FindByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, "byid@example.com", found.Email)
	assert.Nil(t, found.FirstName)

	_, err = repo.FindByID(context.Background(), 999)
	assert.ErrorIs(t, err, usecase.ErrUserNotFound)
}
