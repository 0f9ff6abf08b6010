package adapters

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gym_backend/internal/feature/auth/domain/entity"
	"gym_backend/internal/feature/auth/usecase"
)

func strPtr(s string) *string { return &s }

func TestUserMemory_Create(t *testing.T) {
	t.Run("assigns sequential ids starting at 1", func(t *testing.T) {
		repo := NewUserMemory()
		ctx := context.Background()

		var prev uint
		for i := 0; i < 3; i++ {
			u := &entity.User{Email: fmt.Sprintf("user%d@example.com", i), PasswordHash: "hash"}
			require.NoError(t, repo.Create(ctx, u))
			assert.Greater(t, u.ID, prev, "id must be strictly increasing")
			prev = u.ID
		}
		assert.Equal(t, uint(3), prev)
	})

	t.Run("stamps active flag and equal timestamps", func(t *testing.T) {
		repo := NewUserMemory()
		u := &entity.User{Email: "a@x.com", PasswordHash: "hash"}

		require.NoError(t, repo.Create(context.Background(), u))

		assert.Equal(t, uint(1), u.ID)
		assert.True(t, u.IsActive)
		assert.False(t, u.CreatedAt.IsZero())
		assert.Equal(t, u.CreatedAt, u.UpdatedAt)
	})

	t.Run("duplicate email is rejected and does not consume an id", func(t *testing.T) {
		repo := NewUserMemory()
		ctx := context.Background()

		require.NoError(t, repo.Create(ctx, &entity.User{Email: "dup@example.com"}))
		err := repo.Create(ctx, &entity.User{Email: "dup@example.com"})
		assert.ErrorIs(t, err, usecase.ErrEmailAlreadyExists)

		next := &entity.User{Email: "next@example.com"}
		require.NoError(t, repo.Create(ctx, next))
		assert.Equal(t, uint(2), next.ID)
		assert.Len(t, repo.byID, 2)
	})

	t.Run("email match is exact", func(t *testing.T) {
		repo := NewUserMemory()
		ctx := context.Background()

		require.NoError(t, repo.Create(ctx, &entity.User{Email: "case@example.com"}))
		assert.NoError(t, repo.Create(ctx, &entity.User{Email: "Case@example.com"}))
	})
}

func TestUserMemory_Create_Concurrent(t *testing.T) {
	repo := NewUserMemory()
	ctx := context.Background()

	const workers = 50
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- repo.Create(ctx, &entity.User{Email: "race@example.com"})
		}()
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, usecase.ErrEmailAlreadyExists)
	}
	assert.Equal(t, 1, succeeded, "exactly one concurrent create must win")
	assert.Len(t, repo.byID, 1)
}

func TestUserMemory_FindByEmail(t *testing.T) {
	repo := NewUserMemory()
	ctx := context.Background()

	created := &entity.User{
		Email:        "find@example.com",
		PasswordHash: "hash",
		FirstName:    strPtr("Ada"),
		LastName:     strPtr("Lovelace"),
	}
	require.NoError(t, repo.Create(ctx, created))

	t.Run("returns every stored field", func(t *testing.T) {
		found, err := repo.FindByEmail(ctx, "find@example.com")
		require.NoError(t, err)
		assert.Equal(t, created, found)
	})

	t.Run("unknown email", func(t *testing.T) {
		found, err := repo.FindByEmail(ctx, "missing@example.com")
		assert.ErrorIs(t, err, usecase.ErrUserNotFound)
		assert.Nil(t, found)
	})

	t.Run("returned copy cannot mutate the store", func(t *testing.T) {
		found, err := repo.FindByEmail(ctx, "find@example.com")
		require.NoError(t, err)
		*found.FirstName = "Changed"
		found.Email = "changed@example.com"

		again, err := repo.FindByEmail(ctx, "find@example.com")
		require.NoError(t, err)
		assert.Equal(t, "Ada", *again.FirstName)
	})

	t.Run("caller's record cannot mutate the store after create", func(t *testing.T) {
		*created.FirstName = "Mutated"

		again, err := repo.FindByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "Ada", *again.FirstName)
	})
}

func TestUserMemory_FindByID(t *testing.T) {
	repo := NewUserMemory()
	ctx := context.Background()

	u := &entity.User{Email: "id@example.com"}
	require.NoError(t, repo.Create(ctx, u))

	found, err := repo.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "id@example.com", found.Email)

	_, err = repo.FindByID(ctx, 0)
	assert.ErrorIs(t, err, usecase.ErrUserNotFound)
	_, err = repo.FindByID(ctx, 42)
	assert.ErrorIs(t, err, usecase.ErrUserNotFound)
}
