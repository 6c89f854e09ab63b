package database_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/diillson/user-service-go/internal/adapter/database"
	"github.com/diillson/user-service-go/internal/domain/model"
	"github.com/diillson/user-service-go/internal/domain/repository"
	"github.com/diillson/user-service-go/internal/testutils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) *database.UserRepository {
	db := testutils.SetupTestDB(t)
	return database.NewUserRepository(db, testutils.TestLogger(t))
}

func newEntity(username, email string) *model.UserEntity {
	return &model.UserEntity{
		Name:     "Test User",
		Username: username,
		Email:    email,
		Password: "$2a$10$somebcrypthash",
		Role:     model.RoleUser,
	}
}

func TestUserRepository_Create(t *testing.T) {
	repo := newTestRepo(t)
	ctx, cancel := testutils.ContextWithTimeout(t)
	defer cancel()

	t.Run("assigns id and timestamps on insert", func(t *testing.T) {
		entity := newEntity("maria", "maria@example.com")
		require.NoError(t, repo.Create(ctx, entity))

		_, err := uuid.Parse(entity.ID)
		assert.NoError(t, err)
		assert.False(t, entity.CreatedAt.IsZero())
		assert.False(t, entity.UpdatedAt.IsZero())
	})

	t.Run("keeps a caller-provided id", func(t *testing.T) {
		id := uuid.NewString()
		entity := newEntity("joao", "joao@example.com")
		entity.ID = id

		require.NoError(t, repo.Create(ctx, entity))
		assert.Equal(t, id, entity.ID)
	})

	t.Run("duplicated username maps to conflict", func(t *testing.T) {
		entity := newEntity("maria", "another@example.com")
		err := repo.Create(ctx, entity)
		require.ErrorIs(t, err, repository.ErrUserConflict)
	})

	t.Run("duplicated email maps to conflict", func(t *testing.T) {
		entity := newEntity("maria2", "maria@example.com")
		err := repo.Create(ctx, entity)
		require.ErrorIs(t, err, repository.ErrUserConflict)
	})
}

func TestUserRepository_FindByID(t *testing.T) {
	repo := newTestRepo(t)
	ctx, cancel := testutils.ContextWithTimeout(t)
	defer cancel()

	entity := newEntity("maria", "maria@example.com")
	require.NoError(t, repo.Create(ctx, entity))

	t.Run("finds existing user", func(t *testing.T) {
		found, err := repo.FindByID(ctx, entity.ID)
		require.NoError(t, err)
		assert.Equal(t, entity.Username, found.Username)
		assert.Equal(t, entity.Email, found.Email)
	})

	t.Run("unknown id", func(t *testing.T) {
		found, err := repo.FindByID(ctx, uuid.NewString())
		require.ErrorIs(t, err, repository.ErrUserNotFound)
		assert.Nil(t, found)
	})
}

func TestUserRepository_FindByUsername(t *testing.T) {
	repo := newTestRepo(t)
	ctx, cancel := testutils.ContextWithTimeout(t)
	defer cancel()

	entity := newEntity("maria", "maria@example.com")
	require.NoError(t, repo.Create(ctx, entity))

	t.Run("finds existing user", func(t *testing.T) {
		found, err := repo.FindByUsername(ctx, "maria")
		require.NoError(t, err)
		assert.Equal(t, entity.ID, found.ID)
	})

	t.Run("unknown username", func(t *testing.T) {
		found, err := repo.FindByUsername(ctx, "ghost")
		require.ErrorIs(t, err, repository.ErrUserNotFound)
		assert.Nil(t, found)
	})
}

func TestUserRepository_FindByUsernameOrEmail(t *testing.T) {
	repo := newTestRepo(t)
	ctx, cancel := testutils.ContextWithTimeout(t)
	defer cancel()

	entity := newEntity("maria", "maria@example.com")
	require.NoError(t, repo.Create(ctx, entity))

	t.Run("matches by username", func(t *testing.T) {
		found, err := repo.FindByUsernameOrEmail(ctx, "maria", "outro@example.com")
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, entity.ID, found.ID)
	})

	t.Run("matches by email", func(t *testing.T) {
		found, err := repo.FindByUsernameOrEmail(ctx, "outra", "maria@example.com")
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, entity.ID, found.ID)
	})

	t.Run("no match is not an error", func(t *testing.T) {
		found, err := repo.FindByUsernameOrEmail(ctx, "outra", "outro@example.com")
		require.NoError(t, err)
		assert.Nil(t, found)
	})
}

func TestUserRepository_List(t *testing.T) {
	repo := newTestRepo(t)
	ctx, cancel := testutils.ContextWithTimeout(t)
	defer cancel()

	for i := 0; i < 5; i++ {
		entity := newEntity(fmt.Sprintf("user%d", i), fmt.Sprintf("user%d@example.com", i))
		require.NoError(t, repo.Create(ctx, entity))
		time.Sleep(2 * time.Millisecond) // garante created_at distintos
	}

	t.Run("paginates in creation order", func(t *testing.T) {
		page, err := repo.List(ctx, 2, 0)
		require.NoError(t, err)
		require.Len(t, page, 2)
		assert.Equal(t, "user0", page[0].Username)
		assert.Equal(t, "user1", page[1].Username)

		page, err = repo.List(ctx, 2, 2)
		require.NoError(t, err)
		require.Len(t, page, 2)
		assert.Equal(t, "user2", page[0].Username)
	})

	t.Run("zero limit returns no rows", func(t *testing.T) {
		page, err := repo.List(ctx, 0, 0)
		require.NoError(t, err)
		assert.Empty(t, page)
	})

	t.Run("offset beyond the end returns empty", func(t *testing.T) {
		page, err := repo.List(ctx, 10, 100)
		require.NoError(t, err)
		assert.Empty(t, page)
	})
}

func TestUserRepository_Update(t *testing.T) {
	repo := newTestRepo(t)
	ctx, cancel := testutils.ContextWithTimeout(t)
	defer cancel()

	entity := newEntity("maria", "maria@example.com")
	require.NoError(t, repo.Create(ctx, entity))

	t.Run("persists modified fields", func(t *testing.T) {
		entity.Email = "novo@example.com"
		entity.Role = model.RoleAdmin
		require.NoError(t, repo.Update(ctx, entity))

		found, err := repo.FindByID(ctx, entity.ID)
		require.NoError(t, err)
		assert.Equal(t, "novo@example.com", found.Email)
		assert.Equal(t, model.RoleAdmin, found.Role)
	})

	t.Run("unique violation maps to conflict", func(t *testing.T) {
		other := newEntity("joao", "joao@example.com")
		require.NoError(t, repo.Create(ctx, other))

		other.Username = "maria"
		err := repo.Update(ctx, other)
		require.ErrorIs(t, err, repository.ErrUserConflict)
	})
}

func TestUserRepository_Delete(t *testing.T) {
	repo := newTestRepo(t)
	ctx, cancel := testutils.ContextWithTimeout(t)
	defer cancel()

	entity := newEntity("maria", "maria@example.com")
	require.NoError(t, repo.Create(ctx, entity))

	t.Run("removes the row", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, entity.ID))

		_, err := repo.FindByID(ctx, entity.ID)
		require.ErrorIs(t, err, repository.ErrUserNotFound)
	})

	t.Run("second delete reports not found", func(t *testing.T) {
		err := repo.Delete(ctx, entity.ID)
		require.ErrorIs(t, err, repository.ErrUserNotFound)
	})
}

func TestUserRepository_DiagnoseUserStorage(t *testing.T) {
	repo := newTestRepo(t)
	ctx, cancel := testutils.ContextWithTimeout(t)
	defer cancel()

	entity := newEntity("maria", "maria@example.com")
	require.NoError(t, repo.Create(ctx, entity))

	report, err := repo.DiagnoseUserStorage(ctx, "maria")
	require.NoError(t, err)
	assert.Contains(t, report, entity.ID)
	assert.Contains(t, report, "maria@example.com")
	assert.Contains(t, report, "sqlite")
}
