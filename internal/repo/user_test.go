package repo_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okuznetsov/trip-planner/backend/internal/domain"
	"github.com/okuznetsov/trip-planner/backend/internal/repo"
)

func TestUserRepo_Create(t *testing.T) {
	tx := newTestTx(t)
	r := repo.NewUserRepo(tx)

	email := uuid.NewString() + "@example.com"
	got, err := r.Create(context.Background(), domain.User{
		Username:     "oleg",
		Email:        email,
		PasswordHash: "$2a$10$hash",
	})

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, got.ID)
	assert.Equal(t, "oleg", got.Username)
	assert.Equal(t, email, got.Email)
	assert.Equal(t, domain.RoleUser, got.Role, "role defaults to user")
	assert.False(t, got.CreatedAt.IsZero())
}

func TestUserRepo_Create_DuplicateEmail(t *testing.T) {
	tx := newTestTx(t)
	r := repo.NewUserRepo(tx)
	ctx := context.Background()

	u := domain.User{Username: "oleg", Email: uuid.NewString() + "@example.com", PasswordHash: "x"}
	_, err := r.Create(ctx, u)
	require.NoError(t, err)

	_, err = r.Create(ctx, u)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestUserRepo_GetByEmail(t *testing.T) {
	tx := newTestTx(t)
	r := repo.NewUserRepo(tx)
	ctx := context.Background()

	created, err := r.Create(ctx, domain.User{
		Username:     "admin",
		Email:        uuid.NewString() + "@example.com",
		PasswordHash: "x",
		Role:         domain.RoleAdmin,
	})
	require.NoError(t, err)

	got, err := r.GetByEmail(ctx, created.Email)

	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, domain.RoleAdmin, got.Role)
}

func TestUserRepo_GetByEmail_NotFound(t *testing.T) {
	tx := newTestTx(t)
	r := repo.NewUserRepo(tx)

	_, err := r.GetByEmail(context.Background(), "missing@example.com")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUserRepo_GetByID_NotFound(t *testing.T) {
	tx := newTestTx(t)
	r := repo.NewUserRepo(tx)

	_, err := r.GetByID(context.Background(), uuid.New())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}
