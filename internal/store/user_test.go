package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khatmahq/khatma-server/internal/domain"
	"github.com/khatmahq/khatma-server/internal/store"
)

func newTestUser(id, email string) *domain.User {
	user := &domain.User{
		Email:       email,
		DisplayName: "Test User",
	}
	user.ID = id
	user.InitTimestamps()
	return user
}

func TestCreateAndGetUser(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, s.CreateUser(ctx, newTestUser("user-1", "amina@example.com")))

	got, err := s.GetUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "amina@example.com", got.Email)

	_, err = s.GetUser(ctx, "user-missing")
	assert.ErrorIs(t, err, store.ErrUserNotFound)
}

func TestGetUserByEmailCaseInsensitive(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, s.CreateUser(ctx, newTestUser("user-1", "Amina@Example.com")))

	got, err := s.GetUserByEmail(ctx, "amina@example.COM")
	require.NoError(t, err)
	assert.Equal(t, "user-1", got.ID)
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, s.CreateUser(ctx, newTestUser("user-1", "amina@example.com")))

	err := s.CreateUser(ctx, newTestUser("user-2", "AMINA@example.com"))
	assert.ErrorIs(t, err, store.ErrEmailExists)
}

func TestUpdateUser(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	user := newTestUser("user-1", "amina@example.com")
	require.NoError(t, s.CreateUser(ctx, user))

	user.DisplayName = "Amina"
	require.NoError(t, s.UpdateUser(ctx, user))

	got, err := s.GetUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "Amina", got.DisplayName)
}

func TestGetUsersByIDs(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, s.CreateUser(ctx, newTestUser("user-1", "a@example.com")))
	require.NoError(t, s.CreateUser(ctx, newTestUser("user-2", "b@example.com")))

	users, err := s.GetUsersByIDs(ctx, []string{"user-1", "user-2", "user-missing"})
	require.NoError(t, err)
	assert.Len(t, users, 2)
	assert.Contains(t, users, "user-1")
	assert.NotContains(t, users, "user-missing")
}
