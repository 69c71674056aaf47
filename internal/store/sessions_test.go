package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khatmahq/khatma-server/internal/domain"
	"github.com/khatmahq/khatma-server/internal/store"
)

func newTestSession(id, userID, tokenHash string, expiresAt time.Time) *domain.Session {
	now := time.Now()
	return &domain.Session{
		ID:               id,
		UserID:           userID,
		RefreshTokenHash: tokenHash,
		ExpiresAt:        expiresAt,
		CreatedAt:        now,
		LastSeenAt:       now,
		Platform:         "iOS",
		ClientName:       "Khatma Mobile",
		ClientVersion:    "1.0.0",
	}
}

func TestCreateAndGetSession(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	session := newTestSession("session_test123", "user_test123", "hashed_token", time.Now().Add(24*time.Hour))

	require.NoError(t, s.CreateSession(ctx, session))

	retrieved, err := s.GetSession(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, session.UserID, retrieved.UserID)
	assert.Equal(t, session.RefreshTokenHash, retrieved.RefreshTokenHash)
	assert.Equal(t, "Khatma Mobile", retrieved.ClientName)
}

func TestGetSession_NotFound(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	_, err := s.GetSession(context.Background(), "session_missing")
	assert.ErrorIs(t, err, store.ErrSessionNotFound)
}

func TestGetSession_Expired(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	session := newTestSession("session_old", "user_1", "stale_token", time.Now().Add(-time.Hour))
	require.NoError(t, s.CreateSession(ctx, session))

	_, err := s.GetSession(ctx, session.ID)
	assert.ErrorIs(t, err, store.ErrSessionExpired)
}

func TestGetSessionByRefreshToken(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	session := newTestSession("session_1", "user_1", "token_hash_abc", time.Now().Add(24*time.Hour))
	require.NoError(t, s.CreateSession(ctx, session))

	retrieved, err := s.GetSessionByRefreshToken(ctx, "token_hash_abc")
	require.NoError(t, err)
	assert.Equal(t, session.ID, retrieved.ID)

	_, err = s.GetSessionByRefreshToken(ctx, "unknown_hash")
	assert.ErrorIs(t, err, store.ErrSessionNotFound)
}

func TestUpdateSession_TokenRotation(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	session := newTestSession("session_1", "user_1", "old_hash", time.Now().Add(24*time.Hour))
	require.NoError(t, s.CreateSession(ctx, session))

	session.RefreshTokenHash = "new_hash"
	require.NoError(t, s.UpdateSession(ctx, session))

	// The new hash resolves, the old one does not.
	retrieved, err := s.GetSessionByRefreshToken(ctx, "new_hash")
	require.NoError(t, err)
	assert.Equal(t, session.ID, retrieved.ID)

	_, err = s.GetSessionByRefreshToken(ctx, "old_hash")
	assert.ErrorIs(t, err, store.ErrSessionNotFound)
}

func TestDeleteSession(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	session := newTestSession("session_1", "user_1", "some_hash", time.Now().Add(24*time.Hour))
	require.NoError(t, s.CreateSession(ctx, session))

	require.NoError(t, s.DeleteSession(ctx, session.ID))

	_, err := s.GetSession(ctx, session.ID)
	assert.ErrorIs(t, err, store.ErrSessionNotFound)

	// The refresh token index is cleaned up too.
	_, err = s.GetSessionByRefreshToken(ctx, "some_hash")
	assert.ErrorIs(t, err, store.ErrSessionNotFound)
}

func TestListUserSessions_SkipsExpired(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, s.CreateSession(ctx, newTestSession("session_live", "user_1", "h1", time.Now().Add(24*time.Hour))))
	require.NoError(t, s.CreateSession(ctx, newTestSession("session_dead", "user_1", "h2", time.Now().Add(-time.Hour))))
	require.NoError(t, s.CreateSession(ctx, newTestSession("session_other", "user_2", "h3", time.Now().Add(24*time.Hour))))

	sessions, err := s.ListUserSessions(ctx, "user_1")
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "session_live", sessions[0].ID)
}

func TestDeleteExpiredSessions(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, s.CreateSession(ctx, newTestSession("session_live", "user_1", "h1", time.Now().Add(24*time.Hour))))
	require.NoError(t, s.CreateSession(ctx, newTestSession("session_dead1", "user_1", "h2", time.Now().Add(-time.Hour))))
	require.NoError(t, s.CreateSession(ctx, newTestSession("session_dead2", "user_2", "h3", time.Now().Add(-2*time.Hour))))

	deleted, err := s.DeleteExpiredSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)

	_, err = s.GetSession(ctx, "session_live")
	assert.NoError(t, err)
}
