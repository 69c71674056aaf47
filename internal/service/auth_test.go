package service

import (
	"context"
	"encoding/hex"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/khatmahq/khatma-server/internal/auth"
	domainerrors "github.com/khatmahq/khatma-server/internal/errors"
	"github.com/khatmahq/khatma-server/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestAuth(t *testing.T) (*AuthService, *SessionService, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "auth-service-test-*")
	require.NoError(t, err)

	dbPath := filepath.Join(tmpDir, "test.db")
	testStore, err := store.New(dbPath, nil)
	require.NoError(t, err)

	keyHex := hex.EncodeToString(make([]byte, 32))
	tokenService, err := auth.NewTokenService(keyHex, 15*time.Minute, 720*time.Hour)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sessionService := NewSessionService(testStore, tokenService, logger)
	authService := NewAuthService(testStore, tokenService, sessionService, logger)

	cleanup := func() {
		testStore.Close()
		os.RemoveAll(tmpDir)
	}

	return authService, sessionService, cleanup
}

func TestRegister_CreatesUserAndSession(t *testing.T) {
	authService, _, cleanup := setupTestAuth(t)
	defer cleanup()
	ctx := context.Background()

	resp, err := authService.Register(ctx, RegisterRequest{
		Email:       "amina@example.com",
		Password:    "correct horse battery",
		DisplayName: "Amina",
	})
	require.NoError(t, err)

	assert.Equal(t, "amina@example.com", resp.User.Email)
	assert.Equal(t, "Amina", resp.User.DisplayName)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "Bearer", resp.TokenType)

	// Password is never stored in the clear.
	assert.NotContains(t, resp.User.PasswordHash, "correct horse")

	// Access token verifies back to the same user.
	user, claims, err := authService.VerifyAccessToken(ctx, resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, user.ID)
	assert.Equal(t, resp.User.ID, claims.UserID)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	authService, _, cleanup := setupTestAuth(t)
	defer cleanup()
	ctx := context.Background()

	req := RegisterRequest{
		Email:       "amina@example.com",
		Password:    "correct horse battery",
		DisplayName: "Amina",
	}
	_, err := authService.Register(ctx, req)
	require.NoError(t, err)

	_, err = authService.Register(ctx, req)
	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domainerrors.CodeAlreadyExists, domainErr.Code)
}

func TestRegister_ValidatesInput(t *testing.T) {
	authService, _, cleanup := setupTestAuth(t)
	defer cleanup()
	ctx := context.Background()

	tests := []struct {
		name string
		req  RegisterRequest
	}{
		{"missing email", RegisterRequest{Password: "long enough pw", DisplayName: "A"}},
		{"bad email", RegisterRequest{Email: "not-an-email", Password: "long enough pw", DisplayName: "A"}},
		{"short password", RegisterRequest{Email: "a@example.com", Password: "short", DisplayName: "A"}},
		{"missing name", RegisterRequest{Email: "a@example.com", Password: "long enough pw"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := authService.Register(ctx, tt.req)
			var domainErr *domainerrors.Error
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, domainerrors.CodeValidation, domainErr.Code)
		})
	}
}

func TestLogin_Flow(t *testing.T) {
	authService, _, cleanup := setupTestAuth(t)
	defer cleanup()
	ctx := context.Background()

	_, err := authService.Register(ctx, RegisterRequest{
		Email:       "amina@example.com",
		Password:    "correct horse battery",
		DisplayName: "Amina",
	})
	require.NoError(t, err)

	deviceInfo := auth.DeviceInfo{Platform: "iOS", ClientName: "Khatma Mobile"}

	resp, err := authService.Login(ctx, LoginRequest{
		Email:      "amina@example.com",
		Password:   "correct horse battery",
		DeviceInfo: deviceInfo,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)

	// Wrong password and unknown email look identical to the caller.
	_, err = authService.Login(ctx, LoginRequest{
		Email:      "amina@example.com",
		Password:   "wrong password!",
		DeviceInfo: deviceInfo,
	})
	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domainerrors.CodeInvalidCredentials, domainErr.Code)

	_, err = authService.Login(ctx, LoginRequest{
		Email:      "nobody@example.com",
		Password:   "whatever password",
		DeviceInfo: deviceInfo,
	})
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domainerrors.CodeInvalidCredentials, domainErr.Code)
}

func TestRefreshTokens_RotatesRefreshToken(t *testing.T) {
	authService, _, cleanup := setupTestAuth(t)
	defer cleanup()
	ctx := context.Background()

	registered, err := authService.Register(ctx, RegisterRequest{
		Email:       "amina@example.com",
		Password:    "correct horse battery",
		DisplayName: "Amina",
	})
	require.NoError(t, err)

	refreshed, err := authService.RefreshTokens(ctx, RefreshRequest{
		RefreshToken: registered.RefreshToken,
	})
	require.NoError(t, err)
	assert.NotEqual(t, registered.RefreshToken, refreshed.RefreshToken)
	assert.Equal(t, registered.SessionID, refreshed.SessionID)

	// The old refresh token is dead after rotation.
	_, err = authService.RefreshTokens(ctx, RefreshRequest{
		RefreshToken: registered.RefreshToken,
	})
	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domainerrors.CodeTokenExpired, domainErr.Code)
}

func TestLogout_InvalidatesSession(t *testing.T) {
	authService, _, cleanup := setupTestAuth(t)
	defer cleanup()
	ctx := context.Background()

	registered, err := authService.Register(ctx, RegisterRequest{
		Email:       "amina@example.com",
		Password:    "correct horse battery",
		DisplayName: "Amina",
	})
	require.NoError(t, err)

	require.NoError(t, authService.Logout(ctx, registered.SessionID))

	_, err = authService.RefreshTokens(ctx, RefreshRequest{
		RefreshToken: registered.RefreshToken,
	})
	assert.Error(t, err)
}
