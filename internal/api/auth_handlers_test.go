package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister_Success(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	w := doJSON(t, server, http.MethodPost, "/api/v1/auth/register", "", map[string]any{
		"email":        "amina@example.com",
		"password":     "SecurePassword123!",
		"display_name": "Amina",
	})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decodeBody[AuthResponse](t, w)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "amina@example.com", resp.User.Email)
	assert.Equal(t, "Amina", resp.User.DisplayName)
	assert.Positive(t, resp.ExpiresIn)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	body := map[string]any{
		"email":        "amina@example.com",
		"password":     "SecurePassword123!",
		"display_name": "Amina",
	}

	w := doJSON(t, server, http.MethodPost, "/api/v1/auth/register", "", body)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, server, http.MethodPost, "/api/v1/auth/register", "", body)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRegister_ValidationErrors(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	tests := []struct {
		name string
		body map[string]any
	}{
		{
			name: "invalid email",
			body: map[string]any{"email": "nope", "password": "SecurePassword123!", "display_name": "A"},
		},
		{
			name: "short password",
			body: map[string]any{"email": "a@example.com", "password": "short", "display_name": "A"},
		},
		{
			name: "missing display name",
			body: map[string]any{"email": "a@example.com", "password": "SecurePassword123!"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, server, http.MethodPost, "/api/v1/auth/register", "", tt.body)
			assert.GreaterOrEqual(t, w.Code, 400)
			assert.Less(t, w.Code, 500)
		})
	}
}

func TestLogin_Success(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	w := doJSON(t, server, http.MethodPost, "/api/v1/auth/register", "", map[string]any{
		"email":        "amina@example.com",
		"password":     "SecurePassword123!",
		"display_name": "Amina",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, server, http.MethodPost, "/api/v1/auth/login", "", map[string]any{
		"email":    "amina@example.com",
		"password": "SecurePassword123!",
	})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decodeBody[AuthResponse](t, w)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "amina@example.com", resp.User.Email)
}

func TestLogin_WrongPassword(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	w := doJSON(t, server, http.MethodPost, "/api/v1/auth/register", "", map[string]any{
		"email":        "amina@example.com",
		"password":     "SecurePassword123!",
		"display_name": "Amina",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, server, http.MethodPost, "/api/v1/auth/login", "", map[string]any{
		"email":    "amina@example.com",
		"password": "WrongPassword!",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Unknown email gets the same answer as a bad password.
	w = doJSON(t, server, http.MethodPost, "/api/v1/auth/login", "", map[string]any{
		"email":    "nobody@example.com",
		"password": "WrongPassword!",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRefresh_RotatesTokens(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	w := doJSON(t, server, http.MethodPost, "/api/v1/auth/register", "", map[string]any{
		"email":        "amina@example.com",
		"password":     "SecurePassword123!",
		"display_name": "Amina",
	})
	require.Equal(t, http.StatusOK, w.Code)
	first := decodeBody[AuthResponse](t, w)

	w = doJSON(t, server, http.MethodPost, "/api/v1/auth/refresh", "", map[string]any{
		"refresh_token": first.RefreshToken,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	second := decodeBody[AuthResponse](t, w)

	assert.NotEmpty(t, second.AccessToken)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	// The old refresh token is dead after rotation.
	w = doJSON(t, server, http.MethodPost, "/api/v1/auth/refresh", "", map[string]any{
		"refresh_token": first.RefreshToken,
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
