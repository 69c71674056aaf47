package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khatmahq/khatma-server/internal/service"
)

func TestGetProfile(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	user, token := createTestUserWithToken(t, server, "amina@example.com", "Amina")

	w := doJSON(t, server, http.MethodGet, "/api/v1/users/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	profile := decodeBody[UserResponse](t, w)
	assert.Equal(t, user.ID, profile.ID)
	assert.Equal(t, "amina@example.com", profile.Email)
	assert.Equal(t, "Amina", profile.DisplayName)
}

func TestUpdateProfile(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	_, token := createTestUserWithToken(t, server, "amina@example.com", "Amina")

	w := doJSON(t, server, http.MethodPatch, "/api/v1/users/me", token, map[string]any{
		"display_name": "Amina K",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	profile := decodeBody[UserResponse](t, w)
	assert.Equal(t, "Amina K", profile.DisplayName)

	// Empty display name is rejected.
	w = doJSON(t, server, http.MethodPatch, "/api/v1/users/me", token, map[string]any{
		"display_name": "",
	})
	assert.GreaterOrEqual(t, w.Code, 400)
	assert.Less(t, w.Code, 500)
}

func TestGetUserStats_NewUser(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	_, token := createTestUserWithToken(t, server, "amina@example.com", "Amina")

	w := doJSON(t, server, http.MethodGet, "/api/v1/users/me/stats", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	stats := decodeBody[service.UserStatsView](t, w)
	assert.Equal(t, 0, stats.CurrentStreak)
	assert.Equal(t, 0, stats.TotalVersesRead)
	assert.False(t, stats.HasReadToday)
}

func TestGetUserStats_AfterReading(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	user, token := createTestUserWithToken(t, server, "amina@example.com", "Amina")
	journeyID := createJourneyForTest(t, server, token, "Family Khatma")

	w := doJSON(t, server, http.MethodPost, "/api/v1/journeys/"+journeyID+"/readings", token, map[string]any{
		"start": "1:1", "end": "1:7", "read_by": []string{user.ID},
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, server, http.MethodGet, "/api/v1/users/me/stats", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	stats := decodeBody[service.UserStatsView](t, w)
	assert.Equal(t, 1, stats.CurrentStreak)
	assert.Equal(t, 7, stats.TotalVersesRead)
	assert.Equal(t, 7, stats.TodayVersesRead)
	assert.True(t, stats.HasReadToday)

	w = doJSON(t, server, http.MethodGet, "/api/v1/users/me/has-read-today", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	result := decodeBody[struct {
		HasReadToday bool `json:"has_read_today"`
	}](t, w)
	assert.True(t, result.HasReadToday)
}

func TestGetUserStats_PeriodWindow(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	user, token := createTestUserWithToken(t, server, "amina@example.com", "Amina")
	journeyID := createJourneyForTest(t, server, token, "Family Khatma")

	w := doJSON(t, server, http.MethodPost, "/api/v1/journeys/"+journeyID+"/readings", token, map[string]any{
		"start": "1:1", "end": "1:7", "read_by": []string{user.ID},
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, server, http.MethodGet, "/api/v1/users/me/stats?period=day", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	stats := decodeBody[service.UserStatsView](t, w)
	require.NotNil(t, stats.Period)
	assert.Equal(t, 7, stats.Period.VersesRead)
	assert.Equal(t, 1, stats.Period.Readings)

	// Without the query parameter no window is computed.
	w = doJSON(t, server, http.MethodGet, "/api/v1/users/me/stats", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	stats = decodeBody[service.UserStatsView](t, w)
	assert.Nil(t, stats.Period)

	// Unknown periods are rejected by parameter validation.
	w = doJSON(t, server, http.MethodGet, "/api/v1/users/me/stats?period=decade", token, nil)
	assert.GreaterOrEqual(t, w.Code, 400)
	assert.Less(t, w.Code, 500)
}
