package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khatmahq/khatma-server/internal/service"
)

func TestCreateInvite_Success(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	_, token := createTestUserWithToken(t, server, "amina@example.com", "Amina")
	journeyID := createJourneyForTest(t, server, token, "Family Khatma")

	w := doJSON(t, server, http.MethodPost, "/api/v1/journeys/"+journeyID+"/invites", token, map[string]any{})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	invite := decodeBody[InviteItem](t, w)
	assert.NotEmpty(t, invite.Code)
	assert.Equal(t, journeyID, invite.JourneyID)
	assert.Contains(t, invite.URL, invite.Code)
	assert.True(t, invite.ExpiresAt.After(invite.CreatedAt))
}

func TestCreateInvite_MemberForbidden(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	_, ownerToken := createTestUserWithToken(t, server, "amina@example.com", "Amina")
	_, memberToken := createTestUserWithToken(t, server, "bilal@example.com", "Bilal")
	journeyID := createJourneyForTest(t, server, ownerToken, "Family Khatma")

	// Join as a regular member, then try to mint an invite.
	w := doJSON(t, server, http.MethodPost, "/api/v1/journeys/"+journeyID+"/invites", ownerToken, map[string]any{})
	require.Equal(t, http.StatusOK, w.Code)
	invite := decodeBody[InviteItem](t, w)

	w = doJSON(t, server, http.MethodPost, "/api/v1/invites/"+invite.Code+"/claim", memberToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, server, http.MethodPost, "/api/v1/journeys/"+journeyID+"/invites", memberToken, map[string]any{})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestGetInviteDetails_Public(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	_, token := createTestUserWithToken(t, server, "amina@example.com", "Amina")
	journeyID := createJourneyForTest(t, server, token, "Family Khatma")

	w := doJSON(t, server, http.MethodPost, "/api/v1/journeys/"+journeyID+"/invites", token, map[string]any{})
	require.Equal(t, http.StatusOK, w.Code)
	invite := decodeBody[InviteItem](t, w)

	// No auth header at all.
	w = doJSON(t, server, http.MethodGet, "/api/v1/invites/"+invite.Code, "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	details := decodeBody[service.InviteDetailsResponse](t, w)
	assert.Equal(t, "Family Khatma", details.JourneyName)
	assert.Equal(t, "Amina", details.InvitedBy)
	assert.True(t, details.Valid)
}

func TestClaimInvite_SingleUse(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	_, ownerToken := createTestUserWithToken(t, server, "amina@example.com", "Amina")
	_, firstToken := createTestUserWithToken(t, server, "bilal@example.com", "Bilal")
	_, secondToken := createTestUserWithToken(t, server, "yusuf@example.com", "Yusuf")
	journeyID := createJourneyForTest(t, server, ownerToken, "Family Khatma")

	w := doJSON(t, server, http.MethodPost, "/api/v1/journeys/"+journeyID+"/invites", ownerToken, map[string]any{})
	require.Equal(t, http.StatusOK, w.Code)
	invite := decodeBody[InviteItem](t, w)

	w = doJSON(t, server, http.MethodPost, "/api/v1/invites/"+invite.Code+"/claim", firstToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	member := decodeBody[MemberResponse](t, w)
	assert.Equal(t, "member", member.Role)

	// A claimed invite cannot be used again.
	w = doJSON(t, server, http.MethodPost, "/api/v1/invites/"+invite.Code+"/claim", secondToken, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRevokeInvite(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	_, token := createTestUserWithToken(t, server, "amina@example.com", "Amina")
	journeyID := createJourneyForTest(t, server, token, "Family Khatma")

	w := doJSON(t, server, http.MethodPost, "/api/v1/journeys/"+journeyID+"/invites", token, map[string]any{})
	require.Equal(t, http.StatusOK, w.Code)
	invite := decodeBody[InviteItem](t, w)

	w = doJSON(t, server, http.MethodDelete, "/api/v1/journeys/"+journeyID+"/invites/"+invite.ID, token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, server, http.MethodGet, "/api/v1/invites/"+invite.Code, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, server, http.MethodGet, "/api/v1/journeys/"+journeyID+"/invites", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decodeBody[struct {
		Invites []InviteItem `json:"invites"`
	}](t, w)
	assert.Empty(t, list.Invites)
}
