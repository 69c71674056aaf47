package service

import (
	"context"
	"testing"

	"github.com/khatmahq/khatma-server/internal/domain"
	domainerrors "github.com/khatmahq/khatma-server/internal/errors"
	"github.com/khatmahq/khatma-server/internal/quran"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateJourney_OwnerMembership(t *testing.T) {
	svcs, cleanup := setupTestServices(t)
	defer cleanup()
	ctx := context.Background()

	createTestUser(t, svcs.store, "user-1", "amina@example.com", "Amina")

	journey, err := svcs.journeys.CreateJourney(ctx, "user-1", CreateJourneyRequest{
		Name:        "Ramadan Khatma",
		Description: "Finish together before Eid",
	})
	require.NoError(t, err)

	assert.Equal(t, "Ramadan Khatma", journey.Name)
	assert.Equal(t, "user-1", journey.CreatedBy)
	assert.Equal(t, quran.TotalVerses, journey.Stats.TotalVerses)
	assert.Equal(t, 0, journey.Stats.VersesCompleted)

	member, err := svcs.journeys.GetMember(ctx, journey.ID, "user-1")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleOwner, member.Role)
	assert.Equal(t, "Amina", member.DisplayName)
}

func TestCreateJourney_ValidatesName(t *testing.T) {
	svcs, cleanup := setupTestServices(t)
	defer cleanup()

	createTestUser(t, svcs.store, "user-1", "amina@example.com", "Amina")

	_, err := svcs.journeys.CreateJourney(context.Background(), "user-1", CreateJourneyRequest{})
	require.Error(t, err)

	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domainerrors.CodeValidation, domainErr.Code)
}

func TestGetJourney_PrivateHiddenFromNonMembers(t *testing.T) {
	svcs, cleanup := setupTestServices(t)
	defer cleanup()
	ctx := context.Background()

	createTestUser(t, svcs.store, "user-1", "amina@example.com", "Amina")
	createTestUser(t, svcs.store, "user-2", "bilal@example.com", "Bilal")

	journey, err := svcs.journeys.CreateJourney(ctx, "user-1", CreateJourneyRequest{
		Name:      "Family Khatma",
		IsPrivate: true,
	})
	require.NoError(t, err)

	// Owner can see it.
	got, err := svcs.journeys.GetJourney(ctx, journey.ID, "user-1")
	require.NoError(t, err)
	assert.Equal(t, journey.ID, got.ID)

	// Non-member gets not-found, not forbidden.
	_, err = svcs.journeys.GetJourney(ctx, journey.ID, "user-2")
	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domainerrors.CodeNotFound, domainErr.Code)
}

func TestUpdateJourney_RequiresManageRole(t *testing.T) {
	svcs, cleanup := setupTestServices(t)
	defer cleanup()
	ctx := context.Background()

	createTestUser(t, svcs.store, "user-1", "amina@example.com", "Amina")
	createTestUser(t, svcs.store, "user-2", "bilal@example.com", "Bilal")

	journey := createTestJourney(t, svcs, "user-1", "Khatma")

	member := &domain.JourneyMember{
		JourneyID:   journey.ID,
		UserID:      "user-2",
		DisplayName: "Bilal",
		Role:        domain.RoleMember,
		JoinedAt:    journey.CreatedAt,
	}
	require.NoError(t, svcs.store.AddMember(ctx, member))

	newName := "Renamed"
	_, err := svcs.journeys.UpdateJourney(ctx, journey.ID, "user-2", UpdateJourneyRequest{Name: &newName})
	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domainerrors.CodeForbidden, domainErr.Code)

	updated, err := svcs.journeys.UpdateJourney(ctx, journey.ID, "user-1", UpdateJourneyRequest{Name: &newName})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
}

func TestListJourneys_MostRecentActivityFirst(t *testing.T) {
	svcs, cleanup := setupTestServices(t)
	defer cleanup()
	ctx := context.Background()

	createTestUser(t, svcs.store, "user-1", "amina@example.com", "Amina")

	first := createTestJourney(t, svcs, "user-1", "First")
	second := createTestJourney(t, svcs, "user-1", "Second")

	// Logging a reading on the first journey makes it the most recent.
	_, err := svcs.readings.LogReading(ctx, first.ID, "user-1", LogReadingRequest{
		Start:  "1:1",
		End:    "1:7",
		ReadBy: []string{"user-1"},
	})
	require.NoError(t, err)

	journeys, err := svcs.journeys.ListJourneys(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, journeys, 2)
	assert.Equal(t, first.ID, journeys[0].ID)
	assert.Equal(t, second.ID, journeys[1].ID)
}

func TestListMembers_RequiresMembership(t *testing.T) {
	svcs, cleanup := setupTestServices(t)
	defer cleanup()
	ctx := context.Background()

	createTestUser(t, svcs.store, "user-1", "amina@example.com", "Amina")
	createTestUser(t, svcs.store, "user-2", "bilal@example.com", "Bilal")

	journey := createTestJourney(t, svcs, "user-1", "Khatma")

	_, err := svcs.journeys.ListMembers(ctx, journey.ID, "user-2")
	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domainerrors.CodeForbidden, domainErr.Code)

	members, err := svcs.journeys.ListMembers(ctx, journey.ID, "user-1")
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "user-1", members[0].UserID)
}
