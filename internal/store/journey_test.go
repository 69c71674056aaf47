package store_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khatmahq/khatma-server/internal/domain"
	"github.com/khatmahq/khatma-server/internal/store"
)

func setupTestStore(t *testing.T) (*store.Store, func()) {
	t.Helper()
	tmpDir, err := os.MkdirTemp("", "khatma-store-test-*")
	require.NoError(t, err)

	dbPath := filepath.Join(tmpDir, "test.db")
	s, err := store.New(dbPath, nil)
	require.NoError(t, err)

	cleanup := func() {
		s.Close()
		os.RemoveAll(tmpDir)
	}
	return s, cleanup
}

func newTestJourney(id, ownerID string) (*domain.Journey, *domain.JourneyMember) {
	journey := &domain.Journey{
		Name:      "Ramadan Khatma",
		CreatedBy: ownerID,
		Stats:     domain.NewJourneyStats(),
	}
	journey.ID = id
	journey.InitTimestamps()

	owner := &domain.JourneyMember{
		JourneyID:   id,
		UserID:      ownerID,
		DisplayName: "Owner",
		Role:        domain.RoleOwner,
		JoinedAt:    time.Now(),
	}
	return journey, owner
}

func TestCreateAndGetJourney(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	journey, owner := newTestJourney("jrny-1", "user-1")

	require.NoError(t, s.CreateJourney(ctx, journey, owner))

	got, err := s.GetJourney(ctx, "jrny-1")
	require.NoError(t, err)
	assert.Equal(t, "Ramadan Khatma", got.Name)
	assert.Equal(t, 6236, got.Stats.TotalVerses)
	assert.Equal(t, 0, got.Stats.VersesCompleted)

	// The owner membership was created in the same transaction.
	member, err := s.GetMember(ctx, "jrny-1", "user-1")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleOwner, member.Role)
}

func TestGetJourneyNotFound(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	_, err := s.GetJourney(context.Background(), "jrny-missing")
	assert.ErrorIs(t, err, store.ErrJourneyNotFound)
}

func TestAddMember(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	journey, owner := newTestJourney("jrny-1", "user-1")
	require.NoError(t, s.CreateJourney(ctx, journey, owner))

	member := &domain.JourneyMember{
		JourneyID:   "jrny-1",
		UserID:      "user-2",
		DisplayName: "Fatima",
		Role:        domain.RoleMember,
		JoinedAt:    time.Now(),
	}
	require.NoError(t, s.AddMember(ctx, member))

	// Adding the same user twice is rejected.
	err := s.AddMember(ctx, member)
	assert.ErrorIs(t, err, store.ErrAlreadyMember)

	members, err := s.ListMembers(ctx, "jrny-1")
	require.NoError(t, err)
	assert.Len(t, members, 2)
}

func TestListJourneysForUser(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	j1, o1 := newTestJourney("jrny-1", "user-1")
	require.NoError(t, s.CreateJourney(ctx, j1, o1))

	j2, o2 := newTestJourney("jrny-2", "user-2")
	require.NoError(t, s.CreateJourney(ctx, j2, o2))

	// user-1 joins jrny-2 as a regular member.
	require.NoError(t, s.AddMember(ctx, &domain.JourneyMember{
		JourneyID: "jrny-2",
		UserID:    "user-1",
		Role:      domain.RoleMember,
		JoinedAt:  time.Now(),
	}))

	journeys, err := s.ListJourneysForUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, journeys, 2)

	journeys, err = s.ListJourneysForUser(ctx, "user-2")
	require.NoError(t, err)
	assert.Len(t, journeys, 1)

	journeys, err = s.ListJourneysForUser(ctx, "user-3")
	require.NoError(t, err)
	assert.Empty(t, journeys)
}

func TestUpdateJourney(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	journey, owner := newTestJourney("jrny-1", "user-1")
	require.NoError(t, s.CreateJourney(ctx, journey, owner))

	journey.Name = "Family Khatma"
	require.NoError(t, s.UpdateJourney(ctx, journey))

	got, err := s.GetJourney(ctx, "jrny-1")
	require.NoError(t, err)
	assert.Equal(t, "Family Khatma", got.Name)

	missing, _ := newTestJourney("jrny-missing", "user-1")
	assert.ErrorIs(t, s.UpdateJourney(ctx, missing), store.ErrJourneyNotFound)
}
