package service

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/khatmahq/khatma-server/internal/domain"
	"github.com/khatmahq/khatma-server/internal/store"
	"github.com/stretchr/testify/require"
)

// testServices bundles everything the service tests need.
type testServices struct {
	store    *store.Store
	journeys *JourneyService
	readings *ReadingService
	progress *ProgressService
	stats    *StatsService
	invites  *InviteService
	users    *UserService
}

func setupTestServices(t *testing.T) (*testServices, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "khatma-service-test-*")
	require.NoError(t, err)

	dbPath := filepath.Join(tmpDir, "test.db")
	testStore, err := store.New(dbPath, nil)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	svcs := &testServices{
		store:    testStore,
		journeys: NewJourneyService(testStore, logger),
		readings: NewReadingService(testStore, logger),
		progress: NewProgressService(testStore, logger),
		stats:    NewStatsService(testStore, logger),
		invites:  NewInviteService(testStore, logger, "http://localhost:8080"),
		users:    NewUserService(testStore, logger),
	}

	cleanup := func() {
		testStore.Close()
		os.RemoveAll(tmpDir)
	}

	return svcs, cleanup
}

func createTestUser(t *testing.T, s *store.Store, userID, email, name string) *domain.User {
	t.Helper()
	ctx := context.Background()

	user := &domain.User{
		Syncable: domain.Syncable{
			ID: userID,
		},
		Email:        email,
		PasswordHash: "$argon2id$test",
		DisplayName:  name,
		LastLoginAt:  time.Now(),
	}
	user.InitTimestamps()
	require.NoError(t, s.CreateUser(ctx, user))
	return user
}

// createTestJourney creates a journey owned by userID through the service
// so the owner membership record exists.
func createTestJourney(t *testing.T, svcs *testServices, userID, name string) *domain.Journey {
	t.Helper()

	journey, err := svcs.journeys.CreateJourney(context.Background(), userID, CreateJourneyRequest{
		Name: name,
	})
	require.NoError(t, err)
	return journey
}
