package service

import (
	"context"
	"testing"

	domainerrors "github.com/khatmahq/khatma-server/internal/errors"
	"github.com/khatmahq/khatma-server/internal/quran"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetProgress_EmptyJourney(t *testing.T) {
	svcs, cleanup := setupTestServices(t)
	defer cleanup()
	ctx := context.Background()

	createTestUser(t, svcs.store, "user-1", "amina@example.com", "Amina")
	journey := createTestJourney(t, svcs, "user-1", "Khatma")

	report, err := svcs.progress.GetProgress(ctx, journey.ID, "user-1", ProgressQuery{})
	require.NoError(t, err)

	assert.Equal(t, quran.TotalVerses, report.Summary.TotalVerses)
	assert.Equal(t, 0, report.Summary.VersesCompleted)
	assert.Equal(t, quran.TotalVerses, report.Summary.VersesRemaining)
	assert.Equal(t, 0, report.Summary.SurahsStarted)
	assert.False(t, report.Summary.IsComplete)
	require.Len(t, report.Surahs, quran.SurahCount)
	for _, row := range report.Surahs[:5] {
		assert.Equal(t, SurahNotStarted, row.Status)
	}
}

func TestGetProgress_StatusFilter(t *testing.T) {
	svcs, cleanup := setupTestServices(t)
	defer cleanup()
	ctx := context.Background()

	createTestUser(t, svcs.store, "user-1", "amina@example.com", "Amina")
	journey := createTestJourney(t, svcs, "user-1", "Khatma")

	// Complete surah 1, start surah 2.
	_, err := svcs.readings.LogReading(ctx, journey.ID, "user-1", LogReadingRequest{
		Start:  "1:1",
		End:    "2:10",
		ReadBy: []string{"user-1"},
	})
	require.NoError(t, err)

	report, err := svcs.progress.GetProgress(ctx, journey.ID, "user-1", ProgressQuery{Status: SurahInProgress})
	require.NoError(t, err)
	require.Len(t, report.Surahs, 1)
	assert.Equal(t, 2, report.Surahs[0].Surah)
	assert.Equal(t, 10, report.Surahs[0].VersesRead)

	report, err = svcs.progress.GetProgress(ctx, journey.ID, "user-1", ProgressQuery{Status: SurahComplete})
	require.NoError(t, err)
	require.Len(t, report.Surahs, 1)
	assert.Equal(t, 1, report.Surahs[0].Surah)

	// Summary is unaffected by the filter.
	assert.Equal(t, 17, report.Summary.VersesCompleted)
	assert.Equal(t, 2, report.Summary.SurahsStarted)
	assert.Equal(t, 1, report.Summary.SurahsCompleted)
}

func TestGetProgress_SortByPercentage(t *testing.T) {
	svcs, cleanup := setupTestServices(t)
	defer cleanup()
	ctx := context.Background()

	createTestUser(t, svcs.store, "user-1", "amina@example.com", "Amina")
	journey := createTestJourney(t, svcs, "user-1", "Khatma")

	// Surah 1 fully read, surah 2 partially.
	_, err := svcs.readings.LogReading(ctx, journey.ID, "user-1", LogReadingRequest{
		Start:  "1:1",
		End:    "2:100",
		ReadBy: []string{"user-1"},
	})
	require.NoError(t, err)

	report, err := svcs.progress.GetProgress(ctx, journey.ID, "user-1", ProgressQuery{SortBy: "percentage"})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Surahs[0].Surah)
	assert.Equal(t, 2, report.Surahs[1].Surah)
	assert.Greater(t, report.Surahs[1].Percentage, report.Surahs[2].Percentage)
}

func TestGetProgress_InvalidSortField(t *testing.T) {
	svcs, cleanup := setupTestServices(t)
	defer cleanup()
	ctx := context.Background()

	createTestUser(t, svcs.store, "user-1", "amina@example.com", "Amina")
	journey := createTestJourney(t, svcs, "user-1", "Khatma")

	_, err := svcs.progress.GetProgress(ctx, journey.ID, "user-1", ProgressQuery{SortBy: "name"})
	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domainerrors.CodeValidation, domainErr.Code)
}

func TestReconcile_NoDrift(t *testing.T) {
	svcs, cleanup := setupTestServices(t)
	defer cleanup()
	ctx := context.Background()

	createTestUser(t, svcs.store, "user-1", "amina@example.com", "Amina")
	journey := createTestJourney(t, svcs, "user-1", "Khatma")

	_, err := svcs.readings.LogReading(ctx, journey.ID, "user-1", LogReadingRequest{
		Start:  "1:1",
		End:    "1:7",
		ReadBy: []string{"user-1"},
	})
	require.NoError(t, err)

	report, err := svcs.progress.Reconcile(ctx, journey.ID, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 7, report.CounterValue)
	assert.Equal(t, 7, report.CompletionCount)
	assert.Equal(t, 0, report.Drift)
	assert.False(t, report.Repaired)
}

func TestReconcile_RepairsDriftedCounter(t *testing.T) {
	svcs, cleanup := setupTestServices(t)
	defer cleanup()
	ctx := context.Background()

	createTestUser(t, svcs.store, "user-1", "amina@example.com", "Amina")
	journey := createTestJourney(t, svcs, "user-1", "Khatma")

	_, err := svcs.readings.LogReading(ctx, journey.ID, "user-1", LogReadingRequest{
		Start:  "1:1",
		End:    "1:7",
		ReadBy: []string{"user-1"},
	})
	require.NoError(t, err)

	// Corrupt the counter.
	j, err := svcs.store.GetJourney(ctx, journey.ID)
	require.NoError(t, err)
	j.Stats.VersesCompleted = 42
	require.NoError(t, svcs.store.UpdateJourney(ctx, j))

	report, err := svcs.progress.Reconcile(ctx, journey.ID, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 42, report.CounterValue)
	assert.Equal(t, 7, report.CompletionCount)
	assert.Equal(t, 35, report.Drift)
	assert.True(t, report.Repaired)

	repaired, err := svcs.store.GetJourney(ctx, journey.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, repaired.Stats.VersesCompleted)
}

func TestReconcile_RequiresManageRole(t *testing.T) {
	svcs, cleanup := setupTestServices(t)
	defer cleanup()
	ctx := context.Background()

	createTestUser(t, svcs.store, "user-1", "amina@example.com", "Amina")
	createTestUser(t, svcs.store, "user-2", "bilal@example.com", "Bilal")
	journey := createTestJourney(t, svcs, "user-1", "Khatma")
	addTestMember(t, svcs, journey.ID, "user-2", "Bilal")

	_, err := svcs.progress.Reconcile(ctx, journey.ID, "user-2")
	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domainerrors.CodeForbidden, domainErr.Code)
}
