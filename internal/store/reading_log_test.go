package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khatmahq/khatma-server/internal/domain"
	"github.com/khatmahq/khatma-server/internal/quran"
)

func newTestLog(id, journeyID, userID string, start, end string, ts time.Time) *domain.ReadingLog {
	r := quran.VerseRange{Start: quran.MustParseRef(start), End: quran.MustParseRef(end)}
	return &domain.ReadingLog{
		ID:           id,
		JourneyID:    journeyID,
		LoggedBy:     userID,
		LoggedByName: "Reader",
		ReadBy:       []string{userID},
		ReadByNames:  []string{"Reader"},
		Range:        r,
		VerseCount:   r.Count(),
		Timestamp:    ts,
	}
}

func TestAppendAndListLogs(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	base := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)

	logs := []*domain.ReadingLog{
		newTestLog("rlog-1", "jrny-1", "user-1", "1:1", "1:7", base),
		newTestLog("rlog-2", "jrny-1", "user-1", "2:1", "2:10", base.Add(time.Hour)),
		newTestLog("rlog-3", "jrny-2", "user-2", "1:1", "1:3", base.Add(2*time.Hour)),
	}
	for _, l := range logs {
		require.NoError(t, s.AppendReadingLog(ctx, l))
	}

	// Recent logs are newest first and scoped to the journey.
	recent, err := s.ListRecentLogs(ctx, "jrny-1", 10)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "rlog-2", recent[0].ID)
	assert.Equal(t, "rlog-1", recent[1].ID)

	// Limit applies.
	recent, err = s.ListRecentLogs(ctx, "jrny-1", 1)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "rlog-2", recent[0].ID)

	// Appending the same log ID twice fails: logs are immutable.
	assert.Error(t, s.AppendReadingLog(ctx, logs[0]))
}

func TestGetLogsForJourneyInRange(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	day1 := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
	day2 := day1.Add(24 * time.Hour)

	require.NoError(t, s.AppendReadingLog(ctx, newTestLog("rlog-1", "jrny-1", "user-1", "1:1", "1:7", day1)))
	require.NoError(t, s.AppendReadingLog(ctx, newTestLog("rlog-2", "jrny-1", "user-1", "2:1", "2:5", day1.Add(time.Hour))))
	require.NoError(t, s.AppendReadingLog(ctx, newTestLog("rlog-3", "jrny-1", "user-1", "2:6", "2:10", day2)))

	// Start inclusive, end exclusive.
	got, err := s.GetLogsForJourneyInRange(ctx, "jrny-1", day1, day2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "rlog-1", got[0].ID)
	assert.Equal(t, "rlog-2", got[1].ID)

	got, err = s.GetLogsForJourneyInRange(ctx, "jrny-1", day2, day2.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "rlog-3", got[0].ID)

	all, err := s.ListAllLogs(ctx, "jrny-1")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestApplyReadingBatch(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	journey, owner := newTestJourney("jrny-1", "user-1")
	require.NoError(t, s.CreateJourney(ctx, journey, owner))

	now := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
	log := newTestLog("rlog-1", "jrny-1", "user-1", "1:1", "1:7", now)
	require.NoError(t, s.AppendReadingLog(ctx, log))

	newRefs, err := s.ApplyReadingBatch(ctx, log, 7, now)
	require.NoError(t, err)
	assert.Len(t, newRefs, 7)

	got, err := s.GetJourney(ctx, "jrny-1")
	require.NoError(t, err)
	assert.Equal(t, 7, got.Stats.VersesCompleted)
	assert.Equal(t, 7, got.Stats.VersesReadToday)
	assert.Equal(t, now, got.Stats.LastActivityAt.UTC())

	member, err := s.GetMember(ctx, "jrny-1", "user-1")
	require.NoError(t, err)
	assert.Equal(t, 7, member.Stats.VersesRead)
	assert.Equal(t, 1, member.Stats.TotalReadings)

	completed, err := s.IsVerseCompleted(ctx, "jrny-1", quran.VerseRef{Surah: 1, Verse: 3})
	require.NoError(t, err)
	assert.True(t, completed)
}

func TestApplyReadingBatchOverlapIsIdempotent(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	journey, owner := newTestJourney("jrny-1", "user-1")
	require.NoError(t, s.CreateJourney(ctx, journey, owner))

	now := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)

	first := newTestLog("rlog-1", "jrny-1", "user-1", "1:1", "1:7", now)
	require.NoError(t, s.AppendReadingLog(ctx, first))
	_, err := s.ApplyReadingBatch(ctx, first, 7, now)
	require.NoError(t, err)

	// A second log covering the same verses plus three new ones.
	second := newTestLog("rlog-2", "jrny-1", "user-1", "1:5", "2:3", now.Add(time.Hour))
	require.NoError(t, s.AppendReadingLog(ctx, second))
	newRefs, err := s.ApplyReadingBatch(ctx, second, 13, now.Add(time.Hour))
	require.NoError(t, err)

	// Only 2:1..2:3 are newly completed; 1:5..1:7 already have records.
	assert.Equal(t, []quran.VerseRef{{Surah: 2, Verse: 1}, {Surah: 2, Verse: 2}, {Surah: 2, Verse: 3}}, newRefs)

	got, err := s.GetJourney(ctx, "jrny-1")
	require.NoError(t, err)
	assert.Equal(t, 10, got.Stats.VersesCompleted)

	// Completion count always matches the journey counter.
	count, err := s.CountCompletions(ctx, "jrny-1")
	require.NoError(t, err)
	assert.Equal(t, got.Stats.VersesCompleted, count)

	// The first completion record was not overwritten by the second log.
	completions, err := s.GetCompletions(ctx, "jrny-1")
	require.NoError(t, err)
	for _, c := range completions {
		if c.Ref == (quran.VerseRef{Surah: 1, Verse: 5}) {
			assert.Equal(t, "rlog-1", c.ReadingLogID)
		}
	}

	// Member counters track raw verses read, not deduplicated completions.
	member, err := s.GetMember(ctx, "jrny-1", "user-1")
	require.NoError(t, err)
	assert.Equal(t, 13, member.Stats.VersesRead)
	assert.Equal(t, 2, member.Stats.TotalReadings)
}

func TestApplyReadingBatchMultipleReaders(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	journey, owner := newTestJourney("jrny-1", "user-1")
	require.NoError(t, s.CreateJourney(ctx, journey, owner))
	require.NoError(t, s.AddMember(ctx, &domain.JourneyMember{
		JourneyID: "jrny-1", UserID: "user-2", Role: domain.RoleMember, JoinedAt: time.Now(),
	}))

	now := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
	log := newTestLog("rlog-1", "jrny-1", "user-1", "1:1", "1:7", now)
	log.ReadBy = []string{"user-1", "user-2"}
	log.ReadByNames = []string{"Owner", "Fatima"}
	require.NoError(t, s.AppendReadingLog(ctx, log))

	_, err := s.ApplyReadingBatch(ctx, log, 7, now)
	require.NoError(t, err)

	// Every participant's per-journey counters advance by the full range.
	for _, userID := range []string{"user-1", "user-2"} {
		member, err := s.GetMember(ctx, "jrny-1", userID)
		require.NoError(t, err)
		assert.Equal(t, 7, member.Stats.VersesRead, userID)
		assert.Equal(t, 1, member.Stats.TotalReadings, userID)
	}
}
