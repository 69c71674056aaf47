package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/khatmahq/khatma-server/internal/domain"
	domainerrors "github.com/khatmahq/khatma-server/internal/errors"
	"github.com/khatmahq/khatma-server/internal/store"
)

// StatsService exposes per-user reading statistics.
// The counters themselves are advanced by ReadingService when logs are
// recorded; this service only reads them.
type StatsService struct {
	store  *store.Store
	logger *slog.Logger

	// now is swappable for tests.
	now func() time.Time
}

// NewStatsService creates a new stats service.
func NewStatsService(store *store.Store, logger *slog.Logger) *StatsService {
	return &StatsService{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// UserStatsView is the API shape of a user's reading statistics.
// TodayVersesRead is normalized against the current day so a stale
// counter from a previous day reads as zero.
type UserStatsView struct {
	UserID          string     `json:"user_id"`
	CurrentStreak   int        `json:"current_streak"`
	LongestStreak   int        `json:"longest_streak"`
	TotalVersesRead int        `json:"total_verses_read"`
	TotalReadings   int        `json:"total_readings"`
	TodayVersesRead int        `json:"today_verses_read"`
	HasReadToday    bool       `json:"has_read_today"`
	LastReadDate    *time.Time `json:"last_read_date,omitempty"`

	// Period is populated only when the caller asked for a window.
	Period *PeriodActivity `json:"period,omitempty"`
}

// GetUserStats returns a user's reading statistics.
// Users who have never logged a reading get the zero-valued view.
func (s *StatsService) GetUserStats(ctx context.Context, userID string) (*UserStatsView, error) {
	stats, err := s.store.GetUserStats(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user stats: %w", err)
	}
	return s.buildView(stats), nil
}

// PeriodActivity summarizes a user's reading inside a stats window.
type PeriodActivity struct {
	Period     domain.StatsPeriod `json:"period"`
	Start      time.Time          `json:"start,omitzero"`
	End        time.Time          `json:"end"`
	VersesRead int                `json:"verses_read"`
	Readings   int                `json:"readings"`
}

// GetPeriodActivity sums the user's logged verses and readings across all
// their journeys inside the given window. A log counts for the user when
// they are listed among its readers, regardless of who recorded it.
func (s *StatsService) GetPeriodActivity(ctx context.Context, userID string, period domain.StatsPeriod) (*PeriodActivity, error) {
	if !period.Valid() {
		return nil, domainerrors.Validationf("unknown stats period %q", period)
	}

	start, end := period.Bounds(s.now())
	activity := &PeriodActivity{Period: period, Start: start, End: end}

	journeys, err := s.store.ListJourneysForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list journeys: %w", err)
	}
	for _, journey := range journeys {
		logs, err := s.store.GetLogsForJourneyInRange(ctx, journey.ID, start, end)
		if err != nil {
			return nil, fmt.Errorf("logs for journey %s: %w", journey.ID, err)
		}
		for _, log := range logs {
			if slices.Contains(log.ReadBy, userID) {
				activity.VersesRead += log.VerseCount
				activity.Readings++
			}
		}
	}
	return activity, nil
}

// HasReadToday reports whether the user logged any reading today.
func (s *StatsService) HasReadToday(ctx context.Context, userID string) (bool, error) {
	stats, err := s.store.GetUserStats(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("get user stats: %w", err)
	}
	return stats.HasReadToday(s.now()), nil
}

func (s *StatsService) buildView(stats *domain.UserStats) *UserStatsView {
	now := s.now()
	view := &UserStatsView{
		UserID:          stats.UserID,
		CurrentStreak:   stats.CurrentStreak,
		LongestStreak:   stats.LongestStreak,
		TotalVersesRead: stats.TotalVersesRead,
		TotalReadings:   stats.TotalReadings,
		TodayVersesRead: stats.EffectiveTodayCount(now),
		HasReadToday:    stats.HasReadToday(now),
	}
	if !stats.LastReadDate.IsZero() {
		d := stats.LastReadDate
		view.LastReadDate = &d
	}
	return view
}
