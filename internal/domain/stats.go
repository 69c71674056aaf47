package domain

import "time"

// StatsPeriod represents a time window for statistics queries.
type StatsPeriod string

// StatsPeriod constants for time window queries.
const (
	StatsPeriodDay     StatsPeriod = "day"
	StatsPeriodWeek    StatsPeriod = "week"
	StatsPeriodMonth   StatsPeriod = "month"
	StatsPeriodYear    StatsPeriod = "year"
	StatsPeriodAllTime StatsPeriod = "all"
)

// Valid returns true if the period is a recognized value.
func (p StatsPeriod) Valid() bool {
	switch p {
	case StatsPeriodDay, StatsPeriodWeek, StatsPeriodMonth, StatsPeriodYear, StatsPeriodAllTime:
		return true
	default:
		return false
	}
}

// Bounds returns the start and end times for a period relative to now.
// Start is inclusive, end is exclusive. End is always end of today (midnight tomorrow).
func (p StatsPeriod) Bounds(now time.Time) (start, end time.Time) {
	// Normalize to start of day in local time
	year, month, day := now.Date()
	loc := now.Location()
	today := time.Date(year, month, day, 0, 0, 0, 0, loc)
	endOfToday := today.Add(24 * time.Hour)

	switch p {
	case StatsPeriodDay:
		return today, endOfToday
	case StatsPeriodWeek:
		// Week starts on Monday (ISO standard)
		weekday := int(today.Weekday())
		if weekday == 0 {
			weekday = 7 // Sunday = 7
		}
		startOfWeek := today.AddDate(0, 0, -(weekday - 1))
		return startOfWeek, endOfToday
	case StatsPeriodMonth:
		startOfMonth := time.Date(year, month, 1, 0, 0, 0, 0, loc)
		return startOfMonth, endOfToday
	case StatsPeriodYear:
		startOfYear := time.Date(year, 1, 1, 0, 0, 0, 0, loc)
		return startOfYear, endOfToday
	case StatsPeriodAllTime:
		return time.Time{}, endOfToday // Zero time = beginning of time
	default:
		return today, endOfToday
	}
}

// UserStats holds a user's personal reading counters across all journeys.
// The zero value is the valid state for a user who has never logged a
// reading, so stats can be hydrated with defaults when no record exists.
//
// TodayVersesRead is only meaningful when TodayDate is the current day;
// EffectiveTodayCount handles the stale-date case.
type UserStats struct {
	UserID          string    `json:"user_id"`
	CurrentStreak   int       `json:"current_streak"`
	LongestStreak   int       `json:"longest_streak"`
	TotalVersesRead int       `json:"total_verses_read"`
	TotalReadings   int       `json:"total_readings"`
	LastReadDate    time.Time `json:"last_read_date,omitzero"`
	TodayVersesRead int       `json:"today_verses_read"`
	TodayDate       time.Time `json:"today_date,omitzero"`
	UpdatedAt       time.Time `json:"updated_at,omitzero"`
}

// ApplyReading folds one logged reading into the stats. verseCount is the
// size of the logged range; now is injected so day-boundary behavior is
// deterministic under test.
func (s *UserStats) ApplyReading(verseCount int, now time.Time) {
	s.CurrentStreak = NextStreak(s.CurrentStreak, s.LastReadDate, now)
	s.LongestStreak = max(s.LongestStreak, s.CurrentStreak)
	s.TodayVersesRead = NextTodayCount(s.TodayVersesRead, s.TodayDate, verseCount, now)
	s.TodayDate = now
	s.TotalVersesRead += verseCount
	s.TotalReadings++
	s.LastReadDate = now
	s.UpdatedAt = now
}

// EffectiveTodayCount returns the verses read today, treating a counter
// carried over from a previous day as zero.
func (s *UserStats) EffectiveTodayCount(now time.Time) int {
	if s.TodayDate.IsZero() || !SameDay(s.TodayDate, now) {
		return 0
	}
	return s.TodayVersesRead
}

// HasReadToday reports whether the user has logged any reading today.
func (s *UserStats) HasReadToday(now time.Time) bool {
	return !s.LastReadDate.IsZero() && SameDay(s.LastReadDate, now)
}
