package domain

import "time"

// Streak and daily-counter arithmetic. These are pure functions of their
// inputs: callers pass the current clock so stores and tests can pin time.
// Day boundaries are midnight in server-local time.

// SameDay reports whether a and b fall on the same calendar day in local
// time.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Local().Date()
	by, bm, bd := b.Local().Date()
	return ay == by && am == bm && ad == bd
}

// DayStart returns midnight of t's calendar day in local time.
func DayStart(t time.Time) time.Time {
	year, month, day := t.Local().Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.Local)
}

// NextStreak returns the streak value after a reading at now, given the
// current streak and the previous reading time.
//
//   - never read before: the streak starts at 1
//   - read earlier today: unchanged
//   - read yesterday: extended by one
//   - anything else (a gap of two or more days, or a last-read date in the
//     future from a clock change): reset to 1
func NextStreak(current int, lastRead, now time.Time) int {
	if lastRead.IsZero() {
		return 1
	}
	switch daysBetween(lastRead, now) {
	case 0:
		return current
	case 1:
		return current + 1
	default:
		return 1
	}
}

// NextTodayCount returns the daily verse counter after adding delta verses
// at now. todayDate is the day the current counter belongs to; a counter
// left over from a previous day is discarded rather than carried forward.
func NextTodayCount(current int, todayDate time.Time, delta int, now time.Time) int {
	if todayDate.IsZero() || !SameDay(todayDate, now) {
		return delta
	}
	return current + delta
}

// daysBetween counts calendar-day boundaries crossed between a and b.
// Negative when b is before a. The dates are re-anchored in UTC so that
// DST transitions (23- and 25-hour local days) cannot skew the count.
func daysBetween(a, b time.Time) int {
	ay, am, ad := a.Local().Date()
	by, bm, bd := b.Local().Date()
	ua := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	ub := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua) / (24 * time.Hour))
}
