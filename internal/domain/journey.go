package domain

import (
	"time"

	"github.com/khatmahq/khatma-server/internal/quran"
)

// Journey is a shared khatma: a group of readers working through the whole
// Quran together. Progress counters on the journey are denormalized from
// the reading logs for cheap reads; the progress reconciler can re-derive
// them from the completion records.
type Journey struct {
	Syncable
	Name          string          `json:"name"`
	Description   string          `json:"description,omitempty"`
	CreatedBy     string          `json:"created_by"`
	Settings      JourneySettings `json:"settings"`
	Stats         JourneyStats    `json:"stats"`
	TargetEndDate *time.Time      `json:"target_end_date,omitempty"`
}

// JourneySettings control who can see and join a journey.
type JourneySettings struct {
	IsPrivate       bool `json:"is_private"`
	RequireApproval bool `json:"require_approval"`
}

// JourneyStats are the journey's denormalized progress counters.
// VersesReadToday is only meaningful when TodayDate is the current day;
// readers must treat a stale TodayDate as zero.
type JourneyStats struct {
	TotalVerses     int       `json:"total_verses"`
	VersesCompleted int       `json:"verses_completed"`
	LastActivityAt  time.Time `json:"last_activity_at"`
	VersesReadToday int       `json:"verses_read_today"`
	TodayDate       time.Time `json:"today_date"`
}

// NewJourneyStats returns the zero progress state for a fresh journey.
func NewJourneyStats() JourneyStats {
	return JourneyStats{TotalVerses: quran.TotalVerses}
}

// EffectiveVersesReadToday returns the today counter, or zero when the
// counter belongs to an earlier day.
func (s JourneyStats) EffectiveVersesReadToday(now time.Time) int {
	if s.TodayDate.IsZero() || !SameDay(s.TodayDate, now) {
		return 0
	}
	return s.VersesReadToday
}

// CompletionPercentage returns completed verses as a percentage of the
// whole Quran, in the range 0..100.
func (s JourneyStats) CompletionPercentage() float64 {
	if s.TotalVerses == 0 {
		return 0
	}
	return float64(s.VersesCompleted) / float64(s.TotalVerses) * 100
}

// IsComplete reports whether every verse has been read at least once.
func (j *Journey) IsComplete() bool {
	return j.Stats.VersesCompleted >= j.Stats.TotalVerses
}

// MemberRole is a user's permission level within a journey.
type MemberRole string

// Journey member roles.
const (
	RoleOwner  MemberRole = "owner"
	RoleAdmin  MemberRole = "admin"
	RoleMember MemberRole = "member"
)

// Valid reports whether the role is a recognized value.
func (r MemberRole) Valid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleMember:
		return true
	default:
		return false
	}
}

// CanManage reports whether the role may change journey settings and
// create invites.
func (r MemberRole) CanManage() bool {
	return r == RoleOwner || r == RoleAdmin
}

// JourneyMember records one user's membership in a journey, along with
// their per-journey reading counters.
type JourneyMember struct {
	JourneyID   string      `json:"journey_id"`
	UserID      string      `json:"user_id"`
	DisplayName string      `json:"display_name"`
	Role        MemberRole  `json:"role"`
	JoinedAt    time.Time   `json:"joined_at"`
	Stats       MemberStats `json:"stats"`
}

// MemberStats are a member's denormalized per-journey counters.
type MemberStats struct {
	VersesRead    int       `json:"verses_read"`
	TotalReadings int       `json:"total_readings"`
	LastReadAt    time.Time `json:"last_read_at,omitzero"`
}
