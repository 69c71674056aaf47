package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	domainerrors "github.com/khatmahq/khatma-server/internal/errors"
	"github.com/khatmahq/khatma-server/internal/quran"
	"github.com/khatmahq/khatma-server/internal/store"
)

// SurahStatus describes how far a journey has gotten through one surah.
type SurahStatus string

// Surah progress states.
const (
	SurahNotStarted SurahStatus = "not-started"
	SurahInProgress SurahStatus = "in-progress"
	SurahComplete   SurahStatus = "complete"
)

// SurahProgress is one row of the per-surah progress table.
type SurahProgress struct {
	Surah      int         `json:"surah"`
	Name       string      `json:"name"`
	NameArabic string      `json:"name_arabic"`
	VerseCount int         `json:"verse_count"`
	VersesRead int         `json:"verses_read"`
	Percentage float64     `json:"percentage"`
	Status     SurahStatus `json:"status"`
}

// ProgressSummary aggregates journey-wide completion.
type ProgressSummary struct {
	TotalVerses     int     `json:"total_verses"`
	VersesCompleted int     `json:"verses_completed"`
	VersesRemaining int     `json:"verses_remaining"`
	Percentage      float64 `json:"percentage"`
	SurahsCompleted int     `json:"surahs_completed"`
	SurahsStarted   int     `json:"surahs_started"`
	IsComplete      bool    `json:"is_complete"`
}

// ProgressReport is the full progress view for a journey.
type ProgressReport struct {
	Summary ProgressSummary `json:"summary"`
	Surahs  []SurahProgress `json:"surahs"`
}

// ProgressQuery filters and orders the per-surah table.
type ProgressQuery struct {
	// Status keeps only rows in the given state when non-empty.
	Status SurahStatus
	// SortBy is "number" (default) or "percentage" (descending).
	SortBy string
}

// ReconcileReport compares the journey's denormalized counter against
// the completion records it was derived from.
type ReconcileReport struct {
	JourneyID       string `json:"journey_id"`
	CounterValue    int    `json:"counter_value"`
	CompletionCount int    `json:"completion_count"`
	Drift           int    `json:"drift"`
	Repaired        bool   `json:"repaired"`
}

// ProgressService derives progress views from verse completion records.
type ProgressService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewProgressService creates a new progress service.
func NewProgressService(store *store.Store, logger *slog.Logger) *ProgressService {
	return &ProgressService{
		store:  store,
		logger: logger,
	}
}

// GetProgress builds the per-surah progress table for a journey.
// Caller must be a member.
func (s *ProgressService) GetProgress(ctx context.Context, journeyID, userID string, query ProgressQuery) (*ProgressReport, error) {
	if err := s.requireMembership(ctx, journeyID, userID); err != nil {
		return nil, err
	}

	completions, err := s.store.GetCompletions(ctx, journeyID)
	if err != nil {
		return nil, fmt.Errorf("get completions: %w", err)
	}

	// Count completed verses per surah. Completion records are unique
	// per verse, so a plain count is enough.
	perSurah := make([]int, quran.SurahCount+1)
	for _, c := range completions {
		if c.Ref.Surah >= 1 && c.Ref.Surah <= quran.SurahCount {
			perSurah[c.Ref.Surah]++
		}
	}

	rows := make([]SurahProgress, 0, quran.SurahCount)
	summary := ProgressSummary{
		TotalVerses:     quran.TotalVerses,
		VersesCompleted: len(completions),
	}
	for _, surah := range quran.Surahs {
		read := perSurah[surah.Number]
		row := SurahProgress{
			Surah:      surah.Number,
			Name:       surah.Name,
			NameArabic: surah.NameArabic,
			VerseCount: surah.VerseCount,
			VersesRead: read,
			Percentage: float64(read) / float64(surah.VerseCount) * 100,
		}
		switch {
		case read == 0:
			row.Status = SurahNotStarted
		case read >= surah.VerseCount:
			row.Status = SurahComplete
			summary.SurahsCompleted++
			summary.SurahsStarted++
		default:
			row.Status = SurahInProgress
			summary.SurahsStarted++
		}
		rows = append(rows, row)
	}

	summary.VersesRemaining = summary.TotalVerses - summary.VersesCompleted
	summary.Percentage = float64(summary.VersesCompleted) / float64(summary.TotalVerses) * 100
	summary.IsComplete = summary.VersesCompleted >= summary.TotalVerses

	if query.Status != "" {
		filtered := rows[:0]
		for _, row := range rows {
			if row.Status == query.Status {
				filtered = append(filtered, row)
			}
		}
		rows = filtered
	}

	switch query.SortBy {
	case "", "number":
		// Rows are already in surah order.
	case "percentage":
		sort.SliceStable(rows, func(i, j int) bool {
			return rows[i].Percentage > rows[j].Percentage
		})
	default:
		return nil, domainerrors.Validationf("invalid sort field: %s", query.SortBy)
	}

	return &ProgressReport{
		Summary: summary,
		Surahs:  rows,
	}, nil
}

// Reconcile checks the journey's completed-verses counter against the
// completion records and repairs the counter when they disagree.
// Only owners and admins may reconcile.
func (s *ProgressService) Reconcile(ctx context.Context, journeyID, userID string) (*ReconcileReport, error) {
	member, err := s.store.GetMember(ctx, journeyID, userID)
	if err != nil {
		if errors.Is(err, store.ErrMemberNotFound) {
			return nil, domainerrors.Forbidden("you are not a member of this journey")
		}
		return nil, fmt.Errorf("get member: %w", err)
	}
	if !member.Role.CanManage() {
		return nil, domainerrors.Forbidden("only journey owners and admins can reconcile")
	}

	journey, err := s.store.GetJourney(ctx, journeyID)
	if err != nil {
		if errors.Is(err, store.ErrJourneyNotFound) {
			return nil, domainerrors.NotFound("journey not found")
		}
		return nil, fmt.Errorf("get journey: %w", err)
	}

	count, err := s.store.CountCompletions(ctx, journeyID)
	if err != nil {
		return nil, fmt.Errorf("count completions: %w", err)
	}

	report := &ReconcileReport{
		JourneyID:       journeyID,
		CounterValue:    journey.Stats.VersesCompleted,
		CompletionCount: count,
		Drift:           journey.Stats.VersesCompleted - count,
	}

	if report.Drift != 0 {
		journey.Stats.VersesCompleted = count
		if err := s.store.UpdateJourney(ctx, journey); err != nil {
			return nil, fmt.Errorf("repair counter: %w", err)
		}
		report.Repaired = true

		if s.logger != nil {
			s.logger.Warn("Repaired journey completion counter",
				"journey_id", journeyID,
				"drift", report.Drift,
			)
		}
	}

	return report, nil
}

func (s *ProgressService) requireMembership(ctx context.Context, journeyID, userID string) error {
	if _, err := s.store.GetMember(ctx, journeyID, userID); err != nil {
		if errors.Is(err, store.ErrMemberNotFound) {
			return domainerrors.Forbidden("you are not a member of this journey")
		}
		return fmt.Errorf("get member: %w", err)
	}
	return nil
}
