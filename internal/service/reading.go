package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/khatmahq/khatma-server/internal/domain"
	domainerrors "github.com/khatmahq/khatma-server/internal/errors"
	"github.com/khatmahq/khatma-server/internal/id"
	"github.com/khatmahq/khatma-server/internal/quran"
	"github.com/khatmahq/khatma-server/internal/store"
)

// ReadingService records reading logs and drives the progress counters
// they feed. A log is the unit of contribution: one verse range, read by
// one or more journey members.
type ReadingService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewReadingService creates a new reading service.
func NewReadingService(store *store.Store, logger *slog.Logger) *ReadingService {
	return &ReadingService{
		store:  store,
		logger: logger,
	}
}

// LogReadingRequest describes one reading contribution.
// Start and End are verse references in "surah:verse" form.
// ReadBy must name at least one journey member who read the range.
type LogReadingRequest struct {
	Start  string   `json:"start" validate:"required"`
	End    string   `json:"end" validate:"required"`
	ReadBy []string `json:"read_by" validate:"required,min=1,max=50"`
	Note   string   `json:"note,omitempty" validate:"max=500"`
}

// LogReadingResult is the outcome of recording a reading.
type LogReadingResult struct {
	Log *domain.ReadingLog `json:"log"`
	// NewlyCompleted holds the verses this log completed for the first
	// time. Verses already read by someone else are not repeated here.
	NewlyCompleted      []quran.VerseRef  `json:"newly_completed"`
	NewlyCompletedCount int               `json:"newly_completed_count"`
	JourneyCompleted    bool              `json:"journey_completed"`
	ReaderStats         *domain.UserStats `json:"reader_stats,omitempty"`
}

// LogReading records a reading contribution against a journey.
//
// The write is structured so the append-only log is durable before any
// counter moves: first the log itself, then the verse completions and
// journey counters in one transaction, then each reader's personal
// streak counters. Re-reads of already completed verses still count
// toward member and personal totals but never double-complete a verse.
func (s *ReadingService) LogReading(ctx context.Context, journeyID, userID string, req LogReadingRequest) (*LogReadingResult, error) {
	if err := validate.Struct(req); err != nil {
		return nil, formatValidationError(err)
	}

	vr, err := quran.ParseRange(req.Start, req.End)
	if err != nil {
		return nil, err
	}

	logger, err := s.store.GetMember(ctx, journeyID, userID)
	if err != nil {
		if errors.Is(err, store.ErrMemberNotFound) {
			return nil, domainerrors.Forbidden("you are not a member of this journey")
		}
		return nil, fmt.Errorf("get member: %w", err)
	}

	readBy := dedupeIDs(req.ReadBy)
	if len(readBy) == 0 {
		return nil, domainerrors.Validation("at least one reader must be selected")
	}

	// Every listed reader must be a journey member. Their membership
	// records also give us display names to freeze onto the log.
	readByNames := make([]string, 0, len(readBy))
	for _, readerID := range readBy {
		if readerID == userID {
			readByNames = append(readByNames, logger.DisplayName)
			continue
		}
		member, err := s.store.GetMember(ctx, journeyID, readerID)
		if err != nil {
			if errors.Is(err, store.ErrMemberNotFound) {
				return nil, domainerrors.Validationf("reader %s is not a member of this journey", readerID)
			}
			return nil, fmt.Errorf("get member %s: %w", readerID, err)
		}
		readByNames = append(readByNames, member.DisplayName)
	}

	logID, err := id.Generate("rlog")
	if err != nil {
		return nil, fmt.Errorf("generate log ID: %w", err)
	}

	now := time.Now()
	readingLog := &domain.ReadingLog{
		ID:           logID,
		JourneyID:    journeyID,
		LoggedBy:     userID,
		LoggedByName: logger.DisplayName,
		ReadBy:       readBy,
		ReadByNames:  readByNames,
		Range:        vr,
		VerseCount:   vr.Count(),
		Note:         req.Note,
		Timestamp:    now,
	}

	if err := s.store.AppendReadingLog(ctx, readingLog); err != nil {
		return nil, fmt.Errorf("append reading log: %w", err)
	}

	// The journey's today counter is the sum of all logs made today,
	// including the one just appended. Summing the logs rather than
	// incrementing keeps the counter self-healing across day rollover.
	todayTotal, err := s.sumLogsToday(ctx, journeyID, now)
	if err != nil {
		return nil, fmt.Errorf("sum today's logs: %w", err)
	}

	newlyCompleted, err := s.store.ApplyReadingBatch(ctx, readingLog, todayTotal, now)
	if err != nil {
		return nil, fmt.Errorf("apply reading: %w", err)
	}

	// Advance each reader's personal streak and totals.
	var readerStats *domain.UserStats
	for _, readerID := range readBy {
		stats, err := s.store.ApplyUserReading(ctx, readerID, readingLog.VerseCount, now)
		if err != nil {
			return nil, fmt.Errorf("apply user reading for %s: %w", readerID, err)
		}
		if readerID == userID {
			readerStats = stats
		}
	}

	journey, err := s.store.GetJourney(ctx, journeyID)
	if err != nil {
		return nil, fmt.Errorf("get journey: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("Reading logged",
			"journey_id", journeyID,
			"log_id", logID,
			"range", vr.Display(),
			"verses", readingLog.VerseCount,
			"newly_completed", len(newlyCompleted),
		)
	}

	return &LogReadingResult{
		Log:                 readingLog,
		NewlyCompleted:      newlyCompleted,
		NewlyCompletedCount: len(newlyCompleted),
		JourneyCompleted:    journey.IsComplete(),
		ReaderStats:         readerStats,
	}, nil
}

// ListRecentLogs returns a journey's newest reading logs.
// limit <= 0 returns all logs.
func (s *ReadingService) ListRecentLogs(ctx context.Context, journeyID, userID string, limit int) ([]*domain.ReadingLog, error) {
	if _, err := s.store.GetMember(ctx, journeyID, userID); err != nil {
		if errors.Is(err, store.ErrMemberNotFound) {
			return nil, domainerrors.Forbidden("you are not a member of this journey")
		}
		return nil, fmt.Errorf("get member: %w", err)
	}

	logs, err := s.store.ListRecentLogs(ctx, journeyID, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent logs: %w", err)
	}
	return logs, nil
}

// GetLog returns a single reading log by ID.
func (s *ReadingService) GetLog(ctx context.Context, journeyID, userID, logID string) (*domain.ReadingLog, error) {
	if _, err := s.store.GetMember(ctx, journeyID, userID); err != nil {
		if errors.Is(err, store.ErrMemberNotFound) {
			return nil, domainerrors.Forbidden("you are not a member of this journey")
		}
		return nil, fmt.Errorf("get member: %w", err)
	}

	readingLog, err := s.store.GetReadingLog(ctx, logID)
	if err != nil {
		if errors.Is(err, store.ErrReadingLogNotFound) {
			return nil, domainerrors.NotFound("reading log not found")
		}
		return nil, fmt.Errorf("get reading log: %w", err)
	}
	if readingLog.JourneyID != journeyID {
		return nil, domainerrors.NotFound("reading log not found")
	}
	return readingLog, nil
}

// sumLogsToday totals the verse counts of all logs made today,
// using the server's local day boundary.
func (s *ReadingService) sumLogsToday(ctx context.Context, journeyID string, now time.Time) (int, error) {
	dayStart := domain.DayStart(now)
	logs, err := s.store.GetLogsForJourneyInRange(ctx, journeyID, dayStart, dayStart.Add(24*time.Hour))
	if err != nil {
		return 0, err
	}

	total := 0
	for _, l := range logs {
		total += l.VerseCount
	}
	return total, nil
}

// dedupeIDs removes duplicate IDs preserving first-seen order.
func dedupeIDs(ids []string) []string {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
