package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/khatmahq/khatma-server/internal/domain"
	"github.com/khatmahq/khatma-server/internal/quran"
)

// Completion keys use zero-padded surah and verse numbers so a per-journey
// prefix scan yields verses in reading order: vc:{journeyID}:{SSS}:{VVV}
const verseCompletionPrefix = "vc:"

func completionKey(journeyID string, ref quran.VerseRef) []byte {
	return fmt.Appendf(nil, "%s%s:%03d:%03d", verseCompletionPrefix, journeyID, ref.Surah, ref.Verse)
}

// ApplyReadingBatch applies one reading log's side effects to a journey in
// a single transaction:
//
//   - a completion record is created for every verse in the log's range
//     that does not already have one (first writer wins, existing records
//     are never touched)
//   - the journey's denormalized counters are advanced by the number of
//     newly completed verses
//   - each participating member's per-journey counters are advanced
//
// todayTotal is the journey-wide verses-read-today figure, computed by the
// caller from today's logs, and replaces the stored counter outright.
// Returns the refs that were newly completed by this log.
func (s *Store) ApplyReadingBatch(ctx context.Context, log *domain.ReadingLog, todayTotal int, now time.Time) ([]quran.VerseRef, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	refs := log.Range.Expand()
	var newlyCompleted []quran.VerseRef

	err := s.db.Update(func(txn *badger.Txn) error {
		newlyCompleted = newlyCompleted[:0] // Reset on transaction retry

		// Create-if-absent for every verse in the range.
		for _, ref := range refs {
			key := completionKey(log.JourneyID, ref)
			_, err := txn.Get(key)
			if err == nil {
				continue // Already completed by an earlier log
			}
			if !errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("check completion %s: %w", ref, err)
			}

			completion := domain.VerseCompletion{
				JourneyID:    log.JourneyID,
				Ref:          ref,
				CompletedAt:  now,
				CompletedBy:  log.ReadByNames,
				ReadingLogID: log.ID,
			}
			data, err := json.Marshal(completion)
			if err != nil {
				return fmt.Errorf("marshal completion: %w", err)
			}
			if err := txn.Set(key, data); err != nil {
				return err
			}
			newlyCompleted = append(newlyCompleted, ref)
		}

		// Advance the journey counters in the same transaction.
		journeyKey := []byte(journeyPrefix + log.JourneyID)
		item, err := txn.Get(journeyKey)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrJourneyNotFound
		}
		if err != nil {
			return fmt.Errorf("get journey: %w", err)
		}

		var journey domain.Journey
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &journey)
		}); err != nil {
			return fmt.Errorf("unmarshal journey: %w", err)
		}

		journey.Stats.VersesCompleted += len(newlyCompleted)
		journey.Stats.LastActivityAt = now
		journey.Stats.VersesReadToday = todayTotal
		journey.Stats.TodayDate = now
		journey.UpdatedAt = now

		journeyData, err := json.Marshal(&journey)
		if err != nil {
			return fmt.Errorf("marshal journey: %w", err)
		}
		if err := txn.Set(journeyKey, journeyData); err != nil {
			return err
		}

		// Advance each participant's per-journey counters.
		for _, userID := range log.ReadBy {
			mKey := memberKey(log.JourneyID, userID)
			mItem, err := txn.Get(mKey)
			if errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("%w: %s", ErrMemberNotFound, userID)
			}
			if err != nil {
				return fmt.Errorf("get member %s: %w", userID, err)
			}

			var member domain.JourneyMember
			if err := mItem.Value(func(val []byte) error {
				return json.Unmarshal(val, &member)
			}); err != nil {
				return fmt.Errorf("unmarshal member: %w", err)
			}

			member.Stats.VersesRead += log.VerseCount
			member.Stats.TotalReadings++
			member.Stats.LastReadAt = now

			memberData, err := json.Marshal(&member)
			if err != nil {
				return fmt.Errorf("marshal member: %w", err)
			}
			if err := txn.Set(mKey, memberData); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return newlyCompleted, nil
}

// IsVerseCompleted reports whether a verse has a completion record.
func (s *Store) IsVerseCompleted(ctx context.Context, journeyID string, ref quran.VerseRef) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return s.exists(completionKey(journeyID, ref))
}

// GetCompletions returns every completion record for a journey, in reading
// order. This is the source of truth the reconciler re-derives counters from.
func (s *Store) GetCompletions(ctx context.Context, journeyID string) ([]*domain.VerseCompletion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := []byte(verseCompletionPrefix + journeyID + ":")
	var completions []*domain.VerseCompletion

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var completion domain.VerseCompletion
				if unmarshalErr := json.Unmarshal(val, &completion); unmarshalErr != nil {
					// Skip malformed records
					return nil //nolint:nilerr // intentionally skip malformed entries
				}
				completions = append(completions, &completion)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("list completions: %w", err)
	}

	return completions, nil
}

// CountCompletions counts a journey's completion records without loading them.
func (s *Store) CountCompletions(ctx context.Context, journeyID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	prefix := []byte(verseCompletionPrefix + journeyID + ":")
	count := 0

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			count++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("count completions: %w", err)
	}

	return count, nil
}
