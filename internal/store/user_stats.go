package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/khatmahq/khatma-server/internal/domain"
)

const userStatsPrefix = "user_stats:"

// GetUserStats retrieves a user's personal reading stats.
// A user with no record yet gets the zero-valued stats, never an error:
// the "new user" state is a valid value, not an absence.
func (s *Store) GetUserStats(ctx context.Context, userID string) (*domain.UserStats, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stats := &domain.UserStats{UserID: userID}
	err := s.get([]byte(userStatsPrefix+userID), stats)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return &domain.UserStats{UserID: userID}, nil
		}
		return nil, fmt.Errorf("getting user stats for %s: %w", userID, err)
	}
	return stats, nil
}

// SetUserStats saves a complete UserStats (used for seeding and backfill).
func (s *Store) SetUserStats(ctx context.Context, stats *domain.UserStats) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.set([]byte(userStatsPrefix+stats.UserID), stats)
}

// ApplyUserReading folds one logged reading into a user's personal stats
// with a read-modify-write inside a single transaction, so concurrent logs
// for the same user cannot lose streak or counter updates. Updates for
// different users are independent.
func (s *Store) ApplyUserReading(ctx context.Context, userID string, verseCount int, now time.Time) (*domain.UserStats, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var updated domain.UserStats
	err := s.db.Update(func(txn *badger.Txn) error {
		key := []byte(userStatsPrefix + userID)
		stats := domain.UserStats{UserID: userID}

		item, err := txn.Get(key)
		if err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		if err == nil {
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &stats)
			}); err != nil {
				return err
			}
		}

		stats.ApplyReading(verseCount, now)
		updated = stats

		data, err := json.Marshal(&stats)
		if err != nil {
			return err
		}
		return txn.Set(key, data)
	})
	if err != nil {
		return nil, fmt.Errorf("apply reading for %s: %w", userID, err)
	}

	return &updated, nil
}
