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

const (
	readingLogPrefix = "rlog:"
	// Per-journey timestamp index: idx:rlogs:journey:{journeyID}:{timestamp}:rlog:{logID}
	// The sortable timestamp makes range scans by time a prefix iteration.
	readingLogByJourneyPrefix = "idx:rlogs:journey:"
)

// ErrReadingLogNotFound is returned when a reading log cannot be found by ID.
var ErrReadingLogNotFound = errors.New("reading log not found")

func readingLogIndexPrefix(journeyID string) string {
	return readingLogByJourneyPrefix + journeyID + ":"
}

// AppendReadingLog appends an immutable reading log. The log document and
// its journey timestamp index entry are written in one transaction.
// Logs are never updated or deleted once written.
func (s *Store) AppendReadingLog(ctx context.Context, log *domain.ReadingLog) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := buildKey(readingLogPrefix, log.ID)
	defer releaseKey(key)

	indexKey := formatTimestampIndexKey(readingLogIndexPrefix(log.JourneyID), log.Timestamp, "rlog", log.ID)

	return s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		if err == nil {
			return fmt.Errorf("reading log %s already exists", log.ID)
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("check reading log exists: %w", err)
		}

		data, err := json.Marshal(log)
		if err != nil {
			return fmt.Errorf("marshal reading log: %w", err)
		}
		if err := txn.Set(key, data); err != nil {
			return err
		}

		return txn.Set(indexKey, []byte{})
	})
}

// GetReadingLog retrieves a reading log by ID.
func (s *Store) GetReadingLog(ctx context.Context, id string) (*domain.ReadingLog, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := buildKey(readingLogPrefix, id)
	defer releaseKey(key)

	var log domain.ReadingLog
	if err := s.get(key, &log); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrReadingLogNotFound
		}
		return nil, fmt.Errorf("get reading log: %w", err)
	}
	return &log, nil
}

// ListRecentLogs returns up to limit logs for a journey, newest first.
// A limit of 0 returns everything.
func (s *Store) ListRecentLogs(ctx context.Context, journeyID string, limit int) ([]*domain.ReadingLog, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := []byte(readingLogIndexPrefix(journeyID))
	var logIDs []string

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false
		opts.Reverse = true // Newest first

		it := txn.NewIterator(opts)
		defer it.Close()

		// With Reverse, seek to the end of the prefix range.
		seekKey := append(append([]byte{}, prefix...), 0xFF)
		for it.Seek(seekKey); it.ValidForPrefix(prefix); it.Next() {
			_, logID, err := parseTimestampIndexKey(it.Item().Key(), readingLogIndexPrefix(journeyID))
			if err != nil {
				continue
			}
			logIDs = append(logIDs, logID)
			if limit > 0 && len(logIDs) >= limit {
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list recent logs: %w", err)
	}

	return s.getLogsByIDs(ctx, logIDs)
}

// GetLogsForJourneyInRange returns a journey's logs with start <= Timestamp < end,
// oldest first. Used to aggregate daily counters and activity windows.
func (s *Store) GetLogsForJourneyInRange(ctx context.Context, journeyID string, start, end time.Time) ([]*domain.ReadingLog, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	indexPrefix := readingLogIndexPrefix(journeyID)
	prefix := []byte(indexPrefix)
	seekKey := formatTimestampIndexKey(indexPrefix, start, "", "")
	var logIDs []string

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(seekKey); it.ValidForPrefix(prefix); it.Next() {
			_, logID, err := parseTimestampIndexKey(it.Item().Key(), indexPrefix)
			if err != nil {
				continue
			}
			logIDs = append(logIDs, logID)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan logs in range: %w", err)
	}

	logs, err := s.getLogsByIDs(ctx, logIDs)
	if err != nil {
		return nil, err
	}

	// The index seek handles the lower bound; filter the upper bound here.
	filtered := logs[:0]
	for _, log := range logs {
		if log.Timestamp.Before(end) {
			filtered = append(filtered, log)
		}
	}
	return filtered, nil
}

// ListAllLogs returns every log for a journey, oldest first. Used by the
// progress aggregator to rebuild the read-model from history.
func (s *Store) ListAllLogs(ctx context.Context, journeyID string) ([]*domain.ReadingLog, error) {
	return s.GetLogsForJourneyInRange(ctx, journeyID, time.Time{}, maxLogTime)
}

// maxLogTime is far enough in the future to act as an unbounded range end.
var maxLogTime = time.Date(9999, 1, 1, 0, 0, 0, 0, time.UTC)

func (s *Store) getLogsByIDs(ctx context.Context, ids []string) ([]*domain.ReadingLog, error) {
	logs := make([]*domain.ReadingLog, 0, len(ids))
	for _, id := range ids {
		log, err := s.GetReadingLog(ctx, id)
		if err != nil {
			if errors.Is(err, ErrReadingLogNotFound) {
				continue // Index entry without a document, skip
			}
			return nil, err
		}
		logs = append(logs, log)
	}
	return logs, nil
}
