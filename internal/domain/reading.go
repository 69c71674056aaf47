package domain

import (
	"time"

	"github.com/khatmahq/khatma-server/internal/quran"
)

// ReadingLog is one logged reading of a contiguous verse range. Logs are
// append-only: once written they are never updated or deleted, so the full
// history of a journey can always be replayed from them.
//
// A log may be recorded on behalf of several readers (a parent logging for
// their children, a study circle logging one session). ReadBy lists every
// participant; LoggedBy is the account that submitted it.
type ReadingLog struct {
	ID           string           `json:"id"`
	JourneyID    string           `json:"journey_id"`
	LoggedBy     string           `json:"logged_by"`
	LoggedByName string           `json:"logged_by_name"`
	ReadBy       []string         `json:"read_by"`
	ReadByNames  []string         `json:"read_by_names"`
	Range        quran.VerseRange `json:"range"`
	VerseCount   int              `json:"verse_count"`
	Note         string           `json:"note,omitempty"`
	Timestamp    time.Time        `json:"timestamp"`
}

// VerseCompletion marks a verse as read within a journey. Completions are
// first-writer-wins: the record is created once, by whoever reads the verse
// first, and never updated by later overlapping logs. Its existence is the
// source of truth for "has this verse been read".
type VerseCompletion struct {
	JourneyID    string         `json:"journey_id"`
	Ref          quran.VerseRef `json:"ref"`
	CompletedAt  time.Time      `json:"completed_at"`
	CompletedBy  []string       `json:"completed_by"`
	ReadingLogID string         `json:"reading_log_id"`
}
