package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/khatmahq/khatma-server/internal/domain"
	"github.com/khatmahq/khatma-server/internal/quran"
	"github.com/khatmahq/khatma-server/internal/service"
)

func (s *Server) registerReadingRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "logReading",
		Method:      http.MethodPost,
		Path:        "/api/v1/journeys/{id}/readings",
		Summary:     "Log a reading",
		Description: "Records a verse range read by one or more journey members",
		Tags:        []string{"Readings"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleLogReading)

	huma.Register(s.api, huma.Operation{
		OperationID: "listReadings",
		Method:      http.MethodGet,
		Path:        "/api/v1/journeys/{id}/readings",
		Summary:     "List recent readings",
		Description: "Returns the journey's reading logs, newest first",
		Tags:        []string{"Readings"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListReadings)

	huma.Register(s.api, huma.Operation{
		OperationID: "getReading",
		Method:      http.MethodGet,
		Path:        "/api/v1/journeys/{id}/readings/{logID}",
		Summary:     "Get reading log",
		Tags:        []string{"Readings"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetReading)
}

// === DTOs ===

// LogReadingInput wraps the reading request for Huma.
type LogReadingInput struct {
	ID   string `path:"id" doc:"Journey ID"`
	Body service.LogReadingRequest
}

// ReadingLogResponse is the API shape of a reading log.
type ReadingLogResponse struct {
	ID           string    `json:"id" doc:"Log ID"`
	JourneyID    string    `json:"journey_id" doc:"Journey ID"`
	LoggedBy     string    `json:"logged_by" doc:"User who recorded the log"`
	LoggedByName string    `json:"logged_by_name" doc:"Display name of the logger"`
	ReadBy       []string  `json:"read_by" doc:"User IDs credited with the reading"`
	ReadByNames  []string  `json:"read_by_names" doc:"Display names of the readers"`
	Start        string    `json:"start" doc:"Range start (surah:verse)"`
	End          string    `json:"end" doc:"Range end (surah:verse)"`
	Display      string    `json:"display" doc:"Human-readable range"`
	VerseCount   int       `json:"verse_count" doc:"Number of verses in the range"`
	Note         string    `json:"note,omitempty" doc:"Optional note"`
	Timestamp    time.Time `json:"timestamp" doc:"When the reading was logged"`
}

// LogReadingResponse is the result of recording a reading.
type LogReadingResponse struct {
	Log                 ReadingLogResponse     `json:"log" doc:"The recorded log"`
	NewlyCompleted      []quran.VerseRef       `json:"newly_completed" doc:"Verses completed for the first time"`
	NewlyCompletedCount int                    `json:"newly_completed_count" doc:"Count of newly completed verses"`
	JourneyCompleted    bool                   `json:"journey_completed" doc:"Whether the journey is now complete"`
	ReaderStats         *service.UserStatsView `json:"reader_stats,omitempty" doc:"Logger's updated stats"`
}

// LogReadingOutput wraps the reading result for Huma.
type LogReadingOutput struct {
	Body LogReadingResponse
}

// ListReadingsInput identifies a journey and an optional limit.
type ListReadingsInput struct {
	ID    string `path:"id" doc:"Journey ID"`
	Limit int    `query:"limit" minimum:"0" maximum:"500" doc:"Maximum logs to return (0 = all)"`
}

// ReadingListOutput wraps the reading list for Huma.
type ReadingListOutput struct {
	Body struct {
		Readings []ReadingLogResponse `json:"readings"`
	}
}

// GetReadingInput identifies one reading log.
type GetReadingInput struct {
	ID    string `path:"id" doc:"Journey ID"`
	LogID string `path:"logID" doc:"Reading log ID"`
}

// ReadingLogOutput wraps one reading log for Huma.
type ReadingLogOutput struct {
	Body ReadingLogResponse
}

// === Handlers ===

func (s *Server) handleLogReading(ctx context.Context, input *LogReadingInput) (*LogReadingOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	result, err := s.services.Reading.LogReading(ctx, input.ID, userID, input.Body)
	if err != nil {
		return nil, err
	}

	var readerStats *service.UserStatsView
	if result.ReaderStats != nil {
		view, err := s.services.Stats.GetUserStats(ctx, userID)
		if err == nil {
			readerStats = view
		}
	}

	return &LogReadingOutput{
		Body: LogReadingResponse{
			Log:                 mapReadingLog(result.Log),
			NewlyCompleted:      result.NewlyCompleted,
			NewlyCompletedCount: result.NewlyCompletedCount,
			JourneyCompleted:    result.JourneyCompleted,
			ReaderStats:         readerStats,
		},
	}, nil
}

func (s *Server) handleListReadings(ctx context.Context, input *ListReadingsInput) (*ReadingListOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	logs, err := s.services.Reading.ListRecentLogs(ctx, input.ID, userID, input.Limit)
	if err != nil {
		return nil, err
	}

	out := &ReadingListOutput{}
	out.Body.Readings = make([]ReadingLogResponse, 0, len(logs))
	for _, l := range logs {
		out.Body.Readings = append(out.Body.Readings, mapReadingLog(l))
	}
	return out, nil
}

func (s *Server) handleGetReading(ctx context.Context, input *GetReadingInput) (*ReadingLogOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	readingLog, err := s.services.Reading.GetLog(ctx, input.ID, userID, input.LogID)
	if err != nil {
		return nil, err
	}

	return &ReadingLogOutput{Body: mapReadingLog(readingLog)}, nil
}

// === Helpers ===

func mapReadingLog(l *domain.ReadingLog) ReadingLogResponse {
	return ReadingLogResponse{
		ID:           l.ID,
		JourneyID:    l.JourneyID,
		LoggedBy:     l.LoggedBy,
		LoggedByName: l.LoggedByName,
		ReadBy:       l.ReadBy,
		ReadByNames:  l.ReadByNames,
		Start:        l.Range.Start.String(),
		End:          l.Range.End.String(),
		Display:      l.Range.Display(),
		VerseCount:   l.VerseCount,
		Note:         l.Note,
		Timestamp:    l.Timestamp,
	}
}
