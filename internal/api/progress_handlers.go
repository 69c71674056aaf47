package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/khatmahq/khatma-server/internal/service"
)

func (s *Server) registerProgressRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getJourneyProgress",
		Method:      http.MethodGet,
		Path:        "/api/v1/journeys/{id}/progress",
		Summary:     "Get journey progress",
		Description: "Returns per-surah completion and a journey-wide summary",
		Tags:        []string{"Progress"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetProgress)

	huma.Register(s.api, huma.Operation{
		OperationID: "reconcileJourneyProgress",
		Method:      http.MethodPost,
		Path:        "/api/v1/journeys/{id}/progress/reconcile",
		Summary:     "Reconcile journey counters",
		Description: "Recomputes the journey's completion counter from verse completion records and repairs drift",
		Tags:        []string{"Progress"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleReconcileProgress)
}

// GetProgressInput identifies a journey and optional filters.
type GetProgressInput struct {
	ID     string `path:"id" doc:"Journey ID"`
	Status string `query:"status" enum:"not-started,in-progress,complete" doc:"Keep only surahs in this state"`
	Sort   string `query:"sort" enum:"number,percentage" doc:"Sort order for surah rows"`
}

// ProgressOutput wraps the progress report for Huma.
type ProgressOutput struct {
	Body service.ProgressReport
}

// ReconcileOutput wraps the reconcile report for Huma.
type ReconcileOutput struct {
	Body service.ReconcileReport
}

func (s *Server) handleGetProgress(ctx context.Context, input *GetProgressInput) (*ProgressOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	report, err := s.services.Progress.GetProgress(ctx, input.ID, userID, service.ProgressQuery{
		Status: service.SurahStatus(input.Status),
		SortBy: input.Sort,
	})
	if err != nil {
		return nil, err
	}

	return &ProgressOutput{Body: *report}, nil
}

func (s *Server) handleReconcileProgress(ctx context.Context, input *JourneyIDInput) (*ReconcileOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	report, err := s.services.Progress.Reconcile(ctx, input.ID, userID)
	if err != nil {
		return nil, err
	}

	return &ReconcileOutput{Body: *report}, nil
}
