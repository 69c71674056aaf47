package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/khatmahq/khatma-server/internal/domain"
	"github.com/khatmahq/khatma-server/internal/service"
)

func (s *Server) registerJourneyRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "createJourney",
		Method:      http.MethodPost,
		Path:        "/api/v1/journeys",
		Summary:     "Create journey",
		Description: "Creates a new reading journey owned by the current user",
		Tags:        []string{"Journeys"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateJourney)

	huma.Register(s.api, huma.Operation{
		OperationID: "listJourneys",
		Method:      http.MethodGet,
		Path:        "/api/v1/journeys",
		Summary:     "List my journeys",
		Description: "Returns the journeys the user belongs to, most recently active first",
		Tags:        []string{"Journeys"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListJourneys)

	huma.Register(s.api, huma.Operation{
		OperationID: "getJourney",
		Method:      http.MethodGet,
		Path:        "/api/v1/journeys/{id}",
		Summary:     "Get journey",
		Tags:        []string{"Journeys"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetJourney)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateJourney",
		Method:      http.MethodPatch,
		Path:        "/api/v1/journeys/{id}",
		Summary:     "Update journey",
		Description: "Updates journey settings (owner or admin only)",
		Tags:        []string{"Journeys"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateJourney)

	huma.Register(s.api, huma.Operation{
		OperationID: "listJourneyMembers",
		Method:      http.MethodGet,
		Path:        "/api/v1/journeys/{id}/members",
		Summary:     "List journey members",
		Tags:        []string{"Journeys"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListJourneyMembers)
}

// === DTOs ===

// JourneyResponse is the API shape of a journey.
type JourneyResponse struct {
	ID              string     `json:"id" doc:"Journey ID"`
	Name            string     `json:"name" doc:"Journey name"`
	Description     string     `json:"description,omitempty" doc:"Journey description"`
	CreatedBy       string     `json:"created_by" doc:"Owner user ID"`
	IsPrivate       bool       `json:"is_private" doc:"Whether the journey is private"`
	RequireApproval bool       `json:"require_approval" doc:"Whether joins need approval"`
	TargetEndDate   *time.Time `json:"target_end_date,omitempty" doc:"Target completion date"`
	CreatedAt       time.Time  `json:"created_at" doc:"Creation timestamp"`
	UpdatedAt       time.Time  `json:"updated_at" doc:"Last update timestamp"`

	TotalVerses     int       `json:"total_verses" doc:"Total verses in the Quran"`
	VersesCompleted int       `json:"verses_completed" doc:"Verses read at least once"`
	Percentage      float64   `json:"percentage" doc:"Completion percentage"`
	VersesReadToday int       `json:"verses_read_today" doc:"Verses read today across all members"`
	LastActivityAt  time.Time `json:"last_activity_at" doc:"Last reading activity"`
	IsComplete      bool      `json:"is_complete" doc:"Whether every verse has been read"`
}

// JourneyOutput wraps a journey response for Huma.
type JourneyOutput struct {
	Body JourneyResponse
}

// JourneyListOutput wraps a journey list for Huma.
type JourneyListOutput struct {
	Body struct {
		Journeys []JourneyResponse `json:"journeys"`
	}
}

// CreateJourneyInput wraps the journey creation request for Huma.
type CreateJourneyInput struct {
	Body service.CreateJourneyRequest
}

// JourneyIDInput identifies a journey by path parameter.
type JourneyIDInput struct {
	ID string `path:"id" doc:"Journey ID"`
}

// UpdateJourneyInput wraps the journey update request for Huma.
type UpdateJourneyInput struct {
	ID   string `path:"id" doc:"Journey ID"`
	Body service.UpdateJourneyRequest
}

// MemberResponse is the API shape of a journey member.
type MemberResponse struct {
	UserID        string    `json:"user_id" doc:"Member user ID"`
	DisplayName   string    `json:"display_name" doc:"Member display name"`
	Role          string    `json:"role" doc:"Member role (owner, admin, member)"`
	JoinedAt      time.Time `json:"joined_at" doc:"Join timestamp"`
	VersesRead    int       `json:"verses_read" doc:"Total verses read in this journey"`
	TotalReadings int       `json:"total_readings" doc:"Number of reading logs"`
}

// MemberListOutput wraps the member list for Huma.
type MemberListOutput struct {
	Body struct {
		Members []MemberResponse `json:"members"`
	}
}

// === Handlers ===

func (s *Server) handleCreateJourney(ctx context.Context, input *CreateJourneyInput) (*JourneyOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	journey, err := s.services.Journey.CreateJourney(ctx, userID, input.Body)
	if err != nil {
		return nil, err
	}

	return &JourneyOutput{Body: mapJourney(journey)}, nil
}

func (s *Server) handleListJourneys(ctx context.Context, _ *struct{}) (*JourneyListOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	journeys, err := s.services.Journey.ListJourneys(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := &JourneyListOutput{}
	out.Body.Journeys = make([]JourneyResponse, 0, len(journeys))
	for _, j := range journeys {
		out.Body.Journeys = append(out.Body.Journeys, mapJourney(j))
	}
	return out, nil
}

func (s *Server) handleGetJourney(ctx context.Context, input *JourneyIDInput) (*JourneyOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	journey, err := s.services.Journey.GetJourney(ctx, input.ID, userID)
	if err != nil {
		return nil, err
	}

	return &JourneyOutput{Body: mapJourney(journey)}, nil
}

func (s *Server) handleUpdateJourney(ctx context.Context, input *UpdateJourneyInput) (*JourneyOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	journey, err := s.services.Journey.UpdateJourney(ctx, input.ID, userID, input.Body)
	if err != nil {
		return nil, err
	}

	return &JourneyOutput{Body: mapJourney(journey)}, nil
}

func (s *Server) handleListJourneyMembers(ctx context.Context, input *JourneyIDInput) (*MemberListOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	members, err := s.services.Journey.ListMembers(ctx, input.ID, userID)
	if err != nil {
		return nil, err
	}

	out := &MemberListOutput{}
	out.Body.Members = make([]MemberResponse, 0, len(members))
	for _, m := range members {
		out.Body.Members = append(out.Body.Members, mapMember(m))
	}
	return out, nil
}

// === Helpers ===

func mapJourney(j *domain.Journey) JourneyResponse {
	return JourneyResponse{
		ID:              j.ID,
		Name:            j.Name,
		Description:     j.Description,
		CreatedBy:       j.CreatedBy,
		IsPrivate:       j.Settings.IsPrivate,
		RequireApproval: j.Settings.RequireApproval,
		TargetEndDate:   j.TargetEndDate,
		CreatedAt:       j.CreatedAt,
		UpdatedAt:       j.UpdatedAt,
		TotalVerses:     j.Stats.TotalVerses,
		VersesCompleted: j.Stats.VersesCompleted,
		Percentage:      j.Stats.CompletionPercentage(),
		VersesReadToday: j.Stats.EffectiveVersesReadToday(time.Now()),
		LastActivityAt:  j.Stats.LastActivityAt,
		IsComplete:      j.IsComplete(),
	}
}

func mapMember(m *domain.JourneyMember) MemberResponse {
	return MemberResponse{
		UserID:        m.UserID,
		DisplayName:   m.DisplayName,
		Role:          string(m.Role),
		JoinedAt:      m.JoinedAt,
		VersesRead:    m.Stats.VersesRead,
		TotalReadings: m.Stats.TotalReadings,
	}
}
