package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/khatmahq/khatma-server/internal/domain"
	"github.com/khatmahq/khatma-server/internal/service"
)

func (s *Server) registerUserRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "get-current-user",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/me",
		Summary:     "Get current user",
		Tags:        []string{"Users"},
	}, s.handleGetCurrentUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "update-profile",
		Method:      http.MethodPatch,
		Path:        "/api/v1/users/me",
		Summary:     "Update profile",
		Tags:        []string{"Users"},
	}, s.handleUpdateProfile)

	huma.Register(s.api, huma.Operation{
		OperationID: "get-user-stats",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/me/stats",
		Summary:     "Get reading statistics",
		Description: "Returns the authenticated user's streaks and reading totals.",
		Tags:        []string{"Users"},
	}, s.handleGetUserStats)

	huma.Register(s.api, huma.Operation{
		OperationID: "has-read-today",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/me/has-read-today",
		Summary:     "Check today's reading",
		Description: "Reports whether the user has logged any reading today.",
		Tags:        []string{"Users"},
	}, s.handleHasReadToday)

	huma.Register(s.api, huma.Operation{
		OperationID: "list-sessions",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/me/sessions",
		Summary:     "List active sessions",
		Tags:        []string{"Users"},
	}, s.handleListSessions)
}

// === DTOs ===

// UserOutput wraps a user response for Huma.
type UserOutput struct {
	Body UserResponse
}

// UpdateProfileRequest is the request body for profile updates.
type UpdateProfileRequest struct {
	DisplayName *string `json:"display_name,omitempty" validate:"omitempty,min=1,max=100" doc:"New display name"`
	PhotoURL    *string `json:"photo_url,omitempty" validate:"omitempty,max=500" doc:"New profile photo URL"`
}

// UpdateProfileInput wraps the profile update for Huma.
type UpdateProfileInput struct {
	Body UpdateProfileRequest
}

// GetUserStatsInput carries the optional stats window.
type GetUserStatsInput struct {
	Period string `query:"period" enum:"day,week,month,year,all" doc:"Optional activity window to summarize"`
}

// UserStatsOutput wraps the stats view for Huma.
type UserStatsOutput struct {
	Body service.UserStatsView
}

// HasReadTodayResponse reports the daily reading check.
type HasReadTodayResponse struct {
	HasReadToday bool `json:"has_read_today" doc:"True when a reading was logged today"`
}

// HasReadTodayOutput wraps the daily check for Huma.
type HasReadTodayOutput struct {
	Body HasReadTodayResponse
}

// SessionResponse describes one active session.
type SessionResponse struct {
	ID         string    `json:"id" doc:"Session ID"`
	DeviceName string    `json:"device_name,omitempty" doc:"Device name"`
	Platform   string    `json:"platform,omitempty" doc:"Platform"`
	ClientName string    `json:"client_name,omitempty" doc:"Client name"`
	IPAddress  string    `json:"ip_address,omitempty" doc:"Last seen IP"`
	CreatedAt  time.Time `json:"created_at" doc:"Creation time"`
	LastSeenAt time.Time `json:"last_seen_at" doc:"Last activity time"`
	ExpiresAt  time.Time `json:"expires_at" doc:"Expiry time"`
}

// SessionListOutput wraps the session list for Huma.
type SessionListOutput struct {
	Body struct {
		Sessions []SessionResponse `json:"sessions"`
	}
}

// === Handlers ===

func (s *Server) handleGetCurrentUser(ctx context.Context, _ *struct{}) (*UserOutput, error) {
	user, err := s.RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	return &UserOutput{Body: mapUser(user)}, nil
}

func (s *Server) handleUpdateProfile(ctx context.Context, input *UpdateProfileInput) (*UserOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	user, err := s.services.User.UpdateProfile(ctx, userID, service.UpdateProfileRequest{
		DisplayName: input.Body.DisplayName,
		PhotoURL:    input.Body.PhotoURL,
	})
	if err != nil {
		return nil, err
	}

	return &UserOutput{Body: mapUser(user)}, nil
}

func (s *Server) handleGetUserStats(ctx context.Context, input *GetUserStatsInput) (*UserStatsOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	view, err := s.services.Stats.GetUserStats(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.Period != "" {
		activity, err := s.services.Stats.GetPeriodActivity(ctx, userID, domain.StatsPeriod(input.Period))
		if err != nil {
			return nil, err
		}
		view.Period = activity
	}

	return &UserStatsOutput{Body: *view}, nil
}

func (s *Server) handleHasReadToday(ctx context.Context, _ *struct{}) (*HasReadTodayOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	hasRead, err := s.services.Stats.HasReadToday(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := &HasReadTodayOutput{}
	out.Body.HasReadToday = hasRead
	return out, nil
}

func (s *Server) handleListSessions(ctx context.Context, _ *struct{}) (*SessionListOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	sessions, err := s.services.Session.ListUserSessions(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := &SessionListOutput{}
	out.Body.Sessions = make([]SessionResponse, 0, len(sessions))
	for _, sess := range sessions {
		out.Body.Sessions = append(out.Body.Sessions, SessionResponse{
			ID:         sess.ID,
			DeviceName: sess.DeviceName,
			Platform:   sess.Platform,
			ClientName: sess.ClientName,
			IPAddress:  sess.IPAddress,
			CreatedAt:  sess.CreatedAt,
			LastSeenAt: sess.LastSeenAt,
			ExpiresAt:  sess.ExpiresAt,
		})
	}
	return out, nil
}
