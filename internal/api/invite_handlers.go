package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/khatmahq/khatma-server/internal/domain"
	"github.com/khatmahq/khatma-server/internal/service"
)

func (s *Server) registerInviteRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "createInvite",
		Method:      http.MethodPost,
		Path:        "/api/v1/journeys/{id}/invites",
		Summary:     "Create invite",
		Description: "Creates a shareable invite link for a journey. Requires owner or admin role.",
		Tags:        []string{"Invites"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateInvite)

	huma.Register(s.api, huma.Operation{
		OperationID: "listInvites",
		Method:      http.MethodGet,
		Path:        "/api/v1/journeys/{id}/invites",
		Summary:     "List invites",
		Tags:        []string{"Invites"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListInvites)

	huma.Register(s.api, huma.Operation{
		OperationID: "revokeInvite",
		Method:      http.MethodDelete,
		Path:        "/api/v1/journeys/{id}/invites/{inviteID}",
		Summary:     "Revoke invite",
		Tags:        []string{"Invites"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleRevokeInvite)

	// Public endpoints keyed by invite code. Lookup needs no account at
	// all; claiming requires a logged-in user.
	huma.Register(s.api, huma.Operation{
		OperationID: "getInvite",
		Method:      http.MethodGet,
		Path:        "/api/v1/invites/{code}",
		Summary:     "Get invite details",
		Tags:        []string{"Invites"},
	}, s.handleGetInvite)

	huma.Register(s.api, huma.Operation{
		OperationID: "claimInvite",
		Method:      http.MethodPost,
		Path:        "/api/v1/invites/{code}/claim",
		Summary:     "Claim invite",
		Description: "Joins the authenticated user to the invite's journey",
		Tags:        []string{"Invites"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleClaimInvite)
}

// === DTOs ===

// CreateInviteInput wraps the invite request for Huma.
type CreateInviteInput struct {
	ID   string `path:"id" doc:"Journey ID"`
	Body service.CreateInviteRequest
}

// InviteItem is the API shape of an invite.
type InviteItem struct {
	ID        string     `json:"id" doc:"Invite ID"`
	Code      string     `json:"code" doc:"Invite code"`
	JourneyID string     `json:"journey_id" doc:"Journey ID"`
	Email     string     `json:"email,omitempty" doc:"Pinned invitee email, if any"`
	InvitedBy string     `json:"invited_by" doc:"User who created the invite"`
	URL       string     `json:"url" doc:"Shareable invite URL"`
	ExpiresAt time.Time  `json:"expires_at" doc:"When the invite expires"`
	ClaimedAt *time.Time `json:"claimed_at,omitempty" doc:"When the invite was claimed"`
	ClaimedBy string     `json:"claimed_by,omitempty" doc:"User who claimed the invite"`
	CreatedAt time.Time  `json:"created_at" doc:"When the invite was created"`
}

// InviteOutput wraps one invite for Huma.
type InviteOutput struct {
	Body InviteItem
}

// InviteListOutput wraps the invite list for Huma.
type InviteListOutput struct {
	Body struct {
		Invites []InviteItem `json:"invites"`
	}
}

// InviteIDInput identifies one invite within a journey.
type InviteIDInput struct {
	ID       string `path:"id" doc:"Journey ID"`
	InviteID string `path:"inviteID" doc:"Invite ID"`
}

// InviteCodeInput identifies an invite by its public code.
type InviteCodeInput struct {
	Code string `path:"code" doc:"Invite code"`
}

// InviteDetailsOutput wraps the public invite lookup for Huma.
type InviteDetailsOutput struct {
	Body service.InviteDetailsResponse
}

// MemberOutput wraps a single journey member for Huma.
type MemberOutput struct {
	Body MemberResponse
}

// === Handlers ===

func (s *Server) handleCreateInvite(ctx context.Context, input *CreateInviteInput) (*InviteOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	invite, err := s.services.Invite.CreateInvite(ctx, input.ID, userID, input.Body)
	if err != nil {
		return nil, err
	}

	return &InviteOutput{Body: mapInvite(invite.Invite, invite.URL)}, nil
}

func (s *Server) handleListInvites(ctx context.Context, input *JourneyIDInput) (*InviteListOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	invites, err := s.services.Invite.ListInvites(ctx, input.ID, userID)
	if err != nil {
		return nil, err
	}

	out := &InviteListOutput{}
	out.Body.Invites = make([]InviteItem, 0, len(invites))
	for _, inv := range invites {
		out.Body.Invites = append(out.Body.Invites, mapInvite(inv, s.services.Invite.GetInviteURL(inv.Code)))
	}
	return out, nil
}

func (s *Server) handleRevokeInvite(ctx context.Context, input *InviteIDInput) (*MessageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Invite.RevokeInvite(ctx, input.ID, userID, input.InviteID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Invite revoked"}}, nil
}

func (s *Server) handleGetInvite(ctx context.Context, input *InviteCodeInput) (*InviteDetailsOutput, error) {
	details, err := s.services.Invite.GetInviteDetails(ctx, input.Code)
	if err != nil {
		return nil, err
	}

	return &InviteDetailsOutput{Body: *details}, nil
}

func (s *Server) handleClaimInvite(ctx context.Context, input *InviteCodeInput) (*MemberOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	member, err := s.services.Invite.ClaimInvite(ctx, input.Code, userID)
	if err != nil {
		return nil, err
	}

	return &MemberOutput{Body: mapMember(member)}, nil
}

// === Helpers ===

func mapInvite(inv *domain.Invite, url string) InviteItem {
	return InviteItem{
		ID:        inv.ID,
		Code:      inv.Code,
		JourneyID: inv.JourneyID,
		Email:     inv.Email,
		InvitedBy: inv.InvitedBy,
		URL:       url,
		ExpiresAt: inv.ExpiresAt,
		ClaimedAt: inv.ClaimedAt,
		ClaimedBy: inv.ClaimedBy,
		CreatedAt: inv.CreatedAt,
	}
}
