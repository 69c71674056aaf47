package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/khatmahq/khatma-server/internal/domain"
	domainerrors "github.com/khatmahq/khatma-server/internal/errors"
	"github.com/khatmahq/khatma-server/internal/id"
	"github.com/khatmahq/khatma-server/internal/store"
)

const (
	// inviteCodeSize is the number of bytes for invite codes (16 bytes = 128 bits of entropy).
	inviteCodeSize = 16
	// defaultInviteExpiry is the default time until an invite expires.
	defaultInviteExpiry = 7 * 24 * time.Hour // 7 days
)

// InviteService handles journey invite creation, validation, and claiming.
type InviteService struct {
	store     *store.Store
	logger    *slog.Logger
	serverURL string // Base URL for generating invite links
}

// NewInviteService creates a new invite service.
func NewInviteService(
	store *store.Store,
	logger *slog.Logger,
	serverURL string,
) *InviteService {
	return &InviteService{
		store:     store,
		logger:    logger,
		serverURL: serverURL,
	}
}

// CreateInviteRequest contains the data needed to create an invite.
type CreateInviteRequest struct {
	// Email optionally pins the invite to one address. Empty means
	// anyone with the link can claim it.
	Email         string `json:"email,omitempty" validate:"omitempty,email"`
	ExpiresInDays int    `json:"expires_in_days,omitempty" validate:"min=0,max=365"` // 0 = use default (7 days)
}

// InviteResponse is returned after creating an invite.
type InviteResponse struct {
	*domain.Invite
	URL string `json:"url"` // Full URL for sharing
}

// InviteDetailsResponse is returned for public invite lookups.
type InviteDetailsResponse struct {
	JourneyName string `json:"journey_name"`
	InvitedBy   string `json:"invited_by"`
	Valid       bool   `json:"valid"`
	Status      string `json:"status"`
}

// CreateInvite creates an invite link for a journey.
// Only owners and admins may invite.
func (s *InviteService) CreateInvite(ctx context.Context, journeyID, userID string, req CreateInviteRequest) (*InviteResponse, error) {
	// Validate request
	if err := validate.Struct(req); err != nil {
		return nil, formatValidationError(err)
	}

	member, err := s.store.GetMember(ctx, journeyID, userID)
	if err != nil {
		if errors.Is(err, store.ErrMemberNotFound) {
			return nil, domainerrors.Forbidden("you are not a member of this journey")
		}
		return nil, fmt.Errorf("get member: %w", err)
	}
	if !member.Role.CanManage() {
		return nil, domainerrors.Forbidden("only journey owners and admins can create invites")
	}

	// Generate invite code
	code, err := generateInviteCode()
	if err != nil {
		return nil, fmt.Errorf("generate invite code: %w", err)
	}

	// Generate invite ID
	inviteID, err := id.Generate("invite")
	if err != nil {
		return nil, fmt.Errorf("generate invite ID: %w", err)
	}

	// Calculate expiration
	expiresIn := defaultInviteExpiry
	if req.ExpiresInDays > 0 {
		expiresIn = time.Duration(req.ExpiresInDays) * 24 * time.Hour
	}

	invite := &domain.Invite{
		Syncable: domain.Syncable{
			ID: inviteID,
		},
		Code:      code,
		JourneyID: journeyID,
		Email:     req.Email,
		InvitedBy: userID,
		ExpiresAt: time.Now().Add(expiresIn),
	}
	invite.InitTimestamps()

	if err := s.store.CreateInvite(ctx, invite); err != nil {
		if errors.Is(err, store.ErrInviteCodeExists) {
			// Extremely unlikely with 128-bit entropy, but handle it
			return nil, domainerrors.Conflict("invite code collision, please try again")
		}
		return nil, fmt.Errorf("create invite: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("Invite created",
			"invite_id", invite.ID,
			"journey_id", journeyID,
			"created_by", userID,
		)
	}

	return &InviteResponse{
		Invite: invite,
		URL:    s.serverURL + "/join/" + code,
	}, nil
}

// GetInviteDetails returns invite details by code (public, for landing page).
func (s *InviteService) GetInviteDetails(ctx context.Context, code string) (*InviteDetailsResponse, error) {
	invite, err := s.store.GetInviteByCode(ctx, code)
	if err != nil {
		if errors.Is(err, store.ErrInviteNotFound) {
			return nil, domainerrors.NotFound("invite not found")
		}
		return nil, fmt.Errorf("get invite: %w", err)
	}

	journey, err := s.store.GetJourney(ctx, invite.JourneyID)
	if err != nil {
		return nil, fmt.Errorf("get journey: %w", err)
	}

	invitedBy := invite.InvitedBy
	if inviter, err := s.store.GetUser(ctx, invite.InvitedBy); err == nil {
		invitedBy = inviter.Name()
	}

	return &InviteDetailsResponse{
		JourneyName: journey.Name,
		InvitedBy:   invitedBy,
		Valid:       invite.IsValid(),
		Status:      invite.Status(),
	}, nil
}

// ClaimInvite joins the authenticated user to the invite's journey and
// marks the invite claimed. Single use.
func (s *InviteService) ClaimInvite(ctx context.Context, code, userID string) (*domain.JourneyMember, error) {
	invite, err := s.store.GetInviteByCode(ctx, code)
	if err != nil {
		if errors.Is(err, store.ErrInviteNotFound) {
			return nil, domainerrors.NotFound("invite not found")
		}
		return nil, fmt.Errorf("get invite: %w", err)
	}

	if invite.IsClaimed() {
		return nil, domainerrors.Conflict("invite has already been claimed")
	}
	if invite.IsExpired() {
		return nil, domainerrors.Validation("invite has expired")
	}

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, domainerrors.NotFound("user not found")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	// Email-pinned invites can only be claimed by that address.
	if invite.Email != "" && !strings.EqualFold(invite.Email, user.Email) {
		return nil, domainerrors.Forbidden("this invite was issued to a different email address")
	}

	now := time.Now()
	member := &domain.JourneyMember{
		JourneyID:   invite.JourneyID,
		UserID:      userID,
		DisplayName: user.Name(),
		Role:        domain.RoleMember,
		JoinedAt:    now,
	}

	// One transaction covers the claimed-check, the claim-mark and the
	// membership write, so two users racing on a single-use invite cannot
	// both get in.
	if _, err := s.store.ClaimInvite(ctx, invite.ID, member, now); err != nil {
		switch {
		case errors.Is(err, store.ErrInviteAlreadyClaimed):
			return nil, domainerrors.Conflict("invite has already been claimed")
		case errors.Is(err, store.ErrAlreadyMember):
			return nil, domainerrors.Conflict("you are already a member of this journey")
		case errors.Is(err, store.ErrInviteNotFound):
			return nil, domainerrors.NotFound("invite not found")
		}
		return nil, fmt.Errorf("claim invite: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("Invite claimed",
			"invite_id", invite.ID,
			"journey_id", invite.JourneyID,
			"user_id", userID,
		)
	}

	return member, nil
}

// ListInvites returns the invites for a journey. Only owners and admins.
func (s *InviteService) ListInvites(ctx context.Context, journeyID, userID string) ([]*domain.Invite, error) {
	member, err := s.store.GetMember(ctx, journeyID, userID)
	if err != nil {
		if errors.Is(err, store.ErrMemberNotFound) {
			return nil, domainerrors.Forbidden("you are not a member of this journey")
		}
		return nil, fmt.Errorf("get member: %w", err)
	}
	if !member.Role.CanManage() {
		return nil, domainerrors.Forbidden("only journey owners and admins can list invites")
	}

	invites, err := s.store.ListInvitesByJourney(ctx, journeyID)
	if err != nil {
		return nil, fmt.Errorf("list invites: %w", err)
	}
	return invites, nil
}

// RevokeInvite deletes an unclaimed invite. Only owners and admins.
func (s *InviteService) RevokeInvite(ctx context.Context, journeyID, userID, inviteID string) error {
	member, err := s.store.GetMember(ctx, journeyID, userID)
	if err != nil {
		if errors.Is(err, store.ErrMemberNotFound) {
			return domainerrors.Forbidden("you are not a member of this journey")
		}
		return fmt.Errorf("get member: %w", err)
	}
	if !member.Role.CanManage() {
		return domainerrors.Forbidden("only journey owners and admins can revoke invites")
	}

	invite, err := s.store.GetInvite(ctx, inviteID)
	if err != nil {
		if errors.Is(err, store.ErrInviteNotFound) {
			return domainerrors.NotFound("invite not found")
		}
		return fmt.Errorf("get invite: %w", err)
	}
	if invite.JourneyID != journeyID {
		return domainerrors.NotFound("invite not found")
	}

	if err := s.store.DeleteInvite(ctx, inviteID); err != nil {
		return fmt.Errorf("delete invite: %w", err)
	}
	return nil
}

// GetInviteURL returns the full URL for an invite code.
func (s *InviteService) GetInviteURL(code string) string {
	return s.serverURL + "/join/" + code
}

// generateInviteCode generates a cryptographically random, URL-safe invite code.
func generateInviteCode() (string, error) {
	b := make([]byte, inviteCodeSize)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
