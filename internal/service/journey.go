package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/khatmahq/khatma-server/internal/domain"
	domainerrors "github.com/khatmahq/khatma-server/internal/errors"
	"github.com/khatmahq/khatma-server/internal/id"
	"github.com/khatmahq/khatma-server/internal/store"
)

// JourneyService manages shared reading journeys and their membership.
type JourneyService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewJourneyService creates a new journey service.
func NewJourneyService(store *store.Store, logger *slog.Logger) *JourneyService {
	return &JourneyService{
		store:  store,
		logger: logger,
	}
}

// CreateJourneyRequest contains the data for a new journey.
type CreateJourneyRequest struct {
	Name            string     `json:"name" validate:"required,max=200"`
	Description     string     `json:"description,omitempty" validate:"max=2000"`
	IsPrivate       bool       `json:"is_private,omitempty"`
	RequireApproval bool       `json:"require_approval,omitempty"`
	TargetEndDate   *time.Time `json:"target_end_date,omitempty"`
}

// UpdateJourneyRequest contains optional journey updates.
// Nil fields are left unchanged.
type UpdateJourneyRequest struct {
	Name            *string    `json:"name,omitempty" validate:"omitempty,max=200"`
	Description     *string    `json:"description,omitempty" validate:"omitempty,max=2000"`
	IsPrivate       *bool      `json:"is_private,omitempty"`
	RequireApproval *bool      `json:"require_approval,omitempty"`
	TargetEndDate   *time.Time `json:"target_end_date,omitempty"`
}

// CreateJourney creates a journey with the caller as its owner.
func (s *JourneyService) CreateJourney(ctx context.Context, userID string, req CreateJourneyRequest) (*domain.Journey, error) {
	if err := validate.Struct(req); err != nil {
		return nil, formatValidationError(err)
	}

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, domainerrors.NotFound("user not found")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	journeyID, err := id.Generate("journey")
	if err != nil {
		return nil, fmt.Errorf("generate journey ID: %w", err)
	}

	journey := &domain.Journey{
		Syncable: domain.Syncable{
			ID: journeyID,
		},
		Name:        req.Name,
		Description: req.Description,
		CreatedBy:   userID,
		Settings: domain.JourneySettings{
			IsPrivate:       req.IsPrivate,
			RequireApproval: req.RequireApproval,
		},
		Stats:         domain.NewJourneyStats(),
		TargetEndDate: req.TargetEndDate,
	}
	journey.InitTimestamps()

	owner := &domain.JourneyMember{
		JourneyID:   journeyID,
		UserID:      userID,
		DisplayName: user.Name(),
		Role:        domain.RoleOwner,
		JoinedAt:    time.Now(),
	}

	if err := s.store.CreateJourney(ctx, journey, owner); err != nil {
		return nil, fmt.Errorf("create journey: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("Journey created",
			"journey_id", journeyID,
			"created_by", userID,
			"name", req.Name,
		)
	}

	return journey, nil
}

// GetJourney returns a journey. Private journeys are only visible to members.
func (s *JourneyService) GetJourney(ctx context.Context, journeyID, userID string) (*domain.Journey, error) {
	journey, err := s.store.GetJourney(ctx, journeyID)
	if err != nil {
		if errors.Is(err, store.ErrJourneyNotFound) {
			return nil, domainerrors.NotFound("journey not found")
		}
		return nil, fmt.Errorf("get journey: %w", err)
	}

	if journey.Settings.IsPrivate {
		if _, err := s.requireMember(ctx, journeyID, userID); err != nil {
			// Don't reveal that a private journey exists.
			return nil, domainerrors.NotFound("journey not found")
		}
	}

	return journey, nil
}

// ListJourneys returns the journeys the user belongs to,
// most recently active first.
func (s *JourneyService) ListJourneys(ctx context.Context, userID string) ([]*domain.Journey, error) {
	journeys, err := s.store.ListJourneysForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list journeys: %w", err)
	}

	sort.Slice(journeys, func(i, j int) bool {
		a, b := journeys[i], journeys[j]
		at, bt := a.Stats.LastActivityAt, b.Stats.LastActivityAt
		// Journeys without activity fall back to creation order.
		if at.IsZero() {
			at = a.CreatedAt
		}
		if bt.IsZero() {
			bt = b.CreatedAt
		}
		return at.After(bt)
	})

	return journeys, nil
}

// UpdateJourney applies settings changes. Only owners and admins may update.
func (s *JourneyService) UpdateJourney(ctx context.Context, journeyID, userID string, req UpdateJourneyRequest) (*domain.Journey, error) {
	if err := validate.Struct(req); err != nil {
		return nil, formatValidationError(err)
	}

	member, err := s.requireMember(ctx, journeyID, userID)
	if err != nil {
		return nil, err
	}
	if !member.Role.CanManage() {
		return nil, domainerrors.Forbidden("only journey owners and admins can update settings")
	}

	journey, err := s.store.GetJourney(ctx, journeyID)
	if err != nil {
		if errors.Is(err, store.ErrJourneyNotFound) {
			return nil, domainerrors.NotFound("journey not found")
		}
		return nil, fmt.Errorf("get journey: %w", err)
	}

	if req.Name != nil {
		if *req.Name == "" {
			return nil, domainerrors.Validation("name cannot be empty")
		}
		journey.Name = *req.Name
	}
	if req.Description != nil {
		journey.Description = *req.Description
	}
	if req.IsPrivate != nil {
		journey.Settings.IsPrivate = *req.IsPrivate
	}
	if req.RequireApproval != nil {
		journey.Settings.RequireApproval = *req.RequireApproval
	}
	if req.TargetEndDate != nil {
		journey.TargetEndDate = req.TargetEndDate
	}

	if err := s.store.UpdateJourney(ctx, journey); err != nil {
		return nil, fmt.Errorf("update journey: %w", err)
	}

	return journey, nil
}

// ListMembers returns all members of a journey. Caller must be a member.
func (s *JourneyService) ListMembers(ctx context.Context, journeyID, userID string) ([]*domain.JourneyMember, error) {
	if _, err := s.requireMember(ctx, journeyID, userID); err != nil {
		return nil, err
	}

	members, err := s.store.ListMembers(ctx, journeyID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}

	sort.Slice(members, func(i, j int) bool {
		return members[i].JoinedAt.Before(members[j].JoinedAt)
	})

	return members, nil
}

// GetMember returns the caller's own membership record.
func (s *JourneyService) GetMember(ctx context.Context, journeyID, userID string) (*domain.JourneyMember, error) {
	return s.requireMember(ctx, journeyID, userID)
}

// requireMember loads the membership record or fails with a domain error.
func (s *JourneyService) requireMember(ctx context.Context, journeyID, userID string) (*domain.JourneyMember, error) {
	member, err := s.store.GetMember(ctx, journeyID, userID)
	if err != nil {
		if errors.Is(err, store.ErrMemberNotFound) {
			return nil, domainerrors.Forbidden("you are not a member of this journey")
		}
		return nil, fmt.Errorf("get member: %w", err)
	}
	return member, nil
}
