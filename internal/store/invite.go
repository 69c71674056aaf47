package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/khatmahq/khatma-server/internal/domain"
)

const (
	invitePrefix          = "invite:"
	inviteByCodePrefix    = "idx:invites:code:"    // For public code lookups
	inviteByJourneyPrefix = "idx:invites:journey:" // For listing a journey's invites
)

var (
	// ErrInviteNotFound is returned when an invite cannot be found.
	ErrInviteNotFound = errors.New("invite not found")
	// ErrInviteCodeExists is returned when an invite code already exists.
	ErrInviteCodeExists = errors.New("invite code already exists")
	// ErrInviteAlreadyClaimed is returned when claiming an invite that was
	// already claimed.
	ErrInviteAlreadyClaimed = errors.New("invite has already been claimed")
)

// CreateInvite creates a new journey invite.
func (s *Store) CreateInvite(_ context.Context, invite *domain.Invite) error {
	key := []byte(invitePrefix + invite.ID)

	// Check if invite ID already exists
	exists, err := s.exists(key)
	if err != nil {
		return fmt.Errorf("check invite exists: %w", err)
	}
	if exists {
		return errors.New("invite ID already exists")
	}

	codeKey := []byte(inviteByCodePrefix + invite.Code)
	journeyKey := []byte(inviteByJourneyPrefix + invite.JourneyID + ":" + invite.ID)

	return s.db.Update(func(txn *badger.Txn) error {
		// Check if code is already in use
		_, err := txn.Get(codeKey)
		if err == nil {
			return ErrInviteCodeExists
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("check code exists: %w", err)
		}

		// Save invite
		data, err := json.Marshal(invite)
		if err != nil {
			return fmt.Errorf("marshal invite: %w", err)
		}

		if err := txn.Set(key, data); err != nil {
			return err
		}

		// Create code index
		if err := txn.Set(codeKey, []byte(invite.ID)); err != nil {
			return err
		}

		// Create journey index for listing
		if err := txn.Set(journeyKey, []byte{}); err != nil {
			return err
		}

		return nil
	})
}

// GetInvite retrieves an invite by ID.
func (s *Store) GetInvite(_ context.Context, id string) (*domain.Invite, error) {
	key := []byte(invitePrefix + id)

	var invite domain.Invite
	if err := s.get(key, &invite); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrInviteNotFound
		}
		return nil, fmt.Errorf("get invite: %w", err)
	}

	return &invite, nil
}

// GetInviteByCode retrieves an invite by its public code.
// This is the primary lookup method for the public claim flow.
func (s *Store) GetInviteByCode(ctx context.Context, code string) (*domain.Invite, error) {
	codeKey := []byte(inviteByCodePrefix + code)

	// Look up invite ID from code index
	var inviteID string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(codeKey)
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			inviteID = string(val)
			return nil
		})
	})

	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrInviteNotFound
		}
		return nil, fmt.Errorf("lookup invite by code: %w", err)
	}

	return s.GetInvite(ctx, inviteID)
}

// ClaimInvite marks an unclaimed invite claimed and adds the claimant as a
// journey member in one transaction, so a single-use invite can only ever
// admit one user. The claimed-check and the claim-mark share the
// transaction; a racing claim conflicts, retries, and then sees the invite
// as taken. Returns the claimed invite.
func (s *Store) ClaimInvite(ctx context.Context, inviteID string, member *domain.JourneyMember, now time.Time) (*domain.Invite, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	inviteKey := []byte(invitePrefix + inviteID)
	mKey := memberKey(member.JourneyID, member.UserID)
	userIndexKey := []byte(memberByUserPrefix + member.UserID + ":" + member.JourneyID)

	var invite domain.Invite
	err := s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(inviteKey)
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrInviteNotFound
			}
			return fmt.Errorf("get invite: %w", err)
		}
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &invite)
		}); err != nil {
			return fmt.Errorf("unmarshal invite: %w", err)
		}
		if invite.ClaimedAt != nil {
			return ErrInviteAlreadyClaimed
		}

		_, err = txn.Get(mKey)
		if err == nil {
			return ErrAlreadyMember
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("check member exists: %w", err)
		}

		invite.ClaimedAt = &now
		invite.ClaimedBy = member.UserID
		invite.Touch()

		data, err := json.Marshal(&invite)
		if err != nil {
			return fmt.Errorf("marshal invite: %w", err)
		}
		if err := txn.Set(inviteKey, data); err != nil {
			return err
		}

		memberData, err := json.Marshal(member)
		if err != nil {
			return fmt.Errorf("marshal member: %w", err)
		}
		if err := txn.Set(mKey, memberData); err != nil {
			return err
		}

		return txn.Set(userIndexKey, []byte{})
	})
	if err != nil {
		return nil, err
	}
	return &invite, nil
}

// DeleteInvite deletes an invite (for revoking unclaimed invites).
func (s *Store) DeleteInvite(_ context.Context, inviteID string) error {
	key := []byte(invitePrefix + inviteID)

	// Get invite data to clean up indices
	var invite domain.Invite
	if err := s.get(key, &invite); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil // Already gone
		}
		return fmt.Errorf("get invite for deletion: %w", err)
	}

	codeKey := []byte(inviteByCodePrefix + invite.Code)
	journeyKey := []byte(inviteByJourneyPrefix + invite.JourneyID + ":" + inviteID)

	return s.db.Update(func(txn *badger.Txn) error {
		// Delete invite
		if err := txn.Delete(key); err != nil {
			return err
		}

		// Delete code index
		if err := txn.Delete(codeKey); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		// Delete journey index
		if err := txn.Delete(journeyKey); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		return nil
	})
}

// ListInvitesByJourney returns all invites created for a journey.
func (s *Store) ListInvitesByJourney(ctx context.Context, journeyID string) ([]*domain.Invite, error) {
	prefix := []byte(inviteByJourneyPrefix + journeyID + ":")
	var invites []*domain.Invite

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false // We only need keys

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			// Key format: idx:invites:journey:journeyID:inviteID
			key := string(it.Item().Key())
			parts := strings.Split(key, ":")
			if len(parts) < 5 {
				continue
			}
			inviteID := parts[4]

			// Get full invite
			invite, err := s.GetInvite(ctx, inviteID)
			if err != nil {
				if errors.Is(err, ErrInviteNotFound) {
					continue // Skip missing invites
				}
				return err
			}

			invites = append(invites, invite)
		}

		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("list invites by journey: %w", err)
	}

	return invites, nil
}
