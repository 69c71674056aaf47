package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/khatmahq/khatma-server/internal/domain"
)

const (
	journeyPrefix      = "journey:"
	memberPrefix       = "jmember:"           // jmember:journeyID:userID
	memberByUserPrefix = "idx:jmembers:user:" // idx:jmembers:user:userID:journeyID
)

var (
	// ErrJourneyNotFound is returned when a journey cannot be found by ID.
	ErrJourneyNotFound = errors.New("journey not found")
	// ErrMemberNotFound is returned when a user is not a member of a journey.
	ErrMemberNotFound = errors.New("journey member not found")
	// ErrAlreadyMember is returned when adding a user who is already a member.
	ErrAlreadyMember = errors.New("user is already a member of this journey")
)

func memberKey(journeyID, userID string) []byte {
	return []byte(memberPrefix + journeyID + ":" + userID)
}

// CreateJourney creates a journey together with its owning member in a
// single transaction, so a journey can never exist without an owner.
func (s *Store) CreateJourney(ctx context.Context, journey *domain.Journey, owner *domain.JourneyMember) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := []byte(journeyPrefix + journey.ID)

	exists, err := s.exists(key)
	if err != nil {
		return fmt.Errorf("check journey exists: %w", err)
	}
	if exists {
		return errors.New("journey already exists")
	}

	return s.db.Update(func(txn *badger.Txn) error {
		data, err := json.Marshal(journey)
		if err != nil {
			return fmt.Errorf("marshal journey: %w", err)
		}
		if err := txn.Set(key, data); err != nil {
			return err
		}

		memberData, err := json.Marshal(owner)
		if err != nil {
			return fmt.Errorf("marshal owner member: %w", err)
		}
		if err := txn.Set(memberKey(journey.ID, owner.UserID), memberData); err != nil {
			return err
		}

		// User index for listing a user's journeys
		userIndexKey := []byte(memberByUserPrefix + owner.UserID + ":" + journey.ID)
		return txn.Set(userIndexKey, []byte{})
	})
}

// GetJourney retrieves a journey by ID.
func (s *Store) GetJourney(ctx context.Context, id string) (*domain.Journey, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var journey domain.Journey
	if err := s.get([]byte(journeyPrefix+id), &journey); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrJourneyNotFound
		}
		return nil, fmt.Errorf("get journey: %w", err)
	}

	if journey.IsDeleted() {
		return nil, ErrJourneyNotFound
	}

	return &journey, nil
}

// UpdateJourney updates an existing journey document.
func (s *Store) UpdateJourney(ctx context.Context, journey *domain.Journey) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := []byte(journeyPrefix + journey.ID)
	exists, err := s.exists(key)
	if err != nil {
		return fmt.Errorf("check journey exists: %w", err)
	}
	if !exists {
		return ErrJourneyNotFound
	}

	journey.Touch()
	return s.set(key, journey)
}

// AddMember adds a user to a journey. The membership document and the
// user index entry are written in one transaction.
// Returns ErrAlreadyMember if the user already belongs to the journey.
func (s *Store) AddMember(ctx context.Context, member *domain.JourneyMember) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := memberKey(member.JourneyID, member.UserID)
	userIndexKey := []byte(memberByUserPrefix + member.UserID + ":" + member.JourneyID)

	return s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		if err == nil {
			return ErrAlreadyMember
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("check member exists: %w", err)
		}

		data, err := json.Marshal(member)
		if err != nil {
			return fmt.Errorf("marshal member: %w", err)
		}
		if err := txn.Set(key, data); err != nil {
			return err
		}

		return txn.Set(userIndexKey, []byte{})
	})
}

// GetMember retrieves a user's membership in a journey.
func (s *Store) GetMember(ctx context.Context, journeyID, userID string) (*domain.JourneyMember, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var member domain.JourneyMember
	if err := s.get(memberKey(journeyID, userID), &member); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("get member: %w", err)
	}
	return &member, nil
}

// UpdateMember saves a member document.
func (s *Store) UpdateMember(ctx context.Context, member *domain.JourneyMember) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.set(memberKey(member.JourneyID, member.UserID), member)
}

// ListMembers returns all members of a journey.
func (s *Store) ListMembers(ctx context.Context, journeyID string) ([]*domain.JourneyMember, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := []byte(memberPrefix + journeyID + ":")
	var members []*domain.JourneyMember

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var member domain.JourneyMember
				if unmarshalErr := json.Unmarshal(val, &member); unmarshalErr != nil {
					// Skip malformed members
					return nil //nolint:nilerr // intentionally skip malformed entries
				}
				members = append(members, &member)
				return nil
			})
			if err != nil {
				return err
			}
		}

		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}

	return members, nil
}

// ListJourneysForUser returns every journey the user is a member of.
func (s *Store) ListJourneysForUser(ctx context.Context, userID string) ([]*domain.Journey, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := []byte(memberByUserPrefix + userID + ":")
	var journeyIDs []string

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false // We only need keys

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			// Key format: idx:jmembers:user:userID:journeyID
			key := string(it.Item().Key())
			parts := strings.Split(key, ":")
			if len(parts) < 5 {
				continue
			}
			journeyIDs = append(journeyIDs, parts[4])
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list journeys for user: %w", err)
	}

	journeys := make([]*domain.Journey, 0, len(journeyIDs))
	for _, id := range journeyIDs {
		journey, err := s.GetJourney(ctx, id)
		if err != nil {
			if errors.Is(err, ErrJourneyNotFound) {
				continue // Skip deleted journeys
			}
			return nil, err
		}
		journeys = append(journeys, journey)
	}

	return journeys, nil
}
