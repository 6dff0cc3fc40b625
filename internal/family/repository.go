// Package family manages family groups, their membership and the user
// profiles that point at them.
package family

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/mmynk/pricediary/internal/models"
	"github.com/mmynk/pricediary/internal/storage"
)

// ErrMissingUser is returned when an operation is called without a user ID.
var ErrMissingUser = errors.New("user id required")

// Repository reads and writes families, memberships and profiles.
type Repository struct {
	store  storage.Store
	logger *slog.Logger
}

// NewRepository creates a Repository backed by store.
func NewRepository(store storage.Store, logger *slog.Logger) *Repository {
	return &Repository{store: store, logger: logger}
}

// CreateFamily creates a family owned by ownerID, records the owner as its
// first member and points the owner's profile at it.
func (r *Repository) CreateFamily(ctx context.Context, ownerID string) (string, error) {
	if ownerID == "" {
		return "", ErrMissingUser
	}

	var familyID string
	err := storage.RunInTx(ctx, r.store, func(s storage.Store) error {
		family := &models.Family{OwnerID: ownerID}
		if err := s.CreateFamily(ctx, family); err != nil {
			return err
		}
		familyID = family.ID

		if err := s.UpsertFamilyMember(ctx, family.ID, ownerID); err != nil {
			return err
		}
		return s.SetProfileFamily(ctx, ownerID, family.ID)
	})
	if err != nil {
		return "", fmt.Errorf("failed to create family: %w", err)
	}

	r.logger.Info("Family created", "family_id", familyID, "owner_id", ownerID)
	return familyID, nil
}

// JoinFamily adds userID to the family and points the user's profile at it.
// The family is not required to exist.
func (r *Repository) JoinFamily(ctx context.Context, userID, familyID string) error {
	if userID == "" {
		return ErrMissingUser
	}
	familyID = strings.TrimSpace(familyID)
	if familyID == "" {
		return errors.New("family id required")
	}

	err := storage.RunInTx(ctx, r.store, func(s storage.Store) error {
		if err := s.UpsertFamilyMember(ctx, familyID, userID); err != nil {
			return err
		}
		return s.SetProfileFamily(ctx, userID, familyID)
	})
	if err != nil {
		return fmt.Errorf("failed to join family: %w", err)
	}

	r.logger.Info("Family joined", "family_id", familyID, "user_id", userID)
	return nil
}

// GetProfile returns the user's profile, or nil when none exists.
func (r *Repository) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	profile, err := r.store.GetProfile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return profile, nil
}

// EnsureProfile returns the user's profile, creating it on first sign-in.
func (r *Repository) EnsureProfile(ctx context.Context, userID, email string) (*models.Profile, error) {
	if userID == "" {
		return nil, ErrMissingUser
	}

	profile, err := r.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile != nil {
		return profile, nil
	}

	profile = &models.Profile{ID: userID, Email: email}
	if err := r.store.CreateProfile(ctx, profile); err != nil {
		// a concurrent sign-in may have created it first
		if existing, getErr := r.GetProfile(ctx, userID); getErr == nil && existing != nil {
			return existing, nil
		}
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	r.logger.Debug("Profile created", "user_id", userID)
	return profile, nil
}

// MemberIDs returns the user IDs recorded in the family's membership collection.
func (r *Repository) MemberIDs(ctx context.Context, familyID string) ([]string, error) {
	members, err := r.store.ListFamilyMembers(ctx, familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list family members: %w", err)
	}

	ids := make([]string, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.UserID)
	}
	return ids, nil
}

// InviteURL returns the link that lets another user join the family.
func InviteURL(baseURL, familyID string) string {
	return strings.TrimRight(baseURL, "/") + "/family/join?familyId=" + url.QueryEscape(familyID)
}
