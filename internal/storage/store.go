// Package storage provides abstractions for persistent data storage.
//
// The interfaces mirror a hierarchical document store: per-user entry
// collections, a global entry collection, profiles, families and their
// membership collections. Backends live in sub-packages (sqlite, mongo).
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/pricediary/internal/models"
)

// ErrNotFound is returned when a requested document does not exist.
var ErrNotFound = errors.New("not found")

// EntryQuery narrows an entry collection query.
type EntryQuery struct {
	// Category filters by equality when non-empty.
	Category models.Category

	// ProductKey filters by equality when non-empty.
	ProductKey string

	// NewestFirst asks the store to order by date descending.
	NewestFirst bool
}

// EntryStore defines price entry persistence across the per-user and the
// global collections.
type EntryStore interface {
	// CreateUserEntry writes entry into its owner's collection.
	// ID, CreatedAt and UpdatedAt are assigned by the store.
	CreateUserEntry(ctx context.Context, entry *models.PriceEntry) error

	// CreateGlobalEntry writes entry into the global collection.
	// entry.UserEntryID must point at the per-user record.
	CreateGlobalEntry(ctx context.Context, entry *models.PriceEntry) error

	// LinkGlobalEntry merges the back-reference into a per-user record.
	LinkGlobalEntry(ctx context.Context, userID, entryID, globalEntryID string) error

	// GetUserEntry returns ErrNotFound when the record does not exist.
	GetUserEntry(ctx context.Context, userID, entryID string) (*models.PriceEntry, error)

	// DeleteUserEntry succeeds when the record does not exist.
	DeleteUserEntry(ctx context.Context, userID, entryID string) error

	// DeleteGlobalEntry returns ErrNotFound when the record does not exist.
	DeleteGlobalEntry(ctx context.Context, globalEntryID string) error

	ListUserEntries(ctx context.Context, userID string, q EntryQuery) ([]*models.PriceEntry, error)
	ListGlobalEntries(ctx context.Context, q EntryQuery) ([]*models.PriceEntry, error)
}

// ProfileStore defines user profile persistence.
type ProfileStore interface {
	// GetProfile returns nil and no error when the profile does not exist.
	GetProfile(ctx context.Context, userID string) (*models.Profile, error)

	// CreateProfile writes a new profile. CreatedAt is assigned by the store.
	CreateProfile(ctx context.Context, profile *models.Profile) error

	// SetProfileFamily merges familyID into the profile, creating it if needed.
	SetProfileFamily(ctx context.Context, userID, familyID string) error
}

// FamilyStore defines family and membership persistence.
type FamilyStore interface {
	// CreateFamily writes a new family. ID and CreatedAt are assigned by the store.
	CreateFamily(ctx context.Context, family *models.Family) error

	// GetFamily returns ErrNotFound when the family does not exist.
	GetFamily(ctx context.Context, familyID string) (*models.Family, error)

	// UpsertFamilyMember writes the membership record, refreshing JoinedAt.
	// The family itself is not required to exist.
	UpsertFamilyMember(ctx context.Context, familyID, userID string) error

	ListFamilyMembers(ctx context.Context, familyID string) ([]models.FamilyMember, error)
}

// UserStore defines identity persistence for the password authenticator.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByEmail returns nil and no error when no user matches.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByID returns nil and no error when no user matches.
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// Store defines the interface for all storage operations.
// This abstraction allows swapping storage backends (SQLite, MongoDB)
// without changing the repositories.
type Store interface {
	EntryStore
	ProfileStore
	FamilyStore
	UserStore

	// Close releases any resources held by the store.
	Close() error
}

// Transactor is implemented by stores that can run several writes atomically.
type Transactor interface {
	// WithTx runs fn against a store bound to a single transaction.
	// The transaction commits when fn returns nil and rolls back otherwise.
	WithTx(ctx context.Context, fn func(tx Store) error) error
}

// RunInTx runs fn inside a transaction when store supports one and directly
// against store otherwise.
func RunInTx(ctx context.Context, store Store, fn func(s Store) error) error {
	if t, ok := store.(Transactor); ok {
		return t.WithTx(ctx, fn)
	}
	return fn(store)
}
