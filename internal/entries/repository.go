// Package entries implements the price entry repository on top of the
// per-user and global entry collections.
package entries

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/mmynk/pricediary/internal/metrics"
	"github.com/mmynk/pricediary/internal/models"
	"github.com/mmynk/pricediary/internal/storage"
)

// Repository reads and writes price entries.
type Repository struct {
	store  storage.Store
	logger *slog.Logger
}

// NewRepository creates a Repository backed by store.
func NewRepository(store storage.Store, logger *slog.Logger) *Repository {
	return &Repository{store: store, logger: logger}
}

// Add writes the entry to the owner's collection, copies it to the global
// collection and links the two. It returns the per-user entry ID.
//
// Stores implementing storage.Transactor commit all three writes together.
// Elsewhere a failure after the first write leaves an unlinked per-user entry.
func (r *Repository) Add(ctx context.Context, ownerID string, input models.NewEntryInput) (string, error) {
	if ownerID == "" {
		return "", fmt.Errorf("owner id required")
	}
	if err := input.Validate(); err != nil {
		return "", err
	}

	var userEntryID string
	err := storage.RunInTx(ctx, r.store, func(s storage.Store) error {
		entry := input.ToEntry(ownerID)
		if err := s.CreateUserEntry(ctx, entry); err != nil {
			return err
		}
		userEntryID = entry.ID

		global := *entry
		global.UserEntryID = userEntryID
		if err := s.CreateGlobalEntry(ctx, &global); err != nil {
			return r.orphaned(userEntryID, ownerID, err)
		}

		if err := s.LinkGlobalEntry(ctx, ownerID, userEntryID, global.ID); err != nil {
			return r.orphaned(userEntryID, ownerID, err)
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to add entry: %w", err)
	}

	metrics.EntriesAdded.Inc()
	r.logger.Debug("Entry added", "user_id", ownerID, "entry_id", userEntryID, "product_key", models.ProductKey(input.ProductName))
	return userEntryID, nil
}

func (r *Repository) orphaned(entryID, ownerID string, err error) error {
	if _, ok := r.store.(storage.Transactor); !ok {
		metrics.EntryOrphans.Inc()
		r.logger.Error("Entry left without global copy", "user_id", ownerID, "entry_id", entryID, "error", err)
	}
	return err
}

// Delete removes the owner's entry and, when linked, its global copy.
// Failure to delete the global copy is logged and not returned: a nil error
// means the owner's copy is gone.
func (r *Repository) Delete(ctx context.Context, ownerID, entryID string) error {
	err := storage.RunInTx(ctx, r.store, func(s storage.Store) error {
		var globalEntryID string
		entry, err := s.GetUserEntry(ctx, ownerID, entryID)
		switch {
		case err == nil:
			globalEntryID = entry.GlobalEntryID
		case errors.Is(err, storage.ErrNotFound):
		default:
			return fmt.Errorf("failed to read entry: %w", err)
		}

		if err := s.DeleteUserEntry(ctx, ownerID, entryID); err != nil {
			return fmt.Errorf("failed to delete entry: %w", err)
		}

		if globalEntryID == "" {
			return nil
		}
		if err := s.DeleteGlobalEntry(ctx, globalEntryID); err != nil {
			metrics.GlobalDeleteFailures.Inc()
			r.logger.Warn("Failed to delete global entry",
				"user_id", ownerID,
				"entry_id", entryID,
				"global_entry_id", globalEntryID,
				"error", err,
			)
		}
		return nil
	})
	if err != nil {
		return err
	}

	metrics.EntriesDeleted.Inc()
	return nil
}

// ListForUser returns the user's entries, newest first.
// An empty category returns every category.
func (r *Repository) ListForUser(ctx context.Context, userID string, category models.Category) ([]*models.PriceEntry, error) {
	entries, err := r.store.ListUserEntries(ctx, userID, query(category))
	if err != nil {
		return nil, err
	}
	SortNewestFirst(entries)
	return entries, nil
}

// ListAll returns every user's entries from the global collection, newest first.
func (r *Repository) ListAll(ctx context.Context, category models.Category) ([]*models.PriceEntry, error) {
	entries, err := r.store.ListGlobalEntries(ctx, query(category))
	if err != nil {
		return nil, err
	}
	SortNewestFirst(entries)
	return entries, nil
}

// ListByProductKey returns all global entries of a product, oldest first.
func (r *Repository) ListByProductKey(ctx context.Context, productKey string) ([]*models.PriceEntry, error) {
	entries, err := r.store.ListGlobalEntries(ctx, storage.EntryQuery{ProductKey: productKey})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Date.Before(entries[j].Date)
	})
	return entries, nil
}

// query only asks the store to order when no category filter is set.
func query(category models.Category) storage.EntryQuery {
	if category != "" {
		return storage.EntryQuery{Category: category}
	}
	return storage.EntryQuery{NewestFirst: true}
}

// SortNewestFirst orders entries by date descending, keeping the order of equal dates.
func SortNewestFirst(entries []*models.PriceEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Date.After(entries[j].Date)
	})
}
