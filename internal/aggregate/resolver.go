// Package aggregate answers entry queries for the mine, family and all scopes.
package aggregate

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/mmynk/pricediary/internal/calculator"
	"github.com/mmynk/pricediary/internal/entries"
	"github.com/mmynk/pricediary/internal/metrics"
	"github.com/mmynk/pricediary/internal/models"
)

// DefaultFanoutLimit bounds concurrent member fetches when no limit is set.
const DefaultFanoutLimit = 8

// EntrySource lists price entries.
type EntrySource interface {
	ListForUser(ctx context.Context, userID string, category models.Category) ([]*models.PriceEntry, error)
	ListAll(ctx context.Context, category models.Category) ([]*models.PriceEntry, error)
	ListByProductKey(ctx context.Context, productKey string) ([]*models.PriceEntry, error)
}

// FamilyDirectory resolves a user's family members.
type FamilyDirectory interface {
	GetProfile(ctx context.Context, userID string) (*models.Profile, error)
	MemberIDs(ctx context.Context, familyID string) ([]string, error)
}

// Result is the answer to a scoped entry query.
type Result struct {
	Entries []*models.PriceEntry

	// Scope is the scope actually served. It differs from the requested
	// scope only when a family query fell back to the user's own entries.
	Scope Scope

	Fallback Fallback
}

// History is the price history of one product within a scope.
type History struct {
	ProductKey  string
	DisplayName string

	// Entries are ordered by date ascending.
	Entries []*models.PriceEntry

	// Stats is nil when Entries is empty.
	Stats  *calculator.Stats
	Points []calculator.Point

	Scope    Scope
	Fallback Fallback
}

// Resolver runs scoped entry queries.
type Resolver struct {
	entries  EntrySource
	families FamilyDirectory
	logger   *slog.Logger
	limit    int
}

// NewResolver creates a Resolver. A limit below one uses DefaultFanoutLimit.
func NewResolver(entrySource EntrySource, families FamilyDirectory, logger *slog.Logger, limit int) *Resolver {
	if limit < 1 {
		limit = DefaultFanoutLimit
	}
	return &Resolver{
		entries:  entrySource,
		families: families,
		logger:   logger,
		limit:    limit,
	}
}

// Resolve returns the entries visible to userID in scope, newest first.
// An empty category returns every category.
//
// A family query falls back to the user's own entries when the user has no
// family, the family has no members, or either lookup fails.
func (r *Resolver) Resolve(ctx context.Context, userID string, scope Scope, category models.Category) (*Result, error) {
	switch scope {
	case ScopeMine:
		return r.mine(ctx, userID, category, FallbackNone)

	case ScopeAll:
		list, err := r.entries.ListAll(ctx, category)
		if err != nil {
			return nil, err
		}
		return &Result{Entries: list, Scope: ScopeAll}, nil

	case ScopeFamily:
		memberIDs, fallback := r.familyMembers(ctx, userID)
		if fallback != FallbackNone {
			return r.mine(ctx, userID, category, fallback)
		}
		list, err := r.fanOut(ctx, memberIDs, category)
		if err != nil {
			return nil, err
		}
		return &Result{Entries: list, Scope: ScopeFamily}, nil

	default:
		return nil, fmt.Errorf("unknown scope %q", scope)
	}
}

func (r *Resolver) mine(ctx context.Context, userID string, category models.Category, fallback Fallback) (*Result, error) {
	list, err := r.entries.ListForUser(ctx, userID, category)
	if err != nil {
		return nil, err
	}
	return &Result{Entries: list, Scope: ScopeMine, Fallback: fallback}, nil
}

// familyMembers returns the member IDs of the user's family, or the reason
// the family scope cannot be served.
func (r *Resolver) familyMembers(ctx context.Context, userID string) ([]string, Fallback) {
	fallback := func(reason Fallback, err error) ([]string, Fallback) {
		metrics.ScopeFallbacks.WithLabelValues(string(reason)).Inc()
		if err != nil {
			r.logger.Warn("Family lookup failed, using own entries", "user_id", userID, "error", err)
		} else {
			r.logger.Debug("Family scope unavailable, using own entries", "user_id", userID, "reason", reason)
		}
		return nil, reason
	}

	profile, err := r.families.GetProfile(ctx, userID)
	if err != nil {
		return fallback(FallbackLookupFailed, err)
	}
	if !profile.HasFamily() {
		return fallback(FallbackNoFamily, nil)
	}

	memberIDs, err := r.families.MemberIDs(ctx, profile.FamilyID)
	if err != nil {
		return fallback(FallbackLookupFailed, err)
	}
	if len(memberIDs) == 0 {
		return fallback(FallbackNoMembers, nil)
	}
	return memberIDs, FallbackNone
}

// fanOut fetches every member's entries concurrently. A member whose fetch
// fails contributes no entries.
func (r *Resolver) fanOut(ctx context.Context, memberIDs []string, category models.Category) ([]*models.PriceEntry, error) {
	perMember := make([][]*models.PriceEntry, len(memberIDs))

	var g errgroup.Group
	g.SetLimit(r.limit)
	for i, memberID := range memberIDs {
		g.Go(func() error {
			list, err := r.entries.ListForUser(ctx, memberID, category)
			if err != nil {
				metrics.FamilyMemberFailures.Inc()
				r.logger.Warn("Failed to fetch family member entries", "member_id", memberID, "error", err)
				return nil
			}
			perMember[i] = list
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var merged []*models.PriceEntry
	for _, list := range perMember {
		merged = append(merged, list...)
	}
	entries.SortNewestFirst(merged)
	return merged, nil
}

// ProductHistory returns the product's entries visible in scope together
// with their statistics. The display name is derived from every user's
// entries of the product.
func (r *Resolver) ProductHistory(ctx context.Context, userID, productKey string, scope Scope) (*History, error) {
	productKey = models.ProductKey(productKey)
	all, err := r.entries.ListByProductKey(ctx, productKey)
	if err != nil {
		return nil, err
	}

	history := &History{
		ProductKey:  productKey,
		DisplayName: calculator.DisplayName(all, productKey),
		Scope:       scope,
	}

	switch scope {
	case ScopeMine:
		history.Entries = filterOwners(all, map[string]bool{userID: true})
	case ScopeAll:
		history.Entries = all
	case ScopeFamily:
		memberIDs, fallback := r.familyMembers(ctx, userID)
		if fallback != FallbackNone {
			history.Scope = ScopeMine
			history.Fallback = fallback
			history.Entries = filterOwners(all, map[string]bool{userID: true})
			break
		}
		owners := make(map[string]bool, len(memberIDs))
		for _, id := range memberIDs {
			owners[id] = true
		}
		history.Entries = filterOwners(all, owners)
	default:
		return nil, fmt.Errorf("unknown scope %q", scope)
	}

	history.Stats = calculator.ProductStats(history.Entries)
	history.Points = calculator.ChartPoints(history.Entries)
	return history, nil
}

func filterOwners(list []*models.PriceEntry, owners map[string]bool) []*models.PriceEntry {
	out := make([]*models.PriceEntry, 0, len(list))
	for _, e := range list {
		if owners[e.UserID] {
			out = append(out, e)
		}
	}
	return out
}
