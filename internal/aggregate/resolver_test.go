package aggregate

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/pricediary/internal/entries"
	"github.com/mmynk/pricediary/internal/family"
	"github.com/mmynk/pricediary/internal/metrics"
	"github.com/mmynk/pricediary/internal/models"
	"github.com/mmynk/pricediary/internal/storage/sqlite"
	"github.com/mmynk/pricediary/pkg/logging"
)

func day(s string) time.Time {
	d, err := time.Parse(models.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return d
}

func priced(userID, product string, price float64, date string) *models.PriceEntry {
	return &models.PriceEntry{
		ID:          userID + "-" + date,
		UserID:      userID,
		Category:    models.CategoryBeer,
		ProductName: product,
		ProductKey:  models.ProductKey(product),
		Price:       price,
		Date:        day(date),
	}
}

// fakeEntries serves fixed per-user lists and fails for selected users.
type fakeEntries struct {
	mu      sync.Mutex
	byUser  map[string][]*models.PriceEntry
	failFor map[string]bool
	calls   []string
}

func (f *fakeEntries) ListForUser(_ context.Context, userID string, category models.Category) ([]*models.PriceEntry, error) {
	f.mu.Lock()
	f.calls = append(f.calls, userID)
	f.mu.Unlock()

	if f.failFor[userID] {
		return nil, errors.New("permission denied")
	}
	var out []*models.PriceEntry
	for _, e := range f.byUser[userID] {
		if category == "" || e.Category == category {
			out = append(out, e)
		}
	}
	entries.SortNewestFirst(out)
	return out, nil
}

func (f *fakeEntries) ListAll(_ context.Context, category models.Category) ([]*models.PriceEntry, error) {
	var out []*models.PriceEntry
	for _, list := range f.byUser {
		for _, e := range list {
			if category == "" || e.Category == category {
				out = append(out, e)
			}
		}
	}
	entries.SortNewestFirst(out)
	return out, nil
}

func (f *fakeEntries) ListByProductKey(ctx context.Context, productKey string) ([]*models.PriceEntry, error) {
	all, _ := f.ListAll(ctx, "")
	var out []*models.PriceEntry
	for i := len(all) - 1; i >= 0; i-- {
		if all[i].ProductKey == productKey {
			out = append(out, all[i])
		}
	}
	return out, nil
}

type fakeFamilies struct {
	profiles   map[string]*models.Profile
	members    map[string][]string
	profileErr error
	membersErr error
}

func (f *fakeFamilies) GetProfile(_ context.Context, userID string) (*models.Profile, error) {
	if f.profileErr != nil {
		return nil, f.profileErr
	}
	return f.profiles[userID], nil
}

func (f *fakeFamilies) MemberIDs(_ context.Context, familyID string) ([]string, error) {
	if f.membersErr != nil {
		return nil, f.membersErr
	}
	return f.members[familyID], nil
}

func newFixture() (*fakeEntries, *fakeFamilies) {
	src := &fakeEntries{
		byUser: map[string][]*models.PriceEntry{
			"alice": {
				priced("alice", "Heineken", 2.50, "2024-05-01"),
				priced("alice", "Heineken", 2.40, "2024-06-01"),
			},
			"bob": {
				priced("bob", "Heineken", 2.20, "2024-05-15"),
			},
			"carol": {
				priced("carol", "Heineken", 1.99, "2024-07-01"),
			},
		},
		failFor: map[string]bool{},
	}
	dir := &fakeFamilies{
		profiles: map[string]*models.Profile{
			"alice": {ID: "alice", FamilyID: "f1"},
			"bob":   {ID: "bob", FamilyID: "f1"},
			"carol": {ID: "carol"},
		},
		members: map[string][]string{
			"f1": {"alice", "bob"},
		},
	}
	return src, dir
}

func ids(list []*models.PriceEntry) []string {
	out := make([]string, len(list))
	for i, e := range list {
		out[i] = e.ID
	}
	return out
}

func TestParseScope(t *testing.T) {
	for in, want := range map[string]Scope{"": ScopeMine, "mine": ScopeMine, "family": ScopeFamily, "all": ScopeAll} {
		got, err := ParseScope(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseScope("friends")
	assert.Error(t, err)
}

func TestResolve_MineAndAll(t *testing.T) {
	src, dir := newFixture()
	r := NewResolver(src, dir, logging.Discard(), 2)
	ctx := context.Background()

	mine, err := r.Resolve(ctx, "alice", ScopeMine, "")
	require.NoError(t, err)
	assert.Equal(t, ScopeMine, mine.Scope)
	assert.Equal(t, []string{"alice-2024-06-01", "alice-2024-05-01"}, ids(mine.Entries))

	all, err := r.Resolve(ctx, "alice", ScopeAll, "")
	require.NoError(t, err)
	assert.Equal(t, ScopeAll, all.Scope)
	assert.Equal(t, []string{"carol-2024-07-01", "alice-2024-06-01", "bob-2024-05-15", "alice-2024-05-01"}, ids(all.Entries))

	_, err = r.Resolve(ctx, "alice", Scope("friends"), "")
	assert.Error(t, err)
}

func TestResolve_FamilyMergesMembers(t *testing.T) {
	src, dir := newFixture()
	r := NewResolver(src, dir, logging.Discard(), 1)

	res, err := r.Resolve(context.Background(), "alice", ScopeFamily, "")
	require.NoError(t, err)
	assert.Equal(t, ScopeFamily, res.Scope)
	assert.Equal(t, FallbackNone, res.Fallback)
	assert.Equal(t, []string{"alice-2024-06-01", "bob-2024-05-15", "alice-2024-05-01"}, ids(res.Entries))
	assert.ElementsMatch(t, []string{"alice", "bob"}, src.calls)
}

func TestResolve_FamilyWithFailingMember(t *testing.T) {
	src, dir := newFixture()
	src.failFor["bob"] = true
	r := NewResolver(src, dir, logging.Discard(), 4)

	before := testutil.ToFloat64(metrics.FamilyMemberFailures)

	res, err := r.Resolve(context.Background(), "alice", ScopeFamily, "")
	require.NoError(t, err)
	assert.Equal(t, ScopeFamily, res.Scope)
	assert.Equal(t, []string{"alice-2024-06-01", "alice-2024-05-01"}, ids(res.Entries))
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.FamilyMemberFailures))
}

func TestResolve_FamilyFallbacks(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		userID string
		setup  func(*fakeFamilies)
		want   Fallback
	}{
		{
			name:   "no family id",
			userID: "carol",
			want:   FallbackNoFamily,
		},
		{
			name:   "no profile",
			userID: "dave",
			want:   FallbackNoFamily,
		},
		{
			name:   "no members",
			userID: "alice",
			setup:  func(f *fakeFamilies) { f.members["f1"] = nil },
			want:   FallbackNoMembers,
		},
		{
			name:   "profile lookup fails",
			userID: "alice",
			setup:  func(f *fakeFamilies) { f.profileErr = errors.New("unavailable") },
			want:   FallbackLookupFailed,
		},
		{
			name:   "membership lookup fails",
			userID: "alice",
			setup:  func(f *fakeFamilies) { f.membersErr = errors.New("unavailable") },
			want:   FallbackLookupFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, dir := newFixture()
			if tt.setup != nil {
				tt.setup(dir)
			}
			r := NewResolver(src, dir, logging.Discard(), 0)
			counter := metrics.ScopeFallbacks.WithLabelValues(string(tt.want))
			before := testutil.ToFloat64(counter)

			family, err := r.Resolve(ctx, tt.userID, ScopeFamily, "")
			require.NoError(t, err)
			mine, err := r.Resolve(ctx, tt.userID, ScopeMine, "")
			require.NoError(t, err)

			assert.Equal(t, ScopeMine, family.Scope)
			assert.Equal(t, tt.want, family.Fallback)
			assert.Equal(t, ids(mine.Entries), ids(family.Entries))
			assert.Equal(t, before+1, testutil.ToFloat64(counter))
		})
	}
}

func TestResolve_CancelledContext(t *testing.T) {
	src, dir := newFixture()
	r := NewResolver(src, dir, logging.Discard(), 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Resolve(ctx, "alice", ScopeFamily, "")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestProductHistory(t *testing.T) {
	src, dir := newFixture()
	r := NewResolver(src, dir, logging.Discard(), 0)
	ctx := context.Background()

	t.Run("mine", func(t *testing.T) {
		h, err := r.ProductHistory(ctx, "alice", "Heineken", ScopeMine)
		require.NoError(t, err)
		assert.Equal(t, "heineken", h.ProductKey)
		assert.Equal(t, "Heineken", h.DisplayName)
		assert.Equal(t, []string{"alice-2024-05-01", "alice-2024-06-01"}, ids(h.Entries))
		require.NotNil(t, h.Stats)
		assert.InDelta(t, 2.40, h.Stats.Min, 0.001)
		assert.InDelta(t, 2.50, h.Stats.Max, 0.001)
		assert.Equal(t, "alice-2024-06-01", h.Stats.Last.ID)
		assert.Len(t, h.Points, 2)
	})

	t.Run("family", func(t *testing.T) {
		h, err := r.ProductHistory(ctx, "bob", "heineken", ScopeFamily)
		require.NoError(t, err)
		assert.Equal(t, ScopeFamily, h.Scope)
		assert.Equal(t, []string{"alice-2024-05-01", "bob-2024-05-15", "alice-2024-06-01"}, ids(h.Entries))
	})

	t.Run("family fallback", func(t *testing.T) {
		h, err := r.ProductHistory(ctx, "carol", "heineken", ScopeFamily)
		require.NoError(t, err)
		assert.Equal(t, ScopeMine, h.Scope)
		assert.Equal(t, FallbackNoFamily, h.Fallback)
		assert.Equal(t, []string{"carol-2024-07-01"}, ids(h.Entries))
	})

	t.Run("all", func(t *testing.T) {
		h, err := r.ProductHistory(ctx, "carol", "heineken", ScopeAll)
		require.NoError(t, err)
		assert.Len(t, h.Entries, 4)
		assert.InDelta(t, 1.99, h.Stats.Min, 0.001)
	})

	t.Run("unknown product", func(t *testing.T) {
		h, err := r.ProductHistory(ctx, "alice", "zagorka", ScopeAll)
		require.NoError(t, err)
		assert.Empty(t, h.Entries)
		assert.Nil(t, h.Stats)
		assert.Equal(t, "Zagorka", h.DisplayName)
	})
}

func TestResolve_WithSQLiteStore(t *testing.T) {
	store, err := sqlite.New(filepath.Join(t.TempDir(), "aggregate.db"))
	require.NoError(t, err)
	defer store.Close()
	ctx := context.Background()

	entryRepo := entries.NewRepository(store, logging.Discard())
	familyRepo := family.NewRepository(store, logging.Discard())
	r := NewResolver(entryRepo, familyRepo, logging.Discard(), 0)

	add := func(userID, date string) {
		_, err := entryRepo.Add(ctx, userID, models.NewEntryInput{
			Category:    models.CategoryBeer,
			ProductName: "Heineken",
			Price:       2.50,
			Date:        day(date),
		})
		require.NoError(t, err)
	}
	add("alice", "2024-05-01")
	add("bob", "2024-06-01")
	add("carol", "2024-07-01")

	// without a family the family scope equals mine
	before, err := r.Resolve(ctx, "alice", ScopeFamily, "")
	require.NoError(t, err)
	assert.Equal(t, FallbackNoFamily, before.Fallback)
	require.Len(t, before.Entries, 1)

	familyID, err := familyRepo.CreateFamily(ctx, "alice")
	require.NoError(t, err)
	require.NoError(t, familyRepo.JoinFamily(ctx, "bob", familyID))

	res, err := r.Resolve(ctx, "alice", ScopeFamily, models.CategoryBeer)
	require.NoError(t, err)
	assert.Equal(t, ScopeFamily, res.Scope)
	require.Len(t, res.Entries, 2)
	assert.Equal(t, "bob", res.Entries[0].UserID)
	assert.Equal(t, "alice", res.Entries[1].UserID)
}
