package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/pricediary/internal/aggregate"
	"github.com/mmynk/pricediary/internal/auth"
	"github.com/mmynk/pricediary/internal/entries"
	"github.com/mmynk/pricediary/internal/family"
	"github.com/mmynk/pricediary/internal/middleware"
	"github.com/mmynk/pricediary/internal/prefs"
	"github.com/mmynk/pricediary/internal/storage/sqlite"
	"github.com/mmynk/pricediary/pkg/api"
	"github.com/mmynk/pricediary/pkg/api/apiconnect"
	"github.com/mmynk/pricediary/pkg/logging"
)

type testClients struct {
	auth   apiconnect.AuthServiceClient
	entry  apiconnect.EntryServiceClient
	family apiconnect.FamilyServiceClient
}

// setupTestServer serves all three services over a fresh SQLite database.
func setupTestServer(t *testing.T) testClients {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)

	logger := logging.Discard()
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	entryRepo := entries.NewRepository(store, logger)
	familyRepo := family.NewRepository(store, logger)
	resolver := aggregate.NewResolver(entryRepo, familyRepo, logger, 4)

	entrySvc := NewEntryService(entryRepo, resolver, prefs.NewMemoryStore(), logger)
	entrySvc.now = func() time.Time { return time.Date(2024, 8, 15, 10, 0, 0, 0, time.UTC) }

	interceptors := connect.WithInterceptors(
		middleware.MetricsInterceptor(),
		middleware.RequireAuth(jwtManager),
		middleware.LoggingInterceptor(logger),
	)

	mux := http.NewServeMux()
	mux.Handle(apiconnect.NewAuthServiceHandler(
		NewAuthService(auth.NewPasswordAuthenticator(store), jwtManager, store, familyRepo, logger), interceptors))
	mux.Handle(apiconnect.NewEntryServiceHandler(entrySvc, interceptors))
	mux.Handle(apiconnect.NewFamilyServiceHandler(
		NewFamilyService(familyRepo, "https://prices.example.com", logger), interceptors))

	server := httptest.NewServer(mux)
	t.Cleanup(func() {
		server.Close()
		store.Close()
	})

	return testClients{
		auth:   apiconnect.NewAuthServiceClient(http.DefaultClient, server.URL),
		entry:  apiconnect.NewEntryServiceClient(http.DefaultClient, server.URL),
		family: apiconnect.NewFamilyServiceClient(http.DefaultClient, server.URL),
	}
}

func withToken[T any](token string, msg *T) *connect.Request[T] {
	req := connect.NewRequest(msg)
	req.Header().Set("Authorization", "Bearer "+token)
	return req
}

func register(t *testing.T, c testClients, email string) (token, userID string) {
	t.Helper()
	resp, err := c.auth.Register(context.Background(), connect.NewRequest(&api.RegisterRequest{
		Email:    email,
		Password: "secret123",
	}))
	require.NoError(t, err)
	return resp.Msg.Token, resp.Msg.User.Id
}

func addEntry(t *testing.T, c testClients, token string, form api.EntryForm) string {
	t.Helper()
	resp, err := c.entry.AddEntry(context.Background(), withToken(token, &api.AddEntryRequest{Form: form}))
	require.NoError(t, err)
	return resp.Msg.EntryId
}

func heinekenForm(price, date string) api.EntryForm {
	return api.EntryForm{
		Category:    "beer",
		ProductName: "Heineken",
		PackageSize: "500ml can",
		Store:       "Fantastico",
		Price:       price,
		Date:        date,
	}
}

func assertCode(t *testing.T, err error, want connect.Code) {
	t.Helper()
	require.Error(t, err)
	var connectErr *connect.Error
	require.True(t, errors.As(err, &connectErr), "expected connect error, got %v", err)
	assert.Equal(t, want, connectErr.Code())
}

func TestAuthFlow(t *testing.T) {
	c := setupTestServer(t)
	ctx := context.Background()

	token, userID := register(t, c, "alice@example.com")
	require.NotEmpty(t, token)

	_, err := c.auth.Register(ctx, connect.NewRequest(&api.RegisterRequest{Email: "alice@example.com", Password: "secret123"}))
	assertCode(t, err, connect.CodeAlreadyExists)

	_, err = c.auth.Register(ctx, connect.NewRequest(&api.RegisterRequest{Email: "bob@example.com", Password: "123"}))
	assertCode(t, err, connect.CodeInvalidArgument)

	login, err := c.auth.Login(ctx, connect.NewRequest(&api.LoginRequest{Email: "alice@example.com", Password: "secret123"}))
	require.NoError(t, err)
	assert.Equal(t, userID, login.Msg.User.Id)

	_, err = c.auth.Login(ctx, connect.NewRequest(&api.LoginRequest{Email: "alice@example.com", Password: "wrong-pass"}))
	assertCode(t, err, connect.CodeUnauthenticated)

	me, err := c.auth.GetCurrentUser(ctx, withToken(login.Msg.Token, &api.GetCurrentUserRequest{}))
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", me.Msg.User.Email)
	require.NotNil(t, me.Msg.Profile)
	assert.Equal(t, userID, me.Msg.Profile.Id)

	_, err = c.auth.GetCurrentUser(ctx, connect.NewRequest(&api.GetCurrentUserRequest{}))
	assertCode(t, err, connect.CodeUnauthenticated)

	_, err = c.auth.GetCurrentUser(ctx, withToken("not-a-token", &api.GetCurrentUserRequest{}))
	assertCode(t, err, connect.CodeUnauthenticated)

	_, err = c.auth.Logout(ctx, connect.NewRequest(&api.LogoutRequest{}))
	require.NoError(t, err)
}

func TestAddEntryAndList(t *testing.T) {
	c := setupTestServer(t)
	ctx := context.Background()
	token, userID := register(t, c, "alice@example.com")

	resp, err := c.entry.AddEntry(ctx, withToken(token, &api.AddEntryRequest{Form: heinekenForm("2,50", "2024-05-01")}))
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Msg.EntryId)
	assert.Equal(t, "Saved: Heineken – 2.50 (Fantastico)", resp.Msg.Summary)
	assert.Equal(t, "Heineken", resp.Msg.Repeat.ProductName)
	assert.Empty(t, resp.Msg.Repeat.Price)

	list, err := c.entry.ListEntries(ctx, withToken(token, &api.ListEntriesRequest{}))
	require.NoError(t, err)
	require.Len(t, list.Msg.Entries, 1)
	got := list.Msg.Entries[0]
	assert.Equal(t, resp.Msg.EntryId, got.Id)
	assert.Equal(t, userID, got.UserId)
	assert.Equal(t, 2.50, got.Price)
	assert.Equal(t, "heineken", got.ProductKey)
	assert.Equal(t, "2024-05-01", got.Date)
	assert.Equal(t, "mine", list.Msg.Scope)
}

func TestAddEntryRejectsInvalidForms(t *testing.T) {
	c := setupTestServer(t)
	ctx := context.Background()
	token, _ := register(t, c, "alice@example.com")

	for _, form := range []api.EntryForm{
		heinekenForm("0", "2024-05-01"),
		heinekenForm("-1", "2024-05-01"),
		heinekenForm("2.50", "yesterday"),
		{Category: "beer", ProductName: "  ", Price: "2.50", Date: "2024-05-01"},
		{Category: "candy", ProductName: "Heineken", Price: "2.50", Date: "2024-05-01"},
	} {
		_, err := c.entry.AddEntry(ctx, withToken(token, &api.AddEntryRequest{Form: form}))
		assertCode(t, err, connect.CodeInvalidArgument)
	}

	list, err := c.entry.ListEntries(ctx, withToken(token, &api.ListEntriesRequest{}))
	require.NoError(t, err)
	assert.Empty(t, list.Msg.Entries)

	_, err = c.entry.AddEntry(ctx, connect.NewRequest(&api.AddEntryRequest{Form: heinekenForm("2.50", "2024-05-01")}))
	assertCode(t, err, connect.CodeUnauthenticated)
}

func TestDeleteEntry(t *testing.T) {
	c := setupTestServer(t)
	ctx := context.Background()
	token, _ := register(t, c, "alice@example.com")

	entryID := addEntry(t, c, token, heinekenForm("2.50", "2024-05-01"))

	_, err := c.entry.DeleteEntry(ctx, withToken(token, &api.DeleteEntryRequest{EntryId: entryID}))
	require.NoError(t, err)

	for _, scope := range []string{"mine", "all"} {
		list, err := c.entry.ListEntries(ctx, withToken(token, &api.ListEntriesRequest{Scope: scope}))
		require.NoError(t, err)
		assert.Empty(t, list.Msg.Entries, scope)
	}

	_, err = c.entry.DeleteEntry(ctx, withToken(token, &api.DeleteEntryRequest{}))
	assertCode(t, err, connect.CodeInvalidArgument)
}

func TestListEntriesScopesAndFilters(t *testing.T) {
	c := setupTestServer(t)
	ctx := context.Background()
	alice, _ := register(t, c, "alice@example.com")
	bob, _ := register(t, c, "bob@example.com")
	carol, _ := register(t, c, "carol@example.com")

	addEntry(t, c, alice, heinekenForm("2.50", "2024-05-01"))
	addEntry(t, c, bob, api.EntryForm{Category: "bread", ProductName: "Добруджа", Store: "Billa", Price: "1.20", Date: "2024-06-01"})
	addEntry(t, c, carol, heinekenForm("1.99", "2024-07-01"))

	// family scope without a family answers with own entries
	list, err := c.entry.ListEntries(ctx, withToken(alice, &api.ListEntriesRequest{Scope: "family"}))
	require.NoError(t, err)
	assert.Equal(t, "mine", list.Msg.Scope)
	assert.Equal(t, "no_family", list.Msg.Fallback)
	assert.Len(t, list.Msg.Entries, 1)

	created, err := c.family.CreateFamily(ctx, withToken(alice, &api.CreateFamilyRequest{}))
	require.NoError(t, err)
	_, err = c.family.JoinFamily(ctx, withToken(bob, &api.JoinFamilyRequest{FamilyId: created.Msg.FamilyId}))
	require.NoError(t, err)

	list, err = c.entry.ListEntries(ctx, withToken(alice, &api.ListEntriesRequest{Scope: "family"}))
	require.NoError(t, err)
	assert.Equal(t, "family", list.Msg.Scope)
	require.Len(t, list.Msg.Entries, 2)
	assert.Equal(t, "2024-06-01", list.Msg.Entries[0].Date)

	list, err = c.entry.ListEntries(ctx, withToken(alice, &api.ListEntriesRequest{Scope: "all", Category: "beer"}))
	require.NoError(t, err)
	require.Len(t, list.Msg.Entries, 2)
	assert.Equal(t, "2024-07-01", list.Msg.Entries[0].Date)

	list, err = c.entry.ListEntries(ctx, withToken(alice, &api.ListEntriesRequest{Scope: "all", StoreQuery: "bil", Sort: api.SortByProduct}))
	require.NoError(t, err)
	require.Len(t, list.Msg.Entries, 1)
	assert.Equal(t, "Добруджа", list.Msg.Entries[0].ProductName)

	_, err = c.entry.ListEntries(ctx, withToken(alice, &api.ListEntriesRequest{Scope: "friends"}))
	assertCode(t, err, connect.CodeInvalidArgument)
	_, err = c.entry.ListEntries(ctx, withToken(alice, &api.ListEntriesRequest{Category: "candy"}))
	assertCode(t, err, connect.CodeInvalidArgument)
	_, err = c.entry.ListEntries(ctx, withToken(alice, &api.ListEntriesRequest{Sort: "price"}))
	assertCode(t, err, connect.CodeInvalidArgument)
}

func TestGetProductHistory(t *testing.T) {
	c := setupTestServer(t)
	ctx := context.Background()
	token, _ := register(t, c, "alice@example.com")

	addEntry(t, c, token, heinekenForm("2.50", "2024-05-01"))
	addEntry(t, c, token, heinekenForm("2.00", "2024-04-01"))
	addEntry(t, c, token, heinekenForm("3.00", "2024-06-01"))

	resp, err := c.entry.GetProductHistory(ctx, withToken(token, &api.GetProductHistoryRequest{ProductKey: "Heineken"}))
	require.NoError(t, err)

	assert.Equal(t, "heineken", resp.Msg.ProductKey)
	assert.Equal(t, "Heineken", resp.Msg.DisplayName)
	require.Len(t, resp.Msg.Entries, 3)
	assert.Equal(t, "2024-04-01", resp.Msg.Entries[0].Date)
	assert.Equal(t, "2024-05-01", resp.Msg.Entries[1].Date)
	assert.Equal(t, "2024-06-01", resp.Msg.Entries[2].Date)
	require.NotNil(t, resp.Msg.Stats)
	assert.InDelta(t, 2.00, resp.Msg.Stats.Min, 0.001)
	assert.InDelta(t, 3.00, resp.Msg.Stats.Max, 0.001)
	assert.InDelta(t, 2.50, resp.Msg.Stats.Avg, 0.001)
	assert.Equal(t, "2024-06-01", resp.Msg.Stats.Last.Date)
	assert.Len(t, resp.Msg.Points, 3)
	assert.True(t, resp.Msg.ShowTrend)

	_, err = c.entry.GetProductHistory(ctx, withToken(token, &api.GetProductHistoryRequest{ProductKey: "  "}))
	assertCode(t, err, connect.CodeInvalidArgument)
}

func TestFormDefaultsAndCategories(t *testing.T) {
	c := setupTestServer(t)
	ctx := context.Background()
	token, _ := register(t, c, "alice@example.com")

	defaults, err := c.entry.GetFormDefaults(ctx, withToken(token, &api.GetFormDefaultsRequest{}))
	require.NoError(t, err)
	assert.Equal(t, api.EntryForm{Category: "beer", Date: "2024-08-15"}, defaults.Msg.Form)

	addEntry(t, c, token, api.EntryForm{Category: "dairy", ProductName: "Мляко", Store: "Lidl", Price: "2.10", Date: "2024-08-14"})

	defaults, err = c.entry.GetFormDefaults(ctx, withToken(token, &api.GetFormDefaultsRequest{}))
	require.NoError(t, err)
	assert.Equal(t, "dairy", defaults.Msg.Form.Category)
	assert.Equal(t, "Lidl", defaults.Msg.Form.Store)

	categories, err := c.entry.ListCategories(ctx, withToken(token, &api.ListCategoriesRequest{}))
	require.NoError(t, err)
	require.Len(t, categories.Msg.Categories, 7)
	assert.Equal(t, "beer", categories.Msg.Categories[0].Id)
	assert.Equal(t, "Бира", categories.Msg.Categories[0].Label)
}

func TestFamilyProfile(t *testing.T) {
	c := setupTestServer(t)
	ctx := context.Background()
	alice, aliceID := register(t, c, "alice@example.com")
	bob, _ := register(t, c, "bob@example.com")

	profile, err := c.family.GetProfile(ctx, withToken(alice, &api.GetProfileRequest{}))
	require.NoError(t, err)
	assert.Equal(t, aliceID, profile.Msg.Profile.Id)
	assert.Empty(t, profile.Msg.Profile.FamilyId)
	assert.Empty(t, profile.Msg.InviteUrl)

	created, err := c.family.CreateFamily(ctx, withToken(alice, &api.CreateFamilyRequest{}))
	require.NoError(t, err)
	assert.Equal(t, "https://prices.example.com/family/join?familyId="+created.Msg.FamilyId, created.Msg.InviteUrl)

	_, err = c.family.JoinFamily(ctx, withToken(bob, &api.JoinFamilyRequest{FamilyId: created.Msg.FamilyId}))
	require.NoError(t, err)

	profile, err = c.family.GetProfile(ctx, withToken(bob, &api.GetProfileRequest{}))
	require.NoError(t, err)
	assert.Equal(t, created.Msg.FamilyId, profile.Msg.Profile.FamilyId)
	assert.Equal(t, created.Msg.InviteUrl, profile.Msg.InviteUrl)

	_, err = c.family.JoinFamily(ctx, withToken(bob, &api.JoinFamilyRequest{FamilyId: " "}))
	assertCode(t, err, connect.CodeInvalidArgument)
}
