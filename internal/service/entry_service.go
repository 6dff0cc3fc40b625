package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/pricediary/internal/aggregate"
	"github.com/mmynk/pricediary/internal/calculator"
	"github.com/mmynk/pricediary/internal/entries"
	"github.com/mmynk/pricediary/internal/forms"
	"github.com/mmynk/pricediary/internal/models"
	"github.com/mmynk/pricediary/internal/prefs"
	"github.com/mmynk/pricediary/pkg/api"
)

// EntryService implements the EntryService RPC interface.
type EntryService struct {
	entries  *entries.Repository
	resolver *aggregate.Resolver
	prefs    prefs.Store
	logger   *slog.Logger
	now      func() time.Time
}

// NewEntryService creates a new EntryService.
func NewEntryService(repo *entries.Repository, resolver *aggregate.Resolver, prefStore prefs.Store, logger *slog.Logger) *EntryService {
	return &EntryService{
		entries:  repo,
		resolver: resolver,
		prefs:    prefStore,
		logger:   logger,
		now:      time.Now,
	}
}

// AddEntry validates the form and records the entry for the caller.
func (s *EntryService) AddEntry(ctx context.Context, req *connect.Request[api.AddEntryRequest]) (*connect.Response[api.AddEntryResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}

	input, err := forms.ParseEntryForm(forms.EntryForm(req.Msg.Form))
	if err != nil {
		return nil, invalidArgument(err)
	}

	entryID, err := s.entries.Add(ctx, userID, input)
	if errors.Is(err, models.ErrInvalidEntry) {
		return nil, invalidArgument(err)
	}
	if err != nil {
		return nil, internalError(s.logger, "AddEntry failed", err, "user_id", userID)
	}

	if err := forms.Remember(ctx, s.prefs, userID, input); err != nil {
		s.logger.Warn("Failed to remember form preferences", "user_id", userID, "error", err)
	}

	return connect.NewResponse(&api.AddEntryResponse{
		EntryId: entryID,
		Summary: forms.Summary(input),
		Repeat:  api.EntryForm(forms.Repeat(input)),
	}), nil
}

// DeleteEntry removes one of the caller's entries.
func (s *EntryService) DeleteEntry(ctx context.Context, req *connect.Request[api.DeleteEntryRequest]) (*connect.Response[api.DeleteEntryResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Msg.EntryId) == "" {
		return nil, invalidArgument(errors.New("entry id required"))
	}

	if err := s.entries.Delete(ctx, userID, req.Msg.EntryId); err != nil {
		return nil, internalError(s.logger, "DeleteEntry failed", err, "user_id", userID, "entry_id", req.Msg.EntryId)
	}

	s.logger.Info("Entry deleted", "user_id", userID, "entry_id", req.Msg.EntryId)
	return connect.NewResponse(&api.DeleteEntryResponse{}), nil
}

// ListEntries returns the entries visible to the caller in the requested scope.
func (s *EntryService) ListEntries(ctx context.Context, req *connect.Request[api.ListEntriesRequest]) (*connect.Response[api.ListEntriesResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}

	scope, err := aggregate.ParseScope(req.Msg.Scope)
	if err != nil {
		return nil, invalidArgument(err)
	}
	category, err := parseCategory(req.Msg.Category)
	if err != nil {
		return nil, invalidArgument(err)
	}
	switch req.Msg.Sort {
	case "", api.SortByDate, api.SortByProduct:
	default:
		return nil, invalidArgument(fmt.Errorf("unknown sort %q", req.Msg.Sort))
	}

	result, err := s.resolver.Resolve(ctx, userID, scope, category)
	if err != nil {
		return nil, internalError(s.logger, "ListEntries failed", err, "user_id", userID, "scope", scope)
	}

	list := calculator.Filter(result.Entries, req.Msg.ProductQuery, req.Msg.StoreQuery)
	if req.Msg.Sort == api.SortByProduct {
		calculator.SortByProduct(list)
	}

	return connect.NewResponse(&api.ListEntriesResponse{
		Entries:  toAPIEntries(list),
		Scope:    string(result.Scope),
		Fallback: string(result.Fallback),
	}), nil
}

// GetProductHistory returns a product's entries and price statistics.
func (s *EntryService) GetProductHistory(ctx context.Context, req *connect.Request[api.GetProductHistoryRequest]) (*connect.Response[api.GetProductHistoryResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}

	productKey := models.ProductKey(req.Msg.ProductKey)
	if productKey == "" {
		return nil, invalidArgument(errors.New("product key required"))
	}
	scope, err := aggregate.ParseScope(req.Msg.Scope)
	if err != nil {
		return nil, invalidArgument(err)
	}

	history, err := s.resolver.ProductHistory(ctx, userID, productKey, scope)
	if err != nil {
		return nil, internalError(s.logger, "GetProductHistory failed", err, "user_id", userID, "product_key", productKey)
	}

	return connect.NewResponse(&api.GetProductHistoryResponse{
		ProductKey:  history.ProductKey,
		DisplayName: history.DisplayName,
		Entries:     toAPIEntries(history.Entries),
		Stats:       toAPIStats(history.Stats),
		Points:      toAPIPoints(history.Points),
		ShowTrend:   calculator.EnoughForTrend(history.Entries),
		Scope:       string(history.Scope),
		Fallback:    string(history.Fallback),
	}), nil
}

// GetFormDefaults returns the entry form pre-filled with the caller's
// remembered category and store.
func (s *EntryService) GetFormDefaults(ctx context.Context, req *connect.Request[api.GetFormDefaultsRequest]) (*connect.Response[api.GetFormDefaultsResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}

	form, err := forms.Defaults(ctx, s.prefs, userID, s.now())
	if err != nil {
		// the form stays usable without remembered values
		s.logger.Warn("Failed to load form preferences", "user_id", userID, "error", err)
	}

	return connect.NewResponse(&api.GetFormDefaultsResponse{Form: api.EntryForm(form)}), nil
}

// ListCategories returns the categories in picker order.
func (s *EntryService) ListCategories(ctx context.Context, req *connect.Request[api.ListCategoriesRequest]) (*connect.Response[api.ListCategoriesResponse], error) {
	categories := make([]*api.Category, len(models.Categories))
	for i, c := range models.Categories {
		categories[i] = &api.Category{Id: string(c), Label: c.Label()}
	}
	return connect.NewResponse(&api.ListCategoriesResponse{Categories: categories}), nil
}

func parseCategory(s string) (models.Category, error) {
	if s == "" {
		return "", nil
	}
	c := models.Category(s)
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", forms.ErrInvalidCategory, s)
	}
	return c, nil
}
