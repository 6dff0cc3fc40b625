package apiconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/pricediary/pkg/api"
)

// EntryServiceName is the fully-qualified name of the EntryService service.
const EntryServiceName = "pricediary.v1.EntryService"

const (
	EntryServiceAddEntryProcedure          = "/pricediary.v1.EntryService/AddEntry"
	EntryServiceDeleteEntryProcedure       = "/pricediary.v1.EntryService/DeleteEntry"
	EntryServiceListEntriesProcedure       = "/pricediary.v1.EntryService/ListEntries"
	EntryServiceGetProductHistoryProcedure = "/pricediary.v1.EntryService/GetProductHistory"
	EntryServiceGetFormDefaultsProcedure   = "/pricediary.v1.EntryService/GetFormDefaults"
	EntryServiceListCategoriesProcedure    = "/pricediary.v1.EntryService/ListCategories"
)

// EntryServiceHandler is implemented by the server side of EntryService.
type EntryServiceHandler interface {
	AddEntry(context.Context, *connect.Request[api.AddEntryRequest]) (*connect.Response[api.AddEntryResponse], error)
	DeleteEntry(context.Context, *connect.Request[api.DeleteEntryRequest]) (*connect.Response[api.DeleteEntryResponse], error)
	ListEntries(context.Context, *connect.Request[api.ListEntriesRequest]) (*connect.Response[api.ListEntriesResponse], error)
	GetProductHistory(context.Context, *connect.Request[api.GetProductHistoryRequest]) (*connect.Response[api.GetProductHistoryResponse], error)
	GetFormDefaults(context.Context, *connect.Request[api.GetFormDefaultsRequest]) (*connect.Response[api.GetFormDefaultsResponse], error)
	ListCategories(context.Context, *connect.Request[api.ListCategoriesRequest]) (*connect.Response[api.ListCategoriesResponse], error)
}

// NewEntryServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewEntryServiceHandler(svc EntryServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	handlers := map[string]http.Handler{
		EntryServiceAddEntryProcedure:          connect.NewUnaryHandler(EntryServiceAddEntryProcedure, svc.AddEntry, opts...),
		EntryServiceDeleteEntryProcedure:       connect.NewUnaryHandler(EntryServiceDeleteEntryProcedure, svc.DeleteEntry, opts...),
		EntryServiceListEntriesProcedure:       connect.NewUnaryHandler(EntryServiceListEntriesProcedure, svc.ListEntries, opts...),
		EntryServiceGetProductHistoryProcedure: connect.NewUnaryHandler(EntryServiceGetProductHistoryProcedure, svc.GetProductHistory, opts...),
		EntryServiceGetFormDefaultsProcedure:   connect.NewUnaryHandler(EntryServiceGetFormDefaultsProcedure, svc.GetFormDefaults, opts...),
		EntryServiceListCategoriesProcedure:    connect.NewUnaryHandler(EntryServiceListCategoriesProcedure, svc.ListCategories, opts...),
	}
	return "/" + EntryServiceName + "/", route(handlers)
}

// EntryServiceClient is a client for the EntryService service.
type EntryServiceClient interface {
	EntryServiceHandler
}

type entryServiceClient struct {
	addEntry          *connect.Client[api.AddEntryRequest, api.AddEntryResponse]
	deleteEntry       *connect.Client[api.DeleteEntryRequest, api.DeleteEntryResponse]
	listEntries       *connect.Client[api.ListEntriesRequest, api.ListEntriesResponse]
	getProductHistory *connect.Client[api.GetProductHistoryRequest, api.GetProductHistoryResponse]
	getFormDefaults   *connect.Client[api.GetFormDefaultsRequest, api.GetFormDefaultsResponse]
	listCategories    *connect.Client[api.ListCategoriesRequest, api.ListCategoriesResponse]
}

// NewEntryServiceClient constructs a client for the EntryService service at baseURL.
func NewEntryServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) EntryServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)
	return &entryServiceClient{
		addEntry:          connect.NewClient[api.AddEntryRequest, api.AddEntryResponse](httpClient, baseURL+EntryServiceAddEntryProcedure, opts...),
		deleteEntry:       connect.NewClient[api.DeleteEntryRequest, api.DeleteEntryResponse](httpClient, baseURL+EntryServiceDeleteEntryProcedure, opts...),
		listEntries:       connect.NewClient[api.ListEntriesRequest, api.ListEntriesResponse](httpClient, baseURL+EntryServiceListEntriesProcedure, opts...),
		getProductHistory: connect.NewClient[api.GetProductHistoryRequest, api.GetProductHistoryResponse](httpClient, baseURL+EntryServiceGetProductHistoryProcedure, opts...),
		getFormDefaults:   connect.NewClient[api.GetFormDefaultsRequest, api.GetFormDefaultsResponse](httpClient, baseURL+EntryServiceGetFormDefaultsProcedure, opts...),
		listCategories:    connect.NewClient[api.ListCategoriesRequest, api.ListCategoriesResponse](httpClient, baseURL+EntryServiceListCategoriesProcedure, opts...),
	}
}

func (c *entryServiceClient) AddEntry(ctx context.Context, req *connect.Request[api.AddEntryRequest]) (*connect.Response[api.AddEntryResponse], error) {
	return c.addEntry.CallUnary(ctx, req)
}

func (c *entryServiceClient) DeleteEntry(ctx context.Context, req *connect.Request[api.DeleteEntryRequest]) (*connect.Response[api.DeleteEntryResponse], error) {
	return c.deleteEntry.CallUnary(ctx, req)
}

func (c *entryServiceClient) ListEntries(ctx context.Context, req *connect.Request[api.ListEntriesRequest]) (*connect.Response[api.ListEntriesResponse], error) {
	return c.listEntries.CallUnary(ctx, req)
}

func (c *entryServiceClient) GetProductHistory(ctx context.Context, req *connect.Request[api.GetProductHistoryRequest]) (*connect.Response[api.GetProductHistoryResponse], error) {
	return c.getProductHistory.CallUnary(ctx, req)
}

func (c *entryServiceClient) GetFormDefaults(ctx context.Context, req *connect.Request[api.GetFormDefaultsRequest]) (*connect.Response[api.GetFormDefaultsResponse], error) {
	return c.getFormDefaults.CallUnary(ctx, req)
}

func (c *entryServiceClient) ListCategories(ctx context.Context, req *connect.Request[api.ListCategoriesRequest]) (*connect.Response[api.ListCategoriesResponse], error) {
	return c.listCategories.CallUnary(ctx, req)
}
