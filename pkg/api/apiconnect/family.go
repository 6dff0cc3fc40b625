package apiconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/pricediary/pkg/api"
)

// FamilyServiceName is the fully-qualified name of the FamilyService service.
const FamilyServiceName = "pricediary.v1.FamilyService"

const (
	FamilyServiceCreateFamilyProcedure = "/pricediary.v1.FamilyService/CreateFamily"
	FamilyServiceJoinFamilyProcedure   = "/pricediary.v1.FamilyService/JoinFamily"
	FamilyServiceGetProfileProcedure   = "/pricediary.v1.FamilyService/GetProfile"
)

// FamilyServiceHandler is implemented by the server side of FamilyService.
type FamilyServiceHandler interface {
	CreateFamily(context.Context, *connect.Request[api.CreateFamilyRequest]) (*connect.Response[api.CreateFamilyResponse], error)
	JoinFamily(context.Context, *connect.Request[api.JoinFamilyRequest]) (*connect.Response[api.JoinFamilyResponse], error)
	GetProfile(context.Context, *connect.Request[api.GetProfileRequest]) (*connect.Response[api.GetProfileResponse], error)
}

// NewFamilyServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewFamilyServiceHandler(svc FamilyServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	handlers := map[string]http.Handler{
		FamilyServiceCreateFamilyProcedure: connect.NewUnaryHandler(FamilyServiceCreateFamilyProcedure, svc.CreateFamily, opts...),
		FamilyServiceJoinFamilyProcedure:   connect.NewUnaryHandler(FamilyServiceJoinFamilyProcedure, svc.JoinFamily, opts...),
		FamilyServiceGetProfileProcedure:   connect.NewUnaryHandler(FamilyServiceGetProfileProcedure, svc.GetProfile, opts...),
	}
	return "/" + FamilyServiceName + "/", route(handlers)
}

// FamilyServiceClient is a client for the FamilyService service.
type FamilyServiceClient interface {
	FamilyServiceHandler
}

type familyServiceClient struct {
	createFamily *connect.Client[api.CreateFamilyRequest, api.CreateFamilyResponse]
	joinFamily   *connect.Client[api.JoinFamilyRequest, api.JoinFamilyResponse]
	getProfile   *connect.Client[api.GetProfileRequest, api.GetProfileResponse]
}

// NewFamilyServiceClient constructs a client for the FamilyService service at baseURL.
func NewFamilyServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) FamilyServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)
	return &familyServiceClient{
		createFamily: connect.NewClient[api.CreateFamilyRequest, api.CreateFamilyResponse](httpClient, baseURL+FamilyServiceCreateFamilyProcedure, opts...),
		joinFamily:   connect.NewClient[api.JoinFamilyRequest, api.JoinFamilyResponse](httpClient, baseURL+FamilyServiceJoinFamilyProcedure, opts...),
		getProfile:   connect.NewClient[api.GetProfileRequest, api.GetProfileResponse](httpClient, baseURL+FamilyServiceGetProfileProcedure, opts...),
	}
}

func (c *familyServiceClient) CreateFamily(ctx context.Context, req *connect.Request[api.CreateFamilyRequest]) (*connect.Response[api.CreateFamilyResponse], error) {
	return c.createFamily.CallUnary(ctx, req)
}

func (c *familyServiceClient) JoinFamily(ctx context.Context, req *connect.Request[api.JoinFamilyRequest]) (*connect.Response[api.JoinFamilyResponse], error) {
	return c.joinFamily.CallUnary(ctx, req)
}

func (c *familyServiceClient) GetProfile(ctx context.Context, req *connect.Request[api.GetProfileRequest]) (*connect.Response[api.GetProfileResponse], error) {
	return c.getProfile.CallUnary(ctx, req)
}
