package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/pricediary/internal/family"
	"github.com/mmynk/pricediary/internal/middleware"
	"github.com/mmynk/pricediary/pkg/api"
)

// FamilyService implements the FamilyService RPC interface.
type FamilyService struct {
	families *family.Repository
	baseURL  string
	logger   *slog.Logger
}

// NewFamilyService creates a FamilyService. baseURL prefixes invite links.
func NewFamilyService(families *family.Repository, baseURL string, logger *slog.Logger) *FamilyService {
	return &FamilyService{
		families: families,
		baseURL:  baseURL,
		logger:   logger,
	}
}

// CreateFamily creates a family owned by the caller.
func (s *FamilyService) CreateFamily(ctx context.Context, req *connect.Request[api.CreateFamilyRequest]) (*connect.Response[api.CreateFamilyResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}

	familyID, err := s.families.CreateFamily(ctx, userID)
	if err != nil {
		return nil, internalError(s.logger, "CreateFamily failed", err, "user_id", userID)
	}

	return connect.NewResponse(&api.CreateFamilyResponse{
		FamilyId:  familyID,
		InviteUrl: family.InviteURL(s.baseURL, familyID),
	}), nil
}

// JoinFamily adds the caller to a family.
func (s *FamilyService) JoinFamily(ctx context.Context, req *connect.Request[api.JoinFamilyRequest]) (*connect.Response[api.JoinFamilyResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}

	familyID := strings.TrimSpace(req.Msg.FamilyId)
	if familyID == "" {
		return nil, invalidArgument(errors.New("family id required"))
	}

	if err := s.families.JoinFamily(ctx, userID, familyID); err != nil {
		return nil, internalError(s.logger, "JoinFamily failed", err, "user_id", userID, "family_id", familyID)
	}

	return connect.NewResponse(&api.JoinFamilyResponse{FamilyId: familyID}), nil
}

// GetProfile returns the caller's profile and, when in a family, its invite link.
func (s *FamilyService) GetProfile(ctx context.Context, req *connect.Request[api.GetProfileRequest]) (*connect.Response[api.GetProfileResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}

	profile, err := s.families.EnsureProfile(ctx, userID, middleware.GetEmail(ctx))
	if err != nil {
		return nil, internalError(s.logger, "GetProfile failed", err, "user_id", userID)
	}

	resp := &api.GetProfileResponse{Profile: toAPIProfile(profile)}
	if profile.HasFamily() {
		resp.InviteUrl = family.InviteURL(s.baseURL, profile.FamilyID)
	}
	return connect.NewResponse(resp), nil
}
