package service

import (
	"context"
	"errors"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/pricediary/internal/auth"
	"github.com/mmynk/pricediary/internal/family"
	"github.com/mmynk/pricediary/internal/middleware"
	"github.com/mmynk/pricediary/internal/storage"
	"github.com/mmynk/pricediary/pkg/api"
)

// AuthService implements the AuthService RPC interface.
type AuthService struct {
	authenticator auth.Authenticator
	jwtManager    *auth.JWTManager
	users         storage.UserStore
	families      *family.Repository
	logger        *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(authenticator auth.Authenticator, jwtManager *auth.JWTManager, users storage.UserStore, families *family.Repository, logger *slog.Logger) *AuthService {
	return &AuthService{
		authenticator: authenticator,
		jwtManager:    jwtManager,
		users:         users,
		families:      families,
		logger:        logger,
	}
}

// Register creates a new user account and its profile.
func (s *AuthService) Register(ctx context.Context, req *connect.Request[api.RegisterRequest]) (*connect.Response[api.RegisterResponse], error) {
	s.logger.Info("Register request", "email", req.Msg.Email)

	if req.Msg.Email == "" {
		return nil, invalidArgument(auth.ErrInvalidEmail)
	}

	user, err := s.authenticator.Register(ctx, req.Msg.Email, req.Msg.Password)
	switch {
	case errors.Is(err, auth.ErrEmailExists):
		return nil, connect.NewError(connect.CodeAlreadyExists, err)
	case errors.Is(err, auth.ErrWeakPassword), errors.Is(err, auth.ErrInvalidEmail):
		return nil, invalidArgument(err)
	case err != nil:
		return nil, internalError(s.logger, "Registration failed", err, "email", req.Msg.Email)
	}

	if _, err := s.families.EnsureProfile(ctx, user.ID, user.Email); err != nil {
		return nil, internalError(s.logger, "Failed to create profile", err, "user_id", user.ID)
	}

	token, err := s.jwtManager.Generate(user)
	if err != nil {
		return nil, internalError(s.logger, "Failed to generate token", err, "user_id", user.ID)
	}

	s.logger.Info("User registered successfully", "user_id", user.ID, "email", user.Email)
	return connect.NewResponse(&api.RegisterResponse{
		User:  toAPIUser(user),
		Token: token,
	}), nil
}

// Login authenticates a user and returns a JWT token.
func (s *AuthService) Login(ctx context.Context, req *connect.Request[api.LoginRequest]) (*connect.Response[api.LoginResponse], error) {
	s.logger.Info("Login request", "email", req.Msg.Email)

	if req.Msg.Email == "" || req.Msg.Password == "" {
		return nil, invalidArgument(auth.ErrInvalidCredentials)
	}

	user, err := s.authenticator.Authenticate(ctx, req.Msg.Email, req.Msg.Password)
	if err != nil {
		s.logger.Warn("Login failed", "email", req.Msg.Email, "error", err)
		return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrInvalidCredentials)
	}

	// profiles are created lazily for accounts that predate them
	if _, err := s.families.EnsureProfile(ctx, user.ID, user.Email); err != nil {
		return nil, internalError(s.logger, "Failed to ensure profile", err, "user_id", user.ID)
	}

	token, err := s.jwtManager.Generate(user)
	if err != nil {
		return nil, internalError(s.logger, "Failed to generate token", err, "user_id", user.ID)
	}

	s.logger.Info("User logged in successfully", "user_id", user.ID, "email", user.Email)
	return connect.NewResponse(&api.LoginResponse{
		User:  toAPIUser(user),
		Token: token,
	}), nil
}

// Logout is a no-op: JWTs are stateless and discarded client-side.
func (s *AuthService) Logout(ctx context.Context, req *connect.Request[api.LogoutRequest]) (*connect.Response[api.LogoutResponse], error) {
	s.logger.Info("Logout request", "user_id", middleware.GetUserID(ctx))
	return connect.NewResponse(&api.LogoutResponse{}), nil
}

// GetCurrentUser returns the authenticated user and profile.
func (s *AuthService) GetCurrentUser(ctx context.Context, req *connect.Request[api.GetCurrentUserRequest]) (*connect.Response[api.GetCurrentUserResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, internalError(s.logger, "Failed to get user", err, "user_id", userID)
	}
	if user == nil {
		return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrInvalidToken)
	}

	profile, err := s.families.GetProfile(ctx, userID)
	if err != nil {
		return nil, internalError(s.logger, "Failed to get profile", err, "user_id", userID)
	}

	return connect.NewResponse(&api.GetCurrentUserResponse{
		User:    toAPIUser(user),
		Profile: toAPIProfile(profile),
	}), nil
}
