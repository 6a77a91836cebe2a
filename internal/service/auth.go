package service

import (
	"context"

	"github.com/splitkaro/bff-go/internal/domain"
	"github.com/splitkaro/bff-go/internal/port"
	"github.com/splitkaro/bff-go/internal/session"
	"github.com/splitkaro/bff-go/internal/state"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var authTracer = otel.Tracer("service/auth")

const minPasswordLen = 6

// AuthService handles login and registration against the upstream API.
// Credentials pass through; nothing is stored or hashed locally.
type AuthService struct {
	api    port.AuthAPI
	store  *state.Store
	logger *zap.Logger
}

// NewAuthService creates the auth service.
func NewAuthService(api port.AuthAPI, store *state.Store, logger *zap.Logger) *AuthService {
	return &AuthService{api: api, store: store, logger: logger}
}

// Login validates the request, exchanges credentials upstream, decodes the
// caller's identity out of the returned token, and warms the group snapshot.
// A failed warm-up is logged, never surfaced: login already succeeded.
func (s *AuthService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error) {
	ctx, span := authTracer.Start(ctx, "AuthService.Login")
	defer span.End()

	if req.UserID == "" {
		return nil, &domain.ErrValidation{Field: "userId", Message: "userId is required"}
	}
	if req.Password == "" {
		return nil, &domain.ErrValidation{Field: "password", Message: "password is required"}
	}

	resp, err := s.api.Login(ctx, req.UserID, req.Password)
	if err != nil {
		return nil, err
	}

	ident, ok := session.Resolve(resp.Token)
	if !ok {
		// Tokens without a readable subject still work as bearers; fall
		// back to the login name for snapshot bookkeeping.
		ident = session.Identity{UserID: req.UserID, Token: resp.Token}
	}
	resp.UserID = ident.UserID

	if _, err := s.store.Init(ctx, ident); err != nil {
		s.logger.Warn("group snapshot warm-up failed after login",
			zap.String("user_id", ident.UserID),
			zap.Error(err),
		)
	}
	return resp, nil
}

// Register validates the request locally before any network call, then
// creates the account upstream. ConfirmPassword never leaves the process.
func (s *AuthService) Register(ctx context.Context, req *domain.RegisterRequest) (*domain.RegisterResponse, error) {
	ctx, span := authTracer.Start(ctx, "AuthService.Register")
	defer span.End()

	if req.Name == "" {
		return nil, &domain.ErrValidation{Field: "name", Message: "name is required"}
	}
	if req.UserID == "" {
		return nil, &domain.ErrValidation{Field: "userId", Message: "userId is required"}
	}
	if req.Password == "" {
		return nil, &domain.ErrValidation{Field: "password", Message: "password is required"}
	}
	if len(req.Password) < minPasswordLen {
		return nil, &domain.ErrValidation{Field: "password", Message: "password must be at least 6 characters"}
	}
	if req.Password != req.ConfirmPassword {
		return nil, &domain.ErrValidation{Field: "confirmPassword", Message: "passwords do not match"}
	}

	return s.api.Register(ctx, *req)
}

// Logout drops the server-side snapshot for the user. The token itself is
// stateless; the upstream has no logout endpoint.
func (s *AuthService) Logout(userID string) {
	s.store.Forget(userID)
}
