package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/eservicedesk/internal/auth"
	"github.com/spec-kit/eservicedesk/internal/config"
	"github.com/spec-kit/eservicedesk/internal/domain"
	"github.com/spec-kit/eservicedesk/internal/repository"
	"github.com/spec-kit/eservicedesk/internal/simrs"
	apperrors "github.com/spec-kit/eservicedesk/pkg/util"
)

// AuthService handles login, password management and webmin credential
// resolution for outbound SIMRS calls.
type AuthService struct {
	cfg    config.Config
	users  repository.UserRepository
	webmin repository.WebminRepository
	tokens *auth.TokenManager
}

// AuthDependencies bundles repositories for the auth service.
type AuthDependencies struct {
	UserRepo   repository.UserRepository
	WebminRepo repository.WebminRepository
}

// NewAuthService constructs the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		cfg:    cfg,
		users:  deps.UserRepo,
		webmin: deps.WebminRepo,
		tokens: auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
	}
}

// TokenManager exposes the token manager for the auth middleware.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokens
}

// LoginResult carries a freshly issued token.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}

// Login authenticates a portal account.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, apperrors.NewValidationError("username and password required", nil)
	}
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, apperrors.MapError(err)
	}
	if !user.Active {
		return nil, apperrors.NewForbidden("account disabled")
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}
	token, expiresAt, err := s.tokens.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return &LoginResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// ChangePassword rotates the caller's password.
func (s *AuthService) ChangePassword(ctx context.Context, userID, current, next string) error {
	if len(next) < 8 {
		return apperrors.NewValidationError("new password must be at least 8 characters", nil)
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return apperrors.MapError(err)
	}
	if err := auth.ComparePassword(user.PasswordHash, current); err != nil {
		return apperrors.NewUnauthorized("current password incorrect")
	}
	hashed, err := auth.HashPassword(next, s.cfg.Auth.BcryptCost)
	if err != nil {
		return apperrors.MapError(err)
	}
	if err := s.users.UpdatePassword(ctx, userID, hashed); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

// ResolveCredentials looks up the caller's webmin account and resolves the
// base URL. A stored override is honored only for admin accounts; everyone
// else talks to the configured default.
func (s *AuthService) ResolveCredentials(ctx context.Context, user *domain.User) (simrs.Credentials, error) {
	cred, err := s.webmin.GetByUserID(ctx, user.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return simrs.Credentials{}, apperrors.NewForbidden("no webmin credentials configured for this account")
		}
		return simrs.Credentials{}, apperrors.MapError(err)
	}
	baseURL := s.cfg.Simrs.BaseURL
	if cred.BaseURLOverride != "" && user.Role == domain.UserRoleAdmin {
		baseURL = cred.BaseURLOverride
	}
	return simrs.Credentials{
		Username: cred.WebminUser,
		Password: cred.WebminPass,
		BaseURL:  baseURL,
	}, nil
}

// UpsertWebmin stores or replaces the caller's webmin credentials. Only
// admins may set a base URL override.
func (s *AuthService) UpsertWebmin(ctx context.Context, user *domain.User, webminUser, webminPass, baseURLOverride string) error {
	if strings.TrimSpace(webminUser) == "" || webminPass == "" {
		return apperrors.NewValidationError("webmin_user and webmin_pass required", nil)
	}
	if baseURLOverride != "" && user.Role != domain.UserRoleAdmin {
		return apperrors.NewForbidden("base URL override is admin only")
	}
	cred := &domain.WebminCredential{
		UserID:          user.ID,
		WebminUser:      strings.TrimSpace(webminUser),
		WebminPass:      webminPass,
		BaseURLOverride: strings.TrimSpace(baseURLOverride),
	}
	if err := s.webmin.Upsert(ctx, cred); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}
