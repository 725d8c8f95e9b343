package auth

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/teryaq/pharmacy-backend/internal"
	"github.com/teryaq/pharmacy-backend/internal/audit"
	"github.com/teryaq/pharmacy-backend/internal/core/operation"
)

// Credentials is what login and refresh need to know about a user.
type Credentials struct {
	UserID       int64
	Email        string
	PasswordHash string
	RoleName     string
	IsActive     bool
}

type RepositoryAPI interface {
	GetCredentialsByEmail(ctx context.Context, email string) (*Credentials, error)
	GetCredentialsByID(ctx context.Context, userID int64) (*Credentials, error)
}

type ServiceAPI interface {
	Authenticate(ctx context.Context, dto LoginDTO) (AuthTokens, error)
	RefreshTokens(ctx context.Context, refreshToken string) (AuthTokens, error)
	Logout(ctx context.Context, accessToken string) error
	ValidateAccessToken(ctx context.Context, tokenString string) (*Claims, error)
	ResolvePrincipal(ctx context.Context, accessToken string) (internal.UserPrincipal, error)
}

// Service is the main auth service with dependencies
type Service struct {
	repo       RepositoryAPI
	tokens     TokenGenerator
	store      TokenStore
	decorators operation.Decorators
	logger     *slog.Logger
	now        func() time.Time
}

// NewService creates a new auth service
func NewService(repo RepositoryAPI, tokens TokenGenerator, store TokenStore, decorators operation.Decorators, logger *slog.Logger) *Service {
	if store == nil {
		store = NoopTokenStore{}
	}
	return &Service{
		repo:       repo,
		tokens:     tokens,
		store:      store,
		decorators: decorators,
		logger:     logger,
		now:        time.Now,
	}
}

// Authenticate validates credentials and returns tokens
func (s *Service) Authenticate(ctx context.Context, dto LoginDTO) (AuthTokens, error) {
	email := strings.ToLower(strings.TrimSpace(dto.Email))
	var signedIn internal.UserPrincipal
	action := audit.Action[AuthTokens]{
		Name:       "LOGIN",
		TargetType: "USER",
		TargetID:   email,
		ActorOf: func(AuthTokens) (internal.UserPrincipal, bool) {
			return signedIn, signedIn.UserID > 0
		},
	}
	return operation.Run(ctx, s.decorators, "auth.login", action, func(ctx context.Context) (AuthTokens, error) {
		creds, err := s.repo.GetCredentialsByEmail(ctx, email)
		if err != nil {
			return AuthTokens{}, internal.NewInternalError("Failed to load credentials", err)
		}
		if creds == nil {
			return AuthTokens{}, internal.ErrInvalidCredentials
		}
		if err := VerifyPassword(creds.PasswordHash, dto.Password); err != nil {
			return AuthTokens{}, internal.ErrInvalidCredentials
		}
		if !creds.IsActive {
			return AuthTokens{}, internal.ErrUserInactive
		}

		tokens, err := s.issue(creds)
		if err != nil {
			return AuthTokens{}, err
		}
		signedIn = creds.principal()
		return tokens, nil
	})
}

// RefreshTokens rotates a refresh token: the presented one is revoked and a new pair issued.
// Only the caller that revokes the token gets the new pair; replays and concurrent
// duplicates see ErrTokenRevoked.
func (s *Service) RefreshTokens(ctx context.Context, refreshToken string) (AuthTokens, error) {
	claims, err := s.tokens.ValidateRefreshToken(refreshToken)
	if err != nil {
		return AuthTokens{}, err
	}

	creds, err := s.repo.GetCredentialsByID(ctx, claims.UserID)
	if err != nil {
		return AuthTokens{}, internal.NewInternalError("Failed to load credentials", err)
	}
	if creds == nil {
		return AuthTokens{}, internal.ErrInvalidToken
	}
	if !creds.IsActive {
		return AuthTokens{}, internal.ErrUserInactive
	}

	revoked, err := s.revoke(ctx, claims)
	if err != nil {
		return AuthTokens{}, err
	}
	if !revoked {
		return AuthTokens{}, internal.ErrTokenRevoked
	}
	return s.issue(creds)
}

// Logout revokes the access token until it would have expired anyway.
func (s *Service) Logout(ctx context.Context, accessToken string) error {
	claims, err := s.ValidateAccessToken(ctx, accessToken)
	if err != nil {
		return err
	}

	ctx = internal.ContextWithAuthentication(ctx, internal.NewUserAuthentication(claims.Principal()))
	action := audit.Action[struct{}]{
		Name:       "LOGOUT",
		TargetType: "USER",
		TargetID:   audit.ID(claims.UserID),
	}
	_, err = operation.Run(ctx, s.decorators, "auth.logout", action, func(ctx context.Context) (struct{}, error) {
		_, err := s.revoke(ctx, claims)
		return struct{}{}, err
	})
	return err
}

// ResolvePrincipal validates the access token and builds the principal from the stored
// user, so role changes and deactivation apply before the token expires.
func (s *Service) ResolvePrincipal(ctx context.Context, accessToken string) (internal.UserPrincipal, error) {
	claims, err := s.ValidateAccessToken(ctx, accessToken)
	if err != nil {
		return internal.UserPrincipal{}, err
	}

	creds, err := s.repo.GetCredentialsByID(ctx, claims.UserID)
	if err != nil {
		return internal.UserPrincipal{}, internal.NewInternalError("Failed to load credentials", err)
	}
	if creds == nil {
		return internal.UserPrincipal{}, internal.ErrInvalidToken
	}
	if !creds.IsActive {
		return internal.UserPrincipal{}, internal.ErrUserInactive
	}
	return creds.principal(), nil
}

// ValidateAccessToken validates access token, including the revocation list, and returns claims
func (s *Service) ValidateAccessToken(ctx context.Context, tokenString string) (*Claims, error) {
	claims, err := s.tokens.ValidateAccessToken(tokenString)
	if err != nil {
		return nil, err
	}
	if err := s.ensureNotRevoked(ctx, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

func (c *Credentials) principal() internal.UserPrincipal {
	return internal.UserPrincipal{UserID: c.UserID, Email: c.Email, RoleName: c.RoleName}
}

func (s *Service) issue(creds *Credentials) (AuthTokens, error) {
	principal := creds.principal()

	accessToken, expiresAt, err := s.tokens.GenerateAccessToken(principal)
	if err != nil {
		return AuthTokens{}, internal.NewInternalError("Failed to issue access token", err)
	}
	refreshToken, err := s.tokens.GenerateRefreshToken(principal)
	if err != nil {
		return AuthTokens{}, internal.NewInternalError("Failed to issue refresh token", err)
	}

	return AuthTokens{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresAt:    expiresAt,
	}, nil
}

func (s *Service) ensureNotRevoked(ctx context.Context, claims *Claims) error {
	revoked, err := s.store.IsRevoked(ctx, claims.ID)
	if err != nil {
		s.logger.ErrorContext(ctx, "token denylist lookup failed", "error", err)
		return internal.NewInternalError("Failed to verify token", err)
	}
	if revoked {
		return internal.ErrTokenRevoked
	}
	return nil
}

// revoke reports whether this call was the one that revoked the token.
func (s *Service) revoke(ctx context.Context, claims *Claims) (bool, error) {
	ttl := time.Minute
	if claims.ExpiresAt != nil {
		ttl = claims.ExpiresAt.Time.Sub(s.now())
	}
	revoked, err := s.store.Revoke(ctx, claims.ID, ttl)
	if err != nil {
		s.logger.ErrorContext(ctx, "token revocation failed", "error", err)
		return false, internal.NewInternalError("Failed to revoke token", err)
	}
	return revoked, nil
}
