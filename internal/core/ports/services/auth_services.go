package services

import (
	"context"

	"github.com/shikshaspace/user-service/internal/core/domain"
	"github.com/shikshaspace/user-service/internal/dto"
)

// AuthSvcFacade orchestrates credential-based registration, login, and token
// refresh against the IdP and the local store.
type AuthSvcFacade interface {
	// Register creates the account on the IdP first, then persists the local
	// identity, then performs an implicit login with the same credentials.
	Register(ctx context.Context, req dto.RegisterRequest) (*dto.AuthResponse, error)

	// Login exchanges credentials for tokens and joins them with the local identity.
	Login(ctx context.Context, username, password string) (*dto.AuthResponse, error)

	// Refresh exchanges a refresh token for a new pair. Never writes to the store.
	Refresh(ctx context.Context, refreshToken string) (*dto.AuthResponse, error)
}

// OAuth2SvcFacade orchestrates federated (Google) sign-in: token validation,
// local lookup-or-create, then login through the IdP's single token path.
type OAuth2SvcFacade interface {
	SignInWithGoogle(ctx context.Context, idToken string) (*dto.AuthResponse, error)
}

// TokenSvcFacade wraps the IdP token endpoint grants and assembles the
// caller-facing token bundle by joining token fields with the local identity.
type TokenSvcFacade interface {
	// PasswordLogin performs the password grant and assembles an AuthResponse.
	PasswordLogin(ctx context.Context, username, password string) (*dto.AuthResponse, error)

	// Refresh performs the refresh_token grant and assembles an AuthResponse.
	Refresh(ctx context.Context, refreshToken string) (*dto.AuthResponse, error)
}

// SyncSvcFacade reconciles the IdP and the local store. Creation only: a
// local record is created when the IdP has one and the store does not, never
// the reverse, and local edits are never overwritten after first sync.
type SyncSvcFacade interface {
	// EnsureLocalUser returns the local identity for the IdP subject id,
	// creating it from the IdP profile when the local lookup misses.
	EnsureLocalUser(ctx context.Context, keycloakID string) (*domain.User, error)
}
