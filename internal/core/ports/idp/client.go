package idp

import (
	"context"

	"github.com/shikshaspace/user-service/internal/core/domain"
)

// NewAccount carries the fields for creating an account on the IdP. The
// password is set as a non-temporary credential at creation time.
type NewAccount struct {
	Username      string
	Email         string
	Password      string
	FirstName     string
	LastName      string
	EmailVerified bool
}

// UserInfo is the claim set returned by the IdP's userinfo endpoint for a
// bearer access token.
type UserInfo struct {
	Subject           string `json:"sub"`
	Email             string `json:"email"`
	GivenName         string `json:"given_name"`
	FamilyName        string `json:"family_name"`
	PreferredUsername string `json:"preferred_username"`
}

// Client is the contract this service expects from the external identity
// provider. It is a stateless capability object: implementations hold only
// configuration (server URL, realm, client credentials) created once at
// process start. Errors are kinded apperrors: rejection of an admin call is
// KindIdentityProvider (KindDuplicate for uniqueness conflicts), credential
// rejection is KindAuthenticationFailed or KindTokenRefreshFailed depending
// on the grant, and timeouts/5xx are KindIdentityProviderUnavailable.
type Client interface {
	// CreateAccount creates an account on the IdP and returns its subject id.
	CreateAccount(ctx context.Context, account NewAccount) (string, error)

	// DeleteAccount removes the IdP-side account for the subject id.
	DeleteAccount(ctx context.Context, subjectID string) error

	// GetAccount fetches the IdP's profile for the subject id.
	GetAccount(ctx context.Context, subjectID string) (*domain.ProviderProfile, error)

	// FindAccountByEmail looks up an IdP account by exact email.
	FindAccountByEmail(ctx context.Context, email string) (*domain.ProviderProfile, error)

	// ResetPassword replaces the account's credential with a non-temporary password.
	ResetPassword(ctx context.Context, subjectID string, password string) error

	// PasswordGrant exchanges username/password for a token pair.
	PasswordGrant(ctx context.Context, username, password string) (*domain.TokenPair, error)

	// RefreshGrant exchanges a refresh token for a new token pair.
	RefreshGrant(ctx context.Context, refreshToken string) (*domain.TokenPair, error)

	// FetchUserInfo resolves an access token into its verified claim set.
	FetchUserInfo(ctx context.Context, accessToken string) (*UserInfo, error)
}

// GoogleTokenValidator verifies an externally supplied Google ID token and
// returns its verified claims.
type GoogleTokenValidator interface {
	Validate(ctx context.Context, idToken string) (*domain.VerifiedClaims, error)
}
