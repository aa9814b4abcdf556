package utils

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// AccessTokenClaims is the subset of Keycloak access-token claims the service
// reads when joining a token with the local identity record.
type AccessTokenClaims struct {
	Subject           string
	PreferredUsername string
	Email             string
}

// ParseAccessTokenClaims extracts claims from a Keycloak-issued access token
// without signature verification. Only call this on tokens the service just
// received from the IdP's own token endpoint; tokens arriving from callers go
// through the OIDC verifier in the auth middleware instead.
func ParseAccessTokenClaims(accessToken string) (*AccessTokenClaims, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, claims); err != nil {
		return nil, fmt.Errorf("failed to parse access token claims: %w", err)
	}

	out := &AccessTokenClaims{}
	out.Subject, _ = claims["sub"].(string)
	out.PreferredUsername, _ = claims["preferred_username"].(string)
	out.Email, _ = claims["email"].(string)
	return out, nil
}
