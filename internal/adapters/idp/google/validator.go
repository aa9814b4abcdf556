package google

import (
	"context"
	"fmt"

	"google.golang.org/api/idtoken"

	"github.com/shikshaspace/user-service/internal/apperrors"
	"github.com/shikshaspace/user-service/internal/core/domain"
	portsidp "github.com/shikshaspace/user-service/internal/core/ports/idp"
)

// Validator verifies Google-issued ID tokens against Google's public keys
// and produces the typed claim set the sign-in flow consumes.
type Validator struct {
	clientID string
}

var _ portsidp.GoogleTokenValidator = (*Validator)(nil)

func NewValidator(clientID string) *Validator {
	return &Validator{clientID: clientID}
}

func (v *Validator) Validate(ctx context.Context, idTokenString string) (*domain.VerifiedClaims, error) {
	if v.clientID == "" {
		return nil, apperrors.New(apperrors.KindValidation, "google sign-in is not configured", nil)
	}

	payload, err := idtoken.Validate(ctx, idTokenString, v.clientID)
	if err != nil {
		return nil, apperrors.New(apperrors.KindValidation,
			"google ID token validation failed", fmt.Errorf("idtoken validate: %w", err))
	}

	email, _ := payload.Claims["email"].(string)
	givenName, _ := payload.Claims["given_name"].(string)
	familyName, _ := payload.Claims["family_name"].(string)
	emailVerified, _ := payload.Claims["email_verified"].(bool)

	if payload.Subject == "" || email == "" {
		return nil, apperrors.New(apperrors.KindValidation, "google ID token missing required claims", nil)
	}

	return &domain.VerifiedClaims{
		Subject:       payload.Subject,
		Email:         email,
		GivenName:     givenName,
		FamilyName:    familyName,
		EmailVerified: emailVerified,
	}, nil
}
