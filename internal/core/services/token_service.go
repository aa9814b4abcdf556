package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/shikshaspace/user-service/internal/apperrors"
	"github.com/shikshaspace/user-service/internal/core/domain"
	portsidp "github.com/shikshaspace/user-service/internal/core/ports/idp"
	portsrepo "github.com/shikshaspace/user-service/internal/core/ports/repositories"
	portssvc "github.com/shikshaspace/user-service/internal/core/ports/services"
	"github.com/shikshaspace/user-service/internal/dto"
	"github.com/shikshaspace/user-service/internal/utils"
)

// tokenService wraps the IdP token endpoint grants and assembles the
// caller-facing bundle. Tokens and local identity fields are fetched
// independently and joined by username or email; the local store is never a
// source of tokens.
type tokenService struct {
	idp      portsidp.Client
	userRepo portsrepo.UserRepository
}

// NewTokenService creates a new instance of tokenService.
func NewTokenService(idpClient portsidp.Client, userRepo portsrepo.UserRepository) portssvc.TokenSvcFacade {
	return &tokenService{idp: idpClient, userRepo: userRepo}
}

func (s *tokenService) PasswordLogin(ctx context.Context, username, password string) (*dto.AuthResponse, error) {
	pair, err := s.idp.PasswordGrant(ctx, username, password)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			// The IdP accepted the credentials, so the identity exists there
			// but not locally. This is sync drift, not bad credentials.
			return nil, apperrors.New(apperrors.KindIdentityNotFound,
				"identity exists at the provider but has no local record", err)
		}
		return nil, fmt.Errorf("failed to load local identity for %q: %w", username, err)
	}

	return assembleAuthResponse(pair, user), nil
}

func (s *tokenService) Refresh(ctx context.Context, refreshToken string) (*dto.AuthResponse, error) {
	pair, err := s.idp.RefreshGrant(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	username, email, err := s.resolveTokenIdentity(ctx, pair.AccessToken)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindUserByUsername(ctx, username)
	if errors.Is(err, apperrors.ErrNotFound) && email != "" {
		user, err = s.userRepo.FindUserByEmail(ctx, email)
	}
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.New(apperrors.KindIdentityNotFound,
				"identity exists at the provider but has no local record", err)
		}
		return nil, fmt.Errorf("failed to load local identity for refreshed token: %w", err)
	}

	return assembleAuthResponse(pair, user), nil
}

// resolveTokenIdentity reads preferred_username/email off the freshly issued
// access token, falling back to the userinfo endpoint when the token carries
// no username claim.
func (s *tokenService) resolveTokenIdentity(ctx context.Context, accessToken string) (username, email string, err error) {
	claims, err := utils.ParseAccessTokenClaims(accessToken)
	if err == nil && claims.PreferredUsername != "" {
		return claims.PreferredUsername, claims.Email, nil
	}

	info, uerr := s.idp.FetchUserInfo(ctx, accessToken)
	if uerr != nil {
		return "", "", uerr
	}
	if info.PreferredUsername == "" && info.Email == "" {
		return "", "", apperrors.New(apperrors.KindIdentityProvider,
			"identity provider returned a token with no resolvable identity", nil)
	}
	return info.PreferredUsername, info.Email, nil
}

func assembleAuthResponse(pair *domain.TokenPair, user *domain.User) *dto.AuthResponse {
	return &dto.AuthResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
		UserID:       user.UserID,
		Username:     user.Username,
		Email:        user.Email,
	}
}
