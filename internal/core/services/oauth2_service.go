package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/shikshaspace/user-service/internal/apperrors"
	"github.com/shikshaspace/user-service/internal/core/domain"
	portsidp "github.com/shikshaspace/user-service/internal/core/ports/idp"
	portsrepo "github.com/shikshaspace/user-service/internal/core/ports/repositories"
	portssvc "github.com/shikshaspace/user-service/internal/core/ports/services"
	"github.com/shikshaspace/user-service/internal/dto"
	"github.com/shikshaspace/user-service/internal/utils"
)

// oauth2Service handles Google sign-in. Federated identities still
// authenticate through the IdP's password grant because the service has
// exactly one token-issuance path; first-time users get a random one-time
// secret, returning users a credential derived deterministically from their
// IdP subject identifier.
type oauth2Service struct {
	validator portsidp.GoogleTokenValidator
	idp       portsidp.Client
	userRepo  portsrepo.UserRepository
	tokens    portssvc.TokenSvcFacade
	sync      portssvc.SyncSvcFacade
	secretKey string
	logger    *slog.Logger
}

// NewOAuth2Service creates the federated authentication service. secretKey
// anchors the deterministic credential derivation.
func NewOAuth2Service(
	validator portsidp.GoogleTokenValidator,
	idpClient portsidp.Client,
	userRepo portsrepo.UserRepository,
	tokens portssvc.TokenSvcFacade,
	syncSvc portssvc.SyncSvcFacade,
	secretKey string,
	logger *slog.Logger,
) portssvc.OAuth2SvcFacade {
	return &oauth2Service{
		validator: validator,
		idp:       idpClient,
		userRepo:  userRepo,
		tokens:    tokens,
		sync:      syncSvc,
		secretKey: secretKey,
		logger:    logger,
	}
}

func (s *oauth2Service) SignInWithGoogle(ctx context.Context, idToken string) (*dto.AuthResponse, error) {
	// Step 1: validate the externally supplied token. Everything downstream
	// consumes the typed claims, never the raw token.
	claims, err := s.validator.Validate(ctx, idToken)
	if err != nil {
		return nil, err
	}

	// Step 2: local lookup by email decides between the returning-user and
	// first-time paths.
	user, err := s.userRepo.FindUserByEmail(ctx, claims.Email)
	switch {
	case err == nil:
		return s.loginReturningUser(ctx, user)
	case errors.Is(err, apperrors.ErrNotFound):
		return s.registerAndLogin(ctx, claims)
	default:
		return nil, err
	}
}

// loginReturningUser authenticates an already-known federated identity with
// the deterministic credential. If the IdP rejects it (the credential was
// never synchronized, or the account predates federation), the credential is
// re-applied and the login retried exactly once.
func (s *oauth2Service) loginReturningUser(ctx context.Context, user *domain.User) (*dto.AuthResponse, error) {
	password := utils.DeriveFederatedPassword(user.KeycloakID, s.secretKey)

	resp, err := s.tokens.PasswordLogin(ctx, user.Username, password)
	if err == nil {
		s.stampLastLogin(ctx, user.UserID)
		return resp, nil
	}
	if apperrors.KindOf(err) != apperrors.KindAuthenticationFailed {
		return nil, err
	}

	s.logger.Warn("federated credential rejected, resetting IdP credential and retrying",
		slog.String("user_id", user.UserID),
		slog.String("subject_id", user.KeycloakID))

	if resetErr := s.idp.ResetPassword(ctx, user.KeycloakID, password); resetErr != nil {
		return nil, resetErr
	}

	resp, err = s.tokens.PasswordLogin(ctx, user.Username, password)
	if err != nil {
		// Second failure is fatal for this request.
		return nil, err
	}
	s.stampLastLogin(ctx, user.UserID)
	return resp, nil
}

// registerAndLogin bridges a first-time federated identity into the IdP with
// a random one-time secret, persists the local record, and logs in with the
// secret before discarding it.
func (s *oauth2Service) registerAndLogin(ctx context.Context, claims *domain.VerifiedClaims) (*dto.AuthResponse, error) {
	secret, err := utils.GenerateOneTimeFederatedPassword()
	if err != nil {
		return nil, err
	}

	subjectID, err := s.idp.CreateAccount(ctx, portsidp.NewAccount{
		Username:  claims.Email,
		Email:     claims.Email,
		Password:  secret,
		FirstName: claims.GivenName,
		LastName:  claims.FamilyName,
		// The third-party provider already verified the email.
		EmailVerified: true,
	})
	if err != nil {
		if apperrors.KindOf(err) == apperrors.KindDuplicate {
			// The IdP already knows this identity but the store does not: a
			// sync gap. Repair it and continue as a returning user.
			return s.repairAndLogin(ctx, claims.Email)
		}
		return nil, err
	}

	now := time.Now()
	user := domain.User{
		UserID:        uuid.NewString(),
		KeycloakID:    subjectID,
		Username:      claims.Email,
		Email:         claims.Email,
		FirstName:     claims.GivenName,
		LastName:      claims.FamilyName,
		Provider:      domain.ProviderGoogle,
		EmailVerified: true,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.userRepo.SaveUser(ctx, user); err != nil {
		if delErr := s.idp.DeleteAccount(ctx, subjectID); delErr != nil {
			s.logger.Error("orphaned IdP account: federated local save and compensating delete both failed",
				slog.String("subject_id", subjectID),
				slog.String("email", claims.Email),
				slog.String("save_error", err.Error()),
				slog.String("delete_error", delErr.Error()))
		}
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, apperrors.New(apperrors.KindDuplicate, "identity already registered", err)
		}
		return nil, apperrors.New(apperrors.KindUnknown, "failed to persist federated identity", err)
	}

	s.logger.Info("federated identity registered",
		slog.String("user_id", user.UserID),
		slog.String("subject_id", subjectID),
		slog.String("email", claims.Email))

	resp, err := s.tokens.PasswordLogin(ctx, user.Username, secret)
	if err != nil {
		return nil, err
	}
	s.stampLastLogin(ctx, user.UserID)
	return resp, nil
}

// repairAndLogin handles the drift case where the IdP holds an account for
// the email but the local store has no record: pull the profile, sync a local
// record, then run the returning-user login.
func (s *oauth2Service) repairAndLogin(ctx context.Context, email string) (*dto.AuthResponse, error) {
	profile, err := s.idp.FindAccountByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	user, err := s.sync.EnsureLocalUser(ctx, profile.SubjectID)
	if err != nil {
		return nil, err
	}
	return s.loginReturningUser(ctx, user)
}

func (s *oauth2Service) stampLastLogin(ctx context.Context, userID string) {
	if err := s.userRepo.UpdateLastLogin(ctx, userID, time.Now()); err != nil {
		s.logger.Warn("failed to stamp last login", slog.String("user_id", userID), slog.String("error", err.Error()))
	}
}
