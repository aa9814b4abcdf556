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
)

// authService orchestrates credential registration and login. Every flow is a
// sequential pipeline: IdP first, local store second, token issuance last, and
// any step's failure short-circuits the rest.
type authService struct {
	idp      portsidp.Client
	userRepo portsrepo.UserRepository
	tokens   portssvc.TokenSvcFacade
	logger   *slog.Logger
}

// NewAuthService creates the credential authentication service.
func NewAuthService(idpClient portsidp.Client, userRepo portsrepo.UserRepository, tokens portssvc.TokenSvcFacade, logger *slog.Logger) portssvc.AuthSvcFacade {
	return &authService{idp: idpClient, userRepo: userRepo, tokens: tokens, logger: logger}
}

func (s *authService) Register(ctx context.Context, req dto.RegisterRequest) (*dto.AuthResponse, error) {
	// The IdP is the system of record for credentials: create there first so
	// a rejection (username/email taken) leaves no local residue.
	subjectID, err := s.idp.CreateAccount(ctx, portsidp.NewAccount{
		Username:      req.Username,
		Email:         req.Email,
		Password:      req.Password,
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		EmailVerified: false,
	})
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := domain.User{
		UserID:        uuid.NewString(),
		KeycloakID:    subjectID,
		Username:      req.Username,
		Email:         req.Email,
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Provider:      domain.ProviderLocal,
		EmailVerified: false,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.userRepo.SaveUser(ctx, user); err != nil {
		// The IdP account exists but the local save failed; compensate by
		// deleting the IdP account so the registration can be retried. If the
		// compensation also fails the orphan is an operational cleanup
		// concern, logged and left behind.
		if delErr := s.idp.DeleteAccount(ctx, subjectID); delErr != nil {
			s.logger.Error("orphaned IdP account: local save and compensating delete both failed",
				slog.String("subject_id", subjectID),
				slog.String("username", req.Username),
				slog.String("save_error", err.Error()),
				slog.String("delete_error", delErr.Error()))
		}
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, apperrors.New(apperrors.KindDuplicate, "username or email already registered", err)
		}
		return nil, apperrors.New(apperrors.KindUnknown, "failed to persist identity", err)
	}

	s.logger.Info("identity registered",
		slog.String("user_id", user.UserID),
		slog.String("subject_id", subjectID),
		slog.String("username", req.Username))

	// Implicit login with the same credentials.
	resp, err := s.tokens.PasswordLogin(ctx, req.Username, req.Password)
	if err != nil {
		return nil, err
	}
	s.stampLastLogin(ctx, resp.UserID)
	return resp, nil
}

func (s *authService) Login(ctx context.Context, username, password string) (*dto.AuthResponse, error) {
	resp, err := s.tokens.PasswordLogin(ctx, username, password)
	if err != nil {
		return nil, err
	}
	s.stampLastLogin(ctx, resp.UserID)
	return resp, nil
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*dto.AuthResponse, error) {
	// Pure token exchange; the local store is read for the join but never written.
	return s.tokens.Refresh(ctx, refreshToken)
}

// stampLastLogin records login-time bookkeeping. Failures are logged, never
// surfaced: a successful authentication must not fail on bookkeeping.
func (s *authService) stampLastLogin(ctx context.Context, userID string) {
	if err := s.userRepo.UpdateLastLogin(ctx, userID, time.Now()); err != nil {
		s.logger.Warn("failed to stamp last login", slog.String("user_id", userID), slog.String("error", err.Error()))
	}
}
