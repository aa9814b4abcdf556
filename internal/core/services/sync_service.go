package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/shikshaspace/user-service/internal/apperrors"
	"github.com/shikshaspace/user-service/internal/core/domain"
	portsidp "github.com/shikshaspace/user-service/internal/core/ports/idp"
	portsrepo "github.com/shikshaspace/user-service/internal/core/ports/repositories"
	portssvc "github.com/shikshaspace/user-service/internal/core/ports/services"
	"github.com/shikshaspace/user-service/internal/metrics"
)

// syncService reconciles the IdP and the local store in one direction only:
// when the IdP has an account the store does not know, a local record is
// created from the IdP profile. It never deletes local records and never
// overwrites local edits with IdP data after the first sync.
type syncService struct {
	idp      portsidp.Client
	userRepo portsrepo.UserRepository
	logger   *slog.Logger
}

// NewSyncService creates the identity synchronization service.
func NewSyncService(idpClient portsidp.Client, userRepo portsrepo.UserRepository, logger *slog.Logger) portssvc.SyncSvcFacade {
	return &syncService{idp: idpClient, userRepo: userRepo, logger: logger}
}

func (s *syncService) EnsureLocalUser(ctx context.Context, keycloakID string) (*domain.User, error) {
	user, err := s.userRepo.FindUserByKeycloakID(ctx, keycloakID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up identity by subject id: %w", err)
	}

	s.logger.Info("local record missing for authenticated identity, syncing from IdP",
		slog.String("subject_id", keycloakID))

	profile, err := s.idp.GetAccount(ctx, keycloakID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	synced := domain.User{
		UserID:            uuid.NewString(),
		KeycloakID:        profile.SubjectID,
		Username:          profile.Username,
		Email:             profile.Email,
		FirstName:         profile.FirstName,
		LastName:          profile.LastName,
		Provider:          domain.ProviderLocal,
		EmailVerified:     profile.EmailVerified,
		IsActive:          true,
		IsProfileComplete: false,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.userRepo.SaveUser(ctx, synced); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			// Lost a race against a concurrent sync of the same identity; the
			// winner's record is the canonical one.
			return s.userRepo.FindUserByKeycloakID(ctx, keycloakID)
		}
		return nil, fmt.Errorf("failed to persist synced identity: %w", err)
	}

	metrics.RecordIdentitySync()
	s.logger.Info("identity synced from IdP",
		slog.String("user_id", synced.UserID),
		slog.String("subject_id", keycloakID),
		slog.String("username", synced.Username))
	return &synced, nil
}
