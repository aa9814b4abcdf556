package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shikshaspace/user-service/internal/apperrors"
	"github.com/shikshaspace/user-service/internal/core/domain"
	portsidp "github.com/shikshaspace/user-service/internal/core/ports/idp"
	portsrepo "github.com/shikshaspace/user-service/internal/core/ports/repositories"
	portssvc "github.com/shikshaspace/user-service/internal/core/ports/services"
	"github.com/shikshaspace/user-service/internal/dto"
)

// userService manages the authenticated user's profile. Lookups key on the
// IdP subject identifier carried by the verified access token; a local miss
// triggers a one-directional sync from the IdP.
type userService struct {
	userRepo portsrepo.UserRepository
	sync     portssvc.SyncSvcFacade
	idp      portsidp.Client
	logger   *slog.Logger
}

// NewUserService creates the profile service.
func NewUserService(userRepo portsrepo.UserRepository, syncSvc portssvc.SyncSvcFacade, idpClient portsidp.Client, logger *slog.Logger) portssvc.UserSvcFacade {
	return &userService{userRepo: userRepo, sync: syncSvc, idp: idpClient, logger: logger}
}

func (s *userService) GetProfile(ctx context.Context, keycloakID string) (*domain.User, error) {
	user, err := s.sync.EnsureLocalUser(ctx, keycloakID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if err := s.userRepo.UpdateLastLogin(ctx, user.UserID, now); err != nil {
		s.logger.Warn("failed to stamp last login on profile read",
			slog.String("user_id", user.UserID), slog.String("error", err.Error()))
	} else {
		user.LastLoginAt = &now
	}
	return user, nil
}

func (s *userService) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.New(apperrors.KindNotFound, "user not found", err)
		}
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}
	return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, keycloakID string, req dto.UpdateProfileRequest) (*domain.User, error) {
	user, err := s.sync.EnsureLocalUser(ctx, keycloakID)
	if err != nil {
		return nil, err
	}

	applyProfileUpdate(user, req)
	user.IsProfileComplete = isProfileComplete(user)
	user.UpdatedAt = time.Now()

	if err := s.userRepo.UpdateUser(ctx, *user); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	s.logger.Info("profile updated", slog.String("user_id", user.UserID))
	return user, nil
}

// DeleteUser removes an identity in two phases: the IdP account first, the
// local record second. If IdP deletion fails the local record stays, so the
// two sources of truth never disagree in the dangerous direction.
func (s *userService) DeleteUser(ctx context.Context, keycloakID string) error {
	user, err := s.userRepo.FindUserByKeycloakID(ctx, keycloakID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.New(apperrors.KindNotFound, "user not found", err)
		}
		return fmt.Errorf("failed to look up user for deletion: %w", err)
	}

	if err := s.idp.DeleteAccount(ctx, user.KeycloakID); err != nil {
		// An already-deleted IdP account is drift, not a blocker: finishing
		// the local deletion repairs it.
		if apperrors.KindOf(err) != apperrors.KindNotFound {
			return err
		}
		s.logger.Warn("IdP account already absent during deletion, removing local record",
			slog.String("subject_id", user.KeycloakID))
	}

	if err := s.userRepo.DeleteUser(ctx, user.UserID); err != nil {
		return fmt.Errorf("failed to delete local user record: %w", err)
	}

	s.logger.Info("identity deleted",
		slog.String("user_id", user.UserID),
		slog.String("subject_id", user.KeycloakID))
	return nil
}

func applyProfileUpdate(user *domain.User, req dto.UpdateProfileRequest) {
	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.MobileNumber != nil {
		user.MobileNumber = req.MobileNumber
	}
	if req.ProfileImageURL != nil {
		user.ProfileImageURL = req.ProfileImageURL
	}
	if req.Bio != nil {
		user.Bio = req.Bio
	}
	if req.TechnologyTags != nil {
		user.TechnologyTags = req.TechnologyTags
	}
	if req.ExperienceYears != nil {
		user.ExperienceYears = req.ExperienceYears
	}
	if req.Skills != nil {
		user.Skills = req.Skills
	}
	if req.Designation != nil {
		user.Designation = req.Designation
	}
	if req.Company != nil {
		user.Company = req.Company
	}
}

// isProfileComplete reports whether the member-facing profile sections are
// all filled in.
func isProfileComplete(user *domain.User) bool {
	return user.FirstName != "" &&
		user.LastName != "" &&
		user.Bio != nil && *user.Bio != "" &&
		user.Designation != nil && *user.Designation != "" &&
		len(user.Skills) > 0
}
