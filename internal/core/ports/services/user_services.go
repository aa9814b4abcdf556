package services

import (
	"context"

	"github.com/shikshaspace/user-service/internal/core/domain"
	"github.com/shikshaspace/user-service/internal/dto"
)

// UserReaderSvc defines read operations for the authenticated user's profile.
type UserReaderSvc interface {
	// GetProfile returns the local identity for the IdP subject id, creating
	// it via sync when the local lookup misses. Stamps last-login bookkeeping.
	GetProfile(ctx context.Context, keycloakID string) (*domain.User, error)

	// GetUserByID retrieves a user by local identifier.
	GetUserByID(ctx context.Context, userID string) (*domain.User, error)
}

// UserWriterSvc defines write operations for the authenticated user's profile.
type UserWriterSvc interface {
	// UpdateProfile applies the provided profile fields and marks the profile
	// complete once the identifying fields are filled in.
	UpdateProfile(ctx context.Context, keycloakID string, req dto.UpdateProfileRequest) (*domain.User, error)
}

// UserLifecycleSvc defines identity lifecycle operations.
type UserLifecycleSvc interface {
	// DeleteUser removes the identity in two phases: IdP account first, local
	// record second. Local deletion does not proceed if IdP deletion fails.
	DeleteUser(ctx context.Context, keycloakID string) error
}

// UserSvcFacade combines the user-profile service interfaces.
type UserSvcFacade interface {
	UserReaderSvc
	UserWriterSvc
	UserLifecycleSvc
}
