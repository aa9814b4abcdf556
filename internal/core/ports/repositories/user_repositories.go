package repositories

import (
	"context"
	"time"

	"github.com/shikshaspace/user-service/internal/core/domain"
)

// UserRepository is the persistence contract for the local identity record.
// Implementations return apperrors.ErrNotFound when a lookup misses and
// apperrors.ErrDuplicate on a username/email uniqueness violation.
type UserRepository interface {
	// SaveUser inserts a new identity record.
	SaveUser(ctx context.Context, user domain.User) error

	// UpdateUser persists profile and bookkeeping mutations for an existing record.
	UpdateUser(ctx context.Context, user domain.User) error

	// FindUserByID retrieves a user by local identifier.
	FindUserByID(ctx context.Context, userID string) (*domain.User, error)

	// FindUserByUsername retrieves a user by username.
	FindUserByUsername(ctx context.Context, username string) (*domain.User, error)

	// FindUserByEmail retrieves a user by email.
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)

	// FindUserByKeycloakID retrieves a user by the IdP subject identifier.
	FindUserByKeycloakID(ctx context.Context, keycloakID string) (*domain.User, error)

	// ExistsByUsername reports whether a user with the username exists.
	ExistsByUsername(ctx context.Context, username string) (bool, error)

	// ExistsByEmail reports whether a user with the email exists.
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// UpdateLastLogin stamps login-time bookkeeping without touching profile fields.
	UpdateLastLogin(ctx context.Context, userID string, at time.Time) error

	// DeleteUser removes the local record. Callers must have deleted the
	// IdP-side account first; local deletion never precedes IdP deletion.
	DeleteUser(ctx context.Context, userID string) error
}

// RepositoryProvider bundles the repository implementations handed to the
// service container.
type RepositoryProvider struct {
	UserRepo UserRepository
}
