package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shikshaspace/user-service/internal/apperrors"
	"github.com/shikshaspace/user-service/internal/core/domain"
	portsrepo "github.com/shikshaspace/user-service/internal/core/ports/repositories"
	"github.com/shikshaspace/user-service/internal/models"
)

const uniqueViolationCode = "23505"

type PgxUserRepository struct {
	db *pgxpool.Pool
}

func newPgxUserRepository(db *pgxpool.Pool) portsrepo.UserRepository {
	return &PgxUserRepository{db: db}
}

// Ensure PgxUserRepository implements portsrepo.UserRepository
var _ portsrepo.UserRepository = (*PgxUserRepository)(nil)

// Helper to convert domain.User to models.User
func toModelUser(d domain.User) models.User {
	return models.User{
		UserID:            d.UserID,
		KeycloakID:        d.KeycloakID,
		Username:          d.Username,
		Email:             d.Email,
		FirstName:         d.FirstName,
		LastName:          d.LastName,
		Provider:          string(d.Provider),
		MobileNumber:      d.MobileNumber,
		ProfileImageURL:   d.ProfileImageURL,
		Bio:               d.Bio,
		TechnologyTags:    d.TechnologyTags,
		ExperienceYears:   d.ExperienceYears,
		Skills:            d.Skills,
		Designation:       d.Designation,
		Company:           d.Company,
		EmailVerified:     d.EmailVerified,
		IsActive:          d.IsActive,
		IsProfileComplete: d.IsProfileComplete,
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
		LastLoginAt:       d.LastLoginAt,
	}
}

// Helper to convert models.User to domain.User
func toDomainUser(m models.User) domain.User {
	return domain.User{
		UserID:            m.UserID,
		KeycloakID:        m.KeycloakID,
		Username:          m.Username,
		Email:             m.Email,
		FirstName:         m.FirstName,
		LastName:          m.LastName,
		Provider:          domain.AuthProvider(m.Provider),
		MobileNumber:      m.MobileNumber,
		ProfileImageURL:   m.ProfileImageURL,
		Bio:               m.Bio,
		TechnologyTags:    m.TechnologyTags,
		ExperienceYears:   m.ExperienceYears,
		Skills:            m.Skills,
		Designation:       m.Designation,
		Company:           m.Company,
		EmailVerified:     m.EmailVerified,
		IsActive:          m.IsActive,
		IsProfileComplete: m.IsProfileComplete,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
		LastLoginAt:       m.LastLoginAt,
	}
}

const userColumns = `
	user_id, keycloak_id, username, email, first_name, last_name, provider,
	mobile_number, profile_image_url, bio, technology_tags, experience_years,
	skills, designation, company, email_verified, is_active,
	is_profile_complete, created_at, updated_at, last_login_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var m models.User
	err := row.Scan(
		&m.UserID,
		&m.KeycloakID,
		&m.Username,
		&m.Email,
		&m.FirstName,
		&m.LastName,
		&m.Provider,
		&m.MobileNumber,
		&m.ProfileImageURL,
		&m.Bio,
		&m.TechnologyTags,
		&m.ExperienceYears,
		&m.Skills,
		&m.Designation,
		&m.Company,
		&m.EmailVerified,
		&m.IsActive,
		&m.IsProfileComplete,
		&m.CreatedAt,
		&m.UpdatedAt,
		&m.LastLoginAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *PgxUserRepository) SaveUser(ctx context.Context, user domain.User) error {
	m := toModelUser(user)
	query := `
        INSERT INTO users (` + userColumns + `)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21);
    `
	_, err := r.db.Exec(ctx, query,
		m.UserID, m.KeycloakID, m.Username, m.Email, m.FirstName, m.LastName,
		m.Provider, m.MobileNumber, m.ProfileImageURL, m.Bio, m.TechnologyTags,
		m.ExperienceYears, m.Skills, m.Designation, m.Company, m.EmailVerified,
		m.IsActive, m.IsProfileComplete, m.CreatedAt, m.UpdatedAt, m.LastLoginAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("user with same username, email, or subject id exists: %w", apperrors.ErrDuplicate)
		}
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}

func (r *PgxUserRepository) UpdateUser(ctx context.Context, user domain.User) error {
	m := toModelUser(user)
	query := `
        UPDATE users
        SET first_name = $1, last_name = $2, mobile_number = $3,
            profile_image_url = $4, bio = $5, technology_tags = $6,
            experience_years = $7, skills = $8, designation = $9, company = $10,
            email_verified = $11, is_active = $12, is_profile_complete = $13,
            updated_at = $14
        WHERE user_id = $15;
    `
	cmdTag, err := r.db.Exec(ctx, query,
		m.FirstName, m.LastName, m.MobileNumber, m.ProfileImageURL, m.Bio,
		m.TechnologyTags, m.ExperienceYears, m.Skills, m.Designation, m.Company,
		m.EmailVerified, m.IsActive, m.IsProfileComplete, m.UpdatedAt, m.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to execute update user query: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("user not found: %w", apperrors.ErrNotFound)
	}
	return nil
}

func (r *PgxUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	return r.findOne(ctx, "user_id", userID)
}

func (r *PgxUserRepository) FindUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.findOne(ctx, "username", username)
}

func (r *PgxUserRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, "email", email)
}

func (r *PgxUserRepository) FindUserByKeycloakID(ctx context.Context, keycloakID string) (*domain.User, error) {
	return r.findOne(ctx, "keycloak_id", keycloakID)
}

func (r *PgxUserRepository) findOne(ctx context.Context, column, value string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + column + ` = $1;`
	m, err := scanUser(r.db.QueryRow(ctx, query, value))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user by %s: %w", column, err)
	}
	d := toDomainUser(*m)
	return &d, nil
}

func (r *PgxUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, "username", username)
}

func (r *PgxUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, "email", email)
}

func (r *PgxUserRepository) exists(ctx context.Context, column, value string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE ` + column + ` = $1);`
	var exists bool
	if err := r.db.QueryRow(ctx, query, value).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check user existence by %s: %w", column, err)
	}
	return exists, nil
}

func (r *PgxUserRepository) UpdateLastLogin(ctx context.Context, userID string, at time.Time) error {
	query := `UPDATE users SET last_login_at = $1 WHERE user_id = $2;`
	cmdTag, err := r.db.Exec(ctx, query, at, userID)
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("user not found: %w", apperrors.ErrNotFound)
	}
	return nil
}

func (r *PgxUserRepository) DeleteUser(ctx context.Context, userID string) error {
	query := `DELETE FROM users WHERE user_id = $1;`
	cmdTag, err := r.db.Exec(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("user not found: %w", apperrors.ErrNotFound)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}
