package models

import "time"

// User is the database representation of an identity record, mapped 1:1 to
// the users table.
type User struct {
	UserID            string     `db:"user_id"`
	KeycloakID        string     `db:"keycloak_id"`
	Username          string     `db:"username"`
	Email             string     `db:"email"`
	FirstName         string     `db:"first_name"`
	LastName          string     `db:"last_name"`
	Provider          string     `db:"provider"`
	MobileNumber      *string    `db:"mobile_number"`
	ProfileImageURL   *string    `db:"profile_image_url"`
	Bio               *string    `db:"bio"`
	TechnologyTags    []string   `db:"technology_tags"`
	ExperienceYears   *int       `db:"experience_years"`
	Skills            []string   `db:"skills"`
	Designation       *string    `db:"designation"`
	Company           *string    `db:"company"`
	EmailVerified     bool       `db:"email_verified"`
	IsActive          bool       `db:"is_active"`
	IsProfileComplete bool       `db:"is_profile_complete"`
	CreatedAt         time.Time  `db:"created_at"`
	UpdatedAt         time.Time  `db:"updated_at"`
	LastLoginAt       *time.Time `db:"last_login_at"`
}
