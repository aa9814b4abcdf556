package domain

import "time"

// AuthProvider identifies how an identity first authenticated.
type AuthProvider string

const (
	ProviderLocal  AuthProvider = "LOCAL"
	ProviderGoogle AuthProvider = "GOOGLE"
)

// User is the canonical local identity record. It mirrors the IdP's copy of
// the identity: KeycloakID is the IdP subject identifier, stable for the
// account's lifetime; UserID is the local identifier assigned at creation.
// Username and email are each unique across all users.
type User struct {
	UserID     string       `json:"userID"`
	KeycloakID string       `json:"keycloakID"`
	Username   string       `json:"username"`
	Email      string       `json:"email"`
	FirstName  string       `json:"firstName"`
	LastName   string       `json:"lastName"`
	Provider   AuthProvider `json:"provider"`

	// Profile attributes, editable only through profile updates. Sync never
	// overwrites these after the record exists.
	MobileNumber    *string  `json:"mobileNumber,omitempty"`
	ProfileImageURL *string  `json:"profileImageURL,omitempty"`
	Bio             *string  `json:"bio,omitempty"`
	TechnologyTags  []string `json:"technologyTags,omitempty"`
	ExperienceYears *int     `json:"experienceYears,omitempty"`
	Skills          []string `json:"skills,omitempty"`
	Designation     *string  `json:"designation,omitempty"`
	Company         *string  `json:"company,omitempty"`

	EmailVerified     bool `json:"emailVerified"`
	IsActive          bool `json:"isActive"`
	IsProfileComplete bool `json:"isProfileComplete"`

	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
}
