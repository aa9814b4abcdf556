package dto

import (
	"time"

	"github.com/shikshaspace/user-service/internal/core/domain"
)

// UpdateProfileRequest defines the fields a user may change on their own
// profile. Pointers distinguish omitted fields from zero values; omitted
// fields are left untouched.
type UpdateProfileRequest struct {
	FirstName       *string  `json:"firstName"`
	LastName        *string  `json:"lastName"`
	MobileNumber    *string  `json:"mobileNumber"`
	ProfileImageURL *string  `json:"profileImageURL" binding:"omitempty,url"`
	Bio             *string  `json:"bio" binding:"omitempty,max=5000"`
	TechnologyTags  []string `json:"technologyTags"`
	ExperienceYears *int     `json:"experienceYears" binding:"omitempty,min=0,max=80"`
	Skills          []string `json:"skills"`
	Designation     *string  `json:"designation"`
	Company         *string  `json:"company"`
}

// UserProfileResponse is the caller-facing view of an identity.
type UserProfileResponse struct {
	UserID            string     `json:"userId"`
	Username          string     `json:"username"`
	Email             string     `json:"email"`
	FirstName         string     `json:"firstName"`
	LastName          string     `json:"lastName"`
	MobileNumber      *string    `json:"mobileNumber,omitempty"`
	ProfileImageURL   *string    `json:"profileImageURL,omitempty"`
	Bio               *string    `json:"bio,omitempty"`
	TechnologyTags    []string   `json:"technologyTags,omitempty"`
	ExperienceYears   *int       `json:"experienceYears,omitempty"`
	Skills            []string   `json:"skills,omitempty"`
	Designation       *string    `json:"designation,omitempty"`
	Company           *string    `json:"company,omitempty"`
	EmailVerified     bool       `json:"emailVerified"`
	IsActive          bool       `json:"isActive"`
	IsProfileComplete bool       `json:"isProfileComplete"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
	LastLoginAt       *time.Time `json:"lastLoginAt,omitempty"`
}

// ToUserProfileResponse converts a domain.User to its caller-facing view.
func ToUserProfileResponse(user *domain.User) UserProfileResponse {
	return UserProfileResponse{
		UserID:            user.UserID,
		Username:          user.Username,
		Email:             user.Email,
		FirstName:         user.FirstName,
		LastName:          user.LastName,
		MobileNumber:      user.MobileNumber,
		ProfileImageURL:   user.ProfileImageURL,
		Bio:               user.Bio,
		TechnologyTags:    user.TechnologyTags,
		ExperienceYears:   user.ExperienceYears,
		Skills:            user.Skills,
		Designation:       user.Designation,
		Company:           user.Company,
		EmailVerified:     user.EmailVerified,
		IsActive:          user.IsActive,
		IsProfileComplete: user.IsProfileComplete,
		CreatedAt:         user.CreatedAt,
		UpdatedAt:         user.UpdatedAt,
		LastLoginAt:       user.LastLoginAt,
	}
}
