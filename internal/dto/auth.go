package dto

// RegisterRequest is the payload for credential registration.
type RegisterRequest struct {
	Username  string `json:"username" binding:"required,min=3,max=50,username"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
}

// LoginRequest is the payload for credential login.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RefreshTokenRequest carries the refresh token to exchange.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// GoogleSignInRequest carries the Google-issued ID token from the frontend.
type GoogleSignInRequest struct {
	IDToken string `json:"idToken" binding:"required"`
}

// AuthResponse is the token bundle returned to the caller after any
// successful authentication path. ExpiresIn is seconds, as advised by the IdP.
type AuthResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"`
	UserID       string `json:"userId"`
	Username     string `json:"username"`
	Email        string `json:"email"`
}
