package domain

// TokenPair is the opaque credential pair issued by the IdP's token endpoint.
// ExpiresIn is advisory, supplied by the IdP in seconds; the service never
// computes or inspects expiry itself.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
}

// VerifiedClaims is the typed result of validating a third-party identity
// token. Produced by the token-validation step, consumed everywhere else by
// field access.
type VerifiedClaims struct {
	Subject       string
	Email         string
	GivenName     string
	FamilyName    string
	EmailVerified bool
}

// ProviderProfile is the IdP's own representation of an account, as returned
// by the admin API.
type ProviderProfile struct {
	SubjectID        string
	Username         string
	Email            string
	FirstName        string
	LastName         string
	EmailVerified    bool
	Enabled          bool
	CreatedTimestamp int64
}
