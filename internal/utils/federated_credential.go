package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

// Federated identities still authenticate through the IdP's password grant,
// so each one carries a synthetic credential the user never sees. First-time
// sign-ins use a random one-time secret; returning sign-ins use a credential
// derived deterministically from the IdP subject identifier, so repeat logins
// need no per-session state and no stored plaintext.

const federatedKeyIterations = 4096

// DeriveFederatedPassword reconstructs the deterministic credential for a
// federated identity. The same (subjectID, secretKey) pair always yields the
// same value; without the service secret the credential is not guessable.
func DeriveFederatedPassword(subjectID, secretKey string) string {
	key := pbkdf2.Key([]byte(secretKey), []byte(subjectID), federatedKeyIterations, 32, sha256.New)
	return "OAUTH_" + hex.EncodeToString(key)
}

// GenerateOneTimeFederatedPassword returns the random secret used to bridge a
// first-time federated identity into the IdP. It is exchanged for a token
// immediately after account creation and then discarded.
func GenerateOneTimeFederatedPassword() (string, error) {
	s, err := GenerateSecureRandomString(24)
	if err != nil {
		return "", fmt.Errorf("failed to generate one-time federated secret: %w", err)
	}
	return "GOOGLE_OAUTH_" + s, nil
}
