package utils_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shikshaspace/user-service/internal/utils"
)

func TestDeriveFederatedPassword_Deterministic(t *testing.T) {
	a := utils.DeriveFederatedPassword("kc-sub-1", "secret-key")
	b := utils.DeriveFederatedPassword("kc-sub-1", "secret-key")
	assert.Equal(t, a, b, "same subject and key must derive the same credential")
}

func TestDeriveFederatedPassword_VariesBySubjectAndKey(t *testing.T) {
	base := utils.DeriveFederatedPassword("kc-sub-1", "secret-key")
	otherSubject := utils.DeriveFederatedPassword("kc-sub-2", "secret-key")
	otherKey := utils.DeriveFederatedPassword("kc-sub-1", "different-key")

	assert.NotEqual(t, base, otherSubject)
	assert.NotEqual(t, base, otherKey)
}

func TestDeriveFederatedPassword_Format(t *testing.T) {
	got := utils.DeriveFederatedPassword("kc-sub-1", "secret-key")
	assert.True(t, strings.HasPrefix(got, "OAUTH_"))
	// 32 derived bytes, hex encoded.
	assert.Len(t, strings.TrimPrefix(got, "OAUTH_"), 64)
}

func TestGenerateOneTimeFederatedPassword(t *testing.T) {
	a, err := utils.GenerateOneTimeFederatedPassword()
	require.NoError(t, err)
	b, err := utils.GenerateOneTimeFederatedPassword()
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(a, "GOOGLE_OAUTH_"))
	assert.NotEqual(t, a, b, "one-time secrets must not repeat")
}

func TestGenerateSecureRandomString(t *testing.T) {
	s, err := utils.GenerateSecureRandomString(16)
	require.NoError(t, err)
	assert.Len(t, s, 32)

	_, err = utils.GenerateSecureRandomString(0)
	assert.Error(t, err)
}
