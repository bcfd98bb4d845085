package utils_test

import (
	"testing"

	"github.com/alexarts74/trip-indo/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenPairRoundTrip(t *testing.T) {
	svc := utils.NewJWTService("test-secret-key")

	access, refresh, expiresIn, err := svc.GenerateTokenPair("user-1", "alice@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, access)
	require.NotEmpty(t, refresh)
	assert.Greater(t, expiresIn, int64(0))

	claims, err := svc.ValidateToken(access)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.Equal(t, "access", claims.Type)

	refreshClaims, err := svc.ValidateRefreshToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, "refresh", refreshClaims.Type)

	// access token 不能当refresh token用
	_, err = svc.ValidateRefreshToken(access)
	assert.Error(t, err)
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	access, _, _, err := utils.NewJWTService("secret-a").GenerateTokenPair("user-1", "a@example.com")
	require.NoError(t, err)

	_, err = utils.NewJWTService("secret-b").ValidateToken(access)
	assert.Error(t, err)

	_, err = utils.NewJWTService("secret-a").ValidateToken("garbage")
	assert.Error(t, err)
}

func TestRefreshAccessToken(t *testing.T) {
	svc := utils.NewJWTService("test-secret-key")

	_, refresh, _, err := svc.GenerateTokenPair("user-1", "alice@example.com")
	require.NoError(t, err)

	newAccess, expiresIn, err := svc.RefreshAccessToken(refresh)
	require.NoError(t, err)
	assert.Greater(t, expiresIn, int64(0))

	claims, err := svc.ValidateToken(newAccess)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := utils.HashPassword("correct-horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct-horse", hash)

	assert.True(t, utils.CheckPassword(hash, "correct-horse"))
	assert.False(t, utils.CheckPassword(hash, "wrong-horse"))
}

func TestValidatePassword(t *testing.T) {
	assert.NoError(t, utils.ValidatePassword("long-enough"))
	assert.Error(t, utils.ValidatePassword("short"))
	assert.Error(t, utils.ValidatePassword("  padded-pass  "))
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "alice@example.com", utils.NormalizeEmail("  Alice@Example.COM "))
	assert.Equal(t, "", utils.NormalizeEmail("   "))
}
