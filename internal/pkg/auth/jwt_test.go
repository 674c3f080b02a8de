// internal/pkg/auth/jwt_test.go
package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront/internal/config"
)

func newTestManager(t *testing.T) *JWTManager {
	t.Helper()

	cfg := &config.Config{}
	cfg.App.Name = "storefront-test"
	cfg.JWT.Secret = "test-secret-key-that-is-long-enough-0123"
	cfg.JWT.AccessTokenExpiry = time.Hour
	cfg.JWT.RefreshTokenExpiry = 24 * time.Hour

	return NewJWTManager(cfg)
}

func TestAccessTokenRoundTrip(t *testing.T) {
	mgr := newTestManager(t)

	token, err := mgr.GenerateAccessToken("user-1", "a@b.com", "admin")
	require.NoError(t, err)

	claims, err := mgr.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "a@b.com", claims.Email)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "access", claims.TokenType)
}

func TestTokenTypeIsEnforced(t *testing.T) {
	mgr := newTestManager(t)

	access, err := mgr.GenerateAccessToken("user-1", "a@b.com", "user")
	require.NoError(t, err)
	refresh, err := mgr.GenerateRefreshToken("user-1", "a@b.com")
	require.NoError(t, err)

	_, err = mgr.ValidateRefreshToken(access)
	assert.Error(t, err)

	_, err = mgr.ValidateAccessToken(refresh)
	assert.Error(t, err)

	claims, err := mgr.ValidateRefreshToken(refresh)
	require.NoError(t, err)
	assert.Empty(t, claims.Role)
}

func TestValidateRejectsTamperedToken(t *testing.T) {
	mgr := newTestManager(t)

	token, err := mgr.GenerateAccessToken("user-1", "a@b.com", "user")
	require.NoError(t, err)

	_, err = mgr.ValidateAccessToken(token + "x")
	assert.Error(t, err)
}

func TestExtractTokenFromHeader(t *testing.T) {
	assert.Equal(t, "abc", ExtractTokenFromHeader("Bearer abc"))
	assert.Equal(t, "", ExtractTokenFromHeader("abc"))
	assert.Equal(t, "", ExtractTokenFromHeader(""))
	assert.Equal(t, "", ExtractTokenFromHeader("Bearer "))
}
