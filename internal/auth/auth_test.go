package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/geoforest/billing/internal/config"
	ierr "github.com/geoforest/billing/internal/errors"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jwtConfig(secret string) *config.Configuration {
	cfg := config.GetDefaultConfig()
	cfg.Auth.Secret = secret
	return cfg
}

func TestJWTAuth_ValidateToken(t *testing.T) {
	ctx := context.Background()
	provider := NewJWTAuth(jwtConfig("s3cret"))

	t.Run("valid token", func(t *testing.T) {
		token, err := GenerateToken("s3cret", "uid-1", "a@b.com", time.Hour)
		require.NoError(t, err)

		claims, err := provider.ValidateToken(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, "uid-1", claims.UserID)
		assert.Equal(t, "a@b.com", claims.Email)
	})

	t.Run("wrong secret", func(t *testing.T) {
		token, err := GenerateToken("other", "uid-1", "", time.Hour)
		require.NoError(t, err)

		_, err = provider.ValidateToken(ctx, token)
		assert.True(t, ierr.IsUnauthenticated(err))
	})

	t.Run("expired", func(t *testing.T) {
		token, err := GenerateToken("s3cret", "uid-1", "", -time.Minute)
		require.NoError(t, err)

		_, err = provider.ValidateToken(ctx, token)
		assert.True(t, ierr.IsUnauthenticated(err))
	})

	t.Run("sub claim accepted", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub": "uid-2",
			"exp": time.Now().Add(time.Hour).Unix(),
		}).SignedString([]byte("s3cret"))
		require.NoError(t, err)

		claims, err := provider.ValidateToken(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, "uid-2", claims.UserID)
	})

	t.Run("missing user", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"exp": time.Now().Add(time.Hour).Unix(),
		}).SignedString([]byte("s3cret"))
		require.NoError(t, err)

		_, err = provider.ValidateToken(ctx, token)
		assert.True(t, ierr.IsUnauthenticated(err))
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := provider.ValidateToken(ctx, "not-a-token")
		assert.True(t, ierr.IsUnauthenticated(err))
	})
}

type stubVerifier struct {
	token *fbauth.Token
	err   error
}

func (s *stubVerifier) VerifyIDToken(_ context.Context, _ string) (*fbauth.Token, error) {
	return s.token, s.err
}

func TestFirebaseAuth_ValidateToken(t *testing.T) {
	ctx := context.Background()

	t.Run("verified", func(t *testing.T) {
		provider := NewFirebaseAuth(&stubVerifier{token: &fbauth.Token{
			UID:    "uid-1",
			Claims: map[string]interface{}{"email": "a@b.com"},
		}})

		claims, err := provider.ValidateToken(ctx, "tok")
		require.NoError(t, err)
		assert.Equal(t, "uid-1", claims.UserID)
		assert.Equal(t, "a@b.com", claims.Email)
	})

	t.Run("rejected", func(t *testing.T) {
		provider := NewFirebaseAuth(&stubVerifier{err: errors.New("ID token has expired")})

		_, err := provider.ValidateToken(ctx, "tok")
		assert.True(t, ierr.IsUnauthenticated(err))
	})
}

func TestValidateTriggerKey(t *testing.T) {
	cfg := config.GetDefaultConfig()
	cfg.Auth.TriggerKeys = map[string]config.TriggerKeyDetails{
		HashAPIKey("active-key"):  {Name: "identity-trigger", IsActive: true},
		HashAPIKey("revoked-key"): {Name: "old", IsActive: false},
	}

	name, ok := ValidateTriggerKey(cfg, "active-key")
	assert.True(t, ok)
	assert.Equal(t, "identity-trigger", name)

	_, ok = ValidateTriggerKey(cfg, "revoked-key")
	assert.False(t, ok)

	_, ok = ValidateTriggerKey(cfg, "unknown")
	assert.False(t, ok)

	_, ok = ValidateTriggerKey(cfg, "")
	assert.False(t, ok)
}

func TestGenerateAPIKey(t *testing.T) {
	a := GenerateAPIKey()
	b := GenerateAPIKey()
	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)
}
