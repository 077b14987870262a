package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/code-gritt/klientel/pkg/cache"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateJWT(t *testing.T) {
	secret := "test-secret"

	token, err := GenerateJWT(42, "user@test.com", secret, 24)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateJWT(token, secret)
	require.NoError(t, err)
	assert.Equal(t, 42, claims.UserID)
	assert.Equal(t, "user@test.com", claims.Email)
	assert.True(t, claims.ExpiresAt.After(time.Now()))
}

func TestValidateJWT_WrongSecret(t *testing.T) {
	token, err := GenerateJWT(1, "user@test.com", "secret-a", 24)
	require.NoError(t, err)

	_, err = ValidateJWT(token, "secret-b")
	assert.Error(t, err)
}

func TestValidateJWT_Garbage(t *testing.T) {
	_, err := ValidateJWT("not-a-token", "secret")
	assert.Error(t, err)
}

func TestValidateJWTWithBlacklist(t *testing.T) {
	mr := miniredis.RunT(t)
	client := &cache.Client{Redis: redis.NewClient(&redis.Options{Addr: mr.Addr()})}
	blacklist := NewTokenBlacklist(client)

	secret := "test-secret"
	token, err := GenerateJWT(7, "user@test.com", secret, 1)
	require.NoError(t, err)

	ctx := context.Background()

	// Token valid before revocation
	claims, err := ValidateJWTWithBlacklist(ctx, token, secret, blacklist)
	require.NoError(t, err)
	assert.Equal(t, 7, claims.UserID)

	// Revoke and validate again
	require.NoError(t, blacklist.Add(ctx, token, time.Hour))

	_, err = ValidateJWTWithBlacklist(ctx, token, secret, blacklist)
	assert.ErrorContains(t, err, "revoked")
}
