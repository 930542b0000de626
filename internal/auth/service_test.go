package auth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noctalia/sleepsense/internal/auth"
)

func TestService_TokenRoundTrip(t *testing.T) {
	service := auth.NewService("test-secret", time.Hour)

	token, err := service.GenerateToken(42, "alice")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := service.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, 42, claims.UserID)
	assert.Equal(t, "alice", claims.Username)
}

func TestService_RejectsTamperedToken(t *testing.T) {
	service := auth.NewService("test-secret", time.Hour)

	token, err := service.GenerateToken(1, "bob")
	require.NoError(t, err)

	_, err = service.ValidateToken(token + "x")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestService_RejectsForeignSecret(t *testing.T) {
	issuer := auth.NewService("secret-a", time.Hour)
	verifier := auth.NewService("secret-b", time.Hour)

	token, err := issuer.GenerateToken(1, "bob")
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestService_ExpiredToken(t *testing.T) {
	service := auth.NewService("test-secret", time.Millisecond)

	token, err := service.GenerateToken(1, "bob")
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)

	_, err = service.ValidateToken(token)
	assert.ErrorIs(t, err, auth.ErrExpiredToken)
}

func TestService_RejectsGarbage(t *testing.T) {
	service := auth.NewService("test-secret", time.Hour)

	_, err := service.ValidateToken("not.a.jwt")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := auth.HashPassword("Sup3rSecret")
	require.NoError(t, err)
	assert.NotEqual(t, "Sup3rSecret", hash)

	assert.True(t, auth.CheckPassword("Sup3rSecret", hash))
	assert.False(t, auth.CheckPassword("WrongPassword1", hash))
	assert.False(t, auth.CheckPassword("Sup3rSecret", "not-a-hash"))
}
