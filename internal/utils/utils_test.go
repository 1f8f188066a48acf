package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", hash)
	assert.True(t, CheckPasswordHash("correct horse", hash))
	assert.False(t, CheckPasswordHash("battery staple", hash))
}

func TestIssueToken_RoundTrip(t *testing.T) {
	secret := []byte("test-secret")
	id := uuid.New()
	now := time.Now()

	signed, exp, err := IssueToken(secret, id, "a@example.com", time.Hour, now)
	require.NoError(t, err)
	assert.WithinDuration(t, now.Add(time.Hour), exp, time.Second)

	parsed, err := jwt.Parse(signed, func(*jwt.Token) (any, error) { return secret, nil },
		jwt.WithValidMethods([]string{"HS256"}))
	require.NoError(t, err)

	got, err := UserIDFromToken(parsed)
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestIssueToken_EmptySecret(t *testing.T) {
	_, _, err := IssueToken(nil, uuid.New(), "", time.Hour, time.Now())
	assert.Error(t, err)
}

func TestIssueToken_Expired(t *testing.T) {
	secret := []byte("test-secret")
	signed, _, err := IssueToken(secret, uuid.New(), "", time.Minute, time.Now().Add(-time.Hour))
	require.NoError(t, err)

	_, err = jwt.Parse(signed, func(*jwt.Token) (any, error) { return secret, nil })
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}
