package utils

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	svc := NewJWTService("test-secret")
	userID := uuid.New().String()

	token, err := svc.GenerateToken(userID)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	extracted, err := svc.ExtractUserID(token)
	require.NoError(t, err)
	assert.Equal(t, userID, extracted)
}

func TestJWTWrongSecret(t *testing.T) {
	token, err := NewJWTService("secret-a").GenerateToken(uuid.New().String())
	require.NoError(t, err)

	_, err = NewJWTService("secret-b").ExtractUserID(token)
	assert.Error(t, err)
}

func TestJWTGarbageToken(t *testing.T) {
	_, err := NewJWTService("test-secret").ExtractUserID("not.a.token")
	assert.Error(t, err)
}
