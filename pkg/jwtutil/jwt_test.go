package jwtutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate(t *testing.T) {
	j := NewJWTUtil("secret", 1)

	token, err := j.GenerateToken("budi@example.com", "7", "Budi")
	require.NoError(t, err)

	claims, err := j.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "budi@example.com", claims.Email)
	assert.Equal(t, "7", claims.UserID)
	assert.Equal(t, "Budi", claims.Name)

	_, err = NewJWTUtil("other", 1).ValidateToken(token)
	assert.Error(t, err)
}

func TestGenerateTokenWithoutKey(t *testing.T) {
	_, err := NewJWTUtil("", 1).GenerateToken("a@b.c", "1", "a")
	assert.Error(t, err)
}

func TestExpired(t *testing.T) {
	j := NewJWTUtil("secret", 1)
	issued := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	j.now = func() time.Time { return issued }

	token, err := j.GenerateToken("a@b.c", "1", "a")
	require.NoError(t, err)

	exp, ok := ExpiresAt(token)
	require.True(t, ok)
	assert.True(t, exp.Equal(issued.Add(time.Hour)))

	assert.False(t, Expired(token, issued.Add(30*time.Minute)))
	assert.True(t, Expired(token, issued.Add(2*time.Hour)))

	t.Run("opaque tokens never expire", func(t *testing.T) {
		assert.False(t, Expired("12|laravelsanctumtoken", issued.Add(1000*time.Hour)))
		_, ok := ExpiresAt("not.a.jwt")
		assert.False(t, ok)
	})
}
