package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTManager(t *testing.T) {
	t.Run("TestRoundTrip", func(t *testing.T) {
		m := NewJWTManager("secret", time.Hour)

		token, err := m.GenerateJWT("64b7f0c2a1b2c3d4e5f60718", "student")
		require.NoError(t, err)

		claims, err := m.ParseJWT(token)
		require.NoError(t, err)
		assert.Equal(t, "64b7f0c2a1b2c3d4e5f60718", claims.ID)
		assert.Equal(t, "student", claims.Role)
	})

	t.Run("TestWrongSecret", func(t *testing.T) {
		token, err := NewJWTManager("secret", time.Hour).GenerateJWT("id", "admin")
		require.NoError(t, err)

		_, err = NewJWTManager("other", time.Hour).ParseJWT(token)
		assert.Error(t, err)
	})

	t.Run("TestExpired", func(t *testing.T) {
		m := NewJWTManager("secret", time.Minute)
		issued := time.Now().Add(-time.Hour)
		m.now = func() time.Time { return issued }

		token, err := m.GenerateJWT("id", "faculty")
		require.NoError(t, err)

		m.now = time.Now
		_, err = m.ParseJWT(token)
		assert.Error(t, err)
	})

	t.Run("TestEmpty", func(t *testing.T) {
		_, err := NewJWTManager("secret", time.Hour).ParseJWT("")
		assert.Error(t, err)
	})
}
