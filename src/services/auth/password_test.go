package auth

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHasher(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	t.Run("TestHashIfChanged", func(t *testing.T) {
		hash, changed, err := h.HashIfChanged("", "P1")
		require.NoError(t, err)
		assert.True(t, changed)
		assert.True(t, IsHashed(hash))
		assert.True(t, h.Verify("P1", hash))

		same, changed, err := h.HashIfChanged(hash, "")
		require.NoError(t, err)
		assert.False(t, changed)
		assert.Equal(t, hash, same)

		same, changed, err = h.HashIfChanged(hash, hash)
		require.NoError(t, err)
		assert.False(t, changed)
		assert.Equal(t, hash, same)
	})

	t.Run("TestVerifyFailsClosed", func(t *testing.T) {
		hash, err := h.Hash("P1")
		require.NoError(t, err)

		assert.False(t, h.Verify("P2", hash))
		assert.False(t, h.Verify("P1", ""))
		assert.False(t, h.Verify("P1", "P1"))
		assert.False(t, h.Verify("P1", "$2a$10$truncated"))
	})

	t.Run("TestCostFallback", func(t *testing.T) {
		assert.Equal(t, bcrypt.DefaultCost, NewHasher(0).cost)
		assert.Equal(t, bcrypt.DefaultCost, NewHasher(99).cost)
	})
}

func TestResetToken(t *testing.T) {
	raw, digest, err := GenerateResetToken()
	require.NoError(t, err)

	decoded, err := hex.DecodeString(raw)
	require.NoError(t, err)
	assert.Len(t, decoded, 20)
	assert.Len(t, digest, 64)
	assert.NotEqual(t, raw, digest)
	assert.Equal(t, digest, HashResetToken(raw))

	other, _, err := GenerateResetToken()
	require.NoError(t, err)
	assert.NotEqual(t, raw, other)
}
