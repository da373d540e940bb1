package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestNewBcryptHasher(t *testing.T) {
	require.Equal(t, DefaultBcryptCost, NewBcryptHasher(0).cost)
	require.Equal(t, bcrypt.MinCost, NewBcryptHasher(1).cost)
	require.Equal(t, bcrypt.MaxCost, NewBcryptHasher(99).cost)
	require.Equal(t, 12, NewBcryptHasher(12).cost)
}

func TestBcryptHasher(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	t.Run("hash then verify", func(t *testing.T) {
		hash, err := h.Hash("secret1")
		require.NoError(t, err)
		require.NotEqual(t, "secret1", hash)
		require.NotContains(t, hash, "secret1")

		require.True(t, h.Verify("secret1", hash))
		require.False(t, h.Verify("secret2", hash))
		require.False(t, h.Verify("", hash))
	})

	t.Run("hashes are salted", func(t *testing.T) {
		a, err := h.Hash("secret1")
		require.NoError(t, err)
		b, err := h.Hash("secret1")
		require.NoError(t, err)
		require.NotEqual(t, a, b)
	})

	t.Run("default cost", func(t *testing.T) {
		hash, err := NewBcryptHasher(0).Hash("secret1")
		require.NoError(t, err)

		cost, err := bcrypt.Cost([]byte(hash))
		require.NoError(t, err)
		require.Equal(t, DefaultBcryptCost, cost)
	})

	t.Run("empty password", func(t *testing.T) {
		_, err := h.Hash("")
		require.ErrorIs(t, err, ErrValidation)
	})

	t.Run("password longer than 72 bytes", func(t *testing.T) {
		_, err := h.Hash(strings.Repeat("a", 73))
		require.ErrorIs(t, err, ErrValidation)

		_, err = h.Hash(strings.Repeat("a", 72))
		require.NoError(t, err)
	})

	t.Run("password longer than 72 bytes never verifies", func(t *testing.T) {
		password := strings.Repeat("a", 72)
		hash, err := h.Hash(password)
		require.NoError(t, err)

		require.True(t, h.Verify(password, hash))
		require.False(t, h.Verify(password+"EXTRA-GARBAGE", hash))
		require.False(t, h.Verify(password+"a", hash))
	})

	t.Run("malformed hash never matches", func(t *testing.T) {
		require.False(t, h.Verify("secret1", "not-a-hash"))
		require.False(t, h.Verify("secret1", ""))
	})
}

func TestValidationError(t *testing.T) {
	_, err := NewBcryptHasher(bcrypt.MinCost).Hash("")

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "Password is required", verr.Reason)
	require.ErrorIs(t, err, ErrValidation)
}
