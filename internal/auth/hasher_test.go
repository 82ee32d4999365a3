package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashVerifyRoundTrip(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)
	ctx := context.Background()

	for _, pw := range []string{"pw123", "", "パスワード", "with spaces and symbols !@#"} {
		digest, err := h.Hash(ctx, pw)
		require.NoError(t, err)
		assert.NotEqual(t, pw, digest)

		ok, err := h.Verify(ctx, pw, digest)
		require.NoError(t, err)
		assert.Truef(t, ok, "password %q did not verify", pw)

		ok, err = h.Verify(ctx, pw+"x", digest)
		require.NoError(t, err)
		assert.False(t, ok)
	}
}

func TestHashIsSalted(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)
	ctx := context.Background()

	a, err := h.Hash(ctx, "same")
	require.NoError(t, err)
	b, err := h.Hash(ctx, "same")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestVerifyMalformedDigest(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	for _, digest := range []string{"", "short", "not-a-bcrypt-hash-but-long-enough-to-pass-the-length-check-xx"} {
		ok, err := h.Verify(context.Background(), "pw", digest)
		assert.False(t, ok)
		assert.ErrorIsf(t, err, ErrHashFormat, "digest %q", digest)
	}
}

func TestHashCanceledContext(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := h.Hash(ctx, "pw")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHashPasswordTooLong(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)
	long := make([]byte, 100)
	for i := range long {
		long[i] = 'a'
	}

	_, err := h.Hash(context.Background(), string(long))
	assert.ErrorIs(t, err, bcrypt.ErrPasswordTooLong)
}

func TestNewBcryptHasherClampsCost(t *testing.T) {
	assert.Equal(t, bcrypt.DefaultCost, NewBcryptHasher(0).Cost())
	assert.Equal(t, bcrypt.DefaultCost, NewBcryptHasher(99).Cost())
	assert.Equal(t, 12, NewBcryptHasher(12).Cost())
}
