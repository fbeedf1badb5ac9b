// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rollbook Contributors

package auth_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rollbook/rollbook/internal/auth"
	"github.com/rollbook/rollbook/pkg/errutil"
)

// fastArgon2 keeps hasher tests quick while staying a real argon2id hasher.
func fastArgon2(t *testing.T) *auth.Argon2idHasher {
	t.Helper()
	h, err := auth.NewArgon2idHasher(auth.Argon2Params{Time: 1, Memory: 8 * 1024, Threads: 1})
	require.NoError(t, err)
	return h
}

func TestNewHasher(t *testing.T) {
	t.Run("defaults to argon2id", func(t *testing.T) {
		h, err := auth.NewHasher(auth.HasherConfig{})
		require.NoError(t, err)
		assert.Equal(t, auth.AlgorithmArgon2id, h.Algorithm())
	})

	t.Run("selects bcrypt_sha256", func(t *testing.T) {
		h, err := auth.NewHasher(auth.HasherConfig{Algorithm: auth.AlgorithmBcryptSHA256, BcryptCost: 10})
		require.NoError(t, err)
		assert.Equal(t, auth.AlgorithmBcryptSHA256, h.Algorithm())
	})

	t.Run("rejects unknown algorithm", func(t *testing.T) {
		_, err := auth.NewHasher(auth.HasherConfig{Algorithm: "md5"})
		errutil.AssertErrorCode(t, err, "AUTH_UNKNOWN_HASHER")
	})

	t.Run("refuses insecure variants by default", func(t *testing.T) {
		for _, algorithm := range []string{auth.AlgorithmSHA256, auth.AlgorithmPlaintext} {
			_, err := auth.NewHasher(auth.HasherConfig{Algorithm: algorithm})
			errutil.AssertErrorCode(t, err, "AUTH_INSECURE_HASHER")
		}
	})

	t.Run("allows insecure variants when explicitly enabled", func(t *testing.T) {
		h, err := auth.NewHasher(auth.HasherConfig{Algorithm: auth.AlgorithmPlaintext, AllowInsecure: true})
		require.NoError(t, err)
		assert.Equal(t, auth.AlgorithmPlaintext, h.Algorithm())
	})

	t.Run("rejects bcrypt cost below minimum", func(t *testing.T) {
		_, err := auth.NewHasher(auth.HasherConfig{Algorithm: auth.AlgorithmBcryptSHA256, BcryptCost: 4})
		errutil.AssertErrorCode(t, err, "AUTH_INVALID_PARAMS")
	})
}

func TestArgon2idHasher(t *testing.T) {
	hasher := fastArgon2(t)

	t.Run("produces self-describing hash", func(t *testing.T) {
		hash, err := hasher.Hash("password123")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(hash, "$argon2id$"))
		assert.Contains(t, hash, "m=8192,t=1,p=1")
	})

	t.Run("round trip verifies", func(t *testing.T) {
		hash, err := hasher.Hash("correct horse battery")
		require.NoError(t, err)
		assert.True(t, hasher.Verify("correct horse battery", hash))
	})

	t.Run("wrong password fails", func(t *testing.T) {
		hash, err := hasher.Hash("correct horse battery")
		require.NoError(t, err)
		assert.False(t, hasher.Verify("wrong horse battery", hash))
	})

	t.Run("same password hashes differently (salt freshness)", func(t *testing.T) {
		hash1, err := hasher.Hash("samepassword")
		require.NoError(t, err)
		hash2, err := hasher.Hash("samepassword")
		require.NoError(t, err)
		assert.NotEqual(t, hash1, hash2)
		assert.True(t, hasher.Verify("samepassword", hash1))
		assert.True(t, hasher.Verify("samepassword", hash2))
	})

	t.Run("verifies with parameters from the hash, not the hasher", func(t *testing.T) {
		other, err := auth.NewArgon2idHasher(auth.Argon2Params{Time: 2, Memory: 16 * 1024, Threads: 2})
		require.NoError(t, err)
		hash, err := other.Hash("cross-cost password")
		require.NoError(t, err)
		assert.True(t, hasher.Verify("cross-cost password", hash))
	})

	t.Run("rejects empty password", func(t *testing.T) {
		_, err := hasher.Hash("")
		assert.ErrorIs(t, err, auth.ErrEmptyPassword)
	})

	t.Run("malformed encodings verify as false", func(t *testing.T) {
		malformed := []string{
			"",
			"not-a-hash",
			"$argon2i$v=19$m=8192,t=1,p=1$c2FsdA$aGFzaA",
			"$argon2id$vXX$m=8192,t=1,p=1$c2FsdA$aGFzaA",
			"$argon2id$v=19$invalid$c2FsdA$aGFzaA",
			"$argon2id$v=19$m=8192,t=1,p=1$!!!$aGFzaA",
			"$argon2id$v=19$m=8192,t=1,p=1$c2FsdA$!!!",
			"$argon2id$v=19$m=8192,t=1,p=256$c2FsdA$aGFzaA",
			"$argon2id$v=19$m=8192,t=1,p=1$c2FsdA$",
		}
		for _, encoded := range malformed {
			assert.False(t, hasher.Verify("password", encoded), "encoded=%q", encoded)
		}
	})

	t.Run("truncated real hash verifies as false", func(t *testing.T) {
		hash, err := hasher.Hash("password123")
		require.NoError(t, err)
		assert.False(t, hasher.Verify("password123", hash[:len(hash)-10]))
	})

	t.Run("rejects memory below 8x threads", func(t *testing.T) {
		_, err := auth.NewArgon2idHasher(auth.Argon2Params{Time: 1, Memory: 16, Threads: 4})
		errutil.AssertErrorCode(t, err, "AUTH_INVALID_PARAMS")
	})
}

func TestBcryptSHA256Hasher(t *testing.T) {
	hasher, err := auth.NewBcryptSHA256Hasher(auth.MinBcryptCost)
	require.NoError(t, err)

	t.Run("stored value is bcrypt output", func(t *testing.T) {
		hash, err := hasher.Hash("password123")
		require.NoError(t, err)
		// Modular crypt format, never a bare digest.
		assert.True(t, strings.HasPrefix(hash, "$2a$") || strings.HasPrefix(hash, "$2b$"),
			"expected bcrypt output, got %q", hash)
	})

	t.Run("round trip verifies", func(t *testing.T) {
		hash, err := hasher.Hash("password123")
		require.NoError(t, err)
		assert.True(t, hasher.Verify("password123", hash))
		assert.False(t, hasher.Verify("password124", hash))
	})

	t.Run("salt is fresh per call", func(t *testing.T) {
		hash1, err := hasher.Hash("samepassword")
		require.NoError(t, err)
		hash2, err := hasher.Hash("samepassword")
		require.NoError(t, err)
		assert.NotEqual(t, hash1, hash2)
		assert.True(t, hasher.Verify("samepassword", hash1))
		assert.True(t, hasher.Verify("samepassword", hash2))
	})

	t.Run("long passwords survive the 72-byte bcrypt limit", func(t *testing.T) {
		long := strings.Repeat("a", 64) // max allowed password length
		veryLong := long + "b"
		hash, err := hasher.Hash(long)
		require.NoError(t, err)
		assert.True(t, hasher.Verify(long, hash))
		// Without the prehash these would collide past 72 bytes.
		assert.False(t, hasher.Verify(veryLong, hash))
	})

	t.Run("malformed encodings verify as false", func(t *testing.T) {
		assert.False(t, hasher.Verify("password", ""))
		assert.False(t, hasher.Verify("password", "not-bcrypt"))
		assert.False(t, hasher.Verify("password", "5e884898da28047151d0e56f8dc6292773603d0d6aabbdd62a11ef721d1542d8"))
	})

	t.Run("rejects empty password", func(t *testing.T) {
		_, err := hasher.Hash("")
		assert.ErrorIs(t, err, auth.ErrEmptyPassword)
	})

	t.Run("rejects cost below minimum", func(t *testing.T) {
		_, err := auth.NewBcryptSHA256Hasher(auth.MinBcryptCost - 1)
		errutil.AssertErrorCode(t, err, "AUTH_INVALID_PARAMS")
	})
}

func TestSHA256Hasher(t *testing.T) {
	hasher := auth.NewSHA256Hasher()

	t.Run("is deterministic", func(t *testing.T) {
		hash1, err := hasher.Hash("password123")
		require.NoError(t, err)
		hash2, err := hasher.Hash("password123")
		require.NoError(t, err)
		assert.Equal(t, hash1, hash2)
	})

	t.Run("round trip verifies", func(t *testing.T) {
		hash, err := hasher.Hash("password123")
		require.NoError(t, err)
		assert.True(t, hasher.Verify("password123", hash))
		assert.False(t, hasher.Verify("password124", hash))
		assert.False(t, hasher.Verify("password123", "garbage"))
	})
}

func TestPlaintextHasher(t *testing.T) {
	hasher := auth.NewPlaintextHasher()

	t.Run("stores the password unchanged", func(t *testing.T) {
		hash, err := hasher.Hash("password123")
		require.NoError(t, err)
		assert.Equal(t, "password123", hash)
	})

	t.Run("verify compares exactly", func(t *testing.T) {
		assert.True(t, hasher.Verify("password123", "password123"))
		assert.False(t, hasher.Verify("password123", "password1234"))
		assert.False(t, hasher.Verify("password123", ""))
	})
}

func TestHashersDoNotCrossVerify(t *testing.T) {
	argon := fastArgon2(t)
	bcryptHasher, err := auth.NewBcryptSHA256Hasher(auth.MinBcryptCost)
	require.NoError(t, err)

	argonHash, err := argon.Hash("password123")
	require.NoError(t, err)
	bcryptHash, err := bcryptHasher.Hash("password123")
	require.NoError(t, err)

	assert.False(t, argon.Verify("password123", bcryptHash))
	assert.False(t, bcryptHasher.Verify("password123", argonHash))
}
