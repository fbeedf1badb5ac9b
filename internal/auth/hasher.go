// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rollbook Contributors

package auth

import (
	"github.com/samber/oops"
)

// Hasher algorithm names accepted by NewHasher.
const (
	AlgorithmArgon2id     = "argon2id"
	AlgorithmBcryptSHA256 = "bcrypt_sha256"
	AlgorithmSHA256       = "sha256"
	AlgorithmPlaintext    = "plaintext"
)

// ErrEmptyPassword is returned when attempting to hash an empty password.
var ErrEmptyPassword = oops.Code("AUTH_EMPTY_PASSWORD").Errorf("password cannot be empty")

// PasswordHasher transforms a plaintext secret into a storable encoding and
// checks a secret against a stored encoding.
//
// Implementations must be safe for concurrent use.
type PasswordHasher interface {
	// Hash produces the stored encoding of password. Stochastic variants
	// (argon2id, bcrypt) derive a fresh random salt on every call.
	Hash(password string) (string, error)

	// Verify reports whether password matches the stored encoding. It never
	// returns an error: a malformed, truncated, or foreign encoding is a
	// mismatch. Comparison is constant-time.
	Verify(password, encoded string) bool

	// Algorithm returns the variant name, one of the Algorithm constants.
	Algorithm() string
}

// HasherConfig selects the active hasher variant and its cost parameters.
// It is resolved once at process configuration load; the resulting hasher is
// dependency-injected into the components that need it.
type HasherConfig struct {
	// Algorithm is one of the Algorithm constants. Defaults to argon2id.
	Algorithm string

	// Argon2 holds argon2id cost parameters. Zero values take defaults.
	Argon2 Argon2Params

	// BcryptCost is the bcrypt work factor. Zero takes DefaultBcryptCost.
	BcryptCost int

	// AllowInsecure permits the sha256 and plaintext variants. It exists for
	// tests and legacy-data tooling and must never be set in a production
	// configuration.
	AllowInsecure bool
}

// NewHasher resolves a HasherConfig into a concrete hasher. The variant set
// is closed; unknown algorithm names are rejected rather than defaulting to
// anything weaker than argon2id.
func NewHasher(cfg HasherConfig) (PasswordHasher, error) {
	algorithm := cfg.Algorithm
	if algorithm == "" {
		algorithm = AlgorithmArgon2id
	}

	switch algorithm {
	case AlgorithmArgon2id:
		return NewArgon2idHasher(cfg.Argon2)
	case AlgorithmBcryptSHA256:
		cost := cfg.BcryptCost
		if cost == 0 {
			cost = DefaultBcryptCost
		}
		return NewBcryptSHA256Hasher(cost)
	case AlgorithmSHA256:
		if !cfg.AllowInsecure {
			return nil, oops.Code("AUTH_INSECURE_HASHER").
				With("algorithm", algorithm).
				Errorf("unsalted sha256 hashing is not allowed in this configuration")
		}
		return NewSHA256Hasher(), nil
	case AlgorithmPlaintext:
		if !cfg.AllowInsecure {
			return nil, oops.Code("AUTH_INSECURE_HASHER").
				With("algorithm", algorithm).
				Errorf("plaintext password storage is not allowed in this configuration")
		}
		return NewPlaintextHasher(), nil
	default:
		return nil, oops.Code("AUTH_UNKNOWN_HASHER").
			With("algorithm", algorithm).
			Errorf("unknown hasher algorithm %q", algorithm)
	}
}
