// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rollbook Contributors

package auth

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/samber/oops"
	"golang.org/x/crypto/bcrypt"
)

// Bcrypt cost bounds. bcrypt.MinCost is far too cheap for credential storage,
// so the floor here is the OWASP minimum of 10.
const (
	MinBcryptCost     = 10
	DefaultBcryptCost = 12
)

// BcryptSHA256Hasher implements PasswordHasher with bcrypt over a SHA-256
// prehash. The prehash normalizes input length: bcrypt truncates anything
// past 72 bytes, and the 64-character hex digest stays under that bound for
// passwords of any length.
//
// The stored value is the bcrypt output itself, salt embedded. The prehash is
// only ever an input to bcrypt, never a stored fallback.
type BcryptSHA256Hasher struct {
	cost int
}

// NewBcryptSHA256Hasher creates a BcryptSHA256Hasher with the given work
// factor. Costs below MinBcryptCost are rejected.
func NewBcryptSHA256Hasher(cost int) (*BcryptSHA256Hasher, error) {
	if cost < MinBcryptCost || cost > bcrypt.MaxCost {
		return nil, oops.Code("AUTH_INVALID_PARAMS").
			With("cost", cost).
			Errorf("bcrypt cost %d must be in [%d, %d]", cost, MinBcryptCost, bcrypt.MaxCost)
	}
	return &BcryptSHA256Hasher{cost: cost}, nil
}

// Algorithm returns AlgorithmBcryptSHA256.
func (h *BcryptSHA256Hasher) Algorithm() string { return AlgorithmBcryptSHA256 }

// Hash digests the password with SHA-256 and bcrypts the hex digest with a
// fresh per-call salt.
func (h *BcryptSHA256Hasher) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	encoded, err := bcrypt.GenerateFromPassword(prehash(password), h.cost)
	if err != nil {
		return "", oops.Code("AUTH_HASH_FAILED").With("algorithm", h.Algorithm()).Wrap(err)
	}
	return string(encoded), nil
}

// Verify recomputes the prehash and delegates to bcrypt's constant-time
// comparison. Malformed encodings are a mismatch.
func (h *BcryptSHA256Hasher) Verify(password, encoded string) bool {
	return bcrypt.CompareHashAndPassword([]byte(encoded), prehash(password)) == nil
}

func prehash(password string) []byte {
	digest := sha256.Sum256([]byte(password))
	out := make([]byte, hex.EncodedLen(len(digest)))
	hex.Encode(out, digest[:])
	return out
}
