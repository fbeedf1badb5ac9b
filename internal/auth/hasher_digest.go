// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rollbook Contributors

package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// SHA256Hasher is an unsalted, deterministic digest hasher. Identical
// passwords produce identical encodings, which makes stored hashes trivially
// comparable across accounts. It exists only for reading legacy data and is
// unsuitable for production; NewHasher refuses it unless insecure variants
// are explicitly allowed.
type SHA256Hasher struct{}

// NewSHA256Hasher creates a SHA256Hasher.
func NewSHA256Hasher() *SHA256Hasher { return &SHA256Hasher{} }

// Algorithm returns AlgorithmSHA256.
func (h *SHA256Hasher) Algorithm() string { return AlgorithmSHA256 }

// Hash returns the hex SHA-256 digest of the password.
func (h *SHA256Hasher) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	digest := sha256.Sum256([]byte(password))
	return hex.EncodeToString(digest[:]), nil
}

// Verify compares digests in constant time.
func (h *SHA256Hasher) Verify(password, encoded string) bool {
	digest := sha256.Sum256([]byte(password))
	computed := hex.EncodeToString(digest[:])
	return subtle.ConstantTimeCompare([]byte(computed), []byte(encoded)) == 1
}

// PlaintextHasher stores the password unchanged. Test-only: NewHasher refuses
// it unless insecure variants are explicitly allowed, which keeps it out of
// every production code path.
type PlaintextHasher struct{}

// NewPlaintextHasher creates a PlaintextHasher.
func NewPlaintextHasher() *PlaintextHasher { return &PlaintextHasher{} }

// Algorithm returns AlgorithmPlaintext.
func (h *PlaintextHasher) Algorithm() string { return AlgorithmPlaintext }

// Hash returns the password unchanged.
func (h *PlaintextHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	return password, nil
}

// Verify compares in constant time even though the encoding is plaintext.
func (h *PlaintextHasher) Verify(password, encoded string) bool {
	return subtle.ConstantTimeCompare([]byte(password), []byte(encoded)) == 1
}
