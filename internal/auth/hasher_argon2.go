// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rollbook Contributors

package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/samber/oops"
	"golang.org/x/crypto/argon2"
)

// OWASP-recommended argon2id defaults.
const (
	DefaultArgon2Time    uint32 = 1         // iterations
	DefaultArgon2Memory  uint32 = 64 * 1024 // KiB (64 MB)
	DefaultArgon2Threads uint8  = 4         // parallelism

	argon2SaltLen = 16 // salt length in bytes
	argon2KeyLen  = 32 // derived key length in bytes
)

// Argon2Params are the argon2id cost parameters. They are fixed at
// configuration time and embedded in every hash the hasher produces, so they
// can be raised later without invalidating stored hashes.
type Argon2Params struct {
	Time    uint32
	Memory  uint32
	Threads uint8
}

// Argon2idHasher implements PasswordHasher using argon2id in PHC string
// format. Verification re-derives with the parameters embedded in the stored
// hash, not the hasher's own, so old hashes keep verifying after a cost bump.
type Argon2idHasher struct {
	params Argon2Params
}

// NewArgon2idHasher creates an Argon2idHasher. Zero-valued fields of params
// take the package defaults; explicit sub-minimum values are rejected.
func NewArgon2idHasher(params Argon2Params) (*Argon2idHasher, error) {
	if params.Time == 0 {
		params.Time = DefaultArgon2Time
	}
	if params.Memory == 0 {
		params.Memory = DefaultArgon2Memory
	}
	if params.Threads == 0 {
		params.Threads = DefaultArgon2Threads
	}
	if params.Memory < 8*uint32(params.Threads) {
		return nil, oops.Code("AUTH_INVALID_PARAMS").
			With("memory", params.Memory).
			With("threads", params.Threads).
			Errorf("argon2 memory (%d KiB) must be at least 8x threads", params.Memory)
	}
	return &Argon2idHasher{params: params}, nil
}

// Algorithm returns AlgorithmArgon2id.
func (h *Argon2idHasher) Algorithm() string { return AlgorithmArgon2id }

// Hash produces an argon2id hash of the password with a fresh random salt.
// The output is self-describing:
//
//	$argon2id$v=19$m=65536,t=1,p=4$<salt>$<hash>
func (h *Argon2idHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}

	salt := make([]byte, argon2SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", oops.Code("AUTH_SALT_FAILED").Wrap(err)
	}

	key := argon2.IDKey([]byte(password), salt, h.params.Time, h.params.Memory, h.params.Threads, argon2KeyLen)

	encoded := fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.params.Memory,
		h.params.Time,
		h.params.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	)
	return encoded, nil
}

// Verify re-derives the key using the parameters embedded in encoded and
// compares in constant time. Any parse or decode failure is a mismatch.
func (h *Argon2idHasher) Verify(password, encoded string) bool {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return false
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return false
	}

	var memory, time, threads uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &time, &threads); err != nil {
		return false
	}
	// threads must fit in uint8; reject rather than silently truncate
	if threads == 0 || threads > 255 {
		return false
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false
	}
	expected, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false
	}
	keyLen := len(expected)
	if keyLen == 0 || keyLen > 1<<10 {
		return false
	}

	computed := argon2.IDKey([]byte(password), salt, time, memory, uint8(threads), uint32(keyLen))
	return subtle.ConstantTimeCompare(computed, expected) == 1
}
