// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rollbook Contributors

package auth

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Credential is a stored account record. The password is only ever present in
// its encoded form; the core never persists plaintext.
type Credential struct {
	ID           ulid.ULID
	Username     string
	PasswordHash string
	Email        string
	CreatedAt    time.Time
	LastLogin    *time.Time
}

// NewCredential creates a validated Credential with a fresh ID and creation
// timestamp. The passwordHash must already be the encoded output of a
// PasswordHasher.
func NewCredential(username, passwordHash, email string) (*Credential, error) {
	if username == "" {
		return nil, oops.Code("CREDENTIAL_INVALID").Errorf("username cannot be empty")
	}
	if passwordHash == "" {
		return nil, oops.Code("CREDENTIAL_INVALID").Errorf("password hash cannot be empty")
	}
	if email == "" {
		return nil, oops.Code("CREDENTIAL_INVALID").Errorf("email cannot be empty")
	}
	return &Credential{
		ID:           ulid.Make(),
		Username:     username,
		PasswordHash: passwordHash,
		Email:        email,
		CreatedAt:    time.Now(),
	}, nil
}

// CredentialRepository is the gateway to credential persistence. Every call
// is scoped: implementations acquire and release their resources per
// operation and honor context cancellation.
type CredentialRepository interface {
	// GetByUsername retrieves a credential by exact username. Usernames are
	// case-sensitive. Returns ErrNotFound (wrapped) when absent.
	GetByUsername(ctx context.Context, username string) (*Credential, error)

	// Create stores a new credential. A duplicate username fails with code
	// CREDENTIAL_USERNAME_TAKEN.
	Create(ctx context.Context, cred *Credential) error

	// UpdateLastLogin sets the last_login timestamp for a credential.
	UpdateLastLogin(ctx context.Context, id ulid.ULID, at time.Time) error

	// GetRoles returns the names of the roles granted to a subject, ordered
	// by name. A subject with no roles yields an empty slice, not an error.
	GetRoles(ctx context.Context, id ulid.ULID) ([]string, error)
}
