// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rollbook Contributors

package auth

import (
	"context"
	"log/slog"
	"strings"

	"github.com/samber/oops"

	"github.com/rollbook/rollbook/pkg/errutil"
)

// MinEmailLength is the floor applied to email addresses at registration.
const MinEmailLength = 3

// RegistrationData is the raw input of a registration attempt.
type RegistrationData struct {
	Username     string
	Password1    string
	Password2    string
	Email        string
	EmailConfirm string
}

// Registration orchestrates validation, hashing, and persistence of new
// credential records.
type Registration struct {
	usernames UsernameValidator
	passwords *PasswordValidator
	emails    MinLengthValidator
	hasher    PasswordHasher
	creds     CredentialRepository
	logger    *slog.Logger
}

// NewRegistration creates a Registration flow.
func NewRegistration(passwords *PasswordValidator, hasher PasswordHasher, creds CredentialRepository) (*Registration, error) {
	return NewRegistrationWithLogger(passwords, hasher, creds, slog.Default())
}

// NewRegistrationWithLogger creates a Registration flow with a custom logger.
func NewRegistrationWithLogger(passwords *PasswordValidator, hasher PasswordHasher, creds CredentialRepository, logger *slog.Logger) (*Registration, error) {
	if passwords == nil {
		return nil, oops.Errorf("password validator is required")
	}
	if hasher == nil {
		return nil, oops.Errorf("password hasher is required")
	}
	if creds == nil {
		return nil, oops.Errorf("credential repository is required")
	}
	if logger == nil {
		return nil, oops.Errorf("logger is required")
	}
	return &Registration{
		passwords: passwords,
		emails:    MinLengthValidator{Min: MinEmailLength},
		hasher:    hasher,
		creds:     creds,
		logger:    logger,
	}, nil
}

// Create validates data and returns a new, unsaved credential record with
// the password already encoded. Validation short-circuits on the first
// failure: nothing is hashed and no store call happens until every check has
// passed.
func (r *Registration) Create(ctx context.Context, data RegistrationData) (*Credential, error) {
	username := strings.TrimSpace(data.Username)

	if err := r.usernames.Validate(username); err != nil {
		return nil, err
	}
	if data.Password1 != data.Password2 {
		return nil, oops.Code(KindPasswordMismatch).
			Errorf("passwords do not match")
	}
	if err := r.passwords.Validate(ctx, data.Password1); err != nil {
		return nil, err
	}
	if data.Email != data.EmailConfirm {
		return nil, oops.Code(KindEmailMismatch).
			Errorf("email addresses do not match")
	}
	if err := r.emails.Validate("email", data.Email); err != nil {
		return nil, err
	}

	encoded, err := r.hasher.Hash(data.Password1)
	if err != nil {
		// The error carries no password material; hasher failures wrap
		// rand/cost problems, never the input.
		return nil, oops.Code("REGISTRATION_HASH_FAILED").
			With("algorithm", r.hasher.Algorithm()).
			With("password_length", len(data.Password1)).
			Wrap(err)
	}

	cred, err := NewCredential(username, encoded, data.Email)
	if err != nil {
		return nil, oops.Code("REGISTRATION_FAILED").Wrap(err)
	}

	r.logger.Debug("credential record created",
		"username", username,
		"algorithm", r.hasher.Algorithm(),
		"password", "[redacted]")
	return cred, nil
}

// Save persists a credential created by Create. Store failures are logged
// here and reported as a typed error; the raw store error never crosses the
// module boundary unwrapped.
func (r *Registration) Save(ctx context.Context, cred *Credential) error {
	if err := r.creds.Create(ctx, cred); err != nil {
		errutil.LogError(r.logger, "credential save failed", err)
		return oops.Code("REGISTRATION_SAVE_FAILED").
			With("username", cred.Username).
			Wrap(err)
	}
	return nil
}
