// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rollbook Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/rollbook/rollbook/internal/observability"
	"github.com/rollbook/rollbook/pkg/errutil"
)

// Session is per-request authentication state. A Session belongs to exactly
// one logical request and must not be shared across goroutines; it starts
// anonymous and is mutated only by Auth.Login and Auth.Logout.
type Session struct {
	subjectID     ulid.ULID
	authenticated bool
}

// IsAuthenticated reports whether the session passed a successful login with
// no logout or failed login since.
func (s *Session) IsAuthenticated() bool { return s.authenticated }

// SubjectID returns the authenticated subject's identifier. The second
// return is false while the session is anonymous.
func (s *Session) SubjectID() (ulid.ULID, bool) {
	if !s.authenticated {
		return ulid.ULID{}, false
	}
	return s.subjectID, true
}

// Auth authenticates sessions against stored credentials and gates guarded
// operations. The service itself is stateless and safe for concurrent use;
// all mutable state lives in the Session values passed in.
type Auth struct {
	creds  CredentialRepository
	hasher PasswordHasher
	logger *slog.Logger

	// dummyHash is verified against when the username does not exist, so the
	// lookup miss costs the same as a real verification. It never matches.
	dummyHash string
}

// NewAuth creates an Auth service.
func NewAuth(creds CredentialRepository, hasher PasswordHasher) (*Auth, error) {
	return NewAuthWithLogger(creds, hasher, slog.Default())
}

// NewAuthWithLogger creates an Auth service with a custom logger.
func NewAuthWithLogger(creds CredentialRepository, hasher PasswordHasher, logger *slog.Logger) (*Auth, error) {
	if creds == nil {
		return nil, oops.Errorf("credential repository is required")
	}
	if hasher == nil {
		return nil, oops.Errorf("password hasher is required")
	}
	if logger == nil {
		return nil, oops.Errorf("logger is required")
	}

	dummyHash, err := hasher.Hash("rollbook-dummy-credential-for-timing")
	if err != nil {
		return nil, oops.Code("AUTH_INIT_FAILED").
			With("operation", "derive dummy hash").
			Wrap(err)
	}

	return &Auth{
		creds:     creds,
		hasher:    hasher,
		logger:    logger,
		dummyHash: dummyHash,
	}, nil
}

// Login authenticates sess with the given credentials. The return value is
// the authentication outcome: false covers unknown username, wrong password,
// and store failure alike, so callers cannot distinguish them (and neither
// can whoever is typing usernames). Login never returns an error; failures
// are logged here.
//
// On success the session transitions to authenticated and last_login is
// updated best-effort: a failed timestamp write is logged but does not roll
// back the login.
func (a *Auth) Login(ctx context.Context, sess *Session, username, password string) bool {
	// A failed attempt always resets the session, even one that was
	// previously authenticated.
	sess.authenticated = false
	sess.subjectID = ulid.ULID{}

	cred, lookupErr := a.creds.GetByUsername(ctx, username)

	// Verify against the real hash or the dummy, so response time does not
	// reveal whether the username exists.
	targetHash := a.dummyHash
	if lookupErr == nil {
		targetHash = cred.PasswordHash
	}
	valid := a.hasher.Verify(password, targetHash)

	if lookupErr != nil {
		if !errors.Is(lookupErr, ErrNotFound) {
			errutil.LogError(a.logger, "credential lookup failed", lookupErr)
		}
		a.logger.Info("authorization failure", "username", username)
		observability.RecordLoginAttempt("failure")
		return false
	}
	if !valid {
		a.logger.Info("authorization failure", "username", username)
		observability.RecordLoginAttempt("failure")
		return false
	}

	sess.subjectID = cred.ID
	sess.authenticated = true

	if err := a.creds.UpdateLastLogin(ctx, cred.ID, time.Now()); err != nil {
		errutil.LogError(a.logger, "last_login update failed", err)
	}

	observability.RecordLoginAttempt("success")
	return true
}

// Logout transitions sess to anonymous. Idempotent; logging out an anonymous
// session is a no-op.
func (a *Auth) Logout(sess *Session) {
	sess.authenticated = false
	sess.subjectID = ulid.ULID{}
}

// Roles returns the ordered role names of the authenticated subject. Calling
// it on an anonymous session fails with ErrNotAuthenticated rather than
// returning an empty result, so "no roles" and "not logged in" stay
// distinguishable. Store failures are logged and read as no roles.
func (a *Auth) Roles(ctx context.Context, sess *Session) ([]string, error) {
	if !sess.IsAuthenticated() {
		return nil, oops.Code("AUTH_NOT_AUTHENTICATED").Wrap(ErrNotAuthenticated)
	}

	roles, err := a.creds.GetRoles(ctx, sess.subjectID)
	if err != nil {
		errutil.LogError(a.logger, "role lookup failed", err)
		return []string{}, nil
	}
	return roles, nil
}
