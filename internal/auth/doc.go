// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rollbook Contributors

// Package auth is the credential-hashing and authentication core of Rollbook.
//
// # Hashing
//
// Password hashing is polymorphic over the PasswordHasher interface. The
// variant set is closed: Argon2id (production default), bcrypt over a SHA-256
// prehash, an unsalted SHA-256 digest, and plaintext. The last two exist for
// data migration and tests and are refused by NewHasher unless insecure
// variants are explicitly allowed. Verify never returns an error: a malformed
// or corrupted encoding verifies as false.
//
// # Validation
//
// UsernameValidator, PasswordValidator, and MinLengthValidator reject bad
// input with errors whose oops code is a stable machine-readable reason kind
// (see errors.go). PasswordValidator consults a BreachChecker and fails
// closed when the breach corpus cannot be reached.
//
// # Sessions
//
// A Session is the per-request authentication state. It is owned by exactly
// one request and must not be shared across goroutines. The Auth service
// mutates it through Login and Logout; guarded operations such as Roles check
// it explicitly and fail with ErrNotAuthenticated.
//
// # Registration
//
// Registration orchestrates the validators, the configured hasher, and the
// CredentialRepository to produce and persist new credential records.
// Plaintext and hashed passwords never reach the logs.
package auth
