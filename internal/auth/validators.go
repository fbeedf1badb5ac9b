// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rollbook Contributors

package auth

import (
	"context"
	"log/slog"
	"regexp"

	"github.com/samber/oops"

	"github.com/rollbook/rollbook/internal/observability"
)

// Username and password length bounds.
const (
	MinUsernameLength = 8
	MaxUsernameLength = 50
	MinPasswordLength = 8
	MaxPasswordLength = 64
)

// usernameRegex permits letters and digits only.
var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9]+$`)

// UsernameValidator checks username length and character class.
type UsernameValidator struct{}

// Validate rejects usernames outside [MinUsernameLength, MaxUsernameLength]
// or containing characters other than letters and digits. Length is counted
// in bytes, matching the store's uniqueness domain.
func (UsernameValidator) Validate(username string) error {
	if len(username) < MinUsernameLength {
		return oops.Code(KindUsernameTooShort).
			With("min", MinUsernameLength).
			Errorf("username must be at least %d characters", MinUsernameLength)
	}
	if len(username) > MaxUsernameLength {
		return oops.Code(KindUsernameTooLong).
			With("max", MaxUsernameLength).
			Errorf("username must be at most %d characters", MaxUsernameLength)
	}
	if !usernameRegex.MatchString(username) {
		return oops.Code(KindUsernameInvalidCharacter).
			Errorf("username may contain only letters and digits")
	}
	return nil
}

// PasswordValidatorOptions configures a PasswordValidator.
type PasswordValidatorOptions struct {
	// FailOpen allows a password through when the breach corpus cannot be
	// reached. The default is false: an indeterminate breach check rejects
	// the password with kind pwned_api_error. Flipping this silently weakens
	// registration, so it is an explicit, named decision rather than the
	// behavior of a swallowed error.
	FailOpen bool
}

// PasswordValidator checks password length bounds and membership in a breach
// corpus.
type PasswordValidator struct {
	breach   BreachChecker
	failOpen bool
	logger   *slog.Logger
}

// NewPasswordValidator creates a PasswordValidator. A nil breach checker
// disables the breach check (length bounds still apply).
func NewPasswordValidator(breach BreachChecker, opts PasswordValidatorOptions) *PasswordValidator {
	return NewPasswordValidatorWithLogger(breach, opts, slog.Default())
}

// NewPasswordValidatorWithLogger creates a PasswordValidator with a custom
// logger.
func NewPasswordValidatorWithLogger(breach BreachChecker, opts PasswordValidatorOptions, logger *slog.Logger) *PasswordValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &PasswordValidator{
		breach:   breach,
		failOpen: opts.FailOpen,
		logger:   logger,
	}
}

// Validate checks length bounds, then the breach corpus. Breach-check
// failures fail closed unless FailOpen was set.
func (v *PasswordValidator) Validate(ctx context.Context, password string) error {
	if len(password) < MinPasswordLength {
		return oops.Code(KindPasswordTooShort).
			With("min", MinPasswordLength).
			Errorf("password must be at least %d characters", MinPasswordLength)
	}
	if len(password) > MaxPasswordLength {
		return oops.Code(KindPasswordTooLong).
			With("max", MaxPasswordLength).
			Errorf("password must be at most %d characters", MaxPasswordLength)
	}

	if v.breach == nil {
		return nil
	}

	breached, err := v.breach.IsBreached(ctx, password)
	if err != nil {
		observability.RecordBreachCheck("error")
		if v.failOpen {
			v.logger.Warn("breach check unavailable, failing open", "error", err)
			return nil
		}
		return oops.Code(KindBreachCheckUnavailable).
			Wrap(err)
	}
	if breached {
		observability.RecordBreachCheck("breached")
		return oops.Code(KindPasswordBreached).
			Errorf("password appears in a known breach corpus")
	}
	observability.RecordBreachCheck("clear")
	return nil
}

// MinLengthValidator rejects empty values and values shorter than Min. Empty
// and short input fail with the same kind, value_too_short.
type MinLengthValidator struct {
	Min int
}

// Validate checks value against the minimum. The error carries the field
// name and observed length; the value itself stays out of the message so the
// validator is safe for secrets.
func (v MinLengthValidator) Validate(field, value string) error {
	if len(value) < v.Min {
		return oops.Code(KindValueTooShort).
			With("field", field).
			With("length", len(value)).
			With("min", v.Min).
			Errorf("%s must be at least %d characters (got %d)", field, v.Min, len(value))
	}
	return nil
}
