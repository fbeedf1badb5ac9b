// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rollbook Contributors

package auth

import (
	"errors"

	"github.com/samber/oops"
)

// Validation reason kinds. Each kind doubles as the oops error code carried by
// the corresponding validation failure, so callers can branch on a
// machine-readable value instead of parsing messages.
const (
	KindPasswordTooShort         = "password_too_short"
	KindPasswordTooLong          = "password_too_long"
	KindPasswordBreached         = "password_breached"
	KindBreachCheckUnavailable   = "pwned_api_error"
	KindUsernameTooShort         = "username_too_short"
	KindUsernameTooLong          = "username_too_long"
	KindUsernameInvalidCharacter = "username_invalid_characters"
	KindPasswordMismatch         = "password_mismatch"
	KindEmailMismatch            = "email_mismatch"
	KindValueTooShort            = "value_too_short"
)

// ErrNotFound is returned when a requested credential does not exist.
var ErrNotFound = errors.New("not found")

// ErrNotAuthenticated is returned by guarded operations invoked on an
// anonymous session. Callers can distinguish "not logged in" from legitimate
// empty results with errors.Is.
var ErrNotAuthenticated = errors.New("not authenticated")

// Kind extracts the machine-readable reason kind from a validation error.
// Returns "" when err carries no kind.
func Kind(err error) string {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return ""
	}
	if code, ok := oopsErr.Code().(string); ok {
		return code
	}
	return ""
}
