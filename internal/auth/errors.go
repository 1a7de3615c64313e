// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

package auth

import "errors"

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicateEmail is returned when an insert collides with an existing
// email. Detected via zero affected rows rather than a pre-check, so there is
// no check-then-act race.
var ErrDuplicateEmail = errors.New("duplicate email")

// Stable machine-readable failure codes carried on oops errors and surfaced
// in Outcome envelopes.
const (
	CodeInvalidCredentials  = "INVALID_CREDENTIALS"
	CodeTokenInvalid        = "TOKEN_INVALID"
	CodeSessionInvalid      = "SESSION_INVALID"
	CodeSessionStartFailed  = "SESSION_START_FAILED"
	CodeEmailNotFound       = "EMAIL_NOT_FOUND"
	CodeMailNotSent         = "MAIL_NOT_SENT"
	CodeDuplicateEmail      = "DUPLICATE_EMAIL"
	CodeInvalidEmailAddress = "INVALID_EMAIL_ADDRESS"
	CodeUserNotFound        = "USER_NOT_FOUND"
	CodeUpdateFailed        = "UPDATE_FAILED"
	CodeCannotBootstrap     = "CANNOT_BOOTSTRAP"
	CodeUnexpected          = "UNEXPECTED"
)
