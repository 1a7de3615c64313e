// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

package auth

import (
	"context"
	"time"
)

// DefaultResetTokenLifetime bounds how long a reset token stays usable.
const DefaultResetTokenLifetime = 24 * time.Hour

// ResetToken represents a time-boxed, single-use password reset grant.
type ResetToken struct {
	ID        string
	UserID    string
	Email     string
	TokenHash string
	ExpiresAt time.Time
}

// IsExpired returns true if the reset token has expired.
func (r *ResetToken) IsExpired() bool {
	return time.Now().After(r.ExpiresAt)
}

// ResetTokenRepository manages reset token persistence.
type ResetTokenRepository interface {
	// Supersede atomically deletes any live reset row for the enabled
	// user matched by normalized email and inserts a fresh one with
	// expiry = now + lifetime, in a single statement, so at most one
	// live token per user ever survives a race. Returns ErrNotFound
	// (wrapped) when the email matches no enabled user; callers must not
	// be able to tell "unknown" from "disabled" apart.
	Supersede(ctx context.Context, id, email, tokenHash string, lifetime time.Duration) (*ResetToken, error)

	// GetLiveByEmail retrieves the unexpired reset row joined to the
	// user by normalized email. Returns ErrNotFound when none exists.
	GetLiveByEmail(ctx context.Context, email string) (*ResetToken, error)

	// Delete removes a reset row by id and reports whether a row
	// matched. Absence is not an error; deletion is idempotent.
	Delete(ctx context.Context, id string) (bool, error)

	// DeleteExpired sweeps rows whose expiry has passed and returns the
	// count of deleted records.
	DeleteExpired(ctx context.Context) (int64, error)
}
