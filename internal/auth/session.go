// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

package auth

import (
	"context"
	"time"
)

// DefaultSessionLength is the sliding-expiry window applied when the
// deployment does not configure one.
const DefaultSessionLength = 60 * time.Minute

// Session represents a server-side session record. The bearer token is never
// stored; only its hash is.
type Session struct {
	ID        string
	UserID    string
	TokenHash string
	ExpiresAt time.Time
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// ActiveSession is a row of the active-session listing, joined to its owner.
type ActiveSession struct {
	UserID    string
	Email     string
	SessionID string
	ExpiresAt time.Time
}

// SessionRepository manages session persistence. Implementations own the
// atomic statement semantics the services rely on: every write that reports
// an affected count does so in the same statement as the mutation.
type SessionRepository interface {
	// Insert stores a new session with expiry = now + lifetime, computed
	// by the store clock, and returns the expiry. Returns ErrNotFound
	// (wrapped) when the insert produced no row.
	Insert(ctx context.Context, id, userID, tokenHash string, lifetime time.Duration) (time.Time, error)

	// GetForVerify retrieves an unexpired session by (id, userID).
	// Returns ErrNotFound when no such live row exists.
	GetForVerify(ctx context.Context, id, userID string) (*Session, error)

	// Refresh pushes the expiry to now + lifetime and returns the new
	// expiry. Returns ErrNotFound when the session no longer exists.
	Refresh(ctx context.Context, id string, lifetime time.Duration) (time.Time, error)

	// Delete removes a session by id. Returns ErrNotFound when no row
	// matched.
	Delete(ctx context.Context, id string) error

	// DeleteExpired sweeps rows whose expiry has passed and returns the
	// count of deleted records.
	DeleteExpired(ctx context.Context) (int64, error)

	// ListActive returns unexpired sessions joined to their users,
	// ordered by email then expiry.
	ListActive(ctx context.Context) ([]ActiveSession, error)
}
