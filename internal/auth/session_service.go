// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

package auth

import (
	"context"
	"errors"
	"time"

	"github.com/samber/oops"
)

// StartedSession is the result of starting a session: the opaque id, the
// plaintext bearer token (returned to the caller exactly once), and the
// absolute expiry.
type StartedSession struct {
	SessionID string
	UserID    string
	Token     string
	ExpiresAt time.Time
}

// SessionService issues, verifies, refreshes, and revokes sessions. A session
// is valid iff its expiry is in the future and the presented token hashes to
// the stored value. Verification never resurrects a session: once a row is
// gone or expired, only a fresh login creates a new one, under a new id.
type SessionService struct {
	sessions SessionRepository
	hasher   SecretHasher
	tokens   TokenGenerator
	lifetime time.Duration
	metrics  SweepRecorder
}

// SweepRecorder receives counts from opportunistic expiry sweeps.
type SweepRecorder func(kind string, deleted int64)

// NewSessionService creates a SessionService. A non-positive lifetime falls
// back to DefaultSessionLength. The recorder may be nil.
func NewSessionService(sessions SessionRepository, hasher SecretHasher, tokens TokenGenerator, lifetime time.Duration, recorder SweepRecorder) (*SessionService, error) {
	if sessions == nil {
		return nil, oops.Errorf("session repository is required")
	}
	if hasher == nil {
		return nil, oops.Errorf("secret hasher is required")
	}
	if tokens == nil {
		return nil, oops.Errorf("token generator is required")
	}
	if lifetime <= 0 {
		lifetime = DefaultSessionLength
	}
	return &SessionService{
		sessions: sessions,
		hasher:   hasher,
		tokens:   tokens,
		lifetime: lifetime,
		metrics:  recorder,
	}, nil
}

// Lifetime returns the configured sliding-expiry window.
func (s *SessionService) Lifetime() time.Duration {
	return s.lifetime
}

// Start creates a session for the user: a fresh id, a fresh bearer token,
// and a stored hash with expiry = now + lifetime.
func (s *SessionService) Start(ctx context.Context, userID string) (*StartedSession, error) {
	if userID == "" {
		return nil, oops.Code(CodeSessionStartFailed).Errorf("user id cannot be empty")
	}

	token, err := s.tokens.NewSecretToken()
	if err != nil {
		return nil, oops.Code(CodeSessionStartFailed).
			With("operation", "generate bearer token").
			Wrap(err)
	}

	hashed, err := s.hasher.Hash(token)
	if err != nil {
		return nil, oops.Code(CodeSessionStartFailed).
			With("operation", "hash bearer token").
			Wrap(err)
	}

	sessionID := s.tokens.NewID()
	expiresAt, err := s.sessions.Insert(ctx, sessionID, userID, hashed, s.lifetime)
	if err != nil {
		return nil, oops.Code(CodeSessionStartFailed).
			With("operation", "insert session").
			With("user_id", userID).
			Wrap(err)
	}

	return &StartedSession{
		SessionID: sessionID,
		UserID:    userID,
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}

// Verify checks a presented bearer token against the stored hash and, on
// success, unconditionally refreshes the session (sliding expiry): a session
// checked more often than the lifetime never expires, and an idle one expires
// exactly one lifetime after its last check. Verification fails closed: any
// missing field or store miss is TOKEN_INVALID, never valid-by-default.
func (s *SessionService) Verify(ctx context.Context, sessionID, userID, token string) (time.Time, error) {
	if sessionID == "" || userID == "" || token == "" {
		return time.Time{}, oops.Code(CodeTokenInvalid).
			With("reason", "missing session id, user id, or token").
			Errorf("Invalid session token")
	}

	s.sweep(ctx)

	session, err := s.sessions.GetForVerify(ctx, sessionID, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return time.Time{}, oops.Code(CodeTokenInvalid).
				With("reason", "no unexpired session for this id and user").
				Errorf("Invalid session token")
		}
		return time.Time{}, oops.Code(CodeUnexpected).
			With("operation", "get session for verify").
			Wrap(err)
	}

	if !s.hasher.Verify(token, session.TokenHash) {
		return time.Time{}, oops.Code(CodeTokenInvalid).
			With("reason", "token does not match").
			Errorf("Invalid session token")
	}

	expiresAt, err := s.sessions.Refresh(ctx, sessionID, s.lifetime)
	if err != nil {
		// A concurrent logout or sweep removed the row between the
		// read and the refresh. The original expiry is still in the
		// future, so the check itself stands.
		if errors.Is(err, ErrNotFound) {
			return session.ExpiresAt, nil
		}
		return time.Time{}, oops.Code(CodeUnexpected).
			With("operation", "refresh session").
			Wrap(err)
	}

	return expiresAt, nil
}

// Delete removes a session by id. Logging out is an identity operation, not a
// credential check, so a missing row is SESSION_INVALID rather than
// TOKEN_INVALID.
func (s *SessionService) Delete(ctx context.Context, sessionID string) (string, error) {
	if sessionID == "" {
		return "", oops.Code(CodeSessionInvalid).Errorf("Invalid session")
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", oops.Code(CodeSessionInvalid).
				With("session_id", sessionID).
				Errorf("Invalid session")
		}
		return "", oops.Code(CodeUnexpected).
			With("operation", "delete session").
			With("session_id", sessionID).
			Wrap(err)
	}
	return sessionID, nil
}

// ListActive returns all live sessions joined to their users, ordered by
// email then expiry. Sweeps first so the listing never shows stale rows.
func (s *SessionService) ListActive(ctx context.Context) ([]ActiveSession, error) {
	s.sweep(ctx)
	active, err := s.sessions.ListActive(ctx)
	if err != nil {
		return nil, oops.Code(CodeUnexpected).
			With("operation", "list active sessions").
			Wrap(err)
	}
	return active, nil
}

// sweep opportunistically removes expired rows at the start of read paths.
// This bounds staleness without a background scheduler; a failed sweep never
// blocks the read that triggered it.
func (s *SessionService) sweep(ctx context.Context) {
	deleted, err := s.sessions.DeleteExpired(ctx)
	if err != nil {
		return
	}
	if s.metrics != nil && deleted > 0 {
		s.metrics("session", deleted)
	}
}
