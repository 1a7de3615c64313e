// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/authgate/authgate/internal/auth"
)

// SessionRepository implements auth.SessionRepository using PostgreSQL.
// Expiry arithmetic runs on the store clock (NOW() + interval), so every
// process observing the table agrees on what is live.
type SessionRepository struct {
	db     DB
	tables *Tables
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(db DB, tables *Tables) *SessionRepository {
	return &SessionRepository{db: db, tables: tables}
}

// Insert stores a new session and returns the store-computed expiry.
func (r *SessionRepository) Insert(ctx context.Context, id, userID, tokenHash string, lifetime time.Duration) (time.Time, error) {
	var expires time.Time
	err := r.db.QueryRow(ctx, fmt.Sprintf(`
		INSERT INTO %s (session_id, user_id, token_hash, expires)
		VALUES ($1, $2, $3, NOW() + $4)
		RETURNING expires`,
		r.tables.Sessions,
	), id, userID, tokenHash, lifetime).Scan(&expires)
	if errors.Is(err, pgx.ErrNoRows) {
		return time.Time{}, oops.Code("SESSION_INSERT_EMPTY").
			With("user_id", userID).
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return time.Time{}, oops.Code("SESSION_INSERT_FAILED").
			With("operation", "insert session").
			With("user_id", userID).
			Wrap(err)
	}
	return expires, nil
}

// GetForVerify retrieves an unexpired session by (id, userID). Expired rows
// are invisible here even before a sweep collects them.
func (r *SessionRepository) GetForVerify(ctx context.Context, id, userID string) (*auth.Session, error) {
	session := &auth.Session{ID: id, UserID: userID}
	err := r.db.QueryRow(ctx, fmt.Sprintf(`
		SELECT token_hash, expires
		FROM %s
		WHERE session_id = $1 AND user_id = $2 AND expires >= NOW()`,
		r.tables.Sessions,
	), id, userID).Scan(&session.TokenHash, &session.ExpiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("SESSION_NOT_FOUND").Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("SESSION_GET_FAILED").
			With("operation", "get session for verify").
			Wrap(err)
	}
	return session, nil
}

// Refresh pushes the expiry forward to now + lifetime and returns it.
func (r *SessionRepository) Refresh(ctx context.Context, id string, lifetime time.Duration) (time.Time, error) {
	var expires time.Time
	err := r.db.QueryRow(ctx, fmt.Sprintf(`
		UPDATE %s
		SET expires = NOW() + $2
		WHERE session_id = $1
		RETURNING expires`,
		r.tables.Sessions,
	), id, lifetime).Scan(&expires)
	if errors.Is(err, pgx.ErrNoRows) {
		return time.Time{}, oops.Code("SESSION_NOT_FOUND").
			With("session_id", id).
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return time.Time{}, oops.Code("SESSION_REFRESH_FAILED").
			With("operation", "refresh session").
			With("session_id", id).
			Wrap(err)
	}
	return expires, nil
}

// Delete removes a session by id.
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, fmt.Sprintf(`
		DELETE FROM %s WHERE session_id = $1`,
		r.tables.Sessions,
	), id)
	if err != nil {
		return oops.Code("SESSION_DELETE_FAILED").
			With("operation", "delete session").
			With("session_id", id).
			Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return oops.Code("SESSION_NOT_FOUND").
			With("session_id", id).
			Wrap(auth.ErrNotFound)
	}
	return nil
}

// DeleteExpired removes expired sessions and returns the count.
func (r *SessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	tag, err := r.db.Exec(ctx, fmt.Sprintf(`
		DELETE FROM %s WHERE expires < NOW()`,
		r.tables.Sessions,
	))
	if err != nil {
		return 0, oops.Code("SESSION_DELETE_EXPIRED_FAILED").
			With("operation", "delete expired sessions").
			Wrap(err)
	}
	return tag.RowsAffected(), nil
}

// ListActive returns unexpired sessions joined to their users, ordered by
// email then expiry.
func (r *SessionRepository) ListActive(ctx context.Context) ([]auth.ActiveSession, error) {
	rows, err := r.db.Query(ctx, fmt.Sprintf(`
		SELECT s.user_id, u.email, s.session_id, s.expires
		FROM %s s
		JOIN %s u USING (user_id)
		WHERE s.expires >= NOW()
		ORDER BY u.email, s.expires`,
		r.tables.Sessions, r.tables.Users,
	))
	if err != nil {
		return nil, oops.Code("SESSION_LIST_FAILED").
			With("operation", "list active sessions").
			Wrap(err)
	}
	defer rows.Close()

	var active []auth.ActiveSession
	for rows.Next() {
		var s auth.ActiveSession
		if err := rows.Scan(&s.UserID, &s.Email, &s.SessionID, &s.ExpiresAt); err != nil {
			return nil, oops.Code("SESSION_SCAN_FAILED").
				With("operation", "scan active session row").
				Wrap(err)
		}
		active = append(active, s)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("SESSION_ROWS_ERROR").
			With("operation", "iterate active session rows").
			Wrap(err)
	}
	return active, nil
}

// Compile-time interface check.
var _ auth.SessionRepository = (*SessionRepository)(nil)
