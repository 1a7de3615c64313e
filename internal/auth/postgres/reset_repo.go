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

// ResetTokenRepository implements auth.ResetTokenRepository using PostgreSQL.
type ResetTokenRepository struct {
	db     DB
	tables *Tables
}

// NewResetTokenRepository creates a new ResetTokenRepository.
func NewResetTokenRepository(db DB, tables *Tables) *ResetTokenRepository {
	return &ResetTokenRepository{db: db, tables: tables}
}

// Supersede deletes any existing reset row for the enabled user matched by
// email and inserts a fresh one, in a single statement. Two concurrent
// requests for the same email race on whose token survives, but exactly one
// live row comes out the other side.
func (r *ResetTokenRepository) Supersede(ctx context.Context, id, email, tokenHash string, lifetime time.Duration) (*auth.ResetToken, error) {
	token := &auth.ResetToken{ID: id, Email: email, TokenHash: tokenHash}
	err := r.db.QueryRow(ctx, fmt.Sprintf(`
		WITH purged AS (
			DELETE FROM %s r
			USING %s u
			WHERE u.user_id = r.user_id AND u.email = $2 AND u.disabled IS FALSE
		)
		INSERT INTO %s (reset_id, user_id, token_hash, expires)
		SELECT $1, user_id, $3, NOW() + $4
		FROM %s
		WHERE email = $2 AND disabled IS FALSE
		RETURNING reset_id, user_id, expires`,
		r.tables.ResetTokens, r.tables.Users, r.tables.ResetTokens, r.tables.Users,
	), id, email, tokenHash, lifetime).Scan(&token.ID, &token.UserID, &token.ExpiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("RESET_NO_SUCH_USER").Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("RESET_SUPERSEDE_FAILED").
			With("operation", "supersede reset token").
			Wrap(err)
	}
	return token, nil
}

// GetLiveByEmail retrieves the unexpired reset row joined to its user.
func (r *ResetTokenRepository) GetLiveByEmail(ctx context.Context, email string) (*auth.ResetToken, error) {
	token := &auth.ResetToken{Email: email}
	err := r.db.QueryRow(ctx, fmt.Sprintf(`
		SELECT r.reset_id, r.user_id, r.token_hash, r.expires
		FROM %s r
		JOIN %s u USING (user_id)
		WHERE u.email = $1 AND r.expires >= NOW()`,
		r.tables.ResetTokens, r.tables.Users,
	), email).Scan(&token.ID, &token.UserID, &token.TokenHash, &token.ExpiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("RESET_NOT_FOUND").Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("RESET_GET_FAILED").
			With("operation", "get live reset token").
			Wrap(err)
	}
	return token, nil
}

// Delete removes a reset row by id and reports whether a row matched.
func (r *ResetTokenRepository) Delete(ctx context.Context, id string) (bool, error) {
	tag, err := r.db.Exec(ctx, fmt.Sprintf(`
		DELETE FROM %s WHERE reset_id = $1`,
		r.tables.ResetTokens,
	), id)
	if err != nil {
		return false, oops.Code("RESET_DELETE_FAILED").
			With("operation", "delete reset token").
			With("reset_id", id).
			Wrap(err)
	}
	return tag.RowsAffected() > 0, nil
}

// DeleteExpired removes expired reset rows and returns the count.
func (r *ResetTokenRepository) DeleteExpired(ctx context.Context) (int64, error) {
	tag, err := r.db.Exec(ctx, fmt.Sprintf(`
		DELETE FROM %s WHERE expires < NOW()`,
		r.tables.ResetTokens,
	))
	if err != nil {
		return 0, oops.Code("RESET_DELETE_EXPIRED_FAILED").
			With("operation", "delete expired reset tokens").
			Wrap(err)
	}
	return tag.RowsAffected(), nil
}

// Compile-time interface check.
var _ auth.ResetTokenRepository = (*ResetTokenRepository)(nil)
