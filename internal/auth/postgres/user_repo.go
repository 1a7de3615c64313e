// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"

	"github.com/authgate/authgate/internal/auth"
)

// UserRepository implements auth.UserRepository using PostgreSQL.
type UserRepository struct {
	db     DB
	tables *Tables
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db DB, tables *Tables) *UserRepository {
	return &UserRepository{db: db, tables: tables}
}

// Create stores a new user. Uniqueness is enforced by the insert itself:
// ON CONFLICT DO NOTHING plus RETURNING means a duplicate email yields zero
// rows with no separate existence check to race against.
func (r *UserRepository) Create(ctx context.Context, user *auth.User) error {
	cols := []string{"user_id", "email", "password_hash"}
	vals := []any{user.ID, user.Email, user.PasswordHash}
	for _, f := range r.tables.Fields() {
		if v, ok := user.Extra[f.Key]; ok {
			cols = append(cols, f.Column)
			vals = append(vals, v)
		}
	}
	placeholders := make([]string, len(cols))
	for i := range cols {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	var id string
	err := r.db.QueryRow(ctx, fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES (%s)
		ON CONFLICT (email) DO NOTHING
		RETURNING user_id`,
		r.tables.Users, strings.Join(cols, ", "), strings.Join(placeholders, ", "),
	), vals...).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return oops.Code("USER_CREATE_CONFLICT").
			With("email", user.Email).
			Wrap(auth.ErrDuplicateEmail)
	}
	if err != nil {
		// ON CONFLICT only covers the email index. A violation on any
		// other unique constraint (case-folded index, id collision) is
		// still a duplicate from the caller's point of view.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return oops.Code("USER_CREATE_CONFLICT").
				With("email", user.Email).
				With("constraint", pgErr.ConstraintName).
				Wrap(auth.ErrDuplicateEmail)
		}
		return oops.Code("USER_CREATE_FAILED").
			With("operation", "insert user").
			Wrap(err)
	}
	return nil
}

// GetByID retrieves a user by id, including disabled users. The password
// hash is not selected; id lookups serve profile reads, not credential
// checks.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*auth.User, error) {
	row := r.db.QueryRow(ctx, fmt.Sprintf(`
		SELECT user_id, email, disabled%s
		FROM %s
		WHERE user_id = $1`,
		r.tables.extraSelect(), r.tables.Users,
	), id)

	user, err := r.scanUser(row, false)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("USER_NOT_FOUND").
			With("user_id", id).
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("USER_GET_BY_ID_FAILED").
			With("operation", "get user by id").
			With("user_id", id).
			Wrap(err)
	}
	return user, nil
}

// GetByEmail retrieves an enabled user by normalized email, password hash
// included. Disabled and unknown addresses are indistinguishable.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	row := r.db.QueryRow(ctx, fmt.Sprintf(`
		SELECT user_id, email, disabled, password_hash%s
		FROM %s
		WHERE email = $1
		AND disabled IS FALSE`,
		r.tables.extraSelect(), r.tables.Users,
	), email)

	user, err := r.scanUser(row, true)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("USER_NOT_FOUND").Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("USER_GET_BY_EMAIL_FAILED").
			With("operation", "get user by email").
			Wrap(err)
	}
	return user, nil
}

// GetAll lists users ordered by email.
func (r *UserRepository) GetAll(ctx context.Context, includeDisabled bool) ([]*auth.User, error) {
	where := "disabled IS FALSE"
	if includeDisabled {
		where = "TRUE"
	}
	rows, err := r.db.Query(ctx, fmt.Sprintf(`
		SELECT user_id, email, disabled%s
		FROM %s
		WHERE %s
		ORDER BY email`,
		r.tables.extraSelect(), r.tables.Users, where,
	))
	if err != nil {
		return nil, oops.Code("USER_LIST_FAILED").
			With("operation", "list users").
			Wrap(err)
	}
	defer rows.Close()

	var users []*auth.User
	for rows.Next() {
		user, err := r.scanUser(rows, false)
		if err != nil {
			return nil, oops.Code("USER_SCAN_FAILED").
				With("operation", "scan user row").
				Wrap(err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("USER_ROWS_ERROR").
			With("operation", "iterate user rows").
			Wrap(err)
	}
	return users, nil
}

// Update applies a change set of storage-keyed values. The affected count
// comes from the same statement as the write.
func (r *UserRepository) Update(ctx context.Context, id string, changes map[string]any) (bool, error) {
	sets := make([]string, 0, len(changes))
	vals := make([]any, 0, len(changes)+1)
	vals = append(vals, id)
	for _, f := range append([]auth.UserField{{Key: "email", Column: "email"}}, r.tables.Fields()...) {
		v, ok := changes[f.Key]
		if !ok {
			continue
		}
		vals = append(vals, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", f.Column, len(vals)))
	}
	if len(sets) == 0 {
		return false, nil
	}

	tag, err := r.db.Exec(ctx, fmt.Sprintf(`
		UPDATE %s
		SET %s
		WHERE user_id = $1`,
		r.tables.Users, strings.Join(sets, ", "),
	), vals...)
	if err != nil {
		return false, oops.Code("USER_UPDATE_FAILED").
			With("operation", "update user").
			With("user_id", id).
			Wrap(err)
	}
	return tag.RowsAffected() > 0, nil
}

// SetDisabled flips the disabled flag and reports whether a row matched.
func (r *UserRepository) SetDisabled(ctx context.Context, id string, disabled bool) (bool, error) {
	tag, err := r.db.Exec(ctx, fmt.Sprintf(`
		UPDATE %s
		SET disabled = $2
		WHERE user_id = $1`,
		r.tables.Users,
	), id, disabled)
	if err != nil {
		return false, oops.Code("USER_SET_DISABLED_FAILED").
			With("operation", "set disabled flag").
			With("user_id", id).
			Wrap(err)
	}
	return tag.RowsAffected() > 0, nil
}

// UpdatePassword replaces the password hash for the enabled user matched by
// email.
func (r *UserRepository) UpdatePassword(ctx context.Context, email, passwordHash string) (bool, error) {
	tag, err := r.db.Exec(ctx, fmt.Sprintf(`
		UPDATE %s
		SET password_hash = $1
		WHERE email = $2
		AND disabled IS FALSE`,
		r.tables.Users,
	), passwordHash, email)
	if err != nil {
		return false, oops.Code("USER_UPDATE_PASSWORD_FAILED").
			With("operation", "update password").
			Wrap(err)
	}
	return tag.RowsAffected() > 0, nil
}

// scanUser scans a row laid out as user_id, email, disabled
// [, password_hash][, extension columns...]. Callers handle pgx.ErrNoRows.
func (r *UserRepository) scanUser(row pgx.Row, withPassword bool) (*auth.User, error) {
	user := &auth.User{Extra: make(map[string]any)}
	dest := []any{&user.ID, &user.Email, &user.Disabled}
	if withPassword {
		dest = append(dest, &user.PasswordHash)
	}
	fields := r.tables.Fields()
	extras := make([]any, len(fields))
	for i := range fields {
		extras[i] = new(any)
	}
	dest = append(dest, extras...)

	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err //nolint:wrapcheck // callers wrap with context
		}
		return nil, oops.Code("USER_SCAN_FAILED").
			With("operation", "scan user").
			Wrap(err)
	}
	for i, f := range fields {
		user.Extra[f.Key] = *(extras[i].(*any))
	}
	return user, nil
}

// Compile-time interface check.
var _ auth.UserRepository = (*UserRepository)(nil)
