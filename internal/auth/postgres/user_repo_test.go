// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/authgate/authgate/internal/auth"
)

func newUserRepo(t *testing.T, fields []auth.UserField) (*UserRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err, "failed to create mock")
	t.Cleanup(mock.Close)

	tables, err := NewTables("", fields)
	require.NoError(t, err)
	return NewUserRepository(mock, tables), mock
}

func TestUserRepository_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("inserts base columns", func(t *testing.T) {
		repo, mock := newUserRepo(t, nil)

		mock.ExpectQuery(`INSERT INTO users \(user_id, email, password_hash\)`).
			WithArgs("UID1", "user@example.com", "hashed").
			WillReturnRows(pgxmock.NewRows([]string{"user_id"}).AddRow("UID1"))

		err := repo.Create(ctx, &auth.User{
			ID:           "UID1",
			Email:        "user@example.com",
			PasswordHash: "hashed",
		})
		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("inserts extension columns when present", func(t *testing.T) {
		repo, mock := newUserRepo(t, []auth.UserField{
			{Key: "name", Column: "display_name", Type: "text"},
		})

		mock.ExpectQuery(`INSERT INTO users \(user_id, email, password_hash, display_name\)`).
			WithArgs("UID1", "user@example.com", "hashed", "Ada").
			WillReturnRows(pgxmock.NewRows([]string{"user_id"}).AddRow("UID1"))

		err := repo.Create(ctx, &auth.User{
			ID:           "UID1",
			Email:        "user@example.com",
			PasswordHash: "hashed",
			Extra:        map[string]any{"name": "Ada"},
		})
		require.NoError(t, err)
	})

	t.Run("duplicate email yields no row", func(t *testing.T) {
		repo, mock := newUserRepo(t, nil)

		mock.ExpectQuery(`INSERT INTO users`).
			WithArgs("UID1", "taken@example.com", "hashed").
			WillReturnRows(pgxmock.NewRows([]string{"user_id"}))

		err := repo.Create(ctx, &auth.User{
			ID:           "UID1",
			Email:        "taken@example.com",
			PasswordHash: "hashed",
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, auth.ErrDuplicateEmail)
	})

	t.Run("unique violation outside the email index", func(t *testing.T) {
		repo, mock := newUserRepo(t, nil)

		mock.ExpectQuery(`INSERT INTO users`).
			WithArgs("UID1", "user@example.com", "hashed").
			WillReturnError(&pgconn.PgError{
				Code:           pgerrcode.UniqueViolation,
				ConstraintName: "users_email_lower_idx",
			})

		err := repo.Create(ctx, &auth.User{
			ID:           "UID1",
			Email:        "user@example.com",
			PasswordHash: "hashed",
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, auth.ErrDuplicateEmail)
	})
}

func TestUserRepository_GetByID(t *testing.T) {
	ctx := context.Background()

	t.Run("found with extension fields", func(t *testing.T) {
		repo, mock := newUserRepo(t, []auth.UserField{
			{Key: "name", Column: "display_name", Type: "text"},
		})

		rows := pgxmock.NewRows([]string{"user_id", "email", "disabled", "display_name"}).
			AddRow("UID1", "user@example.com", false, "Ada")
		mock.ExpectQuery(`SELECT user_id, email, disabled, display_name\s+FROM users`).
			WithArgs("UID1").
			WillReturnRows(rows)

		user, err := repo.GetByID(ctx, "UID1")
		require.NoError(t, err)
		assert.Equal(t, "UID1", user.ID)
		assert.Equal(t, "user@example.com", user.Email)
		assert.False(t, user.Disabled)
		assert.Equal(t, "Ada", user.Extra["name"])
		assert.Empty(t, user.PasswordHash)
	})

	t.Run("not found", func(t *testing.T) {
		repo, mock := newUserRepo(t, nil)

		mock.ExpectQuery(`SELECT user_id, email, disabled\s+FROM users`).
			WithArgs("GONE").
			WillReturnRows(pgxmock.NewRows([]string{"user_id", "email", "disabled"}))

		_, err := repo.GetByID(ctx, "GONE")
		require.Error(t, err)
		assert.ErrorIs(t, err, auth.ErrNotFound)
	})
}

func TestUserRepository_GetByEmail(t *testing.T) {
	ctx := context.Background()

	t.Run("enabled user includes password hash", func(t *testing.T) {
		repo, mock := newUserRepo(t, nil)

		rows := pgxmock.NewRows([]string{"user_id", "email", "disabled", "password_hash"}).
			AddRow("UID1", "user@example.com", false, "stored-hash")
		mock.ExpectQuery(`SELECT user_id, email, disabled, password_hash\s+FROM users`).
			WithArgs("user@example.com").
			WillReturnRows(rows)

		user, err := repo.GetByEmail(ctx, "user@example.com")
		require.NoError(t, err)
		assert.Equal(t, "stored-hash", user.PasswordHash)
	})

	t.Run("disabled user is invisible", func(t *testing.T) {
		repo, mock := newUserRepo(t, nil)

		mock.ExpectQuery(`SELECT user_id, email, disabled, password_hash\s+FROM users`).
			WithArgs("disabled@example.com").
			WillReturnRows(pgxmock.NewRows([]string{"user_id", "email", "disabled", "password_hash"}))

		_, err := repo.GetByEmail(ctx, "disabled@example.com")
		require.Error(t, err)
		assert.ErrorIs(t, err, auth.ErrNotFound)
	})
}

func TestUserRepository_GetAll(t *testing.T) {
	ctx := context.Background()

	t.Run("enabled only", func(t *testing.T) {
		repo, mock := newUserRepo(t, nil)

		rows := pgxmock.NewRows([]string{"user_id", "email", "disabled"}).
			AddRow("UID1", "a@example.com", false).
			AddRow("UID2", "b@example.com", false)
		mock.ExpectQuery(`SELECT user_id, email, disabled\s+FROM users\s+WHERE disabled IS FALSE`).
			WillReturnRows(rows)

		users, err := repo.GetAll(ctx, false)
		require.NoError(t, err)
		require.Len(t, users, 2)
		assert.Equal(t, "a@example.com", users[0].Email)
	})

	t.Run("including disabled", func(t *testing.T) {
		repo, mock := newUserRepo(t, nil)

		rows := pgxmock.NewRows([]string{"user_id", "email", "disabled"}).
			AddRow("UID1", "a@example.com", true)
		mock.ExpectQuery(`SELECT user_id, email, disabled\s+FROM users\s+WHERE TRUE`).
			WillReturnRows(rows)

		users, err := repo.GetAll(ctx, true)
		require.NoError(t, err)
		require.Len(t, users, 1)
		assert.True(t, users[0].Disabled)
	})

	t.Run("database error", func(t *testing.T) {
		repo, mock := newUserRepo(t, nil)

		mock.ExpectQuery(`SELECT user_id, email, disabled\s+FROM users`).
			WillReturnError(errors.New("connection refused"))

		_, err := repo.GetAll(ctx, false)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection refused")
	})
}

func TestUserRepository_Update(t *testing.T) {
	ctx := context.Background()
	fields := []auth.UserField{
		{Key: "name", Column: "display_name", Type: "text"},
	}

	t.Run("updates email and extension columns", func(t *testing.T) {
		repo, mock := newUserRepo(t, fields)

		mock.ExpectExec(`UPDATE users\s+SET email = \$2, display_name = \$3\s+WHERE user_id = \$1`).
			WithArgs("UID1", "new@example.com", "Grace").
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		updated, err := repo.Update(ctx, "UID1", map[string]any{
			"email": "new@example.com",
			"name":  "Grace",
		})
		require.NoError(t, err)
		assert.True(t, updated)
	})

	t.Run("unknown keys are ignored entirely", func(t *testing.T) {
		repo, _ := newUserRepo(t, fields)

		updated, err := repo.Update(ctx, "UID1", map[string]any{"rogue": "value"})
		require.NoError(t, err)
		assert.False(t, updated)
	})

	t.Run("missing user reports no update", func(t *testing.T) {
		repo, mock := newUserRepo(t, fields)

		mock.ExpectExec(`UPDATE users`).
			WithArgs("GONE", "Grace").
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		updated, err := repo.Update(ctx, "GONE", map[string]any{"name": "Grace"})
		require.NoError(t, err)
		assert.False(t, updated)
	})
}

func TestUserRepository_SetDisabled(t *testing.T) {
	ctx := context.Background()
	repo, mock := newUserRepo(t, nil)

	mock.ExpectExec(`UPDATE users\s+SET disabled = \$2\s+WHERE user_id = \$1`).
		WithArgs("UID1", true).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	updated, err := repo.SetDisabled(ctx, "UID1", true)
	require.NoError(t, err)
	assert.True(t, updated)
}

func TestUserRepository_UpdatePassword(t *testing.T) {
	ctx := context.Background()

	t.Run("updates enabled user", func(t *testing.T) {
		repo, mock := newUserRepo(t, nil)

		mock.ExpectExec(`UPDATE users\s+SET password_hash = \$1\s+WHERE email = \$2`).
			WithArgs("new-hash", "user@example.com").
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		updated, err := repo.UpdatePassword(ctx, "user@example.com", "new-hash")
		require.NoError(t, err)
		assert.True(t, updated)
	})

	t.Run("disabled or unknown user reports no update", func(t *testing.T) {
		repo, mock := newUserRepo(t, nil)

		mock.ExpectExec(`UPDATE users\s+SET password_hash = \$1\s+WHERE email = \$2`).
			WithArgs("new-hash", "ghost@example.com").
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		updated, err := repo.UpdatePassword(ctx, "ghost@example.com", "new-hash")
		require.NoError(t, err)
		assert.False(t, updated)
	})
}
