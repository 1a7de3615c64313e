// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

// Package postgres provides PostgreSQL implementations of the auth
// repositories.
package postgres

import (
	"context"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"

	"github.com/authgate/authgate/internal/auth"
)

// DB is the query surface the repositories need. Satisfied by
// *pgxpool.Pool in production and pgxmock.PgxPoolIface in tests.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// prefixRegex matches allowed table-name prefixes. Empty is allowed.
var prefixRegex = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// Tables resolves configured table names and extension columns once at
// setup. Only identifiers validated here are ever interpolated into SQL
// text; all caller data travels as positional parameters.
type Tables struct {
	Users       string
	Sessions    string
	ResetTokens string

	fields []auth.UserField
}

// NewTables validates the prefix and extension-field schema and resolves the
// physical table names.
func NewTables(prefix string, fields []auth.UserField) (*Tables, error) {
	if prefix != "" && !prefixRegex.MatchString(prefix) {
		return nil, oops.Code("CONFIG_INVALID_PREFIX").
			With("prefix", prefix).
			Errorf("table prefix is not a valid identifier")
	}
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		if err := f.Validate(); err != nil {
			return nil, err
		}
		if seen[f.Column] {
			return nil, oops.Code("CONFIG_INVALID_USER_FIELD").
				With("column", f.Column).
				Errorf("duplicate user field column")
		}
		seen[f.Column] = true
	}
	return &Tables{
		Users:       prefix + "users",
		Sessions:    prefix + "sessions",
		ResetTokens: prefix + "reset_tokens",
		fields:      fields,
	}, nil
}

// Fields returns the configured extension field schema.
func (t *Tables) Fields() []auth.UserField {
	return t.fields
}

// extraSelect renders the extension columns as a trailing select-list
// fragment, e.g. ", short_name, full_name", or "" when none are configured.
func (t *Tables) extraSelect() string {
	if len(t.fields) == 0 {
		return ""
	}
	cols := make([]string, len(t.fields))
	for i, f := range t.fields {
		cols[i] = f.Column
	}
	return ", " + strings.Join(cols, ", ")
}

// columnFor maps a change-set key to its storage column. The built-in email
// key maps to itself; extension keys map through the configured schema.
func (t *Tables) columnFor(key string) (string, bool) {
	if key == "email" {
		return "email", true
	}
	for _, f := range t.fields {
		if f.Key == key {
			return f.Column, true
		}
	}
	return "", false
}
