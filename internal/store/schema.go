// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/samber/oops"

	"github.com/authgate/authgate/internal/auth"
	"github.com/authgate/authgate/internal/auth/postgres"
)

// Schema renders and applies the DDL for a deployment with a table prefix
// and extension fields, which the static migration files cannot express.
// Identifiers are validated by postgres.NewTables before they reach any SQL
// text.
type Schema struct {
	tables *postgres.Tables
	fields []auth.UserField
}

// NewSchema creates a Schema from a validated table layout.
func NewSchema(tables *postgres.Tables) *Schema {
	return &Schema{tables: tables, fields: tables.Fields()}
}

// DDL renders the idempotent create statements for the configured layout.
func (s *Schema) DDL() string {
	var extra strings.Builder
	for _, f := range s.fields {
		fmt.Fprintf(&extra, ",\n    %s %s", f.Column, f.Type)
	}

	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
    user_id TEXT PRIMARY KEY,
    email TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    disabled BOOLEAN NOT NULL DEFAULT FALSE%s
);

CREATE TABLE IF NOT EXISTS %s (
    session_id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL REFERENCES %s (user_id) ON DELETE CASCADE,
    token_hash TEXT NOT NULL,
    expires TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS %s_expires_idx ON %s (expires);

CREATE TABLE IF NOT EXISTS %s (
    reset_id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL REFERENCES %s (user_id) ON DELETE CASCADE,
    token_hash TEXT NOT NULL,
    expires TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS %s_expires_idx ON %s (expires);
`,
		s.tables.Users, extra.String(),
		s.tables.Sessions, s.tables.Users,
		s.tables.Sessions, s.tables.Sessions,
		s.tables.ResetTokens, s.tables.Users,
		s.tables.ResetTokens, s.tables.ResetTokens,
	)
}

// Ensure applies the rendered DDL. Safe to run repeatedly.
func (s *Schema) Ensure(ctx context.Context, db postgres.DB) error {
	if _, err := db.Exec(ctx, s.DDL()); err != nil {
		return oops.Code("SCHEMA_ENSURE_FAILED").
			With("operation", "apply schema DDL").
			Wrap(err)
	}
	return nil
}
