// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

package auth

import (
	"context"
	"regexp"
	"strings"

	"github.com/samber/oops"
)

// emailRegex is a pragmatic check, not a full RFC 5322 parser: one @, no
// whitespace, at least one dot in the domain.
var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// identRegex matches safe SQL identifiers for configured extension columns.
var identRegex = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// typeRegex matches allowed storage type expressions, e.g. "text",
// "varchar(100)", "timestamp with time zone".
var typeRegex = regexp.MustCompile(`^[a-z][a-z0-9_ ]*(\([0-9, ]+\))?$`)

// User represents an account record. Extra carries the values of configured
// extension fields, keyed by field key (not storage column).
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Disabled     bool
	Extra        map[string]any
}

// UserField declares a caller-defined extension field on the users table.
// Validated once at configuration time; repositories interpolate only the
// validated Column into SQL text.
type UserField struct {
	Key    string `koanf:"key"`
	Column string `koanf:"column"`
	Type   string `koanf:"type"`
}

// Validate checks that the field triple is usable and its identifiers safe.
func (f UserField) Validate() error {
	if f.Key == "" {
		return oops.Code("CONFIG_INVALID_USER_FIELD").Errorf("user field key cannot be empty")
	}
	if !identRegex.MatchString(f.Column) {
		return oops.Code("CONFIG_INVALID_USER_FIELD").
			With("key", f.Key).
			With("column", f.Column).
			Errorf("user field column is not a valid identifier")
	}
	if !typeRegex.MatchString(strings.ToLower(f.Type)) {
		return oops.Code("CONFIG_INVALID_USER_FIELD").
			With("key", f.Key).
			With("type", f.Type).
			Errorf("user field type is not a valid type name")
	}
	return nil
}

// NormalizeEmail lowercases an address for storage and lookup. Email
// uniqueness is enforced on the normalized form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail rejects malformed addresses before they reach the store.
func ValidateEmail(email string) error {
	if !emailRegex.MatchString(email) {
		return oops.Code(CodeInvalidEmailAddress).Errorf("Invalid email address")
	}
	return nil
}

// UserRepository manages user persistence.
type UserRepository interface {
	// Create stores a new user. Returns ErrDuplicateEmail (wrapped) when
	// the email is already taken; the uniqueness check and the insert are
	// a single statement.
	Create(ctx context.Context, user *User) error

	// GetByID retrieves a user by id, including disabled users.
	GetByID(ctx context.Context, id string) (*User, error)

	// GetByEmail retrieves an enabled user by normalized email, password
	// hash included. Returns ErrNotFound for unknown and disabled
	// addresses alike.
	GetByEmail(ctx context.Context, email string) (*User, error)

	// GetAll lists users, optionally including disabled ones.
	GetAll(ctx context.Context, includeDisabled bool) ([]*User, error)

	// Update applies email and extension-field changes. Reports whether
	// any row was affected, counted in the same statement as the write.
	Update(ctx context.Context, id string, changes map[string]any) (bool, error)

	// SetDisabled flips the disabled flag. Reports whether a row matched.
	SetDisabled(ctx context.Context, id string, disabled bool) (bool, error)

	// UpdatePassword replaces the password hash for an enabled user,
	// matched by normalized email. Reports whether a row was updated.
	UpdatePassword(ctx context.Context, email, passwordHash string) (bool, error)
}
