// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

package auth

import (
	"context"
	"errors"

	"github.com/samber/oops"
)

// dummySecretHash is verified against when a login targets an unknown email,
// so response time does not reveal whether the address exists. It is not a
// credential; no password hashes to it.
//
//nolint:gosec // G101: intentionally fake hash for timing-attack prevention.
const dummySecretHash = "$2a$12$AAAAAAAAAAAAAAAAAAAAAOxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxx"

// UserService manages account records and performs credential checks.
type UserService struct {
	users  UserRepository
	hasher SecretHasher
	tokens TokenGenerator
	fields []UserField
}

// NewUserService creates a UserService. fields is the configured extension
// field schema and may be empty.
func NewUserService(users UserRepository, hasher SecretHasher, tokens TokenGenerator, fields []UserField) (*UserService, error) {
	if users == nil {
		return nil, oops.Errorf("user repository is required")
	}
	if hasher == nil {
		return nil, oops.Errorf("secret hasher is required")
	}
	if tokens == nil {
		return nil, oops.Errorf("token generator is required")
	}
	return &UserService{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		fields: fields,
	}, nil
}

// Create registers a new user. The email is validated and stored lowercased;
// uniqueness is enforced by the insert statement itself, so a duplicate is
// reported as DUPLICATE_EMAIL without a pre-check race.
func (s *UserService) Create(ctx context.Context, email, password string, extra map[string]any) (*User, error) {
	email = NormalizeEmail(email)
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}

	hashed, err := s.hasher.Hash(password)
	if err != nil {
		return nil, oops.Code(CodeUnexpected).
			With("operation", "hash password").
			Wrap(err)
	}

	user := &User{
		ID:           s.tokens.NewID(),
		Email:        email,
		PasswordHash: hashed,
		Extra:        s.knownExtra(extra),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			return nil, oops.Code(CodeDuplicateEmail).
				Errorf("Duplicate email")
		}
		return nil, oops.Code(CodeUnexpected).
			With("operation", "insert user").
			Wrap(err)
	}

	user.PasswordHash = ""
	return user, nil
}

// Get retrieves a user by id, disabled or not.
func (s *UserService) Get(ctx context.Context, id string) (*User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, oops.Code(CodeUserNotFound).
				With("user_id", id).
				Errorf("User not found")
		}
		return nil, oops.Code(CodeUnexpected).
			With("operation", "get user by id").
			Wrap(err)
	}
	return user, nil
}

// GetAll lists users, optionally including disabled ones.
func (s *UserService) GetAll(ctx context.Context, includeDisabled bool) ([]*User, error) {
	users, err := s.users.GetAll(ctx, includeDisabled)
	if err != nil {
		return nil, oops.Code(CodeUnexpected).
			With("operation", "list users").
			Wrap(err)
	}
	return users, nil
}

// Update applies profile changes (email and extension fields). Reports
// whether anything was updated; an empty change set is a no-op success.
func (s *UserService) Update(ctx context.Context, id string, changes map[string]any) (bool, error) {
	filtered := s.knownExtra(changes)
	if rawEmail, ok := changes["email"]; ok {
		email, ok := rawEmail.(string)
		if !ok {
			return false, oops.Code(CodeInvalidEmailAddress).Errorf("Invalid email address")
		}
		email = NormalizeEmail(email)
		if err := ValidateEmail(email); err != nil {
			return false, err
		}
		filtered["email"] = email
	}
	if len(filtered) == 0 {
		return false, nil
	}

	updated, err := s.users.Update(ctx, id, filtered)
	if err != nil {
		return false, oops.Code(CodeUpdateFailed).
			With("operation", "update user").
			With("user_id", id).
			Wrap(err)
	}
	return updated, nil
}

// Disable excludes a user from authentication and reset issuance.
func (s *UserService) Disable(ctx context.Context, id string) (bool, error) {
	return s.setDisabled(ctx, id, true)
}

// Enable restores a disabled user.
func (s *UserService) Enable(ctx context.Context, id string) (bool, error) {
	return s.setDisabled(ctx, id, false)
}

func (s *UserService) setDisabled(ctx context.Context, id string, disabled bool) (bool, error) {
	updated, err := s.users.SetDisabled(ctx, id, disabled)
	if err != nil {
		return false, oops.Code(CodeUpdateFailed).
			With("operation", "set disabled flag").
			With("user_id", id).
			With("disabled", disabled).
			Wrap(err)
	}
	return updated, nil
}

// Auth checks an email/password pair against the store without creating a
// session. Unknown, disabled, and wrong-password cases all return the same
// INVALID_CREDENTIALS error, and a dummy hash is verified when no user
// matched so the timing stays flat.
func (s *UserService) Auth(ctx context.Context, email, password string) (*User, error) {
	user, lookupErr := s.users.GetByEmail(ctx, NormalizeEmail(email))

	targetHash := dummySecretHash
	if lookupErr == nil {
		targetHash = user.PasswordHash
	} else if !errors.Is(lookupErr, ErrNotFound) {
		return nil, oops.Code(CodeUnexpected).
			With("operation", "get user by email").
			Wrap(lookupErr)
	}

	valid := s.hasher.Verify(password, targetHash)
	if lookupErr != nil || !valid {
		return nil, oops.Code(CodeInvalidCredentials).Errorf("Invalid credentials")
	}

	user.PasswordHash = ""
	return user, nil
}

// UpdatePassword hashes and stores a new password for the enabled user
// matched by email. Reports whether a row was updated.
func (s *UserService) UpdatePassword(ctx context.Context, email, newPassword string) (bool, error) {
	hashed, err := s.hasher.Hash(newPassword)
	if err != nil {
		return false, oops.Code(CodeUnexpected).
			With("operation", "hash new password").
			Wrap(err)
	}
	updated, err := s.users.UpdatePassword(ctx, NormalizeEmail(email), hashed)
	if err != nil {
		return false, oops.Code(CodeUpdateFailed).
			With("operation", "update password").
			Wrap(err)
	}
	return updated, nil
}

// knownExtra filters a change set down to configured extension field keys.
func (s *UserService) knownExtra(data map[string]any) map[string]any {
	out := make(map[string]any)
	for _, f := range s.fields {
		if v, ok := data[f.Key]; ok {
			out[f.Key] = v
		}
	}
	return out
}
