// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

package auth

import (
	"github.com/samber/oops"
	"golang.org/x/crypto/bcrypt"
)

// Bcrypt cost bounds. DefaultBcryptCost trades roughly 100ms per hash on
// current hardware against brute-force resistance.
const (
	MinBcryptCost     = bcrypt.MinCost
	MaxBcryptCost     = bcrypt.MaxCost
	DefaultBcryptCost = 12
)

// ErrEmptySecret is returned when attempting to hash an empty secret.
var ErrEmptySecret = oops.Code("AUTH_EMPTY_SECRET").Errorf("secret cannot be empty")

// SecretHasher provides one-way hashing and verification of secrets:
// passwords, session tokens, and reset tokens all go through the same
// primitive so none of them is ever stored in clear.
type SecretHasher interface {
	// Hash produces a salted, irreversible hash of the secret.
	Hash(secret string) (string, error)

	// Verify reports whether candidate matches the stored hash.
	// It never fails: a malformed or foreign hash verifies as false.
	Verify(candidate, hash string) bool
}

// BcryptHasher implements SecretHasher using bcrypt with a tunable cost.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher creates a BcryptHasher. Costs outside the valid bcrypt
// range are clamped to the default.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < MinBcryptCost || cost > MaxBcryptCost {
		cost = DefaultBcryptCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash produces a bcrypt hash of the secret. Hashing failures are unexpected
// and surfaced to the caller, never retried.
func (h *BcryptHasher) Hash(secret string) (string, error) {
	if secret == "" {
		return "", ErrEmptySecret
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(secret), h.cost)
	if err != nil {
		return "", oops.Code("AUTH_HASH_FAILED").
			With("cost", h.cost).
			Wrap(err)
	}
	return string(hashed), nil
}

// Verify reports whether candidate matches hash. bcrypt's comparison is
// constant-time with respect to the candidate; any parse error on the stored
// hash fails closed.
func (h *BcryptHasher) Verify(candidate, hash string) bool {
	if candidate == "" || hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(candidate)) == nil
}

// Cost returns the configured bcrypt cost.
func (h *BcryptHasher) Cost() int {
	return h.cost
}

// Compile-time interface check.
var _ SecretHasher = (*BcryptHasher)(nil)
