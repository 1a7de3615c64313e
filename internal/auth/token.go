// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

package auth

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// SecretTokenBytes is the entropy of a bearer secret. 32 bytes = 64 hex chars.
const SecretTokenBytes = 32

// TokenGenerator produces opaque identifiers and high-entropy bearer secrets.
// Collision probability is cryptographically negligible; the store's unique
// constraints remain the final backstop.
type TokenGenerator interface {
	// NewID returns a unique opaque identifier for user, session, and
	// reset rows. Callers must not rely on any internal structure.
	NewID() string

	// NewSecretToken returns a high-entropy printable bearer secret,
	// generated independently of the hashed form stored at rest.
	NewSecretToken() (string, error)
}

// ULIDTokenGenerator implements TokenGenerator with ULID identifiers and
// crypto/rand hex tokens.
type ULIDTokenGenerator struct{}

// NewULIDTokenGenerator creates a ULIDTokenGenerator.
func NewULIDTokenGenerator() *ULIDTokenGenerator {
	return &ULIDTokenGenerator{}
}

// NewID returns a fresh ULID string.
func (g *ULIDTokenGenerator) NewID() string {
	return ulid.Make().String()
}

// NewSecretToken returns SecretTokenBytes of randomness, hex-encoded.
func (g *ULIDTokenGenerator) NewSecretToken() (string, error) {
	buf := make([]byte, SecretTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", oops.Code("TOKEN_GENERATE_FAILED").
			With("operation", "crypto/rand.Read").
			With("requested_bytes", SecretTokenBytes).
			Wrap(err)
	}
	return hex.EncodeToString(buf), nil
}

// Compile-time interface check.
var _ TokenGenerator = (*ULIDTokenGenerator)(nil)
