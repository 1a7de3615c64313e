// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/authgate/authgate/internal/auth"
)

func TestNewBcryptHasher_ClampsCost(t *testing.T) {
	tests := []struct {
		name string
		cost int
		want int
	}{
		{name: "below minimum falls back to default", cost: auth.MinBcryptCost - 1, want: auth.DefaultBcryptCost},
		{name: "zero falls back to default", cost: 0, want: auth.DefaultBcryptCost},
		{name: "above maximum falls back to default", cost: auth.MaxBcryptCost + 1, want: auth.DefaultBcryptCost},
		{name: "valid cost kept", cost: auth.MinBcryptCost, want: auth.MinBcryptCost},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := auth.NewBcryptHasher(tt.cost)
			assert.Equal(t, tt.want, h.Cost())
		})
	}
}

func TestBcryptHasher_HashAndVerify(t *testing.T) {
	h := auth.NewBcryptHasher(auth.MinBcryptCost)

	hash, err := h.Hash("correct horse battery staple")
	require.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.NotEqual(t, "correct horse battery staple", hash)

	assert.True(t, h.Verify("correct horse battery staple", hash))
	assert.False(t, h.Verify("wrong password", hash))
}

func TestBcryptHasher_HashesDiffer(t *testing.T) {
	h := auth.NewBcryptHasher(auth.MinBcryptCost)

	first, err := h.Hash("same secret")
	require.NoError(t, err)
	second, err := h.Hash("same secret")
	require.NoError(t, err)

	// Salted: equal inputs never produce equal hashes.
	assert.NotEqual(t, first, second)
	assert.True(t, h.Verify("same secret", first))
	assert.True(t, h.Verify("same secret", second))
}

func TestBcryptHasher_EmptySecret(t *testing.T) {
	h := auth.NewBcryptHasher(auth.MinBcryptCost)

	_, err := h.Hash("")
	require.Error(t, err)
	assert.ErrorIs(t, err, auth.ErrEmptySecret)
}

func TestBcryptHasher_VerifyFailsClosed(t *testing.T) {
	h := auth.NewBcryptHasher(auth.MinBcryptCost)

	tests := []struct {
		name      string
		candidate string
		hash      string
	}{
		{name: "empty candidate", candidate: "", hash: "$2a$04$abcdefghijklmnopqrstuv"},
		{name: "empty hash", candidate: "secret", hash: ""},
		{name: "malformed hash", candidate: "secret", hash: "not-a-bcrypt-hash"},
		{name: "truncated hash", candidate: "secret", hash: "$2a$04$short"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, h.Verify(tt.candidate, tt.hash))
		})
	}
}
