// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

package auth_test

import (
	"errors"
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/authgate/authgate/internal/auth"
)

func TestSuccess(t *testing.T) {
	t.Run("wraps payload", func(t *testing.T) {
		out := auth.Success(map[string]any{"sid": "abc"})
		assert.True(t, out.OK)
		assert.Equal(t, "abc", out.Data["sid"])
	})

	t.Run("nil payload becomes empty object", func(t *testing.T) {
		out := auth.Success(nil)
		assert.True(t, out.OK)
		assert.NotNil(t, out.Data)
		assert.Empty(t, out.Data)
	})
}

func TestFailure_CodedError(t *testing.T) {
	err := oops.Code(auth.CodeInvalidCredentials).Errorf("Invalid credentials")

	out := auth.Failure(err, false)

	assert.False(t, out.OK)
	assert.Equal(t, auth.CodeInvalidCredentials, out.Data["code"])
	assert.Equal(t, 403, out.Data["status"])
	assert.Equal(t, "Invalid credentials", out.Data["msg"])
	assert.NotContains(t, out.Data, "dev")
}

func TestFailure_StatusMapping(t *testing.T) {
	tests := []struct {
		code   string
		status int
	}{
		{code: auth.CodeTokenInvalid, status: 403},
		{code: auth.CodeSessionInvalid, status: 403},
		{code: auth.CodeEmailNotFound, status: 403},
		{code: auth.CodeMailNotSent, status: 502},
		{code: auth.CodeDuplicateEmail, status: 400},
		{code: auth.CodeInvalidEmailAddress, status: 400},
		{code: auth.CodeUserNotFound, status: 404},
		{code: auth.CodeCannotBootstrap, status: 409},
		{code: auth.CodeUpdateFailed, status: 500},
		{code: auth.CodeUnexpected, status: 500},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			out := auth.Failure(oops.Code(tt.code).Errorf("boom"), false)
			assert.Equal(t, tt.status, out.Data["status"])
		})
	}
}

func TestFailure_StatusOverride(t *testing.T) {
	err := oops.Code(auth.CodeCannotBootstrap).
		With("status", 403).
		Errorf("You cannot bootstrap without the secret code")

	out := auth.Failure(err, false)

	assert.Equal(t, 403, out.Data["status"])
}

func TestFailure_DevMode(t *testing.T) {
	err := oops.Code(auth.CodeTokenInvalid).
		With("reason", "token does not match").
		Errorf("Invalid token")

	t.Run("production hides diagnostics", func(t *testing.T) {
		out := auth.Failure(err, false)
		assert.NotContains(t, out.Data, "dev")
	})

	t.Run("development includes context", func(t *testing.T) {
		out := auth.Failure(err, true)
		dev, ok := out.Data["dev"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "token does not match", dev["reason"])
	})

	t.Run("status override is not echoed as a diagnostic", func(t *testing.T) {
		overridden := oops.Code(auth.CodeCannotBootstrap).
			With("status", 403).
			Errorf("no")
		out := auth.Failure(overridden, true)
		assert.NotContains(t, out.Data, "dev")
	})
}

func TestFailure_WrappedCauseNotLeaked(t *testing.T) {
	cause := errors.New("pq: connection refused to db.internal:5432")
	err := oops.Code(auth.CodeUnexpected).
		With("operation", "insert session").
		Wrap(cause)

	out := auth.Failure(err, false)

	msg, ok := out.Data["msg"].(string)
	require.True(t, ok)
	assert.NotContains(t, msg, "db.internal")
}

func TestFailure_UncodedError(t *testing.T) {
	t.Run("plain error collapses to unexpected", func(t *testing.T) {
		out := auth.Failure(errors.New("kaboom"), false)
		assert.Equal(t, auth.CodeUnexpected, out.Data["code"])
		assert.Equal(t, 500, out.Data["status"])
		assert.Equal(t, "Unexpected", out.Data["msg"])
		assert.NotContains(t, out.Data, "dev")
	})

	t.Run("plain error message kept in dev mode", func(t *testing.T) {
		out := auth.Failure(errors.New("kaboom"), true)
		dev, ok := out.Data["dev"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "kaboom", dev["error"])
	})
}
