// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

package auth

import (
	"context"
	"crypto/subtle"
	"log/slog"

	"github.com/samber/oops"

	"github.com/authgate/authgate/pkg/errutil"
)

// EventRecorder receives the result of caller-facing auth events, such as
// login attempts, for metrics. Result is "success", "invalid", or "error".
type EventRecorder func(event, result string)

// Facade composes the session, reset, and user services into the verbs a
// caller (typically an HTTP layer) invokes, and converts internal errors into
// Outcome envelopes. Truly unexpected conditions are caught here and reported
// as UNEXPECTED rather than propagated as panics.
type Facade struct {
	users    *UserService
	sessions *SessionService
	resets   *ResetService
	recorder EventRecorder
	logger   *slog.Logger

	// bootstrapSecret, when non-empty, gates Bootstrap behind a shared
	// code compared as plain equality. A one-time setup convenience, not
	// a production auth boundary.
	bootstrapSecret string

	// devMode includes dev diagnostics in failure Outcomes.
	devMode bool
}

// NewFacade creates a Facade. logger may be nil, in which case slog.Default
// is used.
func NewFacade(users *UserService, sessions *SessionService, resets *ResetService, bootstrapSecret string, devMode bool, recorder EventRecorder, logger *slog.Logger) (*Facade, error) {
	if users == nil {
		return nil, oops.Errorf("user service is required")
	}
	if sessions == nil {
		return nil, oops.Errorf("session service is required")
	}
	if resets == nil {
		return nil, oops.Errorf("reset service is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Facade{
		users:           users,
		sessions:        sessions,
		resets:          resets,
		recorder:        recorder,
		logger:          logger,
		bootstrapSecret: bootstrapSecret,
		devMode:         devMode,
	}, nil
}

// Login authenticates an email/password pair and starts a session.
func (f *Facade) Login(ctx context.Context, email, password string) Outcome {
	user, err := f.users.Auth(ctx, email, password)
	if err != nil {
		f.observe("login", err)
		return f.fail("login", err)
	}
	started, err := f.sessions.Start(ctx, user.ID)
	if err != nil {
		f.observe("login", err)
		return f.fail("login", err)
	}
	f.observe("login", nil)
	return Success(map[string]any{
		"user": userPayload(user),
		"session": map[string]any{
			"sid":   started.SessionID,
			"uid":   started.UserID,
			"token": started.Token,
		},
		"expires": started.ExpiresAt,
	})
}

// AuthOnly checks credentials without creating a session.
func (f *Facade) AuthOnly(ctx context.Context, email, password string) Outcome {
	user, err := f.users.Auth(ctx, email, password)
	if err != nil {
		return f.fail("auth only", err)
	}
	return Success(userPayload(user))
}

// CheckSessionToken verifies a session and returns the refreshed expiry.
func (f *Facade) CheckSessionToken(ctx context.Context, sessionID, userID, token string) Outcome {
	expires, err := f.sessions.Verify(ctx, sessionID, userID, token)
	if err != nil {
		return f.fail("check session token", err)
	}
	return Success(map[string]any{
		"sid":     sessionID,
		"uid":     userID,
		"token":   token,
		"expires": expires,
	})
}

// Logout deletes a session by id.
func (f *Facade) Logout(ctx context.Context, sessionID string) Outcome {
	sid, err := f.sessions.Delete(ctx, sessionID)
	if err != nil {
		return f.fail("logout", err)
	}
	return Success(map[string]any{"sid": sid})
}

// ListActiveSessions returns all live sessions ordered by email then expiry.
func (f *Facade) ListActiveSessions(ctx context.Context) Outcome {
	active, err := f.sessions.ListActive(ctx)
	if err != nil {
		return f.fail("list active sessions", err)
	}
	all := make([]map[string]any, 0, len(active))
	for _, s := range active {
		all = append(all, map[string]any{
			"user_id":    s.UserID,
			"email":      s.Email,
			"session_id": s.SessionID,
			"expires":    s.ExpiresAt,
		})
	}
	return Success(map[string]any{"all": all})
}

// RequestPasswordReset issues a reset token and mails the reset link.
func (f *Facade) RequestPasswordReset(ctx context.Context, email string) Outcome {
	issued, err := f.resets.Request(ctx, email)
	if err != nil {
		f.observe("reset_request", err)
		return f.fail("request password reset", err)
	}
	if err := f.resets.SendEmail(ctx, issued); err != nil {
		f.observe("reset_request", err)
		return f.fail("request password reset", err)
	}
	f.observe("reset_request", nil)
	return Success(map[string]any{"sent": true})
}

// CheckResetToken validates a reset token without consuming it.
func (f *Facade) CheckResetToken(ctx context.Context, email, token string) Outcome {
	row, err := f.resets.CheckToken(ctx, email, token)
	if err != nil {
		return f.fail("check reset token", err)
	}
	return Success(map[string]any{
		"rid":     row.ID,
		"email":   row.Email,
		"expires": row.ExpiresAt,
	})
}

// ResetPassword consumes a valid reset token and sets the new password.
func (f *Facade) ResetPassword(ctx context.Context, email, token, newPassword string) Outcome {
	if err := f.resets.ResetPassword(ctx, email, token, newPassword); err != nil {
		return f.fail("reset password", err)
	}
	return Success(map[string]any{
		"email":   NormalizeEmail(email),
		"updated": true,
	})
}

// Bootstrap creates the very first user. Refuses when any user exists,
// disabled ones included, and optionally requires the configured shared
// secret code.
func (f *Facade) Bootstrap(ctx context.Context, email, password, secretCode string, extra map[string]any) Outcome {
	existing, err := f.users.GetAll(ctx, true)
	if err != nil {
		return f.fail("bootstrap", err)
	}
	if len(existing) > 0 {
		return f.fail("bootstrap", oops.Code(CodeCannotBootstrap).
			Errorf("You cannot bootstrap when there are already users"))
	}
	if f.bootstrapSecret != "" {
		// Plain equality on a setup convenience; constant-time anyway
		// since it costs nothing.
		if subtle.ConstantTimeCompare([]byte(secretCode), []byte(f.bootstrapSecret)) != 1 {
			return f.fail("bootstrap", oops.Code(CodeCannotBootstrap).
				With("status", 403).
				Errorf("You cannot bootstrap without the secret code"))
		}
	}
	user, err := f.users.Create(ctx, email, password, extra)
	if err != nil {
		return f.fail("bootstrap", err)
	}
	return Success(userPayload(user))
}

// CreateUser registers a new user record.
func (f *Facade) CreateUser(ctx context.Context, email, password string, extra map[string]any) Outcome {
	user, err := f.users.Create(ctx, email, password, extra)
	if err != nil {
		return f.fail("create user", err)
	}
	return Success(userPayload(user))
}

// GetUser retrieves a user by id.
func (f *Facade) GetUser(ctx context.Context, id string) Outcome {
	user, err := f.users.Get(ctx, id)
	if err != nil {
		return f.fail("get user", err)
	}
	return Success(map[string]any{"user": userPayload(user)})
}

// GetAllUsers lists users, optionally including disabled ones.
func (f *Facade) GetAllUsers(ctx context.Context, includeDisabled bool) Outcome {
	users, err := f.users.GetAll(ctx, includeDisabled)
	if err != nil {
		return f.fail("get all users", err)
	}
	all := make([]map[string]any, 0, len(users))
	for _, u := range users {
		all = append(all, userPayload(u))
	}
	return Success(map[string]any{"users": all})
}

// UpdateUser applies profile changes; a "newPassword" entry additionally
// rotates the password through the store.
func (f *Facade) UpdateUser(ctx context.Context, id string, changes map[string]any) Outcome {
	updated, err := f.users.Update(ctx, id, changes)
	if err != nil {
		return f.fail("update user", err)
	}
	data := map[string]any{"uid": id, "updated": updated}

	newPassword, hasPassword := changes["newPassword"].(string)
	email, hasEmail := changes["email"].(string)
	if hasPassword && hasEmail {
		changed, err := f.users.UpdatePassword(ctx, email, newPassword)
		if err != nil {
			return f.fail("update user password", err)
		}
		if changed {
			data["password"] = "<CHANGED>"
		}
	}
	return Success(data)
}

// DisableUser excludes a user from authentication and reset issuance.
func (f *Facade) DisableUser(ctx context.Context, id string) Outcome {
	updated, err := f.users.Disable(ctx, id)
	if err != nil {
		return f.fail("disable user", err)
	}
	return Success(map[string]any{"uid": id, "updated": updated})
}

// EnableUser restores a disabled user.
func (f *Facade) EnableUser(ctx context.Context, id string) Outcome {
	updated, err := f.users.Enable(ctx, id)
	if err != nil {
		return f.fail("enable user", err)
	}
	return Success(map[string]any{"uid": id, "updated": updated})
}

// fail logs the error with its structured context and converts it into a
// failure Outcome.
func (f *Facade) fail(operation string, err error) Outcome {
	errutil.LogError(f.logger, operation+" failed", err)
	return Failure(err, f.devMode)
}

// observe reports an event result to the recorder, if one is installed.
// Expected rejections count as "invalid"; everything else as "error".
func (f *Facade) observe(event string, err error) {
	if f.recorder == nil {
		return
	}
	switch errutil.Code(err) {
	case "":
		if err == nil {
			f.recorder(event, "success")
			return
		}
		f.recorder(event, "error")
	case CodeInvalidCredentials, CodeEmailNotFound:
		f.recorder(event, "invalid")
	default:
		f.recorder(event, "error")
	}
}

// userPayload flattens a user record into the wire shape: uid, email,
// disabled, plus every configured extension field.
func userPayload(u *User) map[string]any {
	data := map[string]any{
		"uid":      u.ID,
		"email":    u.Email,
		"disabled": u.Disabled,
	}
	for k, v := range u.Extra {
		data[k] = v
	}
	return data
}
