// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

package auth

import (
	"context"
	"errors"
	"time"

	"github.com/samber/oops"
)

// ResetTemplate is the mail template name used for reset messages.
const ResetTemplate = "resetpw"

// IssuedReset is the result of a reset request: the plaintext token exists
// only here and in the outgoing mail, never at rest.
type IssuedReset struct {
	ResetID   string
	UserID    string
	Email     string
	Token     string
	ExpiresAt time.Time
}

// ResetService issues, verifies, and consumes password reset tokens.
type ResetService struct {
	users    UserRepository
	resets   ResetTokenRepository
	hasher   SecretHasher
	tokens   TokenGenerator
	mailer   Mailer
	link     ResetLinkConfig
	lifetime time.Duration
	metrics  SweepRecorder
}

// NewResetService creates a ResetService. A non-positive lifetime falls back
// to DefaultResetTokenLifetime; mailer and recorder may be nil (requests then
// surface MAIL_NOT_SENT when delivery is attempted).
func NewResetService(users UserRepository, resets ResetTokenRepository, hasher SecretHasher, tokens TokenGenerator, mailer Mailer, link ResetLinkConfig, lifetime time.Duration, recorder SweepRecorder) (*ResetService, error) {
	if users == nil {
		return nil, oops.Errorf("user repository is required")
	}
	if resets == nil {
		return nil, oops.Errorf("reset token repository is required")
	}
	if hasher == nil {
		return nil, oops.Errorf("secret hasher is required")
	}
	if tokens == nil {
		return nil, oops.Errorf("token generator is required")
	}
	if lifetime <= 0 {
		lifetime = DefaultResetTokenLifetime
	}
	return &ResetService{
		users:    users,
		resets:   resets,
		hasher:   hasher,
		tokens:   tokens,
		mailer:   mailer,
		link:     link,
		lifetime: lifetime,
		metrics:  recorder,
	}, nil
}

// Request issues a fresh reset token for the enabled user matched by email,
// superseding any prior live token in the same atomic statement. Unknown and
// disabled addresses return the identical EMAIL_NOT_FOUND error so callers
// cannot enumerate users.
func (s *ResetService) Request(ctx context.Context, email string) (*IssuedReset, error) {
	email = NormalizeEmail(email)

	s.sweep(ctx)

	token, err := s.tokens.NewSecretToken()
	if err != nil {
		return nil, oops.Code(CodeUnexpected).
			With("operation", "generate reset token").
			Wrap(err)
	}
	hashed, err := s.hasher.Hash(token)
	if err != nil {
		return nil, oops.Code(CodeUnexpected).
			With("operation", "hash reset token").
			Wrap(err)
	}

	row, err := s.resets.Supersede(ctx, s.tokens.NewID(), email, hashed, s.lifetime)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, oops.Code(CodeEmailNotFound).Errorf("No such user exists")
		}
		return nil, oops.Code(CodeUnexpected).
			With("operation", "supersede reset token").
			Wrap(err)
	}

	return &IssuedReset{
		ResetID:   row.ID,
		UserID:    row.UserID,
		Email:     email,
		Token:     token,
		ExpiresAt: row.ExpiresAt,
	}, nil
}

// SendEmail delivers the reset link for an issued token. Delivery errors come
// back as MAIL_NOT_SENT with a user-safe message; the transport diagnostics
// ride in the dev context only.
func (s *ResetService) SendEmail(ctx context.Context, issued *IssuedReset) error {
	if s.mailer == nil {
		return oops.Code(CodeMailNotSent).
			With("reason", "no mailer configured").
			Errorf("Mail could not be sent")
	}
	vars := map[string]any{
		"link":    s.link.BuildResetLink(issued.Email, issued.Token),
		"expires": issued.ExpiresAt,
	}
	if err := s.mailer.Send(ctx, issued.Email, ResetTemplate, vars); err != nil {
		return oops.Code(CodeMailNotSent).
			With("reason", err.Error()).
			Errorf("Mail could not be sent")
	}
	return nil
}

// CheckToken verifies a presented reset token against the live row for the
// email. The two failure halves (no live row vs. hash mismatch) share the
// production-facing message and differ only in the dev-context reason.
func (s *ResetService) CheckToken(ctx context.Context, email, token string) (*ResetToken, error) {
	email = NormalizeEmail(email)
	if token == "" {
		return nil, oops.Code(CodeTokenInvalid).
			With("reason", "no token presented").
			Errorf("Invalid token")
	}

	s.sweep(ctx)

	row, err := s.resets.GetLiveByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, oops.Code(CodeTokenInvalid).
				With("reason", "no unexpired tokens for this user").
				Errorf("Invalid token")
		}
		return nil, oops.Code(CodeUnexpected).
			With("operation", "get live reset token").
			Wrap(err)
	}

	if !s.hasher.Verify(token, row.TokenHash) {
		return nil, oops.Code(CodeTokenInvalid).
			With("reason", "token does not match").
			Errorf("Invalid token")
	}

	return &ResetToken{
		ID:        row.ID,
		UserID:    row.UserID,
		Email:     email,
		ExpiresAt: row.ExpiresAt,
	}, nil
}

// DeleteToken removes a consumed reset row. Idempotent: the second delete of
// the same id reports an empty reset id, never an error.
func (s *ResetService) DeleteToken(ctx context.Context, resetID string) (string, error) {
	deleted, err := s.resets.Delete(ctx, resetID)
	if err != nil {
		return "", oops.Code(CodeUnexpected).
			With("operation", "delete reset token").
			With("reset_id", resetID).
			Wrap(err)
	}
	if !deleted {
		return "", nil
	}
	return resetID, nil
}

// ResetPassword is the composite consume path: check the token, update the
// password, then delete the token. Each step's failure short-circuits, and
// the token is deleted only after the password update succeeds, so a failed
// update leaves the token usable for a retry.
func (s *ResetService) ResetPassword(ctx context.Context, email, token, newPassword string) error {
	row, err := s.CheckToken(ctx, email, token)
	if err != nil {
		return err
	}

	hashed, err := s.hasher.Hash(newPassword)
	if err != nil {
		return oops.Code(CodeUnexpected).
			With("operation", "hash new password").
			Wrap(err)
	}
	updated, err := s.users.UpdatePassword(ctx, NormalizeEmail(email), hashed)
	if err != nil {
		return oops.Code(CodeUpdateFailed).
			With("operation", "update password").
			Wrap(err)
	}
	if !updated {
		return oops.Code(CodeUpdateFailed).
			With("reason", "no enabled user matched the email").
			Errorf("Update failed")
	}

	// Best-effort cleanup: the password is already changed, and the sweep
	// will collect the row once it expires.
	_, _ = s.DeleteToken(ctx, row.ID) //nolint:errcheck // cleanup only

	return nil
}

func (s *ResetService) sweep(ctx context.Context) {
	deleted, err := s.resets.DeleteExpired(ctx)
	if err != nil {
		return
	}
	if s.metrics != nil && deleted > 0 {
		s.metrics("reset", deleted)
	}
}
