// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

// Package mail provides Mailer implementations. Template rendering and SMTP
// transport belong to the embedding application; what lives here is the
// development stand-in.
package mail

import (
	"context"
	"log/slog"

	"github.com/authgate/authgate/internal/auth"
)

// LogMailer writes outgoing mail to the structured log instead of
// delivering it. Useful for development and as the default wiring until the
// embedding application provides a real transport.
type LogMailer struct {
	logger *slog.Logger
}

// NewLogMailer creates a LogMailer. A nil logger means slog.Default.
func NewLogMailer(logger *slog.Logger) *LogMailer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogMailer{logger: logger}
}

// Send logs the message instead of sending it.
func (m *LogMailer) Send(ctx context.Context, to, template string, vars map[string]any) error {
	m.logger.InfoContext(ctx, "mail (not delivered, log mailer)",
		"to", to,
		"template", template,
		"vars", vars,
	)
	return nil
}

// Compile-time interface check.
var _ auth.Mailer = (*LogMailer)(nil)
