// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

package auth

import (
	"context"
	"net/url"
)

// Mailer delivers templated mail. Template rendering and transport live
// outside this engine; implementations receive a template name and a
// variable map and report delivery errors.
type Mailer interface {
	Send(ctx context.Context, to, template string, vars map[string]any) error
}

// Reset link styles: token embedded as a query parameter or as a path slug.
const (
	ResetLinkStyleQuery = "query"
	ResetLinkStyleSlug  = "slug"
)

// ResetLinkConfig controls how the reset link embedded in mail is built.
type ResetLinkConfig struct {
	// BaseURL is the client-facing origin, e.g. "https://admin.example.com".
	BaseURL string

	// Path is the reset page path, e.g. "/reset".
	Path string

	// Style is ResetLinkStyleQuery or ResetLinkStyleSlug.
	Style string
}

// BuildResetLink renders the link a user follows to complete a reset. The
// email rides along so the client can present both halves of the check.
func (c ResetLinkConfig) BuildResetLink(email, token string) string {
	base := c.BaseURL + c.Path
	if c.Style == ResetLinkStyleSlug {
		return base + "/" + url.PathEscape(token) + "?email=" + url.QueryEscape(email)
	}
	q := url.Values{}
	q.Set("token", token)
	q.Set("email", email)
	return base + "?" + q.Encode()
}
