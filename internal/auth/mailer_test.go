// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/authgate/authgate/internal/auth"
)

func TestResetLinkConfig_BuildResetLink(t *testing.T) {
	tests := []struct {
		name  string
		cfg   auth.ResetLinkConfig
		email string
		token string
		want  string
	}{
		{
			name:  "query style",
			cfg:   auth.ResetLinkConfig{BaseURL: "https://admin.example.com", Path: "/reset", Style: auth.ResetLinkStyleQuery},
			email: "user@example.com",
			token: "abc123",
			want:  "https://admin.example.com/reset?email=user%40example.com&token=abc123",
		},
		{
			name:  "slug style",
			cfg:   auth.ResetLinkConfig{BaseURL: "https://admin.example.com", Path: "/reset", Style: auth.ResetLinkStyleSlug},
			email: "user@example.com",
			token: "abc123",
			want:  "https://admin.example.com/reset/abc123?email=user%40example.com",
		},
		{
			name:  "unknown style defaults to query",
			cfg:   auth.ResetLinkConfig{BaseURL: "https://admin.example.com", Path: "/reset", Style: ""},
			email: "user@example.com",
			token: "abc123",
			want:  "https://admin.example.com/reset?email=user%40example.com&token=abc123",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.BuildResetLink(tt.email, tt.token))
		})
	}
}
