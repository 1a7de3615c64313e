// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/authgate/authgate/internal/auth"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "authgate.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, EnvProduction, cfg.Environment)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, auth.DefaultBcryptCost, cfg.BcryptCost)
	assert.Equal(t, auth.DefaultSessionLength, cfg.SessionLength)
	assert.Equal(t, auth.DefaultResetTokenLifetime, cfg.ResetTokenLifetime)
	assert.Equal(t, auth.ResetLinkStyleQuery, cfg.ResetTokenStyle)
	assert.False(t, cfg.DevMode())
}

func TestLoad(t *testing.T) {
	t.Run("file values override defaults", func(t *testing.T) {
		path := writeConfigFile(t, `
environment: development
database_url: postgres://localhost:5432/authgate
session_length: 30m
reset_token_lifetime: 2h
table_prefix: admin_auth_
client_url: https://admin.example.com
user_fields:
  - key: name
    column: display_name
    type: text
`)

		cfg, err := Load(path, nil)
		require.NoError(t, err)
		assert.Equal(t, EnvDevelopment, cfg.Environment)
		assert.True(t, cfg.DevMode())
		assert.Equal(t, 30*time.Minute, cfg.SessionLength)
		assert.Equal(t, 2*time.Hour, cfg.ResetTokenLifetime)
		assert.Equal(t, "admin_auth_", cfg.TablePrefix)
		require.Len(t, cfg.UserFields, 1)
		assert.Equal(t, "display_name", cfg.UserFields[0].Column)
		// Unset fields keep their defaults.
		assert.Equal(t, "json", cfg.LogFormat)
	})

	t.Run("flags override file values", func(t *testing.T) {
		path := writeConfigFile(t, `
database_url: postgres://localhost:5432/authgate
log_format: json
`)

		flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
		flags.String("log_format", "", "log output format")
		require.NoError(t, flags.Parse([]string{"--log_format=text"}))

		cfg, err := Load(path, flags)
		require.NoError(t, err)
		assert.Equal(t, "text", cfg.LogFormat)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), nil)
		require.Error(t, err)
	})

	t.Run("invalid config fails validation", func(t *testing.T) {
		path := writeConfigFile(t, `
database_url: postgres://localhost:5432/authgate
environment: staging
`)

		_, err := Load(path, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "environment")
	})
}

func TestValidate(t *testing.T) {
	valid := Default()
	valid.DatabaseURL = "postgres://localhost:5432/authgate"

	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{
			name:   "valid config",
			mutate: func(*Config) {},
		},
		{
			name:   "missing database url",
			mutate: func(c *Config) { c.DatabaseURL = "" },
			errMsg: "database_url is required",
		},
		{
			name:   "unknown environment",
			mutate: func(c *Config) { c.Environment = "staging" },
			errMsg: "environment must be one of",
		},
		{
			name:   "unknown log format",
			mutate: func(c *Config) { c.LogFormat = "xml" },
			errMsg: "log_format must be one of",
		},
		{
			name:   "unknown reset token style",
			mutate: func(c *Config) { c.ResetTokenStyle = "fragment" },
			errMsg: "reset_token_style must be one of",
		},
		{
			name:   "non-positive session length",
			mutate: func(c *Config) { c.SessionLength = 0 },
			errMsg: "session_length must be positive",
		},
		{
			name:   "non-positive reset token lifetime",
			mutate: func(c *Config) { c.ResetTokenLifetime = -time.Hour },
			errMsg: "reset_token_lifetime must be positive",
		},
		{
			name:   "bcrypt cost out of range",
			mutate: func(c *Config) { c.BcryptCost = 99 },
			errMsg: "bcrypt_cost must be between",
		},
		{
			name: "invalid user field",
			mutate: func(c *Config) {
				c.UserFields = []auth.UserField{{Key: "name", Column: "bad column", Type: "text"}}
			},
			errMsg: "not a valid identifier",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.errMsg == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestConfig_ResetLink(t *testing.T) {
	cfg := Default()
	cfg.ClientURL = "https://admin.example.com"
	cfg.ResetLinkPath = "/account/reset"
	cfg.ResetTokenStyle = auth.ResetLinkStyleSlug

	link := cfg.ResetLink()
	assert.Equal(t, "https://admin.example.com", link.BaseURL)
	assert.Equal(t, "/account/reset", link.Path)
	assert.Equal(t, auth.ResetLinkStyleSlug, link.Style)
}
