// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

// Package config loads and validates deployment configuration from a YAML
// file with flag overrides.
package config

import (
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/authgate/authgate/internal/auth"
)

// Environments the dev-diagnostics switch understands.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config is the typed deployment configuration.
type Config struct {
	Environment string `koanf:"environment"`
	DatabaseURL string `koanf:"database_url"`
	LogFormat   string `koanf:"log_format"`
	MetricsAddr string `koanf:"metrics_addr"`

	BcryptCost  int    `koanf:"bcrypt_cost"`
	TablePrefix string `koanf:"table_prefix"`

	SessionLength      time.Duration `koanf:"session_length"`
	ResetTokenLifetime time.Duration `koanf:"reset_token_lifetime"`

	ClientURL       string `koanf:"client_url"`
	ResetLinkPath   string `koanf:"reset_link_path"`
	ResetTokenStyle string `koanf:"reset_token_style"`

	BootstrapSecret string `koanf:"bootstrap_secret"`

	UserFields []auth.UserField `koanf:"user_fields"`
}

// Default returns a Config with every defaultable field filled in.
func Default() Config {
	return Config{
		Environment:        EnvProduction,
		LogFormat:          "json",
		MetricsAddr:        "127.0.0.1:9100",
		BcryptCost:         auth.DefaultBcryptCost,
		SessionLength:      auth.DefaultSessionLength,
		ResetTokenLifetime: auth.DefaultResetTokenLifetime,
		ResetLinkPath:      "/reset",
		ResetTokenStyle:    auth.ResetLinkStyleQuery,
	}
}

// Load reads the YAML file at path (optional; "" skips the file), applies
// flag overrides, and validates the result.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, oops.Code("CONFIG_LOAD_FAILED").
				With("path", path).
				Wrap(err)
		}
	}
	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return Config{}, oops.Code("CONFIG_LOAD_FAILED").
				With("operation", "apply flag overrides").
				Wrap(err)
		}
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, oops.Code("CONFIG_UNMARSHAL_FAILED").Wrap(err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// DevMode reports whether dev diagnostics should be included in failure
// outcomes.
func (c Config) DevMode() bool {
	return c.Environment == EnvDevelopment
}

// ResetLink assembles the reset link settings for the reset flow.
func (c Config) ResetLink() auth.ResetLinkConfig {
	return auth.ResetLinkConfig{
		BaseURL: c.ClientURL,
		Path:    c.ResetLinkPath,
		Style:   c.ResetTokenStyle,
	}
}
