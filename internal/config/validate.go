// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

package config

import (
	"slices"

	"github.com/samber/oops"

	"github.com/authgate/authgate/internal/auth"
)

// ruleKind enumerates the validation rules applied to configuration fields.
type ruleKind int

const (
	ruleRequired ruleKind = iota
	ruleOneOf
	rulePredicate
)

// rule is a single uniform validation step. The predicate case replaces the
// original design's function-typed config spec: custom checks are injected
// closures evaluated the same way as the built-in kinds.
type rule struct {
	field   string
	kind    ruleKind
	value   func(Config) string
	allowed []string
	check   func(Config) error
}

var rules = []rule{
	{field: "database_url", kind: ruleRequired, value: func(c Config) string { return c.DatabaseURL }},
	{field: "environment", kind: ruleOneOf, value: func(c Config) string { return c.Environment },
		allowed: []string{EnvDevelopment, EnvProduction}},
	{field: "log_format", kind: ruleOneOf, value: func(c Config) string { return c.LogFormat },
		allowed: []string{"json", "text"}},
	{field: "reset_token_style", kind: ruleOneOf, value: func(c Config) string { return c.ResetTokenStyle },
		allowed: []string{auth.ResetLinkStyleQuery, auth.ResetLinkStyleSlug}},
	{field: "session_length", kind: rulePredicate, check: func(c Config) error {
		if c.SessionLength <= 0 {
			return oops.Errorf("session_length must be positive")
		}
		return nil
	}},
	{field: "reset_token_lifetime", kind: rulePredicate, check: func(c Config) error {
		if c.ResetTokenLifetime <= 0 {
			return oops.Errorf("reset_token_lifetime must be positive")
		}
		return nil
	}},
	{field: "bcrypt_cost", kind: rulePredicate, check: func(c Config) error {
		if c.BcryptCost < auth.MinBcryptCost || c.BcryptCost > auth.MaxBcryptCost {
			return oops.Errorf("bcrypt_cost must be between %d and %d", auth.MinBcryptCost, auth.MaxBcryptCost)
		}
		return nil
	}},
	{field: "user_fields", kind: rulePredicate, check: func(c Config) error {
		for _, f := range c.UserFields {
			if err := f.Validate(); err != nil {
				return err
			}
		}
		return nil
	}},
}

// Validate applies every rule and fails on the first violation.
func (c Config) Validate() error {
	for _, r := range rules {
		switch r.kind {
		case ruleRequired:
			if r.value(c) == "" {
				return oops.Code("CONFIG_INVALID").
					With("field", r.field).
					Errorf("%s is required", r.field)
			}
		case ruleOneOf:
			if !slices.Contains(r.allowed, r.value(c)) {
				return oops.Code("CONFIG_INVALID").
					With("field", r.field).
					With("allowed", r.allowed).
					Errorf("%s must be one of %v", r.field, r.allowed)
			}
		case rulePredicate:
			if err := r.check(c); err != nil {
				return oops.Code("CONFIG_INVALID").
					With("field", r.field).
					Wrap(err)
			}
		}
	}
	return nil
}
