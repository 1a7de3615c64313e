// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

package main

import (
	"encoding/json"

	"github.com/samber/oops"

	"github.com/authgate/authgate/internal/auth"
)

// outcomeJSON renders an outcome as indented JSON for terminal output.
func outcomeJSON(out auth.Outcome) (string, error) {
	encoded, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", oops.Code("OUTCOME_ENCODE_FAILED").Wrap(err)
	}
	return string(encoded), nil
}

// outcomeCode extracts the failure code from an outcome, defaulting to
// UNEXPECTED.
func outcomeCode(out auth.Outcome) string {
	if code, ok := out.Data["code"].(string); ok && code != "" {
		return code
	}
	return auth.CodeUnexpected
}
