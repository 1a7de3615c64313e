// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

package auth

import (
	"strings"

	"github.com/samber/oops"
)

// Outcome is the transport-agnostic result of a facade operation. On success
// Data carries the operation payload; on failure it carries code, status,
// msg, and (in development only) a dev diagnostic object.
type Outcome struct {
	OK   bool           `json:"ok"`
	Data map[string]any `json:"data"`
}

// statusForCode maps stable failure codes to HTTP-style status hints.
var statusForCode = map[string]int{
	CodeInvalidCredentials:  403,
	CodeTokenInvalid:        403,
	CodeSessionInvalid:      403,
	CodeSessionStartFailed:  500,
	CodeEmailNotFound:       403,
	CodeMailNotSent:         502,
	CodeDuplicateEmail:      400,
	CodeInvalidEmailAddress: 400,
	CodeUserNotFound:        404,
	CodeUpdateFailed:        500,
	CodeCannotBootstrap:     409,
	CodeUnexpected:          500,
}

// Success wraps a payload in a successful Outcome.
func Success(data map[string]any) Outcome {
	if data == nil {
		data = map[string]any{}
	}
	return Outcome{OK: true, Data: data}
}

// Failure converts an error into a failed Outcome. Coded errors surface
// their code, a status hint, and the user-safe message; anything uncoded is
// collapsed to UNEXPECTED with the raw message kept for diagnostics. The dev
// field is populated only when devMode is set, so production responses never
// leak which half of a check failed.
func Failure(err error, devMode bool) Outcome {
	code := CodeUnexpected
	msg := ""
	statusOverride := 0
	var dev map[string]any

	if oopsErr, ok := oops.AsOops(err); ok {
		if c := oopsErr.Code(); c != "" {
			code = c
		}
		msg = userMessage(oopsErr)
		if s, ok := oopsErr.Context()["status"].(int); ok {
			statusOverride = s
		}
		if devMode {
			dev = devPayload(oopsErr)
		}
	} else if devMode && err != nil {
		dev = map[string]any{"error": err.Error()}
	}

	status, ok := statusForCode[code]
	if !ok {
		status = 500
	}
	if statusOverride != 0 {
		status = statusOverride
	}
	if msg == "" {
		msg = messageFromCode(code)
	}

	data := map[string]any{
		"code":   code,
		"status": status,
		"msg":    msg,
	}
	if len(dev) > 0 {
		data["dev"] = dev
	}
	return Outcome{OK: false, Data: data}
}

// userMessage extracts the outermost message, dropping any wrapped cause
// chain that could leak internals.
func userMessage(err oops.OopsError) string {
	msg := err.Error()
	if i := strings.Index(msg, ": "); i > 0 {
		msg = msg[:i]
	}
	return msg
}

// devPayload collects the structured context attached to the error.
func devPayload(err oops.OopsError) map[string]any {
	ctx := err.Context()
	if len(ctx) == 0 {
		return nil
	}
	dev := make(map[string]any, len(ctx))
	for k, v := range ctx {
		if k == "status" {
			continue
		}
		dev[k] = v
	}
	return dev
}

// messageFromCode derives a fallback user message from a failure code:
// "EMAIL_NOT_FOUND" becomes "Email not found".
func messageFromCode(code string) string {
	msg := strings.ToLower(strings.ReplaceAll(code, "_", " "))
	if msg == "" {
		return msg
	}
	return strings.ToUpper(msg[:1]) + msg[1:]
}
