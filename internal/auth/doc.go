// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

// Package auth implements the credential and session lifecycle engine.
//
// # Domain Types
//
// Domain types (User, Session, ResetToken) are plain records owned by the
// relational store; the engine keeps no long-lived in-memory copies, so every
// check round-trips the repositories.
//
// # Services
//
// Service types coordinate domain operations:
//   - SessionService - issues, verifies, refreshes, and revokes sessions
//   - ResetService - issues, verifies, and consumes password reset tokens
//   - UserService - account records and credential checks
//   - Facade - composes the services into caller-facing verbs and converts
//     errors into transport-agnostic Outcome values
//
// Secrets (passwords, session tokens, reset tokens) are never stored in
// clear; only their hashes are persisted, and comparisons are constant-time.
package auth
