// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

package main

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/authgate/authgate/internal/auth"
	"github.com/authgate/authgate/internal/auth/postgres"
	"github.com/authgate/authgate/internal/config"
	"github.com/authgate/authgate/internal/logging"
	"github.com/authgate/authgate/internal/mail"
	"github.com/authgate/authgate/internal/store"
)

// app holds the wired-up engine for a CLI invocation.
type app struct {
	cfg    config.Config
	pool   *pgxpool.Pool
	tables *postgres.Tables
	facade *auth.Facade
}

// newApp loads configuration, connects to the database, and wires the
// services. The recorders may be nil; long-lived commands pass the metrics
// hooks.
func newApp(ctx context.Context, cmd *cobra.Command, sweeps auth.SweepRecorder, events auth.EventRecorder) (*app, error) {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return nil, err
	}
	logging.SetDefault("authgate", version, cfg.LogFormat)
	return newAppWithConfig(ctx, cfg, sweeps, events)
}

// newAppWithConfig wires the services for an already-loaded configuration.
func newAppWithConfig(ctx context.Context, cfg config.Config, sweeps auth.SweepRecorder, events auth.EventRecorder) (*app, error) {
	pool, err := store.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	tables, err := postgres.NewTables(cfg.TablePrefix, cfg.UserFields)
	if err != nil {
		pool.Close()
		return nil, err
	}

	hasher := auth.NewBcryptHasher(cfg.BcryptCost)
	tokens := auth.NewULIDTokenGenerator()

	userRepo := postgres.NewUserRepository(pool, tables)
	sessionRepo := postgres.NewSessionRepository(pool, tables)
	resetRepo := postgres.NewResetTokenRepository(pool, tables)

	users, err := auth.NewUserService(userRepo, hasher, tokens, cfg.UserFields)
	if err != nil {
		pool.Close()
		return nil, err
	}
	sessions, err := auth.NewSessionService(sessionRepo, hasher, tokens, cfg.SessionLength, sweeps)
	if err != nil {
		pool.Close()
		return nil, err
	}
	resets, err := auth.NewResetService(userRepo, resetRepo, hasher, tokens,
		mail.NewLogMailer(nil), cfg.ResetLink(), cfg.ResetTokenLifetime, sweeps)
	if err != nil {
		pool.Close()
		return nil, err
	}

	facade, err := auth.NewFacade(users, sessions, resets, cfg.BootstrapSecret, cfg.DevMode(), events, nil)
	if err != nil {
		pool.Close()
		return nil, err
	}

	return &app{cfg: cfg, pool: pool, tables: tables, facade: facade}, nil
}

// Close releases the connection pool.
func (a *app) Close() {
	a.pool.Close()
}

// printOutcome writes an outcome as indented JSON and returns an error for
// failed outcomes so the process exits non-zero.
func printOutcome(cmd *cobra.Command, out auth.Outcome) error {
	encoded, err := outcomeJSON(out)
	if err != nil {
		return err
	}
	cmd.Println(encoded)
	if !out.OK {
		return oops.Code(outcomeCode(out)).Errorf("operation failed")
	}
	return nil
}
