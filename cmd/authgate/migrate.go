// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

package main

import (
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/authgate/authgate/internal/auth/postgres"
	"github.com/authgate/authgate/internal/config"
	"github.com/authgate/authgate/internal/logging"
	"github.com/authgate/authgate/internal/store"
)

// NewMigrateCmd creates the migrate subcommand with up/down/status.
func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
		Long: `Apply, roll back, or inspect the authgate schema.

A deployment without a table prefix uses the embedded versioned migrations.
Prefixed deployments and deployments with extension fields get their schema
rendered from configuration and applied idempotently; versioned migrations
cannot express either.`,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply pending migrations or ensure the configured schema",
			RunE:  runMigrateUp,
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back all migrations (default schema only)",
			RunE:  runMigrateDown,
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show the current migration version",
			RunE:  runMigrateStatus,
		},
	)

	return cmd
}

// loadCLIConfig loads config and installs the default logger without wiring
// the services.
func loadCLIConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return config.Config{}, err
	}
	logging.SetDefault("authgate", version, cfg.LogFormat)
	return cfg, nil
}

// customSchema reports whether the deployment needs rendered DDL instead of
// the embedded migrations.
func customSchema(cfg config.Config) bool {
	return cfg.TablePrefix != "" || len(cfg.UserFields) > 0
}

func runMigrateUp(cmd *cobra.Command, _ []string) error {
	cfg, err := loadCLIConfig(cmd)
	if err != nil {
		return err
	}

	if customSchema(cfg) {
		ctx := cmd.Context()
		pool, err := store.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer pool.Close()

		tables, err := postgres.NewTables(cfg.TablePrefix, cfg.UserFields)
		if err != nil {
			return err
		}
		if err := store.NewSchema(tables).Ensure(ctx, pool); err != nil {
			return err
		}
		cmd.Println("Schema ensured for configured layout")
		return nil
	}

	migrator, err := store.NewMigrator(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer migrator.Close() //nolint:errcheck // close error is advisory here

	if err := migrator.Up(); err != nil {
		return err
	}
	cmd.Println("Migrations completed successfully")
	return nil
}

func runMigrateDown(cmd *cobra.Command, _ []string) error {
	cfg, err := loadCLIConfig(cmd)
	if err != nil {
		return err
	}
	if customSchema(cfg) {
		return oops.Code("MIGRATION_UNSUPPORTED").
			Errorf("down migrations are not available for prefixed or extended schemas")
	}

	migrator, err := store.NewMigrator(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer migrator.Close() //nolint:errcheck // close error is advisory here

	if err := migrator.Down(); err != nil {
		return err
	}
	cmd.Println("Rolled back all migrations")
	return nil
}

func runMigrateStatus(cmd *cobra.Command, _ []string) error {
	cfg, err := loadCLIConfig(cmd)
	if err != nil {
		return err
	}
	if customSchema(cfg) {
		cmd.Println("Configured layout uses rendered schema; no migration version to report")
		return nil
	}

	migrator, err := store.NewMigrator(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer migrator.Close() //nolint:errcheck // close error is advisory here

	version, dirty, err := migrator.Version()
	if err != nil {
		return err
	}
	if version == 0 {
		cmd.Println("No migrations applied")
		return nil
	}
	cmd.Printf("Version: %d (dirty: %t)\n", version, dirty)
	return nil
}
