// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

package main

import (
	"github.com/spf13/cobra"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the authgate CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "authgate",
		Short: "Authgate - embeddable authentication engine",
		Long: `Authgate manages users, sessions, and password resets backed by
PostgreSQL. The library does the work; this CLI covers schema management
and the admin chores around it.`,
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")

	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewBootstrapCmd())
	cmd.AddCommand(NewSessionsCmd())

	return cmd
}
