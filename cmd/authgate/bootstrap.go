// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

package main

import (
	"github.com/spf13/cobra"
)

// NewBootstrapCmd creates the bootstrap subcommand.
func NewBootstrapCmd() *cobra.Command {
	var (
		email      string
		password   string
		secretCode string
	)

	cmd := &cobra.Command{
		Use:   "bootstrap",
		Short: "Create the very first user",
		Long: `Create the first user in an empty deployment. Refused once any
user exists, disabled ones included. When the configuration carries a
bootstrap secret, the same code must be passed with --secret.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, cmd, nil, nil)
			if err != nil {
				return err
			}
			defer a.Close()

			return printOutcome(cmd, a.facade.Bootstrap(ctx, email, password, secretCode, nil))
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "email address of the first user")
	cmd.Flags().StringVar(&password, "password", "", "password of the first user")
	cmd.Flags().StringVar(&secretCode, "secret", "", "bootstrap secret code, if configured")
	_ = cmd.MarkFlagRequired("email")    //nolint:errcheck // flag exists
	_ = cmd.MarkFlagRequired("password") //nolint:errcheck // flag exists

	return cmd
}
