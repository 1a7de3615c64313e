// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

package main

import (
	"context"
	"log/slog"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/authgate/authgate/internal/observability"
)

// NewSessionsCmd creates the sessions subcommand.
func NewSessionsCmd() *cobra.Command {
	var watch time.Duration

	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List active sessions",
		Long: `List unexpired sessions joined to their users, sweeping expired
rows first. With --watch the listing repeats on the given interval and the
observability endpoints stay up, so the sweep doubles as expiry upkeep for
deployments without their own scheduler.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if watch <= 0 {
				ctx := cmd.Context()
				a, err := newApp(ctx, cmd, nil, nil)
				if err != nil {
					return err
				}
				defer a.Close()
				return printOutcome(cmd, a.facade.ListActiveSessions(ctx))
			}
			return runSessionsWatch(cmd, watch)
		},
	}

	cmd.Flags().DurationVar(&watch, "watch", 0, "repeat the listing on this interval (0 lists once)")

	return cmd
}

// runSessionsWatch lists sessions on an interval until interrupted, with the
// metrics and health endpoints running alongside.
func runSessionsWatch(cmd *cobra.Command, interval time.Duration) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := loadCLIConfig(cmd)
	if err != nil {
		return err
	}

	var ready atomic.Bool
	obs := observability.NewServer(cfg.MetricsAddr, ready.Load)
	obsErr, err := obs.Start()
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if stopErr := obs.Stop(shutdownCtx); stopErr != nil {
			slog.Error("failed to stop observability server", "error", stopErr)
		}
	}()

	a, err := newAppWithConfig(ctx, cfg, obs.Metrics().RecordSweep, obs.Metrics().RecordEvent)
	if err != nil {
		return err
	}
	defer a.Close()
	ready.Store(true)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := printOutcome(cmd, a.facade.ListActiveSessions(ctx)); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case serveErr, ok := <-obsErr:
			if ok && serveErr != nil {
				return serveErr
			}
			return nil
		case <-ticker.C:
		}
	}
}
