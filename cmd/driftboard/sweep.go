// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftboard Contributors

package main

import (
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/driftboard/driftboard/internal/config"
	"github.com/driftboard/driftboard/internal/session"
	"github.com/driftboard/driftboard/internal/store"
)

// NewSweepCmd creates the sweep subcommand.
func NewSweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Delete expired sessions",
		Long: `Delete all expired session rows and exit. The serve command runs
this continuously; sweep is for one-off cleanup and cron jobs.`,
		RunE: runSweep,
	}
}

func runSweep(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	pool, err := store.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return oops.Code("DB_CONNECT_FAILED").With("operation", "connect to database").Wrap(err)
	}
	defer pool.Close()

	deleted, err := session.NewPostgresStore(pool).DeleteExpired(ctx)
	if err != nil {
		return oops.Code("SWEEP_FAILED").With("operation", "delete expired sessions").Wrap(err)
	}

	cmd.Printf("Deleted %d expired sessions\n", deleted)
	return nil
}
