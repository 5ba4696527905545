// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftboard Contributors

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/driftboard/driftboard/internal/auth"
	authpg "github.com/driftboard/driftboard/internal/auth/postgres"
	"github.com/driftboard/driftboard/internal/config"
	"github.com/driftboard/driftboard/internal/logging"
	"github.com/driftboard/driftboard/internal/observability"
	"github.com/driftboard/driftboard/internal/session"
	"github.com/driftboard/driftboard/internal/store"
	"github.com/driftboard/driftboard/internal/web"
)

const shutdownTimeout = 5 * time.Second

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web server",
		Long: `Start the web server: serves the login, registration, and
authenticated pages, and runs the background session expiry sweeper.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configFile, cmd.Flags())
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg)
		},
	}

	registerConfigFlags(cmd.Flags())

	return cmd
}

func runServe(ctx context.Context, cfg *config.Config) error {
	logger := logging.Setup(logging.Options{
		Service: "driftboard",
		Version: version,
		Format:  cfg.LogFormat,
		Level:   cfg.LogLevel,
	})
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := store.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	logger.Info("connected to database")

	users := authpg.NewUserRepository(pool)
	backend, err := auth.NewServiceWithLogger(users, auth.NewArgon2idHasher(), logger)
	if err != nil {
		return fmt.Errorf("failed to create auth service: %w", err)
	}

	sessions := session.NewPostgresStore(pool)

	gate, err := web.NewManager(sessions, backend, cfg.SessionTTL, cfg.IsProduction(), logger)
	if err != nil {
		return fmt.Errorf("failed to create session manager: %w", err)
	}

	obsServer := observability.NewServer(cfg.MetricsAddr, func() bool {
		return pool.Ping(ctx) == nil
	})

	handlers, err := web.NewHandlers(backend, gate, obsServer.Metrics(), logger)
	if err != nil {
		return fmt.Errorf("failed to create handlers: %w", err)
	}

	obsErrCh, err := obsServer.Start()
	if err != nil {
		return fmt.Errorf("failed to start observability server: %w", err)
	}
	logger.Info("observability server started", "addr", obsServer.Addr())

	webServer := web.NewServer(cfg.Host, cfg.Port, handlers.Router(), logger)
	webErrCh, err := webServer.Start()
	if err != nil {
		return fmt.Errorf("failed to start web server: %w", err)
	}
	logger.Info("web server started", "addr", webServer.Addr())

	sweeper, err := session.NewSweeper(sessions, cfg.SweepInterval, logger)
	if err != nil {
		return fmt.Errorf("failed to create sweeper: %w", err)
	}
	sweeper.OnSweep = func(n int64) {
		obsServer.Metrics().SessionsSwept.Add(float64(n))
	}

	sweepDone := make(chan struct{})
	go func() {
		defer close(sweepDone)
		sweeper.Run(ctx)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-webErrCh:
		if err != nil {
			logger.Error("web server failed", "error", err)
		}
	case err := <-obsErrCh:
		if err != nil {
			logger.Error("observability server failed", "error", err)
		}
	}

	stop()
	<-sweepDone

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := webServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("error stopping web server", "error", err)
	}
	if err := obsServer.Stop(shutdownCtx); err != nil {
		logger.Warn("error stopping observability server", "error", err)
	}

	logger.Info("shutdown complete")
	return nil
}
