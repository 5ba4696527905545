package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/driftboard/driftboard/internal/config"
	"github.com/driftboard/driftboard/internal/store"
)

// NewStatusCmd creates the status subcommand.
func NewStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show database and migration status",
		Long:  `Check database connectivity and report the current schema migration version.`,
		RunE:  runStatus,
	}
}

func runStatus(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	pool, err := store.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		cmd.Println("database:  unreachable")
		return err
	}
	defer pool.Close()
	cmd.Println("database:  ok")

	migrator, err := store.NewMigrator(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer migrator.Close() //nolint:errcheck // close errors are not actionable here

	version, dirty, err := migrator.Version()
	if err != nil {
		return err
	}
	switch {
	case version == 0:
		cmd.Println("schema:    no migrations applied")
	case dirty:
		cmd.Printf("schema:    version %d (dirty)\n", version)
		return errors.New("schema is dirty; manual intervention required")
	default:
		cmd.Printf("schema:    version %d\n", version)
	}

	return nil
}
