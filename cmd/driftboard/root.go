package main

import (
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the Driftboard CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "driftboard",
		Short: "Driftboard - a server-rendered personal board",
		Long: `Driftboard is a server-rendered web application with account
registration, session-backed login, and a handful of authenticated pages.`,
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewSweepCmd())
	cmd.AddCommand(NewStatusCmd())

	return cmd
}

// registerConfigFlags declares the flags that override config file and
// environment values. Flag names double as koanf keys.
func registerConfigFlags(flags *pflag.FlagSet) {
	flags.String("host", "0.0.0.0", "listen host")
	flags.Int("port", 3000, "listen port")
	flags.String("database_url", "", "PostgreSQL connection string")
	flags.Duration("session_ttl", 24*time.Hour, "session inactivity window")
	flags.Duration("sweep_interval", 10*time.Minute, "expiry sweep interval")
	flags.String("log_format", "json", "log format: json or text")
	flags.String("log_level", "info", "log level: debug, info, warn, error")
	flags.String("metrics_addr", "127.0.0.1:9100", "observability listen address")
}
