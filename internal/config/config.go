// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftboard Contributors

// Package config loads runtime configuration from defaults, an optional
// YAML file, the environment, and command-line flags, in that order of
// precedence (later wins).
package config

import (
	"os"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
)

// Config is the resolved runtime configuration.
type Config struct {
	Environment   string        `koanf:"environment"`
	Host          string        `koanf:"host"`
	Port          int           `koanf:"port"`
	DatabaseURL   string        `koanf:"database_url"`
	SessionTTL    time.Duration `koanf:"session_ttl"`
	SweepInterval time.Duration `koanf:"sweep_interval"`
	LogFormat     string        `koanf:"log_format"`
	LogLevel      string        `koanf:"log_level"`
	MetricsAddr   string        `koanf:"metrics_addr"`
}

// defaults mirror the original deployment: development mode, all
// interfaces, one-day session inactivity window.
func defaults() Config {
	return Config{
		Environment:   "development",
		Host:          "0.0.0.0",
		Port:          3000,
		SessionTTL:    24 * time.Hour,
		SweepInterval: 10 * time.Minute,
		LogFormat:     "json",
		LogLevel:      "info",
		MetricsAddr:   "127.0.0.1:9100",
	}
}

// Load resolves configuration. path may be empty (no file). flags may be
// nil (no flag overrides). DATABASE_URL and the APP_* environment
// variables override file values but lose to explicit flags.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")
	cfg := defaults()

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").
				With("operation", "load config file").
				With("path", path).
				Wrap(err)
		}
	}

	applyEnv(k)

	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").
				With("operation", "load flags").
				Wrap(err)
		}
	}

	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, oops.Code("CONFIG_INVALID").
			With("operation", "unmarshal config").
			Wrap(err)
	}

	if cfg.DatabaseURL == "" {
		return nil, oops.Code("CONFIG_INVALID").
			Errorf("database_url is required (set DATABASE_URL or the config file)")
	}

	return &cfg, nil
}

// applyEnv layers recognized environment variables onto the tree.
func applyEnv(k *koanf.Koanf) {
	envKeys := map[string]string{
		"APP_ENVIRONMENT": "environment",
		"APP_HOST":        "host",
		"APP_PORT":        "port",
		"DATABASE_URL":    "database_url",
	}
	for env, key := range envKeys {
		if v := os.Getenv(env); v != "" {
			_ = k.Set(key, v) //nolint:errcheck // Set on a fresh tree cannot fail
		}
	}
}

// IsProduction reports whether the app runs in production mode. Anything
// other than the literal "production" is treated as development, matching
// the original behavior.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
