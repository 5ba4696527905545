// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftboard Contributors

package session

import (
	"context"
	"log/slog"
	"time"

	"github.com/samber/oops"
)

// DefaultSweepInterval is how often the background sweep runs.
const DefaultSweepInterval = 10 * time.Minute

// Sweeper periodically deletes expired session rows. It holds no state
// beyond the ticker; the one idempotent DeleteExpired operation does the
// work, so a missed or doubled tick is harmless.
type Sweeper struct {
	store    Store
	interval time.Duration
	logger   *slog.Logger

	// OnSweep, when set, observes the deleted-row count of each pass.
	// The serve command wires a metrics counter here.
	OnSweep func(deleted int64)
}

// NewSweeper creates a Sweeper.
func NewSweeper(store Store, interval time.Duration, logger *slog.Logger) (*Sweeper, error) {
	if store == nil {
		return nil, oops.Code("SWEEPER_INVALID").Errorf("session store is required")
	}
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Sweeper{store: store, interval: interval, logger: logger}, nil
}

// Run sweeps on a ticker until ctx is cancelled. A failing pass is logged
// and the loop continues; expired rows are invisible to Load regardless,
// so sweep failures degrade storage, not correctness.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	deleted, err := s.store.DeleteExpired(ctx)
	if err != nil {
		s.logger.Error("session sweep failed", "error", err)
		return
	}
	if s.OnSweep != nil {
		s.OnSweep(deleted)
	}
	if deleted > 0 {
		s.logger.Info("swept expired sessions", "deleted", deleted)
	}
}
