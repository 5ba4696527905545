// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftboard Contributors

package session

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// countingStore is a Store stub whose DeleteExpired returns a fixed count.
type countingStore struct {
	calls   atomic.Int64
	deleted int64
	err     error
}

func (s *countingStore) Save(context.Context, *Record) error { return nil }

func (s *countingStore) Load(context.Context, string) (*Record, error) { return nil, ErrNotFound }

func (s *countingStore) Delete(context.Context, string) error { return nil }

func (s *countingStore) DeleteExpired(context.Context) (int64, error) {
	s.calls.Add(1)
	return s.deleted, s.err
}

var _ Store = (*countingStore)(nil)

func TestNewSweeper(t *testing.T) {
	t.Run("requires a store", func(t *testing.T) {
		_, err := NewSweeper(nil, time.Minute, nil)
		require.Error(t, err)
	})

	t.Run("defaults interval and logger", func(t *testing.T) {
		sweeper, err := NewSweeper(&countingStore{}, 0, nil)
		require.NoError(t, err)
		assert.Equal(t, DefaultSweepInterval, sweeper.interval)
		assert.NotNil(t, sweeper.logger)
	})
}

func TestSweeper_Run(t *testing.T) {
	defer goleak.VerifyNone(t)

	store := &countingStore{deleted: 2}
	sweeper, err := NewSweeper(store, 5*time.Millisecond, nil)
	require.NoError(t, err)

	var observed atomic.Int64
	sweeper.OnSweep = func(deleted int64) {
		observed.Add(deleted)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		sweeper.Run(ctx)
	}()

	assert.Eventually(t, func() bool {
		return store.calls.Load() >= 2
	}, time.Second, time.Millisecond, "sweeper should tick repeatedly")

	cancel()
	<-done

	assert.GreaterOrEqual(t, observed.Load(), int64(4), "each pass reports its deleted count")
}

func TestSweeper_Run_ContinuesAfterError(t *testing.T) {
	defer goleak.VerifyNone(t)

	store := &countingStore{err: errors.New("connection refused")}
	sweeper, err := NewSweeper(store, 5*time.Millisecond, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		sweeper.Run(ctx)
	}()

	assert.Eventually(t, func() bool {
		return store.calls.Load() >= 3
	}, time.Second, time.Millisecond, "a failing pass does not stop the loop")

	cancel()
	<-done
}
