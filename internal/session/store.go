// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftboard Contributors

package session

import "context"

// Store persists session records. Implementations must make Save an atomic
// upsert and must apply the expiry filter inside the same query that reads
// the row, never as a post-filter, so a concurrent sweep cannot race a load
// into returning a just-deleted record.
type Store interface {
	// Save upserts the record by id, overwriting payload and expiry together.
	Save(ctx context.Context, record *Record) error

	// Load returns the record, or a wrapped ErrNotFound both when no row
	// exists and when the stored row's expiry has passed.
	Load(ctx context.Context, id string) (*Record, error)

	// Delete removes the record unconditionally. Deleting an absent id is
	// not an error.
	Delete(ctx context.Context, id string) error

	// DeleteExpired removes all rows whose expiry has passed and returns
	// the count of deleted records. Safe to run concurrently with Save and
	// Load; rows written with a future expiry must survive.
	DeleteExpired(ctx context.Context) (int64, error)
}
