// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftboard Contributors

package session

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"
)

// pool is the subset of pgxpool.Pool the store uses. pgxmock's pool
// interface satisfies it.
type pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore implements Store on the sessions table. Each operation is a
// single statement, so one pool connection is held only for its duration.
type PostgresStore struct {
	pool pool
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(pool pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Save upserts the record. The single INSERT .. ON CONFLICT statement
// updates payload and expiry atomically; a partial write (data updated,
// expiry stale) cannot occur.
func (s *PostgresStore) Save(ctx context.Context, record *Record) error {
	data, err := encodeRecord(record)
	if err != nil {
		return err
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO sessions (id, data, expiry_date)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE
		SET data = EXCLUDED.data, expiry_date = EXCLUDED.expiry_date
	`, record.ID, data, record.ExpiresAt)
	if err != nil {
		return oops.Code("SESSION_SAVE_FAILED").
			With("operation", "upsert session").
			Wrap(err)
	}
	return nil
}

// Load returns the record by id. The expiry predicate lives inside the
// query: an expired row is absent even while it physically remains until
// the next sweep. The boundary is strict (expiry_date > now), so a record
// expiring exactly now is already gone.
func (s *PostgresStore) Load(ctx context.Context, id string) (*Record, error) {
	var data []byte
	err := s.pool.QueryRow(ctx, `
		SELECT data FROM sessions
		WHERE id = $1 AND expiry_date > $2
	`, id, time.Now().UTC()).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("SESSION_NOT_FOUND").Wrap(ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("SESSION_LOAD_FAILED").
			With("operation", "get session by id").
			Wrap(err)
	}

	return decodeRecord(data)
}

// Delete removes the record. Idempotent: deleting an absent id succeeds.
func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	if err != nil {
		return oops.Code("SESSION_DELETE_FAILED").
			With("operation", "delete session").
			Wrap(err)
	}
	return nil
}

// DeleteExpired removes all rows whose expiry has passed and returns the
// count. The predicate-scoped DELETE takes only row locks, so request
// traffic is not stalled.
func (s *PostgresStore) DeleteExpired(ctx context.Context) (int64, error) {
	result, err := s.pool.Exec(ctx, `
		DELETE FROM sessions WHERE expiry_date < $1
	`, time.Now().UTC())
	if err != nil {
		return 0, oops.Code("SESSION_DELETE_EXPIRED_FAILED").
			With("operation", "delete expired sessions").
			Wrap(err)
	}
	return result.RowsAffected(), nil
}

// Compile-time interface check.
var _ Store = (*PostgresStore)(nil)
