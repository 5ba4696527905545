// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftboard Contributors

// Package session provides durable, opaque session records with expiry.
// The web layer owns record lifecycles; this package owns their durable
// representation.
package session

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/samber/oops"
)

// TokenBytes is the entropy of a session id: 32 bytes = 64 hex chars.
const TokenBytes = 32

// DefaultTTL is the sliding inactivity window applied to session records.
const DefaultTTL = 24 * time.Hour

// ErrNotFound is returned when a session record is absent, either because
// no row exists or because the stored row has expired.
var ErrNotFound = errors.New("session not found")

// Record is an opaque session keyed by its id. Data holds arbitrary
// key-value payload; once authenticated it carries the bound user id and
// the auth fingerprint. ExpiresAt is absolute UTC.
type Record struct {
	ID        string         `msgpack:"id"`
	Data      map[string]any `msgpack:"data"`
	ExpiresAt time.Time      `msgpack:"expires_at"`
}

// NewRecord creates an empty record with a fresh id and the given TTL.
func NewRecord(ttl time.Duration) (*Record, error) {
	id, err := GenerateID()
	if err != nil {
		return nil, err
	}
	return &Record{
		ID:        id,
		Data:      make(map[string]any),
		ExpiresAt: time.Now().UTC().Add(ttl),
	}, nil
}

// GenerateID creates a cryptographically random session id.
func GenerateID() (string, error) {
	b := make([]byte, TokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", oops.Code("SESSION_ID_GENERATE_FAILED").
			With("operation", "crypto/rand.Read").
			With("requested_bytes", TokenBytes).
			Wrap(err)
	}
	return hex.EncodeToString(b), nil
}

// IsExpiredAt reports whether the record is expired at the given instant.
// The boundary is inclusive: a record whose expiry equals t is expired,
// matching the store's load predicate (expiry_date > now).
func (r *Record) IsExpiredAt(t time.Time) bool {
	return !r.ExpiresAt.After(t)
}

// Touch extends the expiry by ttl from now, implementing the sliding
// inactivity window.
func (r *Record) Touch(ttl time.Duration) {
	r.ExpiresAt = time.Now().UTC().Add(ttl)
}
