// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftboard Contributors

package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateID(t *testing.T) {
	first, err := GenerateID()
	require.NoError(t, err)
	assert.Len(t, first, TokenBytes*2, "hex encoding doubles the byte count")

	second, err := GenerateID()
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestNewRecord(t *testing.T) {
	before := time.Now().UTC()
	record, err := NewRecord(time.Hour)
	require.NoError(t, err)

	assert.NotEmpty(t, record.ID)
	assert.NotNil(t, record.Data)
	assert.Empty(t, record.Data)
	assert.WithinDuration(t, before.Add(time.Hour), record.ExpiresAt, time.Second)
}

func TestRecord_IsExpiredAt(t *testing.T) {
	now := time.Now().UTC()
	record := &Record{ExpiresAt: now}

	assert.True(t, record.IsExpiredAt(now), "expiry equal to now counts as expired")
	assert.True(t, record.IsExpiredAt(now.Add(time.Second)))
	assert.False(t, record.IsExpiredAt(now.Add(-time.Second)))
}

func TestRecord_Touch(t *testing.T) {
	record := &Record{ExpiresAt: time.Now().UTC().Add(-time.Hour)}
	require.True(t, record.IsExpiredAt(time.Now().UTC()))

	record.Touch(24 * time.Hour)
	assert.False(t, record.IsExpiredAt(time.Now().UTC()))
	assert.WithinDuration(t, time.Now().UTC().Add(24*time.Hour), record.ExpiresAt, time.Second)
}
