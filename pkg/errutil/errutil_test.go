// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftboard Contributors

package errutil

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasCode(t *testing.T) {
	err := oops.Code("SOME_CODE").Errorf("boom")

	assert.True(t, HasCode(err, "SOME_CODE"))
	assert.False(t, HasCode(err, "OTHER_CODE"))
	assert.False(t, HasCode(errors.New("plain"), "SOME_CODE"))
	assert.False(t, HasCode(nil, "SOME_CODE"))
}

func TestHasCode_Wrapped(t *testing.T) {
	sentinel := errors.New("not found")
	err := oops.Code("THING_NOT_FOUND").Wrap(sentinel)

	assert.True(t, HasCode(err, "THING_NOT_FOUND"))
	assert.ErrorIs(t, err, sentinel)
}

func TestLogError(t *testing.T) {
	t.Run("oops error with code and context", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(slog.NewJSONHandler(&buf, nil))

		err := oops.Code("THING_FAILED").With("key", "value").Errorf("it broke")
		LogError(logger, "operation failed", err)

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "operation failed", entry["msg"])
		assert.Equal(t, "THING_FAILED", entry["code"])
		assert.Contains(t, entry["error"], "it broke")
	})

	t.Run("plain error", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(slog.NewJSONHandler(&buf, nil))

		LogError(logger, "operation failed", errors.New("plain failure"))

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "operation failed", entry["msg"])
		assert.Equal(t, "plain failure", entry["error"])
		assert.NotContains(t, entry, "code")
	})
}
