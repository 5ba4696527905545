// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftboard Contributors

package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func logLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestSetup_ServiceIdentity(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup(Options{
		Service: "driftboard",
		Version: "1.2.3",
		Writer:  &buf,
	})

	logger.Info("hello", "key", "value")

	entry := logLine(t, &buf)
	assert.Equal(t, "driftboard", entry["service"])
	assert.Equal(t, "1.2.3", entry["version"])
	assert.Equal(t, "hello", entry["msg"])
	assert.Equal(t, "value", entry["key"])
}

func TestSetup_TraceContext(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup(Options{Service: "driftboard", Writer: &buf})

	traceID, err := trace.TraceIDFromHex("0123456789abcdef0123456789abcdef")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("0123456789abcdef")
	require.NoError(t, err)
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: traceID,
		SpanID:  spanID,
	}))

	logger.InfoContext(ctx, "with trace")

	entry := logLine(t, &buf)
	assert.Equal(t, "0123456789abcdef0123456789abcdef", entry["trace_id"])
	assert.Equal(t, "0123456789abcdef", entry["span_id"])
}

func TestSetup_NoTraceContext(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup(Options{Service: "driftboard", Writer: &buf})

	logger.Info("no trace")

	entry := logLine(t, &buf)
	assert.NotContains(t, entry, "trace_id")
	assert.NotContains(t, entry, "span_id")
}

func TestSetup_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup(Options{Service: "driftboard", Level: "warn", Writer: &buf})

	logger.Info("filtered")
	assert.Empty(t, buf.Bytes())

	logger.Warn("emitted")
	assert.NotEmpty(t, buf.Bytes())
}

func TestSetup_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup(Options{Service: "driftboard", Format: "text", Writer: &buf})

	logger.Info("plain")
	assert.Contains(t, buf.String(), "msg=plain")
	assert.Contains(t, buf.String(), "service=driftboard")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("debug"))
	assert.Equal(t, slog.LevelInfo, parseLevel("info"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warn"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel("bogus"))
}
