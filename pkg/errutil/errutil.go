// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftboard Contributors

// Package errutil bridges oops errors to slog and to test assertions.
package errutil

import (
	"log/slog"

	"github.com/samber/oops"
)

// HasCode reports whether err is an oops error carrying the given code.
func HasCode(err error, code string) bool {
	oopsErr, ok := oops.AsOops(err)
	return ok && oopsErr.Code() == code
}

// LogError logs an error with structured context if it's an oops error.
// For oops errors it extracts the message, code and attached context; for
// standard errors it logs the error string.
func LogError(logger *slog.Logger, msg string, err error) {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		logger.Error(msg, "error", err)
		return
	}

	attrs := []any{"error", oopsErr.Error()}
	if code := oopsErr.Code(); code != "" {
		attrs = append(attrs, "code", code)
	}
	if ctx := oopsErr.Context(); len(ctx) > 0 {
		attrs = append(attrs, "context", ctx)
	}
	logger.Error(msg, attrs...)
}
