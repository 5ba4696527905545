// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftboard Contributors

package auth

import "errors"

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicateEmail is returned when creating a user with an email
// that is already registered.
var ErrDuplicateEmail = errors.New("email already registered")
