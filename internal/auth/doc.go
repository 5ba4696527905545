// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftboard Contributors

// Package auth provides credential verification and user account
// primitives for Driftboard: password hashing, the user repository
// contract, and the authentication backend that the web session gate
// resolves principals through.
package auth
