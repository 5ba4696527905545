// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftboard Contributors

package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Backend resolves credentials and session-bound user ids to principals.
// The Postgres-backed Service is the production implementation; tests use
// in-memory fixtures.
type Backend interface {
	// Authenticate verifies a credential submission. The returned error is
	// AUTH_INVALID_CREDENTIALS for both unknown email and wrong password;
	// callers must not be able to tell which field failed.
	Authenticate(ctx context.Context, creds Credentials) (*User, error)

	// Resolve re-fetches the current user record for a session-bound id.
	// Returns ErrNotFound (wrapped) when the account no longer exists, so
	// deletions take effect at next session resolution.
	Resolve(ctx context.Context, id ulid.ULID) (*User, error)
}

// Service implements Backend against a UserRepository and PasswordHasher.
// It never writes sessions; binding a principal is the session gate's job.
type Service struct {
	users  UserRepository
	hasher PasswordHasher
	logger *slog.Logger
}

// dummyPasswordHash is verified against when the email is unknown so that
// response time does not reveal whether an account exists. It is a fake
// digest that matches no password.
//
//nolint:gosec // G101: intentionally fake digest for timing parity, not a credential.
const dummyPasswordHash = "$argon2id$v=19$m=65536,t=1,p=4$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// NewService creates a Service.
func NewService(users UserRepository, hasher PasswordHasher) (*Service, error) {
	return NewServiceWithLogger(users, hasher, slog.Default())
}

// NewServiceWithLogger creates a Service with an explicit logger.
func NewServiceWithLogger(users UserRepository, hasher PasswordHasher, logger *slog.Logger) (*Service, error) {
	if users == nil {
		return nil, oops.Code("AUTH_SERVICE_INVALID").Errorf("users repository is required")
	}
	if hasher == nil {
		return nil, oops.Code("AUTH_SERVICE_INVALID").Errorf("password hasher is required")
	}
	if logger == nil {
		return nil, oops.Code("AUTH_SERVICE_INVALID").Errorf("logger is required")
	}
	return &Service{users: users, hasher: hasher, logger: logger}, nil
}

// Authenticate runs the credential verification state machine: look up the
// user by normalized email, verify the password, yield the principal.
// Verification runs even when the email is unknown to keep timing uniform.
func (s *Service) Authenticate(ctx context.Context, creds Credentials) (*User, error) {
	email := NormalizeEmail(creds.Email)

	user, lookupErr := s.users.GetByEmail(ctx, email)

	targetHash := dummyPasswordHash
	userExists := false
	switch {
	case lookupErr == nil:
		targetHash = user.PasswordHash
		userExists = true
	case errors.Is(lookupErr, ErrNotFound):
		// Fall through to dummy verification.
	default:
		return nil, oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "get user by email").
			Wrap(lookupErr)
	}

	valid, verifyErr := s.hasher.Verify(creds.Password, targetHash)
	if verifyErr != nil {
		if !userExists {
			return nil, oops.Code("AUTH_INVALID_CREDENTIALS").Errorf("invalid email or password")
		}
		// Corrupt stored digest: log and surface a generic failure.
		s.logger.Error("stored password hash is corrupt",
			"user_id", user.ID.String(),
			"error", verifyErr)
		return nil, oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "verify password").
			Wrap(verifyErr)
	}

	if !userExists || !valid {
		return nil, oops.Code("AUTH_INVALID_CREDENTIALS").Errorf("invalid email or password")
	}

	// Transparently upgrade digests produced by older parameters. The new
	// digest is persisted before it replaces the in-memory one so the
	// session fingerprint derived at login matches the stored row; if the
	// write fails, login proceeds on the old digest.
	if s.hasher.NeedsRehash(user.PasswordHash) {
		if newHash, hashErr := s.hasher.Hash(creds.Password); hashErr == nil {
			if updateErr := s.users.UpdatePassword(ctx, user.ID, newHash); updateErr == nil {
				user.PasswordHash = newHash
			} else {
				s.logger.Warn("failed to persist rehashed password",
					"user_id", user.ID.String(),
					"error", updateErr)
			}
		}
	}

	return user, nil
}

// Register hashes the password and creates the account. The plaintext never
// reaches the repository. Email is normalized before storage.
func (s *Service) Register(ctx context.Context, name, email, password string) (*User, error) {
	email = NormalizeEmail(email)
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		if errors.Is(err, ErrEmptyPassword) {
			return nil, err //nolint:wrapcheck // surfaces as a form error
		}
		return nil, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "hash password").
			Wrap(err)
	}

	now := time.Now().UTC()
	user := &User{
		ID:           ulid.Make(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			return nil, err //nolint:wrapcheck // sentinel surfaces as a form error
		}
		return nil, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "create user").
			Wrap(err)
	}

	s.logger.Info("user registered", "user_id", user.ID.String())
	return user, nil
}

// Resolve re-fetches the current user record for a session-bound id.
func (s *Service) Resolve(ctx context.Context, id ulid.ULID) (*User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err //nolint:wrapcheck // absent semantics, handled by the gate
		}
		return nil, oops.Code("AUTH_RESOLVE_FAILED").
			With("operation", "get user by id").
			With("user_id", id.String()).
			Wrap(err)
	}
	return user, nil
}

// SessionAuthHash derives the session invalidation fingerprint from a
// user's stored password hash. Sessions record it at login; when the
// password changes the fingerprint no longer matches and the session is
// treated as unauthenticated at next resolution.
func SessionAuthHash(user *User) string {
	sum := sha256.Sum256([]byte(user.PasswordHash))
	return hex.EncodeToString(sum[:])
}

// Compile-time interface check.
var _ Backend = (*Service)(nil)
