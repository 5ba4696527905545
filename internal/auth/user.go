// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftboard Contributors

package auth

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Name validation constraints.
const (
	MinNameLength = 1
	MaxNameLength = 255
)

// User represents a registered account. PasswordHash holds the argon2id
// digest; plaintext never appears on this struct.
type User struct {
	ID           ulid.ULID
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Credentials is a transient login submission. Password is cleartext and
// lives only for the duration of one Authenticate call; Next is an optional
// post-login redirect target carried through the form.
type Credentials struct {
	Email    string
	Password string
	Next     string
}

// NormalizeEmail lowercases and trims an email address. All email
// comparison and storage goes through this one function so that
// differently-cased submissions cannot create duplicate-looking accounts.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail checks that an address is structurally valid per RFC 5322.
func ValidateEmail(email string) error {
	if email == "" {
		return oops.Code("AUTH_INVALID_EMAIL").Errorf("email cannot be empty")
	}
	if len(email) > MaxNameLength {
		return oops.Code("AUTH_INVALID_EMAIL").
			With("max", MaxNameLength).
			Errorf("email must be at most %d characters", MaxNameLength)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return oops.Code("AUTH_INVALID_EMAIL").Wrap(err)
	}
	return nil
}

// ValidateName checks display-name length bounds.
func ValidateName(name string) error {
	if len(name) < MinNameLength {
		return oops.Code("AUTH_INVALID_NAME").Errorf("name cannot be empty")
	}
	if len(name) > MaxNameLength {
		return oops.Code("AUTH_INVALID_NAME").
			With("max", MaxNameLength).
			Errorf("name must be at most %d characters", MaxNameLength)
	}
	return nil
}

// UserRepository manages user persistence.
type UserRepository interface {
	// Create stores a new user. Returns ErrDuplicateEmail (wrapped) when
	// the email is already registered.
	Create(ctx context.Context, user *User) error

	// GetByID retrieves a user by ID. Returns ErrNotFound (wrapped) on miss.
	GetByID(ctx context.Context, id ulid.ULID) (*User, error)

	// GetByEmail retrieves a user by normalized email.
	// Returns ErrNotFound (wrapped) on miss.
	GetByEmail(ctx context.Context, email string) (*User, error)

	// UpdatePassword replaces the stored password hash for a user.
	// Returns ErrNotFound (wrapped) when the user does not exist.
	UpdatePassword(ctx context.Context, id ulid.ULID, passwordHash string) error

	// List retrieves all users ordered by creation time.
	List(ctx context.Context) ([]*User, error)
}
