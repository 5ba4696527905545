// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftboard Contributors

package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/samber/oops"
	"golang.org/x/crypto/argon2"
)

// OWASP-recommended argon2id parameters.
const (
	argon2Time    = 1         // iterations
	argon2Memory  = 64 * 1024 // 64 MB
	argon2Threads = 4         // parallelism
	argon2SaltLen = 16        // salt length in bytes
	argon2KeyLen  = 32        // output length in bytes
)

// ErrEmptyPassword is returned when attempting to hash an empty password.
var ErrEmptyPassword = oops.Code("AUTH_EMPTY_PASSWORD").Errorf("password cannot be empty")

// PasswordHasher provides one-way password hashing and verification.
// Implementations must be stateless and safe for concurrent use.
type PasswordHasher interface {
	// Hash produces a salted one-way digest of the password.
	Hash(password string) (string, error)

	// Verify checks the password against a stored digest.
	// Returns (true, nil) on match, (false, nil) on mismatch. An error
	// indicates the stored digest itself is structurally invalid; a
	// malformed password never errors.
	Verify(password, hash string) (bool, error)

	// NeedsRehash reports whether a stored digest predates the current
	// algorithm or parameters and should be recomputed on next login.
	NeedsRehash(hash string) bool
}

// Argon2idHasher implements PasswordHasher using argon2id in PHC string format.
type Argon2idHasher struct{}

// NewArgon2idHasher creates a new Argon2idHasher.
func NewArgon2idHasher() *Argon2idHasher {
	return &Argon2idHasher{}
}

// Hash produces an argon2id digest of the password.
func (h *Argon2idHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}

	salt := make([]byte, argon2SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", oops.Code("AUTH_SALT_FAILED").Wrap(err)
	}

	key := argon2.IDKey([]byte(password), salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen)

	// PHC string format: $argon2id$v=19$m=65536,t=1,p=4$<salt>$<key>
	encoded := fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		argon2Memory,
		argon2Time,
		argon2Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	)

	return encoded, nil
}

// Verify checks the password against a PHC-encoded argon2id digest.
// Structurally invalid digests yield an AUTH_CORRUPT_CREDENTIAL error so
// callers can distinguish corrupt rows from ordinary mismatches.
func (h *Argon2idHasher) Verify(password, encodedHash string) (bool, error) {
	params, salt, expected, err := parsePHC(encodedHash)
	if err != nil {
		return false, err
	}

	keyLen := len(expected)
	if keyLen == 0 || keyLen > 1<<30 {
		return false, oops.Code("AUTH_CORRUPT_CREDENTIAL").
			Errorf("invalid key length %d in stored hash", keyLen)
	}

	computed := argon2.IDKey([]byte(password), salt, params.time, params.memory, params.threads, uint32(keyLen))

	return subtle.ConstantTimeCompare(computed, expected) == 1, nil
}

// NeedsRehash reports whether the digest was produced with a different
// algorithm (e.g. bcrypt) or weaker parameters than the current defaults.
func (h *Argon2idHasher) NeedsRehash(hash string) bool {
	params, _, _, err := parsePHC(hash)
	if err != nil {
		return true
	}
	return params.memory < argon2Memory || params.time < argon2Time
}

type argon2Params struct {
	memory  uint32
	time    uint32
	threads uint8
}

// parsePHC decodes a PHC-format argon2id string into its parameters, salt
// and key. All failure modes carry the AUTH_CORRUPT_CREDENTIAL code.
func parsePHC(encodedHash string) (argon2Params, []byte, []byte, error) {
	var p argon2Params

	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 {
		return p, nil, nil, oops.Code("AUTH_CORRUPT_CREDENTIAL").Errorf("invalid hash format")
	}
	if parts[1] != "argon2id" {
		return p, nil, nil, oops.Code("AUTH_CORRUPT_CREDENTIAL").
			Errorf("unsupported hash algorithm: %s", parts[1])
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return p, nil, nil, oops.Code("AUTH_CORRUPT_CREDENTIAL").Wrap(err)
	}

	var memory, time, threads uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &time, &threads); err != nil {
		return p, nil, nil, oops.Code("AUTH_CORRUPT_CREDENTIAL").Wrap(err)
	}
	if threads == 0 || threads > 255 {
		return p, nil, nil, oops.Code("AUTH_CORRUPT_CREDENTIAL").
			Errorf("threads value %d out of range", threads)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return p, nil, nil, oops.Code("AUTH_CORRUPT_CREDENTIAL").Wrap(err)
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return p, nil, nil, oops.Code("AUTH_CORRUPT_CREDENTIAL").Wrap(err)
	}

	p.memory = memory
	p.time = time
	p.threads = uint8(threads)
	return p, salt, key, nil
}

// Compile-time interface check.
var _ PasswordHasher = (*Argon2idHasher)(nil)
