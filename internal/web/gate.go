// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftboard Contributors

// Package web provides the HTTP surface: the session gate, route handlers
// and server-rendered templates.
package web

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/driftboard/driftboard/internal/auth"
	"github.com/driftboard/driftboard/internal/session"
	"github.com/driftboard/driftboard/pkg/errutil"
)

// Session payload keys for the bound principal.
const (
	keyUserID   = "user_id"
	keyAuthHash = "auth_hash"
)

// Manager translates between raw inbound session tokens and request-scoped
// AuthSession values, and owns session lifecycle writes against the store.
type Manager struct {
	store   session.Store
	backend auth.Backend
	ttl     time.Duration
	secure  bool
	logger  *slog.Logger
}

// NewManager creates a session gate Manager. secure controls the cookie's
// Secure attribute and should be true in production.
func NewManager(store session.Store, backend auth.Backend, ttl time.Duration, secure bool, logger *slog.Logger) (*Manager, error) {
	if store == nil {
		return nil, oops.Code("GATE_INVALID").Errorf("session store is required")
	}
	if backend == nil {
		return nil, oops.Code("GATE_INVALID").Errorf("auth backend is required")
	}
	if ttl <= 0 {
		ttl = session.DefaultTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{store: store, backend: backend, ttl: ttl, secure: secure, logger: logger}, nil
}

// AuthSession is the request-scoped view of a session. It exposes the
// resolved principal and the login/logout mutators that write through to
// the store. Not safe for concurrent use; one request goroutine owns it,
// which also fixes the order of its saves.
type AuthSession struct {
	m         *Manager
	w         http.ResponseWriter
	record    *session.Record
	user      *auth.User
	persisted bool
}

// LoadForRequest resolves the inbound cookie token into an AuthSession.
// A missing, unknown or expired token yields a fresh anonymous session
// that is not persisted until something binds to it. A persisted session
// gets its inactivity window refreshed.
func (m *Manager) LoadForRequest(w http.ResponseWriter, r *http.Request) (*AuthSession, error) {
	as := &AuthSession{m: m, w: w}

	record, persisted, err := m.loadRecord(r)
	if err != nil {
		return nil, err
	}
	as.record = record
	as.persisted = persisted

	if persisted {
		// Sliding inactivity expiry: every observed request extends the window.
		record.Touch(m.ttl)
		if err := m.store.Save(r.Context(), record); err != nil {
			return nil, oops.Code("GATE_SAVE_FAILED").
				With("operation", "refresh session expiry").
				Wrap(err)
		}
		setSessionCookie(w, record.ID, record.ExpiresAt, m.secure)
	}

	as.user = m.resolvePrincipal(r.Context(), record)
	return as, nil
}

// loadRecord reads the cookie and fetches the stored record, falling back
// to a fresh one when the token is missing or the row is absent/expired.
func (m *Manager) loadRecord(r *http.Request) (*session.Record, bool, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		record, newErr := session.NewRecord(m.ttl)
		return record, false, newErr
	}

	record, err := m.store.Load(r.Context(), cookie.Value)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			record, newErr := session.NewRecord(m.ttl)
			return record, false, newErr
		}
		return nil, false, oops.Code("GATE_LOAD_FAILED").
			With("operation", "load session record").
			Wrap(err)
	}
	return record, true, nil
}

// resolvePrincipal re-fetches the bound user and checks the auth
// fingerprint. Any failure degrades to anonymous; the record itself stays
// valid for non-principal session data.
func (m *Manager) resolvePrincipal(ctx context.Context, record *session.Record) *auth.User {
	idVal, ok := record.Data[keyUserID].(string)
	if !ok || idVal == "" {
		return nil
	}

	id, err := ulid.Parse(idVal)
	if err != nil {
		m.logger.Warn("session carries unparseable user id", "user_id", idVal)
		return nil
	}

	user, err := m.backend.Resolve(ctx, id)
	if err != nil {
		if !errors.Is(err, auth.ErrNotFound) {
			errutil.LogError(m.logger, "principal resolution failed", err)
		}
		return nil
	}

	// The session's fingerprint was derived from the password hash at
	// login. A password change invalidates every session minted before it.
	storedHash, _ := record.Data[keyAuthHash].(string)
	currentHash := auth.SessionAuthHash(user)
	if subtle.ConstantTimeCompare([]byte(storedHash), []byte(currentHash)) != 1 {
		return nil
	}

	return user
}

// User returns the resolved principal, or nil when anonymous.
func (s *AuthSession) User() *auth.User {
	return s.user
}

// Login binds the user to the session: the token id is rotated (fixation
// defense), the principal and auth fingerprint written into the payload,
// the record saved, and the cookie set. Any previously resolved principal
// is dropped.
func (s *AuthSession) Login(ctx context.Context, user *auth.User) error {
	oldID := s.record.ID

	newID, err := session.GenerateID()
	if err != nil {
		return err
	}
	s.record.ID = newID
	s.record.Data[keyUserID] = user.ID.String()
	s.record.Data[keyAuthHash] = auth.SessionAuthHash(user)
	s.record.Touch(s.m.ttl)

	if err := s.m.store.Save(ctx, s.record); err != nil {
		return oops.Code("GATE_SAVE_FAILED").
			With("operation", "save session on login").
			Wrap(err)
	}
	if s.persisted {
		// The pre-rotation row is orphaned; best effort removal, the sweep
		// collects it otherwise.
		if delErr := s.m.store.Delete(ctx, oldID); delErr != nil {
			errutil.LogError(s.m.logger, "failed to delete pre-login session", delErr)
		}
	}
	s.persisted = true
	s.user = user

	setSessionCookie(s.w, s.record.ID, s.record.ExpiresAt, s.m.secure)
	return nil
}

// Logout unbinds the principal, deletes the stored record and clears the
// cookie. Safe to call on an anonymous session.
func (s *AuthSession) Logout(ctx context.Context) error {
	if s.persisted {
		if err := s.m.store.Delete(ctx, s.record.ID); err != nil {
			return oops.Code("GATE_DELETE_FAILED").
				With("operation", "delete session on logout").
				Wrap(err)
		}
	}
	s.persisted = false
	s.user = nil
	s.record.Data = make(map[string]any)

	clearSessionCookie(s.w, s.m.secure)
	return nil
}
