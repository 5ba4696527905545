// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftboard Contributors

package web

import (
	"context"
	"net/http"
	"net/url"

	"github.com/driftboard/driftboard/pkg/errutil"
)

// sessionContextKey is an unexported, collision-proof context key.
type sessionContextKey struct{}

// SessionFromContext extracts the request's AuthSession.
func SessionFromContext(ctx context.Context) (*AuthSession, bool) {
	s, ok := ctx.Value(sessionContextKey{}).(*AuthSession)
	return s, ok
}

// WithSession resolves the inbound session and attaches it to the request
// context. Every route sits behind it; RequireAuth assumes it ran.
func (m *Manager) WithSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authSession, err := m.LoadForRequest(w, r)
		if err != nil {
			errutil.LogError(m.logger, "session load failed", err)
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}

		ctx := context.WithValue(r.Context(), sessionContextKey{}, authSession)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAuth short-circuits unauthenticated requests with a redirect to
// the login page, carrying the original path and query as `next`. The
// protected handler is never invoked.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authSession, ok := SessionFromContext(r.Context())
		if !ok || authSession.User() == nil {
			target := "/login"
			if next := r.URL.RequestURI(); next != "/" && next != "" {
				target += "?next=" + url.QueryEscape(next)
			}
			http.Redirect(w, r, target, http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}
