// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftboard Contributors

package web

import (
	"net/http"
	"strings"
	"time"
)

// CookieName is the session cookie. The value is the opaque session id;
// nothing in it is interpretable outside the session store.
const CookieName = "driftboard_session"

// dropSessionCookieHeaders removes any session cookie already queued on
// the response. A login rotates the session id after the sliding-expiry
// refresh has set a cookie; the response must carry only the final one.
func dropSessionCookieHeaders(w http.ResponseWriter) {
	headers := w.Header()["Set-Cookie"]
	if len(headers) == 0 {
		return
	}
	kept := headers[:0]
	for _, h := range headers {
		if !strings.HasPrefix(h, CookieName+"=") {
			kept = append(kept, h)
		}
	}
	if len(kept) == 0 {
		w.Header().Del("Set-Cookie")
		return
	}
	w.Header()["Set-Cookie"] = kept
}

// setSessionCookie issues the session cookie to the client, replacing any
// session cookie set earlier in the same response.
func setSessionCookie(w http.ResponseWriter, id string, expiresAt time.Time, secure bool) {
	dropSessionCookieHeaders(w)
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// clearSessionCookie removes the session cookie from the client.
func clearSessionCookie(w http.ResponseWriter, secure bool) {
	dropSessionCookieHeaders(w)
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}
