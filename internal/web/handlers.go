// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftboard Contributors

package web

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/samber/oops"

	"github.com/driftboard/driftboard/internal/auth"
	"github.com/driftboard/driftboard/internal/observability"
	"github.com/driftboard/driftboard/pkg/errutil"
)

// Handlers owns the route handlers. The gate resolves sessions; the
// backend verifies credentials and registers accounts.
type Handlers struct {
	backend *auth.Service
	gate    *Manager
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewHandlers creates the route handlers. metrics may be nil.
func NewHandlers(backend *auth.Service, gate *Manager, metrics *observability.Metrics, logger *slog.Logger) (*Handlers, error) {
	if backend == nil {
		return nil, oops.Code("HANDLERS_INVALID").Errorf("auth backend is required")
	}
	if gate == nil {
		return nil, oops.Code("HANDLERS_INVALID").Errorf("session gate is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{backend: backend, gate: gate, metrics: metrics, logger: logger}, nil
}

// Router assembles the route table. Every route passes through the session
// middleware; the page routes additionally sit behind the auth gate.
func (h *Handlers) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /login", h.loginForm)
	mux.HandleFunc("POST /login", h.login)
	mux.HandleFunc("GET /register", h.registerForm)
	mux.HandleFunc("POST /register", h.register)
	mux.HandleFunc("POST /logout", h.logout)

	mux.Handle("GET /{$}", RequireAuth(http.HandlerFunc(h.home)))
	mux.Handle("GET /todos", RequireAuth(http.HandlerFunc(h.todos)))
	mux.Handle("GET /feed", RequireAuth(http.HandlerFunc(h.feed)))

	return h.gate.WithSession(mux)
}

// loginPage is the template payload for the login view.
type loginPage struct {
	Email string
	Next  string
	Error string
}

func (h *Handlers) loginForm(w http.ResponseWriter, r *http.Request) {
	page := loginPage{Next: sanitizeNext(r.URL.Query().Get("next"))}
	if err := render(w, http.StatusOK, "login.html", page); err != nil {
		h.serverError(w, err)
	}
}

func (h *Handlers) login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	creds := auth.Credentials{
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
		Next:     sanitizeNext(r.PostFormValue("next")),
	}

	user, err := h.backend.Authenticate(r.Context(), creds)
	if err != nil {
		if errutil.HasCode(err, "AUTH_INVALID_CREDENTIALS") {
			h.countLogin("invalid")
			page := loginPage{Email: creds.Email, Next: creds.Next, Error: "Invalid email or password."}
			if renderErr := render(w, http.StatusUnauthorized, "login.html", page); renderErr != nil {
				h.serverError(w, renderErr)
			}
			return
		}
		h.countLogin("error")
		h.serverError(w, err)
		return
	}

	authSession, ok := SessionFromContext(r.Context())
	if !ok {
		h.serverError(w, oops.Code("GATE_MISSING").Errorf("no session on request context"))
		return
	}
	if err := authSession.Login(r.Context(), user); err != nil {
		h.countLogin("error")
		h.serverError(w, err)
		return
	}

	h.countLogin("success")
	target := creds.Next
	if target == "" {
		target = "/"
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// registerPage is the template payload for the registration view.
type registerPage struct {
	Name  string
	Email string
	Error string
}

func (h *Handlers) registerForm(w http.ResponseWriter, _ *http.Request) {
	if err := render(w, http.StatusOK, "register.html", registerPage{}); err != nil {
		h.serverError(w, err)
	}
}

func (h *Handlers) register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	name := r.PostFormValue("name")
	email := r.PostFormValue("email")
	password := r.PostFormValue("password")

	user, err := h.backend.Register(r.Context(), name, email, password)
	if err != nil {
		if formErr := registrationFormError(err); formErr != "" {
			h.countRegistration("rejected")
			page := registerPage{Name: name, Email: email, Error: formErr}
			if renderErr := render(w, http.StatusUnprocessableEntity, "register.html", page); renderErr != nil {
				h.serverError(w, renderErr)
			}
			return
		}
		h.countRegistration("error")
		h.serverError(w, err)
		return
	}

	authSession, ok := SessionFromContext(r.Context())
	if !ok {
		h.serverError(w, oops.Code("GATE_MISSING").Errorf("no session on request context"))
		return
	}
	if err := authSession.Login(r.Context(), user); err != nil {
		h.serverError(w, err)
		return
	}

	h.countRegistration("success")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handlers) logout(w http.ResponseWriter, r *http.Request) {
	authSession, ok := SessionFromContext(r.Context())
	if ok {
		if err := authSession.Logout(r.Context()); err != nil {
			h.serverError(w, err)
			return
		}
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// homePage is the template payload for the home view.
type homePage struct {
	Name string
}

func (h *Handlers) home(w http.ResponseWriter, r *http.Request) {
	authSession, _ := SessionFromContext(r.Context())
	if err := render(w, http.StatusOK, "home.html", homePage{Name: authSession.User().Name}); err != nil {
		h.serverError(w, err)
	}
}

// todosPage is the template payload for the todos fragment.
type todosPage struct {
	Items []string
}

func (h *Handlers) todos(w http.ResponseWriter, _ *http.Request) {
	// Static placeholder content until todos get their own store.
	if err := render(w, http.StatusOK, "todos.html", todosPage{}); err != nil {
		h.serverError(w, err)
	}
}

func (h *Handlers) feed(w http.ResponseWriter, r *http.Request) {
	authSession, _ := SessionFromContext(r.Context())
	if err := render(w, http.StatusOK, "feed.html", homePage{Name: authSession.User().Name}); err != nil {
		h.serverError(w, err)
	}
}

// serverError logs the fault and returns a generic 500; internals such as
// SQL text never reach the client.
func (h *Handlers) serverError(w http.ResponseWriter, err error) {
	errutil.LogError(h.logger, "request failed", err)
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

func (h *Handlers) countLogin(outcome string) {
	if h.metrics != nil {
		h.metrics.LoginsTotal.WithLabelValues(outcome).Inc()
	}
}

func (h *Handlers) countRegistration(outcome string) {
	if h.metrics != nil {
		h.metrics.RegistrationsTotal.WithLabelValues(outcome).Inc()
	}
}

// registrationFormError maps user-correctable registration failures to a
// form message; anything else returns "" and is treated as a server fault.
func registrationFormError(err error) string {
	switch {
	case errors.Is(err, auth.ErrDuplicateEmail):
		return "That email is already registered."
	case errutil.HasCode(err, "AUTH_INVALID_EMAIL"):
		return "Please enter a valid email address."
	case errutil.HasCode(err, "AUTH_INVALID_NAME"):
		return "Please enter a name."
	case errutil.HasCode(err, "AUTH_EMPTY_PASSWORD"):
		return "Please choose a password."
	default:
		return ""
	}
}

// sanitizeNext keeps redirect targets local: a usable `next` must be a
// same-site absolute path.
func sanitizeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		return ""
	}
	return next
}
