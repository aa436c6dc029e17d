// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/nippo-app/nippo/internal/auth"
	"github.com/nippo-app/nippo/internal/logging"
	"github.com/nippo-app/nippo/internal/middleware"
	"github.com/nippo-app/nippo/internal/model"
	"github.com/nippo-app/nippo/internal/session"
)

func newAuthHandler(t *testing.T) (*AuthHandler, *session.Manager, *testEnv) {
	t.Helper()
	env := newTestEnv(t)
	h := NewAuthHandler(env.db, testPepper, env.renderer, env.sessions)
	return h, env.sessions, env
}

func postForm(path string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestLoginForm(t *testing.T) {
	h, sm, _ := newAuthHandler(t)

	t.Run("anonymous sees the form", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := requestWithSession(t, sm, httptest.NewRequest(http.MethodGet, "/login", nil))
		h.LoginForm(rec, req)

		assertStatus(t, rec.Code, http.StatusOK)
		if !strings.Contains(rec.Body.String(), "Login") {
			t.Errorf("body = %q", rec.Body.String())
		}
	})

	t.Run("logged-in employee redirected to top", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := requestWithSession(t, sm, httptest.NewRequest(http.MethodGet, "/login", nil))
		sm.PutEmployeeID(req.Context(), 42)
		h.LoginForm(rec, req)

		assertRedirect(t, rec, "/")
	})

	t.Run("anonymous visitor gets a session token", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := requestWithSession(t, sm, httptest.NewRequest(http.MethodGet, "/login", nil))
		h.LoginForm(rec, req)

		assertStatus(t, rec.Code, http.StatusOK)
		if sm.Token(req.Context()) == "" {
			t.Error("the form must have a committed session token to embed")
		}
		if rec.Header().Get("Set-Cookie") == "" {
			t.Error("the session cookie must reach the visitor with the form")
		}
	})
}

// Login is registered behind the anti-forgery middleware; a POST without
// the token from the login form must never reach authentication.
func TestLoginRequiresToken(t *testing.T) {
	h, sm, env := newAuthHandler(t)
	createTestEmployee(t, env.db, "E001", auth.Hash("password123", testPepper), model.RoleMember)

	guard := middleware.NewGuard(sm)
	protected := guard.Middleware(nil)(http.HandlerFunc(h.Login))

	t.Run("missing token rejected before authentication", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := requestWithSession(t, sm, postForm("/login", url.Values{
			"code":     {"E001"},
			"password": {"password123"},
		}))
		protected.ServeHTTP(rec, req)

		assertStatus(t, rec.Code, http.StatusForbidden)
		if got := sm.EmployeeID(req.Context()); got != 0 {
			t.Errorf("session employee id = %d; want 0 for a tokenless POST", got)
		}
	})

	t.Run("token from the form accepted", func(t *testing.T) {
		seed := requestWithSession(t, sm, httptest.NewRequest(http.MethodGet, "/login", nil))
		token, _, err := sm.Commit(seed.Context())
		if err != nil {
			t.Fatalf("failed to commit session: %v", err)
		}

		form := url.Values{}
		form.Set("code", "E001")
		form.Set("password", "password123")
		form.Set(middleware.CSRFFieldName, token)

		rec := httptest.NewRecorder()
		post := postForm("/login", form).WithContext(seed.Context())
		protected.ServeHTTP(rec, post)

		assertRedirect(t, rec, "/")
	})
}

func TestLogin(t *testing.T) {
	h, sm, env := newAuthHandler(t)
	e := createTestEmployee(t, env.db, "E001", auth.Hash("password123", testPepper), model.RoleMember)

	t.Run("valid credentials", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := requestWithSession(t, sm, postForm("/login", url.Values{
			"code":     {"E001"},
			"password": {"password123"},
		}))
		h.Login(rec, req)

		assertRedirect(t, rec, "/")
		if got := sm.EmployeeID(req.Context()); got != e.ID {
			t.Errorf("session employee id = %d; want %d", got, e.ID)
		}
	})

	t.Run("wrong password re-renders the form", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := requestWithSession(t, sm, postForm("/login", url.Values{
			"code":     {"E001"},
			"password": {"nope"},
		}))
		h.Login(rec, req)

		assertStatus(t, rec.Code, http.StatusOK)
		if !strings.Contains(rec.Body.String(), msgLoginFailed) {
			t.Errorf("body missing failure message: %q", rec.Body.String())
		}
		if got := sm.EmployeeID(req.Context()); got != 0 {
			t.Errorf("session employee id = %d; want 0", got)
		}
	})

	t.Run("unknown code gets the same message", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := requestWithSession(t, sm, postForm("/login", url.Values{
			"code":     {"E999"},
			"password": {"password123"},
		}))
		h.Login(rec, req)

		assertStatus(t, rec.Code, http.StatusOK)
		if !strings.Contains(rec.Body.String(), msgLoginFailed) {
			t.Errorf("body missing failure message: %q", rec.Body.String())
		}
	})

	t.Run("empty credentials rejected", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := requestWithSession(t, sm, postForm("/login", url.Values{}))
		h.Login(rec, req)

		assertStatus(t, rec.Code, http.StatusOK)
		if got := sm.EmployeeID(req.Context()); got != 0 {
			t.Errorf("session employee id = %d; want 0", got)
		}
	})
}

// Warnings emitted while handling a request must carry the request path and
// employee id injected by the context-aware logging handler.
func TestLoginFailureLogsRequestContext(t *testing.T) {
	h, sm, _ := newAuthHandler(t)

	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(logging.NewContextHandler(slog.NewTextHandler(&buf, nil))))
	t.Cleanup(func() { slog.SetDefault(prev) })

	req := postForm("/login", url.Values{
		"code":     {"E999"},
		"password": {"wrong"},
	})
	req = req.WithContext(context.WithValue(req.Context(), middleware.ContextKeyRequestPath, "/login"))
	req = requestWithSession(t, sm, req)

	h.Login(httptest.NewRecorder(), req)

	if out := buf.String(); !strings.Contains(out, "path=/login") {
		t.Errorf("log output missing request path: %q", out)
	}
}

func TestLogout(t *testing.T) {
	h, sm, _ := newAuthHandler(t)

	rec := httptest.NewRecorder()
	req := requestWithSession(t, sm, postForm("/logout", url.Values{}))
	sm.PutEmployeeID(req.Context(), 7)

	h.Logout(rec, req)

	assertRedirect(t, rec, "/login")
}
