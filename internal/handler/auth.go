// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package handler contains the HTTP handlers: login and logout, the top
// page, and the employee and report resources.
package handler

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strings"

	"github.com/nippo-app/nippo/internal/render"
	"github.com/nippo-app/nippo/internal/service"
	"github.com/nippo-app/nippo/internal/session"
)

// msgLoginFailed deliberately does not say whether the code or the password
// was wrong.
const msgLoginFailed = "Incorrect employee code or password"

// AuthHandler handles login and logout.
type AuthHandler struct {
	employees *service.EmployeeService
	renderer  *render.Renderer
	sessions  *session.Manager
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(db *sql.DB, pepper string, renderer *render.Renderer, sm *session.Manager) *AuthHandler {
	return &AuthHandler{
		employees: service.NewEmployeeService(db, pepper),
		renderer:  renderer,
		sessions:  sm,
	}
}

// LoginFormData holds data for the login template.
type LoginFormData struct {
	Code string
}

// LoginForm handles GET /login - displays the login form. A logged-in
// employee is sent to the top page instead. The session token is minted
// here so the anonymous visitor's form can embed the anti-forgery value
// the login POST must present.
func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	if h.sessions.EmployeeID(r.Context()) != 0 {
		http.Redirect(w, r, redirectRoot, http.StatusSeeOther)
		return
	}

	if _, err := h.sessions.EnsureToken(r.Context(), w); err != nil {
		logAndInternalError(w, r, "failed to establish session token", "error", err)
		return
	}

	renderPage(w, r, h.renderer, "auth/login", render.TemplateData{
		Title: "Login",
		Data:  LoginFormData{},
	})
}

// Login handles POST /login - authenticates the employee. On success the
// session token is renewed before the employee id is stored, so the
// pre-login token never survives authentication.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.sessions, redirectLogin) {
		return
	}

	code := strings.TrimSpace(r.FormValue("code"))
	password := r.FormValue("password")

	employee, ok, err := h.employees.Authenticate(r.Context(), code, password)
	if err != nil {
		logAndInternalError(w, r, "login lookup failed", "error", err)
		return
	}
	if !ok {
		slog.WarnContext(r.Context(), "login failed", "code", code, "remote_addr", r.RemoteAddr)
		renderPage(w, r, h.renderer, "auth/login", render.TemplateData{
			Title:  "Login",
			Errors: []string{msgLoginFailed},
			Data:   LoginFormData{Code: code},
		})
		return
	}

	if err := h.sessions.RenewToken(r.Context()); err != nil {
		logAndInternalError(w, r, "failed to renew session token", "error", err)
		return
	}
	h.sessions.PutEmployeeID(r.Context(), employee.ID)

	slog.InfoContext(r.Context(), "login succeeded", "employee_id", employee.ID, "code", employee.Code)
	flashSuccess(w, r, h.sessions, redirectRoot, "Logged in successfully")
}

// Logout handles POST /logout - destroys the session.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	id := h.sessions.EmployeeID(r.Context())

	if err := h.sessions.Destroy(r.Context()); err != nil {
		logAndInternalError(w, r, "failed to destroy session", "error", err)
		return
	}

	slog.InfoContext(r.Context(), "logout", "employee_id", id)
	flashSuccess(w, r, h.sessions, redirectLogin, "Logged out")
}
