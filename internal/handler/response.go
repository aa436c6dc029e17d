// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/nippo-app/nippo/internal/render"
	"github.com/nippo-app/nippo/internal/service"
	"github.com/nippo-app/nippo/internal/session"
)

// flashAndRedirect sets a flash message and redirects to the given URL.
// Uses http.StatusSeeOther (303) for POST redirects.
func flashAndRedirect(w http.ResponseWriter, r *http.Request, sm *session.Manager, url, message, messageType string) {
	sm.SetFlash(r.Context(), message, messageType)
	http.Redirect(w, r, url, http.StatusSeeOther)
}

// flashError sets an error flash message and redirects to the given URL.
func flashError(w http.ResponseWriter, r *http.Request, sm *session.Manager, url, message string) {
	flashAndRedirect(w, r, sm, url, message, "error")
}

// flashSuccess sets a success flash message and redirects to the given URL.
func flashSuccess(w http.ResponseWriter, r *http.Request, sm *session.Manager, url, message string) {
	flashAndRedirect(w, r, sm, url, message, "success")
}

// parseFormOrRedirect parses the request form and redirects with an error message on failure.
// Returns true if parsing succeeded, false if it failed (and redirect was performed).
func parseFormOrRedirect(w http.ResponseWriter, r *http.Request, sm *session.Manager, redirectURL string) bool {
	if err := r.ParseForm(); err != nil {
		flashError(w, r, sm, redirectURL, "Invalid form data")
		return false
	}
	return true
}

// logAndInternalError logs an error with the request context and writes a
// 500 Internal Server Error response. The context carries the request path
// and employee id for the logging handler.
func logAndInternalError(w http.ResponseWriter, r *http.Request, logMsg string, args ...any) {
	slog.ErrorContext(r.Context(), logMsg, args...)
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}

// requireEntityWithRedirect fetches an entity by ID using the provided query
// function. On error it sets a flash message and redirects. Returns the
// entity and true on success, or zero value and false (redirect already
// performed). Not-found and not-owner both read as "not found" to the
// requester.
func requireEntityWithRedirect[T any](
	w http.ResponseWriter,
	r *http.Request,
	sm *session.Manager,
	redirectURL string,
	entityName string,
	id int64,
	queryFn func(id int64) (T, error),
) (T, bool) {
	var zero T
	entity, err := queryFn(id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) || errors.Is(err, service.ErrNotOwner) {
			flashError(w, r, sm, redirectURL, entityName+" not found")
		} else {
			slog.ErrorContext(r.Context(), "failed to get "+entityName, "error", err, entityName+"_id", id)
			flashError(w, r, sm, redirectURL, "Error loading "+entityName)
		}
		return zero, false
	}
	return entity, true
}

// renderPage renders a template and falls back to a 500 when rendering fails.
func renderPage(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, name string, data render.TemplateData) {
	if err := renderer.Render(w, r, name, data); err != nil {
		logAndInternalError(w, r, "failed to render template", "template", name, "error", err)
	}
}
