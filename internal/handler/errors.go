// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"

	"github.com/nippo-app/nippo/internal/render"
)

// ErrorPageData holds data for the error template.
type ErrorPageData struct {
	Status  int
	Message string
}

// NotFound returns the handler for unmatched routes.
func NotFound(renderer *render.Renderer) http.HandlerFunc {
	return errorPage(renderer, http.StatusNotFound, "Page Not Found",
		"The page you are looking for does not exist.")
}

// Forbidden returns the handler used by the anti-forgery and authorization
// middleware when a request is denied.
func Forbidden(renderer *render.Renderer) http.HandlerFunc {
	return errorPage(renderer, http.StatusForbidden, "Forbidden",
		"You do not have permission to perform this action.")
}

func errorPage(renderer *render.Renderer, status int, title, message string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		_ = renderer.Render(w, r, "errors/error", render.TemplateData{
			Title: title,
			Data: ErrorPageData{
				Status:  status,
				Message: message,
			},
		})
	}
}
