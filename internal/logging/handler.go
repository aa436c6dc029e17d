// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package logging provides a slog handler that annotates records with
// request context: the URL path and the id of the logged-in employee. The
// annotations make warning logs traceable to a request without every call
// site passing them explicitly.
package logging

import (
	"context"
	"log/slog"
	"strings"

	"github.com/nippo-app/nippo/internal/middleware"
)

// ParseLevel maps a configuration string to a slog level. Unknown values
// fall back to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ContextHandler is a slog.Handler that wraps another handler and appends
// the request path and employee id carried in the context.
type ContextHandler struct {
	inner slog.Handler
}

// NewContextHandler creates a ContextHandler wrapping the given handler.
func NewContextHandler(inner slog.Handler) *ContextHandler {
	return &ContextHandler{inner: inner}
}

// Enabled implements slog.Handler.
func (h *ContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if path := middleware.GetRequestPath(ctx); path != "" {
		r.AddAttrs(slog.String("path", path))
	}
	if id := middleware.EmployeeIDFromContext(ctx); id != 0 {
		r.AddAttrs(slog.Int64("employee_id", id))
	}
	return h.inner.Handle(ctx, r)
}

// WithAttrs implements slog.Handler.
func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ContextHandler{inner: h.inner.WithAttrs(attrs)}
}

// WithGroup implements slog.Handler.
func (h *ContextHandler) WithGroup(name string) slog.Handler {
	return &ContextHandler{inner: h.inner.WithGroup(name)}
}
