// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/nippo-app/nippo/internal/config"
	"github.com/nippo-app/nippo/internal/handler"
	"github.com/nippo-app/nippo/internal/logging"
	"github.com/nippo-app/nippo/internal/middleware"
	"github.com/nippo-app/nippo/internal/render"
	"github.com/nippo-app/nippo/internal/session"
	"github.com/nippo-app/nippo/internal/store"
	"github.com/nippo-app/nippo/web"
)

func main() {
	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env file if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Setup logger
	logLevel := logging.ParseLevel(cfg.LogLevel)
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	logger := slog.New(logging.NewContextHandler(textHandler))
	slog.SetDefault(logger)

	// Ensure data directory exists
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	// Initialize database
	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)

	slog.Info("running database migrations")
	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database ready")

	// Seed the initial admin account on an empty database
	if err := store.Seed(context.Background(), db, cfg.Pepper); err != nil {
		return fmt.Errorf("seeding database: %w", err)
	}

	// Session manager backed by the same SQLite database
	sm := session.New(db, cfg.IsDevelopment())
	slog.Info("session manager initialized")

	guard := middleware.NewGuard(sm)

	templatesFS, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		return fmt.Errorf("locating templates: %w", err)
	}
	renderer, err := render.New(render.Config{
		TemplatesFS: templatesFS,
		Sessions:    sm,
		Tokens:      guard,
	})
	if err != nil {
		return fmt.Errorf("building renderer: %w", err)
	}

	// Handlers
	authHandler := handler.NewAuthHandler(db, cfg.Pepper, renderer, sm)
	topHandler := handler.NewTopHandler(db, renderer, sm, cfg.RowsPerPage)
	employeesHandler := handler.NewEmployeesHandler(db, cfg.Pepper, renderer, sm, cfg.RowsPerPage)
	reportsHandler := handler.NewReportsHandler(db, renderer, sm, cfg.RowsPerPage, cfg.EnforceAuthorization)
	forbidden := handler.Forbidden(renderer)

	loginProtection := middleware.NewLoginProtection(cfg.LoginRateLimit, cfg.LoginBurst)

	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestPath)
	r.Use(sm.LoadAndSave)

	// Login and logout. The login POST is rate limited per IP and, like
	// every other mutating request, must carry the anti-forgery token; the
	// login form mints it for anonymous visitors.
	r.Group(func(r chi.Router) {
		r.Use(loginProtection.Middleware())
		r.Use(guard.Middleware(forbidden))
		r.Get(handler.RouteLogin, authHandler.LoginForm)
		r.Post(handler.RouteLogin, authHandler.Login)
	})
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireLogin(sm))
		r.Use(middleware.LoadEmployee(sm, db))
		r.Use(guard.Middleware(forbidden))
		r.Post(handler.RouteLogout, authHandler.Logout)

		// Top page: the employee's own reports
		r.Get(handler.RouteRoot, topHandler.Index)

		// Reports: browsing is open to every employee, editing to the author
		r.Get(handler.RouteReports, reportsHandler.List)
		r.Get(handler.RouteReports+handler.RouteSuffixNew, reportsHandler.NewForm)
		r.Post(handler.RouteReports, reportsHandler.Create)
		r.Get(handler.RouteReportsID, reportsHandler.Show)
		r.Get(handler.RouteReports+handler.RouteSuffixEdit, reportsHandler.EditForm)
		r.Post(handler.RouteReportsID, reportsHandler.Update)

		// Employee management, admin only
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin(cfg.EnforceAuthorization, forbidden))
			r.Get(handler.RouteEmployees, employeesHandler.List)
			r.Get(handler.RouteEmployees+handler.RouteSuffixNew, employeesHandler.NewForm)
			r.Post(handler.RouteEmployees, employeesHandler.Create)
			r.Get(handler.RouteEmployeesID, employeesHandler.Show)
			r.Get(handler.RouteEmployees+handler.RouteSuffixEdit, employeesHandler.EditForm)
			r.Post(handler.RouteEmployeesID, employeesHandler.Update)
			r.Post(handler.RouteEmployees+handler.RouteSuffixDestroy, employeesHandler.Delete)
		})
	})

	r.NotFound(handler.NotFound(renderer))

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
