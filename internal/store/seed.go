// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/nippo-app/nippo/internal/auth"
	"github.com/nippo-app/nippo/internal/model"
)

// Default admin credentials. Registration is admin-only, so a fresh
// database is seeded with one admin account to bootstrap the flow.
const (
	DefaultAdminCode     = "admin"
	DefaultAdminPassword = "changeme"
	DefaultAdminName     = "Administrator"
)

// Seed creates the initial admin employee if no active employees exist.
func Seed(ctx context.Context, db *sql.DB, pepper string) error {
	queries := New(db)

	count, err := queries.CountEmployees(ctx)
	if err != nil {
		return fmt.Errorf("counting employees: %w", err)
	}
	if count > 0 {
		return nil
	}

	now := time.Now()
	admin, err := queries.CreateEmployee(ctx, CreateEmployeeParams{
		Code:         DefaultAdminCode,
		Name:         DefaultAdminName,
		PasswordHash: auth.Hash(DefaultAdminPassword, pepper),
		Role:         model.RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return fmt.Errorf("creating admin employee: %w", err)
	}

	slog.Info("created default admin employee", "id", admin.ID, "code", admin.Code)
	slog.Warn("the default admin password is in effect; change it after first login")

	return nil
}
